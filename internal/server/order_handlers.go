package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/go-chi/chi/v5"
)

func (s *Server) CancelReasonsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, model.CancelReasons)
}

func (s *Server) OrderPoolHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	orders, err := s.pool.Orders(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newOrderViews(orders))
}

func (s *Server) ActiveOrderHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	order, err := s.storage.GetActiveOrder(ctx, rider.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.SetActiveOrder(r.Context(), rider.ID, order != nil)

	if order == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	s.writeJSON(w, http.StatusOK, newOrderView(*order))
}

// GetOrderHandler shows an order that is still in the pool or belongs to
// the caller.
func (s *Server) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	order, err := s.storage.GetOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if order.Status != model.Available && !order.IsAssignedTo(rider.ID) {
		s.writeError(w, errs.ErrOrderNotFound)
		return
	}

	s.writeJSON(w, http.StatusOK, newOrderView(order))
}

// AcceptOrderHandler claims an order picked from the pool list rather than
// from an alert.
func (s *Server) AcceptOrderHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	order, err := sess.resolver.Claim(r.Context(), chi.URLParam(r, "id"))
	if err == nil || errors.Is(err, errs.ErrActiveOrderExists) {
		if gateErr := sess.engine.SetActiveOrder(r.Context(), true); gateErr != nil {
			s.deps.Logger.Warnf("close alert gate: %v", gateErr)
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newOrderView(order))
}

func (s *Server) CollectOrderHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	order, err := sess.resolver.Collect(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newOrderView(order))
}

func (s *Server) CancelOrderHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req model.CancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	order, err := sess.resolver.Cancel(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.releaseGate(r, sess)
	s.writeJSON(w, http.StatusOK, newOrderView(order))
}

// CompleteOrderHandler closes the delivery and returns the credited wallet.
func (s *Server) CompleteOrderHandler(w http.ResponseWriter, r *http.Request) {
	rider, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	order, err := sess.resolver.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.releaseGate(r, sess)

	resp := completionView{Order: newOrderView(order)}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	balance, err := s.storage.GetWalletBalance(ctx, rider.ID)
	if err != nil {
		s.deps.Logger.Warnf("refresh wallet after completing %s: %v", order.ID, err)
	} else {
		resp.WalletBalance = &balance
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) releaseGate(r *http.Request, sess *riderSession) {
	if err := sess.engine.SetActiveOrder(r.Context(), false); err != nil {
		s.deps.Logger.Warnf("reopen alert gate: %v", err)
	}
}

func (s *Server) AlertStateHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	st := sess.engine.State()
	view := alertView{State: st, LastEvent: sess.presenter.Last()}
	if st.Alert != nil {
		view.Progress = st.Alert.Progress()
	}

	s.writeJSON(w, http.StatusOK, view)
}

func (s *Server) AcceptAlertHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	order, err := sess.engine.Accept(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, newOrderView(order))
}

func (s *Server) IgnoreAlertHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	if err := sess.engine.Ignore(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}
