package server

import (
	"encoding/json"
	"net/http"

	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/location"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/session"
	"github.com/dchamindu826/Rider-App/internal/utils"
	"github.com/go-chi/chi/v5"
)

func (s *Server) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, rider)
}

func (s *Server) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	var req model.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	if err := s.storage.UpdateProfile(ctx, rider.ID, req); err != nil {
		s.writeError(w, err)
		return
	}

	updated, err := s.storage.GetRiderByID(ctx, rider.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := session.SaveRider(r.Context(), s.deps.Sessions, updated); err != nil {
		s.deps.Logger.Warnf("save rider: %v", err)
	}

	s.writeJSON(w, http.StatusOK, updated)
}

// AvailabilityHandler writes the new availability to the backend first. The
// alert gate only follows once the write succeeded.
func (s *Server) AvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	rider, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req model.AvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	availability := model.Offline
	if req.Online {
		availability = model.Online
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	if err := s.storage.SetAvailability(ctx, rider.ID, availability); err != nil {
		s.writeError(w, err)
		return
	}

	if err := sess.engine.SetOnline(r.Context(), req.Online); err != nil {
		s.writeError(w, err)
		return
	}
	sess.tracker.SetOnline(req.Online)

	rider.Availability = availability
	if err := session.SaveRider(r.Context(), s.deps.Sessions, rider); err != nil {
		s.deps.Logger.Warnf("save rider: %v", err)
	}

	s.writeJSON(w, http.StatusOK, sess.engine.State())
}

func (s *Server) GetLocationHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	pos := sess.tracker.Position()
	s.writeJSON(w, http.StatusOK, locationView{Position: pos, IsDefault: pos == location.DefaultPosition})
}

func (s *Server) UpdateLocationHandler(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req model.LocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		s.writeError(w, errs.ErrInvalidLocation)
		return
	}

	pos := model.GeoPoint{Lat: req.Lat, Lng: req.Lng}
	sent, err := sess.tracker.Update(r.Context(), pos)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, locationView{Position: pos, Sent: sent})
}

func (s *Server) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	d, err := s.storage.GetDashboard(ctx, rider.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.sessions.SetActiveOrder(r.Context(), rider.ID, d.HasActiveOrder)

	lastRead, err := session.LastReadAnnouncement(r.Context(), s.deps.Sessions, rider.ID)
	if err != nil {
		s.deps.Logger.Warnf("read announcement marker: %v", err)
	}

	s.writeJSON(w, http.StatusOK, dashboardView{
		Online:                rider.IsOnline(),
		WalletBalance:         d.WalletBalance,
		WalletText:            utils.FormatLKR(d.WalletBalance),
		PendingOrders:         d.PendingOrders,
		RecentDeliveries:      newOrderViews(d.RecentDeliveries),
		HasActiveOrder:        d.HasActiveOrder,
		HasUnreadAnnouncement: d.NewestAnnouncement != "" && d.NewestAnnouncement != lastRead,
	})
}

func (s *Server) EarningsHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	balance, err := s.storage.GetWalletBalance(ctx, rider.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	withdrawals, err := s.storage.GetWithdrawals(ctx, rider.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if withdrawals == nil {
		withdrawals = []model.WithdrawalRequest{}
	}

	s.writeJSON(w, http.StatusOK, earningsView{
		WalletBalance: balance,
		WalletText:    utils.FormatLKR(balance),
		Withdrawals:   withdrawals,
		Totals:        model.SumWithdrawals(withdrawals),
	})
}

// WithdrawHandler checks the request against a freshly fetched wallet and
// bank account list before filing it.
func (s *Server) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	var req model.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	fresh, err := s.storage.GetRiderByID(ctx, rider.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	withdrawal, err := model.NewWithdrawal(fresh, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	created, err := s.storage.CreateWithdrawal(ctx, withdrawal)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, created)
}

func (s *Server) AddBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	var req model.BankAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	acc, err := s.storage.AddBankAccount(ctx, rider.ID, req)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, acc)
}

func (s *Server) RemoveBankAccountHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	if err := s.storage.RemoveBankAccount(ctx, rider.ID, chi.URLParam(r, "key")); err != nil {
		s.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// AnnouncementsHandler lists announcements newest first and marks the
// newest one as read.
func (s *Server) AnnouncementsHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	list, err := s.storage.GetAnnouncements(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if len(list) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := session.MarkAnnouncementRead(r.Context(), s.deps.Sessions, rider.ID, list[0].ID); err != nil {
		s.deps.Logger.Warnf("mark announcement read: %v", err)
	}

	s.writeJSON(w, http.StatusOK, list)
}
