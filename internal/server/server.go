package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dchamindu826/Rider-App/internal/alert"
	"github.com/dchamindu826/Rider-App/internal/config"
	"github.com/dchamindu826/Rider-App/internal/deps"
	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/middleware"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/session"
	"github.com/dchamindu826/Rider-App/internal/sound"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -destination=../mocks/mock_storage.go -package=mocks github.com/dchamindu826/Rider-App/internal/server Storage

type Storage interface {
	CreateRider(ctx context.Context, reg model.Registration, passwordHash string) (model.Rider, error)
	GetRiderByUsername(ctx context.Context, username string) (model.Rider, string, error)
	GetRiderByID(ctx context.Context, id string) (model.Rider, error)
	UpdateProfile(ctx context.Context, riderID string, p model.ProfileUpdate) error
	SetAvailability(ctx context.Context, riderID string, availability model.Availability) error
	UpdateLocation(ctx context.Context, riderID string, p model.GeoPoint) error
	GetWalletBalance(ctx context.Context, riderID string) (decimal.Decimal, error)

	AddBankAccount(ctx context.Context, riderID string, req model.BankAccountRequest) (model.BankAccount, error)
	RemoveBankAccount(ctx context.Context, riderID, key string) error
	CreateWithdrawal(ctx context.Context, w model.WithdrawalRequest) (model.WithdrawalRequest, error)
	GetWithdrawals(ctx context.Context, riderID string) ([]model.WithdrawalRequest, error)

	GetDashboard(ctx context.Context, riderID string) (model.Dashboard, error)
	GetAnnouncements(ctx context.Context) ([]model.Announcement, error)

	NextAvailableOrder(ctx context.Context, exclude []string) (*model.Order, error)
	ListAvailableOrders(ctx context.Context) ([]model.Order, error)
	GetOrder(ctx context.Context, orderID string) (model.Order, error)
	GetActiveOrder(ctx context.Context, riderID string) (*model.Order, error)
	ClaimOrder(ctx context.Context, orderID, riderID string) (model.Order, error)
	StartDelivery(ctx context.Context, orderID, riderID string) (model.Order, error)
	CancelOrder(ctx context.Context, orderID, riderID, reason string) (model.Order, error)
	CompleteOrder(ctx context.Context, orderID, riderID string) (model.Order, error)
}

type Server struct {
	storage  Storage
	config   *config.Config
	deps     *deps.Deps
	sessions *Sessions
	pool     *PoolRefresher
}

// NewServer wires the local API. feed may be nil, in which case alerts rely
// on the interval poll alone. newPlayer is called once per rider session so
// each rider's alert sound is independent.
func NewServer(storage Storage, feed alert.Feed, newPlayer func() sound.Player, config *config.Config, deps *deps.Deps) *Server {
	engineCfg := alert.Config{
		PollInterval:   config.PollInterval,
		AlertTimeout:   config.AlertTimeout,
		CountdownStep:  time.Second,
		RequestTimeout: config.RequestTimeout,
	}

	return &Server{
		storage:  storage,
		config:   config,
		deps:     deps,
		sessions: NewSessions(storage, feed, newPlayer, engineCfg, deps.Logger),
		pool:     NewPoolRefresher(storage, config.PoolInterval, config.RequestTimeout, deps.Logger),
	}
}

func (srv *Server) buildRouter() http.Handler {
	router := chi.NewRouter()
	router.Use(chiMiddleware.StripSlashes)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.DecompressMiddleware)
	router.Use(middleware.LogMiddleware(srv.deps.Logger))
	router.Use(middleware.CompressMiddleware(srv.deps.Logger))

	router.Post("/api/rider/register", srv.RegisterHandler)
	router.Post("/api/rider/login", srv.LoginHandler)
	router.Get("/api/orders/cancel-reasons", srv.CancelReasonsHandler)

	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(srv.storage, srv.deps.TokenManager))

		r.Post("/api/rider/logout", srv.LogoutHandler)
		r.Get("/api/rider/profile", srv.GetProfileHandler)
		r.Put("/api/rider/profile", srv.UpdateProfileHandler)
		r.Post("/api/rider/availability", srv.AvailabilityHandler)
		r.Get("/api/rider/location", srv.GetLocationHandler)
		r.Post("/api/rider/location", srv.UpdateLocationHandler)
		r.Get("/api/rider/dashboard", srv.DashboardHandler)
		r.Get("/api/rider/earnings", srv.EarningsHandler)
		r.Post("/api/rider/withdrawals", srv.WithdrawHandler)
		r.Post("/api/rider/bank-accounts", srv.AddBankAccountHandler)
		r.Delete("/api/rider/bank-accounts/{key}", srv.RemoveBankAccountHandler)
		r.Get("/api/announcements", srv.AnnouncementsHandler)

		r.Get("/api/alert", srv.AlertStateHandler)
		r.Post("/api/alert/accept", srv.AcceptAlertHandler)
		r.Post("/api/alert/ignore", srv.IgnoreAlertHandler)

		r.Get("/api/orders/pool", srv.OrderPoolHandler)
		r.Get("/api/orders/active", srv.ActiveOrderHandler)
		r.Get("/api/orders/{id}", srv.GetOrderHandler)
		r.Post("/api/orders/{id}/accept", srv.AcceptOrderHandler)
		r.Post("/api/orders/{id}/collect", srv.CollectOrderHandler)
		r.Post("/api/orders/{id}/cancel", srv.CancelOrderHandler)
		r.Post("/api/orders/{id}/complete", srv.CompleteOrderHandler)
	})

	return router
}

func (srv *Server) Run(ctx context.Context) error {
	router := srv.buildRouter()

	server := &http.Server{
		Addr:    srv.config.RunAddress,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srv.deps.Logger.Fatalf("server error: %v", err)
		}
	}()

	srv.restoreSessions(ctx)
	go srv.pool.Run(ctx)
	go srv.sessions.RunResync(ctx, srv.config.PoolInterval)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(shutdownCtx)
	srv.sessions.StopAll()
	return err
}

// restoreSessions resumes every rider saved at login. A rider that no longer
// exists on the backend is forgotten.
func (srv *Server) restoreSessions(ctx context.Context) {
	logger := srv.deps.Logger

	saved, err := session.SignedInRiders(ctx, srv.deps.Sessions)
	if err != nil {
		logger.Warnf("load saved sessions: %v", err)
		return
	}

	for _, rider := range saved {
		srv.restoreSession(ctx, rider.ID)
	}
}

func (srv *Server) restoreSession(ctx context.Context, riderID string) {
	logger := srv.deps.Logger

	fetchCtx, cancel := srv.withTimeout(ctx)
	defer cancel()

	rider, err := srv.storage.GetRiderByID(fetchCtx, riderID)
	if err != nil {
		if errors.Is(err, errs.ErrRiderNotFound) {
			logger.Infof("saved rider %s no longer exists, clearing session", riderID)
			if err := session.ForgetRider(ctx, srv.deps.Sessions, riderID); err != nil {
				logger.Warnf("clear saved session: %v", err)
			}
			return
		}
		logger.Warnf("restore rider %s: %v", riderID, err)
		return
	}

	if _, err := srv.sessions.Start(ctx, rider); err != nil {
		logger.Warnf("start session for rider %s: %v", rider.ID, err)
		return
	}
	if err := session.SaveRider(ctx, srv.deps.Sessions, rider); err != nil {
		logger.Warnf("save rider: %v", err)
	}
	logger.Infof("restored session for rider %s", rider.Username)
}

func (srv *Server) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if srv.config.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, srv.config.RequestTimeout)
}

func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var reg model.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := reg.Validate(); err != nil {
		s.writeError(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		http.Error(w, "hash error", http.StatusInternalServerError)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	rider, err := s.storage.CreateRider(ctx, reg, string(hash))
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.signIn(w, r, rider)
}

func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if creds.Username == "" || creds.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.withTimeout(r.Context())
	defer cancel()

	found, hash, err := s.storage.GetRiderByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, errs.ErrRiderNotFound) {
			http.Error(w, errs.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
			return
		}
		s.writeError(w, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(creds.Password)); err != nil {
		http.Error(w, errs.ErrInvalidCredentials.Error(), http.StatusUnauthorized)
		return
	}

	rider, err := s.storage.GetRiderByID(ctx, found.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.signIn(w, r, rider)
}

// signIn issues a token, persists the rider and starts the alert session.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, rider model.Rider) {
	token, err := s.deps.TokenManager.GenerateToken(rider.ID)
	if err != nil {
		http.Error(w, "token error", http.StatusInternalServerError)
		return
	}

	if err := session.SaveRider(r.Context(), s.deps.Sessions, rider); err != nil {
		s.deps.Logger.Warnf("save rider: %v", err)
	}

	if _, err := s.sessions.Start(r.Context(), rider); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Authorization", "Bearer "+token)
	s.writeJSON(w, http.StatusOK, rider)
}

func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	rider, ok := s.rider(w, r)
	if !ok {
		return
	}

	s.sessions.Stop(rider.ID)

	if err := session.ForgetRider(r.Context(), s.deps.Sessions, rider.ID); err != nil {
		s.deps.Logger.Warnf("clear saved session: %v", err)
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) rider(w http.ResponseWriter, r *http.Request) (model.Rider, bool) {
	rider, ok := middleware.RiderFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return model.Rider{}, false
	}
	return rider, true
}

// session returns the caller's running alert session, starting it when the
// rider authenticated with a token issued before a restart.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (model.Rider, *riderSession, bool) {
	rider, ok := s.rider(w, r)
	if !ok {
		return model.Rider{}, nil, false
	}

	sess, err := s.sessions.Start(r.Context(), rider)
	if err != nil {
		s.writeError(w, err)
		return model.Rider{}, nil, false
	}
	return rider, sess, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.deps.Logger.Errorf("encode response: %v", err)
	}
}
