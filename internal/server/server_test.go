package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dchamindu826/Rider-App/internal/config"
	"github.com/dchamindu826/Rider-App/internal/deps"
	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/middleware"
	"github.com/dchamindu826/Rider-App/internal/mocks"
	"github.com/dchamindu826/Rider-App/internal/model"
	"github.com/dchamindu826/Rider-App/internal/session"
	"github.com/dchamindu826/Rider-App/internal/sound"
	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

func setup(t *testing.T) (*Server, *mocks.MockStorage, *session.MemoryStore) {
	t.Helper()
	return setupWithPlayers(t, func() sound.Player { return sound.Nop{} })
}

func setupWithPlayers(t *testing.T, newPlayer func() sound.Player) (*Server, *mocks.MockStorage, *session.MemoryStore) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockStorage := mocks.NewMockStorage(ctrl)

	logger := zaptest.NewLogger(t)
	cfg := &config.Config{
		PollInterval:   20 * time.Millisecond,
		PoolInterval:   time.Hour,
		AlertTimeout:   time.Minute,
		RequestTimeout: time.Second,
	}
	store := session.NewMemoryStore()
	deps := deps.NewDependencies(logger.Sugar(), "testsecret", store)

	srv := NewServer(mockStorage, nil, newPlayer, cfg, deps)
	t.Cleanup(srv.sessions.StopAll)

	return srv, mockStorage, store
}

func testRider(online bool) model.Rider {
	availability := model.Offline
	if online {
		availability = model.Online
	}
	return model.Rider{
		ID:            "rider-1",
		Username:      "kasun",
		FullName:      "Kasun Perera",
		Phone:         "0771234567",
		VehicleType:   "Motorbike",
		Availability:  availability,
		WalletBalance: decimal.NewFromInt(1000),
		BankAccounts: []model.BankAccount{
			{Key: "acc1", BankName: "BOC", AccountNumber: "00112233", AccountName: "K Perera"},
		},
	}
}

func testOrder(id string) model.Order {
	return model.Order{
		ID:          id,
		Status:      model.Available,
		FoodTotal:   decimal.NewFromInt(2500),
		DeliveryFee: decimal.NewFromInt(1000),
		Pickup:      model.Pickup{Name: "Pizza Hut", Address: "Galle Road"},
		Dropoff:     model.Dropoff{ReceiverName: "Nimal", Address: "Flower Road"},
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func otherRider(online bool) model.Rider {
	r := testRider(online)
	r.ID = "rider-2"
	r.Username = "nimal"
	r.FullName = "Nimal Silva"
	return r
}

func newRiderRequest(method, path, body string, rider model.Rider) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.RiderContextKey, rider)
	return req.WithContext(ctx)
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRegisterHandler(t *testing.T) {
	srv, mock, store := setup(t)
	rider := testRider(false)

	mock.EXPECT().
		CreateRider(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, reg model.Registration, hash string) (model.Rider, error) {
			require.Equal(t, "kasun", reg.Username)
			require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("pass")))
			return rider, nil
		})
	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)

	payload := `{"full_name":"Kasun Perera","username":"kasun","password":"pass","phone":"0771234567","vehicle_type":"Motorbike"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rider/register", strings.NewReader(payload))
	w := httptest.NewRecorder()

	srv.RegisterHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.HasPrefix(w.Header().Get("Authorization"), "Bearer "))

	saved, ok, err := session.LoadRider(context.Background(), store, "rider-1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "rider-1", saved.ID)

	_, running := srv.sessions.Get("rider-1")
	require.True(t, running)
}

func TestRegisterHandlerValidation(t *testing.T) {
	srv, _, _ := setup(t)

	tests := []struct {
		name    string
		payload string
		status  int
	}{
		{name: "bad json", payload: `{`, status: http.StatusBadRequest},
		{name: "missing phone", payload: `{"full_name":"K","username":"k","password":"p","vehicle_type":"Van"}`, status: http.StatusUnprocessableEntity},
		{name: "unknown vehicle", payload: `{"full_name":"K","username":"k","password":"p","phone":"1","vehicle_type":"Bus"}`, status: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/rider/register", strings.NewReader(tt.payload))
			w := httptest.NewRecorder()

			srv.RegisterHandler(w, req)

			require.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRegisterHandlerUsernameTaken(t *testing.T) {
	srv, mock, _ := setup(t)

	mock.EXPECT().
		CreateRider(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(model.Rider{}, errs.ErrUsernameTaken)

	payload := `{"full_name":"K","username":"kasun","password":"p","phone":"1","vehicle_type":"Van"}`
	req := httptest.NewRequest(http.MethodPost, "/api/rider/register", strings.NewReader(payload))
	w := httptest.NewRecorder()

	srv.RegisterHandler(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginHandler(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	pw, _ := bcryptHash("pass")
	mock.EXPECT().GetRiderByUsername(gomock.Any(), "kasun").Return(model.Rider{ID: "rider-1"}, pw, nil)
	mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(rider, nil)
	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/rider/login", strings.NewReader(`{"username":"kasun","password":"pass"}`))
	w := httptest.NewRecorder()

	srv.LoginHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	riderID, err := srv.deps.TokenManager.ParseToken(strings.TrimPrefix(w.Header().Get("Authorization"), "Bearer "))
	require.NoError(t, err)
	require.Equal(t, "rider-1", riderID)
}

func TestLoginHandlerRejectsBadCredentials(t *testing.T) {
	srv, mock, _ := setup(t)

	pw, _ := bcryptHash("pass")
	mock.EXPECT().GetRiderByUsername(gomock.Any(), "kasun").Return(model.Rider{ID: "rider-1"}, pw, nil)
	mock.EXPECT().GetRiderByUsername(gomock.Any(), "nobody").Return(model.Rider{}, "", errs.ErrRiderNotFound)

	for _, payload := range []string{`{"username":"kasun","password":"wrong"}`, `{"username":"nobody","password":"pass"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/rider/login", strings.NewReader(payload))
		w := httptest.NewRecorder()

		srv.LoginHandler(w, req)

		require.Equal(t, http.StatusUnauthorized, w.Code, payload)
	}
}

func TestLogoutHandler(t *testing.T) {
	srv, mock, store := setup(t)
	rider := testRider(false)
	ctx := context.Background()

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	_, err := srv.sessions.Start(ctx, rider)
	require.NoError(t, err)
	require.NoError(t, session.SaveRider(ctx, store, rider))

	w := httptest.NewRecorder()
	srv.LogoutHandler(w, newRiderRequest(http.MethodPost, "/api/rider/logout", "", rider))

	require.Equal(t, http.StatusOK, w.Code)
	_, running := srv.sessions.Get("rider-1")
	require.False(t, running)

	_, ok, err := session.LoadRider(ctx, store, "rider-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAvailabilityHandler(t *testing.T) {
	srv, mock, store := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	mock.EXPECT().SetAvailability(gomock.Any(), "rider-1", model.Online).Return(nil)
	mock.EXPECT().NextAvailableOrder(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	w := httptest.NewRecorder()
	srv.AvailabilityHandler(w, newRiderRequest(http.MethodPost, "/api/rider/availability", `{"online":true}`, rider))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decodeBody(t, w)["online"])

	saved, _, err := session.LoadRider(context.Background(), store, "rider-1")
	require.NoError(t, err)
	require.Equal(t, model.Online, saved.Availability)
}

func TestAvailabilityHandlerBackendFailure(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	mock.EXPECT().SetAvailability(gomock.Any(), "rider-1", model.Online).Return(errors.New("connection reset"))

	w := httptest.NewRecorder()
	srv.AvailabilityHandler(w, newRiderRequest(http.MethodPost, "/api/rider/availability", `{"online":true}`, rider))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	sess, ok := srv.sessions.Get("rider-1")
	require.True(t, ok)
	require.False(t, sess.engine.State().Online)
}

func TestAlertAcceptFlow(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(true)
	order := testOrder("o1")

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	mock.EXPECT().
		NextAvailableOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, exclude []string) (*model.Order, error) {
			for _, id := range exclude {
				if id == order.ID {
					return nil, nil
				}
			}
			o := order
			return &o, nil
		}).
		AnyTimes()

	claimed := order
	claimed.Status = model.Assigned
	claimed.AssignedRider = &rider.ID
	mock.EXPECT().ClaimOrder(gomock.Any(), "o1", "rider-1").Return(claimed, nil)

	w := httptest.NewRecorder()
	srv.AlertStateHandler(w, newRiderRequest(http.MethodGet, "/api/alert", "", rider))
	require.Equal(t, http.StatusOK, w.Code)

	sess, ok := srv.sessions.Get("rider-1")
	require.True(t, ok)
	require.Eventually(t, func() bool { return sess.engine.State().Alert != nil }, 2*time.Second, 5*time.Millisecond)

	w = httptest.NewRecorder()
	srv.AlertStateHandler(w, newRiderRequest(http.MethodGet, "/api/alert", "", rider))
	body := decodeBody(t, w)
	state := body["state"].(map[string]any)
	require.Equal(t, "alert_visible", state["phase"])
	require.Equal(t, 1.0, body["progress"])
	require.Equal(t, "LKR 650.00", state["alert"].(map[string]any)["earning_text"])

	w = httptest.NewRecorder()
	srv.AcceptAlertHandler(w, newRiderRequest(http.MethodPost, "/api/alert/accept", "", rider))

	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	require.Equal(t, "assigned", body["status"])
	require.Equal(t, "LKR 650.00", body["earning_text"])
	require.True(t, sess.engine.State().HasActiveOrder)
	require.Equal(t, "claimed", sess.presenter.Last().Kind)
}

func TestAlertAcceptConflict(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(true)
	order := testOrder("o1")

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	mock.EXPECT().
		NextAvailableOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, exclude []string) (*model.Order, error) {
			if len(exclude) > 0 {
				return nil, nil
			}
			o := order
			return &o, nil
		}).
		AnyTimes()
	mock.EXPECT().ClaimOrder(gomock.Any(), "o1", "rider-1").Return(model.Order{}, errs.ErrClaimConflict)

	sess, err := srv.sessions.Start(context.Background(), rider)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sess.engine.State().Alert != nil }, 2*time.Second, 5*time.Millisecond)

	w := httptest.NewRecorder()
	srv.AcceptAlertHandler(w, newRiderRequest(http.MethodPost, "/api/alert/accept", "", rider))

	require.Equal(t, http.StatusConflict, w.Code)
	st := sess.engine.State()
	require.False(t, st.HasActiveOrder)
	require.Contains(t, st.Seen, "o1")
}

func TestIgnoreAlertWithoutAlert(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)

	w := httptest.NewRecorder()
	srv.IgnoreAlertHandler(w, newRiderRequest(http.MethodPost, "/api/alert/ignore", "", rider))

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestWithdrawHandler(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(rider, nil)
	mock.EXPECT().
		CreateWithdrawal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, w model.WithdrawalRequest) (model.WithdrawalRequest, error) {
			require.Equal(t, "250.5", w.Amount.String())
			require.Equal(t, model.WithdrawalPending, w.Status)
			require.Equal(t, "00112233", w.AccountNumber)
			w.ID = "wd-1"
			return w, nil
		})

	w := httptest.NewRecorder()
	srv.WithdrawHandler(w, newRiderRequest(http.MethodPost, "/api/rider/withdrawals", `{"amount":"250.50","account_key":"acc1"}`, rider))

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "wd-1", decodeBody(t, w)["id"])
}

func TestWithdrawHandlerRejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		status  int
	}{
		{name: "over balance", payload: `{"amount":"1000.01","account_key":"acc1"}`, status: http.StatusPaymentRequired},
		{name: "zero", payload: `{"amount":"0","account_key":"acc1"}`, status: http.StatusUnprocessableEntity},
		{name: "no account", payload: `{"amount":"10"}`, status: http.StatusUnprocessableEntity},
		{name: "unknown account", payload: `{"amount":"10","account_key":"gone"}`, status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, mock, _ := setup(t)
			rider := testRider(false)
			mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(rider, nil)

			w := httptest.NewRecorder()
			srv.WithdrawHandler(w, newRiderRequest(http.MethodPost, "/api/rider/withdrawals", tt.payload, rider))

			require.Equal(t, tt.status, w.Code)
		})
	}
}

func TestCancelOrderHandlerRequiresReason(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)

	req := newRiderRequest(http.MethodPost, "/api/orders/o1/cancel", `{"reason":"Other","other":"  "}`, rider)
	w := httptest.NewRecorder()
	srv.CancelOrderHandler(w, withURLParam(req, "id", "o1"))

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCompleteOrderHandler(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(true)

	active := testOrder("o1")
	active.Status = model.EnRoute
	active.AssignedRider = &rider.ID
	completed := active
	completed.Status = model.Completed

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(&active, nil)
	mock.EXPECT().CompleteOrder(gomock.Any(), "o1", "rider-1").Return(completed, nil)
	mock.EXPECT().GetWalletBalance(gomock.Any(), "rider-1").Return(decimal.NewFromInt(1650), nil)
	mock.EXPECT().NextAvailableOrder(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()

	sess, err := srv.sessions.Start(context.Background(), rider)
	require.NoError(t, err)
	require.True(t, sess.engine.State().HasActiveOrder)

	req := newRiderRequest(http.MethodPost, "/api/orders/o1/complete", "", rider)
	w := httptest.NewRecorder()
	srv.CompleteOrderHandler(w, withURLParam(req, "id", "o1"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "1650", body["wallet_balance"])
	require.Equal(t, "completed", body["order"].(map[string]any)["status"])
	require.False(t, sess.engine.State().HasActiveOrder)
}

func TestCompleteOrderHandlerWrongState(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	mock.EXPECT().CompleteOrder(gomock.Any(), "o1", "rider-1").Return(model.Order{}, errs.ErrInvalidTransition)

	req := newRiderRequest(http.MethodPost, "/api/orders/o1/complete", "", rider)
	w := httptest.NewRecorder()
	srv.CompleteOrderHandler(w, withURLParam(req, "id", "o1"))

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestDashboardHandler(t *testing.T) {
	srv, mock, store := setup(t)
	rider := testRider(true)
	ctx := context.Background()

	delivered := testOrder("o9")
	delivered.Status = model.Completed
	mock.EXPECT().GetDashboard(gomock.Any(), "rider-1").Return(model.Dashboard{
		WalletBalance:      decimal.NewFromInt(12500),
		PendingOrders:      3,
		RecentDeliveries:   []model.Order{delivered},
		NewestAnnouncement: "a2",
	}, nil).Times(2)

	require.NoError(t, session.MarkAnnouncementRead(ctx, store, "rider-1", "a1"))

	w := httptest.NewRecorder()
	srv.DashboardHandler(w, newRiderRequest(http.MethodGet, "/api/rider/dashboard", "", rider))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	require.Equal(t, "LKR 12,500.00", body["wallet_text"])
	require.Equal(t, 3.0, body["pending_orders"])
	require.Equal(t, true, body["has_unread_announcement"])
	recent := body["recent_deliveries"].([]any)
	require.Equal(t, "LKR 650.00", recent[0].(map[string]any)["earning_text"])

	require.NoError(t, session.MarkAnnouncementRead(ctx, store, "rider-1", "a2"))

	w = httptest.NewRecorder()
	srv.DashboardHandler(w, newRiderRequest(http.MethodGet, "/api/rider/dashboard", "", rider))
	require.Equal(t, false, decodeBody(t, w)["has_unread_announcement"])
}

func TestAnnouncementsHandlerMarksNewestRead(t *testing.T) {
	srv, mock, store := setup(t)
	rider := testRider(false)

	mock.EXPECT().GetAnnouncements(gomock.Any()).Return([]model.Announcement{
		{ID: "a2", Title: "Poya day bonus", Target: "riders"},
		{ID: "a1", Title: "Welcome", Target: "all"},
	}, nil)

	w := httptest.NewRecorder()
	srv.AnnouncementsHandler(w, newRiderRequest(http.MethodGet, "/api/announcements", "", rider))

	require.Equal(t, http.StatusOK, w.Code)
	lastRead, err := session.LastReadAnnouncement(context.Background(), store, "rider-1")
	require.NoError(t, err)
	require.Equal(t, "a2", lastRead)
}

func TestGetOrderHandlerHidesOtherRidersOrders(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	other := "rider-2"
	taken := testOrder("o1")
	taken.Status = model.Assigned
	taken.AssignedRider = &other

	mock.EXPECT().GetOrder(gomock.Any(), "o1").Return(taken, nil)
	mock.EXPECT().GetOrder(gomock.Any(), "o2").Return(testOrder("o2"), nil)

	req := newRiderRequest(http.MethodGet, "/api/orders/o1", "", rider)
	w := httptest.NewRecorder()
	srv.GetOrderHandler(w, withURLParam(req, "id", "o1"))
	require.Equal(t, http.StatusNotFound, w.Code)

	req = newRiderRequest(http.MethodGet, "/api/orders/o2", "", rider)
	w = httptest.NewRecorder()
	srv.GetOrderHandler(w, withURLParam(req, "id", "o2"))
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "LKR 3,500.00", decodeBody(t, w)["grand_total_text"])
}

func TestOrderPoolHandler(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	mock.EXPECT().ListAvailableOrders(gomock.Any()).Return([]model.Order{testOrder("o1"), testOrder("o2")}, nil)

	w := httptest.NewRecorder()
	srv.OrderPoolHandler(w, newRiderRequest(http.MethodGet, "/api/orders/pool", "", rider))

	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 2)
	require.Equal(t, "650", list[0]["earning"])
}

func TestAcceptOrderFromPoolClosesGate(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	claimed := testOrder("o1")
	claimed.Status = model.Assigned
	claimed.AssignedRider = &rider.ID

	mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)
	mock.EXPECT().ClaimOrder(gomock.Any(), "o1", "rider-1").Return(claimed, nil)

	req := newRiderRequest(http.MethodPost, "/api/orders/o1/accept", "", rider)
	w := httptest.NewRecorder()
	srv.AcceptOrderHandler(w, withURLParam(req, "id", "o1"))

	require.Equal(t, http.StatusOK, w.Code)
	sess, _ := srv.sessions.Get("rider-1")
	require.True(t, sess.engine.State().HasActiveOrder)
}

func TestRouterRequiresToken(t *testing.T) {
	srv, mock, _ := setup(t)
	router := srv.buildRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/rider/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(testRider(false), nil)

	token, err := srv.deps.TokenManager.GenerateToken("rider-1")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/rider/profile/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "kasun", decodeBody(t, w)["username"])
}

func TestRestoreSessions(t *testing.T) {
	t.Run("rider still exists", func(t *testing.T) {
		srv, mock, store := setup(t)
		rider := testRider(false)
		require.NoError(t, session.SaveRider(context.Background(), store, rider))

		mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(rider, nil)
		mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil)

		srv.restoreSessions(context.Background())

		_, running := srv.sessions.Get("rider-1")
		require.True(t, running)
	})

	t.Run("rider deleted", func(t *testing.T) {
		srv, mock, store := setup(t)
		require.NoError(t, session.SaveRider(context.Background(), store, testRider(false)))

		mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(model.Rider{}, errs.ErrRiderNotFound)

		srv.restoreSessions(context.Background())

		_, ok, err := session.LoadRider(context.Background(), store, "rider-1")
		require.NoError(t, err)
		require.False(t, ok)
		_, running := srv.sessions.Get("rider-1")
		require.False(t, running)
	})

	t.Run("every saved rider comes back", func(t *testing.T) {
		srv, mock, store := setup(t)
		first, second := testRider(false), otherRider(false)
		require.NoError(t, session.SaveRider(context.Background(), store, first))
		require.NoError(t, session.SaveRider(context.Background(), store, second))

		mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(first, nil)
		mock.EXPECT().GetRiderByID(gomock.Any(), "rider-2").Return(second, nil)
		mock.EXPECT().GetActiveOrder(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)

		srv.restoreSessions(context.Background())

		_, running := srv.sessions.Get("rider-1")
		require.True(t, running)
		_, running = srv.sessions.Get("rider-2")
		require.True(t, running)
	})
}

func TestLogoutKeepsOtherRidersSession(t *testing.T) {
	srv, mock, store := setup(t)
	ctx := context.Background()
	first, second := testRider(false), otherRider(false)

	mock.EXPECT().GetActiveOrder(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	for _, rider := range []model.Rider{first, second} {
		_, err := srv.sessions.Start(ctx, rider)
		require.NoError(t, err)
		require.NoError(t, session.SaveRider(ctx, store, rider))
	}

	w := httptest.NewRecorder()
	srv.LogoutHandler(w, newRiderRequest(http.MethodPost, "/api/rider/logout", "", first))
	require.Equal(t, http.StatusOK, w.Code)

	_, running := srv.sessions.Get("rider-2")
	require.True(t, running)

	saved, ok, err := session.LoadRider(ctx, store, "rider-2")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "nimal", saved.Username)

	riders, err := session.SignedInRiders(ctx, store)
	require.NoError(t, err)
	require.Len(t, riders, 1)
	require.Equal(t, "rider-2", riders[0].ID)
}

func TestEachRiderHasOwnAlertSound(t *testing.T) {
	srv, mock, _ := setupWithPlayers(t, func() sound.Player {
		return sound.NewBell(io.Discard, 10*time.Millisecond)
	})
	ctx := context.Background()
	order := testOrder("o1")

	mock.EXPECT().GetActiveOrder(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
	mock.EXPECT().
		NextAvailableOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, exclude []string) (*model.Order, error) {
			if len(exclude) > 0 {
				return nil, nil
			}
			o := order
			return &o, nil
		}).
		AnyTimes()

	first, err := srv.sessions.Start(ctx, testRider(true))
	require.NoError(t, err)
	second, err := srv.sessions.Start(ctx, otherRider(true))
	require.NoError(t, err)

	for _, sess := range []*riderSession{first, second} {
		sess := sess
		require.Eventually(t, func() bool { return sess.engine.State().Alert != nil }, 2*time.Second, 5*time.Millisecond)
	}
	require.True(t, first.player.(*sound.Bell).Playing())
	require.True(t, second.player.(*sound.Bell).Playing())

	w := httptest.NewRecorder()
	srv.IgnoreAlertHandler(w, newRiderRequest(http.MethodPost, "/api/alert/ignore", "", otherRider(true)))
	require.Equal(t, http.StatusOK, w.Code)

	require.False(t, second.player.(*sound.Bell).Playing())
	require.NotNil(t, first.engine.State().Alert)
	require.True(t, first.player.(*sound.Bell).Playing())
}

func TestActiveOrderHandlerReopensGateWhenBackendCleared(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(true)
	held := testOrder("o1")
	held.Status = model.Assigned
	held.AssignedRider = &rider.ID

	gomock.InOrder(
		mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(&held, nil),
		mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil),
	)
	polled := make(chan struct{}, 1)
	mock.EXPECT().
		NextAvailableOrder(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, []string) (*model.Order, error) {
			select {
			case polled <- struct{}{}:
			default:
			}
			return nil, nil
		}).
		AnyTimes()

	sess, err := srv.sessions.Start(context.Background(), rider)
	require.NoError(t, err)
	require.True(t, sess.engine.State().HasActiveOrder)

	// the order was cancelled on the backend, not through this API
	w := httptest.NewRecorder()
	srv.ActiveOrderHandler(w, newRiderRequest(http.MethodGet, "/api/orders/active", "", rider))
	require.Equal(t, http.StatusNoContent, w.Code)

	require.False(t, sess.engine.State().HasActiveOrder)
	select {
	case <-polled:
	case <-time.After(2 * time.Second):
		t.Fatal("polling did not resume")
	}
}

func TestResyncAllFollowsBackend(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)
	held := testOrder("o1")
	held.Status = model.EnRoute
	held.AssignedRider = &rider.ID

	gomock.InOrder(
		mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil),
		mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(&held, nil),
		mock.EXPECT().GetActiveOrder(gomock.Any(), "rider-1").Return(nil, nil),
	)

	sess, err := srv.sessions.Start(context.Background(), rider)
	require.NoError(t, err)
	require.False(t, sess.engine.State().HasActiveOrder)

	srv.sessions.ResyncAll(context.Background())
	require.True(t, sess.engine.State().HasActiveOrder)

	srv.sessions.ResyncAll(context.Background())
	require.False(t, sess.engine.State().HasActiveOrder)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errs.ErrMissingFields, http.StatusUnprocessableEntity},
		{errs.ErrCancelReasonRequired, http.StatusUnprocessableEntity},
		{errs.ErrInsufficientFunds, http.StatusPaymentRequired},
		{errs.ErrInvalidCredentials, http.StatusUnauthorized},
		{errs.ErrOrderNotFound, http.StatusNotFound},
		{errs.ErrNoAlert, http.StatusNotFound},
		{errs.ErrClaimConflict, http.StatusConflict},
		{errs.ErrActiveOrderExists, http.StatusConflict},
		{errs.ErrNotAssignedRider, http.StatusConflict},
		{errors.Join(errors.New("claim order"), errs.ErrInvalidTransition), http.StatusConflict},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func bcryptHash(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), 10)
	return string(hash), err
}

func TestRouterLogsDecompressedBody(t *testing.T) {
	srv, mock, _ := setup(t)
	rider := testRider(false)

	var logs bytes.Buffer
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(&logs),
		zapcore.DebugLevel,
	)
	srv.deps.Logger = zap.New(core).Sugar()

	mock.EXPECT().GetRiderByID(gomock.Any(), "rider-1").Return(rider, nil).AnyTimes()

	var body bytes.Buffer
	zw := gzip.NewWriter(&body)
	_, err := zw.Write([]byte(`{"amount":"5000","account_key":"acc1"}`))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	token, err := srv.deps.TokenManager.GenerateToken("rider-1")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/rider/withdrawals", &body)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	srv.buildRouter().ServeHTTP(w, req)

	require.NotEqual(t, http.StatusBadRequest, w.Code)
	require.Contains(t, logs.String(), `"account_key":"acc1"`)
}
