package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dchamindu826/Rider-App/internal/auth"
	"github.com/dchamindu826/Rider-App/internal/errs"
	"github.com/dchamindu826/Rider-App/internal/model"
)

type Storage interface {
	GetRiderByID(ctx context.Context, id string) (model.Rider, error)
}

type contextKey string

const RiderContextKey contextKey = "rider"

func AuthMiddleware(store Storage, tm *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			riderID, err := tm.ParseToken(tokenStr)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			rider, err := store.GetRiderByID(r.Context(), riderID)
			if err != nil {
				if errors.Is(err, errs.ErrRiderNotFound) {
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}

			ctx := context.WithValue(r.Context(), RiderContextKey, rider)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RiderFromContext returns the rider put there by AuthMiddleware.
func RiderFromContext(ctx context.Context) (model.Rider, bool) {
	rider, ok := ctx.Value(RiderContextKey).(model.Rider)
	return rider, ok
}
