package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/dchamindu826/Rider-App/internal/errs"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrMissingFields),
		errors.Is(err, errs.ErrInvalidVehicleType),
		errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrBankAccountRequired),
		errors.Is(err, errs.ErrCancelReasonRequired),
		errors.Is(err, errs.ErrInvalidLocation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errs.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, errs.ErrInvalidCredentials),
		errors.Is(err, errs.ErrInvalidToken),
		errors.Is(err, errs.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrRiderNotFound),
		errors.Is(err, errs.ErrOrderNotFound),
		errors.Is(err, errs.ErrBankAccountNotFound),
		errors.Is(err, errs.ErrNoAlert):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUsernameTaken),
		errors.Is(err, errs.ErrClaimConflict),
		errors.Is(err, errs.ErrActiveOrderExists),
		errors.Is(err, errs.ErrInvalidTransition),
		errors.Is(err, errs.ErrNotAssignedRider):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError || status == http.StatusGatewayTimeout {
		s.deps.Logger.Errorf("request failed: %v", err)
		http.Error(w, "internal error", status)
		return
	}
	http.Error(w, err.Error(), status)
}
