package http

import (
	"errors"
	"net/http"

	"cryptoboost/internal/domain/funding"
	"cryptoboost/internal/domain/investment"
	"cryptoboost/internal/domain/store"
	"cryptoboost/internal/usecase/accrual"
	"cryptoboost/internal/usecase/identity"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

var unprocessable = []error{
	identity.ErrInvalidEmail,
	identity.ErrWeakPassword,
	funding.ErrInvalidAmount,
	funding.ErrAddressRequired,
	funding.ErrUnsupportedCrypto,
	funding.ErrInsufficientFunds,
	investment.ErrInvalidAmount,
	investment.ErrUnknownPlan,
}

var conflicts = []error{
	store.ErrDuplicate,
	funding.ErrAlreadyProcessed,
	investment.ErrInvalidTransition,
	investment.ErrAlreadyApproved,
	investment.ErrAlreadyComplete,
	accrual.ErrNotAccruing,
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}

// statusFor maps domain errors to HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, identity.ErrInvalidCredentials), errors.Is(err, identity.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, identity.ErrSuspended):
		return http.StatusForbidden
	case isAny(err, unprocessable):
		return http.StatusUnprocessableEntity
	case isAny(err, conflicts):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func respondError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.WithFields(log.Fields{"path": c.Path(), "method": c.Request().Method}).WithError(err).Error("unhandled error")
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

// decode binds and validates req; a non-nil result is the response to send.
func decode(c echo.Context, req any) (int, *ErrorResponse) {
	if err := c.Bind(req); err != nil {
		return http.StatusBadRequest, &ErrorResponse{Error: "invalid body"}
	}
	if err := c.Validate(req); err != nil {
		return http.StatusUnprocessableEntity, &ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		}
	}
	return 0, nil
}
