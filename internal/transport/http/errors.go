package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/account"
	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/checkout"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, account.ErrValidation),
		errors.Is(err, account.ErrPasswordMismatch),
		errors.Is(err, account.ErrPasswordTooShort),
		errors.Is(err, cart.ErrValidation),
		errors.Is(err, checkout.ErrValidation),
		errors.Is(err, checkout.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, checkout.ErrNotAuthenticated),
		errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrEmailTaken),
		errors.Is(err, checkout.ErrCheckoutInProgress),
		errors.Is(err, checkout.ErrCheckoutNotOpen):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// fail logs err under event and turns it into the user-visible message.
func fail(l *slog.Logger, event string, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		l.Error(event, "status", status, "error", err)
		return echo.NewHTTPError(status, "internal error")
	}
	l.Warn(event, "status", status, "error", err)
	return echo.NewHTTPError(status, err.Error())
}
