package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/shashiranjanraj/shopfront/app/services"
	"github.com/shashiranjanraj/shopfront/pkg/ctx"
	"github.com/shashiranjanraj/shopfront/pkg/response"
)

// MapError is the ctx.ErrorMapper for service errors.
func MapError(err error) (int, string, any) {
	var cerr *services.CascadeError
	if errors.As(err, &cerr) {
		return http.StatusInternalServerError,
			"Order deleted but some order items could not be removed",
			map[string]any{"order": cerr.OrderID, "failed": cerr.Failed}
	}

	var serr *services.Error
	if errors.As(err, &serr) {
		var detail any
		if len(serr.Fields) > 0 {
			detail = serr.Fields
		}
		return statusFor(serr.Kind), serr.Message, detail
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "Request timed out", nil
	}
	return http.StatusInternalServerError, "Internal Server Error", nil
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrForbidden):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func respond(c *ctx.Context, code int, message string, data any) {
	c.JSON(code, response.Envelope{Success: true, Message: message, Data: data})
}

func count(c *ctx.Context, n int64) {
	c.JSON(http.StatusOK, response.Envelope{Success: true, Count: &n})
}
