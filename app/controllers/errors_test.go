package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/services"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", &services.Error{Kind: services.ErrNotFound, Message: "Order not found"}, http.StatusNotFound},
		{"validation", &services.Error{Kind: services.ErrValidation, Message: "bad"}, http.StatusBadRequest},
		{"unauthenticated", &services.Error{Kind: services.ErrUnauthenticated, Message: "who"}, http.StatusUnauthorized},
		{"forbidden", &services.Error{Kind: services.ErrForbidden, Message: "no"}, http.StatusForbidden},
		{"timeout", fmt.Errorf("%w: insert order: %w", services.ErrPersistence, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"persistence", fmt.Errorf("%w: insert order: %w", services.ErrPersistence, errors.New("down")), http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _, _ := MapError(tc.err)
			assert.Equal(t, tc.status, status)
		})
	}
}

func TestMapErrorDetails(t *testing.T) {
	_, msg, detail := MapError(&services.Error{
		Kind:    services.ErrValidation,
		Message: "Invalid order items",
		Fields:  map[string]string{"orderItems[0].quantity": "Quantity must be a positive integer"},
	})
	assert.Equal(t, "Invalid order items", msg)
	assert.Equal(t, map[string]string{"orderItems[0].quantity": "Quantity must be a positive integer"}, detail)

	_, msg, _ = MapError(errors.New("mongo: connection reset by peer"))
	assert.Equal(t, "Internal Server Error", msg, "internal causes are not leaked")

	item := primitive.NewObjectID()
	status, _, detail := MapError(&services.CascadeError{
		OrderID: primitive.NewObjectID(),
		Failed:  []services.ItemFailure{{OrderItem: item, Reason: "timeout"}},
	})
	assert.Equal(t, http.StatusInternalServerError, status)
	failed := detail.(map[string]any)["failed"].([]services.ItemFailure)
	assert.Equal(t, item, failed[0].OrderItem)
}
