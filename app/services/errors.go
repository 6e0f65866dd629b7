package services

import (
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/validate"
)

// Error kinds. Every error returned by a service wraps exactly one of these
// (or is a *CascadeError) so the HTTP layer can pick a status with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
	ErrPersistence     = errors.New("persistence failure")
)

// Error carries a client-facing message and, for validation failures, a
// per-field map.
type Error struct {
	Kind    error
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func notFound(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidField(field, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: ErrValidation, Message: msg, Fields: map[string]string{field: msg}}
}

// check runs the struct's validate tags.
func check(v any) error {
	if errs := validate.Struct(v); validate.HasErrors(errs) {
		return &Error{Kind: ErrValidation, Message: "Validation failed", Fields: errs}
	}
	return nil
}

// persistence wraps a store error, keeping the cause reachable for
// errors.Is (context.DeadlineExceeded in particular).
func persistence(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}

// parseID converts a hex id, reporting a malformed value against field.
func parseID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return primitive.NilObjectID, invalidField(field, "Invalid %s id %q", field, hex)
	}
	return id, nil
}

// lookup translates repositories.ErrNotFound into a NotFound service error
// and anything else into a persistence failure.
func lookup(err error, what string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return notFound("%s not found", what)
	}
	return persistence("find "+strings.ToLower(what), err)
}

// ItemFailure records one line item a cascade could not remove.
type ItemFailure struct {
	OrderItem primitive.ObjectID `json:"orderItem"`
	Reason    string             `json:"reason"`
}

// CascadeError reports line items left behind after their order was
// deleted. The order itself is gone when this is returned.
type CascadeError struct {
	OrderID primitive.ObjectID
	Failed  []ItemFailure
}

func (e *CascadeError) Error() string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.OrderItem.Hex()
	}
	return fmt.Sprintf("order %s deleted but %d line item(s) remain: %s",
		e.OrderID.Hex(), len(e.Failed), strings.Join(ids, ", "))
}
