// Package response writes the uniform JSON envelope used by every endpoint:
//
//	{"success": true,  "data": ..., "count": 3}
//	{"success": false, "message": "Order not found"}
//	{"success": false, "message": "Validation failed", "error": {"email": "..."}}
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope is the body shape shared by success and failure responses.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
	Count   *int64 `json:"count,omitempty"`
}

// Write encodes body with the given status.
func Write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body) //nolint:errcheck
}

// Success sends a 200 envelope with data.
func Success(w http.ResponseWriter, data any) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// List sends a 200 envelope with data and its element count.
func List(w http.ResponseWriter, data any, count int64) {
	Write(w, http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// Created sends a 201 envelope with data.
func Created(w http.ResponseWriter, data any) {
	Write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message sends a successful envelope carrying only a message.
func Message(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Success: true, Message: message})
}

// Error sends a failure envelope.
func Error(w http.ResponseWriter, status int, message string) {
	Write(w, status, Envelope{Success: false, Message: message})
}

// ErrorDetail sends a failure envelope with structured detail under "error".
func ErrorDetail(w http.ResponseWriter, status int, message string, detail any) {
	Write(w, status, Envelope{Success: false, Message: message, Error: detail})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	ErrorDetail(w, http.StatusBadRequest, "Validation failed", errs)
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter) {
	Error(w, http.StatusForbidden, "Forbidden")
}

// NotFound sends a 404.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// TooManyRequests sends a 429.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too Many Requests")
}
