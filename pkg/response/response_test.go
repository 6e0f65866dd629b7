package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/pkg/response"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestListCarriesCount(t *testing.T) {
	rec := httptest.NewRecorder()
	response.List(rec, []string{"a", "b"}, 2)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])
}

func TestListZeroCountIsPresent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.List(rec, []string{}, 0)
	body := decode(t, rec)
	assert.Contains(t, body, "count")
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NotFound(rec, "Order not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Order not found", body["message"])
	assert.NotContains(t, body, "data")
}

func TestValidationErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	response.ValidationError(rec, map[string]string{"email": "bad"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, map[string]any{"email": "bad"}, body["error"])
}
