package reqid_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/shopfront/pkg/reqid"
)

func serve(req *http.Request) (seen string, rec *httptest.ResponseRecorder) {
	rec = httptest.NewRecorder()
	reqid.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = reqid.FromCtx(r.Context())
	})).ServeHTTP(rec, req)
	return seen, rec
}

func TestGeneratesUUID(t *testing.T) {
	seen, rec := serve(httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	assert.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(reqid.Header))
}

func TestHonoursUpstreamID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, "gateway-42")

	seen, _ := serve(req)
	assert.Equal(t, "gateway-42", seen)
}

func TestReplacesOversizedUpstreamID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, strings.Repeat("x", 500))

	seen, _ := serve(req)
	assert.Len(t, seen, 36)
}

func TestReplacesUnprintableUpstreamID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(reqid.Header, "abc\tdef")

	seen, rec := serve(req)
	assert.NotEqual(t, "abc\tdef", seen)
	assert.Equal(t, seen, rec.Header().Get(reqid.Header))
}
