package kernel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/shopfront/app/repositories"
	"github.com/shashiranjanraj/shopfront/pkg/storage"
)

func newKernel(t *testing.T) (*HTTP, string) {
	t.Helper()
	t.Setenv("API_URL", "/api/v1")
	t.Setenv("RATE_LIMIT", "1000")
	root := t.TempDir()
	k := New(repositories.NewMemoryStore(), storage.NewLocalDisk(root, UploadsPath))
	t.Cleanup(k.Close)
	return k, root
}

func get(k *HTTP, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	k.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHomeAndMetrics(t *testing.T) {
	k, _ := newKernel(t)

	rec := get(k, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is ready!", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(k, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestUploadsAreServed(t *testing.T) {
	k, root := newKernel(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "mug.png-1.png"), []byte("png"), 0o644))

	rec := get(k, UploadsPath+"/mug.png-1.png")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png", rec.Body.String())
}

func TestUnknownRouteIsEnvelope(t *testing.T) {
	k, _ := newKernel(t)

	rec := get(k, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Route not found"}`, rec.Body.String())
}

func TestAPIRoutesMounted(t *testing.T) {
	k, _ := newKernel(t)

	rec := get(k, "/api/v1/categories")
	assert.Equal(t, http.StatusOK, rec.Code)

	var names []string
	for _, r := range k.Routes() {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "orders.store")
	assert.Contains(t, names, "uploads")
}
