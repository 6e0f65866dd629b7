package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(`
# comment
PORT=3000
export API_URL="/api/v2"
SECRET_KEY='s3cret'
broken line
`), 0o644))

	out := map[string]string{}
	require.NoError(t, mergeDotEnv(path, out))

	assert.Equal(t, "3000", out["PORT"])
	assert.Equal(t, "/api/v2", out["API_URL"])
	assert.Equal(t, "s3cret", out["SECRET_KEY"])
	assert.NotContains(t, out, "BROKEN LINE")
}

func TestMergeJSONConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mongo_db":"shop","rate_limit":50,"nested":{"x":1}}`), 0o644))

	out := map[string]string{}
	require.NoError(t, mergeJSONConfig(path, out))

	assert.Equal(t, "shop", out["MONGO_DB"])
	assert.Equal(t, "50", out["RATE_LIMIT"])
	assert.NotContains(t, out, "NESTED")
}

func TestEnvironmentOverridesFiles(t *testing.T) {
	t.Setenv("API_URL", "api/v9/")
	assert.Equal(t, "/api/v9", APIURL())
}

func TestDuration(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT", "250ms")
	assert.Equal(t, 250*time.Millisecond, RequestTimeout())

	t.Setenv("REQUEST_TIMEOUT", "3")
	assert.Equal(t, 3*time.Second, RequestTimeout())

	t.Setenv("REQUEST_TIMEOUT", "soon")
	assert.Equal(t, defaultRequestTimeout, RequestTimeout())
}

func TestStoreDriverFallsBackToMongo(t *testing.T) {
	t.Setenv("STORE_DRIVER", "cassandra")
	assert.Equal(t, "mongo", StoreDriver())

	t.Setenv("STORE_DRIVER", "MEMORY")
	assert.Equal(t, "memory", StoreDriver())
}
