package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// resetOptions restores the shared options struct after a test so env
// overrides do not leak between cases.
func resetOptions(t *testing.T) {
	t.Helper()
	saved := *options
	t.Cleanup(func() { *options = saved })
}

func TestParseDefaults(t *testing.T) {
	resetOptions(t)

	opts := Parse()

	assert.Equal(t, "localhost:8080", opts.Port)
	assert.Equal(t, "http://localhost:8080", opts.BaseURL)
	assert.Equal(t, 6, opts.DefaultLength)
	assert.Empty(t, opts.DatabaseDSN)
	assert.Empty(t, opts.SQLitePath)
	assert.False(t, opts.EnableHTTPS)
}

func TestParseEnvOverrides(t *testing.T) {
	resetOptions(t)

	t.Setenv("SERVER_ADDRESS", "0.0.0.0:9090")
	t.Setenv("BASE_URL", "https://cut.ly")
	t.Setenv("SHORT_ID_LENGTH", "10")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("OIDC_ISSUER", "https://idp.example")
	t.Setenv("ENABLE_HTTPS", "true")

	opts := Parse()

	assert.Equal(t, "0.0.0.0:9090", opts.Port)
	assert.Equal(t, "https://cut.ly", opts.BaseURL)
	assert.Equal(t, 10, opts.DefaultLength)
	assert.Equal(t, "env-secret", opts.JWTSecret)
	assert.Equal(t, "https://idp.example", opts.OIDCIssuer)
	assert.True(t, opts.EnableHTTPS)
}

func TestParseIgnoresBadLength(t *testing.T) {
	resetOptions(t)

	t.Setenv("SHORT_ID_LENGTH", "not-a-number")

	opts := Parse()

	assert.Equal(t, 6, opts.DefaultLength)
}
