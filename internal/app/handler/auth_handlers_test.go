package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/app/service"
)

// fakeProvider serves just enough OIDC discovery metadata for the relying
// party to build an authorization URL.
func fakeProvider(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/.well-known/openid-configuration", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"issuer": %q,
			"authorization_endpoint": %q,
			"token_endpoint": %q,
			"jwks_uri": %q
		}`, srv.URL, srv.URL+"/auth", srv.URL+"/token", srv.URL+"/keys")
	})

	return srv
}

func newTestAuthHandler(t *testing.T, issuer string) *AuthHandler {
	t.Helper()

	cfg := service.OIDCConfig{}
	if issuer != "" {
		cfg = service.OIDCConfig{
			Issuer:       issuer,
			ClientID:     "cutly",
			ClientSecret: "secret",
			RedirectURL:  "http://localhost:8080/api/auth/callback",
		}
	}

	oidc := service.NewOIDC(cfg, zap.NewNop())
	auth := service.NewAuth("test-secret", "http://localhost:8080")

	return NewAuth(oidc, auth, zap.NewNop())
}

func cookieByName(t *testing.T, res *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range res.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestLoginNotConfigured(t *testing.T) {
	handler := newTestAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "OIDC not configured")
}

func TestLoginRedirectsToProvider(t *testing.T) {
	provider := fakeProvider(t)
	handler := newTestAuthHandler(t, provider.URL)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/login", nil)
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Contains(t, rr.Header().Get("Location"), provider.URL+"/auth")

	res := rr.Result()
	defer res.Body.Close()

	stateCookie := cookieByName(t, res, service.StateCookieName)
	verifierCookie := cookieByName(t, res, service.VerifierCookieName)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)
	assert.NotEmpty(t, stateCookie.Value)
	assert.NotEmpty(t, verifierCookie.Value)
	assert.Equal(t, service.LoginAttemptMaxAge, stateCookie.MaxAge)
	assert.True(t, stateCookie.HttpOnly)
	assert.True(t, verifierCookie.HttpOnly)
}

func TestCallbackMissingParams(t *testing.T) {
	handler := newTestAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback", nil)
	rr := httptest.NewRecorder()
	handler.Callback(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, authFailedRedirect, rr.Header().Get("Location"))
}

func TestCallbackMissingCookies(t *testing.T) {
	handler := newTestAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=abc&state=xyz", nil)
	rr := httptest.NewRecorder()
	handler.Callback(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, authFailedRedirect, rr.Header().Get("Location"))
}

func TestCallbackStateMismatch(t *testing.T) {
	handler := newTestAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: service.StateCookieName, Value: "expected"})
	req.AddCookie(&http.Cookie{Name: service.VerifierCookieName, Value: "verifier"})

	rr := httptest.NewRecorder()
	handler.Callback(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, authFailedRedirect, rr.Header().Get("Location"))
}

func TestCallbackClearsTransientCookies(t *testing.T) {
	handler := newTestAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=abc&state=forged", nil)
	req.AddCookie(&http.Cookie{Name: service.StateCookieName, Value: "expected"})
	req.AddCookie(&http.Cookie{Name: service.VerifierCookieName, Value: "verifier"})

	rr := httptest.NewRecorder()
	handler.Callback(rr, req)

	res := rr.Result()
	defer res.Body.Close()

	stateCookie := cookieByName(t, res, service.StateCookieName)
	verifierCookie := cookieByName(t, res, service.VerifierCookieName)
	require.NotNil(t, stateCookie)
	require.NotNil(t, verifierCookie)
	assert.Equal(t, -1, stateCookie.MaxAge)
	assert.Equal(t, -1, verifierCookie.MaxAge)
}

func TestLogout(t *testing.T) {
	handler := newTestAuthHandler(t, "")

	req := httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	res := rr.Result()
	defer res.Body.Close()

	sessionCookie := cookieByName(t, res, service.SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.Empty(t, sessionCookie.Value)
	assert.Equal(t, -1, sessionCookie.MaxAge)
}
