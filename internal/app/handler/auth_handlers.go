package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/skrylnikov/cutly/internal/app/service"
)

// authFailedRedirect is where every callback failure lands. The client only
// ever sees this generic marker; causes stay in the server log.
const authFailedRedirect = "/?error=auth_failed"

// AuthHandler serves the login, callback and logout entry points. The flow
// is stateless across requests: verifier and state live in short-lived
// cookies, the resulting session in a signed token cookie.
type AuthHandler struct {
	oidc   *service.OIDC
	auth   *service.Auth
	logger *zap.Logger
}

func NewAuth(oidc *service.OIDC, auth *service.Auth, l *zap.Logger) *AuthHandler {
	return &AuthHandler{
		oidc:   oidc,
		auth:   auth,
		logger: l,
	}
}

// Login starts the authorization flow: fresh PKCE verifier and state, two
// ten-minute cookies, redirect to the provider.
func (h *AuthHandler) Login(res http.ResponseWriter, req *http.Request) {
	attempt, err := h.oidc.BeginLogin(req.Context())
	if err != nil {
		if errors.Is(err, service.ErrOIDCNotConfigured) {
			http.Error(res, "OIDC not configured", http.StatusInternalServerError)
			return
		}
		h.logger.Error("cannot start login", zap.Error(err))
		http.Error(res, "Authentication failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(res, h.loginCookie(service.VerifierCookieName, attempt.Verifier, service.LoginAttemptMaxAge))
	http.SetCookie(res, h.loginCookie(service.StateCookieName, attempt.State, service.LoginAttemptMaxAge))

	http.Redirect(res, req, attempt.AuthURL, http.StatusFound)
}

// Callback completes the flow. Missing cookies or a state mismatch reject
// the attempt before any token exchange; success mints the session cookie.
// The transient cookies are cleared on every outcome.
func (h *AuthHandler) Callback(res http.ResponseWriter, req *http.Request) {
	// Transient login cookies are single-use: cleared on every outcome.
	// Headers must be set before the first redirect writes them out.
	http.SetCookie(res, h.loginCookie(service.VerifierCookieName, "", -1))
	http.SetCookie(res, h.loginCookie(service.StateCookieName, "", -1))

	code := req.URL.Query().Get("code")
	state := req.URL.Query().Get("state")
	if code == "" || state == "" {
		h.logger.Info("callback missing code or state")
		h.failAuth(res, req)
		return
	}

	verifierCookie, verr := req.Cookie(service.VerifierCookieName)
	stateCookie, serr := req.Cookie(service.StateCookieName)
	if verr != nil || serr != nil {
		h.logger.Info("callback missing login cookies")
		h.failAuth(res, req)
		return
	}

	if state != stateCookie.Value {
		h.logger.Info("callback state mismatch")
		h.failAuth(res, req)
		return
	}

	identity, err := h.oidc.CompleteLogin(req.Context(), code, verifierCookie.Value)
	if err != nil {
		h.logger.Error("cannot complete login", zap.Error(err))
		h.failAuth(res, req)
		return
	}

	token, err := h.auth.Issue(identity.UserID, identity.DisplayName)
	if err != nil {
		h.logger.Error("cannot issue session token", zap.Error(err))
		h.failAuth(res, req)
		return
	}

	http.SetCookie(res, h.auth.SessionCookie(token))
	http.Redirect(res, req, "/", http.StatusFound)
}

// Logout clears the session cookie and returns home.
func (h *AuthHandler) Logout(res http.ResponseWriter, req *http.Request) {
	http.SetCookie(res, h.auth.ExpiredSessionCookie())
	http.Redirect(res, req, "/", http.StatusFound)
}

func (h *AuthHandler) failAuth(res http.ResponseWriter, req *http.Request) {
	http.Redirect(res, req, authFailedRedirect, http.StatusFound)
}

func (h *AuthHandler) loginCookie(name string, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.auth.SecureCookies(),
	}
}
