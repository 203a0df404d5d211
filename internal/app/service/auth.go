package service

import (
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "oidc_session"

// TokenExp is the validity window of a session token and its cookie.
const TokenExp = 24 * time.Hour

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
}

// Auth mints and verifies session tokens and decides cookie attributes.
// It holds no per-session state: validity is signature plus expiry.
type Auth struct {
	secret       string
	secureCookie bool
}

// NewAuth builds the session service. An empty secret is tolerated here and
// rejected at first use, so a deployment without login configured can still
// boot. Cookies are Secure when the public base URL is https.
func NewAuth(secret string, baseURL string) *Auth {
	return &Auth{
		secret:       secret,
		secureCookie: strings.HasPrefix(baseURL, "https://"),
	}
}

// Issue signs a token for the user, expiring after TokenExp.
func (a *Auth) Issue(userID string, displayName string) (string, error) {
	if a.secret == "" {
		return "", ErrSecretNotConfigured
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(TokenExp)),
		},
		UserID:      userID,
		DisplayName: displayName,
	})

	return token.SignedString([]byte(a.secret))
}

// Verify checks signature, expiry and payload shape. Every failure collapses
// to ErrInvalidSession so a caller (or attacker) cannot tell why a token was
// rejected.
func (a *Auth) Verify(tokenString string) (*Identity, error) {
	if a.secret == "" {
		return nil, ErrSecretNotConfigured
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSession
		}
		return []byte(a.secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}

	if claims.UserID == "" {
		return nil, ErrInvalidSession
	}

	displayName := claims.DisplayName
	if displayName == "" {
		displayName = claims.UserID
	}

	return &Identity{
		UserID:      claims.UserID,
		DisplayName: displayName,
	}, nil
}

// SessionCookie wraps a signed token in the session cookie.
func (a *Auth) SessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenExp.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.secureCookie,
	}
}

// ExpiredSessionCookie clears the session cookie on logout.
func (a *Auth) ExpiredSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   a.secureCookie,
	}
}

// SecureCookies reports whether cookies carry the Secure attribute.
func (a *Auth) SecureCookies() bool {
	return a.secureCookie
}
