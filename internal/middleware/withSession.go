package middleware

import (
	"context"
	"net/http"

	"github.com/skrylnikov/cutly/internal/app/service"
)

// ContextKey is a private key type for request context values.
type ContextKey string

// IdentityKey stores the authenticated *service.Identity, when present.
const IdentityKey ContextKey = "identity"

// WithSession verifies the session cookie, if any, and injects the
// authenticated identity into the request context. A missing or invalid
// cookie is not an error: the request simply proceeds anonymous, and any
// must-be-logged-in policy is enforced by the route handlers.
func WithSession(auth *service.Auth) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.SessionCookieName)
			if err == nil {
				if identity, verr := auth.Verify(cookie.Value); verr == nil {
					ctx := context.WithValue(r.Context(), IdentityKey, identity)
					r = r.WithContext(ctx)
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFrom extracts the authenticated identity from a request context.
func IdentityFrom(ctx context.Context) (*service.Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(*service.Identity)
	return identity, ok && identity != nil
}

// InjectIdentity attaches an identity to the request context. Used by tests.
func InjectIdentity(req *http.Request, identity *service.Identity) *http.Request {
	ctx := context.WithValue(req.Context(), IdentityKey, identity)
	return req.WithContext(ctx)
}
