package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const identityKey contextKey = "cart_identity"

const guestCookieName = "cart_session"

// WithIdentity returns a context carrying the cart identity. Exposed for
// handler tests.
func WithIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func identityFromContext(ctx context.Context) string {
	if identity, ok := ctx.Value(identityKey).(string); ok {
		return identity
	}
	return ""
}

// IdentityMiddleware resolves the cart identity for each request: the
// X-User-ID header when the upstream auth layer set one, otherwise the guest
// session cookie, minted here when the client arrives without one.
func IdentityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var identity string
		if userID := r.Header.Get("X-User-ID"); userID != "" {
			identity = "user:" + userID
		} else {
			token := ""
			if cookie, err := r.Cookie(guestCookieName); err == nil && cookie.Value != "" {
				token = cookie.Value
			} else {
				token = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     guestCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int((90 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			identity = "guest:" + token
		}

		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}
