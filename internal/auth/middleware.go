package auth

import (
	"context"
	"net/http"
	"strings"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

// CookieName is checked after the Authorization header and the token query
// parameter.
const CookieName = "fintrack_token"

type userKey struct{}

// WithUserID returns ctx carrying the authenticated user.
func WithUserID(ctx context.Context, userID core.ID) context.Context {
	return context.WithValue(ctx, userKey{}, userID)
}

// UserID returns the authenticated user, if any.
func UserID(ctx context.Context) (core.ID, bool) {
	id, ok := ctx.Value(userKey{}).(core.ID)
	return id, ok && !id.IsZero()
}

// TokenFromRequest looks for a token in the Authorization header, then the
// token query parameter (downloads), then the session cookie.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
	}
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Middleware rejects requests without a valid token through deny and
// otherwise stores the user ID in the request context.
func Middleware(v *Verifier, deny func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := TokenFromRequest(r)
			if tokenStr == "" {
				deny(w, r, ErrMissingToken)
				return
			}
			userID, err := v.Verify(tokenStr)
			if err != nil {
				applog.FromContext(r.Context()).WithComponent(applog.ComponentAuth).
					WarnContext(r.Context(), "Token rejected", applog.FieldError, err.Error())
				deny(w, r, err)
				return
			}

			ctx := WithUserID(r.Context(), userID)
			logger := applog.FromContext(ctx).With(applog.FieldUserID, string(userID))
			next.ServeHTTP(w, r.WithContext(applog.NewContext(ctx, logger)))
		})
	}
}
