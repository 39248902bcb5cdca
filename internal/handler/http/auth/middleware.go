package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"amazetimes/internal/handler/http/respond"
	authservice "amazetimes/internal/service/auth"
)

// CookieName is the session cookie set at login.
const CookieName = "amazetimes-session"

// LoginPath is where browser navigations without a session are sent.
const LoginPath = "/admin"

type ctxKey struct{}

// WithAccount returns a copy of ctx carrying acc.
func WithAccount(ctx context.Context, acc authservice.Account) context.Context {
	return context.WithValue(ctx, ctxKey{}, acc)
}

// AccountFromContext returns the account set by Guard.RequireAdmin.
func AccountFromContext(ctx context.Context) (authservice.Account, bool) {
	acc, ok := ctx.Value(ctxKey{}).(authservice.Account)
	return acc, ok
}

// Guard authenticates requests against issued, unrevoked tokens.
type Guard struct {
	issuer  *Issuer
	revoked *Revocations
}

// NewGuard creates a Guard. revoked may be nil.
func NewGuard(issuer *Issuer, revoked *Revocations) *Guard {
	return &Guard{issuer: issuer, revoked: revoked}
}

func tokenFrom(r *http.Request) string {
	const prefix = "Bearer "
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, prefix))
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate returns the claims of the request's session token.
func (g *Guard) Authenticate(r *http.Request) (*Claims, error) {
	claims, err := g.issuer.Parse(tokenFrom(r))
	if err != nil {
		return nil, err
	}
	if g.revoked != nil && g.revoked.Revoked(claims.ID) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// wantsHTML reports whether r is a browser page navigation.
func wantsHTML(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// RequireAdmin lets only sessions with the admin role through. Browser
// navigations are redirected to LoginPath with 303; API calls get 401, or
// 403 for a valid session without the admin role.
func (g *Guard) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := g.Authenticate(r)
		if err == nil && claims.Role != authservice.RoleAdmin {
			RecordForbidden("role", r.Method)
			if wantsHTML(r) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			respond.Error(w, http.StatusForbidden, "forbidden")
			return
		}
		if err != nil {
			reason := "invalid_token"
			if errors.Is(err, ErrNoToken) {
				reason = "no_token"
			}
			RecordForbidden(reason, r.Method)
			if wantsHTML(r) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			w.Header().Set("WWW-Authenticate", `Bearer realm="amazetimes-admin"`)
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithAccount(r.Context(), claims.Account())))
	})
}
