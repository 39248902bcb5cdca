// Package route makes the ServeMux pattern that served a request visible to
// the middleware wrapped around the mux. ServeMux records the pattern on the
// request it receives, which outer middleware never sees once any layer in
// between has called WithContext.
package route

import (
	"context"
	"net/http"
	"sync/atomic"
)

type holderKey struct{}

type holder struct {
	pattern atomic.Value // string
}

// Middleware installs an empty pattern holder in the request context.
// It must wrap every middleware that reads Pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Context().Value(holderKey{}).(*holder); ok {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), holderKey{}, &holder{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Capture wraps the mux and stores the matched pattern in the holder.
func Capture(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		if h, ok := r.Context().Value(holderKey{}).(*holder); ok && r.Pattern != "" {
			h.pattern.Store(r.Pattern)
		}
	})
}

// Pattern returns the pattern captured for the request of ctx, or "".
func Pattern(ctx context.Context) string {
	h, ok := ctx.Value(holderKey{}).(*holder)
	if !ok {
		return ""
	}
	p, _ := h.pattern.Load().(string)
	return p
}
