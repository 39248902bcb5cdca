// Package language binds a language preference to every public request and
// serves GET/PUT /api/language.
package language

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"amazetimes/internal/handler/http/respond"
	"amazetimes/internal/i18n"
	"amazetimes/internal/observability/metrics"
	"amazetimes/internal/preference"
)

type ctxKey struct{}

// Middleware opens a preference store for the request, backed by the
// language cookie. Without a cookie the Accept-Language header decides.
func Middleware(secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store := preference.Open(r.Context(), preference.NewCookiePersister(w, r, secureCookie),
				preference.WithAbsentDefault(i18n.Negotiate(r.Header.Get("Accept-Language"))),
				preference.WithOnChange(func(l i18n.Language) {
					metrics.RecordLanguageSwitch(string(l))
				}))
			ctx := context.WithValue(r.Context(), ctxKey{}, store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Store returns the preference store of the request. Outside Middleware it
// returns an English store that persists nothing.
func Store(ctx context.Context) *preference.Store {
	if s, ok := ctx.Value(ctxKey{}).(*preference.Store); ok {
		return s
	}
	return preference.Open(ctx, nil)
}

// Resolver returns the resolver for the request's language.
func Resolver(r *http.Request) i18n.Resolver {
	return Store(r.Context()).Resolver()
}

// Response is the body of both language endpoints.
type Response struct {
	Language  i18n.Language   `json:"language"`
	Available []i18n.Language `json:"available"`
}

type setRequest struct {
	Language string `json:"language"`
}

func response(l i18n.Language) Response {
	return Response{Language: l, Available: []i18n.Language{i18n.English, i18n.Tamil}}
}

// Get returns the current language.
func Get(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, response(Store(r.Context()).Language()))
}

// Set changes the language and persists it in the cookie.
func Set(w http.ResponseWriter, r *http.Request) {
	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	store := Store(r.Context())
	if err := store.SetLanguage(r.Context(), i18n.Language(req.Language)); err != nil {
		if errors.Is(err, preference.ErrInvalidLanguage) {
			respond.SafeError(w, http.StatusBadRequest, err)
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, response(store.Language()))
}
