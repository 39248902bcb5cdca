package preference

import (
	"context"
	"net/http"
	"time"

	"amazetimes/internal/i18n"
)

// cookieMaxAge keeps the preference for a year.
const cookieMaxAge = 365 * 24 * time.Hour

// CookiePersister persists the preference in a browser cookie named Key.
// One persister serves exactly one request/response pair.
type CookiePersister struct {
	r      *http.Request
	w      http.ResponseWriter
	secure bool
}

// NewCookiePersister binds the persister to a request and its response.
func NewCookiePersister(w http.ResponseWriter, r *http.Request, secure bool) *CookiePersister {
	return &CookiePersister{r: r, w: w, secure: secure}
}

// Load implements Persister. It returns "" when the request has no cookie.
func (c *CookiePersister) Load(_ context.Context) (string, error) {
	if ck, err := c.r.Cookie(Key); err == nil {
		return ck.Value, nil
	}
	return "", nil
}

// Save implements Persister.
func (c *CookiePersister) Save(_ context.Context, lang i18n.Language) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     Key,
		Value:    string(lang),
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: false, // クライアント側でも参照する
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
