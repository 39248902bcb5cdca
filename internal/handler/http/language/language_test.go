package language_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"amazetimes/internal/handler/http/language"
	"amazetimes/internal/i18n"
	"amazetimes/internal/preference"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/language", language.Get)
	mux.HandleFunc("PUT /api/language", language.Set)
	mux.HandleFunc("GET /api/title", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(language.Resolver(r).Text("News", "செய்திகள்")))
	})
	return language.Middleware(false)(mux)
}

func get(t *testing.T, h http.Handler, path string, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if mutate != nil {
		mutate(r)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestGet_DefaultsToEnglish(t *testing.T) {
	w := get(t, router(), "/api/language", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp language.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, i18n.English, resp.Language)
	assert.Equal(t, []i18n.Language{i18n.English, i18n.Tamil}, resp.Available)
}

func TestResolver_CookieThenAcceptLanguage(t *testing.T) {
	h := router()

	w := get(t, h, "/api/title", func(r *http.Request) {
		r.Header.Set("Accept-Language", "ta-IN,ta;q=0.9,en;q=0.5")
	})
	assert.Equal(t, "செய்திகள்", w.Body.String())

	w = get(t, h, "/api/title", func(r *http.Request) {
		r.Header.Set("Accept-Language", "ta")
		r.AddCookie(&http.Cookie{Name: preference.Key, Value: "en"})
	})
	assert.Equal(t, "News", w.Body.String())

	w = get(t, h, "/api/title", func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: preference.Key, Value: "fr"})
	})
	assert.Equal(t, "News", w.Body.String())
}

func TestSet_PersistsCookie(t *testing.T) {
	h := router()

	r := httptest.NewRequest(http.MethodPut, "/api/language", strings.NewReader(`{"language":"ta"}`))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, preference.Key, cookies[0].Name)
	assert.Equal(t, "ta", cookies[0].Value)
	assert.Equal(t, 365*24*60*60, cookies[0].MaxAge)

	// 次のリクエストでは Cookie から復元される
	w = get(t, h, "/api/title", func(r *http.Request) { r.AddCookie(cookies[0]) })
	assert.Equal(t, "செய்திகள்", w.Body.String())
}

func TestSet_RejectsInvalid(t *testing.T) {
	h := router()
	for _, body := range []string{`{"language":"fr"}`, `{"language":""}`, `nope`} {
		r := httptest.NewRequest(http.MethodPut, "/api/language", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Empty(t, w.Result().Cookies(), body)
	}
}
