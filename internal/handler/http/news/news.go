// Package news serves the public, language-resolved pages of the site.
package news

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"amazetimes/internal/ads"
	"amazetimes/internal/handler/http/language"
	"amazetimes/internal/handler/http/respond"
	"amazetimes/internal/i18n"
	"amazetimes/internal/observability/logging"
	"amazetimes/internal/usecase/page"
)

// NotFound is the body of a 404 for a missing party or article.
type NotFound struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Link      string `json:"link"`
	LinkLabel string `json:"link_label"`
}

// Handler serves the public API.
type Handler struct {
	Pages  *page.Service
	Ads    *ads.Service
	Logger *slog.Logger
}

// Register mounts the public routes on mux.
func Register(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/home", h.Home)
	mux.HandleFunc("GET /api/breaking", h.Breaking)
	mux.HandleFunc("GET /api/parties", h.Parties)
	mux.HandleFunc("GET /api/parties/{slug}", h.Party)
	mux.HandleFunc("GET /api/parties/{slug}/articles/{articleSlug}", h.Article)
	mux.HandleFunc("GET /api/ads", h.AdManifest)
	mux.HandleFunc("POST /api/ads/failures", h.AdFailure)
	mux.HandleFunc("GET /api/language", language.Get)
	mux.HandleFunc("PUT /api/language", language.Set)
}

func notFound(w http.ResponseWriter, r i18n.Resolver, title, msg i18n.Message) {
	respond.JSON(w, http.StatusNotFound, NotFound{
		Error:     r.Message(title),
		Message:   r.Message(msg),
		Link:      "/",
		LinkLabel: r.Message(i18n.MsgReturnHome),
	})
}

// Home returns the breaking ticker, featured and latest cards.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Pages.Home(r.Context(), language.Resolver(r)))
}

// Breaking returns the ticker items.
func (h *Handler) Breaking(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Pages.Ticker(r.Context(), language.Resolver(r)))
}

// Parties returns the party index.
func (h *Handler) Parties(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Pages.Parties(r.Context(), language.Resolver(r)))
}

// Party returns one party with its articles, filtered by the category tab.
func (h *Handler) Party(w http.ResponseWriter, r *http.Request) {
	res := language.Resolver(r)
	p, err := h.Pages.Party(r.Context(), res, r.PathValue("slug"), r.URL.Query().Get("category"))
	switch {
	case errors.Is(err, page.ErrPartyNotFound):
		notFound(w, res, i18n.MsgPartyNotFound, i18n.MsgPartyMissing)
	case err != nil:
		respond.SafeError(w, http.StatusInternalServerError, err)
	default:
		respond.JSON(w, http.StatusOK, p)
	}
}

// Article returns an article and its related articles.
func (h *Handler) Article(w http.ResponseWriter, r *http.Request) {
	res := language.Resolver(r)
	a, err := h.Pages.Article(r.Context(), res, r.PathValue("articleSlug"))
	switch {
	case errors.Is(err, page.ErrArticleNotFound):
		notFound(w, res, i18n.MsgArticleNotFound, i18n.MsgArticleMissing)
	case err != nil:
		respond.SafeError(w, http.StatusInternalServerError, err)
	default:
		respond.JSON(w, http.StatusOK, a)
	}
}

// AdManifest returns the ad script and slots of ?page=.
func (h *Handler) AdManifest(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, h.Ads.Manifest(language.Resolver(r), r.URL.Query().Get("page")))
}

// AdFailure records a placement that failed to load. Reports never fail
// from the client's point of view; a malformed body is only logged.
func (h *Handler) AdFailure(w http.ResponseWriter, r *http.Request) {
	var f ads.Failure
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		logger := h.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logging.ForRequest(r.Context(), logger).Debug("malformed ad failure report", slog.Any("error", err))
		w.WriteHeader(http.StatusNoContent)
		return
	}
	h.Ads.ReportFailure(r.Context(), f)
	w.WriteHeader(http.StatusNoContent)
}
