// Package admin serves the article editor API. Every route requires an
// admin session; each admin user gets one editor, so two concurrent
// submissions from the same user are refused with 409. Create and update
// carry their edit target in the request and submit it atomically, so a
// form opened in another tab never redirects a write.
package admin

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/handler/http/auth"
	"amazetimes/internal/handler/http/respond"
	"amazetimes/internal/observability/logging"
	"amazetimes/internal/query"
	"amazetimes/internal/usecase/content"
	"amazetimes/internal/usecase/editor"
)

// IdempotencyHeader carries the optional submission token.
const IdempotencyHeader = "Idempotency-Key"

// Reader is the admin read side of the content service.
type Reader interface {
	ListAll(ctx context.Context) ([]*entity.Article, error)
	ListParties(ctx context.Context) ([]*entity.Party, error)
}

// Handler serves /admin/*.
type Handler struct {
	Content  Reader
	Queries  *query.Client
	Sessions *editor.Sessions
	Logger   *slog.Logger
}

// Register mounts the admin routes on mux behind guard.
func Register(mux *http.ServeMux, guard *auth.Guard, h *Handler) {
	protect := func(fn http.HandlerFunc) http.Handler { return guard.RequireAdmin(fn) }

	mux.Handle("GET /admin/articles", protect(h.List))
	mux.Handle("GET /admin/articles/new", protect(h.New))
	mux.Handle("GET /admin/articles/{id}", protect(h.Get))
	mux.Handle("POST /admin/articles", protect(h.Create))
	mux.Handle("PUT /admin/articles/{id}", protect(h.Update))
	mux.Handle("DELETE /admin/articles/{id}", protect(h.Delete))
	mux.Handle("GET /admin/parties", protect(h.Parties))
}

func (h *Handler) logger(r *http.Request) *slog.Logger {
	base := h.Logger
	if base == nil {
		base = slog.Default()
	}
	return logging.ForRequest(r.Context(), base)
}

// editorFor returns the editor of the session user.
func (h *Handler) editorFor(r *http.Request) *editor.Editor {
	acc, _ := auth.AccountFromContext(r.Context())
	return h.Sessions.For(acc.Username)
}

// writeError maps usecase errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	if !writeKnownError(w, err) {
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}

// writeMutationError is writeError for editor writes: a store failure is
// shown to the admin with secrets masked instead of a generic message.
func writeMutationError(w http.ResponseWriter, err error) {
	if !writeKnownError(w, err) {
		respond.MaskedError(w, http.StatusInternalServerError, err)
	}
}

func writeKnownError(w http.ResponseWriter, err error) bool {
	switch {
	case editor.IsValidation(err):
		respond.SafeError(w, http.StatusBadRequest, err)
	case errors.Is(err, editor.ErrSubmitInFlight), errors.Is(err, editor.ErrDuplicateSubmission):
		respond.SafeError(w, http.StatusConflict, err)
	case errors.Is(err, content.ErrArticleNotFound), errors.Is(err, entity.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "article not found")
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, content.ErrInvalidArticleID):
		respond.SafeError(w, http.StatusBadRequest, err)
	default:
		return false
	}
	return true
}

func decodeForm(r *http.Request) (editor.Form, error) {
	var f editor.Form
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return editor.Form{}, &entity.ValidationError{Field: "body", Message: "invalid request body"}
	}
	return f, nil
}

// List returns every article, drafts included, newest created first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	articles, err := query.Fetch(r.Context(), h.Queries, content.AdminListKey(), h.Content.ListAll)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ArticleDTO, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleDTO(a))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"articles": out})
}

// Parties returns the party options of the form.
func (h *Handler) Parties(w http.ResponseWriter, r *http.Request) {
	parties, err := query.Fetch(r.Context(), h.Queries, content.PartiesKey(), h.Content.ListParties)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]PartyDTO, 0, len(parties))
	for _, p := range parties {
		out = append(out, PartyDTO{ID: p.ID, Slug: p.Slug, NameEN: p.NameEN, NameTA: p.NameTA, Color: p.Color})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"parties": out})
}

// New resets the editor and returns the default create form.
func (h *Handler) New(w http.ResponseWriter, r *http.Request) {
	ed := h.editorFor(r)
	if err := ed.Reset(); err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, FormResponse{Mode: editor.ModeCreate.String(), Form: ed.Form()})
}

// Get opens an article in the editor and returns the populated form.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	form, err := h.editorFor(r).Open(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, FormResponse{Mode: editor.ModeEdit.String(), ID: id, Form: form})
}

// Create submits a new article.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.submit(w, r, "", form, http.StatusCreated)
}

// Update submits changes to an existing article.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	form, err := decodeForm(r)
	if err != nil {
		writeError(w, err)
		return
	}
	h.submit(w, r, r.PathValue("id"), form, http.StatusOK)
}

// submit writes form to target ("" creates). Target and buffer are set and
// submitted in one editor call.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, target string, form editor.Form, code int) {
	out, err := h.editorFor(r).SubmitTo(r.Context(), target, form, r.Header.Get(IdempotencyHeader))
	if err != nil {
		if !editor.IsValidation(err) {
			h.logger(r).Warn("article submit rejected", slog.Any("error", err))
		}
		writeMutationError(w, err)
		return
	}
	if out.Replayed {
		code = http.StatusOK
	}
	respond.JSON(w, code, SubmitResponse{
		Article:     articleDTO(out.Article),
		Invalidated: out.Invalidated,
		Replayed:    out.Replayed,
	})
}

// Delete removes an article. Deleting a missing id succeeds.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	n, err := h.editorFor(r).Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		writeMutationError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]int{"invalidated": n})
}
