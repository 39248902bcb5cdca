package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/observability/metrics"
	"amazetimes/internal/query"
	"amazetimes/internal/usecase/content"
)

// State is the editor lifecycle.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Mode tells whether a submit creates or updates.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

func (m Mode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "create"
}

// Store is the subset of the content service the editor writes through.
type Store interface {
	GetArticle(ctx context.Context, id string) (*entity.Article, error)
	CreateArticle(ctx context.Context, f content.Fields) (*entity.Article, error)
	UpdateArticle(ctx context.Context, id string, f content.Fields) (*entity.Article, error)
	DeleteArticle(ctx context.Context, id string) error
}

// Invalidator drops cached reads made stale by a mutation.
type Invalidator interface {
	Invalidate(m query.Mutation) int
}

// Outcome describes a successful submit.
type Outcome struct {
	Mode        Mode
	Article     *entity.Article
	Invalidated int
	// Replayed is set when the outcome comes from the idempotency ledger
	// instead of a new write.
	Replayed bool
}

// Editor holds one form buffer and its edit target. It is safe for
// concurrent use; only one submission runs at a time.
type Editor struct {
	store  Store
	cache  Invalidator
	ledger *Ledger
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	form    Form
	target  string
	lastErr error
}

// New returns an editor in the empty state. ledger may be shared between
// editors; nil disables token checks.
func New(store Store, cache Invalidator, ledger *Ledger, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{
		store:  store,
		cache:  cache,
		ledger: ledger,
		logger: logger,
		form:   DefaultForm(),
	}
}

// State returns the current state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Form returns a copy of the buffer.
func (e *Editor) Form() Form {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// Target returns the id being edited, or "" in create mode.
func (e *Editor) Target() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.target
}

// Mode derives the mode from the edit target.
func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode()
}

func (e *Editor) mode() Mode {
	return modeOf(e.target)
}

// LastError returns the error of the last failed submit.
func (e *Editor) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Reset clears the buffer and the edit target.
func (e *Editor) Reset() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	e.reset()
	return nil
}

func (e *Editor) reset() {
	e.form = DefaultForm()
	e.target = ""
	e.state = StateEmpty
	e.lastErr = nil
}

// Open loads an existing article into the buffer and switches to edit mode.
func (e *Editor) Open(ctx context.Context, id string) (Form, error) {
	e.mu.Lock()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		return Form{}, ErrSubmitInFlight
	}
	e.mu.Unlock()

	a, err := e.store.GetArticle(ctx, id)
	if err != nil {
		return Form{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return Form{}, ErrSubmitInFlight
	}
	e.form = FormFromArticle(a)
	e.target = a.ID
	e.state = StatePopulated
	e.lastErr = nil
	return e.form, nil
}

// Set replaces the buffer, keeping the current mode.
func (e *Editor) Set(f Form) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateSubmitting {
		return ErrSubmitInFlight
	}
	e.form = f
	e.state = StatePopulated
	return nil
}

// Submit validates the buffer and, when valid, creates or updates the
// article. A validation failure never reaches the store. On success the
// buffer is reset and the dependent queries are invalidated; on failure the
// buffer is kept for correction.
//
// token is an optional idempotency key. A token seen before returns the
// first outcome without writing again.
func (e *Editor) Submit(ctx context.Context, token string) (*Outcome, error) {
	e.mu.Lock()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		metrics.RecordEditorSubmission(e.mode().String(), "duplicate")
		return nil, ErrSubmitInFlight
	}
	return e.submitLocked(ctx, token)
}

// SubmitTo loads f as the buffer for target ("" creates) and submits it
// under the same lock hold, so a concurrent Open or Reset cannot change the
// edit target between the two steps.
func (e *Editor) SubmitTo(ctx context.Context, target string, f Form, token string) (*Outcome, error) {
	e.mu.Lock()
	if e.state == StateSubmitting {
		e.mu.Unlock()
		metrics.RecordEditorSubmission(modeOf(target).String(), "duplicate")
		return nil, ErrSubmitInFlight
	}
	e.form = f
	e.target = target
	e.state = StatePopulated
	e.lastErr = nil
	return e.submitLocked(ctx, token)
}

func modeOf(target string) Mode {
	if target != "" {
		return ModeEdit
	}
	return ModeCreate
}

// submitLocked runs a submit with e.mu held on entry. It releases the lock.
func (e *Editor) submitLocked(ctx context.Context, token string) (*Outcome, error) {
	mode := e.mode()
	if token != "" && e.ledger != nil {
		prior, err := e.ledger.claim(token)
		if err != nil {
			e.mu.Unlock()
			metrics.RecordEditorSubmission(mode.String(), "duplicate")
			return nil, err
		}
		if prior != nil {
			e.mu.Unlock()
			return prior, nil
		}
	}

	e.state = StateValidating
	if v := Validate(e.form); !v.OK() {
		e.state = StateFailed
		e.lastErr = v.Err()
		e.mu.Unlock()
		e.releaseToken(token)
		metrics.RecordEditorValidationFailure(v.Err().Field)
		metrics.RecordEditorSubmission(mode.String(), "invalid")
		return nil, v.Err()
	}

	e.state = StateSubmitting
	fields := e.form.Fields()
	target := e.target
	e.mu.Unlock()

	var (
		article  *entity.Article
		err      error
		mutation query.Mutation
	)
	if mode == ModeEdit {
		mutation = content.MutationUpdate
		article, err = e.store.UpdateArticle(ctx, target, fields)
	} else {
		mutation = content.MutationCreate
		article, err = e.store.CreateArticle(ctx, fields)
	}

	if err != nil {
		e.mu.Lock()
		e.state = StateFailed
		e.lastErr = err
		e.mu.Unlock()
		e.releaseToken(token)
		metrics.RecordEditorSubmission(mode.String(), "failure")
		e.logger.Warn("article submit failed",
			slog.String("mode", mode.String()),
			slog.String("target", target),
			slog.Any("error", err))
		return nil, err
	}

	out := Outcome{Mode: mode, Article: article}
	if e.cache != nil {
		out.Invalidated = e.cache.Invalidate(mutation)
	}

	e.mu.Lock()
	e.reset()
	e.state = StateSucceeded
	e.mu.Unlock()
	if token != "" && e.ledger != nil {
		e.ledger.complete(token, out)
	}
	metrics.RecordEditorSubmission(mode.String(), "success")
	e.logger.Info("article saved",
		slog.String("mode", mode.String()),
		slog.String("id", article.ID),
		slog.String("slug", article.Slug),
		slog.Int("invalidated", out.Invalidated))
	return &out, nil
}

func (e *Editor) releaseToken(token string) {
	if token != "" && e.ledger != nil {
		e.ledger.release(token)
	}
}

// Delete removes an article directly, without touching the buffer. If the
// deleted article is the edit target the editor resets.
func (e *Editor) Delete(ctx context.Context, id string) (int, error) {
	if err := e.store.DeleteArticle(ctx, id); err != nil {
		return 0, err
	}
	n := 0
	if e.cache != nil {
		n = e.cache.Invalidate(content.MutationDelete)
	}

	e.mu.Lock()
	if e.target == id && e.state != StateSubmitting {
		e.reset()
	}
	e.mu.Unlock()

	e.logger.Info("article deleted", slog.String("id", id), slog.Int("invalidated", n))
	return n, nil
}

// IsValidation reports whether err is a form validation failure.
func IsValidation(err error) bool {
	var ve *entity.ValidationError
	return errors.As(err, &ve)
}
