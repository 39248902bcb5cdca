package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/observability/metrics"
	"amazetimes/internal/observability/tracing"
	"amazetimes/internal/repository"
	"amazetimes/internal/slug"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// MaxLimit caps every listing.
const MaxLimit = 100

// Fields are the editable columns of an article. Slug and source are not
// editable and therefore absent.
type Fields struct {
	TitleEN       string
	TitleTA       string
	ContentEN     string
	ContentTA     string
	Category      entity.Category
	PartyID       *string
	IsBreaking    bool
	IsFeatured    bool
	Status        entity.Status
	FeaturedImage *string
}

// FieldsOf copies the editable columns of a.
func FieldsOf(a *entity.Article) Fields {
	return Fields{
		TitleEN:       a.TitleEN,
		TitleTA:       a.TitleTA,
		ContentEN:     a.ContentEN,
		ContentTA:     a.ContentTA,
		Category:      a.Category,
		PartyID:       a.PartyID,
		IsBreaking:    a.IsBreaking,
		IsFeatured:    a.IsFeatured,
		Status:        a.Status,
		FeaturedImage: a.FeaturedImage,
	}
}

// Service provides content use cases. Reads are single round trips with no
// retries; errors propagate to the caller.
type Service struct {
	Articles repository.ArticleRepository
	Parties  repository.PartyRepository
	Slugs    *slug.Generator
	Now      func() time.Time
	NewID    func() string
}

// NewService wires a Service with the wall clock and random UUIDs.
func NewService(articles repository.ArticleRepository, parties repository.PartyRepository) *Service {
	return &Service{
		Articles: articles,
		Parties:  parties,
		Slugs:    slug.NewGenerator(time.Now),
		Now:      time.Now,
		NewID:    func() string { return uuid.NewString() },
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *Service) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracing.GetTracer().Start(ctx, "content."+op, trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func checkLimit(limit int) error {
	if limit <= 0 || limit > MaxLimit {
		return fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return nil
}

func (s *Service) list(ctx context.Context, op string, f repository.ArticleFilter) (out []*entity.Article, err error) {
	ctx, span := s.start(ctx, op, attribute.Int("limit", f.Limit))
	defer func() { finish(span, err) }()

	if err = checkLimit(f.Limit); err != nil {
		return nil, err
	}
	start := time.Now()
	out, err = s.Articles.List(ctx, f)
	metrics.RecordDBQuery(op, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	span.SetAttributes(attribute.Int("rows", len(out)))
	return out, nil
}

/* ───────── 公開読み取り ───────── */

// ListLatestPublished returns up to limit published articles, newest first.
func (s *Service) ListLatestPublished(ctx context.Context, limit int) ([]*entity.Article, error) {
	return s.list(ctx, "list_latest", repository.Published(limit))
}

// ListBreaking returns up to limit published breaking articles, newest first.
func (s *Service) ListBreaking(ctx context.Context, limit int) ([]*entity.Article, error) {
	f := repository.Published(limit)
	f.BreakingOnly = true
	return s.list(ctx, "list_breaking", f)
}

// ListByParty returns up to limit published articles of one party.
func (s *Service) ListByParty(ctx context.Context, partyID string, limit int) ([]*entity.Article, error) {
	if strings.TrimSpace(partyID) == "" {
		return nil, fmt.Errorf("list_by_party: %w: party id is required", entity.ErrInvalidInput)
	}
	f := repository.Published(limit)
	f.PartyID = partyID
	return s.list(ctx, "list_by_party", f)
}

// ListRelated returns up to limit published articles of the same party,
// excluding excludeID.
func (s *Service) ListRelated(ctx context.Context, partyID, excludeID string, limit int) ([]*entity.Article, error) {
	if strings.TrimSpace(partyID) == "" {
		return nil, fmt.Errorf("list_related: %w: party id is required", entity.ErrInvalidInput)
	}
	f := repository.Published(limit)
	f.PartyID = partyID
	f.ExcludeID = excludeID
	return s.list(ctx, "list_related", f)
}

// GetBySlug returns the published article with slug. A missing or
// unpublished article yields (nil, nil).
func (s *Service) GetBySlug(ctx context.Context, slug string) (*entity.Article, error) {
	if slug == "" {
		return nil, nil
	}
	f := repository.Published(1)
	f.Slug = slug
	out, err := s.list(ctx, "get_by_slug", f)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

// ListParties returns every party ordered by English name.
func (s *Service) ListParties(ctx context.Context) (out []*entity.Party, err error) {
	ctx, span := s.start(ctx, "list_parties")
	defer func() { finish(span, err) }()

	start := time.Now()
	out, err = s.Parties.List(ctx)
	metrics.RecordDBQuery("list_parties", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("list parties: %w", err)
	}
	return out, nil
}

// GetPartyBySlug returns (nil, nil) when no party has slug.
func (s *Service) GetPartyBySlug(ctx context.Context, slug string) (p *entity.Party, err error) {
	ctx, span := s.start(ctx, "get_party_by_slug", attribute.String("slug", slug))
	defer func() { finish(span, err) }()

	if slug == "" {
		return nil, nil
	}
	start := time.Now()
	p, err = s.Parties.GetBySlug(ctx, slug)
	metrics.RecordDBQuery("get_party_by_slug", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("get party by slug: %w", err)
	}
	return p, nil
}

/* ───────── 管理 ───────── */

// ListAll returns every article, drafts included, by creation time.
func (s *Service) ListAll(ctx context.Context) (out []*entity.Article, err error) {
	ctx, span := s.start(ctx, "list_all")
	defer func() { finish(span, err) }()

	start := time.Now()
	out, err = s.Articles.List(ctx, repository.ArticleFilter{Order: repository.OrderCreatedDesc})
	metrics.RecordDBQuery("list_all", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("list all: %w", err)
	}
	return out, nil
}

// GetArticle returns an article by id regardless of status.
func (s *Service) GetArticle(ctx context.Context, id string) (*entity.Article, error) {
	if id == "" {
		return nil, ErrInvalidArticleID
	}
	a, err := s.Articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}
	return a, nil
}

// CreateArticle stores a manual article. The slug is derived from the
// English title at this moment.
func (s *Service) CreateArticle(ctx context.Context, f Fields) (*entity.Article, error) {
	return s.create(ctx, f, entity.SourceManual, nil)
}

// CreateIngested stores an article produced by feed ingestion.
func (s *Service) CreateIngested(ctx context.Context, f Fields, sourceURL string) (*entity.Article, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("create ingested: %w: source url is required", entity.ErrInvalidInput)
	}
	return s.create(ctx, f, entity.SourceAuto, &sourceURL)
}

func (s *Service) create(ctx context.Context, f Fields, src entity.Source, sourceURL *string) (a *entity.Article, err error) {
	ctx, span := s.start(ctx, "create_article", attribute.String("source", string(src)))
	defer func() { finish(span, err) }()

	now := s.now()
	gen := s.Slugs
	if gen == nil {
		gen = slug.NewGenerator(s.now)
	}
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	a = &entity.Article{
		ID:        newID(),
		Slug:      gen.Generate(f.TitleEN),
		Source:    src,
		SourceURL: sourceURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	apply(a, f, now)

	if err = s.Articles.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create article: %w", err)
	}
	metrics.RecordArticleMutation("create", string(src))
	return a, nil
}

// UpdateArticle rewrites every editable field of an existing article.
// Slug, source and creation time are kept.
func (s *Service) UpdateArticle(ctx context.Context, id string, f Fields) (a *entity.Article, err error) {
	ctx, span := s.start(ctx, "update_article", attribute.String("id", id))
	defer func() { finish(span, err) }()

	if id == "" {
		return nil, ErrInvalidArticleID
	}
	current, err := s.Articles.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if current == nil {
		return nil, ErrArticleNotFound
	}

	now := s.now()
	apply(current, f, now)
	current.UpdatedAt = now

	if err = s.Articles.Update(ctx, current); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, fmt.Errorf("update article: %w", err)
	}
	metrics.RecordArticleMutation("update", string(current.Source))
	return current, nil
}

// DeleteArticle removes an article. Deleting a missing id succeeds.
func (s *Service) DeleteArticle(ctx context.Context, id string) (err error) {
	ctx, span := s.start(ctx, "delete_article", attribute.String("id", id))
	defer func() { finish(span, err) }()

	if id == "" {
		return ErrInvalidArticleID
	}
	if err = s.Articles.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	metrics.RecordArticleMutation("delete", "")
	return nil
}

// apply copies f onto a. published_at is stamped the first time the article
// becomes published and kept afterwards.
func apply(a *entity.Article, f Fields, now time.Time) {
	a.TitleEN = f.TitleEN
	a.TitleTA = f.TitleTA
	a.ContentEN = f.ContentEN
	a.ContentTA = f.ContentTA
	a.Category = f.Category
	if a.Category == "" {
		a.Category = entity.CategoryGeneral
	}
	a.PartyID = nonEmpty(f.PartyID)
	a.IsBreaking = f.IsBreaking
	a.IsFeatured = f.IsFeatured
	a.Status = f.Status
	if a.Status == "" {
		a.Status = entity.StatusPublished
	}
	a.FeaturedImage = nonEmpty(f.FeaturedImage)
	if a.Status == entity.StatusPublished && a.PublishedAt == nil {
		t := now
		a.PublishedAt = &t
	}
	if a.PartyID == nil {
		a.Party = nil
	}
}

func nonEmpty(p *string) *string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
