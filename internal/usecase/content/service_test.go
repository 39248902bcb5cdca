package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/repository"
	"amazetimes/internal/slug"
	"amazetimes/internal/usecase/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── スタブ実装 ───────── */

type stubArticles struct {
	data    map[string]*entity.Article
	filters []repository.ArticleFilter
	err     error // 強制的にエラーを返したいとき用
}

func newStubArticles() *stubArticles {
	return &stubArticles{data: map[string]*entity.Article{}}
}

func (s *stubArticles) List(_ context.Context, f repository.ArticleFilter) ([]*entity.Article, error) {
	s.filters = append(s.filters, f)
	if s.err != nil {
		return nil, s.err
	}
	var out []*entity.Article
	for _, a := range s.data {
		out = append(out, a)
	}
	return out, nil
}
func (s *stubArticles) Get(_ context.Context, id string) (*entity.Article, error) {
	if s.err != nil {
		return nil, s.err
	}
	a, ok := s.data[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}
func (s *stubArticles) Create(_ context.Context, a *entity.Article) error {
	if s.err != nil {
		return s.err
	}
	s.data[a.ID] = a
	return nil
}
func (s *stubArticles) Update(_ context.Context, a *entity.Article) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.data[a.ID]; !ok {
		return entity.ErrNotFound
	}
	s.data[a.ID] = a
	return nil
}
func (s *stubArticles) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	delete(s.data, id)
	return nil
}
func (s *stubArticles) ExistsBySourceURLBatch(_ context.Context, _ []string) (map[string]bool, error) {
	return map[string]bool{}, s.err
}

type stubParties struct {
	list []*entity.Party
	err  error
}

func (s *stubParties) List(_ context.Context) ([]*entity.Party, error) { return s.list, s.err }
func (s *stubParties) GetBySlug(_ context.Context, slug string) (*entity.Party, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, p := range s.list {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, nil
}

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func newService(arts *stubArticles, parties *stubParties) *content.Service {
	clock := func() time.Time { return fixedNow }
	return &content.Service{
		Articles: arts,
		Parties:  parties,
		Slugs:    slug.NewGenerator(clock),
		Now:      clock,
		NewID:    func() string { return "id-1" },
	}
}

func strPtr(s string) *string { return &s }

func validFields() content.Fields {
	return content.Fields{
		TitleEN:   "DMK Launches New Policy!",
		TitleTA:   "திமுக புதிய கொள்கை",
		ContentEN: "Body",
		ContentTA: "உள்ளடக்கம்",
		Category:  entity.CategoryGovernment,
		Status:    entity.StatusPublished,
	}
}

/* ───────── 読み取り ───────── */

func TestService_ReadFilters(t *testing.T) {
	arts := newStubArticles()
	svc := newService(arts, &stubParties{})
	ctx := context.Background()

	_, err := svc.ListLatestPublished(ctx, 20)
	require.NoError(t, err)
	_, err = svc.ListBreaking(ctx, 5)
	require.NoError(t, err)
	_, err = svc.ListByParty(ctx, "p1", 30)
	require.NoError(t, err)
	_, err = svc.ListRelated(ctx, "p1", "a1", 4)
	require.NoError(t, err)
	_, err = svc.GetBySlug(ctx, "some-slug")
	require.NoError(t, err)

	require.Len(t, arts.filters, 5)
	for _, f := range arts.filters {
		assert.Equal(t, entity.StatusPublished, f.Status, "every public read is published-only")
		assert.Equal(t, repository.OrderPublishedDesc, f.Order)
	}
	assert.Equal(t, 20, arts.filters[0].Limit)
	assert.True(t, arts.filters[1].BreakingOnly)
	assert.Equal(t, "p1", arts.filters[2].PartyID)
	assert.Equal(t, "a1", arts.filters[3].ExcludeID)
	assert.Equal(t, "some-slug", arts.filters[4].Slug)
	assert.Equal(t, 1, arts.filters[4].Limit)
}

func TestService_InvalidLimit(t *testing.T) {
	svc := newService(newStubArticles(), &stubParties{})
	for _, limit := range []int{0, -1, content.MaxLimit + 1} {
		_, err := svc.ListLatestPublished(context.Background(), limit)
		assert.ErrorIs(t, err, content.ErrInvalidLimit, "limit %d", limit)
	}
}

func TestService_ListByPartyRequiresParty(t *testing.T) {
	svc := newService(newStubArticles(), &stubParties{})
	_, err := svc.ListByParty(context.Background(), " ", 10)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
	_, err = svc.ListRelated(context.Background(), "", "x", 4)
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestService_ReadErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	arts := newStubArticles()
	arts.err = boom
	svc := newService(arts, &stubParties{err: boom})
	ctx := context.Background()

	_, err := svc.ListLatestPublished(ctx, 20)
	assert.ErrorIs(t, err, boom)
	_, err = svc.GetBySlug(ctx, "x")
	assert.ErrorIs(t, err, boom)
	_, err = svc.ListParties(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = svc.GetPartyBySlug(ctx, "dmk")
	assert.ErrorIs(t, err, boom)
	_, err = svc.ListAll(ctx)
	assert.ErrorIs(t, err, boom)
}

func TestService_GetBySlugNotFoundIsNil(t *testing.T) {
	svc := newService(newStubArticles(), &stubParties{})
	a, err := svc.GetBySlug(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = svc.GetBySlug(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, a)
}

func TestService_Parties(t *testing.T) {
	parties := &stubParties{list: []*entity.Party{{ID: "p1", Slug: "dmk", NameEN: "DMK"}}}
	svc := newService(newStubArticles(), parties)

	list, err := svc.ListParties(context.Background())
	require.NoError(t, err)
	assert.Len(t, list, 1)

	p, err := svc.GetPartyBySlug(context.Background(), "dmk")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p1", p.ID)

	p, err = svc.GetPartyBySlug(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestService_ListAllUsesCreationOrder(t *testing.T) {
	arts := newStubArticles()
	svc := newService(arts, &stubParties{})
	_, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, arts.filters, 1)
	assert.Equal(t, repository.OrderCreatedDesc, arts.filters[0].Order)
	assert.Empty(t, arts.filters[0].Status, "admin listing includes drafts")
}

/* ───────── 書き込み ───────── */

func TestService_CreateArticle(t *testing.T) {
	arts := newStubArticles()
	svc := newService(arts, &stubParties{})

	f := validFields()
	f.PartyID = strPtr("")
	f.FeaturedImage = strPtr("  ")
	a, err := svc.CreateArticle(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, slug.Make(f.TitleEN, fixedNow), a.Slug)
	assert.Equal(t, entity.SourceManual, a.Source)
	assert.Nil(t, a.PartyID, "empty party reference is stored as null")
	assert.Nil(t, a.FeaturedImage)
	require.NotNil(t, a.PublishedAt)
	assert.Equal(t, fixedNow, *a.PublishedAt)
	assert.Equal(t, fixedNow, a.CreatedAt)
	assert.Contains(t, arts.data, "id-1")
}

func TestService_CreateDraftHasNoPublishedAt(t *testing.T) {
	svc := newService(newStubArticles(), &stubParties{})
	f := validFields()
	f.Status = entity.StatusDraft
	a, err := svc.CreateArticle(context.Background(), f)
	require.NoError(t, err)
	assert.Nil(t, a.PublishedAt)
}

func TestService_CreateIngested(t *testing.T) {
	svc := newService(newStubArticles(), &stubParties{})
	f := validFields()
	f.Status = entity.StatusDraft

	a, err := svc.CreateIngested(context.Background(), f, "https://news.example.com/a")
	require.NoError(t, err)
	assert.Equal(t, entity.SourceAuto, a.Source)
	require.NotNil(t, a.SourceURL)
	assert.Equal(t, "https://news.example.com/a", *a.SourceURL)

	_, err = svc.CreateIngested(context.Background(), f, "")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}

func TestService_CreateError(t *testing.T) {
	arts := newStubArticles()
	arts.err = errors.New("duplicate key")
	svc := newService(arts, &stubParties{})
	_, err := svc.CreateArticle(context.Background(), validFields())
	assert.Error(t, err)
}

func TestService_UpdateArticle(t *testing.T) {
	arts := newStubArticles()
	published := fixedNow.Add(-time.Hour)
	arts.data["a1"] = &entity.Article{
		ID: "a1", Slug: "old-slug-1", Source: entity.SourceAuto,
		TitleEN: "Old", Status: entity.StatusPublished, PublishedAt: &published,
		CreatedAt: published,
	}
	svc := newService(arts, &stubParties{})

	f := validFields()
	f.TitleEN = "Completely different title"
	a, err := svc.UpdateArticle(context.Background(), "a1", f)
	require.NoError(t, err)

	assert.Equal(t, "old-slug-1", a.Slug, "slug is immutable")
	assert.Equal(t, entity.SourceAuto, a.Source, "source is immutable")
	assert.Equal(t, "Completely different title", a.TitleEN)
	assert.Equal(t, published, *a.PublishedAt, "published_at is kept once set")
	assert.Equal(t, fixedNow, a.UpdatedAt)
}

func TestService_UpdatePublishesDraft(t *testing.T) {
	arts := newStubArticles()
	arts.data["a1"] = &entity.Article{ID: "a1", Slug: "s", Status: entity.StatusDraft}
	svc := newService(arts, &stubParties{})

	a, err := svc.UpdateArticle(context.Background(), "a1", validFields())
	require.NoError(t, err)
	require.NotNil(t, a.PublishedAt)
	assert.Equal(t, fixedNow, *a.PublishedAt)
}

func TestService_UpdateMissing(t *testing.T) {
	svc := newService(newStubArticles(), &stubParties{})
	_, err := svc.UpdateArticle(context.Background(), "nope", validFields())
	assert.ErrorIs(t, err, content.ErrArticleNotFound)

	_, err = svc.UpdateArticle(context.Background(), "", validFields())
	assert.ErrorIs(t, err, content.ErrInvalidArticleID)
}

func TestService_DeleteArticle(t *testing.T) {
	arts := newStubArticles()
	arts.data["a1"] = &entity.Article{ID: "a1"}
	svc := newService(arts, &stubParties{})

	require.NoError(t, svc.DeleteArticle(context.Background(), "a1"))
	assert.NotContains(t, arts.data, "a1")
	require.NoError(t, svc.DeleteArticle(context.Background(), "a1"), "deleting twice is fine")
	assert.ErrorIs(t, svc.DeleteArticle(context.Background(), ""), content.ErrInvalidArticleID)
}

func TestService_GetArticle(t *testing.T) {
	arts := newStubArticles()
	arts.data["a1"] = &entity.Article{ID: "a1", Status: entity.StatusDraft}
	svc := newService(arts, &stubParties{})

	a, err := svc.GetArticle(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, entity.StatusDraft, a.Status)

	_, err = svc.GetArticle(context.Background(), "zz")
	assert.ErrorIs(t, err, content.ErrArticleNotFound)
}
