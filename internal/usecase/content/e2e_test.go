package content_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/infra/adapter/persistence/memory"
	"amazetimes/internal/query"
	"amazetimes/internal/slug"
	"amazetimes/internal/usecase/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock advances one minute per call so that consecutive creations are
// strictly ordered and get distinct slugs.
type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func newMemoryService(t *testing.T) (*content.Service, *entity.Party) {
	t.Helper()
	party := &entity.Party{ID: "party-dmk", Slug: "dmk", NameEN: "DMK", NameTA: "திமுக", Color: "#E31E24"}
	parties := memory.NewPartyRepo(party)
	clock := &stepClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	var n int
	svc := &content.Service{
		Articles: memory.NewArticleRepo(parties),
		Parties:  parties,
		Slugs:    slug.NewGenerator(clock.Now),
		Now:      clock.Now,
		NewID: func() string {
			n++
			return "article-" + strings.Repeat("x", n)
		},
	}
	return svc, party
}

func create(t *testing.T, svc *content.Service, title string, status entity.Status, partyID *string) *entity.Article {
	t.Helper()
	a, err := svc.CreateArticle(context.Background(), content.Fields{
		TitleEN:   title,
		TitleTA:   title + " (ta)",
		ContentEN: "content",
		ContentTA: "உள்ளடக்கம்",
		Category:  entity.CategoryGeneral,
		Status:    status,
		PartyID:   partyID,
	})
	require.NoError(t, err)
	return a
}

func slugs(as []*entity.Article) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Slug
	}
	return out
}

func TestEndToEnd_LatestExcludesDraftsNewestFirst(t *testing.T) {
	svc, _ := newMemoryService(t)
	older := create(t, svc, "Older", entity.StatusPublished, nil)
	draft := create(t, svc, "Hidden", entity.StatusDraft, nil)
	newer := create(t, svc, "Newer", entity.StatusPublished, nil)

	latest, err := svc.ListLatestPublished(context.Background(), 20)
	require.NoError(t, err)

	assert.Equal(t, []string{newer.Slug, older.Slug}, slugs(latest))
	for _, a := range latest {
		assert.NotEqual(t, entity.StatusDraft, a.Status)
	}
	assert.NotContains(t, slugs(latest), draft.Slug)

	got, err := svc.GetBySlug(context.Background(), draft.Slug)
	require.NoError(t, err)
	assert.Nil(t, got, "drafts are not reachable by slug")
}

func TestEndToEnd_CreateThenGetBySlug(t *testing.T) {
	svc, _ := newMemoryService(t)
	old := create(t, svc, "Yesterday", entity.StatusPublished, nil)

	a, err := svc.CreateArticle(context.Background(), content.Fields{
		TitleEN:   "Election Results",
		TitleTA:   "தேர்தல் முடிவுகள்",
		ContentEN: "Results are in.",
		ContentTA: "முடிவுகள் வந்துவிட்டன.",
		Category:  entity.CategoryElections,
		Status:    entity.StatusPublished,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(a.Slug, "election-results-"), a.Slug)

	got, err := svc.GetBySlug(context.Background(), a.Slug)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "தேர்தல் முடிவுகள்", got.TitleTA)
	assert.Equal(t, entity.SourceManual, got.Source)

	latest, err := svc.ListLatestPublished(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, []string{a.Slug, old.Slug}, slugs(latest))
}

func TestEndToEnd_DeleteRemovesEverywhere(t *testing.T) {
	svc, party := newMemoryService(t)
	ctx := context.Background()
	keep := create(t, svc, "Keep", entity.StatusPublished, &party.ID)
	gone := create(t, svc, "Gone", entity.StatusPublished, &party.ID)

	require.NoError(t, svc.DeleteArticle(ctx, gone.ID))

	got, err := svc.GetBySlug(ctx, gone.Slug)
	require.NoError(t, err)
	assert.Nil(t, got)

	latest, err := svc.ListLatestPublished(ctx, 20)
	require.NoError(t, err)
	byParty, err := svc.ListByParty(ctx, party.ID, 30)
	require.NoError(t, err)
	related, err := svc.ListRelated(ctx, party.ID, keep.ID, 4)
	require.NoError(t, err)
	all, err := svc.ListAll(ctx)
	require.NoError(t, err)

	for name, list := range map[string][]*entity.Article{
		"latest": latest, "party": byParty, "related": related, "admin": all,
	} {
		assert.NotContains(t, slugs(list), gone.Slug, name)
	}
	assert.Equal(t, []string{keep.Slug}, slugs(byParty))
}

func TestEndToEnd_UpdateRoundTrip(t *testing.T) {
	svc, party := newMemoryService(t)
	ctx := context.Background()
	orig := create(t, svc, "Budget Session", entity.StatusPublished, &party.ID)

	f := content.FieldsOf(orig)
	f.ContentEN = "Revised body"
	_, err := svc.UpdateArticle(ctx, orig.ID, f)
	require.NoError(t, err)

	got, err := svc.GetBySlug(ctx, orig.Slug)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Revised body", got.ContentEN)
	assert.Equal(t, orig.TitleTA, got.TitleTA)
	assert.Equal(t, orig.Slug, got.Slug)
	require.NotNil(t, got.PartyID)
	assert.Equal(t, party.ID, *got.PartyID)
	require.NotNil(t, got.Party)
	assert.Equal(t, "dmk", got.Party.Slug)
}

func TestEndToEnd_RelatedExcludesCurrent(t *testing.T) {
	svc, party := newMemoryService(t)
	ctx := context.Background()
	a := create(t, svc, "One", entity.StatusPublished, &party.ID)
	b := create(t, svc, "Two", entity.StatusPublished, &party.ID)
	create(t, svc, "Unaffiliated", entity.StatusPublished, nil)

	related, err := svc.ListRelated(ctx, party.ID, a.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{b.Slug}, slugs(related))
}

func TestEndToEnd_CachedListingRefreshedAfterCreate(t *testing.T) {
	svc, _ := newMemoryService(t)
	ctx := context.Background()
	client := query.NewClient(query.DefaultConfig(), content.Dependencies, nil)
	latest := func() []*entity.Article {
		out, err := query.Fetch(ctx, client, content.LatestKey(20), func(ctx context.Context) ([]*entity.Article, error) {
			return svc.ListLatestPublished(ctx, 20)
		})
		require.NoError(t, err)
		return out
	}

	assert.Empty(t, latest())
	a := create(t, svc, "Fresh", entity.StatusPublished, nil)
	assert.Empty(t, latest(), "cached until invalidated")

	client.Invalidate(content.MutationCreate)
	assert.Equal(t, []string{a.Slug}, slugs(latest()))
}
