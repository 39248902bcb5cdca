package news_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"amazetimes/internal/ads"
	"amazetimes/internal/config"
	"amazetimes/internal/domain/entity"
	"amazetimes/internal/handler/http/language"
	"amazetimes/internal/handler/http/news"
	"amazetimes/internal/infra/adapter/persistence/memory"
	"amazetimes/internal/preference"
	"amazetimes/internal/slug"
	"amazetimes/internal/usecase/content"
	"amazetimes/internal/usecase/page"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ───────── テスト用サーバー ───────── */

type stepClock struct{ t time.Time }

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type fixture struct {
	handler http.Handler
	content *content.Service
	party   *entity.Party
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	party := &entity.Party{ID: "party-dmk", Slug: "dmk", NameEN: "DMK", NameTA: "திமுக", Color: "#E31E24"}
	parties := memory.NewPartyRepo(party)
	clock := &stepClock{t: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	n := 0
	svc := &content.Service{
		Articles: memory.NewArticleRepo(parties),
		Parties:  parties,
		Slugs:    slug.NewGenerator(clock.Now),
		Now:      clock.Now,
		NewID: func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		},
	}

	site := config.DefaultSite()
	h := &news.Handler{
		Pages: page.NewService(svc, nil, site, nil),
		Ads:   ads.NewService(site, nil),
	}
	mux := http.NewServeMux()
	news.Register(mux, h)
	return &fixture{handler: language.Middleware(false)(mux), content: svc, party: party}
}

func (f *fixture) create(t *testing.T, title string, mutate func(*content.Fields)) *entity.Article {
	t.Helper()
	fields := content.Fields{
		TitleEN:   title,
		TitleTA:   title + " தமிழ்",
		ContentEN: "First paragraph.\nSecond paragraph.",
		ContentTA: "முதல் பத்தி.\nஇரண்டாம் பத்தி.",
		Category:  entity.CategoryElections,
		Status:    entity.StatusPublished,
		PartyID:   &f.party.ID,
	}
	if mutate != nil {
		mutate(&fields)
	}
	a, err := f.content.CreateArticle(context.Background(), fields)
	require.NoError(t, err)
	return a
}

func (f *fixture) get(t *testing.T, path string, lang string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if lang != "" {
		r.AddCookie(&http.Cookie{Name: preference.Key, Value: lang})
	}
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

/* ───────── テスト ───────── */

func TestHome_ResolvedByCookie(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Featured story", func(fl *content.Fields) { fl.IsFeatured = true })
	f.create(t, "Breaking story", func(fl *content.Fields) { fl.IsBreaking = true })
	f.create(t, "Draft story", func(fl *content.Fields) { fl.Status = entity.StatusDraft })

	w := f.get(t, "/api/home", "ta")
	require.Equal(t, http.StatusOK, w.Code)
	home := decode[page.Home](t, w)

	assert.Equal(t, "ta", string(home.Language))
	require.Len(t, home.Featured, 1)
	assert.Equal(t, "Featured story தமிழ்", home.Featured[0].Title)
	require.Len(t, home.Latest, 1)
	assert.Equal(t, "Breaking story தமிழ்", home.Latest[0].Title)
	require.Len(t, home.Ticker.Items, 1)
	assert.True(t, strings.HasPrefix(home.Ticker.Items[0].Link, "/party/dmk/"))
}

func TestHome_Empty(t *testing.T) {
	f := newFixture(t)
	home := decode[page.Home](t, f.get(t, "/api/home", "en"))
	assert.Equal(t, "No news available", home.Empty)
	assert.Empty(t, home.Latest)
}

func TestBreaking(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Calm", nil)
	f.create(t, "Alarm", func(fl *content.Fields) { fl.IsBreaking = true })

	ticker := decode[page.Ticker](t, f.get(t, "/api/breaking", ""))
	require.Len(t, ticker.Items, 1)
	assert.Equal(t, "Alarm", ticker.Items[0].Title)
	assert.Equal(t, "Breaking", ticker.Label)
}

func TestParties(t *testing.T) {
	f := newFixture(t)
	idx := decode[page.PartiesIndex](t, f.get(t, "/api/parties", "ta"))
	require.Len(t, idx.Parties, 1)
	assert.Equal(t, "திமுக", idx.Parties[0].Name)
	assert.Equal(t, "/party/dmk", idx.Parties[0].Link)
}

func TestParty_CategoryTab(t *testing.T) {
	f := newFixture(t)
	f.create(t, "Poll", nil)
	f.create(t, "Protest", func(fl *content.Fields) { fl.Category = entity.CategoryProtests })

	w := f.get(t, "/api/parties/dmk?category=protests", "en")
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[page.PartyPage](t, w)

	require.Len(t, p.Articles, 1)
	assert.Equal(t, "Protest", p.Articles[0].Title)
	assert.Equal(t, "DMK", p.Party.Name)
}

func TestParty_NotFound(t *testing.T) {
	f := newFixture(t)
	w := f.get(t, "/api/parties/unknown", "ta")
	require.Equal(t, http.StatusNotFound, w.Code)
	nf := decode[news.NotFound](t, w)
	assert.Equal(t, "கட்சி கிடைக்கவில்லை", nf.Error)
	assert.Equal(t, "/", nf.Link)
}

func TestArticle(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, "First", nil)
	second := f.create(t, "Second", nil)

	w := f.get(t, "/api/parties/dmk/articles/"+second.Slug, "en")
	require.Equal(t, http.StatusOK, w.Code)
	ap := decode[page.ArticlePage](t, w)

	assert.Equal(t, []string{"First paragraph.", "Second paragraph."}, ap.Article.Paragraphs)
	require.Len(t, ap.Related, 1)
	assert.Equal(t, first.Slug, ap.Related[0].Slug)
}

func TestArticle_DraftIsNotFound(t *testing.T) {
	f := newFixture(t)
	draft := f.create(t, "Hidden", func(fl *content.Fields) { fl.Status = entity.StatusDraft })

	w := f.get(t, "/api/parties/dmk/articles/"+draft.Slug, "en")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Article Not Found", decode[news.NotFound](t, w).Error)
}

func TestAds(t *testing.T) {
	f := newFixture(t)
	m := decode[ads.Manifest](t, f.get(t, "/api/ads?page=article", "ta"))
	assert.True(t, m.Enabled)
	assert.Contains(t, m.ScriptURL, "client=ca-pub-6592137877448044")
	require.NotEmpty(t, m.Slots)
	assert.Equal(t, "விளம்பரம்", m.Slots[0].Label)

	m = decode[ads.Manifest](t, f.get(t, "/api/ads?page=unknown", ""))
	assert.False(t, m.Enabled)
}

func TestAdFailure_AlwaysNoContent(t *testing.T) {
	f := newFixture(t)
	for _, body := range []string{`{"page":"party","placement":"top","message":"blocked"}`, `garbage`} {
		r := httptest.NewRequest(http.MethodPost, "/api/ads/failures", strings.NewReader(body))
		w := httptest.NewRecorder()
		f.handler.ServeHTTP(w, r)
		assert.Equal(t, http.StatusNoContent, w.Code, body)
	}
}
