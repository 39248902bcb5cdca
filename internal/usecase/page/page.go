// Package page builds the language-resolved view models of the public
// pages. Listings degrade to empty when the store fails; the article and
// party being viewed do not, and their errors reach the caller.
package page

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"amazetimes/internal/config"
	"amazetimes/internal/domain/entity"
	"amazetimes/internal/i18n"
	"amazetimes/internal/query"
	"amazetimes/internal/usecase/content"

	"golang.org/x/sync/errgroup"
)

var (
	// ErrPartyNotFound is returned for an unknown party slug.
	ErrPartyNotFound = errors.New("party not found")
	// ErrArticleNotFound is returned for an unknown or unpublished article slug.
	ErrArticleNotFound = errors.New("article not found")
)

// Reader is the read side of the content service.
type Reader interface {
	ListLatestPublished(ctx context.Context, limit int) ([]*entity.Article, error)
	ListBreaking(ctx context.Context, limit int) ([]*entity.Article, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Article, error)
	ListByParty(ctx context.Context, partyID string, limit int) ([]*entity.Article, error)
	ListRelated(ctx context.Context, partyID, excludeID string, limit int) ([]*entity.Article, error)
	ListParties(ctx context.Context) ([]*entity.Party, error)
	GetPartyBySlug(ctx context.Context, slug string) (*entity.Party, error)
}

// Service composes pages from deduplicated reads.
type Service struct {
	reader  Reader
	queries *query.Client
	site    *config.SiteConfig
	logger  *slog.Logger
}

// NewService creates a page service. site defaults to config.DefaultSite;
// a nil query client deduplicates in-flight reads without caching.
func NewService(reader Reader, queries *query.Client, site *config.SiteConfig, logger *slog.Logger) *Service {
	if site == nil {
		site = config.DefaultSite()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if queries == nil {
		queries = query.NewClient(query.Config{}, content.Dependencies, nil)
	}
	return &Service{reader: reader, queries: queries, site: site, logger: logger}
}

// degrade logs a failed listing and returns an empty one.
func (s *Service) degrade(key query.Key, err error) []*entity.Article {
	s.logger.Warn("listing unavailable, rendering empty",
		slog.String("query", key.String()),
		slog.Any("error", err))
	return nil
}

func (s *Service) articles(ctx context.Context, key query.Key, fn func(context.Context) ([]*entity.Article, error)) []*entity.Article {
	out, err := query.Fetch(ctx, s.queries, key, fn)
	if err != nil {
		return s.degrade(key, err)
	}
	return out
}

func (s *Service) latest(ctx context.Context) []*entity.Article {
	limit := s.site.Feeds.Home
	return s.articles(ctx, content.LatestKey(limit), func(ctx context.Context) ([]*entity.Article, error) {
		return s.reader.ListLatestPublished(ctx, limit)
	})
}

func (s *Service) breaking(ctx context.Context) []*entity.Article {
	limit := s.site.Feeds.Ticker
	return s.articles(ctx, content.BreakingKey(limit), func(ctx context.Context) ([]*entity.Article, error) {
		return s.reader.ListBreaking(ctx, limit)
	})
}

/* ───────── ティッカー ───────── */

// Ticker is the breaking news strip.
type Ticker struct {
	Label string       `json:"label"`
	Items []TickerItem `json:"items"`
}

// Ticker returns the breaking headlines. It is empty when there are none
// or the store is unavailable.
func (s *Service) Ticker(ctx context.Context, r i18n.Resolver) Ticker {
	items := []TickerItem{}
	for _, a := range s.breaking(ctx) {
		items = append(items, TickerItem{Title: r.Text(a.TitleEN, a.TitleTA), Link: ArticleLink(a)})
	}
	return Ticker{Label: r.Message(i18n.MsgBreaking), Items: items}
}

/* ───────── ホーム ───────── */

// Home is the front page.
type Home struct {
	Language       i18n.Language `json:"language"`
	Ticker         Ticker        `json:"ticker"`
	TopStoriesHead string        `json:"top_stories_heading"`
	Featured       []Card        `json:"featured"`
	LatestHead     string        `json:"latest_heading"`
	Latest         []Card        `json:"latest"`
	// Empty is set when there is nothing to show at all.
	Empty string `json:"empty,omitempty"`
}

// Home builds the front page: featured is the first few featured articles
// of the latest listing and latest is every non-featured one.
func (s *Service) Home(ctx context.Context, r i18n.Resolver) Home {
	var (
		latest []*entity.Article
		ticker Ticker
	)
	// The two reads are independent and may complete in either order.
	var g errgroup.Group
	g.Go(func() error {
		latest = s.latest(ctx)
		return nil
	})
	g.Go(func() error {
		ticker = s.Ticker(ctx, r)
		return nil
	})
	_ = g.Wait()

	h := Home{
		Language:       r.Language(),
		Ticker:         ticker,
		TopStoriesHead: r.Message(i18n.MsgTopStories),
		LatestHead:     r.Message(i18n.MsgLatestNews),
		Featured:       []Card{},
		Latest:         []Card{},
	}
	for _, a := range latest {
		if a.IsFeatured {
			if len(h.Featured) < s.site.Feeds.Featured {
				h.Featured = append(h.Featured, card(r, a))
			}
			continue
		}
		h.Latest = append(h.Latest, card(r, a))
	}
	if len(h.Featured) == 0 && len(h.Latest) == 0 {
		h.Empty = r.Message(i18n.MsgNoNews)
	}
	return h
}

/* ───────── 政党 ───────── */

// PartyItem is a party in the parties index.
type PartyItem struct {
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	Color   string `json:"color"`
	Logo    string `json:"logo_url,omitempty"`
	Founded string `json:"founded,omitempty"`
	Link    string `json:"link"`
}

// PartiesIndex lists every party.
type PartiesIndex struct {
	Heading string      `json:"heading"`
	Parties []PartyItem `json:"parties"`
}

func partyItem(r i18n.Resolver, p *entity.Party) PartyItem {
	item := PartyItem{
		Slug:  p.Slug,
		Name:  r.Pick(p),
		Color: p.Color,
		Link:  "/party/" + p.Slug,
	}
	if p.LogoURL != nil {
		item.Logo = *p.LogoURL
	}
	if p.FoundedYear != nil {
		item.Founded = r.Founded(*p.FoundedYear)
	}
	return item
}

// Parties returns the parties index ordered by English name.
func (s *Service) Parties(ctx context.Context, r i18n.Resolver) PartiesIndex {
	idx := PartiesIndex{Heading: r.Message(i18n.MsgPoliticalParties), Parties: []PartyItem{}}
	key := content.PartiesKey()
	parties, err := query.Fetch(ctx, s.queries, key, s.reader.ListParties)
	if err != nil {
		s.logger.Warn("listing unavailable, rendering empty",
			slog.String("query", key.String()),
			slog.Any("error", err))
		return idx
	}
	for _, p := range parties {
		idx.Parties = append(idx.Parties, partyItem(r, p))
	}
	return idx
}

// PartyHeader is the top of a party page.
type PartyHeader struct {
	PartyItem
	Description string `json:"description,omitempty"`
}

// Tab is one category filter of a party page.
type Tab struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Count  int    `json:"count"`
	Active bool   `json:"active"`
}

// PartyPage is a party with its latest articles under the active tab.
type PartyPage struct {
	Party    PartyHeader `json:"party"`
	Tabs     []Tab       `json:"tabs"`
	Articles []Card      `json:"articles"`
	Empty    string      `json:"empty,omitempty"`
	Ads      []string    `json:"ads"`
}

// Party builds the page of the party with slug. category selects a tab;
// unknown or empty values select "all".
func (s *Service) Party(ctx context.Context, r i18n.Resolver, slug, category string) (*PartyPage, error) {
	party, err := query.Fetch(ctx, s.queries, content.PartyBySlugKey(slug), func(ctx context.Context) (*entity.Party, error) {
		return s.reader.GetPartyBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, ErrPartyNotFound
	}

	limit := s.site.Feeds.Party
	news := s.articles(ctx, content.ByPartyKey(party.ID, limit), func(ctx context.Context) ([]*entity.Article, error) {
		return s.reader.ListByParty(ctx, party.ID, limit)
	})

	active := "all"
	for _, tab := range s.site.PartyTabs {
		if tab == category {
			active = category
		}
	}

	p := &PartyPage{
		Party:    PartyHeader{PartyItem: partyItem(r, party), Description: r.Field(party, "Description")},
		Articles: []Card{},
		Ads:      s.adNames("party"),
	}
	for _, tab := range s.site.PartyTabs {
		t := Tab{Key: tab, Active: tab == active}
		if tab == "all" {
			t.Label = r.Message(i18n.MsgAll)
		} else {
			t.Label = r.CategoryLabel(tab)
		}
		for _, a := range news {
			if tab == "all" || string(a.Category) == tab {
				t.Count++
			}
		}
		p.Tabs = append(p.Tabs, t)
	}
	for _, a := range news {
		if active == "all" || string(a.Category) == active {
			p.Articles = append(p.Articles, card(r, a))
		}
	}
	if len(p.Articles) == 0 {
		if active == "all" {
			p.Empty = r.Message(i18n.MsgNoNews)
		} else {
			p.Empty = r.Message(i18n.MsgNoCategoryNews)
		}
	}
	return p, nil
}

/* ───────── 記事 ───────── */

// ArticleDetail is the article being read.
type ArticleDetail struct {
	Card
	Paragraphs []string  `json:"paragraphs"`
	SourceURL  string    `json:"source_url,omitempty"`
	SourceHost string    `json:"source_host,omitempty"`
	SourceHead string    `json:"source_heading,omitempty"`
	BackLink   string    `json:"back_link"`
	BackLabel  string    `json:"back_label"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ArticlePage is an article with related articles of the same party.
type ArticlePage struct {
	Article     ArticleDetail `json:"article"`
	RelatedHead string        `json:"related_heading,omitempty"`
	Related     []Card        `json:"related"`
	Ads         []string      `json:"ads"`
}

// Article builds the page of the published article with slug. Related
// articles are fetched only after the article resolved, and only when it
// belongs to a party.
func (s *Service) Article(ctx context.Context, r i18n.Resolver, slug string) (*ArticlePage, error) {
	a, err := query.Fetch(ctx, s.queries, content.BySlugKey(slug), func(ctx context.Context) (*entity.Article, error) {
		return s.reader.GetBySlug(ctx, slug)
	})
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrArticleNotFound
	}

	d := ArticleDetail{
		Card:       card(r, a),
		Paragraphs: paragraphs(r.Text(a.ContentEN, a.ContentTA)),
		BackLink:   "/",
		BackLabel:  r.Message(i18n.MsgBackHome),
		UpdatedAt:  a.UpdatedAt,
	}
	if a.Party != nil {
		d.BackLink = "/party/" + a.Party.Slug
		d.BackLabel = r.Message(i18n.MsgBackTo) + " " + r.Pick(a.Party)
	}
	if a.Source == entity.SourceAuto && a.SourceURL != nil {
		d.SourceURL = *a.SourceURL
		d.SourceHost = hostname(*a.SourceURL)
		d.SourceHead = r.Message(i18n.MsgSource)
	}

	page := &ArticlePage{Article: d, Related: []Card{}, Ads: s.adNames("article")}
	if a.PartyID == nil {
		return page, nil
	}

	limit := s.site.Feeds.Related
	partyID := *a.PartyID
	related := s.articles(ctx, content.RelatedKey(partyID, a.ID, limit), func(ctx context.Context) ([]*entity.Article, error) {
		return s.reader.ListRelated(ctx, partyID, a.ID, limit)
	})
	page.Related = cards(r, related)
	if len(page.Related) > 0 {
		page.RelatedHead = r.Message(i18n.MsgRelatedNews)
	}
	return page, nil
}

func (s *Service) adNames(page string) []string {
	names := []string{}
	for _, p := range s.site.Placements(page) {
		names = append(names, p.Name)
	}
	return names
}
