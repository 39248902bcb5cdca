package page

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/i18n"
)

// excerptLength is counted in characters.
const excerptLength = 150

// PartyBadge is the party marker shown on cards.
type PartyBadge struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Card is an article in a listing, already resolved to one language.
type Card struct {
	ID            string      `json:"id"`
	Slug          string      `json:"slug"`
	Title         string      `json:"title"`
	Excerpt       string      `json:"excerpt"`
	Category      string      `json:"category"`
	CategoryLabel string      `json:"category_label"`
	Image         string      `json:"featured_image,omitempty"`
	IsBreaking    bool        `json:"is_breaking"`
	IsFeatured    bool        `json:"is_featured"`
	Party         *PartyBadge `json:"party,omitempty"`
	PublishedAt   *time.Time  `json:"published_at,omitempty"`
	Link          string      `json:"link"`
}

// TickerItem is one breaking headline.
type TickerItem struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// ArticleLink is the public path of an article. Articles without a party
// live under "general".
func ArticleLink(a *entity.Article) string {
	partySlug := "general"
	if a.Party != nil && a.Party.Slug != "" {
		partySlug = a.Party.Slug
	}
	return "/party/" + partySlug + "/" + a.Slug
}

func badge(r i18n.Resolver, p *entity.PartySummary) *PartyBadge {
	if p == nil {
		return nil
	}
	return &PartyBadge{Slug: p.Slug, Name: r.Pick(p), Color: p.Color}
}

func excerpt(s string) string {
	if utf8.RuneCountInString(s) <= excerptLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:excerptLength]) + "..."
}

func card(r i18n.Resolver, a *entity.Article) Card {
	c := Card{
		ID:            a.ID,
		Slug:          a.Slug,
		Title:         r.Text(a.TitleEN, a.TitleTA),
		Excerpt:       excerpt(r.Text(a.ContentEN, a.ContentTA)),
		Category:      string(a.Category),
		CategoryLabel: r.CategoryLabel(string(a.Category)),
		IsBreaking:    a.IsBreaking,
		IsFeatured:    a.IsFeatured,
		Party:         badge(r, a.Party),
		PublishedAt:   a.PublishedAt,
		Link:          ArticleLink(a),
	}
	if a.FeaturedImage != nil {
		c.Image = *a.FeaturedImage
	}
	return c
}

func cards(r i18n.Resolver, as []*entity.Article) []Card {
	out := make([]Card, 0, len(as))
	for _, a := range as {
		out = append(out, card(r, a))
	}
	return out
}

// paragraphs splits content on newlines and drops blank lines.
func paragraphs(content string) []string {
	var out []string
	for _, line := range strings.Split(content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// hostname returns the host of raw without a leading "www.".
func hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
