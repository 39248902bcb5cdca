package admin

import (
	"time"

	"amazetimes/internal/domain/entity"
	"amazetimes/internal/usecase/editor"
)

// PartyDTO is a party option of the editor form.
type PartyDTO struct {
	ID     string `json:"id"`
	Slug   string `json:"slug"`
	NameEN string `json:"name_en"`
	NameTA string `json:"name_ta"`
	Color  string `json:"color"`
}

// PartySummaryDTO is the party shown next to an article in the listing.
type PartySummaryDTO struct {
	Slug   string `json:"slug"`
	NameEN string `json:"name_en"`
	NameTA string `json:"name_ta"`
	Color  string `json:"color"`
}

// ArticleDTO is an article as the admin sees it, both languages included.
type ArticleDTO struct {
	ID            string           `json:"id"`
	Slug          string           `json:"slug"`
	TitleEN       string           `json:"title_en"`
	TitleTA       string           `json:"title_ta"`
	ContentEN     string           `json:"content_en"`
	ContentTA     string           `json:"content_ta"`
	Category      string           `json:"category"`
	PartyID       *string          `json:"party_id"`
	Party         *PartySummaryDTO `json:"party,omitempty"`
	IsBreaking    bool             `json:"is_breaking"`
	IsFeatured    bool             `json:"is_featured"`
	Status        string           `json:"status"`
	Source        string           `json:"source"`
	SourceURL     *string          `json:"source_url,omitempty"`
	FeaturedImage *string          `json:"featured_image,omitempty"`
	PublishedAt   *time.Time       `json:"published_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

func articleDTO(a *entity.Article) ArticleDTO {
	out := ArticleDTO{
		ID:            a.ID,
		Slug:          a.Slug,
		TitleEN:       a.TitleEN,
		TitleTA:       a.TitleTA,
		ContentEN:     a.ContentEN,
		ContentTA:     a.ContentTA,
		Category:      string(a.Category),
		PartyID:       a.PartyID,
		IsBreaking:    a.IsBreaking,
		IsFeatured:    a.IsFeatured,
		Status:        string(a.Status),
		Source:        string(a.Source),
		SourceURL:     a.SourceURL,
		FeaturedImage: a.FeaturedImage,
		PublishedAt:   a.PublishedAt,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Party != nil {
		out.Party = &PartySummaryDTO{Slug: a.Party.Slug, NameEN: a.Party.NameEN, NameTA: a.Party.NameTA, Color: a.Party.Color}
	}
	return out
}

// FormResponse is an editor buffer ready to be shown.
type FormResponse struct {
	Mode string      `json:"mode"`
	ID   string      `json:"id,omitempty"`
	Form editor.Form `json:"form"`
}

// SubmitResponse is the result of a create or update.
type SubmitResponse struct {
	Article     ArticleDTO `json:"article"`
	Invalidated int        `json:"invalidated"`
	Replayed    bool       `json:"replayed"`
}
