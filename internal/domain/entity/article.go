// Package entity defines the core domain entities and validation logic for the application.
// It contains the bilingual news article and political party records, the feed sources
// used by ingestion, and the domain-specific errors shared by every layer.
package entity

import "time"

// Category classifies an article. The set is fixed.
type Category string

const (
	CategoryElections  Category = "elections"
	CategoryGovernment Category = "government"
	CategoryStatements Category = "statements"
	CategoryProtests   Category = "protests"
	CategoryGeneral    Category = "general"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryElections,
	CategoryGovernment,
	CategoryStatements,
	CategoryProtests,
	CategoryGeneral,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Status gates public visibility of an article.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
)

// Valid reports whether s is published or draft.
func (s Status) Valid() bool {
	return s == StatusPublished || s == StatusDraft
}

// Source records how an article entered the system.
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

// Article represents a bilingual news article.
// Both language variants of the title and the body are mandatory.
// Slug is assigned once at creation and never changes afterwards.
type Article struct {
	ID            string
	TitleEN       string
	TitleTA       string
	ContentEN     string
	ContentTA     string
	Slug          string
	Category      Category
	PartyID       *string
	Party         *PartySummary
	IsBreaking    bool
	IsFeatured    bool
	Status        Status
	Source        Source
	SourceURL     *string
	FeaturedImage *string
	PublishedAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPublic reports whether the article may appear on the public surface.
func (a *Article) IsPublic() bool {
	return a.Status == StatusPublished
}

// PartySummary is the slice of a Party embedded into article rows.
type PartySummary struct {
	ID     string
	Slug   string
	NameEN string
	NameTA string
	Color  string
}

// English returns the English party name.
func (p *PartySummary) English() string { return p.NameEN }

// Tamil returns the Tamil party name.
func (p *PartySummary) Tamil() string { return p.NameTA }
