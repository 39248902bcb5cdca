package entity

import "time"

// Party represents a political party. Parties are read-only to this application.
type Party struct {
	ID            string
	NameEN        string
	NameTA        string
	DescriptionEN *string
	DescriptionTA *string
	Color         string
	LogoURL       *string
	FoundedYear   *int
	Slug          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// English returns the English party name.
func (p *Party) English() string { return p.NameEN }

// Tamil returns the Tamil party name.
func (p *Party) Tamil() string { return p.NameTA }

// Summary returns the embedded form used inside article rows.
func (p *Party) Summary() *PartySummary {
	return &PartySummary{
		ID:     p.ID,
		Slug:   p.Slug,
		NameEN: p.NameEN,
		NameTA: p.NameTA,
		Color:  p.Color,
	}
}
