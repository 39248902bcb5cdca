package entity

import (
	"fmt"
	"time"
)

// FeedSource is an RSS or Atom feed crawled by the ingestion worker.
// Language is the language the feed is written in; the other variant is produced by translation.
type FeedSource struct {
	ID            string
	Name          string
	URL           string
	Language      string
	IsActive      bool
	LastFetchedAt *time.Time
	CreatedAt     time.Time
}

// Validate checks the feed source fields.
func (s *FeedSource) Validate() error {
	if s.Name == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	// 言語が未設定の場合は英語とみなす
	if s.Language == "" {
		s.Language = "en"
	}
	if s.Language != "en" && s.Language != "ta" {
		return &ValidationError{Field: "language", Message: fmt.Sprintf("unsupported language %q", s.Language)}
	}
	return ValidateURL(s.URL)
}
