// Package ingest turns RSS and Atom feed items into draft articles.
//
// Each active feed source is fetched, items already stored or already seen are
// skipped, the article page is read when the feed text is short, the missing
// language variant is produced by a Translator, and the result is stored as an
// automatic draft. Nothing ingested is visible to readers until an admin
// publishes it through the editor.
package ingest

import "errors"

var (
	// ErrNoTranslator is returned by Crawl when the service has no Translator.
	ErrNoTranslator = errors.New("ingest: translator is required")

	// ErrEmptyItem marks a feed item without a title or link.
	ErrEmptyItem = errors.New("ingest: feed item has no title or link")
)
