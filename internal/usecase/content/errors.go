// Package content is the read/write façade over articles and parties used by
// the public pages and the admin editor. It holds no cache state: callers key
// its reads with the Key helpers and invalidate through Dependencies.
package content

import "errors"

// Sentinel errors for content operations.
var (
	// ErrArticleNotFound is returned by updates and admin lookups that
	// reference a missing id. Public reads report absence as a nil result.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates an empty article id.
	ErrInvalidArticleID = errors.New("invalid article ID")

	// ErrInvalidLimit indicates a listing limit outside 1..MaxLimit.
	ErrInvalidLimit = errors.New("invalid limit")
)
