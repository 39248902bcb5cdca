// Package fetcher reads article pages linked from feeds: the readable text
// with go-readability and the lead image with goquery.
package fetcher

import "errors"

var (
	ErrInvalidURL       = errors.New("invalid URL or unsupported scheme")
	ErrPrivateIP        = errors.New("private IP access denied")
	ErrTooManyRedirects = errors.New("too many redirects")
	ErrBodyTooLarge     = errors.New("response body too large")
	ErrExtraction       = errors.New("content extraction failed")
)
