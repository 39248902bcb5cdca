package translator

import (
	"context"
	"strings"

	"amazetimes/internal/i18n"
)

// Copy returns the source text unchanged. Drafts ingested with it carry the
// same text in both languages until an editor translates them.
type Copy struct{}

func (Copy) Name() string { return "copy" }

func (Copy) Translate(_ context.Context, text string, from, to i18n.Language) (string, error) {
	if from == to {
		return "", ErrSameLanguage
	}
	return strings.TrimSpace(text), nil
}
