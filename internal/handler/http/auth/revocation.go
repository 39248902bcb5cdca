package auth

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Revocations remembers logged-out token ids. An entry only needs to live
// as long as the token it revokes, so the set expires with the token TTL.
type Revocations struct {
	ids *expirable.LRU[string, struct{}]
}

// NewRevocations keeps at most size ids for ttl each.
func NewRevocations(size int, ttl time.Duration) *Revocations {
	if size <= 0 {
		size = 4096
	}
	return &Revocations{ids: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// Revoke marks id as logged out.
func (r *Revocations) Revoke(id string) {
	r.ids.Add(id, struct{}{})
}

// Revoked reports whether id was logged out.
func (r *Revocations) Revoked(id string) bool {
	return r.ids.Contains(id)
}
