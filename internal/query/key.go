// Package query deduplicates repeated reads on the caller side.
//
// A Key identifies a read by operation name and arguments. Concurrent
// requests for the same key share one round trip, and results are kept for
// a short TTL. Writers never patch cached values: a mutation names the
// operations it invalidates in a Dependencies table and those entries are
// dropped so the next read goes back to the store.
package query

import (
	"fmt"
	"strings"
)

// Op names a read operation, for example "news-latest".
type Op string

// Key identifies one read: the operation plus its canonicalized arguments.
type Key struct {
	Op   Op
	Args string
}

// NewKey builds a Key. Arguments are rendered with %v and joined with "|".
func NewKey(op Op, args ...any) Key {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = fmt.Sprint(a)
	}
	return Key{Op: op, Args: strings.Join(parts, "|")}
}

// String renders the key as "op(args)".
func (k Key) String() string {
	return string(k.Op) + "(" + k.Args + ")"
}

// Mutation names a write operation.
type Mutation string

// Dependencies maps each mutation to the read operations it makes stale.
type Dependencies map[Mutation][]Op

// Affected returns the operations invalidated by m.
func (d Dependencies) Affected(m Mutation) []Op {
	return d[m]
}
