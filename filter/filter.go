// Package filter drops pipeline candidates that violate a constraint.
package filter

import (
	"context"

	"github.com/rushteam/citykit/core"
)

// Filter decides whether an item is removed. true means drop.
type Filter interface {
	Name() string

	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}

// Strict is implemented by filters whose failure must fail the request
// instead of keeping the item.
type Strict interface {
	Strict() bool
}

func isStrict(f Filter) bool {
	s, ok := f.(Strict)
	return ok && s.Strict()
}
