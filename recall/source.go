// Package recall produces the candidate set of a recommend pipeline.
package recall

import (
	"context"

	"github.com/rushteam/citykit/core"
)

// Source produces candidates for one request.
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
