package rerank

import (
	"context"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pipeline"
)

// ParamK is the request param carrying the requested result count.
const ParamK = "k"

// TopNNode cuts the ranked list to the first N items.
//
// When the request carries ParamK it wins over N, and k <= 0 yields no
// items. Without it, N <= 0 leaves the list untouched.
type TopNNode struct {
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	limit := n.N
	if k, ok := requestK(rctx); ok {
		if k <= 0 {
			return []*core.Item{}, nil
		}
		limit = k
	}

	if limit <= 0 || len(items) <= limit {
		return items, nil
	}
	return items[:limit], nil
}

func requestK(rctx *core.RecommendContext) (int, bool) {
	if rctx == nil || rctx.Params == nil {
		return 0, false
	}
	k, ok := rctx.Params[ParamK].(int)
	return k, ok
}
