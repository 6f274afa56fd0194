package pipeline

import (
	"context"

	"github.com/rushteam/citykit/core"
)

// Kind tags a Node with its stage, for logs and metrics.
type Kind string

const (
	KindRecall      Kind = "recall"      // produce the candidate set
	KindFilter      Kind = "filter"      // drop candidates that violate a constraint
	KindRank        Kind = "rank"        // score and sort candidates
	KindReRank      Kind = "rerank"      // adjust or cut the ranked list
	KindPostProcess Kind = "postprocess" // decorate final results
)

// Node is the smallest unit of a Pipeline: items in, items out.
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		rctx *core.RecommendContext,
		items []*core.Item,
	) ([]*core.Item, error)
}
