package rank

import (
	"context"
	"sort"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/pkg/utils"
)

// SimilarityNode scores the candidate items with the request's user vector
// and sorts them, highest score first.
type SimilarityNode struct {
	Ranker *SimilarityRanker
}

func (n *SimilarityNode) Name() string        { return "rank.similarity" }
func (n *SimilarityNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *SimilarityNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}
	scores, err := n.Ranker.Scores(rctx.UserVector)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		if it == nil {
			continue
		}
		it.Score = scores[it.Index]
		it.PutLabel("rank_model", utils.Label{Value: "dot", Source: "rank"})
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i] == nil {
			return false
		}
		if items[j] == nil {
			return true
		}
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Index < items[j].Index
	})
	return items, nil
}
