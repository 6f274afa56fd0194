package filter

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/pkg/utils"
)

// FilterNode applies its filters in order; the first filter that says drop
// removes the item. A failing filter keeps the item, unless it is Strict, in
// which case the whole node fails.
type FilterNode struct {
	Filters []Filter
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		drop := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				if isStrict(f) {
					return nil, fmt.Errorf("%s: %w", f.Name(), err)
				}
				log.Warn().Err(err).Str("filter", f.Name()).Str("city_id", item.ID).Msg("filter failed, keeping item")
				continue
			}
			if ok {
				drop = true
				item.PutLabel("filtered", utils.Label{Value: "true", Source: f.Name()})
				break
			}
		}
		if !drop {
			out = append(out, item)
		}
	}
	return out, nil
}
