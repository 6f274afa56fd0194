package filter

import (
	"context"

	"github.com/rushteam/citykit/core"
)

// BlacklistFilter drops a fixed set of cities, e.g. destinations that are
// temporarily closed to travel.
type BlacklistFilter struct {
	ids map[string]struct{}
}

// NewBlacklistFilter creates a filter dropping the given city ids.
func NewBlacklistFilter(cityIDs []string) *BlacklistFilter {
	ids := make(map[string]struct{}, len(cityIDs))
	for _, id := range cityIDs {
		ids[id] = struct{}{}
	}
	return &BlacklistFilter{ids: ids}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, ok := f.ids[item.ID]
	return ok, nil
}

var _ Filter = (*BlacklistFilter)(nil)
