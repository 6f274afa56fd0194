package rerank

import (
	"context"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pipeline"
)

// Diversity caps how many cities sharing the same attribute survive, keeping
// the first ones in ranked order. With the defaults a ranked list holds at
// most one city per country.
type Diversity struct {
	// Key is a city field (country, continent, vibe, budget, seasons) or,
	// failing that, a label key. Default "country".
	Key string

	// MaxPerKey defaults to 1.
	MaxPerKey int
}

func (n *Diversity) Name() string {
	return "rerank.diversity"
}

func (n *Diversity) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *Diversity) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(items) == 0 {
		return items, nil
	}

	key := n.Key
	if key == "" {
		key = "country"
	}
	limit := n.MaxPerKey
	if limit <= 0 {
		limit = 1
	}

	seen := make(map[string]int, len(items))
	out := make([]*core.Item, 0, len(items))
	for _, it := range items {
		if it == nil {
			continue
		}
		v := attribute(it, key)
		if v == "" {
			out = append(out, it)
			continue
		}
		if seen[v] >= limit {
			continue
		}
		seen[v]++
		out = append(out, it)
	}
	return out, nil
}

func attribute(it *core.Item, key string) string {
	if c := it.City; c != nil {
		switch key {
		case "country":
			return c.Country
		case "continent":
			return c.Continent
		case "vibe":
			return c.Vibe
		case "budget":
			return c.Budget
		case "seasons":
			return c.Seasons
		}
		if v, ok := c.Attributes[key]; ok {
			return v
		}
	}
	if lbl, ok := it.Labels[key]; ok {
		return lbl.Value
	}
	return ""
}
