package config

import (
	"fmt"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/filter"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/pkg/conv"
	"github.com/rushteam/citykit/rank"
	"github.com/rushteam/citykit/recall"
	"github.com/rushteam/citykit/rerank"
)

func init() {
	Register("recall.catalog", buildCatalogRecallNode)
	Register("rank.similarity", buildSimilarityNode)
	Register("filter", buildFilterNode)
	Register("rerank.topn", buildTopNNode)
	Register("rerank.diversity", buildDiversityNode)
}

// DefaultPipelineConfig is the recommend flow used when no pipeline file is
// configured: every city, scored by dot product, distance-filtered (and
// swipe-filtered for a known user), cut to k.
func DefaultPipelineConfig() *pipeline.Config {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Name = "recommend"
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{
		{Type: "recall.catalog"},
		{Type: "rank.similarity"},
		{Type: "filter", Config: map[string]any{
			"filters": []any{
				map[string]any{"type": "distance"},
				map[string]any{"type": "swiped"},
			},
		}},
		{Type: "rerank.topn"},
	}
	return cfg
}

// BuildPipeline validates cfg and builds it against deps.
func BuildPipeline(cfg *pipeline.Config, deps *Deps) (*pipeline.Pipeline, error) {
	if err := ValidatePipelineConfig(cfg); err != nil {
		return nil, err
	}
	return cfg.BuildPipeline(NewFactory(deps))
}

func requireCatalog(deps *Deps) error {
	if deps == nil || deps.Catalog == nil {
		return fmt.Errorf("catalog is required")
	}
	return nil
}

func buildCatalogRecallNode(deps *Deps, _ map[string]any) (pipeline.Node, error) {
	if err := requireCatalog(deps); err != nil {
		return nil, err
	}
	return &recall.CatalogRecall{Catalog: deps.Catalog}, nil
}

func buildSimilarityNode(deps *Deps, _ map[string]any) (pipeline.Node, error) {
	if err := requireCatalog(deps); err != nil {
		return nil, err
	}
	return &rank.SimilarityNode{Ranker: rank.NewSimilarityRanker(deps.Catalog)}, nil
}

func buildTopNNode(_ *Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func buildDiversityNode(_ *Deps, cfg map[string]any) (pipeline.Node, error) {
	return &rerank.Diversity{
		Key:       conv.ConfigGet(cfg, "key", "country"),
		MaxPerKey: int(conv.ConfigGetInt64(cfg, "max_per_key", 1)),
	}, nil
}

func buildFilterNode(deps *Deps, cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig)+1)
	if deps != nil && len(deps.Blacklist) > 0 {
		filters = append(filters, filter.NewBlacklistFilter(deps.Blacklist))
	}
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			continue
		}
		switch filterType := conv.ConfigGet(filterMap, "type", ""); filterType {
		case "distance":
			rules := conv.MapToString(filterMap["rules"])
			if rules == nil && deps != nil && len(deps.DistanceRules) > 0 {
				rules = deps.DistanceRules
			}
			f, err := filter.NewDistanceFilter(rules)
			if err != nil {
				return nil, err
			}
			filters = append(filters, f)

		case "swiped":
			// without a feedback store the filter keeps everything
			var fb core.FeedbackReader
			if deps != nil {
				fb = deps.Feedback
			}
			f := filter.NewSwipedFilter(fb)
			f.FailOpen = conv.ConfigGet(filterMap, "fail_open", false)
			filters = append(filters, f)

		case "blacklist":
			filters = append(filters, filter.NewBlacklistFilter(conv.SliceAnyToString(filterMap["city_ids"])))

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.FilterNode{Filters: filters}, nil
}
