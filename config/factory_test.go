package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/filter"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/pkg/dsl"
	"github.com/rushteam/citykit/rerank"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]core.CityRecord{
			{ID: "kyoto", Country: "Japan", Continent: "Asia"},
			{ID: "osaka", Country: "Japan", Continent: "Asia"},
			{ID: "lisbon", Country: "Portugal", Continent: "Europe"},
			{ID: "seoul", Country: "South Korea", Continent: "Asia"},
		},
		[][]float64{{1, 0}, {0.9, 0.1}, {0, 1}, {0.5, 0.5}},
	)
	require.NoError(t, err)
	return c
}

func run(t *testing.T, p *pipeline.Pipeline, rctx *core.RecommendContext) []string {
	t.Helper()
	items, err := p.Run(context.Background(), rctx, nil)
	require.NoError(t, err)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestDefaultPipeline(t *testing.T) {
	p, err := BuildPipeline(DefaultPipelineConfig(), &Deps{Catalog: testCatalog(t)})
	require.NoError(t, err)
	assert.Equal(t, []string{"recall.catalog", "rank.similarity", "filter.node", "rerank.topn"}, p.Describe())

	rctx := &core.RecommendContext{UserVector: []float64{1, 0}, Answers: &core.UserAnswers{}}
	rctx.SetParam(rerank.ParamK, 3)
	assert.Equal(t, []string{"kyoto", "osaka", "seoul"}, run(t, p, rctx))

	rctx = &core.RecommendContext{UserVector: []float64{1, 0}, Answers: &core.UserAnswers{
		OriginCountry: "Japan",
		Distance:      filter.DistanceOutsideContinent,
	}}
	rctx.SetParam(rerank.ParamK, 3)
	rctx.SetParam(dsl.ParamOriginContinent, "Asia")
	assert.Equal(t, []string{"lisbon"}, run(t, p, rctx))
}

func TestPipelineFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  name: diverse
  nodes:
    - type: recall.catalog
    - type: rank.similarity
    - type: filter
      config:
        filters:
          - type: blacklist
            city_ids: [seoul]
    - type: rerank.diversity
      config:
        key: country
    - type: rerank.topn
      config:
        n: 10
`), 0o644))

	cfg, err := pipeline.LoadFromFile(path)
	require.NoError(t, err)
	p, err := BuildPipeline(cfg, &Deps{Catalog: testCatalog(t)})
	require.NoError(t, err)
	assert.Equal(t, "diverse", p.Name)

	got := run(t, p, &core.RecommendContext{UserVector: []float64{1, 0}})
	assert.Equal(t, []string{"kyoto", "lisbon"}, got)
}

func TestBuildPipeline_Errors(t *testing.T) {
	cfg := &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "rank.lr"}}
	_, err := BuildPipeline(cfg, &Deps{Catalog: testCatalog(t)})
	assert.ErrorContains(t, err, "rank.lr")

	_, err = BuildPipeline(&pipeline.Config{}, &Deps{})
	assert.Error(t, err)

	_, err = BuildPipeline(DefaultPipelineConfig(), &Deps{})
	assert.ErrorContains(t, err, "catalog is required")

	cfg = &pipeline.Config{}
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "filter", Config: map[string]any{
		"filters": []any{map[string]any{"type": "geo"}},
	}}}
	_, err = BuildPipeline(cfg, &Deps{})
	assert.ErrorContains(t, err, "geo")
}

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []string{"filter", "rank.similarity", "recall.catalog", "rerank.diversity", "rerank.topn"}, SupportedTypes())
}

type fixedFeedback core.Feedback

func (f *fixedFeedback) Get(context.Context, string) (*core.Feedback, error) {
	fb := core.Feedback(*f)
	return &fb, nil
}

func TestDefaultPipeline_SwipedUser(t *testing.T) {
	fb := &fixedFeedback{Liked: []string{"kyoto"}, Disliked: []string{"osaka"}}
	p, err := BuildPipeline(DefaultPipelineConfig(), &Deps{Catalog: testCatalog(t), Feedback: fb})
	require.NoError(t, err)

	rctx := &core.RecommendContext{UserID: "u1", UserVector: []float64{1, 0}, Answers: &core.UserAnswers{}}
	rctx.SetParam(rerank.ParamK, 3)
	assert.Equal(t, []string{"seoul", "lisbon"}, run(t, p, rctx))

	rctx = &core.RecommendContext{UserVector: []float64{1, 0}, Answers: &core.UserAnswers{}}
	rctx.SetParam(rerank.ParamK, 3)
	assert.Equal(t, []string{"kyoto", "osaka", "seoul"}, run(t, p, rctx))
}

type downFeedback struct{}

func (downFeedback) Get(context.Context, string) (*core.Feedback, error) {
	return nil, core.NewStoreUnavailableError("read feedback", errors.New("conn refused"))
}

func TestSwipedFilter_FailOpenOption(t *testing.T) {
	build := func(failOpen bool) *pipeline.Pipeline {
		cfg := &pipeline.Config{}
		cfg.Pipeline.Nodes = []pipeline.NodeConfig{
			{Type: "recall.catalog"},
			{Type: "rank.similarity"},
			{Type: "filter", Config: map[string]any{"filters": []any{
				map[string]any{"type": "swiped", "fail_open": failOpen},
			}}},
			{Type: "rerank.topn"},
		}
		p, err := BuildPipeline(cfg, &Deps{Catalog: testCatalog(t), Feedback: downFeedback{}})
		require.NoError(t, err)
		return p
	}
	newCtx := func() *core.RecommendContext {
		rctx := &core.RecommendContext{UserID: "u1", UserVector: []float64{1, 0}, Answers: &core.UserAnswers{}}
		rctx.SetParam(rerank.ParamK, 2)
		return rctx
	}

	_, err := build(false).Run(context.Background(), newCtx(), nil)
	assert.True(t, core.IsStoreUnavailable(err))

	assert.Equal(t, []string{"kyoto", "osaka"}, run(t, build(true), newCtx()))
}
