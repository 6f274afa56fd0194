package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/core"
)

type appendNode struct {
	name string
	fail error
}

func (n *appendNode) Name() string { return n.name }
func (n *appendNode) Kind() Kind   { return KindRank }

func (n *appendNode) Process(_ context.Context, _ *core.RecommendContext, items []*core.Item) ([]*core.Item, error) {
	if n.fail != nil {
		return nil, n.fail
	}
	return append(items, &core.Item{ID: n.name}), nil
}

func itemIDs(items []*core.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestPipeline_Run(t *testing.T) {
	p := &Pipeline{Name: "t", Nodes: []Node{&appendNode{name: "a"}, &appendNode{name: "b"}}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, itemIDs(out))
	assert.Equal(t, []string{"a", "b"}, p.Describe())
}

func TestPipeline_RunAbortsOnError(t *testing.T) {
	boom := errors.New("boom")
	p := &Pipeline{Nodes: []Node{&appendNode{name: "a"}, &appendNode{name: "bad", fail: boom}, &appendNode{name: "c"}}}

	out, err := p.Run(context.Background(), &core.RecommendContext{}, nil)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, boom)
	assert.ErrorContains(t, err, "bad:")
}

func TestPipeline_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &Pipeline{Nodes: []Node{&appendNode{name: "a"}}}
	_, err := p.Run(ctx, &core.RecommendContext{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
pipeline:
  name: recommend
  nodes:
    - type: a
    - type: b
      config:
        k: 3
`), 0o644))
	jsonPath := filepath.Join(dir, "pipeline.JSON")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`{"pipeline":{"name":"recommend","nodes":[{"type":"a"},{"type":"b","config":{"k":3}}]}}`), 0o644))

	for _, path := range []string{yamlPath, jsonPath} {
		cfg, err := LoadFromFile(path)
		require.NoError(t, err, path)
		assert.Equal(t, "recommend", cfg.Pipeline.Name)
		require.Len(t, cfg.Pipeline.Nodes, 2)
		assert.Equal(t, "b", cfg.Pipeline.Nodes[1].Type)
		assert.EqualValues(t, 3, cfg.Pipeline.Nodes[1].Config["k"])
	}

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_BuildPipeline(t *testing.T) {
	f := NewNodeFactory()
	f.Register("b", func(map[string]any) (Node, error) { return &appendNode{name: "b"}, nil })
	f.Register("a", func(cfg map[string]any) (Node, error) {
		require.NotNil(t, cfg)
		return &appendNode{name: "a"}, nil
	})
	assert.Equal(t, []string{"a", "b"}, f.Types())

	var cfg Config
	cfg.Pipeline.Name = "recommend"
	cfg.Pipeline.Nodes = []NodeConfig{{Type: "a"}, {Type: "b"}}
	p, err := cfg.BuildPipeline(f)
	require.NoError(t, err)
	assert.Equal(t, "recommend", p.Name)
	assert.Equal(t, []string{"a", "b"}, p.Describe())

	cfg.Pipeline.Nodes = append(cfg.Pipeline.Nodes, NodeConfig{Type: "nope"})
	_, err = cfg.BuildPipeline(f)
	assert.ErrorContains(t, err, `unknown node type "nope"`)
}
