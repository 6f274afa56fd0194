package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/citykit/core"
)

// Pipeline runs its nodes in order, feeding each node's output to the next.
type Pipeline struct {
	Name  string
	Nodes []Node
}

// Run executes the pipeline. The first failing node aborts the run; no
// partial result is returned.
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		cur = next
	}
	return cur, nil
}

// Describe lists the node names, for startup logs.
func (p *Pipeline) Describe() []string {
	out := make([]string, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		out = append(out, n.Name())
	}
	return out
}
