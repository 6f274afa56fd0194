package recall

import (
	"context"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pipeline"
	"github.com/rushteam/citykit/pkg/utils"
)

// CatalogRecall returns every catalog city, in catalog order. The catalog is
// small enough that the ranking stage scores all of it.
// It implements both Source and pipeline.Node.
type CatalogRecall struct {
	Catalog *catalog.Catalog
}

func (r *CatalogRecall) Name() string        { return "recall.catalog" }
func (r *CatalogRecall) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process ignores incoming items and recalls the whole catalog.
func (r *CatalogRecall) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

func (r *CatalogRecall) Recall(
	_ context.Context,
	_ *core.RecommendContext,
) ([]*core.Item, error) {
	n := r.Catalog.Len()
	out := make([]*core.Item, 0, n)
	for i := 0; i < n; i++ {
		it := core.NewItem(i, r.Catalog.City(i))
		it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

var (
	_ Source        = (*CatalogRecall)(nil)
	_ pipeline.Node = (*CatalogRecall)(nil)
)
