package rank

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
)

func newCatalog(t *testing.T, vecs map[string][]float64, order ...string) *catalog.Catalog {
	t.Helper()
	recs := make([]core.CityRecord, 0, len(order))
	rows := make([][]float64, 0, len(order))
	for _, id := range order {
		recs = append(recs, core.CityRecord{ID: id, Name: "City" + id, Country: "C" + id})
		rows = append(rows, vecs[id])
	}
	c, err := catalog.New(recs, rows)
	require.NoError(t, err)
	return c
}

func TestTopK_Example(t *testing.T) {
	c := newCatalog(t, map[string][]float64{"A": {1, 0}, "B": {0, 1}}, "A", "B")
	r := NewSimilarityRanker(c)

	got, err := r.TopK([]float64{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].CityID)
	assert.Equal(t, "CityA", got[0].CityName)
	assert.Equal(t, "CA", got[0].Country)
	assert.Equal(t, 1.0, got[0].Score)
}

func TestTopK_Bounds(t *testing.T) {
	c := newCatalog(t, map[string][]float64{"A": {1, 0}, "B": {0, 1}, "C": {1, 1}}, "A", "B", "C")
	r := NewSimilarityRanker(c)
	user := []float64{0.2, 0.9}

	for _, k := range []int{0, -3} {
		got, err := r.TopK(user, k)
		require.NoError(t, err)
		assert.Empty(t, got)
	}

	got, err := r.TopK(user, 10)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"C", "B", "A"}, cityIDs(got))
}

func TestTopK_DeterministicTies(t *testing.T) {
	c := newCatalog(t, map[string][]float64{"A": {1, 0}, "B": {1, 0}, "C": {2, 0}, "D": {1, 0}}, "A", "B", "C", "D")
	r := NewSimilarityRanker(c)

	first, err := r.TopK([]float64{1, 0}, 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A", "B", "D"}, cityIDs(first))

	second, err := r.TopK([]float64{1, 0}, 4)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestScores_DimMismatch(t *testing.T) {
	c := newCatalog(t, map[string][]float64{"A": {1, 0}}, "A")
	_, err := NewSimilarityRanker(c).TopK([]float64{1, 0, 0}, 1)
	assert.True(t, core.IsShapeMismatch(err))
}

func TestSimilarityNode(t *testing.T) {
	c := newCatalog(t, map[string][]float64{"A": {1, 0}, "B": {0, 1}, "C": {0, 1}}, "A", "B", "C")
	node := &SimilarityNode{Ranker: NewSimilarityRanker(c)}

	items := make([]*core.Item, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		items = append(items, core.NewItem(i, c.City(i)))
	}
	out, err := node.Process(context.Background(), &core.RecommendContext{UserVector: []float64{0, 2}}, items)
	require.NoError(t, err)

	got := make([]string, 0, len(out))
	for _, it := range out {
		got = append(got, it.ID)
	}
	assert.Equal(t, []string{"B", "C", "A"}, got)
	assert.Equal(t, 2.0, out[0].Score)
	assert.Equal(t, "dot", out[0].Labels["rank_model"].Value)
}

func cityIDs(in []core.ScoredCity) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		out = append(out, c.CityID)
	}
	return out
}
