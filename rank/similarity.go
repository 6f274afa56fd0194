// Package rank scores catalog cities against a user embedding.
package rank

import (
	"sort"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pkg/vecmath"
)

// DefaultK is the number of results when the caller does not ask for one.
const DefaultK = 5

// SimilarityRanker scores every city by the raw dot product of the user
// vector and the city embedding. Embeddings are not normalized here; a
// model exporting unit vectors makes the score a cosine.
type SimilarityRanker struct {
	Catalog *catalog.Catalog
}

func NewSimilarityRanker(c *catalog.Catalog) *SimilarityRanker {
	return &SimilarityRanker{Catalog: c}
}

// Scores returns one base score per catalog row.
func (r *SimilarityRanker) Scores(user []float64) ([]float64, error) {
	if err := r.Catalog.CheckDim(len(user)); err != nil {
		return nil, err
	}
	scores := make([]float64, r.Catalog.Len())
	for i := range scores {
		scores[i] = vecmath.Dot(user, r.Catalog.Vector(i))
	}
	return scores, nil
}

// TopK returns the k best cities, highest score first. Equal scores keep
// catalog order. k <= 0 returns an empty result; k is clamped to the
// catalog size.
func (r *SimilarityRanker) TopK(user []float64, k int) ([]core.ScoredCity, error) {
	scores, err := r.Scores(user)
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		return []core.ScoredCity{}, nil
	}
	if k > len(scores) {
		k = len(scores)
	}

	order := Order(scores)
	out := make([]core.ScoredCity, 0, k)
	for _, i := range order[:k] {
		out = append(out, core.NewScoredCity(r.Catalog.City(i), scores[i]))
	}
	return out, nil
}

// Order returns row indices sorted by descending score, ties by index.
func Order(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	return order
}
