package rerank

import (
	"context"
	"fmt"
	"math"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pkg/vecmath"
)

// Default composite weights.
const (
	DefaultAlpha = 1.0
	DefaultBeta  = 0.7
	DefaultGamma = 0.7
)

// FeedbackRanker picks the single best unseen city for a user:
//
//	score[i] = Alpha*dot(user, city[i]) + Beta*meanCos(city[i], liked) - Gamma*meanCos(city[i], disliked)
//
// Cities already liked or disliked are suppressed to -Inf and never
// returned. Ties go to the lowest catalog row.
type FeedbackRanker struct {
	catalog  *catalog.Catalog
	feedback core.FeedbackReader

	Alpha float64
	Beta  float64
	Gamma float64
}

// FeedbackOption configures a FeedbackRanker.
type FeedbackOption func(*FeedbackRanker)

// WithWeights overrides the composite weights.
func WithWeights(alpha, beta, gamma float64) FeedbackOption {
	return func(r *FeedbackRanker) {
		r.Alpha, r.Beta, r.Gamma = alpha, beta, gamma
	}
}

func NewFeedbackRanker(c *catalog.Catalog, fb core.FeedbackReader, opts ...FeedbackOption) *FeedbackRanker {
	r := &FeedbackRanker{
		catalog:  c,
		feedback: fb,
		Alpha:    DefaultAlpha,
		Beta:     DefaultBeta,
		Gamma:    DefaultGamma,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NextCity reads the user's feedback and selects the next city.
// core.ErrNoMoreCities is returned once every city has been seen.
func (r *FeedbackRanker) NextCity(ctx context.Context, user []float64, userID string) (core.ScoredCity, error) {
	fb, err := r.feedback.Get(ctx, userID)
	if err != nil {
		return core.ScoredCity{}, fmt.Errorf("get feedback: %w", err)
	}
	return r.Select(user, fb)
}

// Select is NextCity with the feedback already fetched.
func (r *FeedbackRanker) Select(user []float64, fb *core.Feedback) (core.ScoredCity, error) {
	scores, err := r.Scores(user, fb)
	if err != nil {
		return core.ScoredCity{}, err
	}

	best := -1
	for i, s := range scores {
		// seen rows are -Inf; NaN never wins
		if math.IsInf(s, -1) || math.IsNaN(s) {
			continue
		}
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	if best < 0 {
		return core.ScoredCity{}, core.ErrNoMoreCities
	}
	return core.NewScoredCity(r.catalog.City(best), scores[best]), nil
}

// Scores returns the composite score of every catalog row, with seen rows
// set to -Inf. Ids in fb that are not in the catalog are ignored.
func (r *FeedbackRanker) Scores(user []float64, fb *core.Feedback) ([]float64, error) {
	if err := r.catalog.CheckDim(len(user)); err != nil {
		return nil, err
	}

	var likedIdx, dislikedIdx []int
	if fb != nil {
		likedIdx = r.catalog.Resolve(fb.Liked)
		dislikedIdx = r.catalog.Resolve(fb.Disliked)
	}
	liked := r.rows(likedIdx)
	disliked := r.rows(dislikedIdx)

	n := r.catalog.Len()
	scores := make([]float64, n)
	for i := 0; i < n; i++ {
		v := r.catalog.Vector(i)
		scores[i] = r.Alpha*vecmath.Dot(user, v) +
			r.Beta*vecmath.MeanCosine(v, liked) -
			r.Gamma*vecmath.MeanCosine(v, disliked)
	}

	for _, i := range likedIdx {
		scores[i] = math.Inf(-1)
	}
	for _, i := range dislikedIdx {
		scores[i] = math.Inf(-1)
	}
	return scores, nil
}

func (r *FeedbackRanker) rows(idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for j, i := range idx {
		out[j] = r.catalog.Vector(i)
	}
	return out
}
