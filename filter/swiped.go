package filter

import (
	"context"

	"github.com/rushteam/citykit/core"
)

// paramSwiped caches the swiped set of the request in rctx.Params so the
// store is read once per request, not once per item.
const paramSwiped = "filter.swiped.ids"

// SwipedFilter drops cities the user already liked or disliked. Anonymous
// requests (no UserID) pass through untouched.
//
// A feedback read failure fails the request. With FailOpen the failure is
// logged and the list is served unfiltered.
type SwipedFilter struct {
	Feedback core.FeedbackReader
	FailOpen bool
}

func NewSwipedFilter(fb core.FeedbackReader) *SwipedFilter {
	return &SwipedFilter{Feedback: fb}
}

func (f *SwipedFilter) Name() string {
	return "filter.swiped"
}

func (f *SwipedFilter) Strict() bool {
	return !f.FailOpen
}

func (f *SwipedFilter) ShouldFilter(
	ctx context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil || rctx == nil || rctx.UserID == "" || f.Feedback == nil {
		return false, nil
	}

	seen, ok := rctx.Params[paramSwiped].(map[string]struct{})
	if !ok {
		fb, err := f.Feedback.Get(ctx, rctx.UserID)
		if err != nil {
			// one failed read per request; later items pass unfiltered
			rctx.SetParam(paramSwiped, map[string]struct{}{})
			return false, err
		}
		seen = make(map[string]struct{}, len(fb.Liked)+len(fb.Disliked))
		for _, id := range fb.Seen() {
			seen[id] = struct{}{}
		}
		rctx.SetParam(paramSwiped, seen)
	}

	_, swiped := seen[item.ID]
	return swiped, nil
}

var (
	_ Filter = (*SwipedFilter)(nil)
	_ Strict = (*SwipedFilter)(nil)
)
