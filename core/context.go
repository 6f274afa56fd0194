package core

// RecommendContext carries the request through a pipeline.
type RecommendContext struct {
	UserID string

	// Answers are the raw questionnaire answers of this request.
	Answers *UserAnswers

	// UserVector is the user embedding computed for this request.
	UserVector []float64

	// Params holds request-scoped values derived by the engine, e.g.
	// origin_continent for the distance filter.
	Params map[string]any
}

// Param returns a request parameter as string.
func (rctx *RecommendContext) Param(key string) string {
	if rctx.Params == nil {
		return ""
	}
	s, _ := rctx.Params[key].(string)
	return s
}

// SetParam stores a request parameter.
func (rctx *RecommendContext) SetParam(key string, value any) {
	if rctx.Params == nil {
		rctx.Params = make(map[string]any)
	}
	rctx.Params[key] = value
}
