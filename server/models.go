package server

import "github.com/rushteam/citykit/core"

// RecommendRequest is the body of POST /recommend. The answers sit at the
// top level next to k. With a user_id, cities the user already swiped are
// left out.
type RecommendRequest struct {
	UserID string `json:"user_id"`
	core.UserAnswers
	K *int `json:"k"`
}

type RecommendResponse struct {
	Recommendations []core.ScoredCity `json:"recommendations"`
}

// NextCityRequest is the body of POST /next_city. Answers are optional when
// the user has a stored profile.
type NextCityRequest struct {
	UserID string `json:"user_id" binding:"required"`
	core.UserAnswers
}

type NextCityResponse struct {
	City core.ScoredCity `json:"city"`
}

type SwipeRequest struct {
	UserID string `json:"user_id" binding:"required"`
	CityID string `json:"city_id" binding:"required"`
	Liked  *bool  `json:"liked" binding:"required"`
}

type FavoritesResponse struct {
	Cities []core.CityRecord `json:"cities"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
