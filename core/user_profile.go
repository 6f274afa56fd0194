package core

import "strings"

// UserAnswers are the raw answers of the profile questionnaire.
//
// They live for one request only, unless the caller explicitly saves them
// through the profile store.
//
//	field           kind          encoder
//	origin_country  scalar        label encoder (strict)
//	favorite        scalar        label encoder (strict)
//	vacation_types  multi-valued  multi-label binarizer (lenient)
//	seasons         multi-valued  multi-label binarizer (lenient)
//	budget          multi-valued  multi-label binarizer (lenient)
//	place_type      multi-valued  multi-label binarizer (lenient)
//	distance        scalar        not encoded, drives the distance filter
type UserAnswers struct {
	OriginCountry          string   `json:"origin_country"`
	FavoriteCountryVisited string   `json:"favorite_country_visited"`
	VacationTypes          []string `json:"vacation_types"`
	Seasons                []string `json:"seasons"`
	Budget                 []string `json:"budget"`
	PlaceType              []string `json:"place_type"`
	Distance               string   `json:"distance,omitempty"`
}

// Field name constants, shared by the encoder state file and the answers.
const (
	FieldOriginCountry          = "origin_country"
	FieldFavoriteCountryVisited = "favorite_country_visited"
	FieldVacationTypes          = "vacation_types"
	FieldSeasons                = "seasons"
	FieldBudget                 = "budget"
	FieldPlaceType              = "place_type"
)

// Scalar returns the value of a scalar field, or false for an unknown field.
func (a *UserAnswers) Scalar(field string) (string, bool) {
	switch field {
	case FieldOriginCountry:
		return a.OriginCountry, true
	case FieldFavoriteCountryVisited:
		return a.FavoriteCountryVisited, true
	}
	return "", false
}

// Multi returns the values of a multi-valued field, or false for an unknown field.
func (a *UserAnswers) Multi(field string) ([]string, bool) {
	switch field {
	case FieldVacationTypes:
		return a.VacationTypes, true
	case FieldSeasons:
		return a.Seasons, true
	case FieldBudget:
		return a.Budget, true
	case FieldPlaceType:
		return a.PlaceType, true
	}
	return nil, false
}

// IsEmpty reports whether no answer was given at all.
func (a *UserAnswers) IsEmpty() bool {
	if a == nil {
		return true
	}
	return strings.TrimSpace(a.OriginCountry) == "" &&
		strings.TrimSpace(a.FavoriteCountryVisited) == "" &&
		len(a.VacationTypes) == 0 &&
		len(a.Seasons) == 0 &&
		len(a.Budget) == 0 &&
		len(a.PlaceType) == 0
}
