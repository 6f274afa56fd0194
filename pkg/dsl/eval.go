// Package dsl evaluates boolean CEL expressions over a candidate city and
// the requesting user.
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/citykit/core"
)

var (
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("city", cel.DynType),
			cel.Variable("user", cel.DynType),
			cel.Variable("label", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Program is a compiled expression. Safe for concurrent use.
//
// Variables:
//   - city: id, name, country, continent, seasons, budget, vibe,
//     vacation_types, score, attributes
//   - user: user_id, origin_country, origin_continent, favorite_country_visited,
//     distance, vacation_types, seasons, budget, place_type, params
//   - label: item labels by key, value only
//
// Examples:
//
//	city.country == user.origin_country
//	city.continent != user.origin_continent
//	"Beach" in city.vacation_types && city.score > 0.5
type Program struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr once.
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// MustCompile is Compile for expressions known at init time.
func MustCompile(expr string) *Program {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Program) String() string { return p.expr }

// Eval runs the program for one item.
func (p *Program) Eval(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := p.prg.Eval(BuildInput(item, rctx))
	if err != nil {
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression %q must return boolean, got %T", p.expr, out.Value())
	}
	return result, nil
}

// BuildInput builds the activation of one evaluation. Missing values are
// empty strings or lists, never absent keys, so rules do not need has().
func BuildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	city := map[string]any{
		"id":             "",
		"name":           "",
		"country":        "",
		"continent":      "",
		"seasons":        "",
		"budget":         "",
		"vibe":           "",
		"vacation_types": []string{},
		"score":          0.0,
		"attributes":     map[string]string{},
	}
	labels := map[string]any{}
	if item != nil {
		city["score"] = item.Score
		for k, v := range item.Labels {
			labels[k] = v.Value
		}
		if c := item.City; c != nil {
			city["id"] = c.ID
			city["name"] = c.Name
			city["country"] = c.Country
			city["continent"] = c.Continent
			city["seasons"] = c.Seasons
			city["budget"] = c.Budget
			city["vibe"] = c.Vibe
			if c.VacationTypes != nil {
				city["vacation_types"] = c.VacationTypes
			}
			if c.Attributes != nil {
				city["attributes"] = c.Attributes
			}
		}
	}

	user := map[string]any{
		"user_id":                  "",
		"origin_country":           "",
		"origin_continent":         "",
		"favorite_country_visited": "",
		"distance":                 "",
		"vacation_types":           []string{},
		"seasons":                  []string{},
		"budget":                   []string{},
		"place_type":               []string{},
		"params":                   map[string]any{},
	}
	if rctx != nil {
		user["user_id"] = rctx.UserID
		user["origin_continent"] = rctx.Param(ParamOriginContinent)
		if rctx.Params != nil {
			user["params"] = rctx.Params
		}
		if a := rctx.Answers; a != nil {
			user["origin_country"] = a.OriginCountry
			user["favorite_country_visited"] = a.FavoriteCountryVisited
			user["distance"] = a.Distance
			user["vacation_types"] = nonNil(a.VacationTypes)
			user["seasons"] = nonNil(a.Seasons)
			user["budget"] = nonNil(a.Budget)
			user["place_type"] = nonNil(a.PlaceType)
		}
	}

	return map[string]any{
		"city":  city,
		"user":  user,
		"label": labels,
	}
}

// ParamOriginContinent is the request param holding the continent of the
// user's origin country, resolved from the catalog.
const ParamOriginContinent = "origin_continent"

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
