package filter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pkg/dsl"
)

// Distance answers of the questionnaire.
const (
	DistanceWithinCountry    = "Within your Country"
	DistanceWithinContinent  = "Within your Continent"
	DistanceOutsideContinent = "Outside of your Continent"
	DistanceAnywhere         = "Anywhere"
)

// DefaultDistanceRules keep a city when the rule of the user's distance
// answer evaluates to true.
var DefaultDistanceRules = map[string]string{
	DistanceWithinCountry:    `city.country == user.origin_country`,
	DistanceWithinContinent:  `user.origin_continent == "" || city.continent == user.origin_continent`,
	DistanceOutsideContinent: `user.origin_continent == "" || city.continent != user.origin_continent`,
	DistanceAnywhere:         `true`,
}

// DistanceFilter restricts candidates by the user's travel distance answer.
// An empty answer, or an answer without a rule, keeps every city.
type DistanceFilter struct {
	rules map[string]*dsl.Program
}

// NewDistanceFilter compiles rules (answer -> CEL keep-expression). Answers
// are matched case-insensitively. nil rules means DefaultDistanceRules.
func NewDistanceFilter(rules map[string]string) (*DistanceFilter, error) {
	if rules == nil {
		rules = DefaultDistanceRules
	}
	f := &DistanceFilter{rules: make(map[string]*dsl.Program, len(rules))}
	for answer, expr := range rules {
		prg, err := dsl.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("distance rule %q: %w", answer, err)
		}
		f.rules[normAnswer(answer)] = prg
	}
	return f, nil
}

func (f *DistanceFilter) Name() string { return "filter.distance" }

// Answers lists the answers with a rule, sorted.
func (f *DistanceFilter) Answers() []string {
	out := make([]string, 0, len(f.rules))
	for a := range f.rules {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

func (f *DistanceFilter) ShouldFilter(_ context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error) {
	if rctx == nil || rctx.Answers == nil || rctx.Answers.Distance == "" {
		return false, nil
	}
	prg, ok := f.rules[normAnswer(rctx.Answers.Distance)]
	if !ok {
		return false, nil
	}
	keep, err := prg.Eval(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}

func normAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

var _ Filter = (*DistanceFilter)(nil)
