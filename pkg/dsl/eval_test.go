package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pkg/utils"
)

func TestProgram_Eval(t *testing.T) {
	it := core.NewItem(0, &core.CityRecord{
		ID:            "bali",
		Country:       "Indonesia",
		Continent:     "Asia",
		VacationTypes: []string{"Beach", "Nature"},
	})
	it.Score = 0.8
	it.PutLabel("recall_source", utils.Label{Value: "catalog", Source: "recall"})

	rctx := &core.RecommendContext{UserID: "u1", Answers: &core.UserAnswers{OriginCountry: "India"}}
	rctx.SetParam(ParamOriginContinent, "Asia")

	tests := []struct {
		expr string
		want bool
	}{
		{`city.continent == user.origin_continent`, true},
		{`city.country == user.origin_country`, false},
		{`"Beach" in city.vacation_types && city.score > 0.5`, true},
		{`label.recall_source == "catalog"`, true},
		{`size(user.vacation_types) == 0`, true},
		{`user.user_id == "u1"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			p, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := p.Eval(it, rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProgram_NilContext(t *testing.T) {
	p := MustCompile(`user.origin_continent == "" && city.id == ""`)
	got, err := p.Eval(nil, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(`city.country ==`)
	assert.Error(t, err)

	p, err := Compile(`city.score`)
	require.NoError(t, err)
	_, err = p.Eval(core.NewItem(0, &core.CityRecord{ID: "x"}), nil)
	assert.Error(t, err, "non-boolean result")

	assert.Panics(t, func() { MustCompile(`(`) })
}
