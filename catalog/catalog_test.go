package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/core"
)

const citiesCSV = `city_id,city_name,country,continent,seasons,budget,vibe,vacation_types,population
kyoto,Kyoto,Japan,Asia,Spring,Mid-Range,Quiet,Historical|Religious,1.4M
lisbon,Lisbon,Portugal,Europe,Summer,Budget Friendly,Moderate,City|Beach,0.5M
osaka,Osaka,Japan,Asia,Fall,Mid-Range,Busy,City,2.7M
`

const embeddingsCSV = `city_id,e0,e1
osaka,0.5,0.5
kyoto,1,0
lisbon,0,1
`

func TestLoad(t *testing.T) {
	c, err := Load(strings.NewReader(citiesCSV), strings.NewReader(embeddingsCSV))
	require.NoError(t, err)

	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 2, c.Dim())

	kyoto := c.City(0)
	assert.Equal(t, "kyoto", kyoto.ID)
	assert.Equal(t, []string{"Historical", "Religious"}, kyoto.VacationTypes)
	assert.Equal(t, map[string]string{"population": "1.4M"}, kyoto.Attributes)

	// aligned by id, not by embeddings file order
	assert.Equal(t, []float64{1, 0}, c.Vector(0))
	assert.Equal(t, []float64{0.5, 0.5}, c.Vector(2))

	i, ok := c.IndexOf("lisbon")
	assert.True(t, ok)
	assert.Equal(t, 1, i)
	_, ok = c.IndexOf("paris")
	assert.False(t, ok)

	cont, ok := c.ContinentOf(" japan ")
	assert.True(t, ok)
	assert.Equal(t, "Asia", cont)

	assert.NoError(t, c.CheckDim(2))
	assert.True(t, core.IsShapeMismatch(c.CheckDim(3)))
}

func TestLoad_Misaligned(t *testing.T) {
	tests := []struct {
		name       string
		embeddings string
		check      func(error) bool
	}{
		{"missing city", "city_id,e0,e1\nkyoto,1,0\nlisbon,0,1\n", core.IsInvalidInput},
		{"extra city", embeddingsCSV + "paris,1,1\n", core.IsInvalidInput},
		{"duplicate", embeddingsCSV + "kyoto,1,1\n", core.IsInvalidInput},
		{"ragged", "city_id,e0,e1\nosaka,0.5,0.5\nkyoto,1\nlisbon,0,1\n", core.IsShapeMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(citiesCSV), strings.NewReader(tt.embeddings))
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestLoad_HeaderlessEmbeddings(t *testing.T) {
	c, err := Load(strings.NewReader(citiesCSV), strings.NewReader("kyoto,1,0\nlisbon,0,1\nosaka,0.5,0.5\n"))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, c.Vector(1))
}

func TestLoad_MissingColumn(t *testing.T) {
	_, err := Load(strings.NewReader("city_id,country\nkyoto,Japan\n"), strings.NewReader("kyoto,1\n"))
	assert.True(t, core.IsInvalidInput(err))
}

func TestNew_Invalid(t *testing.T) {
	recs := []core.CityRecord{{ID: "a"}, {ID: "a"}}
	_, err := New(recs, [][]float64{{1}, {2}})
	assert.True(t, core.IsInvalidInput(err))

	_, err = New([]core.CityRecord{{ID: "a"}}, [][]float64{{1}, {2}})
	assert.True(t, core.IsShapeMismatch(err))

	_, err = New(nil, nil)
	assert.Error(t, err)
}

func TestResolveAndLookup(t *testing.T) {
	c, err := New(
		[]core.CityRecord{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}, {ID: "c", Name: "C"}},
		[][]float64{{1}, {2}, {3}},
	)
	require.NoError(t, err)

	assert.Equal(t, []int{0, 2}, c.Resolve([]string{"c", "ghost", "a", "c"}))
	assert.Empty(t, c.Resolve(nil))

	rec, err := c.Lookup("b")
	require.NoError(t, err)
	assert.Equal(t, "B", rec.Name)

	_, err = c.Lookup("zzz")
	assert.True(t, errors.Is(err, core.ErrCityNotFound))
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	cities := filepath.Join(dir, "cities.csv")
	emb := filepath.Join(dir, "emb.csv")
	require.NoError(t, os.WriteFile(cities, []byte(citiesCSV), 0o644))
	require.NoError(t, os.WriteFile(emb, []byte(embeddingsCSV), 0o644))

	c, err := LoadFiles(cities, emb)
	require.NoError(t, err)
	assert.Equal(t, 3, c.Len())

	_, err = LoadFiles(filepath.Join(dir, "nope.csv"), emb)
	assert.Error(t, err)
}
