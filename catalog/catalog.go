// Package catalog holds the static city table and its embedding matrix.
//
// A Catalog is built once at startup and is read-only afterwards; every
// method is safe for concurrent use without locking.
package catalog

import (
	"fmt"
	"strings"

	"github.com/rushteam/citykit/core"
)

// Catalog is the ordered list of cities with one embedding row per city.
// Row i of the matrix belongs to record i; the id index maps every id to its
// row and is bijective.
type Catalog struct {
	records    []core.CityRecord
	vectors    [][]float64
	index      map[string]int
	continents map[string]string
	dim        int
}

// New validates alignment and builds the id index. records and vectors are
// copied by reference and must not be modified by the caller afterwards.
func New(records []core.CityRecord, vectors [][]float64) (*Catalog, error) {
	if len(records) != len(vectors) {
		return nil, core.NewShapeMismatchError(core.ModuleCatalog, "embedding rows", len(records), len(vectors))
	}
	if len(records) == 0 {
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: no cities")
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, core.NewShapeMismatchError(core.ModuleCatalog, "embedding dim", 1, 0)
	}

	c := &Catalog{
		records:    records,
		vectors:    vectors,
		index:      make(map[string]int, len(records)),
		continents: make(map[string]string),
		dim:        dim,
	}
	for i := range records {
		id := records[i].ID
		if id == "" {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, fmt.Sprintf("catalog: empty city id at row %d", i))
		}
		if _, dup := c.index[id]; dup {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: duplicate city id "+id)
		}
		if len(vectors[i]) != dim {
			return nil, core.NewShapeMismatchError(core.ModuleCatalog, "embedding of "+id, dim, len(vectors[i]))
		}
		c.index[id] = i

		if records[i].Continent != "" {
			key := normCountry(records[i].Country)
			if _, ok := c.continents[key]; !ok {
				c.continents[key] = records[i].Continent
			}
		}
	}
	return c, nil
}

// Len is the number of cities.
func (c *Catalog) Len() int { return len(c.records) }

// Dim is the embedding dimensionality.
func (c *Catalog) Dim() int { return c.dim }

// City returns the record at row i.
func (c *Catalog) City(i int) *core.CityRecord { return &c.records[i] }

// Vector returns the embedding at row i. The slice is shared; do not modify.
func (c *Catalog) Vector(i int) []float64 { return c.vectors[i] }

// Vectors returns the whole matrix. Shared; do not modify.
func (c *Catalog) Vectors() [][]float64 { return c.vectors }

// IndexOf returns the row of id.
func (c *Catalog) IndexOf(id string) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// Lookup returns the record of id or core.ErrCityNotFound.
func (c *Catalog) Lookup(id string) (*core.CityRecord, error) {
	i, ok := c.index[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrCityNotFound, id)
	}
	return &c.records[i], nil
}

// Resolve maps ids to row indices, dropping ids not in the catalog.
// The result is in catalog order without duplicates.
func (c *Catalog) Resolve(ids []string) []int {
	seen := make([]bool, len(c.records))
	for _, id := range ids {
		if i, ok := c.index[id]; ok {
			seen[i] = true
		}
	}
	out := make([]int, 0, len(ids))
	for i, ok := range seen {
		if ok {
			out = append(out, i)
		}
	}
	return out
}

// ContinentOf returns the continent of a country as recorded on its cities.
func (c *Catalog) ContinentOf(country string) (string, bool) {
	cont, ok := c.continents[normCountry(country)]
	return cont, ok
}

// CheckDim fails with SHAPE_MISMATCH unless the embeddings have dim columns.
func (c *Catalog) CheckDim(dim int) error {
	if dim != c.dim {
		return core.NewShapeMismatchError(core.ModuleCatalog, "embedding dim", dim, c.dim)
	}
	return nil
}

func normCountry(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
