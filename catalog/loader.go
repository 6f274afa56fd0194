package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/rushteam/citykit/core"
)

// Known columns of the cities file. Anything else lands in Attributes.
const (
	colID            = "city_id"
	colName          = "city_name"
	colCountry       = "country"
	colContinent     = "continent"
	colSeasons       = "seasons"
	colBudget        = "budget"
	colVibe          = "vibe"
	colVacationTypes = "vacation_types"
)

// VacationTypeSep separates vacation types inside one CSV cell.
const VacationTypeSep = "|"

// LoadFiles reads the cities and embeddings CSV files.
func LoadFiles(citiesPath, embeddingsPath string) (*Catalog, error) {
	cf, err := os.Open(citiesPath)
	if err != nil {
		return nil, fmt.Errorf("open cities: %w", err)
	}
	defer cf.Close()

	ef, err := os.Open(embeddingsPath)
	if err != nil {
		return nil, fmt.Errorf("open embeddings: %w", err)
	}
	defer ef.Close()

	return Load(cf, ef)
}

// Load reads cities and embeddings and aligns embeddings to the city order
// by id. A city without an embedding, an embedding without a city, a
// duplicate id or a ragged row fails the load.
func Load(cities, embeddings io.Reader) (*Catalog, error) {
	records, err := readCities(cities)
	if err != nil {
		return nil, err
	}
	byID, err := readEmbeddings(embeddings)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float64, len(records))
	for i, r := range records {
		v, ok := byID[r.ID]
		if !ok {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: no embedding for city "+r.ID)
		}
		vectors[i] = v
		delete(byID, r.ID)
	}
	if len(byID) > 0 {
		extra := make([]string, 0, len(byID))
		for id := range byID {
			extra = append(extra, id)
		}
		sort.Strings(extra)
		return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: embeddings for unknown cities "+strings.Join(extra, ","))
	}
	return New(records, vectors)
}

func readCities(r io.Reader) ([]core.CityRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read cities header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{colID, colName, colCountry} {
		if _, ok := cols[required]; !ok {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: cities file missing column "+required)
		}
	}

	var records []core.CityRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read cities line %d: %w", line, err)
		}
		get := func(col string) string {
			if i, ok := cols[col]; ok {
				return strings.TrimSpace(row[i])
			}
			return ""
		}

		rec := core.CityRecord{
			ID:        get(colID),
			Name:      get(colName),
			Country:   get(colCountry),
			Continent: get(colContinent),
			Seasons:   get(colSeasons),
			Budget:    get(colBudget),
			Vibe:      get(colVibe),
		}
		if vt := get(colVacationTypes); vt != "" {
			for _, t := range strings.Split(vt, VacationTypeSep) {
				if t = strings.TrimSpace(t); t != "" {
					rec.VacationTypes = append(rec.VacationTypes, t)
				}
			}
		}
		for i, h := range header {
			h = strings.TrimSpace(h)
			if isKnownColumn(h) {
				continue
			}
			if rec.Attributes == nil {
				rec.Attributes = make(map[string]string)
			}
			rec.Attributes[h] = strings.TrimSpace(row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}

func isKnownColumn(h string) bool {
	switch h {
	case colID, colName, colCountry, colContinent, colSeasons, colBudget, colVibe, colVacationTypes:
		return true
	}
	return false
}

// readEmbeddings reads "city_id,e0,...,eN" rows. A header row is detected by
// a non-numeric second cell and skipped.
func readEmbeddings(r io.Reader) (map[string][]float64, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	out := make(map[string][]float64)
	dim := -1
	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read embeddings line %d: %w", line, err)
		}
		if len(row) < 2 {
			return nil, core.NewShapeMismatchError(core.ModuleCatalog, fmt.Sprintf("embeddings line %d", line), 2, len(row))
		}
		if line == 1 {
			if _, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64); err != nil {
				continue
			}
		}

		id := strings.TrimSpace(row[0])
		if _, dup := out[id]; dup {
			return nil, core.NewDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput, "catalog: duplicate embedding for city "+id)
		}
		if dim < 0 {
			dim = len(row) - 1
		} else if len(row)-1 != dim {
			return nil, core.NewShapeMismatchError(core.ModuleCatalog, "embedding of "+id, dim, len(row)-1)
		}

		vec := make([]float64, dim)
		for j, cell := range row[1:] {
			f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, fmt.Errorf("embeddings line %d column %d: %w", line, j+1, err)
			}
			vec[j] = f
		}
		out[id] = vec
	}
	return out, nil
}
