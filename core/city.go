package core

// CityRecord is one row of the city catalog. Immutable after catalog load.
type CityRecord struct {
	ID        string `json:"city_id"`
	Name      string `json:"city_name"`
	Country   string `json:"country"`
	Continent string `json:"continent,omitempty"`

	// Categorical attributes used when the embeddings were trained.
	Seasons       string   `json:"seasons,omitempty"`
	Budget        string   `json:"budget,omitempty"`
	Vibe          string   `json:"vibe,omitempty"`
	VacationTypes []string `json:"vacation_types,omitempty"`

	// Attributes holds any extra catalog columns, keyed by column name.
	Attributes map[string]string `json:"attributes,omitempty"`
}

// ScoredCity is a ranking result. Created fresh for every ranking call.
type ScoredCity struct {
	CityID   string  `json:"city_id"`
	CityName string  `json:"city_name"`
	Country  string  `json:"country"`
	Score    float64 `json:"score"`
}

// NewScoredCity builds a result from a catalog record.
func NewScoredCity(c *CityRecord, score float64) ScoredCity {
	return ScoredCity{
		CityID:   c.ID,
		CityName: c.Name,
		Country:  c.Country,
		Score:    score,
	}
}
