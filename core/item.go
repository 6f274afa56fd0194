package core

import "github.com/rushteam/citykit/pkg/utils"

// Item is the unit flowing through a pipeline: one candidate city with its
// catalog row, score and labels. Labels explain decisions, Score orders.
type Item struct {
	ID     string
	Index  int
	City   *CityRecord
	Score  float64
	Labels map[string]utils.Label
}

func NewItem(index int, city *CityRecord) *Item {
	return &Item{
		ID:     city.ID,
		Index:  index,
		City:   city,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel stores a label; an existing label with the same key is merged.
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Scored converts the item to a ranking result.
func (it *Item) Scored() ScoredCity {
	return NewScoredCity(it.City, it.Score)
}
