// Package citykit recommends travel destinations from questionnaire answers.
//
// Design points:
//   - Answers are encoded with fitted vocabularies and embedded by a trained
//     user tower; cities are ranked by dot product against catalog embeddings.
//   - Pipeline-first: the recommend flow is a chain of Nodes
//     (recall -> rank -> filter -> rerank) configurable from YAML.
//   - Swipes feed back into the next-city pick through liked and disliked
//     centroid similarity.
package citykit

import (
	"context"

	"github.com/rushteam/citykit/config"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/engine"
	"github.com/rushteam/citykit/pipeline"
)

// Thin facade so callers can import "citykit" for the core abstractions.
type (
	Engine      = engine.Engine
	Config      = config.AppConfig
	UserAnswers = core.UserAnswers
	ScoredCity  = core.ScoredCity
	CityRecord  = core.CityRecord
	Pipeline    = pipeline.Pipeline
	Node        = pipeline.Node
	Kind        = pipeline.Kind
)

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindRank        = pipeline.KindRank
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)

// ErrNoMoreCities is returned by NextCity once a user has swiped every city.
var ErrNoMoreCities = core.ErrNoMoreCities

// LoadConfig reads a YAML config file (optional when empty) with CITYKIT_*
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// New builds an engine from cfg.
func New(ctx context.Context, cfg *Config) (*Engine, error) {
	return engine.New(ctx, cfg)
}
