package config

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rushteam/citykit/catalog"
	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pipeline"
)

// Deps are the process-wide objects node builders may use.
type Deps struct {
	Catalog *catalog.Catalog

	// DistanceRules overrides the built-in distance filter rules.
	DistanceRules map[string]string

	// Blacklist is a list of city ids always filtered out.
	Blacklist []string

	// Feedback backs the swiped filter.
	Feedback core.FeedbackReader
}

// NodeBuilder builds a node from its config block and the process deps.
type NodeBuilder func(deps *Deps, cfg map[string]any) (pipeline.Node, error)

var (
	defaultBuilders   = make(map[string]NodeBuilder)
	defaultBuildersMu sync.RWMutex
)

// Register adds a node type to the registry. The built-in types register
// themselves in this package's init; callers may add their own before
// building the engine.
func Register(typeName string, builder NodeBuilder) {
	if typeName == "" || builder == nil {
		return
	}
	defaultBuildersMu.Lock()
	defer defaultBuildersMu.Unlock()
	defaultBuilders[typeName] = builder
}

// SupportedTypes lists the registered node types, sorted.
func SupportedTypes() []string {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	types := make([]string, 0, len(defaultBuilders))
	for t := range defaultBuilders {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// NewFactory binds every registered builder to deps.
func NewFactory(deps *Deps) *pipeline.NodeFactory {
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	f := pipeline.NewNodeFactory()
	for typeName, builder := range defaultBuilders {
		b := builder
		f.Register(typeName, func(cfg map[string]any) (pipeline.Node, error) {
			return b(deps, cfg)
		})
	}
	return f
}

// ValidatePipelineConfig checks that every node type is registered.
func ValidatePipelineConfig(cfg *pipeline.Config) error {
	if cfg == nil {
		return nil
	}
	if len(cfg.Pipeline.Nodes) == 0 {
		return fmt.Errorf("pipeline %q has no nodes", cfg.Pipeline.Name)
	}
	defaultBuildersMu.RLock()
	defer defaultBuildersMu.RUnlock()
	for _, nc := range cfg.Pipeline.Nodes {
		if _, ok := defaultBuilders[nc.Type]; !ok {
			return fmt.Errorf("unsupported node type %q (supported: %v)", nc.Type, sortedKeys(defaultBuilders))
		}
	}
	return nil
}

func sortedKeys(m map[string]NodeBuilder) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
