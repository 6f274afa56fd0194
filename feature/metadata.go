package feature

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// State is the fitted encoder state exported by the training job.
// YAML and JSON files are both accepted.
//
//	version: "2025-03-01"
//	multi_label_fields: [vacation_types, seasons, budget, place_type]
//	scalar_fields: [origin_country, favorite_country_visited]
//	binarizers:
//	  vacation_types: [Adventure, Beach, City, Historical, Nature, Religious]
//	label_encoders:
//	  origin_country: [Canada, France, India]
type State struct {
	Version          string              `yaml:"version" json:"version"`
	MultiLabelFields []string            `yaml:"multi_label_fields" json:"multi_label_fields"`
	ScalarFields     []string            `yaml:"scalar_fields" json:"scalar_fields"`
	Binarizers       map[string][]string `yaml:"binarizers" json:"binarizers"`
	LabelEncoders    map[string][]string `yaml:"label_encoders" json:"label_encoders"`
}

// StateLoader loads fitted encoder state from a source (path, URL, ...).
type StateLoader interface {
	Load(ctx context.Context, source string) (*State, error)
}

// FileStateLoader loads state from a local file.
type FileStateLoader struct{}

func NewFileStateLoader() *FileStateLoader {
	return &FileStateLoader{}
}

func (l *FileStateLoader) Load(_ context.Context, path string) (*State, error) {
	return LoadState(path)
}

// LoadState reads a state file.
func LoadState(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read encoder state: %w", err)
	}
	return ParseState(data)
}

// ParseState parses YAML or JSON state.
func ParseState(data []byte) (*State, error) {
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse encoder state: %w", err)
	}
	return &st, nil
}

// NewEncoderFromState builds an Encoder; field order comes from the state's
// field lists. Every listed field needs fitted classes.
func NewEncoderFromState(st *State) (*Encoder, error) {
	binarizers := make([]*MultiLabelBinarizer, 0, len(st.MultiLabelFields))
	for _, f := range st.MultiLabelFields {
		classes, ok := st.Binarizers[f]
		if !ok || len(classes) == 0 {
			return nil, fmt.Errorf("encoder state: no binarizer classes for %q", f)
		}
		binarizers = append(binarizers, NewMultiLabelBinarizer(f, classes))
	}

	labels := make([]*LabelEncoder, 0, len(st.ScalarFields))
	for _, f := range st.ScalarFields {
		classes, ok := st.LabelEncoders[f]
		if !ok || len(classes) == 0 {
			return nil, fmt.Errorf("encoder state: no label classes for %q", f)
		}
		labels = append(labels, NewLabelEncoder(f, classes))
	}

	return NewEncoder(st.Version, binarizers, labels)
}
