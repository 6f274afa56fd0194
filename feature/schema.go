package feature

import (
	"fmt"

	"github.com/rushteam/citykit/core"
)

// SegmentMultiHot names the concatenated multi-hot block of the encoded vector.
const SegmentMultiHot = "multi_hot"

// Segment is a named, contiguous range of the encoded vector.
type Segment struct {
	Name   string
	Offset int
	Len    int
}

// EncodedFeatures is the fixed-length numeric form of one user's answers.
//
// Layout: [multi-hot blocks in field order] then [scalar codes in field order].
// The layout is part of the contract with the inference artifact.
type EncodedFeatures struct {
	Vector   []float64
	Segments []Segment
}

// Segment returns the slice of the vector covered by the named segment.
func (f *EncodedFeatures) Segment(name string) ([]float64, bool) {
	for _, s := range f.Segments {
		if s.Name == name {
			return f.Vector[s.Offset : s.Offset+s.Len], true
		}
	}
	return nil, false
}

// Encoder turns UserAnswers into EncodedFeatures using fitted encoders.
// It is immutable after construction and safe for concurrent use.
type Encoder struct {
	version     string
	binarizers  []*MultiLabelBinarizer
	labels      []*LabelEncoder
	segments    []Segment
	multiHotLen int
}

// NewEncoder builds an encoder. binarizers and labels are taken in the given
// order, which fixes the vector layout.
func NewEncoder(version string, binarizers []*MultiLabelBinarizer, labels []*LabelEncoder) (*Encoder, error) {
	if len(binarizers) == 0 && len(labels) == 0 {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "feature: encoder has no fields")
	}

	e := &Encoder{
		version:    version,
		binarizers: binarizers,
		labels:     labels,
	}
	for _, b := range binarizers {
		if _, ok := (&core.UserAnswers{}).Multi(b.Field); !ok {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				fmt.Sprintf("feature: %q is not a multi-valued field", b.Field))
		}
		e.multiHotLen += b.Len()
	}

	offset := 0
	if e.multiHotLen > 0 {
		e.segments = append(e.segments, Segment{Name: SegmentMultiHot, Offset: 0, Len: e.multiHotLen})
		offset = e.multiHotLen
	}
	for _, l := range labels {
		if _, ok := (&core.UserAnswers{}).Scalar(l.Field); !ok {
			return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput,
				fmt.Sprintf("feature: %q is not a scalar field", l.Field))
		}
		e.segments = append(e.segments, Segment{Name: l.Field, Offset: offset, Len: 1})
		offset++
	}
	return e, nil
}

// Version is the version of the fitted state.
func (e *Encoder) Version() string { return e.version }

// Len is the length of every encoded vector.
func (e *Encoder) Len() int {
	return e.multiHotLen + len(e.labels)
}

// Segments returns the vector layout. The slice must not be modified.
func (e *Encoder) Segments() []Segment {
	return e.segments
}

// Encode encodes answers. A scalar value unknown to its label encoder fails
// with an UNKNOWN_CATEGORY error; unknown multi-valued tokens are dropped.
func (e *Encoder) Encode(answers *core.UserAnswers) (*EncodedFeatures, error) {
	if answers == nil {
		return nil, core.NewDomainError(core.ModuleFeature, core.ErrorCodeInvalidInput, "feature: answers are required")
	}

	vec := make([]float64, e.Len())
	offset := 0
	for _, b := range e.binarizers {
		values, _ := answers.Multi(b.Field)
		b.EncodeInto(vec[offset:offset+b.Len()], values)
		offset += b.Len()
	}
	for _, l := range e.labels {
		value, _ := answers.Scalar(l.Field)
		code, err := l.Encode(value)
		if err != nil {
			return nil, err
		}
		vec[offset] = code
		offset++
	}

	return &EncodedFeatures{Vector: vec, Segments: e.segments}, nil
}

// Metadata describes the fitted vocabularies, as served to clients building
// the questionnaire.
type Metadata struct {
	Version       string              `json:"version"`
	LabelMappings map[string][]string `json:"label_mappings"`
	Binarizers    map[string][]string `json:"binarizers"`
	VacationTypes []string            `json:"vacation_types"`
}

// Metadata returns the fitted vocabularies.
func (e *Encoder) Metadata() *Metadata {
	m := &Metadata{
		Version:       e.version,
		LabelMappings: make(map[string][]string, len(e.labels)),
		Binarizers:    make(map[string][]string, len(e.binarizers)),
	}
	for _, l := range e.labels {
		m.LabelMappings[l.Field] = append([]string(nil), l.Classes...)
	}
	for _, b := range e.binarizers {
		m.Binarizers[b.Field] = append([]string(nil), b.Classes...)
		if b.Field == core.FieldVacationTypes {
			m.VacationTypes = append([]string(nil), b.Classes...)
		}
	}
	return m
}
