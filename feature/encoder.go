package feature

import (
	"strings"

	"github.com/rushteam/citykit/core"
)

// LabelEncoder maps a scalar categorical value to an integer code.
//
// Codes follow the fitted class order exactly as exported: the code of a
// class is its position in the list. A value not seen during fitting is an
// error, never a silent default class.
type LabelEncoder struct {
	Field   string
	Classes []string
	index   map[string]int
}

// NewLabelEncoder builds an encoder from the fitted classes. The order is
// kept; a repeated class keeps its first position.
func NewLabelEncoder(field string, classes []string) *LabelEncoder {
	ordered := uniqueOrdered(classes)
	return &LabelEncoder{
		Field:   field,
		Classes: ordered,
		index:   indexOf(ordered),
	}
}

// Encode returns the code of value.
func (e *LabelEncoder) Encode(value string) (float64, error) {
	code, ok := e.index[strings.TrimSpace(value)]
	if !ok {
		return 0, core.NewUnknownCategoryError(e.Field, value)
	}
	return float64(code), nil
}

// Decode returns the class of a code.
func (e *LabelEncoder) Decode(code int) (string, bool) {
	if code < 0 || code >= len(e.Classes) {
		return "", false
	}
	return e.Classes[code], true
}

// MultiLabelBinarizer maps a set of values to a multi-hot indicator vector
// over the fitted vocabulary. Values outside the vocabulary are dropped.
type MultiLabelBinarizer struct {
	Field   string
	Classes []string
	index   map[string]int
}

// NewMultiLabelBinarizer builds a binarizer from the fitted classes. Slot i
// of the indicator vector is classes[i], in the order given.
func NewMultiLabelBinarizer(field string, classes []string) *MultiLabelBinarizer {
	ordered := uniqueOrdered(classes)
	return &MultiLabelBinarizer{
		Field:   field,
		Classes: ordered,
		index:   indexOf(ordered),
	}
}

// Len is the width of the indicator vector.
func (b *MultiLabelBinarizer) Len() int {
	return len(b.Classes)
}

// EncodeInto writes the indicator vector of values into dst, which must be
// exactly Len() long. It returns the number of values that were dropped.
func (b *MultiLabelBinarizer) EncodeInto(dst []float64, values []string) int {
	for i := range dst {
		dst[i] = 0
	}
	dropped := 0
	for _, v := range values {
		i, ok := b.index[strings.TrimSpace(v)]
		if !ok {
			dropped++
			continue
		}
		dst[i] = 1
	}
	return dropped
}

// Encode returns the indicator vector of values.
func (b *MultiLabelBinarizer) Encode(values []string) []float64 {
	out := make([]float64, b.Len())
	b.EncodeInto(out, values)
	return out
}

func uniqueOrdered(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func indexOf(classes []string) map[string]int {
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return index
}
