package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	assert.Equal(t, 11.0, Dot([]float64{1, 2}, []float64{3, 4}))
	assert.Equal(t, 0.0, Dot([]float64{1, 2}, []float64{3}))
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 0}, []float64{1, 0}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 1}, []float64{-1, -1}, -1},
		{"zero vector", []float64{0, 0}, []float64{1, 0}, 0},
		{"both zero", []float64{0, 0}, []float64{0, 0}, 0},
		{"length mismatch", []float64{1}, []float64{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Cosine(tt.a, tt.b), 1e-6)
		})
	}
}

func TestMeanCosine(t *testing.T) {
	v := []float64{1, 0}
	assert.Equal(t, 0.0, MeanCosine(v, nil))
	assert.InDelta(t, 0.5, MeanCosine(v, [][]float64{{1, 0}, {0, 1}}), 1e-6)
	assert.InDelta(t, 1.0, MeanCosine(v, [][]float64{{2, 0}}), 1e-6)
}

func TestNormalize(t *testing.T) {
	assert.InDeltaSlice(t, []float64{0.6, 0.8}, Normalize([]float64{3, 4}), 1e-9)
	assert.Equal(t, []float64{0, 0}, Normalize([]float64{0, 0}))
}
