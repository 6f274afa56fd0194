package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/core"
)

func testExport() DenseExport {
	return DenseExport{
		Name:    "user_tower",
		Version: "v1",
		Inputs:  []Tensor{{Name: "multi_hot", Dim: 3}, {Name: "origin_country", Dim: 1}},
		Layers: []DenseLayer{
			{
				Weights:    [][]float64{{1, 0, 0, 1}, {0, 1, 0, -1}},
				Biases:     []float64{0, 0},
				Activation: "relu",
			},
			{
				Weights: [][]float64{{1, 1}, {1, -1}},
				Biases:  []float64{0.5, 0},
			},
		},
	}
}

func TestDenseArtifact_Infer(t *testing.T) {
	a, err := NewDenseArtifact(testExport())
	require.NoError(t, err)

	sig := a.Signature()
	assert.Equal(t, 2, sig.OutputDim)
	assert.Equal(t, "v1", sig.Version)
	assert.Equal(t, "user_tower", a.Name())

	// input [0 1 0 2]; layer 1: relu(0+2)=2, relu(1-2)=0; layer 2: 2+0+0.5, 2-0
	out, err := a.Infer(context.Background(), [][]float64{{0, 1, 0}, {2}})
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 2}, out)

	again, err := a.Infer(context.Background(), [][]float64{{0, 1, 0}, {2}})
	require.NoError(t, err)
	assert.Equal(t, out, again, "inference is deterministic")
}

func TestDenseArtifact_OutputNotAliased(t *testing.T) {
	a, err := NewDenseArtifact(testExport())
	require.NoError(t, err)

	first, err := a.Infer(context.Background(), [][]float64{{1, 0, 0}, {0}})
	require.NoError(t, err)
	snapshot := append([]float64(nil), first...)

	_, err = a.Infer(context.Background(), [][]float64{{0, 0, 1}, {5}})
	require.NoError(t, err)
	assert.Equal(t, snapshot, first)
}

func TestDenseArtifact_L2Normalize(t *testing.T) {
	export := testExport()
	export.L2Normalize = true
	a, err := NewDenseArtifact(export)
	require.NoError(t, err)

	out, err := a.Infer(context.Background(), [][]float64{{0, 1, 0}, {2}})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, out[0]*out[0]+out[1]*out[1], 1e-9)
}

func TestDenseArtifact_InputShape(t *testing.T) {
	a, err := NewDenseArtifact(testExport())
	require.NoError(t, err)

	_, err = a.Infer(context.Background(), [][]float64{{0, 1, 0}})
	assert.True(t, core.IsShapeMismatch(err))

	_, err = a.Infer(context.Background(), [][]float64{{0, 1}, {2}})
	assert.True(t, core.IsShapeMismatch(err))
}

func TestNewDenseArtifact_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DenseExport)
		check  func(error) bool
	}{
		{"no inputs", func(e *DenseExport) { e.Inputs = nil }, core.IsInvalidInput},
		{"no layers", func(e *DenseExport) { e.Layers = nil }, core.IsInvalidInput},
		{"bad row width", func(e *DenseExport) { e.Layers[0].Weights[1] = []float64{1} }, core.IsShapeMismatch},
		{"bias count", func(e *DenseExport) { e.Layers[1].Biases = []float64{0} }, core.IsShapeMismatch},
		{"activation", func(e *DenseExport) { e.Layers[0].Activation = "gelu" }, core.IsNotSupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			export := testExport()
			tt.mutate(&export)
			_, err := NewDenseArtifact(export)
			require.Error(t, err)
			assert.True(t, tt.check(err), err.Error())
		})
	}
}

func TestLoadDenseArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tower.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"name": "tower",
		"version": "3",
		"inputs": [{"name": "x", "dim": 2}],
		"layers": [{"weights": [[1, 2]], "biases": [1], "activation": "linear"}]
	}`), 0o644))

	a, err := LoadDenseArtifact(path)
	require.NoError(t, err)
	out, err := a.Infer(context.Background(), [][]float64{{1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{4}, out)

	_, err = LoadDenseArtifact(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
