package model

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/rushteam/citykit/core"
	"github.com/rushteam/citykit/pkg/vecmath"
)

// DenseLayer is one fully connected layer.
// Weights[j][k] connects input k to neuron j.
type DenseLayer struct {
	Weights    [][]float64 `json:"weights"`
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // relu / linear / tanh / sigmoid
}

// DenseExport is the JSON export of a trained user tower.
type DenseExport struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Inputs      []Tensor     `json:"inputs"`
	Layers      []DenseLayer `json:"layers"`
	L2Normalize bool         `json:"l2_normalize"`
}

// DenseArtifact runs a feed-forward user tower in process.
//
// Inputs are concatenated in signature order and pushed through the layers.
// Inference is deterministic. Scratch buffers are reused between calls, so a
// DenseArtifact must not be called concurrently.
type DenseArtifact struct {
	export  DenseExport
	sig     Signature
	scratch [][]float64
	input   []float64
}

// LoadDenseArtifact reads a JSON export from path.
func LoadDenseArtifact(path string) (*DenseArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	var export DenseExport
	if err := json.Unmarshal(data, &export); err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}
	return NewDenseArtifact(export)
}

// NewDenseArtifact validates the layer shapes of export.
func NewDenseArtifact(export DenseExport) (*DenseArtifact, error) {
	if len(export.Inputs) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: artifact declares no inputs")
	}
	if len(export.Layers) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: artifact has no layers")
	}

	inDim := 0
	for _, in := range export.Inputs {
		if in.Dim <= 0 {
			return nil, core.NewShapeMismatchError(core.ModuleModel, "input "+in.Name, 1, in.Dim)
		}
		inDim += in.Dim
	}

	prev := inDim
	scratch := make([][]float64, len(export.Layers))
	for l, layer := range export.Layers {
		if len(layer.Weights) == 0 {
			return nil, core.NewShapeMismatchError(core.ModuleModel, fmt.Sprintf("layer %d neurons", l), 1, 0)
		}
		if len(layer.Biases) != len(layer.Weights) {
			return nil, core.NewShapeMismatchError(core.ModuleModel, fmt.Sprintf("layer %d biases", l), len(layer.Weights), len(layer.Biases))
		}
		for j, row := range layer.Weights {
			if len(row) != prev {
				return nil, core.NewShapeMismatchError(core.ModuleModel, fmt.Sprintf("layer %d neuron %d", l, j), prev, len(row))
			}
		}
		if _, err := activation(layer.Activation); err != nil {
			return nil, err
		}
		scratch[l] = make([]float64, len(layer.Weights))
		prev = len(layer.Weights)
	}

	return &DenseArtifact{
		export: export,
		sig: Signature{
			Inputs:    append([]Tensor(nil), export.Inputs...),
			OutputDim: prev,
			Version:   export.Version,
		},
		scratch: scratch,
		input:   make([]float64, inDim),
	}, nil
}

func (a *DenseArtifact) Name() string {
	if a.export.Name == "" {
		return "dense"
	}
	return a.export.Name
}

func (a *DenseArtifact) Signature() Signature {
	return a.sig
}

// Infer runs the forward pass.
func (a *DenseArtifact) Infer(_ context.Context, inputs [][]float64) ([]float64, error) {
	if len(inputs) != len(a.sig.Inputs) {
		return nil, core.NewShapeMismatchError(core.ModuleModel, "input count", len(a.sig.Inputs), len(inputs))
	}
	offset := 0
	for i, in := range inputs {
		want := a.sig.Inputs[i].Dim
		if len(in) != want {
			return nil, core.NewShapeMismatchError(core.ModuleModel, "input "+a.sig.Inputs[i].Name, want, len(in))
		}
		copy(a.input[offset:], in)
		offset += want
	}

	current := a.input
	for l, layer := range a.export.Layers {
		act, _ := activation(layer.Activation)
		next := a.scratch[l]
		for j, row := range layer.Weights {
			sum := layer.Biases[j]
			for k, w := range row {
				sum += w * current[k]
			}
			next[j] = act(sum)
		}
		current = next
	}

	out := make([]float64, len(current))
	copy(out, current)
	if a.export.L2Normalize {
		out = vecmath.Normalize(out)
	}
	return out, nil
}

func activation(name string) (func(float64) float64, error) {
	switch name {
	case "relu":
		return relu, nil
	case "", "linear":
		return linear, nil
	case "tanh":
		return math.Tanh, nil
	case "sigmoid":
		return sigmoid, nil
	default:
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotSupported, "model: unsupported activation "+name)
	}
}

func relu(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func linear(x float64) float64 { return x }

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

var _ Artifact = (*DenseArtifact)(nil)
