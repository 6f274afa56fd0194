package model

import "context"

// Artifact is a trained user-tower scoring artifact: a black box with a
// fixed multi-slot input signature that returns one embedding per call.
//
// Implementations:
//   - DenseArtifact: feed-forward network exported as JSON, run in process
//   - RemoteArtifact: model served by a core.MLService (TF Serving)
//
// Implementations are not required to be safe for concurrent Infer calls;
// Embedder serializes them.
type Artifact interface {
	Name() string

	// Signature is fixed for the artifact's lifetime.
	Signature() Signature

	// Infer runs one inference. inputs[i] feeds Signature().Inputs[i].
	Infer(ctx context.Context, inputs [][]float64) ([]float64, error)
}

// Tensor is a named input or output with its trailing dimension.
type Tensor struct {
	Name string `json:"name"`
	Dim  int    `json:"dim"`
}

// Signature is the declared shape contract of an artifact.
type Signature struct {
	Inputs    []Tensor
	OutputDim int
	Version   string
}

// InputIndex returns the position of the named input.
func (s Signature) InputIndex(name string) (int, bool) {
	for i, in := range s.Inputs {
		if in.Name == name {
			return i, true
		}
	}
	return -1, false
}
