package model

import (
	"context"
	"fmt"

	"github.com/rushteam/citykit/core"
)

// RemoteArtifact is an Artifact served by a remote model server
// (TensorFlow Serving or anything else implementing core.MLService).
//
// The signature is fetched once at construction and never refreshed: a model
// server that hot-swaps to a different signature is caught by the output and
// input shape checks of every call.
type RemoteArtifact struct {
	name    string
	service core.MLService
	sig     Signature
}

// NewRemoteArtifact fetches the signature of the served model. outputName
// selects the embedding output when the model has several; empty picks the
// first one.
func NewRemoteArtifact(ctx context.Context, name string, svc core.MLService, outputName string) (*RemoteArtifact, error) {
	msig, err := svc.Signature(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch model signature: %w", err)
	}
	if len(msig.Inputs) == 0 || len(msig.Outputs) == 0 {
		return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeInvalidInput, "model: remote signature has no inputs or outputs")
	}

	out := msig.Outputs[0]
	if outputName != "" {
		found := false
		for _, o := range msig.Outputs {
			if o.Name == outputName {
				out, found = o, true
				break
			}
		}
		if !found {
			return nil, core.NewDomainError(core.ModuleModel, core.ErrorCodeNotFound, "model: output not found: "+outputName)
		}
	}

	sig := Signature{OutputDim: out.Dim, Version: msig.Version}
	for _, in := range msig.Inputs {
		sig.Inputs = append(sig.Inputs, Tensor{Name: in.Name, Dim: in.Dim})
	}
	return &RemoteArtifact{name: name, service: svc, sig: sig}, nil
}

func (a *RemoteArtifact) Name() string { return a.name }

func (a *RemoteArtifact) Signature() Signature { return a.sig }

// Infer sends one row per input tensor.
func (a *RemoteArtifact) Infer(ctx context.Context, inputs [][]float64) ([]float64, error) {
	if len(inputs) != len(a.sig.Inputs) {
		return nil, core.NewShapeMismatchError(core.ModuleModel, "input count", len(a.sig.Inputs), len(inputs))
	}
	req := &core.MLPredictRequest{Inputs: make(map[string][][]float64, len(inputs))}
	for i, in := range inputs {
		req.Inputs[a.sig.Inputs[i].Name] = [][]float64{in}
	}

	resp, err := a.service.Predict(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("remote inference: %w", err)
	}
	if len(resp.Outputs) != 1 {
		return nil, core.NewShapeMismatchError(core.ModuleModel, "output rows", 1, len(resp.Outputs))
	}
	return resp.Outputs[0], nil
}

var _ Artifact = (*RemoteArtifact)(nil)
