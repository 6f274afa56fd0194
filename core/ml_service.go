package core

import "context"

// MLService is the domain interface of a remote model server.
//
// Defined in core and implemented in package service:
//   - service.TFServingClient implements it (TensorFlow Serving REST API)
//
// model.RemoteArtifact adapts an MLService to the artifact contract used by
// the embedder.
type MLService interface {
	// Predict runs a single inference call.
	Predict(ctx context.Context, req *MLPredictRequest) (*MLPredictResponse, error)

	// Signature returns the declared input/output tensors of the served model.
	Signature(ctx context.Context) (*MLSignature, error)

	// Health checks that the model is loaded and serving.
	Health(ctx context.Context) error

	// Close releases connections.
	Close() error
}

// MLPredictRequest is one inference request.
type MLPredictRequest struct {
	// Inputs maps input tensor name to a batch of rows.
	// Format: {"multi_hot": [[0, 1, ...]], "origin_country": [[12]]}
	Inputs map[string][][]float64

	// ModelName overrides the client's model (optional).
	ModelName string

	// ModelVersion pins a model version (optional).
	ModelVersion string
}

// MLPredictResponse is the result of one inference request.
type MLPredictResponse struct {
	// Outputs has one row per request row.
	Outputs [][]float64

	// ModelVersion as reported by the server, if any.
	ModelVersion string
}

// MLTensor describes one named tensor with its trailing dimension.
type MLTensor struct {
	Name string
	Dim  int
}

// MLSignature describes a served model's inputs and outputs.
type MLSignature struct {
	Inputs  []MLTensor
	Outputs []MLTensor
	Version string
}
