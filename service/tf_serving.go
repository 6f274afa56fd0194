package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/rushteam/citykit/core"
)

// TFServingClient is a TensorFlow Serving REST client (port 8501).
//
// Requests use the columnar "inputs" format so that a multi-input user tower
// receives one named tensor per input slot. The served signature is read from
// the model metadata endpoint.
type TFServingClient struct {
	// Endpoint, e.g. "http://localhost:8501".
	Endpoint string

	ModelName string

	// ModelVersion is optional; empty serves the latest version.
	ModelVersion string

	// SignatureName defaults to "serving_default".
	SignatureName string

	// OutputName selects one output of a multi-output signature.
	OutputName string

	Timeout time.Duration

	Auth *AuthConfig

	httpClient *http.Client
}

// NewTFServingClient creates a TF Serving client.
func NewTFServingClient(endpoint, modelName string, opts ...TFServingOption) *TFServingClient {
	client := &TFServingClient{
		Endpoint:      endpoint,
		ModelName:     modelName,
		SignatureName: "serving_default",
		Timeout:       30 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{
			Timeout: client.Timeout,
		}
	}
	return client
}

// TFServingOption configures a TFServingClient.
type TFServingOption func(*TFServingClient)

// WithTFServingVersion pins the model version.
func WithTFServingVersion(version string) TFServingOption {
	return func(c *TFServingClient) {
		c.ModelVersion = version
	}
}

// WithTFServingSignature sets the signature name.
func WithTFServingSignature(signatureName string) TFServingOption {
	return func(c *TFServingClient) {
		c.SignatureName = signatureName
	}
}

// WithTFServingOutput selects the output tensor.
func WithTFServingOutput(name string) TFServingOption {
	return func(c *TFServingClient) {
		c.OutputName = name
	}
}

// WithTFServingTimeout sets the HTTP timeout.
func WithTFServingTimeout(timeout time.Duration) TFServingOption {
	return func(c *TFServingClient) {
		c.Timeout = timeout
	}
}

// WithTFServingAuth sets credentials.
func WithTFServingAuth(auth *AuthConfig) TFServingOption {
	return func(c *TFServingClient) {
		c.Auth = auth
	}
}

// WithTFServingHTTPClient replaces the HTTP client. Its own timeout applies;
// WithTFServingTimeout only shapes the default client.
func WithTFServingHTTPClient(hc *http.Client) TFServingOption {
	return func(c *TFServingClient) {
		c.httpClient = hc
	}
}

func (c *TFServingClient) modelURL(modelName, version string) string {
	if modelName == "" {
		modelName = c.ModelName
	}
	if version == "" {
		version = c.ModelVersion
	}
	if version != "" {
		return fmt.Sprintf("%s/v1/models/%s/versions/%s", c.Endpoint, modelName, version)
	}
	return fmt.Sprintf("%s/v1/models/%s", c.Endpoint, modelName)
}

// Predict implements core.MLService.
func (c *TFServingClient) Predict(ctx context.Context, req *core.MLPredictRequest) (*core.MLPredictResponse, error) {
	if req == nil || len(req.Inputs) == 0 {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "service: inputs are required")
	}

	body := map[string]any{"inputs": req.Inputs}
	if c.SignatureName != "" {
		body["signature_name"] = c.SignatureName
	}
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := c.modelURL(req.ModelName, req.ModelVersion) + ":predict"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	data, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var result struct {
		Outputs     json.RawMessage `json:"outputs"`
		Predictions [][]float64     `json:"predictions"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	outputs, err := c.decodeOutputs(result.Outputs)
	if err != nil {
		return nil, err
	}
	if outputs == nil {
		outputs = result.Predictions
	}

	version := req.ModelVersion
	if version == "" {
		version = c.ModelVersion
	}
	return &core.MLPredictResponse{
		Outputs:      outputs,
		ModelVersion: version,
	}, nil
}

// decodeOutputs handles both shapes of a columnar response: a bare tensor
// for single-output signatures and a name-keyed object otherwise.
func (c *TFServingClient) decodeOutputs(raw json.RawMessage) ([][]float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single [][]float64
	if err := json.Unmarshal(raw, &single); err == nil {
		return single, nil
	}

	var named map[string][][]float64
	if err := json.Unmarshal(raw, &named); err != nil {
		return nil, fmt.Errorf("decode outputs: %w", err)
	}
	if c.OutputName != "" {
		out, ok := named[c.OutputName]
		if !ok {
			return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound, "service: output not found: "+c.OutputName)
		}
		return out, nil
	}
	if len(named) == 1 {
		for _, out := range named {
			return out, nil
		}
	}
	return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeShapeMismatch,
		fmt.Sprintf("service: model has %d outputs, output name is required", len(named)))
}

type tensorInfo struct {
	Shape struct {
		Dim []struct {
			Size string `json:"size"`
		} `json:"dim"`
	} `json:"tensor_shape"`
}

type signatureDef struct {
	Inputs  map[string]tensorInfo `json:"inputs"`
	Outputs map[string]tensorInfo `json:"outputs"`
}

// Signature reads the served signature from the metadata endpoint.
// Tensors are sorted by name; the trailing dimension is reported.
func (c *TFServingClient) Signature(ctx context.Context) (*core.MLSignature, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL("", "")+"/metadata", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	data, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	var meta struct {
		ModelSpec struct {
			Version string `json:"version"`
		} `json:"model_spec"`
		Metadata struct {
			SignatureDef struct {
				SignatureDef map[string]signatureDef `json:"signature_def"`
			} `json:"signature_def"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}

	def, ok := meta.Metadata.SignatureDef.SignatureDef[c.SignatureName]
	if !ok {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeNotFound, "service: signature not found: "+c.SignatureName)
	}

	inputs, err := tensors(def.Inputs)
	if err != nil {
		return nil, err
	}
	outputs, err := tensors(def.Outputs)
	if err != nil {
		return nil, err
	}
	return &core.MLSignature{Inputs: inputs, Outputs: outputs, Version: meta.ModelSpec.Version}, nil
}

func tensors(m map[string]tensorInfo) ([]core.MLTensor, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]core.MLTensor, 0, len(names))
	for _, name := range names {
		dims := m[name].Shape.Dim
		if len(dims) == 0 {
			return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeShapeMismatch, "service: tensor has no shape: "+name)
		}
		size, err := strconv.Atoi(dims[len(dims)-1].Size)
		if err != nil || size <= 0 {
			return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeShapeMismatch, "service: tensor has no fixed trailing dimension: "+name)
		}
		out = append(out, core.MLTensor{Name: name, Dim: size})
	}
	return out, nil
}

// Health checks that the model version is AVAILABLE.
func (c *TFServingClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.modelURL("", ""), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	data, err := c.do(httpReq)
	if err != nil {
		return err
	}

	var status struct {
		ModelVersionStatus []struct {
			Version string `json:"version"`
			State   string `json:"state"`
		} `json:"model_version_status"`
	}
	if err := json.Unmarshal(data, &status); err != nil {
		return fmt.Errorf("decode status: %w", err)
	}
	for _, s := range status.ModelVersionStatus {
		if s.State == "AVAILABLE" {
			return nil
		}
	}
	return core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "service: no available model version")
}

func (c *TFServingClient) do(req *http.Request) ([]byte, error) {
	c.addAuth(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "service: tf serving request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleService, core.ErrorCodeUnavailable, "service: read response", err)
	}
	if resp.StatusCode != http.StatusOK {
		// 400: the served signature no longer matches the encoder
		code := core.ErrorCodeUnavailable
		if resp.StatusCode == http.StatusBadRequest {
			code = core.ErrorCodeShapeMismatch
		}
		return nil, core.NewDomainError(core.ModuleService, code,
			fmt.Sprintf("service: tf serving error: status=%d, body=%s", resp.StatusCode, string(data)))
	}
	return data, nil
}

func (c *TFServingClient) addAuth(req *http.Request) {
	if c.Auth == nil {
		return
	}

	switch c.Auth.Type {
	case "basic":
		req.SetBasicAuth(c.Auth.Username, c.Auth.Password)
	case "bearer":
		req.Header.Set("Authorization", "Bearer "+c.Auth.Token)
	case "api_key":
		req.Header.Set("X-API-Key", c.Auth.APIKey)
	}
}

// Close is a no-op; the HTTP transport is shared.
func (c *TFServingClient) Close() error {
	return nil
}

var _ core.MLService = (*TFServingClient)(nil)
