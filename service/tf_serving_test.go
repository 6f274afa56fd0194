package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/core"
)

const metadataBody = `{
  "model_spec": {"name": "user_tower", "version": "4"},
  "metadata": {"signature_def": {"signature_def": {
    "serving_default": {
      "inputs": {
        "tags": {"dtype": "DT_FLOAT", "tensor_shape": {"dim": [{"size": "-1"}, {"size": "17"}]}},
        "country": {"dtype": "DT_FLOAT", "tensor_shape": {"dim": [{"size": "-1"}, {"size": "1"}]}}
      },
      "outputs": {
        "embedding": {"dtype": "DT_FLOAT", "tensor_shape": {"dim": [{"size": "-1"}, {"size": "8"}]}}
      }
    }
  }}}
}`

func newTestServer(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()
	var lastBody map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models/user_tower/metadata", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(metadataBody))
	})
	mux.HandleFunc("/v1/models/user_tower:predict", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || json.NewDecoder(r.Body).Decode(&lastBody) != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"outputs": [[0.25, 0.75]]}`))
	})
	mux.HandleFunc("/v1/models/user_tower", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"model_version_status": [{"version": "4", "state": "AVAILABLE"}]}`))
	})
	mux.HandleFunc("/v1/models/broken:predict", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "bad input"}`, http.StatusBadRequest)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastBody
}

func TestTFServingClient_Signature(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewTFServingClient(srv.URL, "user_tower")

	sig, err := c.Signature(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "4", sig.Version)
	assert.Equal(t, []core.MLTensor{{Name: "country", Dim: 1}, {Name: "tags", Dim: 17}}, sig.Inputs)
	assert.Equal(t, []core.MLTensor{{Name: "embedding", Dim: 8}}, sig.Outputs)

	c = NewTFServingClient(srv.URL, "user_tower", WithTFServingSignature("other"))
	_, err = c.Signature(context.Background())
	assert.True(t, core.IsNotFound(err))
}

func TestTFServingClient_Predict(t *testing.T) {
	srv, lastBody := newTestServer(t)
	c := NewTFServingClient(srv.URL, "user_tower")

	resp, err := c.Predict(context.Background(), &core.MLPredictRequest{
		Inputs: map[string][][]float64{"tags": {{1, 0}}, "country": {{3}}},
	})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.25, 0.75}}, resp.Outputs)
	assert.Equal(t, "serving_default", (*lastBody)["signature_name"])
	assert.Contains(t, (*lastBody)["inputs"], "country")

	_, err = c.Predict(context.Background(), &core.MLPredictRequest{})
	assert.True(t, core.IsInvalidInput(err))
}

func TestTFServingClient_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	c := NewTFServingClient(srv.URL, "broken")
	_, err := c.Predict(context.Background(), &core.MLPredictRequest{Inputs: map[string][][]float64{"x": {{1}}}})
	assert.True(t, core.IsShapeMismatch(err))
	assert.False(t, core.IsInvalidInput(err))

	c = NewTFServingClient("http://127.0.0.1:1", "user_tower")
	_, err = c.Predict(context.Background(), &core.MLPredictRequest{Inputs: map[string][][]float64{"x": {{1}}}})
	assert.True(t, core.IsUnavailable(err))
}

func TestTFServingClient_HTTPClientOption(t *testing.T) {
	hc := &http.Client{Timeout: time.Second}
	c := NewTFServingClient("http://x", "m", WithTFServingHTTPClient(hc), WithTFServingTimeout(time.Minute))
	assert.Same(t, hc, c.httpClient)
	assert.Equal(t, time.Second, c.httpClient.Timeout)

	c = NewTFServingClient("http://x", "m", WithTFServingTimeout(3*time.Second))
	require.NotNil(t, c.httpClient)
	assert.Equal(t, 3*time.Second, c.httpClient.Timeout)
}

func TestTFServingClient_Auth(t *testing.T) {
	tests := []struct {
		name  string
		auth  *AuthConfig
		check func(t *testing.T, r *http.Request)
	}{
		{"basic", &AuthConfig{Type: "basic", Username: "u", Password: "p"}, func(t *testing.T, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "u", user)
			assert.Equal(t, "p", pass)
		}},
		{"bearer", &AuthConfig{Type: "bearer", Token: "tok"}, func(t *testing.T, r *http.Request) {
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		}},
		{"api_key", &AuthConfig{Type: "api_key", APIKey: "k"}, func(t *testing.T, r *http.Request) {
			assert.Equal(t, "k", r.Header.Get("X-API-Key"))
		}},
		{"none", nil, func(t *testing.T, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Empty(t, r.Header.Get("X-API-Key"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *http.Request
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r
				_, _ = w.Write([]byte(`{"model_version_status": [{"version": "1", "state": "AVAILABLE"}]}`))
			}))
			defer srv.Close()

			svc, err := NewMLService(&ServiceConfig{Endpoint: srv.URL, ModelName: "m", Auth: tt.auth})
			require.NoError(t, err)
			require.NoError(t, svc.Health(context.Background()))
			require.NotNil(t, got)
			tt.check(t, got)
		})
	}
}

func TestTFServingClient_Health(t *testing.T) {
	srv, _ := newTestServer(t)
	c := NewTFServingClient(srv.URL, "user_tower")
	assert.NoError(t, c.Health(context.Background()))
	assert.NoError(t, TestConnection(context.Background(), c))
}

func TestDecodeOutputs(t *testing.T) {
	c := &TFServingClient{OutputName: "embedding"}
	out, err := c.decodeOutputs(json.RawMessage(`{"logits": [[1]], "embedding": [[0.5, 0.5]]}`))
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0.5, 0.5}}, out)

	c.OutputName = ""
	_, err = c.decodeOutputs(json.RawMessage(`{"logits": [[1]], "embedding": [[0.5, 0.5]]}`))
	assert.True(t, core.IsShapeMismatch(err))

	out, err = c.decodeOutputs(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestNewMLService(t *testing.T) {
	svc, err := NewMLService(&ServiceConfig{Type: ServiceTypeTFServing, Endpoint: "localhost:8501/", ModelName: "m", Timeout: 2})
	require.NoError(t, err)
	c := svc.(*TFServingClient)
	assert.Equal(t, "http://localhost:8501", c.Endpoint)

	_, err = NewMLService(&ServiceConfig{Endpoint: "x"})
	assert.Error(t, err)
	_, err = NewMLService(&ServiceConfig{Type: "torchserve", Endpoint: "x", ModelName: "m"})
	assert.Error(t, err)
}
