package feature

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPStateLoader loads fitted encoder state from an HTTP endpoint, e.g. a
// model registry serving the artifacts of a training run.
//
//	loader := feature.NewHTTPStateLoader(5 * time.Second)
//	st, err := loader.Load(ctx, "http://registry/models/user_tower/v3/encoders.yaml")
type HTTPStateLoader struct {
	client *http.Client
}

func NewHTTPStateLoader(timeout time.Duration) *HTTPStateLoader {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPStateLoader{client: &http.Client{Timeout: timeout}}
}

func NewHTTPStateLoaderWithClient(client *http.Client) *HTTPStateLoader {
	return &HTTPStateLoader{client: client}
}

func (l *HTTPStateLoader) Load(ctx context.Context, url string) (*State, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch encoder state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch encoder state: status=%d, body=%s", resp.StatusCode, string(body))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read encoder state: %w", err)
	}
	return ParseState(data)
}

// LoaderFor picks the loader for source: http(s) URLs go over HTTP,
// anything else is a local path.
func LoaderFor(source string) StateLoader {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return NewHTTPStateLoader(0)
	}
	return NewFileStateLoader()
}
