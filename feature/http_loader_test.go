package feature

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStateLoader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/encoders.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(testState))
	}))
	defer srv.Close()

	loader := LoaderFor(srv.URL + "/encoders.yaml")
	require.IsType(t, &HTTPStateLoader{}, loader)

	st, err := loader.Load(context.Background(), srv.URL+"/encoders.yaml")
	require.NoError(t, err)
	assert.Equal(t, "test-1", st.Version)
	assert.Len(t, st.MultiLabelFields, 4)

	_, err = loader.Load(context.Background(), srv.URL+"/missing.yaml")
	assert.ErrorContains(t, err, "status=404")
}

func TestFileStateLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "encoders.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testState), 0o644))

	loader := LoaderFor(path)
	require.IsType(t, &FileStateLoader{}, loader)

	st, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	enc, err := NewEncoderFromState(st)
	require.NoError(t, err)
	assert.Equal(t, "test-1", enc.Version())
}
