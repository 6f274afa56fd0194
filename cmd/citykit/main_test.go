package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/citykit/core"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"cities.csv": "city_id,city_name,country,continent\nlisbon,Lisbon,Portugal,Europe\ntokyo,Tokyo,Japan,Asia\nkyoto,Kyoto,Japan,Asia\n",
		"emb.csv":    "city_id,e0,e1\nlisbon,1,0\ntokyo,0,1\nkyoto,0.5,0.5\n",
		"enc.yaml": `version: "cli"
multi_label_fields: [vacation_types]
scalar_fields: [origin_country]
binarizers:
  vacation_types: [Beach, City]
label_encoders:
  origin_country: [Japan, Portugal]
`,
		"tower.json": `{"name": "tower", "inputs": [{"name": "multi_hot", "dim": 2}, {"name": "origin_country", "dim": 1}],
"layers": [{"weights": [[1, 0, 0], [0, 1, 0]], "biases": [0, 0]}]}`,
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}

	cfg := fmt.Sprintf(`app:
  log_level: error
catalog:
  cities_path: %[1]s/cities.csv
  embeddings_path: %[1]s/emb.csv
encoder:
  path: %[1]s/enc.yaml
model:
  kind: dense
  path: %[1]s/tower.json
ranking:
  default_k: 2
`, dir)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRecommendCmd(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "recommend", "--config", path, "--origin", "Japan", "--vacation", "City", "--json")
	require.NoError(t, err)
	var cities []core.ScoredCity
	require.NoError(t, json.Unmarshal([]byte(out), &cities))
	require.Len(t, cities, 2)
	assert.Equal(t, "tokyo", cities[0].CityID)
	assert.Equal(t, "kyoto", cities[1].CityID)

	out, err = run(t, "recommend", "--config", path, "--origin", "Japan", "--vacation", "Beach", "-k", "1")
	require.NoError(t, err)
	assert.Equal(t, "1\tlisbon\tLisbon\tPortugal\t1.0000\n", out)

	_, err = run(t, "recommend", "--config", path, "--origin", "Atlantis")
	assert.True(t, core.IsUnknownCategory(err))
}

func TestValidateCmd(t *testing.T) {
	path := writeConfig(t)

	out, err := run(t, "validate", "--config", path)
	require.NoError(t, err)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, float64(3), summary["cities"])
	assert.Equal(t, "tower", summary["artifact"])

	_, err = run(t, "validate", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
