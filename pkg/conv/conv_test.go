package conv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigGet(t *testing.T) {
	m := map[string]any{"key": "country", "n": 3, "f": 2.0, "on": true}
	assert.Equal(t, "country", ConfigGet(m, "key", ""))
	assert.Equal(t, "x", ConfigGet(m, "missing", "x"))
	assert.Equal(t, "x", ConfigGet(m, "n", "x"), "wrong type falls back")
	assert.True(t, ConfigGet(m, "on", false))
	assert.Equal(t, int64(3), ConfigGetInt64(m, "n", 0))
	assert.Equal(t, int64(2), ConfigGetInt64(m, "f", 0))
	assert.Equal(t, int64(7), ConfigGetInt64(nil, "n", 7))
}

func TestSliceAnyToString(t *testing.T) {
	assert.Equal(t, []string{"kyoto", "42"}, SliceAnyToString([]any{"kyoto", 42, struct{}{}}))
	assert.Nil(t, SliceAnyToString("nope"))
}

func TestMapToString(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "x"}, MapToString(map[string]any{"a": "x", "b": 1}))
	assert.Nil(t, MapToString(nil))
}

func TestToFloat64(t *testing.T) {
	f, ok := ToFloat64(int32(4))
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)
	_, ok = ToFloat64("4")
	assert.False(t, ok)
}
