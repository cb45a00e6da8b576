package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	for _, valid := range []string{"table", "json", "yaml", "wide"} {
		format, err := ParseFormat(valid)
		require.NoError(t, err)
		assert.Equal(t, Format(valid), format)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
}

func TestWriteObjectJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	obj := map[string]any{"key": "DEV", "grants": 3}
	require.NoError(t, WriteObject(buf, FormatJSON, obj))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "DEV", decoded["key"])
	assert.Equal(t, float64(3), decoded["grants"])
}

func TestWriteObjectYAML(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteObject(buf, FormatYAML, map[string]string{"queue": "OPS"}))
	assert.Contains(t, buf.String(), "queue: OPS")
}

func TestWriteObjectTableRequiresFormatter(t *testing.T) {
	err := WriteObject(&bytes.Buffer{}, FormatTable, nil)
	require.Error(t, err)
	err = WriteObject(&bytes.Buffer{}, Format("bogus"), nil)
	require.Error(t, err)
}
