package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter(t *testing.T) {
	var buf strings.Builder
	f := NewJSONFormatter(&buf)

	err := f.Format(&ResultSet{
		Columns: []string{"id", "name"},
		Rows:    [][]string{{"1", "Alice"}},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1","name":"Alice"}`, strings.TrimSpace(buf.String()))
}

func TestJSONFormatterOneObjectPerLine(t *testing.T) {
	var buf strings.Builder
	f := NewJSONFormatter(&buf)

	err := f.Format(&ResultSet{
		Columns: []string{"n"},
		Rows:    [][]string{{"1"}, {"2"}, {"3"}},
	})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
}

func TestJSONFormatterEmptyRows(t *testing.T) {
	var buf strings.Builder
	f := NewJSONFormatter(&buf)

	require.NoError(t, f.Format(&ResultSet{Columns: []string{"id"}}))
	assert.Empty(t, buf.String())
}
