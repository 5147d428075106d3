package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	rows [][]string
}

func (l listing) Headers() []string { return []string{"File", "Variant"} }
func (l listing) Rows() [][]string  { return l.rows }

type record struct {
	Name  string   `json:"name" yaml:"name"`
	Words []uint32 `json:"words" yaml:"words"`
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    Format
		wantErr bool
	}{
		{input: "", want: FormatTable},
		{input: " Table ", want: FormatTable},
		{input: "JSON", want: FormatJSON},
		{input: "yml", want: FormatYAML},
		{input: "xml", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	err := NewPrinter(&buf, FormatTable).Print(listing{rows: [][]string{
		{"a.parm", "2428"},
		{"b.parm", "7480"},
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "FILE")
	assert.Contains(t, out, "VARIANT")
	assert.Contains(t, out, "a.parm")
	assert.Contains(t, out, "7480")
}

func TestTableFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatTable).Print(record{Name: "unk1"}))
	assert.Contains(t, buf.String(), `"name": "unk1"`)
}

func TestPrintJSONAndYAML(t *testing.T) {
	r := record{Name: "trailer", Words: []uint32{131072}}

	var js bytes.Buffer
	require.NoError(t, NewPrinter(&js, FormatJSON).Print(r))
	assert.Contains(t, js.String(), `"words": [`)
	assert.Contains(t, js.String(), "131072")

	var ym bytes.Buffer
	require.NoError(t, NewPrinter(&ym, FormatYAML).Print(r))
	assert.Contains(t, ym.String(), "name: trailer")
	assert.Contains(t, ym.String(), "- 131072")
}

func TestPrintFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintFields(&buf, [][2]string{{"variant", "2420"}, {"order", "big"}}))
	assert.Contains(t, buf.String(), "variant")
	assert.Contains(t, buf.String(), "2420")
	assert.Contains(t, buf.String(), "big")
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, NewPrinter(&buf, Format("xml")).Print(record{}))
}
