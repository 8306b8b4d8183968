package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Registrations",
		Headers: []string{"Module", "Scholar", "Fee"},
		Rows: [][]string{
			{"PRJ101", "S1", "800000"},
			{"PRJ205", "S2, Jr", "1200000"},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	out, err := Render(FormatCSV, sampleTable())
	require.NoError(t, err)
	assert.Equal(t, "Module,Scholar,Fee\nPRJ101,S1,800000\nPRJ205,\"S2, Jr\",1200000\n", string(out))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only-one"})
	_, err := NewCSVExporter().Render(table)
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	table := sampleTable()
	for i := 0; i < 40; i++ {
		table.Rows = append(table.Rows, []string{"PRJ400", "S", "400000"})
	}
	out, err := Render(FormatPDF, table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := Render(FormatPDF, Table{})
	assert.Error(t, err)
	_, err = Render(FormatCSV, Table{})
	assert.Error(t, err)
}
