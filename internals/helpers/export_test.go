// file: internals/helpers/export_test.go
package helper

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Sheet:   "Defaulters",
		Headers: []string{"Student", "Class", "Balance (KES)"},
		Rows: [][]string{
			{"Achieng Otieno", "Grade 6", "4500"},
			{"Brian Kipchoge", "Grade 6", "1200"},
			{"Wanjiru, Mary", "Grade 7", "300"}, // comma forces quoting
		},
	}
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "defaulters_2026_T1", ExportFilename("defaulters", "2026", "T1"))
	assert.Equal(t, "collections", ExportFilename("collections", "", "  "))
}

// The CSV body must round-trip to exactly the same row set the JSON response
// carries: header first, then every row in order.
func TestWriteCSVToRowEquivalence(t *testing.T) {
	tbl := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, WriteCSVTo(&buf, tbl))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+len(tbl.Rows))
	assert.Equal(t, tbl.Headers, records[0])
	for i, row := range tbl.Rows {
		assert.Equal(t, row, records[i+1])
	}
}

// The workbook must carry the same cells as the CSV.
func TestBuildXLSXRowEquivalence(t *testing.T) {
	tbl := sampleTable()

	f, err := BuildXLSX(tbl)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(tbl.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 1+len(tbl.Rows))
	assert.Equal(t, tbl.Headers, rows[0])
	for i, row := range tbl.Rows {
		assert.Equal(t, row, rows[i+1])
	}
}

func TestBuildXLSXDefaultSheetName(t *testing.T) {
	f, err := BuildXLSX(Table{Headers: []string{"A"}, Rows: [][]string{{"1"}}})
	require.NoError(t, err)
	defer f.Close()

	_, err = f.GetRows("Report")
	assert.NoError(t, err)
}
