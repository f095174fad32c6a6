//nolint
package xlsxreader

import (
	"os"
	"path/filepath"
	"testing"

	"report-ingestor/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook authors an xlsx fixture with the given rows and returns
// its path.
func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	path := filepath.Join(t.TempDir(), "AD_3-Sep-25.xlsx")
	require.NoError(t, f.SaveAs(path))

	return path
}

func headerRow() []interface{} {
	row := make([]interface{}, 0, len(ingest.ExpectedColumns))
	for _, col := range ingest.ExpectedColumns {
		row = append(row, col)
	}

	return row
}

func TestReadWorkbook(t *testing.T) {
	dataRow := make([]interface{}, len(ingest.ExpectedColumns))
	for i := range dataRow {
		dataRow[i] = ""
	}
	dataRow[0] = "XRAY-1"
	dataRow[1] = "CVE-2025-0001"
	dataRow[11] = "High"

	path := writeWorkbook(t, [][]interface{}{headerRow(), dataRow})

	table, err := New().Read(path)
	require.NoError(t, err)

	assert.Equal(t, ingest.ExpectedColumns, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "XRAY-1", table.Rows[0][0])
	assert.Equal(t, "High", table.Rows[0][11])
}

func TestReadWorkbookPadsShortRows(t *testing.T) {
	// excelize drops trailing empty cells, so a row whose last populated
	// cell is early must still align with the header.
	shortRow := []interface{}{"XRAY-2", "CVE-2025-0002"}

	path := writeWorkbook(t, [][]interface{}{headerRow(), shortRow})

	table, err := New().Read(path)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], len(table.Columns))
	assert.Equal(t, "XRAY-2", table.Rows[0][0])
	assert.Equal(t, "", table.Rows[0][len(table.Columns)-1])
}

func TestReadWorkbookHeaderOnly(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{headerRow()})

	table, err := New().Read(path)
	require.NoError(t, err)

	assert.Equal(t, ingest.ExpectedColumns, table.Columns)
	assert.Empty(t, table.Rows)
}

func TestReadNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	table, err := New().Read(path)
	assert.Nil(t, table)
	assert.Error(t, err)
}
