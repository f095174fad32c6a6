package xlsxreader

import (
	"errors"
	"fmt"

	"report-ingestor/ingest"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook is returned when the workbook has no sheets or the
// first sheet has no header row.
var ErrEmptyWorkbook = errors.New("workbook has no readable sheet")

// Reader reads the first sheet of an xlsx workbook into a table. Row 1
// is the header; its cell values are passed through verbatim so the
// schema validator sees exactly what the file declares.
type Reader struct{}

var _ ingest.TableReader = (*Reader)(nil)

func New() *Reader {
	return &Reader{}
}

func (r *Reader) Read(path string) (*ingest.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Error().Err(cerr).Str("path", path).Msg("failed to close workbook")
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	columns := rows[0]

	// excelize trims trailing empty cells per row; pad so every data row
	// aligns with the header.
	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) < len(columns) {
			padded := make([]string, len(columns))
			copy(padded, row)
			row = padded
		}
		data = append(data, row)
	}

	return &ingest.Table{Columns: columns, Rows: data}, nil
}
