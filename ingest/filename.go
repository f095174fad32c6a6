package ingest

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Static errors to avoid err113 violations
var (
	ErrMalformedFilename = errors.New("invalid filename format")
	ErrUnparseableDate   = errors.New("unparseable cycle date in filename")
)

// cycleDateLayout matches the filename date segment, e.g. "3-Sep-25".
const cycleDateLayout = "2-Jan-06"

// lastCycleOneDay is the last day of month belonging to the first
// half-month reporting cycle.
const lastCycleOneDay = 15

// FileIdentity is the logical report identity derived from a filename.
type FileIdentity struct {
	AssetID    string
	NamePart   string
	CycleDate  time.Time
	CycleNo    int
	MonthStart time.Time
}

// ParseFilename derives the report identity and half-month cycle from a
// filename of the shape "<Name>[ extra]_<DD-Mon-YY>[...].<ext>", e.g.
// "AD 2.0.4_3-Sep-25.xlsx". Pure derivation, no I/O.
func ParseFilename(filename string) (*FileIdentity, error) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(base, "_")

	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedFilename, filename)
	}

	nameFields := strings.Fields(parts[0])
	if len(nameFields) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMalformedFilename, filename)
	}
	namePart := nameFields[0] // e.g. "AD"

	cycleDate, err := time.Parse(cycleDateLayout, parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %q in %s", ErrUnparseableDate, parts[1], filename)
	}

	cycleNo := 1
	monthStartDay := 1
	if cycleDate.Day() > lastCycleOneDay {
		cycleNo = 2
		monthStartDay = lastCycleOneDay + 1
	}
	monthStart := time.Date(
		cycleDate.Year(), cycleDate.Month(), monthStartDay,
		0, 0, 0, 0, cycleDate.Location(),
	)

	return &FileIdentity{
		AssetID:    namePart,
		NamePart:   namePart,
		CycleDate:  cycleDate,
		CycleNo:    cycleNo,
		MonthStart: monthStart,
	}, nil
}
