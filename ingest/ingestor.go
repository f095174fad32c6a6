package ingest

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"

	"report-ingestor/orm"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TableReader turns a spreadsheet file into an ordered table. Column
// names must be preserved verbatim for schema validation.
type TableReader interface {
	Read(path string) (*Table, error)
}

// Table is one parsed sheet: a header sequence and the data rows beneath
// it. Rows are aligned to Columns; short rows are padded with empty
// strings by the reader.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Store defines the persistence operations the ingestion pipeline
// requires from the relational store.
type Store interface {
	ResolveReportType(ctx context.Context, name string, relaxed bool) (int, error)
	FindReportMetadata(ctx context.Context, assetID string) (*orm.ReportMetadata, error)
	UpsertReportMetadata(ctx context.Context, meta *orm.ReportMetadata) (*orm.ReportMetadata, error)
	MergeReportRows(ctx context.Context, reportID string, rows []orm.RawReportRow, hashes []string) (int, error)
	SetStorageKey(ctx context.Context, reportID string, key string) error
}

var _ Store = (*orm.DB)(nil)

// Archiver stores the raw bytes of an ingested file and returns the
// object key they were stored under.
type Archiver interface {
	Put(assetID string, contentHash string, content []byte) (string, error)
}

// OutcomeStatus classifies how a file-processing invocation ended.
type OutcomeStatus int

const (
	// Ingested means new content was persisted.
	Ingested OutcomeStatus = iota
	// SkippedUnchanged means the file's content hash matched the stored
	// one, so nothing was written.
	SkippedUnchanged
	// SchemaPending means the table failed schema validation; a pending
	// metadata marker was written and no rows were trusted.
	SchemaPending
)

// Outcome reports the result of one ProcessFile invocation.
type Outcome struct {
	Status   OutcomeStatus
	ReportID string
	NewRows  int
}

// Ingestor sequences hashing, schema validation, identity parsing, type
// resolution, the metadata upsert and the row merge into one idempotent
// "ingest this file" operation.
type Ingestor struct {
	store      Store
	reader     TableReader
	archiver   Archiver
	schemaMode SchemaMode
	relaxed    bool
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithSchemaMode selects the column-contract strictness.
func WithSchemaMode(mode SchemaMode) Option {
	return func(ing *Ingestor) { ing.schemaMode = mode }
}

// WithRelaxedTypeMatch enables substring matching when resolving report
// type names.
func WithRelaxedTypeMatch() Option {
	return func(ing *Ingestor) { ing.relaxed = true }
}

// WithArchiver stores ingested file bytes in the given archive after a
// successful ingest.
func WithArchiver(archiver Archiver) Option {
	return func(ing *Ingestor) { ing.archiver = archiver }
}

// New creates an ingestor over the given store and reader. The default
// configuration uses exact schema validation and exact type matching.
func New(store Store, reader TableReader, opts ...Option) *Ingestor {
	ing := &Ingestor{
		store:      store,
		reader:     reader,
		schemaMode: SchemaExact,
	}
	for _, opt := range opts {
		opt(ing)
	}

	return ing
}

// ProcessFile runs one ingestion invocation for the file at path. The
// operation is idempotent: re-delivery of byte-identical content is a
// no-op, and re-delivery of overlapping content inserts only rows whose
// fingerprints are not yet in the ledger.
func (ing *Ingestor) ProcessFile(ctx context.Context, path string) (*Outcome, error) {
	filename := filepath.Base(path)

	content, err := os.ReadFile(path) //nolint:gosec // path comes from the watched directory
	if err != nil {
		return nil, newIngestError(filename, StageHash, err)
	}
	fileHash, err := FileFingerprint(bytes.NewReader(content))
	if err != nil {
		return nil, newIngestError(filename, StageHash, err)
	}

	table, err := ing.reader.Read(path)
	if err != nil {
		return nil, newIngestError(filename, StageRead, errors.Join(ErrReaderFailure, err))
	}

	if !ValidateSchema(table.Columns, ing.schemaMode) {
		return ing.markSchemaPending(ctx, filename, fileHash)
	}

	identity, err := ParseFilename(filename)
	if err != nil {
		return nil, newIngestError(filename, StageFilename, err)
	}

	typeID, err := ing.store.ResolveReportType(ctx, identity.NamePart, ing.relaxed)
	if err != nil {
		return nil, newIngestError(filename, StageRegistry, err)
	}

	existing, err := ing.store.FindReportMetadata(ctx, identity.AssetID)
	if err != nil {
		var notFound *orm.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, newIngestError(filename, StageMetadata, err)
		}
	}

	if existing != nil && existing.ContentHash == fileHash {
		log.Info().
			Str("file", filename).
			Str("report_id", existing.ReportID).
			Msg("File skipped (no changes detected)")

		return &Outcome{Status: SkippedUnchanged, ReportID: existing.ReportID}, nil
	}

	meta, err := ing.store.UpsertReportMetadata(ctx, &orm.ReportMetadata{
		ReportID:     uuid.NewString(),
		AssetID:      identity.AssetID,
		ReportTypeID: typeID,
		CycleDate:    identity.CycleDate,
		CycleNo:      identity.CycleNo,
		MonthStart:   identity.MonthStart,
		ContentHash:  fileHash,
		Status:       orm.StatusIngested,
	})
	if err != nil {
		return nil, newIngestError(filename, StageMetadata, err)
	}
	if existing != nil {
		log.Info().
			Str("report_id", meta.ReportID).
			Msg("Metadata updated")
	} else {
		log.Info().
			Str("report_id", meta.ReportID).
			Msg("Metadata inserted")
	}

	rows, hashes := buildRows(table)
	newCount, err := ing.store.MergeReportRows(ctx, meta.ReportID, rows, hashes)
	if err != nil {
		return nil, newIngestError(filename, StageRows, err)
	}

	if newCount > 0 {
		log.Info().
			Int("rows", newCount).
			Str("report_id", meta.ReportID).
			Msg("New report rows inserted")
	} else {
		log.Info().
			Str("report_id", meta.ReportID).
			Msg("No new rows to insert")
	}

	outcome := &Outcome{Status: Ingested, ReportID: meta.ReportID, NewRows: newCount}

	if ing.archiver != nil {
		key, err := ing.archiver.Put(identity.AssetID, fileHash, content)
		if err != nil {
			// The ingest itself is committed; the archive copy is the only
			// thing missing.
			log.Error().Err(err).Str("file", filename).Msg("Failed to archive file")

			return outcome, newIngestError(filename, StageArchive, err)
		}
		if err := ing.store.SetStorageKey(ctx, meta.ReportID, key); err != nil {
			return outcome, newIngestError(filename, StageArchive, err)
		}
	}

	return outcome, nil
}

// markSchemaPending writes the pending metadata marker for a file whose
// table failed schema validation. The marker still requires a parsed
// identity; a filename that cannot be parsed aborts without persistence,
// since the identity itself is unknown.
func (ing *Ingestor) markSchemaPending(
	ctx context.Context,
	filename string,
	fileHash string,
) (*Outcome, error) {
	identity, err := ParseFilename(filename)
	if err != nil {
		return nil, newIngestError(filename, StageFilename, err)
	}

	meta, err := ing.store.UpsertReportMetadata(ctx, &orm.ReportMetadata{
		ReportID:     uuid.NewString(),
		AssetID:      identity.AssetID,
		ReportTypeID: orm.UnresolvedReportType,
		CycleDate:    identity.CycleDate,
		CycleNo:      identity.CycleNo,
		MonthStart:   identity.MonthStart,
		ContentHash:  fileHash,
		Status:       orm.StatusPending,
	})
	if err != nil {
		return nil, newIngestError(filename, StageMetadata, err)
	}

	log.Warn().
		Str("file", filename).
		Str("report_id", meta.ReportID).
		Msg("Schema mismatch, metadata marked as pending")

	return &Outcome{Status: SchemaPending, ReportID: meta.ReportID}, nil
}

// buildRows projects every data row onto the contract column order,
// substituting the empty marker for missing cells, and fingerprints it.
func buildRows(table *Table) ([]orm.RawReportRow, []string) {
	colIndex := make(map[string]int, len(table.Columns))
	for i, col := range table.Columns {
		colIndex[col] = i
	}

	rows := make([]orm.RawReportRow, 0, len(table.Rows))
	hashes := make([]string, 0, len(table.Rows))

	for _, raw := range table.Rows {
		values := make([]string, len(ExpectedColumns))
		for i, col := range ExpectedColumns {
			if idx, ok := colIndex[col]; ok && idx < len(raw) {
				values[i] = raw[idx]
			}
		}

		rows = append(rows, rowFromValues(values))
		hashes = append(hashes, RowFingerprint(values))
	}

	return rows, hashes
}

// rowFromValues maps contract-ordered values onto the persisted row model.
func rowFromValues(v []string) orm.RawReportRow {
	return orm.RawReportRow{
		IssueID:                  v[0],
		CVEs:                     v[1],
		CVSS2Score:               v[2],
		CVSS2Vector:              v[3],
		CVSS3Score:               v[4],
		CVSS3Vector:              v[5],
		VulnerableComponent:      v[6],
		ComponentPhysicalP:       v[7],
		Summary:                  v[8],
		FixedVersions:            v[9],
		PackageType:              v[10],
		Severity:                 v[11],
		Applicability:            v[12],
		Published:                v[13],
		Provider:                 v[14],
		ImpactedArtifact:         v[15],
		Path:                     v[16],
		ImpactPath:               v[17],
		ArtifactScanTime:         v[18],
		References:               v[19],
		Description:              v[20],
		ExternalAdvisorySource:   v[21],
		ExternalAdvisorySeverity: v[22],
		CVSS2MaxScore:            v[23],
		CVSS3MaxScore:            v[24],
		ProjectKeys:              v[25],
	}
}
