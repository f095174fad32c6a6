package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxConflictRetries bounds the local retries on unique-constraint races
// between concurrent invocations.
const maxConflictRetries = 3

// ResolveReportType returns the stable numeric id for a report category
// name, allocating one from the database sequence on first sight. In
// relaxed mode a case-insensitive substring match of the name's first
// segment against known type names counts as a hit. Concurrent creation
// of the same name is serialized by the unique index on name: a
// duplicate-key failure is resolved by re-reading.
func (db *DB) ResolveReportType(
	ctx context.Context,
	name string,
	relaxed bool,
) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, &BadInputError{Reason: "report type name must not be empty"}
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		typeID, err := db.lookupReportType(ctx, name, relaxed)
		if err == nil {
			return typeID, nil
		}

		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return 0, err
		}

		created := ReportType{Name: name}
		err = gorm.G[ReportType](db.dbGorm).Create(ctx, &created)
		if err == nil {
			return created.ReportTypeID, nil
		}

		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, wrapErrorWithDetails(
				err, "create report type", "name="+name,
			)
		}

		// Another invocation created the same name first; loop re-reads.
		lastErr = err
	}

	return 0, &RetryExhaustedError{
		Operation: "resolve report type name=" + name,
		Attempts:  maxConflictRetries,
		Inner:     lastErr,
	}
}

func (db *DB) lookupReportType(
	ctx context.Context,
	name string,
	relaxed bool,
) (int, error) {
	reportType, err := gorm.G[ReportType](db.dbGorm).Where(&ReportType{
		Name: name,
	}).First(ctx)
	if err == nil {
		return reportType.ReportTypeID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, wrapErrorWithDetails(err, "lookup report type", "name="+name)
	}

	if relaxed {
		firstSegment := strings.ToLower(strings.Fields(name)[0])

		known, err := gorm.G[ReportType](db.dbGorm).Find(ctx)
		if err != nil {
			return 0, wrapErrorWithDetails(
				err, "list report types", "name="+name,
			)
		}
		for _, candidate := range known {
			if strings.Contains(strings.ToLower(candidate.Name), firstSegment) {
				return candidate.ReportTypeID, nil
			}
		}
	}

	return 0, &NotFoundError{Search: "report type name=" + name}
}

// FindReportMetadata looks up the current metadata row for an asset
// identity. Returns NotFoundError when the asset has never been seen.
func (db *DB) FindReportMetadata(
	ctx context.Context,
	assetID string,
) (*ReportMetadata, error) {
	if assetID == "" {
		return nil, &BadInputError{Reason: "asset id must not be empty"}
	}

	meta, err := gorm.G[ReportMetadata](db.dbGorm).Where(&ReportMetadata{
		AssetID: assetID,
	}).First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err, "find report metadata", "asset_id="+assetID,
		)
	}

	return &meta, nil
}

// UpsertReportMetadata writes the metadata row for meta.AssetID,
// replacing the existing row in place when one exists. The conflict
// target is the asset identity, so two invocations racing on "not found"
// cannot double-insert; the loser's write lands as the update. Returns
// the persisted row, whose ReportID is the original one when the asset
// was already known.
//
// Replace-in-place means prior-version metadata is not retained; the
// archived file content is the only record of superseded versions.
func (db *DB) UpsertReportMetadata(
	ctx context.Context,
	meta *ReportMetadata,
) (*ReportMetadata, error) {
	if meta == nil {
		return nil, &BadInputError{Reason: "metadata must not be nil"}
	}
	if meta.AssetID == "" || meta.ReportID == "" {
		return nil, &BadInputError{
			Reason: fmt.Sprintf(
				"metadata must have asset id and report id: asset_id=%q, report_id=%q",
				meta.AssetID,
				meta.ReportID,
			),
		}
	}

	meta.CreatedAt = time.Now()

	err := db.dbGorm.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "asset_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"report_type_id",
			"cycle_date",
			"cycle_no",
			"month_start",
			"content_hash",
			"status",
			"created_at",
		}),
	}).Create(meta).Error
	if err != nil {
		return nil, wrapErrorWithDetails(
			err, "upsert report metadata", "asset_id="+meta.AssetID,
		)
	}

	return db.FindReportMetadata(ctx, meta.AssetID)
}

// MergeReportRows persists the rows whose fingerprints are not yet in the
// ledger for reportID, recording each new fingerprint in the same
// transaction so a racing reprocessing of the same file cannot observe a
// row without its ledger entry. All-or-nothing per file: any failure rolls
// back every row of this invocation. hashes[i] is the fingerprint of
// rows[i]. Returns the number of newly inserted rows.
func (db *DB) MergeReportRows(
	ctx context.Context,
	reportID string,
	rows []RawReportRow,
	hashes []string,
) (int, error) {
	if reportID == "" {
		return 0, &BadInputError{Reason: "report id must not be empty"}
	}
	if len(rows) != len(hashes) {
		return 0, &BadInputError{
			Reason: fmt.Sprintf(
				"rows and hashes must align: %d rows, %d hashes",
				len(rows),
				len(hashes),
			),
		}
	}

	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		newCount, err := db.mergeRowsOnce(ctx, reportID, rows, hashes)
		if err == nil {
			return newCount, nil
		}

		// A concurrent invocation of the same file may have landed a
		// fingerprint between our probe and insert; re-running the merge
		// skips it cleanly.
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, wrapErrorWithDetails(
				err, "merge report rows", "report_id="+reportID,
			)
		}

		log.Debug().
			Str("report_id", reportID).
			Int("attempt", attempt+1).
			Msg("ledger conflict during row merge, retrying")
		lastErr = err
	}

	return 0, &RetryExhaustedError{
		Operation: "merge report rows report_id=" + reportID,
		Attempts:  maxConflictRetries,
		Inner:     lastErr,
	}
}

func (db *DB) mergeRowsOnce(
	ctx context.Context,
	reportID string,
	rows []RawReportRow,
	hashes []string,
) (int, error) {
	newCount := 0

	err := db.dbGorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		for i := range rows {
			var existing int64
			err := tx.Model(&RowFingerprint{}).
				Where("report_id = ? AND row_hash = ?", reportID, hashes[i]).
				Count(&existing).Error
			if err != nil {
				return err
			}
			if existing > 0 {
				continue // already ingested under this report
			}

			row := rows[i]
			row.ReportID = reportID
			if err := tx.Create(&row).Error; err != nil {
				return err
			}

			err = tx.Create(&RowFingerprint{
				ReportID: reportID,
				RowHash:  hashes[i],
				LastSeen: now,
			}).Error
			if err != nil {
				return err
			}

			newCount++
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return newCount, nil
}

// SetStorageKey records the archive object key on an already-persisted
// metadata row.
func (db *DB) SetStorageKey(
	ctx context.Context,
	reportID string,
	key string,
) error {
	if reportID == "" {
		return &BadInputError{Reason: "report id must not be empty"}
	}

	affected, err := gorm.G[ReportMetadata](db.dbGorm).Where(&ReportMetadata{
		ReportID: reportID,
	}).Update(ctx, "storage_key", key)
	if err != nil {
		return wrapErrorWithDetails(
			err, "set storage key", "report_id="+reportID,
		)
	}
	if affected == 0 {
		return &NotFoundError{Search: "report metadata report_id=" + reportID}
	}

	return nil
}
