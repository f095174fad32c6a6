package orm

import (
	"time"
)

// Report lifecycle status values. A schema-invalid file leaves a pending
// marker so operators can see what arrived without trusting its content.
const (
	StatusIngested = "ingested"
	StatusPending  = "pending"
)

// UnresolvedReportType is the sentinel type id written with pending markers.
const UnresolvedReportType = 0

// ReportType maps a report category name to a stable numeric identifier.
// Rows are created lazily on first sight and never deleted; ids come from
// the database sequence so concurrent creation cannot race on "next id".
type ReportType struct {
	ReportTypeID int    `gorm:"primaryKey;autoIncrement"     json:"reportTypeId"`
	Name         string `gorm:"uniqueIndex;size:255;not null" json:"name"`
}

// ReportMetadata records one ingested file version for a logical report
// stream. AssetID is the natural key: the upsert replaces the single row
// in place, so only the latest version's metadata is retained.
type ReportMetadata struct {
	ReportID     string    `gorm:"primaryKey;size:36"            json:"reportId"`
	AssetID      string    `gorm:"uniqueIndex;size:255;not null" json:"assetId"`
	ReportTypeID int       `gorm:"not null;default:0"            json:"reportTypeId"`
	CycleDate    time.Time `gorm:"not null"                      json:"cycleDate"`
	CycleNo      int       `gorm:"not null"                      json:"cycleNo"`
	MonthStart   time.Time `gorm:"not null"                      json:"monthStart"`
	ContentHash  string    `gorm:"size:64;not null"              json:"contentHash"`
	StorageKey   string    `gorm:"size:512"                      json:"storageKey"`
	Status       string    `gorm:"size:16;not null"              json:"status"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// RawReportRow is one persisted record of the tabular scan data, tagged
// with its owning report. Append-only; the pipeline never updates or
// deletes these.
type RawReportRow struct {
	RawID    int64  `gorm:"primaryKey;autoIncrement" json:"rawId"`
	ReportID string `gorm:"index;size:36;not null"   json:"reportId"`

	IssueID                  string `gorm:"size:255" json:"issueId"`
	CVEs                     string `gorm:"column:cves" json:"cves"`
	CVSS2Score               string `gorm:"column:cvss2_score;size:64" json:"cvss2Score"`
	CVSS2Vector              string `gorm:"column:cvss2_vector;size:255" json:"cvss2Vector"`
	CVSS3Score               string `gorm:"column:cvss3_score;size:64" json:"cvss3Score"`
	CVSS3Vector              string `gorm:"column:cvss3_vector;size:255" json:"cvss3Vector"`
	VulnerableComponent      string `json:"vulnerableComponent"`
	ComponentPhysicalP       string `gorm:"column:component_physical_p" json:"componentPhysicalP"`
	Summary                  string `json:"summary"`
	FixedVersions            string `json:"fixedVersions"`
	PackageType              string `gorm:"size:64" json:"packageType"`
	Severity                 string `gorm:"size:64" json:"severity"`
	Applicability            string `json:"applicability"`
	Published                string `gorm:"size:64" json:"published"`
	Provider                 string `gorm:"size:255" json:"provider"`
	ImpactedArtifact         string `json:"impactedArtifact"`
	Path                     string `json:"path"`
	ImpactPath               string `json:"impactPath"`
	ArtifactScanTime         string `gorm:"size:64" json:"artifactScanTime"`
	References               string `json:"references"`
	Description              string `json:"description"`
	ExternalAdvisorySource   string `gorm:"size:255" json:"externalAdvisorySource"`
	ExternalAdvisorySeverity string `gorm:"size:64" json:"externalAdvisorySeverity"`
	CVSS2MaxScore            string `gorm:"column:cvss2_max_score;size:64" json:"cvss2MaxScore"`
	CVSS3MaxScore            string `gorm:"column:cvss3_max_score;size:64" json:"cvss3MaxScore"`
	ProjectKeys              string `json:"projectKeys"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

// RowFingerprint is the dedup ledger: existence of (report_id, row_hash)
// means that exact row content is already persisted under that report.
type RowFingerprint struct {
	ReportID string    `gorm:"primaryKey;size:36" json:"reportId"`
	RowHash  string    `gorm:"primaryKey;size:64" json:"rowHash"`
	LastSeen time.Time `gorm:"not null"           json:"lastSeen"`
}
