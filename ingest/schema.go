package ingest

// ExpectedColumns is the versioned 26-column contract scan reports must
// carry. Order is significant in SchemaExact mode only.
var ExpectedColumns = []string{
	"issue_id", "cves", "cvss2_score", "cvss2_vector", "cvss3_score", "cvss3_vector",
	"vulnerable_component", "component_physical_p", "summary", "fixed_versions",
	"package_type", "severity", "applicability", "published", "provider",
	"impacted_artifact", "path", "impact_path", "artifact_scan_time", "references",
	"description", "external_advisory_source", "external_advisory_severity",
	"cvss2_max_score", "cvss3_max_score", "project_keys",
}

// SchemaMode selects how strictly a table's columns are checked against
// the expected contract. Callers pick a mode explicitly.
type SchemaMode int

const (
	// SchemaExact requires the columns to equal the expected sequence
	// exactly, same order, nothing extra.
	SchemaExact SchemaMode = iota
	// SchemaSuperset requires all expected columns to be present; order
	// and extra columns are ignored.
	SchemaSuperset
)

// ValidateSchema reports whether the given column header sequence
// satisfies the expected contract under the chosen mode.
func ValidateSchema(columns []string, mode SchemaMode) bool {
	switch mode {
	case SchemaSuperset:
		present := make(map[string]bool, len(columns))
		for _, col := range columns {
			present[col] = true
		}
		for _, want := range ExpectedColumns {
			if !present[want] {
				return false
			}
		}

		return true
	default: // SchemaExact
		if len(columns) != len(ExpectedColumns) {
			return false
		}
		for i, want := range ExpectedColumns {
			if columns[i] != want {
				return false
			}
		}

		return true
	}
}
