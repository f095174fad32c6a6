package ingest

import "errors"

// ErrReaderFailure marks a corrupt or unreadable spreadsheet.
var ErrReaderFailure = errors.New("failed to read tabular content")

// Stage names the pipeline step a failure occurred in.
type Stage string

const (
	StageHash     Stage = "hash"
	StageRead     Stage = "read"
	StageSchema   Stage = "schema"
	StageFilename Stage = "filename"
	StageRegistry Stage = "registry"
	StageMetadata Stage = "metadata"
	StageRows     Stage = "rows"
	StageArchive  Stage = "archive"
)

// IngestError is a per-file processing failure. Failures are local to one
// file; the watch loop's lifetime is independent of any invocation.
type IngestError struct {
	File  string
	Stage Stage
	Inner error
}

func (e *IngestError) Error() string {
	return "failed to process file " + e.File +
		" at stage " + string(e.Stage) + ": " + e.Inner.Error()
}

func (e *IngestError) Unwrap() error {
	return e.Inner
}

func newIngestError(file string, stage Stage, inner error) error {
	return &IngestError{File: file, Stage: stage, Inner: inner}
}
