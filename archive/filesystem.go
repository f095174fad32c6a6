package archive

import (
	"fmt"
	"os"
	"path/filepath"
)

// FilesystemArchive keeps a content-addressed copy of every ingested file
// under a base directory.
type FilesystemArchive struct {
	baseDir string
}

// NewFilesystem creates a filesystem-backed archive
func NewFilesystem(baseDir string) (*FilesystemArchive, error) {
	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FilesystemArchive{baseDir: baseDir}, nil
}

// Put stores the file bytes under <asset>/<hash>.xlsx and returns that
// key. Storing the same content twice overwrites the identical object.
func (a *FilesystemArchive) Put(
	assetID string,
	contentHash string,
	content []byte,
) (string, error) {
	key := objectKey(assetID, contentHash)
	fullPath := filepath.Join(a.baseDir, key)

	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	//nolint:mnd // filemode constant
	if err := os.WriteFile(fullPath, content, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return key, nil
}
