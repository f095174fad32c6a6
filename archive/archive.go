// Package archive keeps content-addressed copies of ingested report
// files so superseded file versions stay recoverable after the
// replace-in-place metadata upsert.
package archive

import "path"

// objectKey returns the archive key for a file version
func objectKey(assetID string, contentHash string) string {
	return path.Join(assetID, contentHash+".xlsx")
}
