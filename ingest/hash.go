package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

// fileReadChunk bounds how much of a file is held in memory while hashing.
const fileReadChunk = 4096

// rowFieldDelimiter joins row values for fingerprinting. It is not
// expected to appear in scan data fields.
const rowFieldDelimiter = "|"

// FileFingerprint computes the sha256 hex digest of everything readable
// from r, in bounded chunks.
func FileFingerprint(r io.Reader) (string, error) {
	h := sha256.New()

	buf := make([]byte, fileReadChunk)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read content for hashing: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// RowFingerprint digests a row's values joined in contract column order.
// Missing cells must already be represented as empty strings, which act
// as the canonical empty marker. The digest is deterministic across
// processes for identical values; note that it is computed over the
// reader's verbatim string cells, so a numeric column rendered
// differently by a different reader yields a different fingerprint.
func RowFingerprint(values []string) string {
	joined := strings.Join(values, rowFieldDelimiter)
	sum := sha256.Sum256([]byte(joined))

	return hex.EncodeToString(sum[:])
}
