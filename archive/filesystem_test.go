//nolint
package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemArchive(t *testing.T) {
	baseDir := t.TempDir()

	a, err := NewFilesystem(filepath.Join(baseDir, "archive"))
	require.NoError(t, err)

	content := []byte("workbook-bytes")
	hash := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"

	t.Run("Put", func(t *testing.T) {
		key, err := a.Put("AD", hash, content)
		require.NoError(t, err)
		assert.Equal(t, "AD/"+hash+".xlsx", key)

		stored, err := os.ReadFile(filepath.Join(baseDir, "archive", key))
		require.NoError(t, err)
		assert.Equal(t, content, stored)
	})

	t.Run("Put same content twice is idempotent", func(t *testing.T) {
		first, err := a.Put("AD", hash, content)
		require.NoError(t, err)
		second, err := a.Put("AD", hash, content)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("different versions of an asset coexist", func(t *testing.T) {
		otherHash := "fedcba9876543210fedcba9876543210fedcba9876543210fedcba9876543210"

		key, err := a.Put("AD", otherHash, []byte("newer-bytes"))
		require.NoError(t, err)
		assert.NotEqual(t, "AD/"+hash+".xlsx", key)

		entries, err := os.ReadDir(filepath.Join(baseDir, "archive", "AD"))
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})
}
