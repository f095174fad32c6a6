//nolint
package orm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactDSN(t *testing.T) {
	dsn := "host='localhost' port='5432' user='postgres' password='hunter2' dbname='reports' sslmode='disable'"

	t.Run("password is masked", func(t *testing.T) {
		redacted := redactDSN(dsn, "hunter2")

		assert.NotContains(t, redacted, "hunter2")
		assert.Contains(t, redacted, "password='*****'")
	})

	t.Run("empty password leaves the dsn untouched", func(t *testing.T) {
		dsn := "host='localhost' port='5432' user='postgres' password='' dbname='reports' sslmode='disable'"

		assert.Equal(t, dsn, redactDSN(dsn, ""))
	})
}
