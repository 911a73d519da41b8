package migrate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/rank-ladder/db"
)

func TestRun_RejectsEmptyDSN(t *testing.T) {
	err := Run("", Up)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestRun_RejectsUnknownDirection(t *testing.T) {
	err := Run("postgres://localhost/ladder", Direction("sideways"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestMigrationFS_HasPairedFiles(t *testing.T) {
	entries, err := db.MigrationFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs, "every up migration needs a down migration")
}
