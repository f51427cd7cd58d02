package db

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToPgx5URL(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"postgres://u:p@localhost:5432/planner", "pgx5://u:p@localhost:5432/planner"},
		{"postgresql://u:p@localhost/planner?sslmode=disable", "pgx5://u:p@localhost/planner?sslmode=disable"},
		{"pgx5://already", "pgx5://already"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, convertToPgx5URL(tt.in))
	}
}

func TestMigrationFilesArePaired(t *testing.T) {
	ups, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(migrationFiles, "migrations/*.down.sql")
	require.NoError(t, err)

	assert.NotEmpty(t, ups)
	assert.Equal(t, len(ups), len(downs))
}
