package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStatsRepo(t *testing.T) (DocumentStatsRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mockSQL, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewDocumentStatsRepository(sqlx.NewDb(db, "sqlmock")), mockSQL
}

func TestGetStats(t *testing.T) {
	t.Run("aggregates per-status counts and average duration", func(t *testing.T) {
		repo, mockSQL := newStatsRepo(t)

		mockSQL.ExpectQuery("GROUP BY processing_status").WillReturnRows(
			sqlmock.NewRows([]string{"processing_status", "count"}).
				AddRow("PENDING", 2).
				AddRow("PROCESSING", 1).
				AddRow("COMPLETED", 7).
				AddRow("FAILED", 3))
		mockSQL.ExpectQuery("AVG").WillReturnRows(
			sqlmock.NewRows([]string{"coalesce"}).AddRow(12.5))

		stats, err := repo.GetStats()

		require.NoError(t, err)
		assert.Equal(t, int64(13), stats.Total)
		assert.Equal(t, int64(2), stats.Pending)
		assert.Equal(t, int64(1), stats.Processing)
		assert.Equal(t, int64(7), stats.Completed)
		assert.Equal(t, int64(3), stats.Failed)
		assert.InDelta(t, 12.5, stats.AvgProcessSecond, 0.001)
		assert.NoError(t, mockSQL.ExpectationsWereMet())
	})

	t.Run("empty table yields zeroes", func(t *testing.T) {
		repo, mockSQL := newStatsRepo(t)

		mockSQL.ExpectQuery("GROUP BY processing_status").WillReturnRows(
			sqlmock.NewRows([]string{"processing_status", "count"}))
		mockSQL.ExpectQuery("AVG").WillReturnRows(
			sqlmock.NewRows([]string{"coalesce"}).AddRow(0.0))

		stats, err := repo.GetStats()

		require.NoError(t, err)
		assert.Equal(t, int64(0), stats.Total)
		assert.Zero(t, stats.AvgProcessSecond)
	})
}
