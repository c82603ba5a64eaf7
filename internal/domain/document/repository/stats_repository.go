package repository

import (
	"github.com/jmoiron/sqlx"
)

// DocumentStats 文档处理聚合统计
type DocumentStats struct {
	Total            int64   `db:"-" json:"total"`
	Pending          int64   `json:"pending"`
	Processing       int64   `json:"processing"`
	Completed        int64   `json:"completed"`
	Failed           int64   `json:"failed"`
	AvgProcessSecond float64 `json:"avgProcessSeconds"`
}

// DocumentStatsRepository 统计查询走 sqlx 裸 SQL：
// 聚合场景下手写 SQL 比 ORM 组合直观得多
type DocumentStatsRepository interface {
	GetStats() (*DocumentStats, error)
}

type documentStatsRepository struct {
	db *sqlx.DB
}

func NewDocumentStatsRepository(db *sqlx.DB) DocumentStatsRepository {
	return &documentStatsRepository{db: db}
}

const statusCountQuery = `
SELECT processing_status, COUNT(*) AS count
FROM documents
WHERE deleted_at IS NULL
GROUP BY processing_status`

const avgDurationQuery = `
SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (processing_completed_at - processing_started_at))), 0)
FROM documents
WHERE deleted_at IS NULL
  AND processing_status = 'COMPLETED'
  AND processing_started_at IS NOT NULL
  AND processing_completed_at IS NOT NULL`

func (r *documentStatsRepository) GetStats() (*DocumentStats, error) {
	var rows []struct {
		ProcessingStatus string `db:"processing_status"`
		Count            int64  `db:"count"`
	}
	if err := r.db.Select(&rows, statusCountQuery); err != nil {
		return nil, err
	}

	stats := &DocumentStats{}
	for _, row := range rows {
		stats.Total += row.Count
		switch row.ProcessingStatus {
		case "PENDING":
			stats.Pending = row.Count
		case "PROCESSING":
			stats.Processing = row.Count
		case "COMPLETED":
			stats.Completed = row.Count
		case "FAILED":
			stats.Failed = row.Count
		}
	}

	if err := r.db.Get(&stats.AvgProcessSecond, avgDurationQuery); err != nil {
		return nil, err
	}
	return stats, nil
}
