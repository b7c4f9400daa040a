package repositories

import (
	"context"
	"database/sql"
)

// StatsRepository runs the grouped counts behind GET /jobs/stats directly on
// the SQL pool; no rows are loaded.
type StatsRepository interface {
	CountJobsBy(ctx context.Context, userID string, column StatsColumn) (map[string]int64, error)
	CountActiveJobs(ctx context.Context, userID string) (active, archived int64, err error)
}

// StatsColumn is a closed set so it can be interpolated into SQL.
type StatsColumn string

const (
	StatsByStatus   StatsColumn = "status"
	StatsByPriority StatsColumn = "priority"
	StatsByJobType  StatsColumn = "job_type"
)

type statsRepository struct {
	db *sql.DB
}

func NewStatsRepository(db *sql.DB) StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) CountJobsBy(ctx context.Context, userID string, column StatsColumn) (map[string]int64, error) {
	switch column {
	case StatsByStatus, StatsByPriority, StatsByJobType:
	default:
		column = StatsByStatus
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT `+string(column)+`, COUNT(*)
        FROM job_applications
        WHERE user_id = $1 AND is_archived = false
        GROUP BY `+string(column), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var key sql.NullString
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		out[key.String] += n
	}
	return out, rows.Err()
}

func (r *statsRepository) CountActiveJobs(ctx context.Context, userID string) (int64, int64, error) {
	var active, archived int64
	err := r.db.QueryRowContext(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE is_archived = false),
            COUNT(*) FILTER (WHERE is_archived = true)
        FROM job_applications
        WHERE user_id = $1
    `, userID).Scan(&active, &archived)
	return active, archived, err
}
