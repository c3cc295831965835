package postgres

import (
	"context"

	"github.com/frahmantamala/salary-simulator/internal/simulation"
	"github.com/jmoiron/sqlx"
)

const listSummariesQuery = `
SELECT s.id, s.name, s.salary,
       j.name AS job_name,
       e.name AS experience_name,
       n.name AS seniority_name
FROM simulations s
JOIN jobs j ON j.id = s.job_id
JOIN experiences e ON e.id = s.experience_id
JOIN seniorities n ON n.id = s.seniority_id
WHERE s.user_id = ?
ORDER BY s.id DESC`

// SummaryReader reads the joined list rows with plain SQL.
type SummaryReader struct {
	db *sqlx.DB
}

func NewSummaryReader(db *sqlx.DB) simulation.SummaryReader {
	return &SummaryReader{db: db}
}

func (r *SummaryReader) ListByUser(ctx context.Context, userID int64, limit int) ([]*simulation.Summary, error) {
	query := listSummariesQuery
	args := []interface{}{userID}
	if limit > 0 {
		query += "\nLIMIT ?"
		args = append(args, limit)
	}

	rows := make([]*simulation.Summary, 0)
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
