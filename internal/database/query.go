package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"erp-assistant-backend/models"
)

// Runner binds RunReadQuery to a pool, giving the services layer a
// swappable execution seam.
type Runner struct {
	pool *pgxpool.Pool
}

func NewRunner(pool *pgxpool.Pool) *Runner {
	return &Runner{pool: pool}
}

func (r *Runner) RunQuery(ctx context.Context, sql string) (models.QueryResult, error) {
	return RunReadQuery(ctx, r.pool, sql)
}

// RunReadQuery executes a generated query on the given pool and collects all
// rows. The pool is expected to be the read-only one; a destructive statement
// slipping through sanitization fails here on missing privileges, which is
// the intended behavior.
func RunReadQuery(ctx context.Context, pool *pgxpool.Pool, sql string) (models.QueryResult, error) {
	var result models.QueryResult

	rows, err := pool.Query(ctx, sql)
	if err != nil {
		return result, err
	}
	defer rows.Close()

	for _, fd := range rows.FieldDescriptions() {
		result.Columns = append(result.Columns, string(fd.Name))
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return result, err
		}
		result.Rows = append(result.Rows, values)
	}
	return result, rows.Err()
}
