package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ColumnInfo is one surviving column of an introspected table.
type ColumnInfo struct {
	Name     string
	DataType string
}

// ListTableColumns returns the columns of a public-schema table, with the
// technical noise filtered out at the SQL level: audit timestamps, mailing
// and activity bookkeeping, website fields, and the explicitly sensitive
// columns (tokens, password, large binary images).
func ListTableColumns(ctx context.Context, pool *pgxpool.Pool, table string) ([]ColumnInfo, error) {
	const sql = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_name = $1
		AND table_schema = 'public'
		AND column_name NOT LIKE 'create_%'
		AND column_name NOT LIKE 'write_%'
		AND column_name NOT LIKE 'message_%'
		AND column_name NOT LIKE 'activity_%'
		AND column_name NOT LIKE 'website_%'
		AND column_name NOT IN ('access_token', 'signup_token', 'password', 'image_1920', 'image_128')
		ORDER BY column_name`

	rows, err := pool.Query(ctx, sql, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []ColumnInfo
	for rows.Next() {
		var c ColumnInfo
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}
