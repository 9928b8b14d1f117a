package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"erp-assistant-backend/internal/database"
	"erp-assistant-backend/internal/logger"
)

// targetTables is the fixed allow-list of business tables exposed to query
// generation. Everything else in an Odoo database is framework noise.
var targetTables = []string{
	"res_partner",
	"product_template", "product_product",
	"sale_order", "sale_order_line",
	"purchase_order", "purchase_order_line",
	"stock_picking", "stock_move", "stock_quant",
	"account_move", "account_move_line",
}

var typeSimplifier = strings.NewReplacer(
	"character varying", "varchar",
	"timestamp without time zone", "datetime",
)

// SchemaCache builds the human-readable schema description handed to query
// generation. Computed once per process; a live migration during the
// process lifetime is not picked up.
type SchemaCache struct {
	pool *pgxpool.Pool

	once        sync.Once
	description string
	err         error
}

func NewSchemaCache(pool *pgxpool.Pool) *SchemaCache {
	return &SchemaCache{pool: pool}
}

// Description returns the cached schema text, introspecting on first use.
func (s *SchemaCache) Description(ctx context.Context) (string, error) {
	s.once.Do(func() {
		s.description, s.err = s.build(ctx)
	})
	return s.description, s.err
}

func (s *SchemaCache) build(ctx context.Context) (string, error) {
	var sb strings.Builder
	sb.WriteString("Here is the PostgreSQL relational schema of the Odoo database:\n")

	for _, table := range targetTables {
		columns, err := database.ListTableColumns(ctx, s.pool, table)
		if err != nil {
			return "", fmt.Errorf("introspecting %s: %w", table, err)
		}
		if len(columns) == 0 {
			logger.Warn("Table missing or empty during introspection", "table", table)
			continue
		}

		fmt.Fprintf(&sb, "\nTABLE %s (\n", table)
		for _, col := range columns {
			fmt.Fprintf(&sb, "  %s %s,\n", col.Name, typeSimplifier.Replace(col.DataType))
		}
		sb.WriteString(");\n")
	}

	return sb.String(), nil
}
