package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"sql-rag/internal/config"
	"sql-rag/internal/models"
)

// ExecutionError reports a generated SQL statement failing at the
// database. The statement is surfaced verbatim; no validation or
// repair is attempted here.
type ExecutionError struct {
	SQL string
	Err error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed for %q: %v", e.SQL, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	dsn := cfg.DSN + "?sslmode=disable"
	return sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password))), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// ApplySchema executes each DDL unit against the database. One-time
// setup, not part of the retrieval/generation core.
func ApplySchema(ctx context.Context, db *bun.DB, units []models.KnowledgeUnit) error {
	for _, u := range units {
		if _, err := db.ExecContext(ctx, u.Text); err != nil {
			return &ExecutionError{SQL: u.Text, Err: err}
		}
	}
	return nil
}

// RunQuery executes generated SQL and returns the rows as generic maps
// for display.
func RunQuery(ctx context.Context, db *bun.DB, sqlText string) ([]map[string]any, error) {
	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, &ExecutionError{SQL: sqlText, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &ExecutionError{SQL: sqlText, Err: err}
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, &ExecutionError{SQL: sqlText, Err: err}
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExecutionError{SQL: sqlText, Err: err}
	}

	return results, nil
}
