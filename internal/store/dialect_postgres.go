package store

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// PostgresDialect implements Dialect for the lib/pq driver.
type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) Placeholder(position int) string {
	return fmt.Sprintf("$%d", position)
}

// InitStatements is empty; foreign keys are always enforced in PostgreSQL.
func (d *PostgresDialect) InitStatements() []string {
	return nil
}

func (d *PostgresDialect) FloatType() string {
	return "DOUBLE PRECISION"
}

// IsDuplicateKeyError checks for SQLSTATE 23505 (unique_violation).
func (d *PostgresDialect) IsDuplicateKeyError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}
