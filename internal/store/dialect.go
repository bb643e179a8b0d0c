package store

// Dialect hides the SQL differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName is the database/sql driver registered for the dialect.
	DriverName() string

	// Placeholder returns the parameter marker for a 1-indexed position.
	// SQLite: "?", PostgreSQL: "$1", "$2", ...
	Placeholder(position int) string

	// InitStatements run once per connection pool, before migrations.
	InitStatements() []string

	// FloatType is the column type used for coordinates and durations.
	FloatType() string

	// IsDuplicateKeyError reports a unique constraint violation.
	IsDuplicateKeyError(err error) bool
}

// DialectType identifies the database dialect.
type DialectType string

const (
	DialectSQLite   DialectType = "sqlite"
	DialectPostgres DialectType = "postgres"
)

// NewDialect returns the Dialect for dialectType, SQLite for anything unknown.
func NewDialect(dialectType DialectType) Dialect {
	switch dialectType {
	case DialectPostgres:
		return &PostgresDialect{}
	default:
		return &SQLiteDialect{}
	}
}
