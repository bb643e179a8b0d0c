package store

import "strings"

// QueryBuilder rewrites queries written with ? placeholders for a dialect.
type QueryBuilder struct {
	dialect Dialect
}

// NewQueryBuilder creates a QueryBuilder for dialect.
func NewQueryBuilder(dialect Dialect) *QueryBuilder {
	return &QueryBuilder{dialect: dialect}
}

// Build converts ? placeholders to the dialect's markers.
//
//	input:    "SELECT * FROM tracks WHERE id = ? AND name = ?"
//	SQLite:   unchanged
//	Postgres: "SELECT * FROM tracks WHERE id = $1 AND name = $2"
func (qb *QueryBuilder) Build(query string) string {
	if _, ok := qb.dialect.(*SQLiteDialect); ok {
		return query
	}

	var result strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result.WriteString(qb.dialect.Placeholder(position))
			position++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}
