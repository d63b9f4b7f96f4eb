package postgres

import (
	_ "embed"
	"errors"

	"github.com/aquilax/debateboard/database/sqlstore"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schema string

func New() *sqlstore.Store {
	return sqlstore.New(sqlstore.Dialect{
		Schema:            sqlstore.SplitStatements(schema),
		OrderColumn:       "seq",
		RowLock:           " FOR UPDATE",
		IsUniqueViolation: isUniqueViolation,
	})
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
