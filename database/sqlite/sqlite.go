package sqlite

import (
	_ "embed"
	"errors"

	"github.com/aquilax/debateboard/database/sqlstore"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed schema.sql
var schema string

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

func New() *sqlstore.Store {
	return sqlstore.New(sqlstore.Dialect{
		Schema:            sqlstore.SplitStatements(schema),
		OrderColumn:       "rowid",
		Setup:             setup,
		IsUniqueViolation: isUniqueViolation,
	})
}

// setup pins the pool to one connection: SQLite has a single writer, and
// serializing transactions here keeps vote toggles from failing with
// SQLITE_BUSY. It also keeps ":memory:" databases alive between calls.
func setup(db *sqlx.DB) error {
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			return err
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
