// Package migrations embeds the SQL migration files so they can be used
// by the goose programmatic API in tests, the operator CLI and server bootstrap.
// Each supported database has its own directory of migrations.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql sqlite/*.sql
var files embed.FS

// Postgres returns the migrations for the Postgres store.
func Postgres() fs.FS { return sub("postgres") }

// SQLite returns the migrations for the SQLite store.
func SQLite() fs.FS { return sub("sqlite") }

func sub(dir string) fs.FS {
	f, err := fs.Sub(files, dir)
	if err != nil {
		// The directory names are compile-time constants.
		panic("migrations: " + err.Error())
	}
	return f
}

// NewProvider returns a goose provider for the named store driver
// ("postgres" or "sqlite") operating on db.
func NewProvider(driver string, db *sql.DB) (*goose.Provider, error) {
	switch driver {
	case "postgres":
		return goose.NewProvider(goose.DialectPostgres, db, Postgres())
	case "sqlite":
		return goose.NewProvider(goose.DialectSQLite3, db, SQLite())
	}
	return nil, fmt.Errorf("migrations: unsupported driver %q", driver)
}
