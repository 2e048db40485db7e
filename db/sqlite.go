package db

import (
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Open opens the local SQLite database at path and returns it wrapped in bun.
func Open(path string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("error opening sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps ":memory:"
	// databases alive across queries.
	sqldb.SetMaxOpenConns(1)

	if err = sqldb.Ping(); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("error pinging sqlite database: %w", err)
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}
