package db

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// ColumnRow keeps the persisted header order.
type ColumnRow struct {
	bun.BaseModel `bun:"table:roster_columns"`

	Position int    `bun:"position,pk"`
	Name     string `bun:"name,notnull"`
}

type AttendeeRow struct {
	bun.BaseModel `bun:"table:attendees"`

	Position int    `bun:"position,pk"`
	Name     string `bun:"name,notnull"`
}

// CellRow is one non-Name cell of an attendee row.
type CellRow struct {
	bun.BaseModel `bun:"table:attendance_cells"`

	Position int    `bun:"position,pk"`
	Column   string `bun:"column_name,pk"`
	Value    string `bun:"value,notnull"`
}

var tables = []interface{}{
	(*ColumnRow)(nil),
	(*AttendeeRow)(nil),
	(*CellRow)(nil),
}

// InitSchema creates the roster tables if they do not exist yet.
func InitSchema(ctx context.Context, db bun.IDB) error {
	for _, model := range tables {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("error initializing database schema: %w", err)
		}
	}
	return nil
}

// HasSchema reports whether the roster tables were ever created.
func HasSchema(ctx context.Context, db bun.IDB) (bool, error) {
	return db.NewSelect().
		Table("sqlite_master").
		Where("type = 'table'").
		Where("name = ?", "attendees").
		Exists(ctx)
}
