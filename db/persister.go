package db

import (
	"context"
	"database/sql"
	"fmt"

	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// SQLitePersister keeps the roster in a local SQLite database.
type SQLitePersister struct {
	db     *bun.DB
	days   []string
	logger *zap.Logger
}

func NewSQLitePersister(db *bun.DB, days []string, logger *zap.Logger) *SQLitePersister {
	return &SQLitePersister{db: db, days: days, logger: logger}
}

func (p *SQLitePersister) Load(ctx context.Context) (*models.Roster, error) {
	ok, err := HasSchema(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("check schema: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: no attendees table", store.ErrMissingResource)
	}

	var columns []ColumnRow
	if err := p.db.NewSelect().Model(&columns).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrMalformedResource, err)
	}
	var rows []AttendeeRow
	if err := p.db.NewSelect().Model(&rows).Order("position ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrMalformedResource, err)
	}
	var cells []CellRow
	if err := p.db.NewSelect().Model(&cells).Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrMalformedResource, err)
	}

	roster := &models.Roster{Attendees: make([]*models.Attendee, 0, len(rows))}
	for _, c := range columns {
		roster.Header = append(roster.Header, c.Name)
	}

	byPosition := make(map[int]*models.Attendee, len(rows))
	for _, r := range rows {
		a := &models.Attendee{Name: r.Name, Status: make(map[string]models.Status, len(p.days))}
		byPosition[r.Position] = a
		roster.Attendees = append(roster.Attendees, a)
	}
	for _, c := range cells {
		a, ok := byPosition[c.Position]
		if !ok {
			p.logger.Warn("orphan attendance cell", zap.Int("position", c.Position), zap.String("column", c.Column))
			continue
		}
		if isDay(p.days, c.Column) {
			a.Status[c.Column] = models.ParseStatus(c.Value)
			continue
		}
		if a.Extra == nil {
			a.Extra = make(map[string]string)
		}
		a.Extra[c.Column] = c.Value
	}
	for _, a := range roster.Attendees {
		for _, day := range p.days {
			if _, ok := a.Status[day]; !ok {
				a.Status[day] = models.StatusAbsent
			}
		}
	}
	return roster, nil
}

// Save replaces the stored roster in one transaction.
func (p *SQLitePersister) Save(ctx context.Context, roster *models.Roster) error {
	cols := roster.Columns(p.days)

	columns := make([]ColumnRow, 0, len(cols))
	for i, name := range cols {
		columns = append(columns, ColumnRow{Position: i, Name: name})
	}
	rows := make([]AttendeeRow, 0, len(roster.Attendees))
	var cells []CellRow
	for i, a := range roster.Attendees {
		rows = append(rows, AttendeeRow{Position: i, Name: a.Name})
		for _, col := range cols {
			switch {
			case col == models.NameColumn:
			case isDay(p.days, col):
				cells = append(cells, CellRow{Position: i, Column: col, Value: string(models.ParseStatus(string(a.Status[col])))})
			default:
				cells = append(cells, CellRow{Position: i, Column: col, Value: a.Extra[col]})
			}
		}
	}

	err := p.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if err := InitSchema(ctx, tx); err != nil {
			return err
		}
		for _, model := range tables {
			if _, err := tx.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
				return err
			}
		}
		if len(columns) > 0 {
			if _, err := tx.NewInsert().Model(&columns).Exec(ctx); err != nil {
				return err
			}
		}
		if len(rows) > 0 {
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return err
			}
		}
		if len(cells) > 0 {
			if _, err := tx.NewInsert().Model(&cells).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save roster: %w", err)
	}

	p.logger.Debug("roster persisted", zap.String("driver", "sqlite"), zap.Int("attendees", len(rows)))
	return nil
}

func isDay(days []string, col string) bool {
	for _, d := range days {
		if d == col {
			return true
		}
	}
	return false
}

// Ping checks the database connection and that the roster tables exist.
func (p *SQLitePersister) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return err
	}
	ok, err := HasSchema(ctx, p.db)
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrMissingResource
	}
	return nil
}
