package commands

import (
	"context"
	"fmt"

	"rya_attendance_backend/config"
	"rya_attendance_backend/db"
	"rya_attendance_backend/store"

	"go.uber.org/zap"
)

// Storage is the configured roster backend.
type Storage struct {
	Persister store.Persister
	Pinger    interface {
		Ping(ctx context.Context) error
	}
	close func() error
}

func (s *Storage) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// OpenStorage opens the backend selected by STORAGE_DRIVER.
func OpenStorage(cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.DriverCSV:
		p := store.NewCSVPersister(cfg.AttendeesFile, cfg.TripDays, cfg.CSVBackup, logger)
		return &Storage{Persister: p, Pinger: p}, nil
	case config.DriverSQLite:
		bundb, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		p := db.NewSQLitePersister(bundb, cfg.TripDays, logger)
		return &Storage{Persister: p, Pinger: p, close: bundb.Close}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
