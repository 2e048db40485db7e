package commands

import (
	"context"
	"flag"
	"fmt"
	"os"

	"rya_attendance_backend/config"
	"rya_attendance_backend/db"
	"rya_attendance_backend/store"

	"go.uber.org/zap"
)

// ImportCSV handles the import-csv subcommand
func ImportCSV(args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("import-csv", flag.ExitOnError)
	csvPath := fs.String("csv", cfg.AttendeesFile, "CSV attendance file to read")
	sqlitePath := fs.String("sqlite", cfg.SQLitePath, "SQLite database to write")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rya-attendance import-csv [OPTIONS]\n\n")
		fmt.Fprintf(os.Stderr, "Copies the attendance CSV into the SQLite backend, replacing its roster.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  TRIP_DAYS    Comma separated trip day columns\n")
	}
	fs.Parse(args)

	n, err := importCSV(context.Background(), *csvPath, *sqlitePath, cfg.TripDays, zap.NewNop())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Imported %d attendees from %s into %s\n", n, *csvPath, *sqlitePath)
}

func importCSV(ctx context.Context, csvPath, sqlitePath string, days []string, logger *zap.Logger) (int, error) {
	roster, err := store.NewCSVPersister(csvPath, days, false, logger).Load(ctx)
	if err != nil {
		return 0, err
	}

	bundb, err := db.Open(sqlitePath)
	if err != nil {
		return 0, err
	}
	defer bundb.Close()

	if err := db.NewSQLitePersister(bundb, days, logger).Save(ctx, roster); err != nil {
		return 0, err
	}
	return len(roster.Attendees), nil
}
