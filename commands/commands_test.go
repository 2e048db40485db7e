package commands

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"rya_attendance_backend/config"
	"rya_attendance_backend/db"
	"rya_attendance_backend/middleware"
	"rya_attendance_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDays = []string{"Jan 11", "Jan 12"}

func TestImportCSV(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "attendees.csv")
	sqlitePath := filepath.Join(dir, "attendance.db")
	require.NoError(t, os.WriteFile(csvPath, []byte("Name,Jan 11,Jan 12\nUttam,Absent,Present\nJiya,Present,Absent\n"), 0644))

	n, err := importCSV(ctx, csvPath, sqlitePath, testDays, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	bundb, err := db.Open(sqlitePath)
	require.NoError(t, err)
	defer bundb.Close()
	roster, err := db.NewSQLitePersister(bundb, testDays, zap.NewNop()).Load(ctx)
	require.NoError(t, err)
	require.Len(t, roster.Attendees, 2)
	assert.Equal(t, "Jiya", roster.Attendees[1].Name)
	assert.Equal(t, models.StatusPresent, roster.Attendees[1].Status["Jan 11"])
}

func TestImportCSV_MissingFile(t *testing.T) {
	dir := t.TempDir()
	_, err := importCSV(context.Background(), filepath.Join(dir, "none.csv"), filepath.Join(dir, "a.db"), testDays, zap.NewNop())
	assert.Error(t, err)
}

func TestReadSecret_FromPipe(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()

	_, err = w.WriteString("Trip2026\n")
	require.NoError(t, err)
	w.Close()

	secret, err := readSecret(r)
	require.NoError(t, err)
	assert.Equal(t, "Trip2026", secret)

	hash, err := middleware.HashSecret(secret)
	require.NoError(t, err)
	assert.True(t, middleware.VerifySecret(hash, "Trip2026"))
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		StorageDriver: config.DriverSQLite,
		SQLitePath:    filepath.Join(dir, "attendance.db"),
		TripDays:      testDays,
	}
	s, err := OpenStorage(cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.Error(t, s.Pinger.Ping(context.Background()), "no roster imported yet")

	cfg.StorageDriver = config.DriverCSV
	cfg.AttendeesFile = filepath.Join(dir, "attendees.csv")
	s2, err := OpenStorage(cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NoError(t, s2.Close())

	cfg.StorageDriver = "mongo"
	_, err = OpenStorage(cfg, zap.NewNop())
	assert.Error(t, err)
}
