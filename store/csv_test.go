package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rya_attendance_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = "Name,Jan 11,Jan 12\n" +
	"Uttam,Absent,Present\n" +
	"Jiya,Present,Absent\n" +
	"\"Lee, Ann\",Absent,Absent\n"

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "attendees.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestCSVPersister_RoundTripIsByteIdentical(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, sampleCSV)
	p := NewCSVPersister(path, testDays, false, zap.NewNop())

	roster, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, roster.Attendees, 3)
	assert.Equal(t, "Uttam", roster.Attendees[0].Name)
	assert.Equal(t, "Lee, Ann", roster.Attendees[2].Name)
	assert.Equal(t, models.StatusPresent, roster.Attendees[1].Status["Jan 11"])

	require.NoError(t, p.Save(ctx, roster))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(got))
}

func TestCSVPersister_RoundTripKeepsEncoding(t *testing.T) {
	tests := []struct {
		name    string
		content string
		bom     bool
		crlf    bool
	}{
		{
			name:    "byte order mark",
			content: "\xef\xbb\xbfName,Jan 11,Jan 12\nUttam,Absent,Present\n",
			bom:     true,
		},
		{
			name:    "crlf line endings",
			content: "Name,Jan 11,Jan 12\r\nUttam,Absent,Present\r\n",
			crlf:    true,
		},
		{
			name:    "both",
			content: "\xef\xbb\xbfName,Jan 11,Jan 12\r\nUttam,Absent,Present\r\n",
			bom:     true,
			crlf:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			path := writeFile(t, tt.content)
			p := NewCSVPersister(path, testDays, false, zap.NewNop())

			roster, err := p.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"Name", "Jan 11", "Jan 12"}, roster.Header)
			assert.Equal(t, tt.bom, roster.ByteOrderMark)
			assert.Equal(t, tt.crlf, roster.CRLF)
			require.Len(t, roster.Attendees, 1)
			assert.Equal(t, "Uttam", roster.Attendees[0].Name)
			assert.Equal(t, models.StatusPresent, roster.Attendees[0].Status["Jan 12"])

			require.NoError(t, p.Save(ctx, roster))
			got, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.content, string(got))
		})
	}
}

func TestCSVPersister_PreservesColumnOrderAndExtraColumns(t *testing.T) {
	ctx := context.Background()
	content := "Jan 12,Name,Room,Jan 11\nPresent,Uttam,12,Absent\n"
	path := writeFile(t, content)
	p := NewCSVPersister(path, testDays, false, zap.NewNop())

	roster, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "12", roster.Attendees[0].Extra["Room"])

	require.NoError(t, p.Save(ctx, roster))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestCSVPersister_MissingFile(t *testing.T) {
	p := NewCSVPersister(filepath.Join(t.TempDir(), "nope.csv"), testDays, false, zap.NewNop())

	_, err := p.Load(context.Background())
	assert.ErrorIs(t, err, ErrMissingResource)
}

func TestDecodeCSV_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "no Name column", content: "Person,Jan 11\nUttam,Present\n"},
		{name: "bad quoting", content: "Name,Jan 11\n\"Uttam,Present\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeCSV(strings.NewReader(tt.content), testDays)
			assert.ErrorIs(t, err, ErrMalformedResource)
		})
	}
}

func TestDecodeCSV_RecoversMissingCells(t *testing.T) {
	content := "Name,Jan 11\nUttam,Present\nJiya\nAsha,Maybe\n"

	roster, err := DecodeCSV(strings.NewReader(content), testDays)
	require.NoError(t, err)
	require.Len(t, roster.Attendees, 3)

	assert.Equal(t, models.StatusPresent, roster.Attendees[0].Status["Jan 11"])
	assert.Equal(t, models.StatusAbsent, roster.Attendees[0].Status["Jan 12"])
	assert.Equal(t, models.StatusAbsent, roster.Attendees[1].Status["Jan 11"])
	assert.Equal(t, models.StatusAbsent, roster.Attendees[2].Status["Jan 11"])
}

func TestCSVPersister_SaveAppendsMissingDayColumns(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, "Name,Jan 11\nUttam,Present\n")
	p := NewCSVPersister(path, testDays, false, zap.NewNop())

	roster, err := p.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, p.Save(ctx, roster))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name,Jan 11,Jan 12\nUttam,Present,Absent\n", string(got))
}

func TestCSVPersister_WritesBackup(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, sampleCSV)
	p := NewCSVPersister(path, testDays, true, zap.NewNop())

	roster, err := p.Load(ctx)
	require.NoError(t, err)
	roster.Attendees[0].Status["Jan 11"] = models.StatusPresent
	require.NoError(t, p.Save(ctx, roster))

	backup, err := os.ReadFile(path + BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, string(backup))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(got), "Name,Jan 11,Jan 12\nUttam,Present,Present\n"))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 2, "temp files must not be left behind")
}

func TestCSVPersister_SaveFailsForMissingDirectory(t *testing.T) {
	p := NewCSVPersister(filepath.Join(t.TempDir(), "gone", "attendees.csv"), testDays, false, zap.NewNop())

	err := p.Save(context.Background(), &models.Roster{})
	assert.Error(t, err)
}

func TestCSVPersister_WithStore(t *testing.T) {
	ctx := context.Background()
	path := writeFile(t, sampleCSV)
	p := NewCSVPersister(path, testDays, false, zap.NewNop())
	st := New(testDays, p, secretAuthorizer("letmein"), zap.NewNop())

	_, err := st.Load(ctx)
	require.NoError(t, err)
	require.NoError(t, st.CheckIn(ctx, 0, "Jan 11"))

	reloaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, reloaded.Attendees[0].Status["Jan 11"])

	require.NoError(t, st.ResetDay(ctx, "Jan 12", "letmein"))
	reloaded, err = p.Load(ctx)
	require.NoError(t, err)
	for _, a := range reloaded.Attendees {
		assert.Equal(t, models.StatusAbsent, a.Status["Jan 12"])
	}
	assert.Equal(t, models.StatusPresent, reloaded.Attendees[1].Status["Jan 11"])
}
