package handlers

import (
	"bytes"
	"testing"

	"rya_attendance_backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func readExport(t *testing.T, data []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{ExportSheetName}, f.GetSheetList())
	rows, err := f.GetRows(ExportSheetName)
	require.NoError(t, err)
	return rows
}

func TestGenerateAttendanceExport(t *testing.T) {
	days := []string{"Jan 11", "Jan 12"}
	roster := &models.Roster{
		Header: []string{"Name", "Jan 11", "Jan 12"},
		Attendees: []*models.Attendee{
			{Name: "Lee, Ann", Status: map[string]models.Status{"Jan 11": models.StatusPresent}},
			{Name: "Bob", Status: map[string]models.Status{"Jan 11": models.StatusPresent, "Jan 12": models.StatusPresent}},
		},
	}

	data, err := GenerateAttendanceExport(days, roster)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Name", "Jan 11", "Jan 12"},
		{"Lee, Ann", "Present", "Absent"},
		{"Bob", "Present", "Present"},
		{"Boarded", "2 / 2", "1 / 2"},
	}, readExport(t, data))
}

func TestGenerateAttendanceExport_EmptyRoster(t *testing.T) {
	data, err := GenerateAttendanceExport([]string{"Jan 11"}, nil)
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"Name", "Jan 11"},
		{"Boarded", "0 / 0"},
	}, readExport(t, data))
}
