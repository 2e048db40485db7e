package db

import (
	"context"
	"testing"

	"rya_attendance_backend/models"
	"rya_attendance_backend/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testDays = []string{"Jan 11", "Jan 12"}

func newTestPersister(t *testing.T) *SQLitePersister {
	t.Helper()
	bundb, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { bundb.Close() })
	return NewSQLitePersister(bundb, testDays, zap.NewNop())
}

func TestSQLitePersister_MissingSchema(t *testing.T) {
	p := newTestPersister(t)

	_, err := p.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrMissingResource)
}

func TestSQLitePersister_RoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	roster := &models.Roster{
		Header: []string{"Name", "Room", "Jan 11", "Jan 12"},
		Attendees: []*models.Attendee{
			{Name: "Uttam", Status: map[string]models.Status{"Jan 11": models.StatusAbsent, "Jan 12": models.StatusPresent}, Extra: map[string]string{"Room": "12"}},
			{Name: "Jiya", Status: map[string]models.Status{"Jan 11": models.StatusPresent, "Jan 12": models.StatusAbsent}, Extra: map[string]string{"Room": "14"}},
			{Name: "Uttam", Status: map[string]models.Status{"Jan 11": models.StatusPresent}},
		},
	}
	require.NoError(t, p.Save(ctx, roster))

	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, roster.Header, got.Header)
	require.Len(t, got.Attendees, 3)
	assert.Equal(t, "Uttam", got.Attendees[0].Name)
	assert.Equal(t, "Jiya", got.Attendees[1].Name)
	assert.Equal(t, "Uttam", got.Attendees[2].Name)
	assert.Equal(t, "14", got.Attendees[1].Extra["Room"])
	assert.Equal(t, models.StatusPresent, got.Attendees[0].Status["Jan 12"])
	assert.Equal(t, models.StatusAbsent, got.Attendees[2].Status["Jan 12"])
}

func TestSQLitePersister_SaveReplacesRoster(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	first := &models.Roster{Attendees: []*models.Attendee{
		{Name: "A", Status: map[string]models.Status{}},
		{Name: "B", Status: map[string]models.Status{}},
	}}
	require.NoError(t, p.Save(ctx, first))
	require.NoError(t, p.Save(ctx, &models.Roster{Attendees: []*models.Attendee{
		{Name: "C", Status: map[string]models.Status{"Jan 11": models.StatusPresent}},
	}}))

	got, err := p.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Attendees, 1)
	assert.Equal(t, "C", got.Attendees[0].Name)
	assert.Equal(t, []string{"Name", "Jan 11", "Jan 12"}, got.Header)
}

func TestSQLitePersister_EmptyRoster(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)

	require.NoError(t, p.Save(ctx, &models.Roster{}))
	got, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got.Attendees)
}

func TestSQLitePersister_WithStore(t *testing.T) {
	ctx := context.Background()
	p := newTestPersister(t)
	require.NoError(t, p.Save(ctx, &models.Roster{Attendees: []*models.Attendee{
		{Name: "Uttam", Status: map[string]models.Status{}},
		{Name: "Jiya", Status: map[string]models.Status{"Jan 11": models.StatusPresent}},
	}}))

	st := store.New(testDays, p, nil, zap.NewNop())
	_, err := st.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.5, st.Ratio("Jan 11"))
	require.NoError(t, st.CheckIn(ctx, 0, "Jan 11"))

	reloaded, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPresent, reloaded.Attendees[0].Status["Jan 11"])
}
