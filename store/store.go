// Package store owns the in-memory attendance roster of a session and keeps
// it synchronized with a persisted tabular resource.
package store

import (
	"context"
	"fmt"
	"strings"

	"rya_attendance_backend/models"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
)

// Persister reads and writes a whole roster.
type Persister interface {
	Load(ctx context.Context) (*models.Roster, error)
	Save(ctx context.Context, roster *models.Roster) error
}

// Authorizer gates destructive operations. It returns an error matching
// ErrAuthorizationDenied when token is not accepted.
type Authorizer interface {
	Authorize(ctx context.Context, token string) error
}

// Store is the authoritative roster of one session. It is not safe for
// concurrent use; Session serializes access.
type Store struct {
	days       []string
	persister  Persister
	authorizer Authorizer
	logger     *zap.Logger
	fold       cases.Caser

	roster *models.Roster
}

func New(days []string, persister Persister, authorizer Authorizer, logger *zap.Logger) *Store {
	return &Store{
		days:       days,
		persister:  persister,
		authorizer: authorizer,
		logger:     logger,
		fold:       cases.Fold(),
	}
}

// Days returns the configured trip days in order.
func (s *Store) Days() []string {
	return s.days
}

// HasDay reports whether day is a configured trip day.
func (s *Store) HasDay(day string) bool {
	for _, d := range s.days {
		if d == day {
			return true
		}
	}
	return false
}

// Load replaces the in-memory roster with the persisted one.
func (s *Store) Load(ctx context.Context) (*models.Roster, error) {
	roster, err := s.persister.Load(ctx)
	if err != nil {
		return nil, err
	}
	normalize(roster, s.days)
	s.roster = roster
	s.logger.Info("roster loaded", zap.Int("attendees", len(roster.Attendees)))
	return roster, nil
}

// normalize gives every attendee exactly one status per trip day.
func normalize(roster *models.Roster, days []string) {
	for _, a := range roster.Attendees {
		if a.Status == nil {
			a.Status = make(map[string]models.Status, len(days))
		}
		for _, day := range days {
			if a.Status[day] != models.StatusPresent {
				a.Status[day] = models.StatusAbsent
			}
		}
	}
}

// Roster returns the live roster, or nil before Load.
func (s *Store) Roster() *models.Roster {
	return s.roster
}

func (s *Store) attendees() []*models.Attendee {
	if s.roster == nil {
		return nil
	}
	return s.roster.Attendees
}

// Total returns the number of attendees.
func (s *Store) Total() int {
	return len(s.attendees())
}

// Matches returns the roster indices of attendees whose name contains query,
// ignoring case. An empty query matches everyone.
func (s *Store) Matches(query string) []int {
	needle := s.fold.String(query)
	ids := make([]int, 0, s.Total())
	for i, a := range s.attendees() {
		if needle == "" || strings.Contains(s.fold.String(a.Name), needle) {
			ids = append(ids, i)
		}
	}
	return ids
}

// Filter returns the attendees matching query in roster order.
func (s *Store) Filter(query string) []*models.Attendee {
	ids := s.Matches(query)
	out := make([]*models.Attendee, 0, len(ids))
	for _, i := range ids {
		out = append(out, s.roster.Attendees[i])
	}
	return out
}

// Attendee returns the attendee at index id.
func (s *Store) Attendee(id int) (*models.Attendee, error) {
	list := s.attendees()
	if id < 0 || id >= len(list) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAttendee, id)
	}
	return list[id], nil
}

// CountPresent returns the number of attendees present on day.
func (s *Store) CountPresent(day string) int {
	n := 0
	for _, a := range s.attendees() {
		if a.Status[day] == models.StatusPresent {
			n++
		}
	}
	return n
}

// Ratio is CountPresent over Total, or 0 for an empty roster.
func (s *Store) Ratio(day string) float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.CountPresent(day)) / float64(total)
}

// CheckIn marks attendee id present on day and persists the roster.
func (s *Store) CheckIn(ctx context.Context, id int, day string) error {
	if !s.HasDay(day) {
		return fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	a, err := s.Attendee(id)
	if err != nil {
		return err
	}
	a.Status[day] = models.StatusPresent
	s.logger.Info("checked in", zap.Int("attendee_id", id), zap.String("name", a.Name), zap.String("day", day))
	return s.Persist(ctx)
}

// ResetDay marks every attendee absent on day once token is authorized, then
// persists the roster.
func (s *Store) ResetDay(ctx context.Context, day, token string) error {
	if !s.HasDay(day) {
		return fmt.Errorf("%w: %q", ErrUnknownDay, day)
	}
	if s.roster == nil {
		return ErrNotLoaded
	}
	if err := s.authorizer.Authorize(ctx, token); err != nil {
		s.logger.Warn("reset refused", zap.String("day", day), zap.Error(err))
		return err
	}
	for _, a := range s.roster.Attendees {
		a.Status[day] = models.StatusAbsent
	}
	s.logger.Info("day reset", zap.String("day", day), zap.Int("attendees", len(s.roster.Attendees)))
	return s.Persist(ctx)
}

// Persist writes the whole roster back. On failure the in-memory roster is
// kept and a *PersistError is returned.
func (s *Store) Persist(ctx context.Context) error {
	if s.roster == nil {
		return ErrNotLoaded
	}
	if err := s.persister.Save(ctx, s.roster); err != nil {
		s.logger.Error("persist failed", zap.Error(err))
		return &PersistError{Err: err}
	}
	return nil
}
