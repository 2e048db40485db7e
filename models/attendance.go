package models

// Status is the per-day presence value of one attendee.
type Status string

const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// ParseStatus maps a persisted cell to a Status. Anything other than the
// literal "Present" loads as Absent.
func ParseStatus(s string) Status {
	if Status(s) == StatusPresent {
		return StatusPresent
	}
	return StatusAbsent
}

// NameColumn is the header of the attendee name column.
const NameColumn = "Name"

type Attendee struct {
	Name   string            `json:"name"`
	Status map[string]Status `json:"status"`
	// Extra holds cells of columns that are neither Name nor a trip day.
	Extra map[string]string `json:"-"`
}

// Roster is the ordered attendee list for one session.
type Roster struct {
	// Header is the persisted column order. Empty for a roster that was
	// never loaded from a file.
	Header    []string
	Attendees []*Attendee

	// ByteOrderMark and CRLF record how a CSV source was encoded so a save
	// writes it back the same way.
	ByteOrderMark bool
	CRLF          bool
}

// Columns returns the header to persist: the loaded header followed by any
// trip day it did not contain.
func (r *Roster) Columns(days []string) []string {
	if len(r.Header) == 0 {
		return append([]string{NameColumn}, days...)
	}
	cols := append([]string(nil), r.Header...)
	for _, day := range days {
		if !contains(cols, day) {
			cols = append(cols, day)
		}
	}
	return cols
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type CheckInRequest struct {
	Day string `json:"day"`
}

type ResetDayRequest struct {
	Secret string `json:"secret"`
}

type SelectDayRequest struct {
	Day string `json:"day" binding:"required"`
}

type AttendeeResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Day    string `json:"day"`
	Status Status `json:"status"`
}

type ProgressResponse struct {
	Day     string  `json:"day"`
	Present int     `json:"present"`
	Total   int     `json:"total"`
	Ratio   float64 `json:"ratio"`
}

type SessionResponse struct {
	SessionID string   `json:"session_id"`
	ActiveDay string   `json:"active_day"`
	Days      []string `json:"days"`
	Total     int      `json:"total"`
}
