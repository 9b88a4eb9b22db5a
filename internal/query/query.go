// Package query filters a user's appointment and history records by
// free-text search and an optional date range, and orders the result most
// recent first.
package query

import (
	"sort"
	"strings"

	"healthrecord-api/internal/model"
)

// Params describes one search. Text is matched case-insensitively as a
// substring against the description and doctor fields; empty Text matches
// everything. From and To are inclusive YYYY-MM-DD bounds; an empty bound
// is unbounded.
type Params struct {
	Text string
	From string
	To   string
}

func (p Params) matches(date, description, doctor string) bool {
	if p.From != "" && date < p.From {
		return false
	}
	if p.To != "" && date > p.To {
		return false
	}
	if p.Text == "" {
		return true
	}
	needle := strings.ToLower(p.Text)
	return strings.Contains(strings.ToLower(description), needle) ||
		strings.Contains(strings.ToLower(doctor), needle)
}

// Appointments returns the matching subset of items ordered by date
// descending. The sort is stable, so records sharing a date keep their
// insertion order. No match yields an empty slice, never an error.
func Appointments(items []model.Appointment, p Params) []model.Appointment {
	out := make([]model.Appointment, 0, len(items))
	for _, a := range items {
		if p.matches(a.Date, a.Description, a.Doctor) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// HistoryEvents is the HistoryEvent counterpart of Appointments.
func HistoryEvents(items []model.HistoryEvent, p Params) []model.HistoryEvent {
	out := make([]model.HistoryEvent, 0, len(items))
	for _, h := range items {
		if p.matches(h.Date, h.Description, h.Doctor) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}
