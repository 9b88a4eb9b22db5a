// Package aggregate builds the dashboard landing-view summary.
package aggregate

import (
	"context"
	"time"

	"healthrecord-api/internal/model"
	"healthrecord-api/internal/store"
)

// DefaultRecentHistory caps the "recent history" count when no limit is
// configured.
const DefaultRecentHistory = 3

type Summary struct {
	MedicationCount          int `json:"medicationCount"`
	UpcomingAppointmentCount int `json:"upcomingAppointmentCount"`
	RecentHistoryCount       int `json:"recentHistoryCount"`
}

// Aggregator reads from the store and never writes.
type Aggregator struct {
	store       store.Store
	recentLimit int
}

func New(st store.Store, recentLimit int) *Aggregator {
	if recentLimit <= 0 {
		recentLimit = DefaultRecentHistory
	}
	return &Aggregator{store: st, recentLimit: recentLimit}
}

// Summary computes the landing-view counts for one owner. The evaluation
// time is injected by the caller so results stay deterministic; an
// appointment counts as upcoming when its date is on or after now's
// calendar date.
func (a *Aggregator) Summary(ctx context.Context, ownerID string, now time.Time) (*Summary, error) {
	meds, err := a.store.ListMedications(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	appts, err := a.store.ListAppointments(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	events, err := a.store.ListHistoryEvents(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	today := now.Format(model.DateLayout)
	upcoming := 0
	for _, ap := range appts {
		if ap.Date >= today {
			upcoming++
		}
	}

	recent := len(events)
	if recent > a.recentLimit {
		recent = a.recentLimit
	}

	return &Summary{
		MedicationCount:          len(meds),
		UpcomingAppointmentCount: upcoming,
		RecentHistoryCount:       recent,
	}, nil
}
