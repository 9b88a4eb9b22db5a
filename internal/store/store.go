// Package store defines the owner-scoped domain store contract and the
// backend factory. Every read and mutation on Medication, Appointment and
// HistoryEvent records takes the authenticated owner id; access to a record
// held by a different owner fails with model.ErrNotFound, never revealing
// that the record exists.
package store

import (
	"context"
	"fmt"
	"time"

	"healthrecord-api/internal/config"
	"healthrecord-api/internal/model"
	"healthrecord-api/internal/store/memory"
	"healthrecord-api/internal/store/postgres"
	"healthrecord-api/internal/store/sqlite"
)

// Store is the domain store. Mutations are atomic: they fully apply or
// fully fail. List calls return a fresh slice per call, in insertion order
// for the owner; callers may re-iterate freely. Updates merge partial
// fields and never change a record's id or owner. HistoryEvent has no
// update operation: events are immutable once recorded.
type Store interface {
	// Users. Accounts are soft-disabled, never hard-deleted, so owner
	// references on records stay resolvable.
	CreateUser(ctx context.Context, u *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	UserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error)
	DisableUser(ctx context.Context, id string) error

	CreateMedication(ctx context.Context, m *model.Medication) error
	GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error)
	UpdateMedication(ctx context.Context, ownerID, id string, upd model.MedicationUpdate) (*model.Medication, error)
	DeleteMedication(ctx context.Context, ownerID, id string) error
	ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error)

	CreateAppointment(ctx context.Context, a *model.Appointment) error
	GetAppointment(ctx context.Context, ownerID, id string) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, ownerID, id string, upd model.AppointmentUpdate) (*model.Appointment, error)
	DeleteAppointment(ctx context.Context, ownerID, id string) error
	ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error)

	CreateHistoryEvent(ctx context.Context, h *model.HistoryEvent) error
	GetHistoryEvent(ctx context.Context, ownerID, id string) (*model.HistoryEvent, error)
	DeleteHistoryEvent(ctx context.Context, ownerID, id string) error
	ListHistoryEvents(ctx context.Context, ownerID string) ([]model.HistoryEvent, error)

	// Refresh-token session state for the sign-in flow.
	CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error
	RevokeAllRefreshTokens(ctx context.Context, userID string) error

	HealthCheck(ctx context.Context) error
	Close() error
}

// Open builds the backend selected by cfg.DBDriver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.DBDriver {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.Open(cfg.SQLitePath)
	case "postgres":
		return postgres.Open(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.DBDriver)
	}
}
