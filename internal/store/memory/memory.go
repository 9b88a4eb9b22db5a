// Package memory implements the domain store as owner-partitioned maps.
// It backs the test suites and the memory driver; a single RWMutex
// serializes mutations, and per-owner id slices preserve insertion order.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"healthrecord-api/internal/model"
)

type Store struct {
	mu sync.RWMutex

	users  map[string]*model.User
	emails map[string]string // normalized email -> user id

	meds     map[string]*model.Medication
	medOrder map[string][]string // owner id -> record ids, insertion order

	appts     map[string]*model.Appointment
	apptOrder map[string][]string

	events     map[string]*model.HistoryEvent
	eventOrder map[string][]string

	tokens      map[string]*model.RefreshToken
	tokenByHash map[string]string
}

func New() *Store {
	return &Store{
		users:       make(map[string]*model.User),
		emails:      make(map[string]string),
		meds:        make(map[string]*model.Medication),
		medOrder:    make(map[string][]string),
		appts:       make(map[string]*model.Appointment),
		apptOrder:   make(map[string][]string),
		events:      make(map[string]*model.HistoryEvent),
		eventOrder:  make(map[string][]string),
		tokens:      make(map[string]*model.RefreshToken),
		tokenByHash: make(map[string]string),
	}
}

func (s *Store) HealthCheck(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	if err := u.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[u.Email]; taken {
		return fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Status == "" {
		u.Status = model.StatusActive
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	cp := *u
	s.users[u.ID] = &cp
	s.emails[u.Email] = u.ID
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[model.NormalizeEmail(email)]
	if !ok {
		return nil, fmt.Errorf("%w: no user for email", model.ErrNotFound)
	}
	cp := *s.users[id]
	return &cp, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	next := *u
	if err := upd.Apply(&next); err != nil {
		return nil, err
	}
	if next.Email != u.Email {
		if _, taken := s.emails[next.Email]; taken {
			return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
		}
		delete(s.emails, u.Email)
		s.emails[next.Email] = id
	}
	next.UpdatedAt = time.Now().UTC()
	s.users[id] = &next

	cp := next
	return &cp, nil
}

func (s *Store) DisableUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: user %s", model.ErrNotFound, id)
	}
	u.Status = model.StatusDisabled
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// --- medications ---

func (s *Store) CreateMedication(ctx context.Context, m *model.Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	cp := *m
	s.meds[m.ID] = &cp
	s.medOrder[m.OwnerID] = append(s.medOrder[m.OwnerID], m.ID)
	return nil
}

func (s *Store) GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.meds[id]
	if !ok || m.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: medication %s", model.ErrNotFound, id)
	}
	cp := *m
	return &cp, nil
}

func (s *Store) UpdateMedication(ctx context.Context, ownerID, id string, upd model.MedicationUpdate) (*model.Medication, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meds[id]
	if !ok || m.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: medication %s", model.ErrNotFound, id)
	}
	next := *m
	if err := upd.Apply(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.meds[id] = &next

	cp := next
	return &cp, nil
}

func (s *Store) DeleteMedication(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.meds[id]
	if !ok || m.OwnerID != ownerID {
		return fmt.Errorf("%w: medication %s", model.ErrNotFound, id)
	}
	delete(s.meds, id)
	s.medOrder[ownerID] = removeID(s.medOrder[ownerID], id)
	return nil
}

func (s *Store) ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.medOrder[ownerID]
	out := make([]model.Medication, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.meds[id])
	}
	return out, nil
}

// --- appointments ---

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	cp := *a
	s.appts[a.ID] = &cp
	s.apptOrder[a.OwnerID] = append(s.apptOrder[a.OwnerID], a.ID)
	return nil
}

func (s *Store) GetAppointment(ctx context.Context, ownerID, id string) (*model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: appointment %s", model.ErrNotFound, id)
	}
	cp := *a
	return &cp, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ownerID, id string, upd model.AppointmentUpdate) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appts[id]
	if !ok || a.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: appointment %s", model.ErrNotFound, id)
	}
	next := *a
	if err := upd.Apply(&next); err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()
	s.appts[id] = &next

	cp := next
	return &cp, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appts[id]
	if !ok || a.OwnerID != ownerID {
		return fmt.Errorf("%w: appointment %s", model.ErrNotFound, id)
	}
	delete(s.appts, id)
	s.apptOrder[ownerID] = removeID(s.apptOrder[ownerID], id)
	return nil
}

func (s *Store) ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.apptOrder[ownerID]
	out := make([]model.Appointment, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.appts[id])
	}
	return out, nil
}

// --- history events ---

func (s *Store) CreateHistoryEvent(ctx context.Context, h *model.HistoryEvent) error {
	if err := h.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = time.Now().UTC()

	cp := *h
	s.events[h.ID] = &cp
	s.eventOrder[h.OwnerID] = append(s.eventOrder[h.OwnerID], h.ID)
	return nil
}

func (s *Store) GetHistoryEvent(ctx context.Context, ownerID, id string) (*model.HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.events[id]
	if !ok || h.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: history event %s", model.ErrNotFound, id)
	}
	cp := *h
	return &cp, nil
}

func (s *Store) DeleteHistoryEvent(ctx context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.events[id]
	if !ok || h.OwnerID != ownerID {
		return fmt.Errorf("%w: history event %s", model.ErrNotFound, id)
	}
	delete(s.events, id)
	s.eventOrder[ownerID] = removeID(s.eventOrder[ownerID], id)
	return nil
}

func (s *Store) ListHistoryEvents(ctx context.Context, ownerID string) ([]model.HistoryEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.eventOrder[ownerID]
	out := make([]model.HistoryEvent, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.events[id])
	}
	return out, nil
}

// --- refresh tokens ---

func (s *Store) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	rt := &model.RefreshToken{
		ID:        id,
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	s.tokens[id] = rt
	s.tokenByHash[tokenHash] = id
	return id, nil
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.tokenByHash[tokenHash]
	if !ok {
		return nil, fmt.Errorf("%w: refresh token", model.ErrNotFound)
	}
	cp := *s.tokens[id]
	return &cp, nil
}

func (s *Store) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.tokens[oldID]
	if !ok {
		return fmt.Errorf("%w: refresh token %s", model.ErrNotFound, oldID)
	}
	old.Revoked = true
	old.ReplacedBy = &newID

	s.tokens[newID] = &model.RefreshToken{
		ID:        newID,
		UserID:    userID,
		TokenHash: newHash,
		ExpiresAt: newExpiry,
		CreatedAt: time.Now().UTC(),
	}
	s.tokenByHash[newHash] = newID
	return nil
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rt := range s.tokens {
		if rt.UserID == userID {
			rt.Revoked = true
		}
	}
	return nil
}
