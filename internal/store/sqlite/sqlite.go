// Package sqlite implements the domain store on a local SQLite file via
// the pure-Go modernc.org driver. It serves single-node deployments where
// running PostgreSQL would be overkill.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"healthrecord-api/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    display_name  TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL DEFAULT '',
    status        TEXT NOT NULL DEFAULT 'active',
    created_at    TIMESTAMP NOT NULL,
    updated_at    TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS medications (
    id         TEXT PRIMARY KEY,
    owner_id   TEXT NOT NULL REFERENCES users(id),
    name       TEXT NOT NULL,
    dosage     TEXT NOT NULL DEFAULT '',
    frequency  TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS medications_owner_idx ON medications (owner_id);
CREATE TABLE IF NOT EXISTS appointments (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL REFERENCES users(id),
    date        TEXT NOT NULL,
    time_of_day TEXT NOT NULL DEFAULT '',
    description TEXT NOT NULL,
    doctor      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL,
    updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS appointments_owner_idx ON appointments (owner_id);
CREATE TABLE IF NOT EXISTS history_events (
    id          TEXT PRIMARY KEY,
    owner_id    TEXT NOT NULL REFERENCES users(id),
    date        TEXT NOT NULL,
    description TEXT NOT NULL,
    doctor      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS history_events_owner_idx ON history_events (owner_id);
CREATE TABLE IF NOT EXISTS refresh_tokens (
    id          TEXT PRIMARY KEY,
    user_id     TEXT NOT NULL REFERENCES users(id),
    token_hash  TEXT NOT NULL UNIQUE,
    expires_at  TIMESTAMP NOT NULL,
    revoked     INTEGER NOT NULL DEFAULT 0,
    replaced_by TEXT,
    created_at  TIMESTAMP NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database file and bootstraps the schema.
func Open(path string) (*Store, error) {
	db, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFound(kind, id string) error {
	return fmt.Errorf("%w: %s %s", model.ErrNotFound, kind, id)
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	u.Email = model.NormalizeEmail(u.Email)
	if err := u.Validate(); err != nil {
		return err
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

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, status, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Status, u.CreatedAt, u.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	return err
}

func (s *Store) scanUser(row *sql.Row, onMiss error) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, onMiss
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, status, created_at, updated_at
		 FROM users WHERE id = ?`, id)
	return s.scanUser(row, notFound("user", id))
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, status, created_at, updated_at
		 FROM users WHERE email = ?`, model.NormalizeEmail(email))
	return s.scanUser(row, fmt.Errorf("%w: no user for email", model.ErrNotFound))
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	u := &model.User{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, email, display_name, password_hash, status, created_at, updated_at
		 FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, err
	}

	if err := upd.Apply(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET email=?, display_name=?, updated_at=? WHERE id=?`,
		u.Email, u.DisplayName, u.UpdatedAt, id,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) DisableUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET status=?, updated_at=? WHERE id=?`,
		model.StatusDisabled, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("user", id)
	}
	return nil
}

// --- medications ---

func (s *Store) CreateMedication(ctx context.Context, m *model.Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO medications (id, owner_id, name, dosage, frequency, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?)`,
		m.ID, m.OwnerID, m.Name, m.Dosage, m.Frequency, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

func (s *Store) GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error) {
	m := &model.Medication{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, dosage, frequency, created_at, updated_at
		 FROM medications WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &m.Frequency, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("medication", id)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) UpdateMedication(ctx context.Context, ownerID, id string, upd model.MedicationUpdate) (*model.Medication, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	m := &model.Medication{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, owner_id, name, dosage, frequency, created_at, updated_at
		 FROM medications WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &m.Frequency, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("medication", id)
	}
	if err != nil {
		return nil, err
	}

	if err := upd.Apply(m); err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE medications SET name=?, dosage=?, frequency=?, updated_at=? WHERE id=?`,
		m.Name, m.Dosage, m.Frequency, m.UpdatedAt, id,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) DeleteMedication(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM medications WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("medication", id)
	}
	return nil
}

func (s *Store) ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, name, dosage, frequency, created_at, updated_at
		 FROM medications WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Medication{}
	for rows.Next() {
		var m model.Medication
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &m.Frequency, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// --- appointments ---

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO appointments (id, owner_id, date, time_of_day, description, doctor, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?)`,
		a.ID, a.OwnerID, a.Date, a.Time, a.Description, a.Doctor, a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func (s *Store) GetAppointment(ctx context.Context, ownerID, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, date, time_of_day, description, doctor, created_at, updated_at
		 FROM appointments WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Date, &a.Time, &a.Description, &a.Doctor, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("appointment", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ownerID, id string, upd model.AppointmentUpdate) (*model.Appointment, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	a := &model.Appointment{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, owner_id, date, time_of_day, description, doctor, created_at, updated_at
		 FROM appointments WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Date, &a.Time, &a.Description, &a.Doctor, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("appointment", id)
	}
	if err != nil {
		return nil, err
	}

	if err := upd.Apply(a); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx,
		`UPDATE appointments SET date=?, time_of_day=?, description=?, doctor=?, updated_at=? WHERE id=?`,
		a.Date, a.Time, a.Description, a.Doctor, a.UpdatedAt, id,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM appointments WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("appointment", id)
	}
	return nil
}

func (s *Store) ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, date, time_of_day, description, doctor, created_at, updated_at
		 FROM appointments WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Appointment{}
	for rows.Next() {
		var a model.Appointment
		if err := rows.Scan(&a.ID, &a.OwnerID, &a.Date, &a.Time, &a.Description, &a.Doctor, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// --- history events ---

func (s *Store) CreateHistoryEvent(ctx context.Context, h *model.HistoryEvent) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO history_events (id, owner_id, date, description, doctor, created_at)
		 VALUES (?,?,?,?,?,?)`,
		h.ID, h.OwnerID, h.Date, h.Description, h.Doctor, h.CreatedAt,
	)
	return err
}

func (s *Store) GetHistoryEvent(ctx context.Context, ownerID, id string) (*model.HistoryEvent, error) {
	h := &model.HistoryEvent{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, date, description, doctor, created_at
		 FROM history_events WHERE id = ? AND owner_id = ?`, id, ownerID,
	).Scan(&h.ID, &h.OwnerID, &h.Date, &h.Description, &h.Doctor, &h.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("history event", id)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Store) DeleteHistoryEvent(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM history_events WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("history event", id)
	}
	return nil
}

func (s *Store) ListHistoryEvents(ctx context.Context, ownerID string) ([]model.HistoryEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, date, description, doctor, created_at
		 FROM history_events WHERE owner_id = ? ORDER BY rowid`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.HistoryEvent{}
	for rows.Next() {
		var h model.HistoryEvent
		if err := rows.Scan(&h.ID, &h.OwnerID, &h.Date, &h.Description, &h.Doctor, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// --- refresh tokens ---

func (s *Store) CreateRefreshToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES (?,?,?,?,?)`,
		id, userID, tokenHash, expiresAt, time.Now().UTC(),
	)
	return id, err
}

func (s *Store) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	rt := &model.RefreshToken{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, token_hash, expires_at, revoked, replaced_by, created_at
		 FROM refresh_tokens WHERE token_hash = ?`, tokenHash,
	).Scan(&rt.ID, &rt.UserID, &rt.TokenHash, &rt.ExpiresAt, &rt.Revoked, &rt.ReplacedBy, &rt.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: refresh token", model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (s *Store) RotateRefreshToken(ctx context.Context, oldID, newID, userID, newHash string, newExpiry time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1, replaced_by = ? WHERE id = ?`,
		newID, oldID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("refresh token", oldID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		 VALUES (?,?,?,?,?)`,
		newID, userID, newHash, newExpiry, time.Now().UTC(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) RevokeAllRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = 1 WHERE user_id = ? AND revoked = 0`,
		userID,
	)
	return err
}
