package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"healthrecord-api/internal/model"
)

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

	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (id, email, display_name, password_hash, status)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at, updated_at`,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.Status,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, status, created_at, updated_at
		 FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	u := &model.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, status, created_at, updated_at
		 FROM users WHERE email = $1`, model.NormalizeEmail(email),
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no user for email", model.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd model.UserUpdate) (*model.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	u := &model.User{}
	err = tx.QueryRow(ctx,
		`SELECT id, email, display_name, password_hash, status, created_at, updated_at
		 FROM users WHERE id = $1 FOR UPDATE`, id,
	).Scan(&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("user", id)
	}
	if err != nil {
		return nil, err
	}

	if err := upd.Apply(u); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE users SET email=$1, display_name=$2, updated_at=NOW()
		 WHERE id=$3 RETURNING updated_at`,
		u.Email, u.DisplayName, id,
	).Scan(&u.UpdatedAt)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("%w: email already registered", model.ErrConflict)
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Store) DisableUser(ctx context.Context, id string) error {
	var disabled time.Time
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET status=$1, updated_at=NOW() WHERE id=$2 RETURNING updated_at`,
		model.StatusDisabled, id,
	).Scan(&disabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound("user", id)
	}
	return err
}
