package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"healthrecord-api/internal/model"
)

func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	return s.pool.QueryRow(ctx,
		`INSERT INTO appointments (id, owner_id, date, time_of_day, description, doctor)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING created_at, updated_at`,
		a.ID, a.OwnerID, a.Date, a.Time, a.Description, a.Doctor,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (s *Store) GetAppointment(ctx context.Context, ownerID, id string) (*model.Appointment, error) {
	a := &model.Appointment{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, date, time_of_day, description, doctor, created_at, updated_at
		 FROM appointments WHERE id = $1 AND owner_id = $2`, id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Date, &a.Time, &a.Description, &a.Doctor, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("appointment", id)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) UpdateAppointment(ctx context.Context, ownerID, id string, upd model.AppointmentUpdate) (*model.Appointment, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	a := &model.Appointment{}
	err = tx.QueryRow(ctx,
		`SELECT id, owner_id, date, time_of_day, description, doctor, created_at, updated_at
		 FROM appointments WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID,
	).Scan(&a.ID, &a.OwnerID, &a.Date, &a.Time, &a.Description, &a.Doctor, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("appointment", id)
	}
	if err != nil {
		return nil, err
	}

	if err := upd.Apply(a); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE appointments SET date=$1, time_of_day=$2, description=$3, doctor=$4, updated_at=NOW()
		 WHERE id=$5 RETURNING updated_at`,
		a.Date, a.Time, a.Description, a.Doctor, id,
	).Scan(&a.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) DeleteAppointment(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM appointments WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("appointment", id)
	}
	return nil
}

func (s *Store) ListAppointments(ctx context.Context, ownerID string) ([]model.Appointment, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, date, time_of_day, description, doctor, created_at, updated_at
		 FROM appointments WHERE owner_id = $1 ORDER BY seq`, ownerID)
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
