package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"healthrecord-api/internal/model"
)

func (s *Store) CreateMedication(ctx context.Context, m *model.Medication) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	return s.pool.QueryRow(ctx,
		`INSERT INTO medications (id, owner_id, name, dosage, frequency)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at, updated_at`,
		m.ID, m.OwnerID, m.Name, m.Dosage, m.Frequency,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (s *Store) GetMedication(ctx context.Context, ownerID, id string) (*model.Medication, error) {
	m := &model.Medication{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, name, dosage, frequency, created_at, updated_at
		 FROM medications WHERE id = $1 AND owner_id = $2`, id, ownerID,
	).Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &m.Frequency, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("medication", id)
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) UpdateMedication(ctx context.Context, ownerID, id string, upd model.MedicationUpdate) (*model.Medication, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	m := &model.Medication{}
	err = tx.QueryRow(ctx,
		`SELECT id, owner_id, name, dosage, frequency, created_at, updated_at
		 FROM medications WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, ownerID,
	).Scan(&m.ID, &m.OwnerID, &m.Name, &m.Dosage, &m.Frequency, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("medication", id)
	}
	if err != nil {
		return nil, err
	}

	if err := upd.Apply(m); err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx,
		`UPDATE medications SET name=$1, dosage=$2, frequency=$3, updated_at=NOW()
		 WHERE id=$4 RETURNING updated_at`,
		m.Name, m.Dosage, m.Frequency, id,
	).Scan(&m.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) DeleteMedication(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM medications WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("medication", id)
	}
	return nil
}

func (s *Store) ListMedications(ctx context.Context, ownerID string) ([]model.Medication, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, name, dosage, frequency, created_at, updated_at
		 FROM medications WHERE owner_id = $1 ORDER BY seq`, ownerID)
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
