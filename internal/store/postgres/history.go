package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"healthrecord-api/internal/model"
)

// History events carry no update path; the table is insert, read and
// delete only.

func (s *Store) CreateHistoryEvent(ctx context.Context, h *model.HistoryEvent) error {
	if err := h.Validate(); err != nil {
		return err
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}

	return s.pool.QueryRow(ctx,
		`INSERT INTO history_events (id, owner_id, date, description, doctor)
		 VALUES ($1,$2,$3,$4,$5)
		 RETURNING created_at`,
		h.ID, h.OwnerID, h.Date, h.Description, h.Doctor,
	).Scan(&h.CreatedAt)
}

func (s *Store) GetHistoryEvent(ctx context.Context, ownerID, id string) (*model.HistoryEvent, error) {
	h := &model.HistoryEvent{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, owner_id, date, description, doctor, created_at
		 FROM history_events WHERE id = $1 AND owner_id = $2`, id, ownerID,
	).Scan(&h.ID, &h.OwnerID, &h.Date, &h.Description, &h.Doctor, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("history event", id)
	}
	if err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Store) DeleteHistoryEvent(ctx context.Context, ownerID, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM history_events WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("history event", id)
	}
	return nil
}

func (s *Store) ListHistoryEvents(ctx context.Context, ownerID string) ([]model.HistoryEvent, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, owner_id, date, description, doctor, created_at
		 FROM history_events WHERE owner_id = $1 ORDER BY seq`, ownerID)
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
