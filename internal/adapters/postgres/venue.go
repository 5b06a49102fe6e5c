package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/theatre-reservations/internal/domain"
)

// Hall geometry lives in seat_rows/seats_in_row; "rows" and "row" are
// reserved words in PostgreSQL. Capacity is never stored.

func (r *Repository) ListHalls(ctx context.Context) ([]domain.TheatreHall, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, seat_rows, seats_in_row FROM theatre_halls ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var halls []domain.TheatreHall
	for rows.Next() {
		var h domain.TheatreHall
		if err := rows.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, err
		}
		halls = append(halls, h)
	}
	return halls, rows.Err()
}

func (r *Repository) GetHall(ctx context.Context, id int64) (*domain.TheatreHall, error) {
	var h domain.TheatreHall
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, seat_rows, seats_in_row FROM theatre_halls WHERE id = $1
	`, id).Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *Repository) CreateHall(ctx context.Context, h *domain.TheatreHall) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO theatre_halls (name, seat_rows, seats_in_row)
		VALUES ($1, $2, $3)
		RETURNING id
	`, h.Name, h.Rows, h.SeatsInRow).Scan(&h.ID)
	return mapPgError(err)
}

func (r *Repository) UpdateHall(ctx context.Context, h *domain.TheatreHall) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE theatre_halls SET name = $2, seat_rows = $3, seats_in_row = $4 WHERE id = $1
	`, h.ID, h.Name, h.Rows, h.SeatsInRow)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteHall removes the hall and, through declared FK cascades, its
// performances and their tickets.
func (r *Repository) DeleteHall(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM theatre_halls WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
