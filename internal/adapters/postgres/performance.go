package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/theatre-reservations/internal/domain"
)

// tickets_available is computed against the live ticket count on every
// read; it is never cached or stored.
const performanceSelect = `
	SELECT p.id, p.play_id, pl.name, p.hall_id, h.name, p.show_time, p.poster,
	       h.seat_rows * h.seats_in_row - COUNT(t.id) AS tickets_available
	FROM performances p
	JOIN plays pl ON pl.id = p.play_id
	JOIN theatre_halls h ON h.id = p.hall_id
	LEFT JOIN tickets t ON t.performance_id = p.id
`

const performanceGroupBy = `
	GROUP BY p.id, p.play_id, pl.name, p.hall_id, h.name, p.show_time, p.poster,
	         h.seat_rows, h.seats_in_row
`

func (r *Repository) ListPerformances(ctx context.Context, f domain.PerformanceFilter) ([]domain.PerformanceDetail, error) {
	var date *time.Time
	if f.Date != nil {
		d := f.Date.UTC()
		date = &d
	}

	rows, err := r.pool.Query(ctx, performanceSelect+`
		WHERE ($1 = '' OR pl.name ILIKE '%' || $1 || '%')
		  AND ($2::date IS NULL OR (p.show_time AT TIME ZONE 'UTC')::date = $2::date)
	`+performanceGroupBy+`
		ORDER BY p.show_time, p.id
	`, f.PlayName, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perfs []domain.PerformanceDetail
	for rows.Next() {
		var p domain.PerformanceDetail
		if err := rows.Scan(&p.ID, &p.PlayID, &p.PlayName, &p.HallID, &p.HallName,
			&p.ShowTime, &p.Poster, &p.TicketsAvailable); err != nil {
			return nil, err
		}
		perfs = append(perfs, p)
	}
	return perfs, rows.Err()
}

func (r *Repository) GetPerformance(ctx context.Context, id int64) (*domain.PerformanceDetail, error) {
	var p domain.PerformanceDetail
	err := r.pool.QueryRow(ctx, performanceSelect+`
		WHERE p.id = $1
	`+performanceGroupBy, id).Scan(&p.ID, &p.PlayID, &p.PlayName, &p.HallID, &p.HallName,
		&p.ShowTime, &p.Poster, &p.TicketsAvailable)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) CreatePerformance(ctx context.Context, p *domain.Performance) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO performances (play_id, hall_id, show_time)
		VALUES ($1, $2, $3)
		RETURNING id
	`, p.PlayID, p.HallID, p.ShowTime).Scan(&p.ID)
	return mapPgError(err)
}

func (r *Repository) UpdatePerformance(ctx context.Context, p *domain.Performance) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE performances SET play_id = $2, hall_id = $3, show_time = $4 WHERE id = $1
	`, p.ID, p.PlayID, p.HallID, p.ShowTime)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeletePerformance removes the performance; its tickets go with it via
// the declared FK cascade.
func (r *Repository) DeletePerformance(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM performances WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) SetPoster(ctx context.Context, id int64, ref string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE performances SET poster = $2 WHERE id = $1
	`, id, ref)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HallsForPerformances resolves each performance id to the hall it is
// staged in, for seat-range validation ahead of a reservation commit.
// Unknown ids are simply absent from the result map.
func (r *Repository) HallsForPerformances(ctx context.Context, ids []int64) (map[int64]domain.TheatreHall, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, h.id, h.name, h.seat_rows, h.seats_in_row
		FROM performances p
		JOIN theatre_halls h ON h.id = p.hall_id
		WHERE p.id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	halls := make(map[int64]domain.TheatreHall)
	for rows.Next() {
		var perfID int64
		var h domain.TheatreHall
		if err := rows.Scan(&perfID, &h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, err
		}
		halls[perfID] = h
	}
	return halls, rows.Err()
}
