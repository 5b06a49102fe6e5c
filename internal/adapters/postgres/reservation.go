package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/robertarktes/theatre-reservations/internal/domain"
)

// CreateReservation persists the reservation and all requested tickets
// as one transaction: either every ticket commits or none does. The
// unique constraint on (performance_id, seat_row, seat) is what decides
// races between concurrent requests for the same seat; the loser gets a
// SeatConflictError naming the contested coordinate.
func (r *Repository) CreateReservation(ctx context.Context, userID int64, reqs []domain.TicketRequest) (*domain.Reservation, error) {
	var res domain.Reservation
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO reservations (user_id) VALUES ($1) RETURNING id, created_at
		`, userID).Scan(&res.ID, &res.CreatedAt)
		if err != nil {
			return err
		}
		res.UserID = userID

		for _, req := range reqs {
			t := domain.Ticket{
				PerformanceID: req.PerformanceID,
				ReservationID: res.ID,
				Row:           req.Row,
				Seat:          req.Seat,
			}
			err := tx.QueryRow(ctx, `
				INSERT INTO tickets (performance_id, reservation_id, seat_row, seat)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, t.PerformanceID, t.ReservationID, t.Row, t.Seat).Scan(&t.ID)
			if err != nil {
				var pgErr *pgconn.PgError
				if errors.As(err, &pgErr) && pgErr.Code == UniqueViolationCode {
					return &domain.SeatConflictError{
						PerformanceID: req.PerformanceID,
						Row:           req.Row,
						Seat:          req.Seat,
					}
				}
				return err
			}
			res.Tickets = append(res.Tickets, t)
		}

		domain.SortTickets(res.Tickets)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ListReservations returns the user's own reservations, newest first,
// each ticket resolved with its performance's play and hall for display.
// Tickets within a reservation are ordered by (row, seat).
func (r *Repository) ListReservations(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, created_at
		FROM reservations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []domain.ReservationDetail
	var ids []int64
	for rows.Next() {
		var res domain.ReservationDetail
		if err := rows.Scan(&res.ID, &res.UserID, &res.CreatedAt); err != nil {
			return nil, err
		}
		reservations = append(reservations, res)
		ids = append(ids, res.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return reservations, nil
	}

	byID := make(map[int64]*domain.ReservationDetail, len(reservations))
	for i := range reservations {
		byID[reservations[i].ID] = &reservations[i]
	}

	tRows, err := r.pool.Query(ctx, `
		SELECT t.id, t.performance_id, t.reservation_id, t.seat_row, t.seat,
		       pl.name, h.name, p.show_time
		FROM tickets t
		JOIN performances p ON p.id = t.performance_id
		JOIN plays pl ON pl.id = p.play_id
		JOIN theatre_halls h ON h.id = p.hall_id
		WHERE t.reservation_id = ANY($1)
		ORDER BY t.seat_row, t.seat
	`, ids)
	if err != nil {
		return nil, err
	}
	defer tRows.Close()

	for tRows.Next() {
		var td domain.TicketDetail
		if err := tRows.Scan(&td.ID, &td.PerformanceID, &td.ReservationID, &td.Row, &td.Seat,
			&td.PlayName, &td.HallName, &td.ShowTime); err != nil {
			return nil, err
		}
		byID[td.ReservationID].Tickets = append(byID[td.ReservationID].Tickets, td)
	}
	if err := tRows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}
