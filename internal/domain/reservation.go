package domain

import (
	"fmt"
	"sort"
)

// TicketRequest is one seat asked for in a reservation request.
type TicketRequest struct {
	PerformanceID int64
	Row           int32
	Seat          int32
}

// ValidateHallGeometry rejects halls whose seat grid is not at least 1x1.
func ValidateHallGeometry(h TheatreHall) error {
	if h.Rows < 1 {
		return &FieldError{Field: "rows", Message: "rows must be a positive integer"}
	}
	if h.SeatsInRow < 1 {
		return &FieldError{Field: "seats_in_row", Message: "seats_in_row must be a positive integer"}
	}
	return nil
}

// ValidateSeat checks a seat coordinate against the hall's grid. Row is
// checked before seat so error messages are deterministic.
func ValidateSeat(row, seat int32, hall TheatreHall) error {
	if row < 1 || row > hall.Rows {
		return &FieldError{
			Field:   "row",
			Message: fmt.Sprintf("row number must be in available range: (1, rows): (1, %d)", hall.Rows),
		}
	}
	if seat < 1 || seat > hall.SeatsInRow {
		return &FieldError{
			Field:   "seat",
			Message: fmt.Sprintf("seat number must be in available range: (1, seats_in_row): (1, %d)", hall.SeatsInRow),
		}
	}
	return nil
}

// ValidateTicketRequests runs the range check over every requested ticket
// before anything is written. Requests are checked in request order and
// the first violation is returned. halls maps performance id to the hall
// the performance is staged in.
func ValidateTicketRequests(reqs []TicketRequest, halls map[int64]TheatreHall) error {
	if len(reqs) == 0 {
		return &FieldError{Field: "tickets", Message: "at least one ticket is required"}
	}
	for _, r := range reqs {
		hall, ok := halls[r.PerformanceID]
		if !ok {
			return ErrNotFound
		}
		if err := ValidateSeat(r.Row, r.Seat, hall); err != nil {
			return err
		}
	}
	return nil
}

// SortTickets orders tickets by (row, seat) ascending, the order
// reservations are returned in.
func SortTickets(ts []Ticket) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Row != ts[j].Row {
			return ts[i].Row < ts[j].Row
		}
		return ts[i].Seat < ts[j].Seat
	})
}
