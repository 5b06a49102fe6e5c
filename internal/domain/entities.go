package domain

import "time"

type Genre struct {
	ID   int64
	Name string
}

type Actor struct {
	ID        int64
	FirstName string
	LastName  string
}

func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// Play references its genres and actors by id. Display names are
// resolved into PlayDetail on the read path.
type Play struct {
	ID          int64
	Name        string
	Description *string
	GenreIDs    []int64
	ActorIDs    []int64
}

type PlayDetail struct {
	ID          int64
	Name        string
	Description *string
	Genres      []Genre
	Actors      []Actor
}

type TheatreHall struct {
	ID         int64
	Name       string
	Rows       int32
	SeatsInRow int32
}

// Capacity is always derived, never stored. It is widened to int64 so
// the product cannot overflow and availability math shares its width.
func (h TheatreHall) Capacity() int64 {
	return int64(h.Rows) * int64(h.SeatsInRow)
}

type Performance struct {
	ID       int64
	PlayID   int64
	HallID   int64
	ShowTime time.Time
	Poster   *string
}

// PerformanceDetail carries the resolved play and hall names plus the
// availability count computed against committed tickets.
type PerformanceDetail struct {
	ID               int64
	PlayID           int64
	PlayName         string
	HallID           int64
	HallName         string
	ShowTime         time.Time
	Poster           *string
	TicketsAvailable int64
}

type Ticket struct {
	ID            int64
	PerformanceID int64
	ReservationID int64
	Row           int32
	Seat          int32
}

type Reservation struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	Tickets   []Ticket
}

// TicketDetail is a ticket with its performance resolved for display.
type TicketDetail struct {
	Ticket
	PlayName string
	HallName string
	ShowTime time.Time
}

type ReservationDetail struct {
	ID        int64
	UserID    int64
	CreatedAt time.Time
	Tickets   []TicketDetail
}

type PlayFilter struct {
	Name     string
	GenreIDs []int64
	ActorIDs []int64
}

type PerformanceFilter struct {
	PlayName string
	Date     *time.Time
}
