package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/robertarktes/theatre-reservations/internal/domain"
	"github.com/robertarktes/theatre-reservations/internal/idempotency"
	"github.com/robertarktes/theatre-reservations/internal/observability"
	"github.com/robertarktes/theatre-reservations/internal/query"
)

type ticketResponse struct {
	ID            int64      `json:"id"`
	PerformanceID int64      `json:"performance_id"`
	Row           int32      `json:"row"`
	Seat          int32      `json:"seat"`
	PlayName      string     `json:"play_name,omitempty"`
	HallName      string     `json:"theatre_hall_name,omitempty"`
	ShowTime      *time.Time `json:"show_time,omitempty"`
}

type reservationResponse struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id"`
	CreatedAt time.Time        `json:"created_at"`
	Tickets   []ticketResponse `json:"tickets"`
}

func toReservationResponse(res domain.Reservation) reservationResponse {
	out := reservationResponse{
		ID:        res.ID,
		UserID:    res.UserID,
		CreatedAt: res.CreatedAt,
		Tickets:   make([]ticketResponse, 0, len(res.Tickets)),
	}
	for _, t := range res.Tickets {
		out.Tickets = append(out.Tickets, ticketResponse{
			ID:            t.ID,
			PerformanceID: t.PerformanceID,
			Row:           t.Row,
			Seat:          t.Seat,
		})
	}
	return out
}

func toReservationDetailResponse(res domain.ReservationDetail) reservationResponse {
	out := reservationResponse{
		ID:        res.ID,
		UserID:    res.UserID,
		CreatedAt: res.CreatedAt,
		Tickets:   make([]ticketResponse, 0, len(res.Tickets)),
	}
	for _, t := range res.Tickets {
		st := t.ShowTime
		out.Tickets = append(out.Tickets, ticketResponse{
			ID:            t.ID,
			PerformanceID: t.PerformanceID,
			Row:           t.Row,
			Seat:          t.Seat,
			PlayName:      t.PlayName,
			HallName:      t.HallName,
			ShowTime:      &st,
		})
	}
	return out
}

// ListReservations returns only the authenticated user's reservations,
// newest first.
func (h *Handlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}
	q := r.URL.Query()
	limit, offset, err := query.ParsePage(q.Get("limit"), q.Get("offset"), 20, 100)
	if err != nil {
		h.respondError(w, err, "reservation")
		return
	}
	reservations, err := h.reservations.ListReservations(r.Context(), userID, limit, offset)
	if err != nil {
		h.respondError(w, err, "reservation")
		return
	}
	out := make([]reservationResponse, 0, len(reservations))
	for _, res := range reservations {
		out = append(out, toReservationDetailResponse(res))
	}
	respondJSON(w, http.StatusOK, out)
}

type ticketRequestBody struct {
	PerformanceID int64 `json:"performance_id"`
	Row           int32 `json:"row"`
	Seat          int32 `json:"seat"`
}

type reservationRequest struct {
	Tickets []ticketRequestBody `json:"tickets"`
}

// CreateReservation commits all requested tickets atomically. A seat
// already taken rejects the whole request with 409 and writes nothing.
func (h *Handlers) CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	if h.idemp != nil && idempKey != "" {
		if stored, err := h.idemp.Get(r.Context(), userID, idempKey); err == nil && stored != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(stored.Status)
			w.Write(stored.Result)
			return
		}
	}

	var req reservationRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "reservation")
		return
	}
	reqs := make([]domain.TicketRequest, 0, len(req.Tickets))
	perfIDs := make([]int64, 0, len(req.Tickets))
	for _, t := range req.Tickets {
		reqs = append(reqs, domain.TicketRequest{PerformanceID: t.PerformanceID, Row: t.Row, Seat: t.Seat})
		perfIDs = append(perfIDs, t.PerformanceID)
	}
	if len(reqs) == 0 {
		h.respondError(w, &domain.FieldError{Field: "tickets", Message: "at least one ticket is required"}, "reservation")
		return
	}

	halls, err := h.reservations.HallsForPerformances(r.Context(), perfIDs)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	if err := domain.ValidateTicketRequests(reqs, halls); err != nil {
		h.respondError(w, err, "performance")
		return
	}

	res, err := h.reservations.CreateReservation(r.Context(), userID, reqs)
	if err != nil {
		var sc *domain.SeatConflictError
		if errors.As(err, &sc) {
			observability.SeatConflicts.Inc()
		}
		h.respondError(w, err, "performance")
		return
	}

	observability.ReservationsTotal.Inc()
	observability.TicketsReserved.Add(float64(len(res.Tickets)))

	if h.audit != nil {
		if err := h.audit.RecordReservation(r.Context(), *res); err != nil {
			h.logger.WithError(err).Warn("audit record failed")
		}
	}
	h.publishEvent(r, "reservation.created", map[string]interface{}{
		"reservation_id": res.ID,
		"user_id":        res.UserID,
		"tickets":        len(res.Tickets),
	})

	body := toReservationResponse(*res)
	if h.idemp != nil && idempKey != "" {
		if raw, err := json.Marshal(body); err == nil {
			if err := h.idemp.Set(r.Context(), userID, idempKey, idempotency.Response{
				Status: http.StatusCreated,
				Result: raw,
			}); err != nil {
				h.logger.WithError(err).Warn("idempotency store failed")
			}
		}
	}
	respondJSON(w, http.StatusCreated, body)
}
