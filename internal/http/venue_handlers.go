package http

import (
	"net/http"
	"strings"

	"github.com/robertarktes/theatre-reservations/internal/domain"
)

type hallResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Rows       int32  `json:"rows"`
	SeatsInRow int32  `json:"seats_in_row"`
	Capacity   int64  `json:"capacity"`
}

func toHallResponse(hall domain.TheatreHall) hallResponse {
	return hallResponse{
		ID:         hall.ID,
		Name:       hall.Name,
		Rows:       hall.Rows,
		SeatsInRow: hall.SeatsInRow,
		Capacity:   hall.Capacity(),
	}
}

func (h *Handlers) ListHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.venues.ListHalls(r.Context())
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	out := make([]hallResponse, 0, len(halls))
	for _, hall := range halls {
		out = append(out, toHallResponse(hall))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetHall(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	hall, err := h.venues.GetHall(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	respondJSON(w, http.StatusOK, toHallResponse(*hall))
}

type hallRequest struct {
	Name       string `json:"name"`
	Rows       int32  `json:"rows"`
	SeatsInRow int32  `json:"seats_in_row"`
}

func (req hallRequest) toDomain(id int64) (*domain.TheatreHall, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &domain.FieldError{Field: "name", Message: "must not be empty"}
	}
	hall := domain.TheatreHall{ID: id, Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := domain.ValidateHallGeometry(hall); err != nil {
		return nil, err
	}
	return &hall, nil
}

func (h *Handlers) CreateHall(w http.ResponseWriter, r *http.Request) {
	var req hallRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	hall, err := req.toDomain(0)
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	if err := h.venues.CreateHall(r.Context(), hall); err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	h.recordAudit(r, "hall.created", map[string]interface{}{"hall_id": hall.ID, "name": hall.Name})
	respondJSON(w, http.StatusCreated, toHallResponse(*hall))
}

func (h *Handlers) UpdateHall(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	var req hallRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	hall, err := req.toDomain(id)
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	if err := h.venues.UpdateHall(r.Context(), hall); err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	respondJSON(w, http.StatusOK, toHallResponse(*hall))
}

func (h *Handlers) DeleteHall(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	if err := h.venues.DeleteHall(r.Context(), id); err != nil {
		h.respondError(w, err, "theatre hall")
		return
	}
	h.recordAudit(r, "hall.deleted", map[string]interface{}{"hall_id": id})
	w.WriteHeader(http.StatusNoContent)
}
