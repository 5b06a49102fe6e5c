package http

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/theatre-reservations/internal/domain"
	"github.com/robertarktes/theatre-reservations/internal/query"
)

const maxPosterBytes = 5 << 20

type performanceResponse struct {
	ID               int64     `json:"id"`
	PlayID           int64     `json:"play_id"`
	PlayName         string    `json:"play_name"`
	HallID           int64     `json:"theatre_hall_id"`
	HallName         string    `json:"theatre_hall_name"`
	ShowTime         time.Time `json:"show_time"`
	Poster           *string   `json:"poster"`
	TicketsAvailable int64     `json:"tickets_available"`
}

func toPerformanceResponse(p domain.PerformanceDetail) performanceResponse {
	return performanceResponse{
		ID:               p.ID,
		PlayID:           p.PlayID,
		PlayName:         p.PlayName,
		HallID:           p.HallID,
		HallName:         p.HallName,
		ShowTime:         p.ShowTime,
		Poster:           p.Poster,
		TicketsAvailable: p.TicketsAvailable,
	}
}

func (h *Handlers) ListPerformances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.PerformanceFilter{PlayName: q.Get("name")}
	if raw := q.Get("date"); raw != "" {
		date, err := query.ParseDate("date", raw)
		if err != nil {
			h.respondError(w, err, "performance")
			return
		}
		f.Date = &date
	}
	perfs, err := h.performances.ListPerformances(r.Context(), f)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	out := make([]performanceResponse, 0, len(perfs))
	for _, p := range perfs {
		out = append(out, toPerformanceResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetPerformance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	p, err := h.performances.GetPerformance(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	respondJSON(w, http.StatusOK, toPerformanceResponse(*p))
}

type performanceRequest struct {
	PlayID   int64     `json:"play_id"`
	HallID   int64     `json:"theatre_hall_id"`
	ShowTime time.Time `json:"show_time"`
}

func (req performanceRequest) validate() error {
	if req.PlayID <= 0 {
		return &domain.FieldError{Field: "play_id", Message: "must reference an existing play"}
	}
	if req.HallID <= 0 {
		return &domain.FieldError{Field: "theatre_hall_id", Message: "must reference an existing theatre hall"}
	}
	if req.ShowTime.IsZero() {
		return &domain.FieldError{Field: "show_time", Message: "must be set"}
	}
	return nil
}

func (h *Handlers) CreatePerformance(w http.ResponseWriter, r *http.Request) {
	var req performanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	p := domain.Performance{PlayID: req.PlayID, HallID: req.HallID, ShowTime: req.ShowTime}
	if err := h.performances.CreatePerformance(r.Context(), &p); err != nil {
		h.respondError(w, err, "play or theatre hall")
		return
	}
	h.recordAudit(r, "performance.created", map[string]interface{}{
		"performance_id": p.ID, "play_id": p.PlayID, "hall_id": p.HallID,
	})
	h.publishEvent(r, "performance.created", map[string]interface{}{
		"performance_id": p.ID,
		"play_id":        p.PlayID,
		"hall_id":        p.HallID,
		"show_time":      p.ShowTime,
	})
	detail, err := h.performances.GetPerformance(r.Context(), p.ID)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	respondJSON(w, http.StatusCreated, toPerformanceResponse(*detail))
}

func (h *Handlers) UpdatePerformance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	var req performanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	p := domain.Performance{ID: id, PlayID: req.PlayID, HallID: req.HallID, ShowTime: req.ShowTime}
	if err := h.performances.UpdatePerformance(r.Context(), &p); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	detail, err := h.performances.GetPerformance(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	respondJSON(w, http.StatusOK, toPerformanceResponse(*detail))
}

func (h *Handlers) DeletePerformance(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	if err := h.performances.DeletePerformance(r.Context(), id); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	h.recordAudit(r, "performance.deleted", map[string]interface{}{"performance_id": id})
	w.WriteHeader(http.StatusNoContent)
}

// UploadPoster stores the request body under the media directory and
// records the file reference on the performance.
func (h *Handlers) UploadPoster(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	if _, err := h.performances.GetPerformance(r.Context(), id); err != nil {
		h.respondError(w, err, "performance")
		return
	}
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "image/") {
		h.respondError(w, &domain.FieldError{Field: "poster", Message: "content type must be image/*"}, "performance")
		return
	}
	ext := ".img"
	switch ct {
	case "image/png":
		ext = ".png"
	case "image/jpeg":
		ext = ".jpg"
	case "image/webp":
		ext = ".webp"
	}
	name := fmt.Sprintf("performance-%d-%s%s", id, uuid.NewString(), ext)
	path := filepath.Join(h.cfg.MediaDir, name)

	f, err := os.Create(path)
	if err != nil {
		h.respondError(w, err, "performance")
		return
	}
	_, copyErr := io.Copy(f, io.LimitReader(r.Body, maxPosterBytes+1))
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		h.respondError(w, copyErr, "performance")
		return
	}
	if fi, err := os.Stat(path); err == nil && fi.Size() > maxPosterBytes {
		os.Remove(path)
		h.respondError(w, &domain.FieldError{Field: "poster", Message: "image exceeds 5 MiB"}, "performance")
		return
	}
	if err := h.performances.SetPoster(r.Context(), id, name); err != nil {
		os.Remove(path)
		h.respondError(w, err, "performance")
		return
	}
	h.recordAudit(r, "performance.poster_uploaded", map[string]interface{}{
		"performance_id": id, "poster": name,
	})
	respondJSON(w, http.StatusOK, map[string]string{"poster": name})
}

func (h *Handlers) publishEvent(r *http.Request, key string, payload interface{}) {
	if h.events == nil {
		return
	}
	if err := h.events.PublishJSON(r.Context(), key, payload); err != nil {
		h.logger.WithError(err).Warn("event publish failed")
	}
}
