package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/theatre-reservations/internal/config"
	"github.com/robertarktes/theatre-reservations/internal/domain"
	"github.com/robertarktes/theatre-reservations/internal/idempotency"
	"github.com/robertarktes/theatre-reservations/internal/observability"
)

type CatalogStore interface {
	ListGenres(ctx context.Context) ([]domain.Genre, error)
	GetGenre(ctx context.Context, id int64) (*domain.Genre, error)
	CreateGenre(ctx context.Context, g *domain.Genre) error
	UpdateGenre(ctx context.Context, g *domain.Genre) error
	ListActors(ctx context.Context) ([]domain.Actor, error)
	GetActor(ctx context.Context, id int64) (*domain.Actor, error)
	CreateActor(ctx context.Context, a *domain.Actor) error
	UpdateActor(ctx context.Context, a *domain.Actor) error
	ListPlays(ctx context.Context, f domain.PlayFilter) ([]domain.PlayDetail, error)
	GetPlay(ctx context.Context, id int64) (*domain.PlayDetail, error)
	CreatePlay(ctx context.Context, p *domain.Play) error
	UpdatePlay(ctx context.Context, p *domain.Play) error
	DeletePlay(ctx context.Context, id int64) error
}

type VenueStore interface {
	ListHalls(ctx context.Context) ([]domain.TheatreHall, error)
	GetHall(ctx context.Context, id int64) (*domain.TheatreHall, error)
	CreateHall(ctx context.Context, h *domain.TheatreHall) error
	UpdateHall(ctx context.Context, h *domain.TheatreHall) error
	DeleteHall(ctx context.Context, id int64) error
}

type PerformanceStore interface {
	ListPerformances(ctx context.Context, f domain.PerformanceFilter) ([]domain.PerformanceDetail, error)
	GetPerformance(ctx context.Context, id int64) (*domain.PerformanceDetail, error)
	CreatePerformance(ctx context.Context, p *domain.Performance) error
	UpdatePerformance(ctx context.Context, p *domain.Performance) error
	DeletePerformance(ctx context.Context, id int64) error
	SetPoster(ctx context.Context, id int64, ref string) error
}

type ReservationStore interface {
	HallsForPerformances(ctx context.Context, ids []int64) (map[int64]domain.TheatreHall, error)
	CreateReservation(ctx context.Context, userID int64, reqs []domain.TicketRequest) (*domain.Reservation, error)
	ListReservations(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationDetail, error)
}

type Auditor interface {
	Record(ctx context.Context, action string, userID int64, data map[string]interface{}) error
	RecordReservation(ctx context.Context, res domain.Reservation) error
}

type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, payload interface{}) error
}

type Handlers struct {
	cfg          *config.Config
	catalog      CatalogStore
	venues       VenueStore
	performances PerformanceStore
	reservations ReservationStore
	audit        Auditor
	events       EventPublisher
	idemp        *idempotency.Idempotency
	logger       observability.Logger
}

func NewHandlers(cfg *config.Config, catalog CatalogStore, venues VenueStore,
	performances PerformanceStore, reservations ReservationStore,
	audit Auditor, events EventPublisher, idemp *idempotency.Idempotency,
	logger observability.Logger) *Handlers {
	return &Handlers{
		cfg:          cfg,
		catalog:      catalog,
		venues:       venues,
		performances: performances,
		reservations: reservations,
		audit:        audit,
		events:       events,
		idemp:        idemp,
		logger:       logger,
	}
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError maps domain error kinds onto status codes. resource
// names the entity class for not-found reporting; internal details
// never leak to the caller.
func (h *Handlers) respondError(w http.ResponseWriter, err error, resource string) {
	var fe *domain.FieldError
	if errors.As(err, &fe) {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"errors": map[string]string{fe.Field: fe.Message},
		})
		return
	}
	var sc *domain.SeatConflictError
	if errors.As(err, &sc) {
		respondJSON(w, http.StatusConflict, map[string]string{"error": sc.Error()})
		return
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondJSON(w, http.StatusNotFound, map[string]string{"error": resource + " not found"})
	case errors.Is(err, domain.ErrValidation):
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input"})
	case errors.Is(err, domain.ErrSerializationFailure):
		respondJSON(w, http.StatusConflict, map[string]string{"error": "conflict, try again"})
	case errors.Is(err, domain.ErrConflict):
		respondJSON(w, http.StatusConflict, map[string]string{"error": "conflict"})
	default:
		h.logger.WithError(err).Error("request failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &domain.FieldError{Field: "body", Message: "malformed JSON"}
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, &domain.FieldError{Field: "id", Message: "must be an integer"}
	}
	return id, nil
}

func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handlers) Readyz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Ready"))
}
