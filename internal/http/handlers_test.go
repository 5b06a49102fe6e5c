package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/robertarktes/theatre-reservations/internal/config"
	"github.com/robertarktes/theatre-reservations/internal/domain"
	"github.com/robertarktes/theatre-reservations/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	CatalogStore
	plays      []domain.PlayDetail
	lastFilter domain.PlayFilter
	listErr    error
}

func (f *fakeCatalog) ListPlays(ctx context.Context, filter domain.PlayFilter) ([]domain.PlayDetail, error) {
	f.lastFilter = filter
	return f.plays, f.listErr
}

func (f *fakeCatalog) GetGenre(ctx context.Context, id int64) (*domain.Genre, error) {
	return nil, domain.ErrNotFound
}

type fakePerformances struct {
	PerformanceStore
	perfs      []domain.PerformanceDetail
	lastFilter domain.PerformanceFilter
}

func (f *fakePerformances) ListPerformances(ctx context.Context, filter domain.PerformanceFilter) ([]domain.PerformanceDetail, error) {
	f.lastFilter = filter
	return f.perfs, nil
}

type fakeReservations struct {
	ReservationStore
	halls      map[int64]domain.TheatreHall
	created    *domain.Reservation
	createErr  error
	lastUserID int64
	lastReqs   []domain.TicketRequest
}

func (f *fakeReservations) HallsForPerformances(ctx context.Context, ids []int64) (map[int64]domain.TheatreHall, error) {
	return f.halls, nil
}

func (f *fakeReservations) CreateReservation(ctx context.Context, userID int64, reqs []domain.TicketRequest) (*domain.Reservation, error) {
	f.lastUserID = userID
	f.lastReqs = reqs
	return f.created, f.createErr
}

func (f *fakeReservations) ListReservations(ctx context.Context, userID int64, limit, offset int) ([]domain.ReservationDetail, error) {
	f.lastUserID = userID
	return nil, nil
}

func newTestHandlers(catalog CatalogStore, perfs PerformanceStore, res ReservationStore) *Handlers {
	cfg := &config.Config{MediaDir: "media"}
	return NewHandlers(cfg, catalog, nil, perfs, res, nil, nil, nil, observability.NewLogger())
}

func withUser(r *http.Request, userID int64, role string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	ctx = context.WithValue(ctx, roleKey, role)
	return r.WithContext(ctx)
}

func TestListPlaysFilterPlumbing(t *testing.T) {
	catalog := &fakeCatalog{plays: []domain.PlayDetail{{
		ID:     1,
		Name:   "Hamlet",
		Genres: []domain.Genre{{ID: 2, Name: "Drama"}},
		Actors: []domain.Actor{{ID: 3, FirstName: "John", LastName: "Gielgud"}},
	}}}
	h := newTestHandlers(catalog, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/plays?name=ham&genres=2,5&actors=3", nil)
	w := httptest.NewRecorder()
	h.ListPlays(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ham", catalog.lastFilter.Name)
	assert.Equal(t, []int64{2, 5}, catalog.lastFilter.GenreIDs)
	assert.Equal(t, []int64{3}, catalog.lastFilter.ActorIDs)

	var out []playResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, []string{"Drama"}, out[0].Genres)
	assert.Equal(t, []string{"John Gielgud"}, out[0].Actors)
}

func TestListPlaysBadGenreIDs(t *testing.T) {
	h := newTestHandlers(&fakeCatalog{}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/plays?genres=2,abc", nil)
	w := httptest.NewRecorder()
	h.ListPlays(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Contains(t, out.Errors, "genres")
}

func TestGetGenreNotFound(t *testing.T) {
	h := newTestHandlers(&fakeCatalog{}, nil, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "42")
	req := httptest.NewRequest(http.MethodGet, "/v1/genres/42", nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()
	h.GetGenre(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"genre not found"}`, w.Body.String())
}

func TestListPerformancesDateFilter(t *testing.T) {
	perfs := &fakePerformances{perfs: []domain.PerformanceDetail{{
		ID: 1, PlayName: "Hamlet", HallName: "Main", TicketsAvailable: 398,
		ShowTime: time.Date(2026, 9, 1, 19, 0, 0, 0, time.UTC),
	}}}
	h := newTestHandlers(nil, perfs, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/performances?name=ham&date=2026-09-01", nil)
	w := httptest.NewRecorder()
	h.ListPerformances(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ham", perfs.lastFilter.PlayName)
	require.NotNil(t, perfs.lastFilter.Date)
	assert.Equal(t, "2026-09-01", perfs.lastFilter.Date.Format("2006-01-02"))

	var out []performanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(398), out[0].TicketsAvailable)
}

func TestListPerformancesBadDate(t *testing.T) {
	h := newTestHandlers(nil, &fakePerformances{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/performances?date=01-09-2026", nil)
	w := httptest.NewRecorder()
	h.ListPerformances(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationBindsTokenSubject(t *testing.T) {
	res := &fakeReservations{
		halls: map[int64]domain.TheatreHall{7: {ID: 1, Rows: 10, SeatsInRow: 10}},
		created: &domain.Reservation{
			ID: 5, UserID: 99, CreatedAt: time.Now(),
			Tickets: []domain.Ticket{{ID: 1, PerformanceID: 7, ReservationID: 5, Row: 2, Seat: 3}},
		},
	}
	h := newTestHandlers(nil, nil, res)

	body := `{"tickets":[{"performance_id":7,"row":2,"seat":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req = withUser(req, 99, "user")
	w := httptest.NewRecorder()
	h.CreateReservation(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, int64(99), res.lastUserID)
	require.Len(t, res.lastReqs, 1)
	assert.Equal(t, int64(7), res.lastReqs[0].PerformanceID)
}

func TestCreateReservationRowOutOfRange(t *testing.T) {
	res := &fakeReservations{
		halls: map[int64]domain.TheatreHall{7: {ID: 1, Rows: 10, SeatsInRow: 10}},
	}
	h := newTestHandlers(nil, nil, res)

	body := `{"tickets":[{"performance_id":7,"row":11,"seat":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req = withUser(req, 99, "user")
	w := httptest.NewRecorder()
	h.CreateReservation(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var out struct {
		Errors map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "row number must be in available range: (1, rows): (1, 10)", out.Errors["row"])
	assert.Nil(t, res.lastReqs)
}

func TestCreateReservationEmptyTickets(t *testing.T) {
	h := newTestHandlers(nil, nil, &fakeReservations{})

	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(`{"tickets":[]}`))
	req = withUser(req, 99, "user")
	w := httptest.NewRecorder()
	h.CreateReservation(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationSeatConflict(t *testing.T) {
	res := &fakeReservations{
		halls: map[int64]domain.TheatreHall{7: {ID: 1, Rows: 10, SeatsInRow: 10}},
		createErr: &domain.SeatConflictError{
			PerformanceID: 7, Row: 2, Seat: 3,
		},
	}
	h := newTestHandlers(nil, nil, res)

	body := `{"tickets":[{"performance_id":7,"row":2,"seat":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req = withUser(req, 99, "user")
	w := httptest.NewRecorder()
	h.CreateReservation(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateReservationUnknownPerformance(t *testing.T) {
	res := &fakeReservations{halls: map[int64]domain.TheatreHall{}}
	h := newTestHandlers(nil, nil, res)

	body := `{"tickets":[{"performance_id":7,"row":2,"seat":3}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/reservations", strings.NewReader(body))
	req = withUser(req, 99, "user")
	w := httptest.NewRecorder()
	h.CreateReservation(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListReservationsRequiresAuth(t *testing.T) {
	h := newTestHandlers(nil, nil, &fakeReservations{})

	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	w := httptest.NewRecorder()
	h.ListReservations(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListReservationsScopedToUser(t *testing.T) {
	res := &fakeReservations{}
	h := newTestHandlers(nil, nil, res)

	req := httptest.NewRequest(http.MethodGet, "/v1/reservations", nil)
	req = withUser(req, 42, "user")
	w := httptest.NewRecorder()
	h.ListReservations(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), res.lastUserID)
}
