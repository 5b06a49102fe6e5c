package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robertarktes/theatre-reservations/internal/adapters/postgres"
	"github.com/robertarktes/theatre-reservations/internal/config"
	httphandler "github.com/robertarktes/theatre-reservations/internal/http"
	"github.com/robertarktes/theatre-reservations/internal/observability"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testSecret = "integration-secret"

func signToken(t *testing.T, userID int64, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "theatre"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor:   wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { pgContainer.Terminate(ctx) })

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, "postgres://postgres:secret@"+host+":"+port.Port()+"/theatre?sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../migrations/schema.sql")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		t.Fatal(err)
	}

	repo := postgres.NewRepository(pool)
	logger := observability.NewLogger()
	cfg := &config.Config{JWTSecret: testSecret, MediaDir: t.TempDir()}

	handlers := httphandler.NewHandlers(cfg, repo, repo, repo, repo, nil, nil, nil, logger)
	router := httphandler.SetupRouter(handlers, logger, nil, cfg.JWTSecret)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatal(err)
		}
	}
	return resp.StatusCode
}

func TestIntegration_ReservationFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}
	srv := setupServer(t)
	admin := signToken(t, 1, "admin")
	alice := signToken(t, 2, "user")
	bob := signToken(t, 3, "user")

	var genre struct {
		ID int64 `json:"id"`
	}
	if code := doJSON(t, "POST", srv.URL+"/v1/genres", admin, map[string]string{"name": "Drama"}, &genre); code != http.StatusCreated {
		t.Fatalf("create genre: status %d", code)
	}

	var actor struct {
		ID int64 `json:"id"`
	}
	if code := doJSON(t, "POST", srv.URL+"/v1/actors", admin,
		map[string]string{"first_name": "Anna", "last_name": "Pavlova"}, &actor); code != http.StatusCreated {
		t.Fatalf("create actor: status %d", code)
	}

	var play struct {
		ID     int64    `json:"id"`
		Genres []string `json:"genres"`
		Actors []string `json:"actors"`
	}
	if code := doJSON(t, "POST", srv.URL+"/v1/plays", admin, map[string]interface{}{
		"name":   "The Cherry Orchard",
		"genres": []int64{genre.ID},
		"actors": []int64{actor.ID},
	}, &play); code != http.StatusCreated {
		t.Fatalf("create play: status %d", code)
	}
	if len(play.Genres) != 1 || play.Genres[0] != "Drama" {
		t.Errorf("expected genres [Drama], got %v", play.Genres)
	}
	if len(play.Actors) != 1 || play.Actors[0] != "Anna Pavlova" {
		t.Errorf("expected actors [Anna Pavlova], got %v", play.Actors)
	}

	var hall struct {
		ID       int64 `json:"id"`
		Capacity int64 `json:"capacity"`
	}
	if code := doJSON(t, "POST", srv.URL+"/v1/theatre-halls", admin, map[string]interface{}{
		"name": "Main Stage", "rows": 10, "seats_in_row": 20,
	}, &hall); code != http.StatusCreated {
		t.Fatalf("create hall: status %d", code)
	}
	if hall.Capacity != 200 {
		t.Errorf("expected capacity 200, got %d", hall.Capacity)
	}

	var perf struct {
		ID               int64 `json:"id"`
		TicketsAvailable int64 `json:"tickets_available"`
	}
	if code := doJSON(t, "POST", srv.URL+"/v1/performances", admin, map[string]interface{}{
		"play_id":         play.ID,
		"theatre_hall_id": hall.ID,
		"show_time":       time.Now().UTC().Add(48 * time.Hour).Format(time.RFC3339),
	}, &perf); code != http.StatusCreated {
		t.Fatalf("create performance: status %d", code)
	}
	if perf.TicketsAvailable != 200 {
		t.Errorf("expected 200 tickets available, got %d", perf.TicketsAvailable)
	}

	// Admin mutations are forbidden for plain users.
	if code := doJSON(t, "POST", srv.URL+"/v1/genres", alice, map[string]string{"name": "Comedy"}, nil); code != http.StatusForbidden {
		t.Fatalf("expected 403 for user genre create, got %d", code)
	}

	var res struct {
		ID      int64 `json:"id"`
		Tickets []struct {
			Row  int32 `json:"row"`
			Seat int32 `json:"seat"`
		} `json:"tickets"`
	}
	if code := doJSON(t, "POST", srv.URL+"/v1/reservations", alice, map[string]interface{}{
		"tickets": []map[string]interface{}{
			{"performance_id": perf.ID, "row": 1, "seat": 1},
			{"performance_id": perf.ID, "row": 1, "seat": 2},
		},
	}, &res); code != http.StatusCreated {
		t.Fatalf("create reservation: status %d", code)
	}
	if len(res.Tickets) != 2 {
		t.Fatalf("expected 2 tickets, got %d", len(res.Tickets))
	}

	// Availability drops by the committed ticket count.
	var got struct {
		TicketsAvailable int64 `json:"tickets_available"`
	}
	url := srv.URL + "/v1/performances/" + strconv.FormatInt(perf.ID, 10)
	if code := doJSON(t, "GET", url, alice, nil, &got); code != http.StatusOK {
		t.Fatalf("get performance: status %d", code)
	}
	if got.TicketsAvailable != 198 {
		t.Errorf("expected 198 tickets available, got %d", got.TicketsAvailable)
	}

	// A taken seat rejects the whole request and writes nothing.
	if code := doJSON(t, "POST", srv.URL+"/v1/reservations", bob, map[string]interface{}{
		"tickets": []map[string]interface{}{
			{"performance_id": perf.ID, "row": 5, "seat": 5},
			{"performance_id": perf.ID, "row": 1, "seat": 1},
		},
	}, nil); code != http.StatusConflict {
		t.Fatalf("expected 409 on seat conflict, got %d", code)
	}
	if code := doJSON(t, "GET", url, bob, nil, &got); code != http.StatusOK {
		t.Fatalf("get performance: status %d", code)
	}
	if got.TicketsAvailable != 198 {
		t.Errorf("expected availability unchanged at 198, got %d", got.TicketsAvailable)
	}

	// Out of range seat is a field error before any write.
	if code := doJSON(t, "POST", srv.URL+"/v1/reservations", bob, map[string]interface{}{
		"tickets": []map[string]interface{}{
			{"performance_id": perf.ID, "row": 11, "seat": 1},
		},
	}, nil); code != http.StatusBadRequest {
		t.Fatalf("expected 400 on out of range row, got %d", code)
	}

	// Each user sees only their own reservations.
	var aliceList []struct {
		ID int64 `json:"id"`
	}
	if code := doJSON(t, "GET", srv.URL+"/v1/reservations", alice, nil, &aliceList); code != http.StatusOK {
		t.Fatalf("list reservations: status %d", code)
	}
	if len(aliceList) != 1 {
		t.Errorf("expected 1 reservation for alice, got %d", len(aliceList))
	}
	var bobList []struct {
		ID int64 `json:"id"`
	}
	if code := doJSON(t, "GET", srv.URL+"/v1/reservations", bob, nil, &bobList); code != http.StatusOK {
		t.Fatalf("list reservations: status %d", code)
	}
	if len(bobList) != 0 {
		t.Errorf("expected no reservations for bob, got %d", len(bobList))
	}

	// No token means an opaque 401.
	req, _ := http.NewRequest("GET", srv.URL+"/v1/plays", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}
}
