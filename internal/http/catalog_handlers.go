package http

import (
	"net/http"
	"strings"

	"github.com/robertarktes/theatre-reservations/internal/domain"
	"github.com/robertarktes/theatre-reservations/internal/query"
)

type genreResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type actorResponse struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name"`
}

// playResponse resolves genre and actor references to display names,
// the shape both list and detail return.
type playResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Genres      []string `json:"genres"`
	Actors      []string `json:"actors"`
}

func toActorResponse(a domain.Actor) actorResponse {
	return actorResponse{ID: a.ID, FirstName: a.FirstName, LastName: a.LastName, FullName: a.FullName()}
}

func toPlayResponse(p domain.PlayDetail) playResponse {
	resp := playResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Genres:      []string{},
		Actors:      []string{},
	}
	for _, g := range p.Genres {
		resp.Genres = append(resp.Genres, g.Name)
	}
	for _, a := range p.Actors {
		resp.Actors = append(resp.Actors, a.FullName())
	}
	return resp
}

func (h *Handlers) ListGenres(w http.ResponseWriter, r *http.Request) {
	genres, err := h.catalog.ListGenres(r.Context())
	if err != nil {
		h.respondError(w, err, "genre")
		return
	}
	out := make([]genreResponse, 0, len(genres))
	for _, g := range genres {
		out = append(out, genreResponse{ID: g.ID, Name: g.Name})
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "genre")
		return
	}
	g, err := h.catalog.GetGenre(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "genre")
		return
	}
	respondJSON(w, http.StatusOK, genreResponse{ID: g.ID, Name: g.Name})
}

type genreRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req genreRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "genre")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondError(w, &domain.FieldError{Field: "name", Message: "must not be empty"}, "genre")
		return
	}
	g := domain.Genre{Name: req.Name}
	if err := h.catalog.CreateGenre(r.Context(), &g); err != nil {
		h.respondError(w, err, "genre")
		return
	}
	h.recordAudit(r, "genre.created", map[string]interface{}{"genre_id": g.ID, "name": g.Name})
	respondJSON(w, http.StatusCreated, genreResponse{ID: g.ID, Name: g.Name})
}

func (h *Handlers) UpdateGenre(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "genre")
		return
	}
	var req genreRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "genre")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondError(w, &domain.FieldError{Field: "name", Message: "must not be empty"}, "genre")
		return
	}
	g := domain.Genre{ID: id, Name: req.Name}
	if err := h.catalog.UpdateGenre(r.Context(), &g); err != nil {
		h.respondError(w, err, "genre")
		return
	}
	respondJSON(w, http.StatusOK, genreResponse{ID: g.ID, Name: g.Name})
}

func (h *Handlers) ListActors(w http.ResponseWriter, r *http.Request) {
	actors, err := h.catalog.ListActors(r.Context())
	if err != nil {
		h.respondError(w, err, "actor")
		return
	}
	out := make([]actorResponse, 0, len(actors))
	for _, a := range actors {
		out = append(out, toActorResponse(a))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetActor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "actor")
		return
	}
	a, err := h.catalog.GetActor(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "actor")
		return
	}
	respondJSON(w, http.StatusOK, toActorResponse(*a))
}

type actorRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (req actorRequest) validate() error {
	if strings.TrimSpace(req.FirstName) == "" {
		return &domain.FieldError{Field: "first_name", Message: "must not be empty"}
	}
	if strings.TrimSpace(req.LastName) == "" {
		return &domain.FieldError{Field: "last_name", Message: "must not be empty"}
	}
	return nil
}

func (h *Handlers) CreateActor(w http.ResponseWriter, r *http.Request) {
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "actor")
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, err, "actor")
		return
	}
	a := domain.Actor{FirstName: req.FirstName, LastName: req.LastName}
	if err := h.catalog.CreateActor(r.Context(), &a); err != nil {
		h.respondError(w, err, "actor")
		return
	}
	h.recordAudit(r, "actor.created", map[string]interface{}{"actor_id": a.ID})
	respondJSON(w, http.StatusCreated, toActorResponse(a))
}

func (h *Handlers) UpdateActor(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "actor")
		return
	}
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "actor")
		return
	}
	if err := req.validate(); err != nil {
		h.respondError(w, err, "actor")
		return
	}
	a := domain.Actor{ID: id, FirstName: req.FirstName, LastName: req.LastName}
	if err := h.catalog.UpdateActor(r.Context(), &a); err != nil {
		h.respondError(w, err, "actor")
		return
	}
	respondJSON(w, http.StatusOK, toActorResponse(a))
}

func (h *Handlers) ListPlays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	genreIDs, err := query.ParseIDList("genres", q.Get("genres"))
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	actorIDs, err := query.ParseIDList("actors", q.Get("actors"))
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	f := domain.PlayFilter{Name: q.Get("name"), GenreIDs: genreIDs, ActorIDs: actorIDs}

	plays, err := h.catalog.ListPlays(r.Context(), f)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	out := make([]playResponse, 0, len(plays))
	for _, p := range plays {
		out = append(out, toPlayResponse(p))
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handlers) GetPlay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	p, err := h.catalog.GetPlay(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	respondJSON(w, http.StatusOK, toPlayResponse(*p))
}

type playRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
	Genres      []int64 `json:"genres"`
	Actors      []int64 `json:"actors"`
}

func (h *Handlers) CreatePlay(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "play")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondError(w, &domain.FieldError{Field: "name", Message: "must not be empty"}, "play")
		return
	}
	p := domain.Play{Name: req.Name, Description: req.Description, GenreIDs: req.Genres, ActorIDs: req.Actors}
	if err := h.catalog.CreatePlay(r.Context(), &p); err != nil {
		// a missing genre/actor reference surfaces as an FK violation
		h.respondError(w, err, "genre or actor")
		return
	}
	h.recordAudit(r, "play.created", map[string]interface{}{"play_id": p.ID, "name": p.Name})
	detail, err := h.catalog.GetPlay(r.Context(), p.ID)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	respondJSON(w, http.StatusCreated, toPlayResponse(*detail))
}

func (h *Handlers) UpdatePlay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	var req playRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, err, "play")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondError(w, &domain.FieldError{Field: "name", Message: "must not be empty"}, "play")
		return
	}
	p := domain.Play{ID: id, Name: req.Name, Description: req.Description, GenreIDs: req.Genres, ActorIDs: req.Actors}
	if err := h.catalog.UpdatePlay(r.Context(), &p); err != nil {
		h.respondError(w, err, "play")
		return
	}
	detail, err := h.catalog.GetPlay(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	respondJSON(w, http.StatusOK, toPlayResponse(*detail))
}

func (h *Handlers) DeletePlay(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		h.respondError(w, err, "play")
		return
	}
	if err := h.catalog.DeletePlay(r.Context(), id); err != nil {
		h.respondError(w, err, "play")
		return
	}
	h.recordAudit(r, "play.deleted", map[string]interface{}{"play_id": id})
	w.WriteHeader(http.StatusNoContent)
}

// recordAudit writes a best-effort audit entry for an admin mutation.
func (h *Handlers) recordAudit(r *http.Request, action string, data map[string]interface{}) {
	if h.audit == nil {
		return
	}
	userID, _ := UserIDFromContext(r.Context())
	if err := h.audit.Record(r.Context(), action, userID, data); err != nil {
		h.logger.WithError(err).Warn("audit record failed")
	}
}
