package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/robertarktes/theatre-reservations/internal/domain"
)

func (r *Repository) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM genres ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.Genre
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *Repository) GetGenre(ctx context.Context, id int64) (*domain.Genre, error) {
	var g domain.Genre
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM genres WHERE id = $1`, id).
		Scan(&g.ID, &g.Name)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *Repository) CreateGenre(ctx context.Context, g *domain.Genre) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO genres (name) VALUES ($1) RETURNING id
	`, g.Name).Scan(&g.ID)
	return mapPgError(err)
}

func (r *Repository) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE genres SET name = $2 WHERE id = $1
	`, g.ID, g.Name)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repository) ListActors(ctx context.Context) ([]domain.Actor, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, first_name, last_name FROM actors ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actors []domain.Actor
	for rows.Next() {
		var a domain.Actor
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

func (r *Repository) GetActor(ctx context.Context, id int64) (*domain.Actor, error) {
	var a domain.Actor
	err := r.pool.QueryRow(ctx, `SELECT id, first_name, last_name FROM actors WHERE id = $1`, id).
		Scan(&a.ID, &a.FirstName, &a.LastName)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *Repository) CreateActor(ctx context.Context, a *domain.Actor) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO actors (first_name, last_name) VALUES ($1, $2) RETURNING id
	`, a.FirstName, a.LastName).Scan(&a.ID)
	return mapPgError(err)
}

func (r *Repository) UpdateActor(ctx context.Context, a *domain.Actor) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE actors SET first_name = $2, last_name = $3 WHERE id = $1
	`, a.ID, a.FirstName, a.LastName)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPlays applies the optional name/genre/actor filters with AND
// semantics. Genre and actor membership is checked with EXISTS over the
// join tables so multi-valued matches cannot duplicate result rows.
func (r *Repository) ListPlays(ctx context.Context, f domain.PlayFilter) ([]domain.PlayDetail, error) {
	genreIDs := f.GenreIDs
	if genreIDs == nil {
		genreIDs = []int64{}
	}
	actorIDs := f.ActorIDs
	if actorIDs == nil {
		actorIDs = []int64{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.name, p.description
		FROM plays p
		WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%')
		  AND (cardinality($2::bigint[]) = 0 OR EXISTS (
			SELECT 1 FROM play_genres pg WHERE pg.play_id = p.id AND pg.genre_id = ANY($2)
		  ))
		  AND (cardinality($3::bigint[]) = 0 OR EXISTS (
			SELECT 1 FROM play_actors pa WHERE pa.play_id = p.id AND pa.actor_id = ANY($3)
		  ))
		ORDER BY p.id
	`, f.Name, genreIDs, actorIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plays []domain.PlayDetail
	var ids []int64
	for rows.Next() {
		var p domain.PlayDetail
		if err := rows.Scan(&p.ID, &p.Name, &p.Description); err != nil {
			return nil, err
		}
		plays = append(plays, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(plays) == 0 {
		return plays, nil
	}

	if err := r.attachPlayRefs(ctx, plays, ids); err != nil {
		return nil, err
	}
	return plays, nil
}

func (r *Repository) GetPlay(ctx context.Context, id int64) (*domain.PlayDetail, error) {
	var p domain.PlayDetail
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM plays WHERE id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Description)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	plays := []domain.PlayDetail{p}
	if err := r.attachPlayRefs(ctx, plays, []int64{id}); err != nil {
		return nil, err
	}
	return &plays[0], nil
}

func (r *Repository) attachPlayRefs(ctx context.Context, plays []domain.PlayDetail, ids []int64) error {
	byID := make(map[int64]*domain.PlayDetail, len(plays))
	for i := range plays {
		byID[plays[i].ID] = &plays[i]
	}

	rows, err := r.pool.Query(ctx, `
		SELECT pg.play_id, g.id, g.name
		FROM play_genres pg
		JOIN genres g ON g.id = pg.genre_id
		WHERE pg.play_id = ANY($1)
		ORDER BY g.id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var playID int64
		var g domain.Genre
		if err := rows.Scan(&playID, &g.ID, &g.Name); err != nil {
			return err
		}
		byID[playID].Genres = append(byID[playID].Genres, g)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = r.pool.Query(ctx, `
		SELECT pa.play_id, a.id, a.first_name, a.last_name
		FROM play_actors pa
		JOIN actors a ON a.id = pa.actor_id
		WHERE pa.play_id = ANY($1)
		ORDER BY a.id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var playID int64
		var a domain.Actor
		if err := rows.Scan(&playID, &a.ID, &a.FirstName, &a.LastName); err != nil {
			return err
		}
		byID[playID].Actors = append(byID[playID].Actors, a)
	}
	return rows.Err()
}

func (r *Repository) CreatePlay(ctx context.Context, p *domain.Play) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO plays (name, description) VALUES ($1, $2) RETURNING id
		`, p.Name, p.Description).Scan(&p.ID)
		if err != nil {
			return err
		}
		return insertPlayRefs(ctx, tx, p)
	})
}

func (r *Repository) UpdatePlay(ctx context.Context, p *domain.Play) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		result, err := tx.Exec(ctx, `
			UPDATE plays SET name = $2, description = $3 WHERE id = $1
		`, p.ID, p.Name, p.Description)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := tx.Exec(ctx, `DELETE FROM play_genres WHERE play_id = $1`, p.ID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM play_actors WHERE play_id = $1`, p.ID); err != nil {
			return err
		}
		return insertPlayRefs(ctx, tx, p)
	})
}

// insertPlayRefs writes the play's genre and actor reference sets.
// Duplicates in the request collapse to set semantics.
func insertPlayRefs(ctx context.Context, tx pgx.Tx, p *domain.Play) error {
	for _, id := range dedupe(p.GenreIDs) {
		if _, err := tx.Exec(ctx, `
			INSERT INTO play_genres (play_id, genre_id) VALUES ($1, $2)
		`, p.ID, id); err != nil {
			return err
		}
	}
	for _, id := range dedupe(p.ActorIDs) {
		if _, err := tx.Exec(ctx, `
			INSERT INTO play_actors (play_id, actor_id) VALUES ($1, $2)
		`, p.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (r *Repository) DeletePlay(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM plays WHERE id = $1`, id)
	if err != nil {
		return mapPgError(err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
