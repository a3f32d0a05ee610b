package postgresrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okhirenko/gavel-go/internal/domain"
	"github.com/okhirenko/gavel-go/internal/repository"
)

// PlayerRepo persists player accounts and their artwork collections.
// Artwork records are stored as jsonb documents keyed by artwork id;
// the primary key on player_artworks.artwork_id is what makes dual
// ownership of one artwork impossible at the durable layer.
type PlayerRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *PlayerRepo) With(db DB) *PlayerRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *PlayerRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

func (r *PlayerRepo) Add(ctx context.Context, id int64, email string, money int64) error {
	const op = "postgresrepo.PlayerRepo.Add"

	db := r.handle()

	if _, err := db.Exec(ctx,
		`INSERT INTO players(id, email, money, is_logged_in)
		 VALUES ($1, $2, $3, TRUE)`,
		id, email, money,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PlayerRepo) Get(ctx context.Context, id int64) (*domain.PlayerRecord, error) {
	const op = "postgresrepo.PlayerRepo.Get"

	db := r.handle()

	rec := domain.PlayerRecord{ID: id}
	if err := db.QueryRow(ctx,
		`SELECT email, money, is_logged_in FROM players WHERE id = $1`,
		id,
	).Scan(&rec.Email, &rec.Money, &rec.IsLoggedIn); err != nil {
		return nil, wrapDBErr(op, err)
	}

	rows, err := db.Query(ctx,
		`SELECT artwork FROM player_artworks WHERE player_id = $1 ORDER BY artwork_id`,
		id,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, wrapDBErr(op, err)
		}
		var a domain.Artwork
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, wrapDBErr(op, err)
		}
		rec.Artworks = append(rec.Artworks, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &rec, nil
}

func (r *PlayerRepo) Update(ctx context.Context, id int64, isLoggedIn bool, money int64) error {
	const op = "postgresrepo.PlayerRepo.Update"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE players SET is_logged_in = $2, money = $3 WHERE id = $1`,
		id, isLoggedIn, money,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrPlayerNotFound)
	}

	return nil
}

// UpdateMoney rewrites the wallet balance without touching login state;
// settlement uses it for both sides of a sale.
func (r *PlayerRepo) UpdateMoney(ctx context.Context, id int64, money int64) error {
	const op = "postgresrepo.PlayerRepo.UpdateMoney"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`UPDATE players SET money = $2 WHERE id = $1`,
		id, money,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrPlayerNotFound)
	}

	return nil
}

// Remove deletes the account; owned artwork rows go with it.
func (r *PlayerRepo) Remove(ctx context.Context, id int64) error {
	const op = "postgresrepo.PlayerRepo.Remove"

	db := r.handle()

	tag, err := db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrPlayerNotFound)
	}

	return nil
}

func (r *PlayerRepo) AddArtworks(ctx context.Context, playerID int64, artworks []domain.Artwork) error {
	const op = "postgresrepo.PlayerRepo.AddArtworks"

	db := r.handle()

	batch := &pgx.Batch{}
	for _, a := range artworks {
		raw, err := json.Marshal(a)
		if err != nil {
			return wrapDBErr(op, err)
		}
		batch.Queue(
			`INSERT INTO player_artworks(artwork_id, player_id, artwork)
			 VALUES ($1, $2, $3)`,
			a.ID, playerID, raw,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *PlayerRepo) RemoveArtworkByID(ctx context.Context, playerID, artworkID int64) error {
	const op = "postgresrepo.PlayerRepo.RemoveArtworkByID"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`DELETE FROM player_artworks WHERE player_id = $1 AND artwork_id = $2`,
		playerID, artworkID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrArtworkNotFound)
	}

	return nil
}

func (r *PlayerRepo) UpdateArtworkByID(ctx context.Context, playerID int64, artwork domain.Artwork) error {
	const op = "postgresrepo.PlayerRepo.UpdateArtworkByID"

	db := r.handle()

	raw, err := json.Marshal(artwork)
	if err != nil {
		return wrapDBErr(op, err)
	}

	tag, err := db.Exec(ctx,
		`UPDATE player_artworks SET artwork = $3
		 WHERE player_id = $1 AND artwork_id = $2`,
		playerID, artwork.ID, raw,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrArtworkNotFound)
	}

	return nil
}
