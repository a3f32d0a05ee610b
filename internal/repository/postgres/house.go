package postgresrepo

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/okhirenko/gavel-go/internal/domain"
	"github.com/okhirenko/gavel-go/internal/repository"
)

// HouseRepo persists the auction-house artwork collection and the
// circulation registry. The registry (artwork_ids) records every id
// ever admitted into a pool and is never pruned on sale, so a sold id
// can not re-enter circulation.
type HouseRepo struct {
	pool *pgxpool.Pool
	db   DB
}

func (r *HouseRepo) With(db DB) *HouseRepo {
	cp := *r
	cp.db = db
	return &cp
}

func (r *HouseRepo) handle() DB {
	if r.db != nil {
		return r.db
	}
	return r.pool
}

// Replace drops the current house collection and installs the given
// batch. Registry rows for the new ids are written in the same call;
// an id already registered fails the whole batch with ErrConflict.
func (r *HouseRepo) Replace(ctx context.Context, artworks []domain.Artwork) error {
	const op = "postgresrepo.HouseRepo.Replace"

	db := r.handle()

	if _, err := db.Exec(ctx, `DELETE FROM house_artworks`); err != nil {
		return wrapDBErr(op, err)
	}

	return r.add(ctx, op, artworks)
}

// Add appends artworks to the house collection and registers their ids.
func (r *HouseRepo) Add(ctx context.Context, artworks []domain.Artwork) error {
	const op = "postgresrepo.HouseRepo.Add"
	return r.add(ctx, op, artworks)
}

func (r *HouseRepo) add(ctx context.Context, op string, artworks []domain.Artwork) error {
	db := r.handle()

	batch := &pgx.Batch{}
	for _, a := range artworks {
		raw, err := json.Marshal(a)
		if err != nil {
			return wrapDBErr(op, err)
		}
		batch.Queue(
			`INSERT INTO house_artworks(artwork_id, artwork) VALUES ($1, $2)`,
			a.ID, raw,
		)
		batch.Queue(
			`INSERT INTO artwork_ids(artwork_id) VALUES ($1)`,
			a.ID,
		)
	}
	if err := db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// List returns the house collection in admission order.
func (r *HouseRepo) List(ctx context.Context) ([]domain.Artwork, error) {
	const op = "postgresrepo.HouseRepo.List"

	db := r.handle()

	rows, err := db.Query(ctx,
		`SELECT artwork FROM house_artworks ORDER BY position`,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var out []domain.Artwork
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, wrapDBErr(op, err)
		}
		var a domain.Artwork
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *HouseRepo) UpdateArtworkByID(ctx context.Context, artwork domain.Artwork) error {
	const op = "postgresrepo.HouseRepo.UpdateArtworkByID"

	db := r.handle()

	raw, err := json.Marshal(artwork)
	if err != nil {
		return wrapDBErr(op, err)
	}

	tag, err := db.Exec(ctx,
		`UPDATE house_artworks SET artwork = $2 WHERE artwork_id = $1`,
		artwork.ID, raw,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrArtworkNotFound)
	}

	return nil
}

func (r *HouseRepo) RemoveArtworkByID(ctx context.Context, artworkID int64) error {
	const op = "postgresrepo.HouseRepo.RemoveArtworkByID"

	db := r.handle()

	tag, err := db.Exec(ctx,
		`DELETE FROM house_artworks WHERE artwork_id = $1`,
		artworkID,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}
	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrArtworkNotFound)
	}

	return nil
}

// ArtworkIDs returns the circulation registry.
func (r *HouseRepo) ArtworkIDs(ctx context.Context) ([]int64, error) {
	const op = "postgresrepo.HouseRepo.ArtworkIDs"

	db := r.handle()

	rows, err := db.Query(ctx, `SELECT artwork_id FROM artwork_ids ORDER BY artwork_id`)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return ids, nil
}


// RemoveAll clears the house collection, leaving the registry intact.
func (r *HouseRepo) RemoveAll(ctx context.Context) error {
	const op = "postgresrepo.HouseRepo.RemoveAll"

	db := r.handle()

	if _, err := db.Exec(ctx, `DELETE FROM house_artworks`); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

// ClearRegistry wipes the circulation registry. Reset tooling only; in
// normal operation registered ids are permanent.
func (r *HouseRepo) ClearRegistry(ctx context.Context) error {
	const op = "postgresrepo.HouseRepo.ClearRegistry"

	db := r.handle()

	if _, err := db.Exec(ctx, `DELETE FROM artwork_ids`); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
