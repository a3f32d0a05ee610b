package auction

import (
	"context"

	"github.com/okhirenko/gavel-go/internal/domain"
)

// Repository is the narrow slice of the durable artwork/player store the
// engine depends on. Calls may fail with repository.ErrNotFound or
// repository.ErrConflict; the engine propagates those as-is and never
// retries.
type Repository interface {
	AddPlayer(ctx context.Context, id int64, email string, money int64) error
	GetPlayer(ctx context.Context, id int64) (*domain.PlayerRecord, error)
	UpdatePlayer(ctx context.Context, id int64, isLoggedIn bool, money int64) error
	AddArtworksToPlayer(ctx context.Context, playerID int64, artworks []domain.Artwork) error
	RemoveArtworkFromPlayer(ctx context.Context, playerID, artworkID int64) error
	UpdatePlayerArtwork(ctx context.Context, playerID int64, artwork domain.Artwork) error

	// ReplaceHouseArtworks seeds the house pool. It also records every id in
	// the circulation registry, so re-seeding with an id that was ever in
	// play fails with repository.ErrConflict.
	ReplaceHouseArtworks(ctx context.Context, artworks []domain.Artwork) error
	AddArtworksToHouse(ctx context.Context, artworks []domain.Artwork) error
	HouseArtworks(ctx context.Context) ([]domain.Artwork, error)
	UpdateHouseArtwork(ctx context.Context, artwork domain.Artwork) error
	ArtworkIDsInCirculation(ctx context.Context) ([]int64, error)

	// Settle applies one floor's settlement as a single transaction:
	// ownership moves to the buyer, both wallets are rewritten, and the
	// artwork leaves the house collection or the seller's collection.
	Settle(ctx context.Context, s Settlement) error
}

// Settlement carries the outcome of one ended floor. Artwork is the
// post-sale record: purchase price stamped, history appended, no longer
// being auctioned. Money fields are absolute balances, not deltas.
type Settlement struct {
	Artwork    domain.Artwork
	BuyerID    int64
	BuyerMoney int64
	Seller     *SettlementParty
	FromHouse  bool
}

type SettlementParty struct {
	ID    int64
	Money int64
}

// ArtworkSource is the external museum catalog. FetchNextBatch returns
// only artworks passing the validity filter; ids advance from fromID.
type ArtworkSource interface {
	FetchNextBatch(ctx context.Context, fromID int64, count int) ([]domain.Artwork, error)
}

// Broadcaster ships a fresh house projection to connected observers after
// every floor or membership mutation.
type Broadcaster interface {
	BroadcastAreaChanged(ctx context.Context, model domain.HouseModel) error
}
