package postgresrepo

import (
	"context"
	"fmt"

	"github.com/okhirenko/gavel-go/internal/auction"
	"github.com/okhirenko/gavel-go/internal/domain"
)

// AuctionRepo is the store's face toward the auction engine: it
// implements auction.Repository by delegating to the player and house
// repos, and runs settlement as a single serializable transaction.
type AuctionRepo struct {
	store *Store
}

func NewAuctionRepo(store *Store) *AuctionRepo {
	return &AuctionRepo{store: store}
}

func (r *AuctionRepo) AddPlayer(ctx context.Context, id int64, email string, money int64) error {
	return r.store.Players().Add(ctx, id, email, money)
}

func (r *AuctionRepo) GetPlayer(ctx context.Context, id int64) (*domain.PlayerRecord, error) {
	return r.store.Players().Get(ctx, id)
}

func (r *AuctionRepo) UpdatePlayer(ctx context.Context, id int64, isLoggedIn bool, money int64) error {
	return r.store.Players().Update(ctx, id, isLoggedIn, money)
}

func (r *AuctionRepo) AddArtworksToPlayer(ctx context.Context, playerID int64, artworks []domain.Artwork) error {
	return r.store.Players().AddArtworks(ctx, playerID, artworks)
}

func (r *AuctionRepo) RemoveArtworkFromPlayer(ctx context.Context, playerID, artworkID int64) error {
	return r.store.Players().RemoveArtworkByID(ctx, playerID, artworkID)
}

func (r *AuctionRepo) UpdatePlayerArtwork(ctx context.Context, playerID int64, artwork domain.Artwork) error {
	return r.store.Players().UpdateArtworkByID(ctx, playerID, artwork)
}

func (r *AuctionRepo) ReplaceHouseArtworks(ctx context.Context, artworks []domain.Artwork) error {
	const op = "postgresrepo.AuctionRepo.ReplaceHouseArtworks"

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		return r.store.House().With(tx).Replace(ctx, artworks)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}

func (r *AuctionRepo) AddArtworksToHouse(ctx context.Context, artworks []domain.Artwork) error {
	return r.store.House().Add(ctx, artworks)
}

func (r *AuctionRepo) HouseArtworks(ctx context.Context) ([]domain.Artwork, error) {
	return r.store.House().List(ctx)
}

func (r *AuctionRepo) UpdateHouseArtwork(ctx context.Context, artwork domain.Artwork) error {
	return r.store.House().UpdateArtworkByID(ctx, artwork)
}

func (r *AuctionRepo) ArtworkIDsInCirculation(ctx context.Context) ([]int64, error) {
	return r.store.House().ArtworkIDs(ctx)
}

// Settle moves the artwork to the buyer and rewrites both wallets in
// one transaction. Sales off the house pool remove the artwork from
// the house collection; player sales remove it from the seller's.
func (r *AuctionRepo) Settle(ctx context.Context, s auction.Settlement) error {
	const op = "postgresrepo.AuctionRepo.Settle"

	err := r.store.RunTx(ctx, nil, func(ctx context.Context, tx DB) error {
		players := r.store.Players().With(tx)
		house := r.store.House().With(tx)

		if s.FromHouse {
			if err := house.RemoveArtworkByID(ctx, s.Artwork.ID); err != nil {
				return err
			}
		} else {
			if err := players.RemoveArtworkByID(ctx, s.Seller.ID, s.Artwork.ID); err != nil {
				return err
			}
			if err := players.UpdateMoney(ctx, s.Seller.ID, s.Seller.Money); err != nil {
				return err
			}
		}

		if err := players.AddArtworks(ctx, s.BuyerID, []domain.Artwork{s.Artwork}); err != nil {
			return err
		}
		return players.UpdateMoney(ctx, s.BuyerID, s.BuyerMoney)
	})
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}
