package auction

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/okhirenko/gavel-go/internal/domain"
	"github.com/okhirenko/gavel-go/internal/repository"
)

// fakeRepo is an in-memory Repository with the same not-found/conflict
// semantics as the postgres implementation.
type fakeRepo struct {
	mu          sync.Mutex
	players     map[int64]*domain.PlayerRecord
	house       []domain.Artwork
	circulation map[int64]struct{}
	settlements []Settlement
	settleErr   error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		players:     make(map[int64]*domain.PlayerRecord),
		circulation: make(map[int64]struct{}),
	}
}

func (r *fakeRepo) AddPlayer(_ context.Context, id int64, email string, money int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.players[id]; ok {
		return repository.ErrConflict
	}
	r.players[id] = &domain.PlayerRecord{ID: id, Email: email, Money: money, IsLoggedIn: true}
	return nil
}

func (r *fakeRepo) GetPlayer(_ context.Context, id int64) (*domain.PlayerRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.players[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *rec
	cp.Artworks = append([]domain.Artwork(nil), rec.Artworks...)
	return &cp, nil
}

func (r *fakeRepo) UpdatePlayer(_ context.Context, id int64, isLoggedIn bool, money int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.players[id]
	if !ok {
		return repository.ErrNotFound
	}
	rec.IsLoggedIn = isLoggedIn
	rec.Money = money
	return nil
}

func (r *fakeRepo) AddArtworksToPlayer(_ context.Context, playerID int64, artworks []domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.players[playerID]
	if !ok {
		return repository.ErrNotFound
	}
	rec.Artworks = append(rec.Artworks, artworks...)
	return nil
}

func (r *fakeRepo) RemoveArtworkFromPlayer(_ context.Context, playerID, artworkID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.players[playerID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, a := range rec.Artworks {
		if a.ID == artworkID {
			rec.Artworks = append(rec.Artworks[:i], rec.Artworks[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) UpdatePlayerArtwork(_ context.Context, playerID int64, artwork domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.players[playerID]
	if !ok {
		return repository.ErrNotFound
	}
	for i, a := range rec.Artworks {
		if a.ID == artwork.ID {
			rec.Artworks[i] = artwork
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) ReplaceHouseArtworks(_ context.Context, artworks []domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range artworks {
		if _, dup := r.circulation[a.ID]; dup {
			return repository.ErrConflict
		}
	}
	r.house = append([]domain.Artwork(nil), artworks...)
	for _, a := range artworks {
		r.circulation[a.ID] = struct{}{}
	}
	return nil
}

func (r *fakeRepo) AddArtworksToHouse(_ context.Context, artworks []domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.house = append(r.house, artworks...)
	for _, a := range artworks {
		r.circulation[a.ID] = struct{}{}
	}
	return nil
}

func (r *fakeRepo) HouseArtworks(_ context.Context) ([]domain.Artwork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Artwork(nil), r.house...), nil
}

func (r *fakeRepo) UpdateHouseArtwork(_ context.Context, artwork domain.Artwork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.house {
		if a.ID == artwork.ID {
			r.house[i] = artwork
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeRepo) ArtworkIDsInCirculation(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.circulation))
	for id := range r.circulation {
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *fakeRepo) Settle(_ context.Context, s Settlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settleErr != nil {
		return r.settleErr
	}

	if s.FromHouse {
		for i, a := range r.house {
			if a.ID == s.Artwork.ID {
				r.house = append(r.house[:i], r.house[i+1:]...)
				break
			}
		}
	} else {
		seller := r.players[s.Seller.ID]
		for i, a := range seller.Artworks {
			if a.ID == s.Artwork.ID {
				seller.Artworks = append(seller.Artworks[:i], seller.Artworks[i+1:]...)
				break
			}
		}
		seller.Money = s.Seller.Money
	}

	buyer := r.players[s.BuyerID]
	buyer.Money = s.BuyerMoney
	buyer.Artworks = append(buyer.Artworks, s.Artwork)

	r.settlements = append(r.settlements, s)
	return nil
}

func (r *fakeRepo) settlementCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.settlements)
}

func (r *fakeRepo) lastSettlement() Settlement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.settlements[len(r.settlements)-1]
}

func (r *fakeRepo) houseRecord(t *testing.T, id int64) domain.Artwork {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.house {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("artwork %d not in house collection", id)
	return domain.Artwork{}
}

func (r *fakeRepo) playerRecord(id int64) domain.PlayerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := *r.players[id]
	rec.Artworks = append([]domain.Artwork(nil), r.players[id].Artworks...)
	return rec
}

// fakeSource hands out sequential catalog artworks and records the id
// each scan started from.
type fakeSource struct {
	mu      sync.Mutex
	fromIDs []int64
}

func (s *fakeSource) FetchNextBatch(_ context.Context, fromID int64, count int) ([]domain.Artwork, error) {
	s.mu.Lock()
	s.fromIDs = append(s.fromIDs, fromID)
	s.mu.Unlock()

	out := make([]domain.Artwork, 0, count)
	for i := 0; i < count; i++ {
		id := fromID + int64(i)
		a := testArtwork(id)
		a.Title = fmt.Sprintf("Catalog piece %d", id)
		out = append(out, a)
	}
	return out, nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	models []domain.HouseModel
}

func (b *fakeBroadcaster) BroadcastAreaChanged(_ context.Context, m domain.HouseModel) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.models = append(b.models, m)
	return nil
}

func (b *fakeBroadcaster) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.models)
}

func newTestHouse(repo Repository, source ArtworkSource, broadcast Broadcaster) *House {
	return NewHouse(repo, source, broadcast, nil, Config{
		FloorSeconds: 2,
		TickInterval: testTick,
		HouseFloors:  1,
		PoolLowWater: 1,
		FetchBatch:   5,
	})
}

func seedPool(t *testing.T, h *House, ids ...int64) {
	t.Helper()
	artworks := make([]domain.Artwork, 0, len(ids))
	for _, id := range ids {
		artworks = append(artworks, testArtwork(id))
	}
	require.NoError(t, h.SetHouseArtworks(context.Background(), artworks, 0))
}

func waitSettlements(t *testing.T, repo *fakeRepo, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return repo.settlementCount() >= n
	}, 5*time.Second, 10*time.Millisecond)
}

func TestEnterAreaCreatesAccount(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	p, err := h.EnterArea(ctx, 1, "alice@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, StartingBalance, p.Money)
	assert.EqualValues(t, StartingBalance, p.NetWorth)

	rec := repo.playerRecord(1)
	assert.Equal(t, "alice@example.com", rec.Email)
	assert.EqualValues(t, StartingBalance, rec.Money)

	again, err := h.EnterArea(ctx, 1, "alice@example.com")
	require.NoError(t, err)
	assert.Same(t, p, again)
}

func TestEnterAreaLoadsExistingAccount(t *testing.T) {
	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 2, "bob@example.com", 4_200))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 2, []domain.Artwork{testArtwork(77)}))

	h := newTestHouse(repo, nil, nil)

	p, err := h.EnterArea(context.Background(), 2, "bob@example.com")
	require.NoError(t, err)
	assert.EqualValues(t, 4_200, p.Money)
	assert.True(t, p.OwnsArtwork(77))
	// net worth counts the wallet plus owned artworks at purchase price
	assert.EqualValues(t, 4_200+testArtwork(77).PurchasePrice, p.NetWorth)
}

func TestSetHouseArtworksOffset(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	artworks := []domain.Artwork{testArtwork(1), testArtwork(2), testArtwork(3)}
	assert.ErrorIs(t, h.SetHouseArtworks(ctx, artworks, 4), ErrInvalidOffset)

	require.NoError(t, h.SetHouseArtworks(ctx, artworks, 1))

	// the cursor starts partway in, so the first floor gets artwork 2
	floorID, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)

	m := h.Model()
	require.Len(t, m.Floors, 1)
	assert.Equal(t, floorID, m.Floors[0].ID)
	assert.EqualValues(t, 2, m.Floors[0].Artwork.ID)
}

func TestSetHouseArtworksRejectsReusedID(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	require.NoError(t, h.SetHouseArtworks(ctx, []domain.Artwork{testArtwork(1)}, 0))
	err := h.SetHouseArtworks(ctx, []domain.Artwork{testArtwork(1)}, 0)
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestCreateHouseFloorConsumesPool(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	seedPool(t, h, 1, 2)

	_, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)
	_, err = h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)

	m := h.Model()
	require.Len(t, m.Floors, 2)
	assert.EqualValues(t, 1, m.Floors[0].Artwork.ID)
	assert.EqualValues(t, 2, m.Floors[1].Artwork.ID)
	assert.True(t, m.Floors[0].Artwork.IsBeingAuctioned)

	// pool dry and no catalog source to fall back on
	_, err = h.CreateHouseFloor(ctx, 0)
	assert.ErrorIs(t, err, ErrPoolExhausted)
}

func TestMakeBidAdmission(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	seedPool(t, h, 1)
	floorID, err := h.CreateHouseFloor(ctx, 100)
	require.NoError(t, err)

	_, err = h.MakeBid(ctx, 1, floorID, 500)
	assert.ErrorIs(t, err, ErrPlayerNotConnected)

	p, err := h.EnterArea(ctx, 1, "alice@example.com")
	require.NoError(t, err)

	_, err = h.MakeBid(ctx, 1, newTestHouse(repo, nil, nil).ID, 500)
	assert.ErrorIs(t, err, ErrFloorNotFound)

	// at or below the minimum bid
	accepted, err := h.MakeBid(ctx, 1, floorID, 100)
	require.NoError(t, err)
	assert.False(t, accepted)

	// beyond the bidder's balance
	accepted, err = h.MakeBid(ctx, 1, floorID, p.Money+1)
	require.NoError(t, err)
	assert.False(t, accepted)

	accepted, err = h.MakeBid(ctx, 1, floorID, 500)
	require.NoError(t, err)
	assert.True(t, accepted)

	// accepted amounts are strictly increasing
	accepted, err = h.MakeBid(ctx, 1, floorID, 500)
	require.NoError(t, err)
	assert.False(t, accepted)

	accepted, err = h.MakeBid(ctx, 1, floorID, 600)
	require.NoError(t, err)
	assert.True(t, accepted)

	m := h.Model()
	require.NotNil(t, m.Floors[0].CurrentBid)
	assert.EqualValues(t, 600, m.Floors[0].CurrentBid.Amount)
}

func TestAuctioneerCannotBidOnOwnFloor(t *testing.T) {
	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 1, "seller@example.com", 50_000))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 1, []domain.Artwork{testArtwork(9)}))

	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "seller@example.com")
	require.NoError(t, err)

	floorID, err := h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)

	accepted, err := h.MakeBid(ctx, 1, floorID, 500)
	require.NoError(t, err)
	assert.False(t, accepted)
}

func TestCreatePlayerFloorValidation(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	_, err := h.CreatePlayerFloor(ctx, 1, 9, 0)
	assert.ErrorIs(t, err, ErrPlayerNotConnected)

	_, err = h.EnterArea(ctx, 1, "alice@example.com")
	require.NoError(t, err)

	_, err = h.CreatePlayerFloor(ctx, 1, 9, 0)
	assert.ErrorIs(t, err, ErrArtworkNotOwned)
}

func TestCreatePlayerFloorRejectsDoubleListing(t *testing.T) {
	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 1, "seller@example.com", 50_000))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 1, []domain.Artwork{testArtwork(9)}))

	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "seller@example.com")
	require.NoError(t, err)

	_, err = h.CreatePlayerFloor(ctx, 1, 9, 0)
	require.NoError(t, err)

	_, err = h.CreatePlayerFloor(ctx, 1, 9, 0)
	assert.ErrorIs(t, err, ErrArtworkAlreadyListed)
}

func TestHouseFloorSettlement(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	seedPool(t, h, 1, 2)

	buyer, err := h.EnterArea(ctx, 10, "buyer@example.com")
	require.NoError(t, err)

	floorID, err := h.CreateHouseFloor(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, h.JoinFloorAsBidder(ctx, 10, floorID))

	accepted, err := h.MakeBid(ctx, 10, floorID, 1_500)
	require.NoError(t, err)
	require.True(t, accepted)

	require.NoError(t, h.StartFloor(ctx, floorID))
	waitSettlements(t, repo, 1)

	s := repo.lastSettlement()
	assert.True(t, s.FromHouse)
	assert.EqualValues(t, 10, s.BuyerID)
	assert.EqualValues(t, StartingBalance-1_500, s.BuyerMoney)
	assert.EqualValues(t, 1, s.Artwork.ID)
	assert.EqualValues(t, 1_500, s.Artwork.PurchasePrice)
	assert.False(t, s.Artwork.IsBeingAuctioned)
	require.Len(t, s.Artwork.PurchaseHistory, 1)
	assert.Nil(t, s.Artwork.PurchaseHistory[0].SellerID)

	// the durable wallet and the live one agree
	rec := repo.playerRecord(10)
	require.Len(t, rec.Artworks, 1)
	assert.EqualValues(t, StartingBalance-1_500, rec.Money)
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return buyer.Money == StartingBalance-1_500 && buyer.OwnsArtwork(1)
	}, 5*time.Second, 10*time.Millisecond)

	// the floor recycles onto the next pool artwork and waits
	m := h.Model()
	require.Len(t, m.Floors, 1)
	assert.Equal(t, domain.FloorWaitingToStart, m.Floors[0].Status)
	assert.EqualValues(t, 2, m.Floors[0].Artwork.ID)
	assert.Nil(t, m.Floors[0].CurrentBid)
}

func TestHouseFloorExpiresWithoutBid(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	seedPool(t, h, 1, 2)

	floorID, err := h.CreateHouseFloor(ctx, 100)
	require.NoError(t, err)
	require.NoError(t, h.StartFloor(ctx, floorID))

	// same artwork comes back around, nothing settles
	require.Eventually(t, func() bool {
		m := h.Model()
		return len(m.Floors) == 1 && m.Floors[0].Status == domain.FloorWaitingToStart
	}, 5*time.Second, 10*time.Millisecond)

	assert.Zero(t, repo.settlementCount())
	m := h.Model()
	assert.EqualValues(t, 1, m.Floors[0].Artwork.ID)
}

func TestPlayerFloorSettlement(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 1, "seller@example.com", 10_000))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 1, []domain.Artwork{testArtwork(9)}))

	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "seller@example.com")
	require.NoError(t, err)
	_, err = h.EnterArea(ctx, 2, "buyer@example.com")
	require.NoError(t, err)

	floorID, err := h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)
	require.NoError(t, h.JoinFloorAsBidder(ctx, 2, floorID))

	accepted, err := h.MakeBid(ctx, 2, floorID, 2_000)
	require.NoError(t, err)
	require.True(t, accepted)

	require.NoError(t, h.StartFloor(ctx, floorID))
	waitSettlements(t, repo, 1)

	s := repo.lastSettlement()
	assert.False(t, s.FromHouse)
	require.NotNil(t, s.Seller)
	assert.EqualValues(t, 1, s.Seller.ID)
	assert.EqualValues(t, 12_000, s.Seller.Money)
	assert.EqualValues(t, StartingBalance-2_000, s.BuyerMoney)
	require.Len(t, s.Artwork.PurchaseHistory, 1)
	require.NotNil(t, s.Artwork.PurchaseHistory[0].SellerID)
	assert.EqualValues(t, 1, *s.Artwork.PurchaseHistory[0].SellerID)

	seller := repo.playerRecord(1)
	assert.Empty(t, seller.Artworks)
	assert.EqualValues(t, 12_000, seller.Money)

	// player-owned floors are discarded after settlement
	require.Eventually(t, func() bool {
		return len(h.Model().Floors) == 0
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPlayerFloorExpiresUnsold(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 1, "seller@example.com", 10_000))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 1, []domain.Artwork{testArtwork(9)}))

	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "seller@example.com")
	require.NoError(t, err)

	floorID, err := h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)
	require.NoError(t, h.StartFloor(ctx, floorID))

	require.Eventually(t, func() bool {
		return len(h.Model().Floors) == 0
	}, 5*time.Second, 10*time.Millisecond)

	// the artwork is back in the wallet and can be relisted
	assert.Zero(t, repo.settlementCount())
	rec := repo.playerRecord(1)
	require.Len(t, rec.Artworks, 1)
	assert.False(t, rec.Artworks[0].IsBeingAuctioned)

	_, err = h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)
}

func TestLeaveFloorForfeitsBid(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	seedPool(t, h, 1)
	floorID, err := h.CreateHouseFloor(ctx, 100)
	require.NoError(t, err)

	_, err = h.EnterArea(ctx, 5, "bidder@example.com")
	require.NoError(t, err)
	require.NoError(t, h.JoinFloorAsBidder(ctx, 5, floorID))

	accepted, err := h.MakeBid(ctx, 5, floorID, 500)
	require.NoError(t, err)
	require.True(t, accepted)

	require.NoError(t, h.LeaveFloor(ctx, 5, floorID))

	m := h.Model()
	assert.Nil(t, m.Floors[0].CurrentBid)
	assert.Empty(t, m.Floors[0].Bidders)
}

func TestAuctioneerLeavingKillsFloor(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 1, "seller@example.com", 10_000))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 1, []domain.Artwork{testArtwork(9)}))

	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "seller@example.com")
	require.NoError(t, err)

	floorID, err := h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)
	require.NoError(t, h.StartFloor(ctx, floorID))

	require.NoError(t, h.LeaveFloor(ctx, 1, floorID))

	assert.Empty(t, h.Model().Floors)
	rec := repo.playerRecord(1)
	require.Len(t, rec.Artworks, 1)
	assert.False(t, rec.Artworks[0].IsBeingAuctioned)
}

func TestDeleteFloorTwice(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	seedPool(t, h, 1)
	floorID, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)

	require.NoError(t, h.DeleteFloor(ctx, floorID))
	assert.ErrorIs(t, h.DeleteFloor(ctx, floorID), ErrFloorNotFound)
}

func TestDeleteFloorUnlistsPlayerArtwork(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	require.NoError(t, repo.AddPlayer(context.Background(), 1, "seller@example.com", 10_000))
	require.NoError(t, repo.AddArtworksToPlayer(context.Background(), 1, []domain.Artwork{testArtwork(9)}))

	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "seller@example.com")
	require.NoError(t, err)

	floorID, err := h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)
	require.NoError(t, h.StartFloor(ctx, floorID))

	require.NoError(t, h.DeleteFloor(ctx, floorID))

	// the artwork reverts to the seller and stays relistable
	rec := repo.playerRecord(1)
	require.Len(t, rec.Artworks, 1)
	assert.False(t, rec.Artworks[0].IsBeingAuctioned)

	_, err = h.CreatePlayerFloor(ctx, 1, 9, 100)
	require.NoError(t, err)
}

func TestDeleteFloorRecyclesHouseArtwork(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	seedPool(t, h, 1)
	floorID, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, h.DeleteFloor(ctx, floorID))

	assert.False(t, repo.houseRecord(t, 1).IsBeingAuctioned)

	// the artwork is back past the cursor, so a new house floor (with a
	// pool of one) picks it up again
	next, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)
	m := h.Model()
	require.Len(t, m.Floors, 1)
	assert.Equal(t, next, m.Floors[0].ID)
	assert.EqualValues(t, 1, m.Floors[0].Artwork.ID)
	assert.True(t, repo.houseRecord(t, 1).IsBeingAuctioned)
}

func TestLeaveAreaPersistsWallet(t *testing.T) {
	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	_, err := h.EnterArea(ctx, 1, "alice@example.com")
	require.NoError(t, err)
	require.NoError(t, h.LeaveArea(ctx, 1))

	assert.Empty(t, h.Model().Occupants)
	rec := repo.playerRecord(1)
	assert.False(t, rec.IsLoggedIn)

	assert.ErrorIs(t, h.LeaveArea(ctx, 1), ErrPlayerNotConnected)
}

func TestReplenishSkipsCirculation(t *testing.T) {
	repo := newFakeRepo()
	source := &fakeSource{}
	h := newTestHouse(repo, source, nil)
	ctx := context.Background()

	// ids 0 and 1 were in play before, the scan must not re-issue them
	require.NoError(t, repo.AddArtworksToHouse(ctx, []domain.Artwork{testArtwork(0), testArtwork(1)}))
	_, err := h.LoadPool(ctx)
	require.NoError(t, err)

	added, err := h.Replenish(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, added)

	source.mu.Lock()
	fromID := source.fromIDs[0]
	source.mu.Unlock()
	assert.EqualValues(t, 2, fromID, "scan resumes past the registry high-water mark")
}

func TestPoolReplenishesWhenDry(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	source := &fakeSource{}
	h := newTestHouse(repo, source, nil)
	defer h.Close()
	ctx := context.Background()

	// empty pool: the first house floor triggers a catalog fetch
	floorID, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)

	m := h.Model()
	require.Len(t, m.Floors, 1)
	assert.Equal(t, floorID, m.Floors[0].ID)

	artworks, err := repo.HouseArtworks(ctx)
	require.NoError(t, err)
	assert.Len(t, artworks, 5)
}

func TestBroadcastOnMutation(t *testing.T) {
	repo := newFakeRepo()
	b := &fakeBroadcaster{}
	h := newTestHouse(repo, nil, b)
	ctx := context.Background()

	before := b.count()
	_, err := h.EnterArea(ctx, 1, "alice@example.com")
	require.NoError(t, err)
	assert.Greater(t, b.count(), before)

	seedPool(t, h, 1)
	before = b.count()
	_, err = h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)
	assert.Greater(t, b.count(), before)

	b.mu.Lock()
	last := b.models[len(b.models)-1]
	b.mu.Unlock()
	assert.Equal(t, "auction-house", last.Type)
	require.Len(t, last.Floors, 1)
}

func TestConcurrentFloorsSettleIndependently(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	defer h.Close()
	ctx := context.Background()

	seedPool(t, h, 1, 2, 3, 4)

	_, err := h.EnterArea(ctx, 10, "buyer-a@example.com")
	require.NoError(t, err)
	_, err = h.EnterArea(ctx, 20, "buyer-b@example.com")
	require.NoError(t, err)

	floorA, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)
	floorB, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)

	accepted, err := h.MakeBid(ctx, 10, floorA, 1_000)
	require.NoError(t, err)
	require.True(t, accepted)
	accepted, err = h.MakeBid(ctx, 20, floorB, 2_000)
	require.NoError(t, err)
	require.True(t, accepted)

	require.NoError(t, h.StartFloor(ctx, floorA))
	require.NoError(t, h.StartFloor(ctx, floorB))

	waitSettlements(t, repo, 2)

	recA := repo.playerRecord(10)
	recB := repo.playerRecord(20)
	assert.EqualValues(t, StartingBalance-1_000, recA.Money)
	assert.EqualValues(t, StartingBalance-2_000, recB.Money)
	require.Len(t, recA.Artworks, 1)
	require.Len(t, recB.Artworks, 1)
	assert.EqualValues(t, 1, recA.Artworks[0].ID)
	assert.EqualValues(t, 2, recB.Artworks[0].ID)
}

func TestCloseStopsFloors(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	seedPool(t, h, 1)
	floorID, err := h.CreateHouseFloor(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, h.StartFloor(ctx, floorID))

	h.Close()

	_, err = h.EnterArea(ctx, 1, "alice@example.com")
	assert.ErrorIs(t, err, ErrHouseClosed)
	_, err = h.CreateHouseFloor(ctx, 0)
	assert.ErrorIs(t, err, ErrHouseClosed)
}

func TestCloseSuppressesLateSettlement(t *testing.T) {
	defer goleak.VerifyNone(t)

	repo := newFakeRepo()
	h := newTestHouse(repo, nil, nil)
	ctx := context.Background()

	seedPool(t, h, 1)
	floorID, err := h.CreateHouseFloor(ctx, 100)
	require.NoError(t, err)

	_, err = h.EnterArea(ctx, 5, "bidder@example.com")
	require.NoError(t, err)
	require.NoError(t, h.JoinFloorAsBidder(ctx, 5, floorID))

	accepted, err := h.MakeBid(ctx, 5, floorID, 500)
	require.NoError(t, err)
	require.True(t, accepted)

	h.mu.Lock()
	f, _, err := h.findFloorLocked(floorID)
	h.mu.Unlock()
	require.NoError(t, err)

	h.Close()

	// a countdown that expires while shutdown stops the floors must not
	// write a settlement
	h.handleFloorEnded(f)
	assert.Zero(t, repo.settlementCount())
	assert.EqualValues(t, StartingBalance, repo.playerRecord(5).Money)
}
