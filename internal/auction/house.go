package auction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okhirenko/gavel-go/internal/domain"
	"github.com/okhirenko/gavel-go/internal/repository"
)

const (
	broadcastTimeout = 3 * time.Second
	settleTimeout    = 10 * time.Second

	areaType = "auction-house"
)

type Config struct {
	// FloorSeconds is the countdown window each floor starts and resets
	// with.
	FloorSeconds int
	// TickInterval is the wall-clock length of one countdown second.
	// Only tests shrink it below a second.
	TickInterval time.Duration
	// HouseFloors is how many house-owned floors the house runs.
	HouseFloors int
	// PoolLowWater triggers catalog replenishment when the untouched
	// tail of the pool falls below it.
	PoolLowWater int
	// FetchBatch is the catalog id range scanned per replenishment.
	FetchBatch int
}

func (c Config) withDefaults() Config {
	if c.FloorSeconds <= 0 {
		c.FloorSeconds = 30
	}
	if c.TickInterval <= 0 {
		c.TickInterval = time.Second
	}
	if c.HouseFloors <= 0 {
		c.HouseFloors = 3
	}
	if c.PoolLowWater <= 0 {
		c.PoolLowWater = c.HouseFloors
	}
	if c.FetchBatch <= 0 {
		c.FetchBatch = 20
	}
	return c
}

// House owns the auction floors, the pool of artworks eligible for
// house-run auctions, and the connected player accounts. All state is
// guarded by one mutex; floor countdown goroutines re-enter the house
// through the registered tick/ended handlers, which take the lock like
// any other caller. Repository calls happen under the lock, so per-floor
// settlement bookkeeping is a single critical section and two floors
// ending on the same tick settle one after the other.
type House struct {
	ID uuid.UUID

	logger    *slog.Logger
	repo      Repository
	source    ArtworkSource
	broadcast Broadcaster
	cfg       Config

	mu          sync.Mutex
	floors      []*Floor
	pool        []domain.Artwork
	cursor      int
	occupants   map[int64]*Player
	nextFetchID int64
	closed      bool
}

func NewHouse(repo Repository, source ArtworkSource, broadcast Broadcaster, logger *slog.Logger, cfg Config) *House {
	if logger == nil {
		logger = slog.Default()
	}
	return &House{
		ID:        uuid.New(),
		logger:    logger,
		repo:      repo,
		source:    source,
		broadcast: broadcast,
		cfg:       cfg.withDefaults(),
		occupants: make(map[int64]*Player),
	}
}

// LoadPool seeds the in-memory pool from the durable house collection,
// typically at boot. Returns the pool size.
func (h *House) LoadPool(ctx context.Context) (int, error) {
	const op = "auction.House.LoadPool"

	h.mu.Lock()
	defer h.mu.Unlock()

	artworks, err := h.repo.HouseArtworks(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}

	ids, err := h.repo.ArtworkIDsInCirculation(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}
	for _, id := range ids {
		if id >= h.nextFetchID {
			h.nextFetchID = id + 1
		}
	}

	h.pool = artworks
	h.cursor = 0
	return len(h.pool), nil
}

// SetHouseArtworks replaces the pool used for house-owned auctions.
// offset positions the cursor partway into the batch. Every id is also
// written to the circulation registry; an id that was ever in play
// before is rejected with repository.ErrConflict.
func (h *House) SetHouseArtworks(ctx context.Context, artworks []domain.Artwork, offset int) error {
	const op = "auction.House.SetHouseArtworks"

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHouseClosed
	}
	if offset < 0 || offset > len(artworks) {
		return fmt.Errorf("%s:%w", op, ErrInvalidOffset)
	}

	for i := range artworks {
		artworks[i].IsBeingAuctioned = false
	}

	if err := h.repo.ReplaceHouseArtworks(ctx, artworks); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	h.pool = artworks
	h.cursor = offset
	for _, a := range artworks {
		if a.ID >= h.nextFetchID {
			h.nextFetchID = a.ID + 1
		}
	}
	return nil
}

// CreateHouseFloor pulls the next untouched artwork from the pool and
// opens a waiting_to_start floor with no auctioneer. The floor is
// recycled in place after every settlement.
func (h *House) CreateHouseFloor(ctx context.Context, minBid int64) (uuid.UUID, error) {
	const op = "auction.House.CreateHouseFloor"

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return uuid.Nil, ErrHouseClosed
	}

	artwork, err := h.nextPoolArtworkLocked(ctx)
	if err != nil {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s:%w", op, err)
	}

	artwork.IsBeingAuctioned = true
	if err := h.repo.UpdateHouseArtwork(ctx, artwork); err != nil {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s:%w", op, err)
	}
	h.pool[h.cursor] = artwork
	h.cursor++

	f := NewFloor(artwork, minBid, nil, h.cfg.FloorSeconds, h.cfg.TickInterval)
	f.OnTick(h.handleFloorTick)
	f.OnEnded(h.handleFloorEnded)
	h.floors = append(h.floors, f)

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return f.ID, nil
}

// CreatePlayerFloor lists one of the player's own artworks on a new
// floor. The player becomes the floor's auctioneer and may never bid on
// it; the floor is deleted outright after settlement.
func (h *House) CreatePlayerFloor(ctx context.Context, playerID, artworkID, minBid int64) (uuid.UUID, error) {
	const op = "auction.House.CreatePlayerFloor"

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return uuid.Nil, ErrHouseClosed
	}

	p, ok := h.occupants[playerID]
	if !ok {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s:%w", op, ErrPlayerNotConnected)
	}

	artwork, ok := p.Artworks[artworkID]
	if !ok {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s:%w", op, ErrArtworkNotOwned)
	}
	if artwork.IsBeingAuctioned {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s:%w", op, ErrArtworkAlreadyListed)
	}

	artwork.IsBeingAuctioned = true
	if err := h.repo.UpdatePlayerArtwork(ctx, playerID, artwork); err != nil {
		h.mu.Unlock()
		return uuid.Nil, fmt.Errorf("%s:%w", op, err)
	}
	p.Artworks[artworkID] = artwork

	f := NewFloor(artwork, minBid, p, h.cfg.FloorSeconds, h.cfg.TickInterval)
	f.OnTick(h.handleFloorTick)
	f.OnEnded(h.handleFloorEnded)
	h.floors = append(h.floors, f)

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return f.ID, nil
}

// StartFloor begins a floor's countdown.
func (h *House) StartFloor(ctx context.Context, floorID uuid.UUID) error {
	const op = "auction.House.StartFloor"

	h.mu.Lock()
	f, _, err := h.findFloorLocked(floorID)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}
	if err := f.Start(); err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return nil
}

// MakeBid validates and possibly accepts a bid. Rejection is a silent
// no-op on the floor's state (accepted == false); only a missing floor
// or disconnected player is an error. Admission rules, in order: the
// amount must exceed the floor's minimum bid, must strictly exceed the
// current accepted bid, the bidder must not be the auctioneer, and the
// amount must not exceed the bidder's balance.
func (h *House) MakeBid(ctx context.Context, playerID int64, floorID uuid.UUID, amount int64) (bool, error) {
	const op = "auction.House.MakeBid"

	h.mu.Lock()
	f, _, err := h.findFloorLocked(floorID)
	if err != nil {
		h.mu.Unlock()
		return false, fmt.Errorf("%s:%w", op, err)
	}

	p, ok := h.occupants[playerID]
	if !ok {
		h.mu.Unlock()
		return false, fmt.Errorf("%s:%w", op, ErrPlayerNotConnected)
	}

	if !f.accepting() ||
		amount <= f.MinBid() ||
		amount > p.Money {
		h.mu.Unlock()
		return false, nil
	}
	if cur := f.CurrentBid(); cur != nil && amount <= cur.Amount {
		h.mu.Unlock()
		return false, nil
	}
	if a := f.Auctioneer(); a != nil && a.ID == playerID {
		h.mu.Unlock()
		return false, nil
	}

	f.setCurrentBid(&Bid{Player: p, Amount: amount})

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return true, nil
}

// JoinFloorAsObserver adds the player to the floor's observer set,
// dropping them from the bidder set if present.
func (h *House) JoinFloorAsObserver(ctx context.Context, playerID int64, floorID uuid.UUID) error {
	return h.joinFloor(ctx, "auction.House.JoinFloorAsObserver", playerID, floorID, (*Floor).addObserver)
}

// JoinFloorAsBidder adds the player to the floor's bidder set, dropping
// them from the observer set if present.
func (h *House) JoinFloorAsBidder(ctx context.Context, playerID int64, floorID uuid.UUID) error {
	return h.joinFloor(ctx, "auction.House.JoinFloorAsBidder", playerID, floorID, (*Floor).addBidder)
}

func (h *House) joinFloor(ctx context.Context, op string, playerID int64, floorID uuid.UUID, add func(*Floor, *Player)) error {
	h.mu.Lock()
	f, _, err := h.findFloorLocked(floorID)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}

	p, ok := h.occupants[playerID]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, ErrPlayerNotConnected)
	}

	add(f, p)

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return nil
}

// LeaveFloor removes the player from both membership sets. A departing
// highest bidder forfeits the bid entirely (no fallback to a previous
// bid). A departing auctioneer kills the floor: the countdown is
// stopped, the floor is deleted, and the artwork reverts to not being
// auctioned in both the wallet and the durable store.
func (h *House) LeaveFloor(ctx context.Context, playerID int64, floorID uuid.UUID) error {
	const op = "auction.House.LeaveFloor"

	h.mu.Lock()
	f, _, err := h.findFloorLocked(floorID)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}

	_, wasAuctioneer := f.removeMember(playerID)
	if wasAuctioneer {
		if err := h.abandonFloorLocked(ctx, f); err != nil {
			h.mu.Unlock()
			return fmt.Errorf("%s:%w", op, err)
		}
	}

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return nil
}

// DeleteFloor removes exactly one floor by id, stops its countdown and
// unlists the artwork: a player-owned floor reverts it to the seller,
// a house-owned floor returns it to the untouched tail of the pool.
// A second delete of the same id fails with ErrFloorNotFound, which
// guards against double-deletion races.
func (h *House) DeleteFloor(ctx context.Context, floorID uuid.UUID) error {
	const op = "auction.House.DeleteFloor"

	h.mu.Lock()
	f, _, err := h.findFloorLocked(floorID)
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}

	if f.Auctioneer() != nil {
		err = h.abandonFloorLocked(ctx, f)
	} else {
		err = h.retireHouseFloorLocked(ctx, f)
	}
	if err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return nil
}

// EnterArea admits a player to the auction house. Identity is resolved
// upstream; unknown players get a fresh account with the starting
// balance.
func (h *House) EnterArea(ctx context.Context, playerID int64, email string) (*Player, error) {
	const op = "auction.House.EnterArea"

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHouseClosed
	}

	if p, ok := h.occupants[playerID]; ok {
		h.mu.Unlock()
		return p, nil
	}

	rec, err := h.repo.GetPlayer(ctx, playerID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		if err := h.repo.AddPlayer(ctx, playerID, email, StartingBalance); err != nil {
			h.mu.Unlock()
			return nil, fmt.Errorf("%s:%w", op, err)
		}
		rec = &domain.PlayerRecord{ID: playerID, Email: email, Money: StartingBalance}
	case err != nil:
		h.mu.Unlock()
		return nil, fmt.Errorf("%s:%w", op, err)
	default:
		if err := h.repo.UpdatePlayer(ctx, playerID, true, rec.Money); err != nil {
			h.mu.Unlock()
			return nil, fmt.Errorf("%s:%w", op, err)
		}
	}

	p := NewPlayer(rec)
	h.occupants[playerID] = p

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return p, nil
}

// LeaveArea removes a player from the house: membership on every floor
// is dropped (with LeaveFloor semantics, so floors they auctioneer are
// deleted) and the wallet is persisted.
func (h *House) LeaveArea(ctx context.Context, playerID int64) error {
	const op = "auction.House.LeaveArea"

	h.mu.Lock()
	p, ok := h.occupants[playerID]
	if !ok {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, ErrPlayerNotConnected)
	}

	for _, f := range append([]*Floor(nil), h.floors...) {
		_, wasAuctioneer := f.removeMember(playerID)
		if wasAuctioneer {
			if err := h.abandonFloorLocked(ctx, f); err != nil {
				h.logger.Error("abandon floor on area leave", "floor_id", f.ID, "error", err)
			}
		}
	}

	if err := h.repo.UpdatePlayer(ctx, playerID, false, p.Money); err != nil {
		h.mu.Unlock()
		return fmt.Errorf("%s:%w", op, err)
	}
	delete(h.occupants, playerID)

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
	return nil
}

// Replenish tops the pool up from the catalog source, deduplicating
// against the circulation registry. Idempotent: ids already seen are
// skipped.
func (h *House) Replenish(ctx context.Context) (int, error) {
	const op = "auction.House.Replenish"

	h.mu.Lock()
	defer h.mu.Unlock()

	before := len(h.pool)
	if err := h.replenishLocked(ctx, true); err != nil {
		return 0, fmt.Errorf("%s:%w", op, err)
	}
	return len(h.pool) - before, nil
}

// Model is the projection handed to the area-broadcast channel.
func (h *House) Model() domain.HouseModel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.modelLocked()
}

// Close stops every floor countdown. The house takes no further
// mutations.
func (h *House) Close() {
	h.mu.Lock()
	h.closed = true
	floors := append([]*Floor(nil), h.floors...)
	h.mu.Unlock()

	for _, f := range floors {
		f.Stop()
	}
}

// --- floor event handlers (run on floor countdown goroutines) ---

func (h *House) handleFloorTick(f *Floor, _ int) {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastTimeout)
	defer cancel()

	h.mu.Lock()
	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
}

// handleFloorEnded runs the settlement protocol exactly once per floor
// expiry: the terminal ended status is set by the floor before the
// handler fires, and a floor that was already removed from the house
// (auctioneer left on the final tick) is skipped. A closed house takes
// no settlements either: shutdown may race the final tick.
func (h *House) handleFloorEnded(f *Floor) {
	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	if _, _, err := h.findFloorLocked(f.ID); err != nil {
		h.mu.Unlock()
		return
	}

	sold, err := h.settleLocked(ctx, f)
	if err != nil {
		h.logger.Error("settlement failed", "floor_id", f.ID, "error", err)
	}

	switch {
	case f.Auctioneer() == nil:
		if err := h.resetFloorLocked(ctx, f, sold); err != nil {
			h.logger.Error("reset auction floor", "floor_id", f.ID, "error", err)
		}
	case sold:
		h.removeFloorLocked(f.ID)
	default:
		// expired unsold: the artwork goes back to the seller unlisted
		if err := h.abandonFloorLocked(ctx, f); err != nil {
			h.logger.Error("return unsold artwork", "floor_id", f.ID, "error", err)
		}
	}

	m := h.modelLocked()
	h.mu.Unlock()

	h.publish(ctx, m)
}

// --- settlement ---

// settleLocked transfers funds and ownership for a floor with an
// accepted bid. Durable state moves first, in one repository
// transaction; in-memory wallets are only touched once it commits.
func (h *House) settleLocked(ctx context.Context, f *Floor) (bool, error) {
	bid := f.CurrentBid()
	if bid == nil {
		return false, nil
	}

	buyer := bid.Player
	seller := f.Auctioneer()
	artwork := f.Artwork()

	artwork.IsBeingAuctioned = false
	artwork.PurchasePrice = bid.Amount
	sale := domain.Sale{BuyerID: buyer.ID, Price: bid.Amount, At: time.Now().UTC()}

	var sellerParty *SettlementParty
	if seller != nil {
		id := seller.ID
		sale.SellerID = &id
		sellerParty = &SettlementParty{ID: seller.ID, Money: seller.Money + bid.Amount}
	}
	artwork.PurchaseHistory = append(artwork.PurchaseHistory, sale)

	s := Settlement{
		Artwork:    artwork,
		BuyerID:    buyer.ID,
		BuyerMoney: buyer.Money - bid.Amount,
		Seller:     sellerParty,
		FromHouse:  seller == nil,
	}
	if err := h.repo.Settle(ctx, s); err != nil {
		return false, err
	}

	if seller != nil {
		seller.Money += bid.Amount
		seller.removeArtwork(artwork.ID)
	}
	buyer.Money -= bid.Amount
	buyer.addArtwork(artwork)

	h.logger.Info("auction settled",
		"floor_id", f.ID,
		"artwork_id", artwork.ID,
		"buyer_id", buyer.ID,
		"amount", bid.Amount,
	)
	return true, nil
}

// resetFloorLocked recycles an ended house-owned floor. After a sale the
// sold artwork leaves the pool and the next untouched artwork takes the
// floor; without one the floor keeps its artwork. An empty pool with
// nothing to replenish is a reported error, not a silent drop.
func (h *House) resetFloorLocked(ctx context.Context, f *Floor, sold bool) error {
	if !sold {
		return f.Reset(f.Artwork())
	}

	h.removeFromPoolLocked(f.Artwork().ID)

	next, err := h.nextPoolArtworkLocked(ctx)
	if err != nil {
		return err
	}

	next.IsBeingAuctioned = true
	if err := h.repo.UpdateHouseArtwork(ctx, next); err != nil {
		return err
	}
	h.pool[h.cursor] = next
	h.cursor++

	return f.Reset(next)
}

// abandonFloorLocked deletes a player-owned floor whose auctioneer left
// mid-auction and reverts the artwork in both the wallet and the
// durable store.
func (h *House) abandonFloorLocked(ctx context.Context, f *Floor) error {
	f.Stop()
	h.removeFloorLocked(f.ID)

	seller := f.Auctioneer()
	artwork := f.Artwork()
	artwork.IsBeingAuctioned = false

	if err := h.repo.UpdatePlayerArtwork(ctx, seller.ID, artwork); err != nil {
		return err
	}
	seller.Artworks[artwork.ID] = artwork
	return nil
}

// retireHouseFloorLocked deletes a house-owned floor and moves its
// artwork past the cursor so a later house floor can pick it up again.
func (h *House) retireHouseFloorLocked(ctx context.Context, f *Floor) error {
	f.Stop()
	h.removeFloorLocked(f.ID)

	artwork := f.Artwork()
	artwork.IsBeingAuctioned = false
	if err := h.repo.UpdateHouseArtwork(ctx, artwork); err != nil {
		return err
	}
	h.removeFromPoolLocked(artwork.ID)
	h.pool = append(h.pool, artwork)
	return nil
}

// --- pool bookkeeping ---

// nextPoolArtworkLocked peeks the next untouched pool artwork,
// replenishing from the catalog when the pool runs dry. The caller
// advances the cursor once the artwork is committed to a floor.
func (h *House) nextPoolArtworkLocked(ctx context.Context) (domain.Artwork, error) {
	if h.cursor >= len(h.pool) {
		if err := h.replenishLocked(ctx, false); err != nil {
			return domain.Artwork{}, err
		}
	}
	if h.cursor >= len(h.pool) {
		return domain.Artwork{}, ErrPoolExhausted
	}
	return h.pool[h.cursor], nil
}

func (h *House) replenishLocked(ctx context.Context, force bool) error {
	if h.source == nil {
		return nil
	}
	if !force && len(h.pool)-h.cursor >= h.cfg.PoolLowWater {
		return nil
	}

	seen := make(map[int64]struct{})
	ids, err := h.repo.ArtworkIDsInCirculation(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		seen[id] = struct{}{}
	}

	batch, err := h.source.FetchNextBatch(ctx, h.nextFetchID, h.cfg.FetchBatch)
	if err != nil {
		return err
	}
	h.nextFetchID += int64(h.cfg.FetchBatch)

	fresh := batch[:0:0]
	for _, a := range batch {
		if _, dup := seen[a.ID]; dup {
			continue
		}
		a.IsBeingAuctioned = false
		fresh = append(fresh, a)
		if a.ID >= h.nextFetchID {
			h.nextFetchID = a.ID + 1
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	if err := h.repo.AddArtworksToHouse(ctx, fresh); err != nil {
		return err
	}
	h.pool = append(h.pool, fresh...)

	h.logger.Info("pool replenished", "added", len(fresh), "pool_size", len(h.pool))
	return nil
}

func (h *House) removeFromPoolLocked(artworkID int64) {
	for i, a := range h.pool {
		if a.ID != artworkID {
			continue
		}
		h.pool = append(h.pool[:i], h.pool[i+1:]...)
		if i < h.cursor {
			h.cursor--
		}
		return
	}
}

// --- helpers ---

func (h *House) findFloorLocked(floorID uuid.UUID) (*Floor, int, error) {
	for i, f := range h.floors {
		if f.ID == floorID {
			return f, i, nil
		}
	}
	return nil, -1, ErrFloorNotFound
}

func (h *House) removeFloorLocked(floorID uuid.UUID) {
	for i, f := range h.floors {
		if f.ID == floorID {
			h.floors = append(h.floors[:i], h.floors[i+1:]...)
			return
		}
	}
}

func (h *House) modelLocked() domain.HouseModel {
	occupants := make([]domain.PlayerModel, 0, len(h.occupants))
	for _, p := range h.occupants {
		occupants = append(occupants, p.Model())
	}
	sort.Slice(occupants, func(i, j int) bool { return occupants[i].ID < occupants[j].ID })

	floors := make([]domain.FloorModel, 0, len(h.floors))
	for _, f := range h.floors {
		floors = append(floors, f.Model())
	}

	return domain.HouseModel{
		ID:        h.ID,
		Type:      areaType,
		Occupants: occupants,
		Floors:    floors,
	}
}

func (h *House) publish(ctx context.Context, m domain.HouseModel) {
	if h.broadcast == nil {
		return
	}
	if err := h.broadcast.BroadcastAreaChanged(ctx, m); err != nil {
		h.logger.Error("broadcast area changed", "error", err)
	}
}
