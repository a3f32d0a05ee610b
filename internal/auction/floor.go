package auction

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okhirenko/gavel-go/internal/domain"
)

// Bid is the highest accepted bid on a floor so far. A floor holds at
// most one, and accepted amounts are strictly increasing over the
// floor's lifetime.
type Bid struct {
	Player *Player
	Amount int64
}

// Floor is a single timed auction for one artwork.
//
// Lifecycle: constructed waiting_to_start with a full countdown window;
// Start moves it to in_progress and launches a once-per-tick countdown;
// at zero the floor becomes ended and fires its registered ended handler
// exactly once. House-owned floors are then Reset in place; player-owned
// floors are discarded.
//
// The floor knows nothing about the house: the house registers OnTick and
// OnEnded handlers before starting it. Handlers run on the floor's
// countdown goroutine with no floor lock held.
type Floor struct {
	ID uuid.UUID

	mu         sync.Mutex
	status     domain.FloorStatus
	artwork    domain.Artwork
	duration   int
	timeLeft   int
	minBid     int64
	currentBid *Bid
	auctioneer *Player
	observers  map[int64]*Player
	bidders    map[int64]*Player

	tickEvery time.Duration
	onTick    func(f *Floor, timeLeft int)
	onEnded   func(f *Floor)
	stopCh    chan struct{}
	done      chan struct{}
}

// NewFloor builds a waiting_to_start floor. auctioneer is nil for
// house-owned floors.
func NewFloor(artwork domain.Artwork, minBid int64, auctioneer *Player, duration int, tickEvery time.Duration) *Floor {
	return &Floor{
		ID:         uuid.New(),
		status:     domain.FloorWaitingToStart,
		artwork:    artwork,
		duration:   duration,
		timeLeft:   duration,
		minBid:     minBid,
		auctioneer: auctioneer,
		observers:  make(map[int64]*Player),
		bidders:    make(map[int64]*Player),
		tickEvery:  tickEvery,
	}
}

// OnTick registers the time-decreased handler. Must be set before Start.
func (f *Floor) OnTick(h func(f *Floor, timeLeft int)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onTick = h
}

// OnEnded registers the terminal handler. Must be set before Start.
func (f *Floor) OnEnded(h func(f *Floor)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onEnded = h
}

// Start moves the floor to in_progress and begins the countdown.
func (f *Floor) Start() error {
	f.mu.Lock()
	if f.status != domain.FloorWaitingToStart {
		f.mu.Unlock()
		return ErrFloorAlreadyStarted
	}
	f.status = domain.FloorInProgress
	stop := make(chan struct{})
	done := make(chan struct{})
	f.stopCh = stop
	f.done = done
	f.mu.Unlock()

	go f.run(stop, done)
	return nil
}

func (f *Floor) run(stop, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(f.tickEvery)
	defer t.Stop()

	for {
		select {
		case <-stop:
			return
		case <-t.C:
			left, ended, onTick, onEnded := f.decrement()
			if onTick != nil {
				onTick(f, left)
			}
			if ended {
				if onEnded != nil {
					onEnded(f)
				}
				return
			}
		}
	}
}

// decrement takes one second off the clock. It returns the handlers to
// fire so they run without the floor lock held.
func (f *Floor) decrement() (left int, ended bool, onTick func(*Floor, int), onEnded func(*Floor)) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != domain.FloorInProgress {
		// stopped between ticks
		return f.timeLeft, true, nil, nil
	}

	f.timeLeft--
	left = f.timeLeft
	onTick = f.onTick

	if f.timeLeft <= 0 {
		f.status = domain.FloorEnded
		ended = true
		onEnded = f.onEnded
	}

	return left, ended, onTick, onEnded
}

// Stop cancels the countdown. Idempotent; owned by whichever operation
// removes the floor from the house. Stop signals the countdown goroutine
// and returns without waiting for it: callers hold the house lock, and
// an in-flight tick handler may itself be waiting on that lock. A
// handler that loses the race finds its floor already removed from the
// house and backs out.
func (f *Floor) Stop() {
	f.mu.Lock()
	stop := f.stopCh
	if f.status == domain.FloorInProgress {
		f.status = domain.FloorEnded
	}
	f.stopCh = nil
	f.mu.Unlock()

	if stop != nil {
		close(stop)
	}
}

// finished returns the channel closed when the countdown goroutine
// exits, or nil for a floor that never started.
func (f *Floor) finished() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Reset recycles an ended house-owned floor in place: fresh countdown,
// no bid, possibly a new artwork. Calling it on a floor that has not
// ended is an error, which also guards against double settlement.
func (f *Floor) Reset(artwork domain.Artwork) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != domain.FloorEnded {
		return ErrFloorNotEnded
	}

	f.status = domain.FloorWaitingToStart
	f.artwork = artwork
	f.timeLeft = f.duration
	f.currentBid = nil
	return nil
}

func (f *Floor) Status() domain.FloorStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *Floor) TimeLeft() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.timeLeft
}

func (f *Floor) MinBid() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.minBid
}

func (f *Floor) Artwork() domain.Artwork {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.artwork
}

func (f *Floor) CurrentBid() *Bid {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentBid
}

// Auctioneer returns the floor's seller, nil for house-owned floors.
func (f *Floor) Auctioneer() *Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auctioneer
}

// accepting reports whether the floor can take a bid at all. Admission
// rules live in the house; the floor only rules out ended floors.
func (f *Floor) accepting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status == domain.FloorWaitingToStart || f.status == domain.FloorInProgress
}

func (f *Floor) setCurrentBid(b *Bid) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentBid = b
}

func (f *Floor) addObserver(p *Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.observers[p.ID] = p
	delete(f.bidders, p.ID)
}

func (f *Floor) addBidder(p *Player) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bidders[p.ID] = p
	delete(f.observers, p.ID)
}

// removeMember drops the player from both membership sets and reports
// whether they held the current bid (which is then forfeited) or were
// the auctioneer.
func (f *Floor) removeMember(playerID int64) (hadBid, wasAuctioneer bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.observers, playerID)
	delete(f.bidders, playerID)

	if f.currentBid != nil && f.currentBid.Player.ID == playerID {
		f.currentBid = nil
		hadBid = true
	}
	wasAuctioneer = f.auctioneer != nil && f.auctioneer.ID == playerID
	return hadBid, wasAuctioneer
}

func (f *Floor) isMember(playerID int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, obs := f.observers[playerID]
	_, bid := f.bidders[playerID]
	return obs || bid
}

// Model is the floor's serialization contract for the area broadcast.
func (f *Floor) Model() domain.FloorModel {
	f.mu.Lock()
	defer f.mu.Unlock()

	m := domain.FloorModel{
		ID:        f.ID,
		Status:    f.status,
		Artwork:   f.artwork,
		TimeLeft:  f.timeLeft,
		MinBid:    f.minBid,
		Observers: playerModels(f.observers),
		Bidders:   playerModels(f.bidders),
	}
	if f.currentBid != nil {
		m.CurrentBid = &domain.BidModel{
			Player: f.currentBid.Player.Model(),
			Amount: f.currentBid.Amount,
		}
	}
	if f.auctioneer != nil {
		am := f.auctioneer.Model()
		m.Auctioneer = &am
	}
	return m
}

func playerModels(set map[int64]*Player) []domain.PlayerModel {
	out := make([]domain.PlayerModel, 0, len(set))
	for _, p := range set {
		out = append(out, p.Model())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
