package domain

import (
	"time"

	"github.com/google/uuid"
)

type FloorStatus string

const (
	FloorWaitingToStart FloorStatus = "waiting_to_start"
	FloorInProgress     FloorStatus = "in_progress"
	FloorEnded          FloorStatus = "ended"
)

type Artist struct {
	Name string `json:"name"`
}

// Artwork is a catalog piece in circulation: owned by a player, sitting in
// the house pool, or up on a live floor. At most one live floor may
// reference a given artwork id at a time; IsBeingAuctioned mirrors that.
type Artwork struct {
	ID               int64  `json:"id"`
	Title            string `json:"title"`
	Artist           Artist `json:"artist"`
	Description      string `json:"description"`
	Medium           string `json:"medium"`
	Department       string `json:"department"`
	PrimaryImage     string `json:"primary_image"`
	PurchasePrice    int64  `json:"purchase_price"`
	IsBeingAuctioned bool   `json:"is_being_auctioned"`
	PurchaseHistory  []Sale `json:"purchase_history,omitempty"`
}

// Sale is one past transaction in an artwork's purchase history.
// SellerID is nil for sales out of the house pool.
type Sale struct {
	BuyerID  int64     `json:"buyer_id"`
	SellerID *int64    `json:"seller_id,omitempty"`
	Price    int64     `json:"price"`
	At       time.Time `json:"at"`
}

// PlayerRecord is the durable shape of a player account.
type PlayerRecord struct {
	ID         int64
	Email      string
	Money      int64
	IsLoggedIn bool
	Artworks   []Artwork
}

// --- wire projections pushed over the area-changed channel ---

type PlayerModel struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type BidModel struct {
	Player PlayerModel `json:"player"`
	Amount int64       `json:"amount"`
}

type FloorModel struct {
	ID         uuid.UUID     `json:"id"`
	Status     FloorStatus   `json:"status"`
	Artwork    Artwork       `json:"artwork"`
	TimeLeft   int           `json:"time_left"`
	MinBid     int64         `json:"min_bid"`
	CurrentBid *BidModel     `json:"current_bid,omitempty"`
	Auctioneer *PlayerModel  `json:"auctioneer,omitempty"`
	Observers  []PlayerModel `json:"observers"`
	Bidders    []PlayerModel `json:"bidders"`
}

type HouseModel struct {
	ID        uuid.UUID     `json:"id"`
	Type      string        `json:"type"`
	Occupants []PlayerModel `json:"occupants"`
	Floors    []FloorModel  `json:"floors"`
}
