package auction

import (
	"sort"

	"github.com/okhirenko/gavel-go/internal/domain"
)

// StartingBalance is credited to every account on first entry.
const StartingBalance int64 = 1_000_000

// Player is a connected account: identity, wallet and owned artworks.
// Players are mutated only by the house, under the house lock.
type Player struct {
	ID       int64
	Email    string
	Money    int64
	NetWorth int64
	Artworks map[int64]domain.Artwork
}

func NewPlayer(rec *domain.PlayerRecord) *Player {
	p := &Player{
		ID:       rec.ID,
		Email:    rec.Email,
		Money:    rec.Money,
		Artworks: make(map[int64]domain.Artwork, len(rec.Artworks)),
	}
	for _, a := range rec.Artworks {
		p.Artworks[a.ID] = a
	}
	p.recomputeNetWorth()
	return p
}

func (p *Player) OwnsArtwork(id int64) bool {
	_, ok := p.Artworks[id]
	return ok
}

func (p *Player) addArtwork(a domain.Artwork) {
	p.Artworks[a.ID] = a
	p.recomputeNetWorth()
}

func (p *Player) removeArtwork(id int64) {
	delete(p.Artworks, id)
	p.recomputeNetWorth()
}

// recomputeNetWorth values owned artworks at their last recorded sale
// price, so a settlement at price == valuation is net-worth neutral for
// both sides.
func (p *Player) recomputeNetWorth() {
	nw := p.Money
	for _, a := range p.Artworks {
		nw += a.PurchasePrice
	}
	p.NetWorth = nw
}

func (p *Player) Model() domain.PlayerModel {
	return domain.PlayerModel{ID: p.ID, Email: p.Email}
}

// ArtworkList returns the wallet's artworks in stable id order.
func (p *Player) ArtworkList() []domain.Artwork {
	out := make([]domain.Artwork, 0, len(p.Artworks))
	for _, a := range p.Artworks {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
