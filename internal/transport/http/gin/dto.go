package httpgin

import "github.com/okhirenko/gavel-go/internal/domain"

type CreatePlayerFloorRequest struct {
	ArtworkID int64 `json:"artwork_id" binding:"required"`
	MinBid    int64 `json:"min_bid" binding:"gte=0"`
}

type CreateHouseFloorRequest struct {
	MinBid int64 `json:"min_bid" binding:"gte=0"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type ArtworkInput struct {
	ID            int64  `json:"id" binding:"required"`
	Title         string `json:"title" binding:"required"`
	ArtistName    string `json:"artist_name" binding:"required"`
	Description   string `json:"description"`
	Medium        string `json:"medium"`
	Department    string `json:"department"`
	PrimaryImage  string `json:"primary_image"`
	PurchasePrice int64  `json:"purchase_price" binding:"gte=0"`
}

func (in ArtworkInput) toDomain() domain.Artwork {
	return domain.Artwork{
		ID:            in.ID,
		Title:         in.Title,
		Artist:        domain.Artist{Name: in.ArtistName},
		Description:   in.Description,
		Medium:        in.Medium,
		Department:    in.Department,
		PrimaryImage:  in.PrimaryImage,
		PurchasePrice: in.PurchasePrice,
	}
}

type SeedArtworksRequest struct {
	Artworks []ArtworkInput `json:"artworks" binding:"required,min=1,dive"`
	Offset   int            `json:"offset" binding:"gte=0"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type CreateFloorResponse struct {
	FloorID string `json:"floor_id"`
}

type PlaceBidResponse struct {
	Accepted bool `json:"accepted"`
}

type EnterHouseResponse struct {
	Player   domain.PlayerModel `json:"player"`
	Money    int64              `json:"money"`
	NetWorth int64              `json:"net_worth"`
	Artworks []domain.Artwork   `json:"artworks"`
}

type ReplenishResponse struct {
	Added int `json:"added"`
}
