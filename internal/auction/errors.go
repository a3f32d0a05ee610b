package auction

import "errors"

var (
	ErrFloorNotFound        = errors.New("no floor with id found")
	ErrPlayerNotConnected   = errors.New("player is not in the auction house")
	ErrArtworkNotOwned      = errors.New("player does not have artwork with id")
	ErrArtworkAlreadyListed = errors.New("artwork is already being auctioned")
	ErrPoolExhausted        = errors.New("no artwork left in the auction house")
	ErrFloorAlreadyStarted  = errors.New("auction floor already started")
	ErrFloorNotEnded        = errors.New("auction floor has not ended")
	ErrInvalidOffset        = errors.New("offset exceeds artwork batch")
	ErrHouseClosed          = errors.New("auction house is closed")
)
