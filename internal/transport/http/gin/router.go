package httpgin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/okhirenko/gavel-go/internal/auction"
	"github.com/okhirenko/gavel-go/internal/domain"
	redisx "github.com/okhirenko/gavel-go/internal/redis"
	"github.com/okhirenko/gavel-go/internal/repository"
	redisrepo "github.com/okhirenko/gavel-go/internal/repository/redis"
)

const houseModelTTL = 1 * time.Second

func NewRouter(
	house *auction.House,
	cache *redisrepo.Cache,
	limiter *redisrepo.SlidingWindowLimiter,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// health
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public API
	r.GET("/house", handleGetHouse(house, cache))

	r.POST("/house/enter", handleEnterHouse(house))
	r.POST("/house/leave", handleLeaveHouse(house))
	r.POST("/house/floors", handleCreatePlayerFloor(house))

	r.POST("/floors/:id/start", handleStartFloor(house))
	r.POST("/floors/:id/bids", handlePlaceBid(house, limiter))
	r.POST("/floors/:id/observers", handleJoinFloor(house, (*auction.House).JoinFloorAsObserver))
	r.POST("/floors/:id/bidders", handleJoinFloor(house, (*auction.House).JoinFloorAsBidder))
	r.DELETE("/floors/:id/members", handleLeaveFloor(house))

	// Admin-API
	// TODO: add admin middleware
	admin := r.Group("/admin")
	{
		admin.POST("/artworks", handleSeedArtworks(house))
		admin.POST("/replenish", handleReplenish(house))
		admin.POST("/floors", handleCreateHouseFloor(house))
		admin.DELETE("/floors/:id", handleDeleteFloor(house))
	}

	return r
}

// --- Handlers with Swagger annotations ---

// @Summary  Get the auction-house state
// @Success  200  {object}  domain.HouseModel
// @Router   /house [get]
func handleGetHouse(house *auction.House, cache *redisrepo.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if cache == nil {
			writeJSONWithCache(c, http.StatusOK, house.Model(), "no-cache")
			return
		}

		m, err := redisrepo.GetOrSetJSON(ctx, cache, redisx.KeyHouseModel(), houseModelTTL,
			func(_ context.Context) (domain.HouseModel, error) {
				return house.Model(), nil
			},
		)
		if err != nil {
			respondErr(c, err)
			return
		}
		writeJSONWithCache(c, http.StatusOK, m, "no-cache")
	}
}

// @Summary  Enter the auction house
// @Param    X-Player-ID     header  int     true  "Resolved player id"
// @Param    X-Player-Email  header  string  true  "Resolved player email"
// @Success  200 {object} EnterHouseResponse
// @Failure  400 {object} ErrorResponse
// @Router   /house/enter [post]
func handleEnterHouse(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIdentity(c)
		if !ok {
			return
		}

		p, err := house.EnterArea(c.Request.Context(), playerID, c.GetHeader("X-Player-Email"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, EnterHouseResponse{
			Player:   p.Model(),
			Money:    p.Money,
			NetWorth: p.NetWorth,
			Artworks: p.ArtworkList(),
		})
	}
}

// @Summary  Leave the auction house
// @Param    X-Player-ID  header  int  true  "Resolved player id"
// @Success  204
// @Router   /house/leave [post]
func handleLeaveHouse(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIdentity(c)
		if !ok {
			return
		}

		if err := house.LeaveArea(c.Request.Context(), playerID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  List an owned artwork on a new floor
// @Param    X-Player-ID  header  int  true  "Resolved player id"
// @Param    req body  CreatePlayerFloorRequest true "payload"
// @Success  201 {object} CreateFloorResponse
// @Failure  404 {object} ErrorResponse
// @Failure  409 {object} ErrorResponse "artwork already listed"
// @Router   /house/floors [post]
func handleCreatePlayerFloor(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIdentity(c)
		if !ok {
			return
		}

		var req CreatePlayerFloorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		floorID, err := house.CreatePlayerFloor(c.Request.Context(), playerID, req.ArtworkID, req.MinBid)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateFloorResponse{FloorID: floorID.String()})
	}
}

// @Summary  Start a floor's countdown
// @Param    id  path  string  true  "Floor ID (uuid)"
// @Success  204
// @Failure  409 {object} ErrorResponse "already started"
// @Router   /floors/{id}/start [post]
func handleStartFloor(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		floorID, ok := parseFloorID(c)
		if !ok {
			return
		}

		if err := house.StartFloor(c.Request.Context(), floorID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Place a bid (rate limited)
// @Param    X-Player-ID  header  int  true  "Resolved player id"
// @Param    id  path  string  true  "Floor ID (uuid)"
// @Param    req body  PlaceBidRequest true "payload"
// @Success  200 {object} PlaceBidResponse
// @Failure  404 {object} ErrorResponse
// @Failure  429 {object} ErrorResponse "rate limited"
// @Router   /floors/{id}/bids [post]
func handlePlaceBid(house *auction.House, limiter *redisrepo.SlidingWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIdentity(c)
		if !ok {
			return
		}

		floorID, ok := parseFloorID(c)
		if !ok {
			return
		}

		var req PlaceBidRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		if limiter != nil {
			allowed, _, retry, err := limiter.Allow(c.Request.Context(), c.ClientIP())
			if err != nil {
				respondErr(c, err)
				return
			}
			if !allowed {
				c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
				c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limited"})
				return
			}
		}

		accepted, err := house.MakeBid(c.Request.Context(), playerID, floorID, req.Amount)
		if err != nil {
			respondErr(c, err)
			return
		}
		// rejected bids leave the floor untouched; the caller gets the
		// verdict here, not through the floor state
		c.JSON(http.StatusOK, PlaceBidResponse{Accepted: accepted})
	}
}

// @Summary  Join a floor as observer or bidder
// @Param    X-Player-ID  header  int  true  "Resolved player id"
// @Param    id  path  string  true  "Floor ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /floors/{id}/observers [post]
func handleJoinFloor(house *auction.House, join func(*auction.House, context.Context, int64, uuid.UUID) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIdentity(c)
		if !ok {
			return
		}

		floorID, ok := parseFloorID(c)
		if !ok {
			return
		}

		if err := join(house, c.Request.Context(), playerID, floorID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Leave a floor
// @Param    X-Player-ID  header  int  true  "Resolved player id"
// @Param    id  path  string  true  "Floor ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /floors/{id}/members [delete]
func handleLeaveFloor(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		playerID, ok := playerIdentity(c)
		if !ok {
			return
		}

		floorID, ok := parseFloorID(c)
		if !ok {
			return
		}

		if err := house.LeaveFloor(c.Request.Context(), playerID, floorID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// @Summary  Seed the house artwork pool
// @Param    req body  SeedArtworksRequest true "payload"
// @Success  201 {object} map[string]int
// @Failure  409 {object} ErrorResponse "artwork already in circulation"
// @Router   /admin/artworks [post]
func handleSeedArtworks(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SeedArtworksRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		artworks := make([]domain.Artwork, 0, len(req.Artworks))
		for _, in := range req.Artworks {
			artworks = append(artworks, in.toDomain())
		}

		if err := house.SetHouseArtworks(c.Request.Context(), artworks, req.Offset); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"seeded": len(artworks)})
	}
}

// @Summary  Replenish the pool from the museum catalog
// @Success  200 {object} ReplenishResponse
// @Router   /admin/replenish [post]
func handleReplenish(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		added, err := house.Replenish(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, ReplenishResponse{Added: added})
	}
}

// @Summary  Open a house-owned floor
// @Param    req body  CreateHouseFloorRequest true "payload"
// @Success  201 {object} CreateFloorResponse
// @Failure  409 {object} ErrorResponse "pool exhausted"
// @Router   /admin/floors [post]
func handleCreateHouseFloor(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateHouseFloorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}

		floorID, err := house.CreateHouseFloor(c.Request.Context(), req.MinBid)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, CreateFloorResponse{FloorID: floorID.String()})
	}
}

// @Summary  Delete a floor
// @Param    id  path  string  true  "Floor ID (uuid)"
// @Success  204
// @Failure  404 {object} ErrorResponse
// @Router   /admin/floors/{id} [delete]
func handleDeleteFloor(house *auction.House) gin.HandlerFunc {
	return func(c *gin.Context) {
		floorID, ok := parseFloorID(c)
		if !ok {
			return
		}

		if err := house.DeleteFloor(c.Request.Context(), floorID); err != nil {
			respondErr(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// --- Helpers ---

func playerIdentity(c *gin.Context) (int64, bool) {
	s := c.GetHeader("X-Player-ID")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "missing or invalid X-Player-ID")
		return 0, false
	}
	return id, true
}

func parseFloorID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid floor id")
		return uuid.Nil, false
	}
	return id, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func respondErr(c *gin.Context, err error) {
	if err == nil {
		c.Status(http.StatusNoContent)
		return
	}

	switch {
	// auction engine
	case errors.Is(err, auction.ErrFloorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "floor not found"})
		return
	case errors.Is(err, auction.ErrPlayerNotConnected):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "player is not in the auction house"})
		return
	case errors.Is(err, auction.ErrArtworkNotOwned):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "player does not have artwork with id"})
		return
	case errors.Is(err, auction.ErrArtworkAlreadyListed):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "artwork is already being auctioned"})
		return
	case errors.Is(err, auction.ErrFloorAlreadyStarted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "floor already started"})
		return
	case errors.Is(err, auction.ErrPoolExhausted):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "no artwork left in the auction house"})
		return
	case errors.Is(err, auction.ErrInvalidOffset):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "offset exceeds artwork batch"})
		return
	case errors.Is(err, auction.ErrHouseClosed):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "auction house is closed"})
		return
	// repository
	case errors.Is(err, repository.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "conflict"})
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}
