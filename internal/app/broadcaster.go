package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/okhirenko/gavel-go/internal/domain"
	redisx "github.com/okhirenko/gavel-go/internal/redis"
	redisrepo "github.com/okhirenko/gavel-go/internal/repository/redis"
)

// areaBroadcaster publishes area-changed events and drops the cached
// house projection so the next read rebuilds it.
type areaBroadcaster struct {
	pubsub *redisx.AreaPubSub
	cache  *redisrepo.Cache
	logger *slog.Logger
}

func (b *areaBroadcaster) BroadcastAreaChanged(ctx context.Context, model domain.HouseModel) error {
	const op = "app.areaBroadcaster.BroadcastAreaChanged"

	if b.cache != nil {
		if err := b.cache.InvalidateHouse(ctx); err != nil {
			b.logger.Warn("failed to invalidate house cache", "error", err)
		}
	}

	if err := b.pubsub.PublishAreaChanged(ctx, model); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}
	return nil
}
