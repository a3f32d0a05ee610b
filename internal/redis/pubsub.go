package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okhirenko/gavel-go/internal/domain"
)

// AreaPubSub fans the auction-house projection out to every connected
// node after a floor or membership mutation. The payload is the full
// house model, so subscribers never need a read-back.
type AreaPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewAreaPubSub(rdb *redis.Client) *AreaPubSub {
	return &AreaPubSub{
		rdb:     rdb,
		channel: ChannelAreaChanged(),
	}
}

type areaChangedMsg struct {
	Type   string            `json:"type"`
	House  domain.HouseModel `json:"house"`
	TsUnix int64             `json:"ts_unix"`
}

func (p *AreaPubSub) PublishAreaChanged(ctx context.Context, model domain.HouseModel) error {
	msg := areaChangedMsg{
		Type:   "area_changed",
		House:  model,
		TsUnix: time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *AreaPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, model domain.HouseModel)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev areaChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil {
				handler(ctx, ev.House)
			}
		}
	}
}
