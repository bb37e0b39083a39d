// Package notify fans ranking events out to Redis pub/sub so that other
// processes can follow a game type's leaderboard live.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/math-arcade/internal/event"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type (
	Notification struct {
		ID    string `json:"id"`
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	EntryRanked struct {
		Entry        leaderboard.Entry   `json:"entry"`
		UserPosition int                 `json:"userPosition"`
		TopEntries   []leaderboard.Entry `json:"topEntries"`
	}
)

type Config struct {
	EventBus *event.Bus
	Redis    Redis
	Prefix   string
}

// RedisPublisher publishes every ranked entry to "<prefix>:<gameType>:ranked".
type RedisPublisher struct {
	redis  Redis
	prefix string
}

// New subscribes the publisher to the bus.
func New(c Config) *RedisPublisher {
	p := &RedisPublisher{
		redis:  c.Redis,
		prefix: c.Prefix,
	}
	if p.prefix == "" {
		p.prefix = "arcade"
	}

	c.EventBus.Subscribe(leaderboard.EventNameEntryRanked, func(ctx context.Context, e event.Event) error {
		return p.PublishEntryRanked(ctx, e.(leaderboard.EventEntryRanked))
	})

	return p
}

func (p *RedisPublisher) PublishEntryRanked(ctx context.Context, e leaderboard.EventEntryRanked) error {
	data := EntryRanked{
		Entry:        e.Entry,
		UserPosition: e.Standing.UserPosition,
		TopEntries:   e.Standing.TopEntries,
	}

	return p.publish(ctx, Channel(p.prefix, e.Entry.GameType), e.Name(), data)
}

// Channel names the pub/sub channel of a game type.
func Channel(prefix, gameType string) string {
	return fmt.Sprintf("%s:%s:ranked", prefix, gameType)
}

func (p *RedisPublisher) publish(ctx context.Context, channel, event string, data any) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("pubsub: notification id: %v", err)
	}

	n := Notification{
		ID:    id.String(),
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return p.redis.Publish(ctx, channel, b).Err()
}
