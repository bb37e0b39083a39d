package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/math-arcade/internal/event"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
	"github.com/vovakirdan/math-arcade/internal/notify"
)

func TestRedisPublisher_EntryRanked(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs := miniredis.RunT(t)
	rc := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{rs.Addr()}})
	t.Cleanup(func() { rc.Close() })

	sub := rc.Subscribe(ctx, notify.Channel("test", "addition"))
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err, "should confirm subscription")

	eb := event.NewBus()
	notify.New(notify.Config{EventBus: eb, Redis: rc, Prefix: "test"})

	entry := leaderboard.Entry{ID: 7, UserID: "ada", GameType: "addition", Score: 4, Points: 31}
	eb.Publish(ctx, leaderboard.EventEntryRanked{
		Entry: entry,
		Standing: leaderboard.Standing{
			TopEntries:   []leaderboard.Entry{entry},
			UserPosition: 1,
		},
	})
	eb.Stop()

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)

	var got struct {
		ID    string `json:"id"`
		Event string `json:"event"`
		Data  struct {
			Entry        leaderboard.Entry `json:"entry"`
			UserPosition int               `json:"userPosition"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))

	assert.NotEmpty(t, got.ID)
	assert.Equal(t, leaderboard.EventNameEntryRanked, got.Event)
	assert.Equal(t, 1, got.Data.UserPosition)
	assert.Equal(t, "ada", got.Data.Entry.UserID)
	assert.Equal(t, 31, got.Data.Entry.Points)
}

func TestChannel(t *testing.T) {
	assert.Equal(t, "arcade:division:ranked", notify.Channel("arcade", "division"))
}
