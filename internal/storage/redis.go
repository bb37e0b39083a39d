package storage

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/leaderboard"
)

// Entries live in one sorted set per game type. The set score packs points
// and score so that ascending order is rank order; members start with the
// zero-padded CreatedAt and ID so equal scores fall back to them
// lexicographically.
const (
	scoreBits = 20
	scoreMask = 1<<scoreBits - 1
)

// RedisStore keeps entries in Redis sorted sets.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

var _ leaderboard.Store = (*RedisStore)(nil)

func NewRedisStore(r redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "arcade"
	}
	return &RedisStore{redis: r, prefix: prefix}
}

// CreateEntry assigns the ID from a counter and CreatedAt from the Redis
// server clock, then writes the entry and its stats in one transaction.
func (s *RedisStore) CreateEntry(ctx context.Context, e leaderboard.NewEntry) (leaderboard.Entry, error) {
	if err := checkPackable(e.Score, e.Points); err != nil {
		return leaderboard.Entry{}, err
	}

	id, err := s.redis.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot allocate entry id: %w", err)
	}

	now, err := s.redis.Time(ctx).Result()
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot read redis time: %w", err)
	}

	entry := leaderboard.Entry{
		ID:        id,
		UserID:    e.UserID,
		GameType:  e.GameType,
		Score:     e.Score,
		Points:    e.Points,
		CreatedAt: now.UTC(),
	}

	_, err = s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZAdd(ctx, s.boardKey(e.GameType), redis.Z{
			Score:  rankScore(e.Points, e.Score),
			Member: member(entry),
		})
		p.HIncrBy(ctx, s.statsKey(e.GameType), "count", 1)
		p.HIncrBy(ctx, s.statsKey(e.GameType), "points", int64(e.Points))
		return nil
	})
	if err != nil {
		return leaderboard.Entry{}, fmt.Errorf("storage: cannot save entry: %w", err)
	}

	return entry, nil
}

func (s *RedisStore) ListEntries(ctx context.Context, gameType string, limit, offset int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultTopN
	}
	offset = max(offset, 0)

	res, err := s.redis.ZRangeWithScores(ctx, s.boardKey(gameType), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query entries: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(res))
	for _, z := range res {
		e, err := parseMember(z.Member.(string))
		if err != nil {
			return nil, err
		}
		e.GameType = gameType
		e.Points, e.Score = unpackScore(z.Score)
		entries = append(entries, e)
	}

	return entries, nil
}

// CountBetter counts every entry with a lower packed score, plus the entries
// tied on points and score whose member sorts before e's.
func (s *RedisStore) CountBetter(ctx context.Context, e leaderboard.Entry) (int, error) {
	if err := checkPackable(e.Score, e.Points); err != nil {
		return 0, err
	}

	key := s.boardKey(e.GameType)
	z := rankScore(e.Points, e.Score)
	zs := strconv.FormatFloat(z, 'f', -1, 64)

	ahead, err := s.redis.ZCount(ctx, key, "-inf", "("+zs).Result()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count entries: %w", err)
	}

	tied, err := s.redis.ZRangeByScore(ctx, key, &redis.ZRangeBy{Min: zs, Max: zs}).Result()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot count ties: %w", err)
	}

	self := member(e)
	for _, m := range tied {
		if m < self {
			ahead++
		}
	}

	return int(ahead), nil
}

func (s *RedisStore) GameStats(ctx context.Context, gameType string) (leaderboard.Stats, error) {
	stats := leaderboard.Stats{GameType: gameType}

	h, err := s.redis.HGetAll(ctx, s.statsKey(gameType)).Result()
	if err != nil {
		return stats, fmt.Errorf("storage: cannot get game stats: %w", err)
	}
	count, _ := strconv.Atoi(h["count"])
	total, _ := strconv.ParseInt(h["points"], 10, 64)

	best, err := s.redis.ZRangeWithScores(ctx, s.boardKey(gameType), 0, 0).Result()
	if err != nil {
		return stats, fmt.Errorf("storage: cannot get best entry: %w", err)
	}
	if len(best) > 0 {
		stats.BestPoints, _ = unpackScore(best[0].Score)
	}

	stats.GamesPlayed = count
	stats.AvgPoints = average(total, count)
	return stats, nil
}

func (s *RedisStore) seqKey() string {
	return fmt.Sprintf("%s:entries:seq", s.prefix)
}

func (s *RedisStore) boardKey(gameType string) string {
	return fmt.Sprintf("%s:%s:board", s.prefix, gameType)
}

func (s *RedisStore) statsKey(gameType string) string {
	return fmt.Sprintf("%s:%s:stats", s.prefix, gameType)
}

// checkPackable rejects results that rankScore cannot pack exactly.
func checkPackable(score, points int) error {
	if score < 0 || points < 0 || score > leaderboard.MaxScore || points > leaderboard.MaxPoints {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("storage: result out of range: score=%d points=%d", score, points))
	}
	return nil
}

// rankScore is negated so that better entries sort first in ascending order.
func rankScore(points, score int) float64 {
	return -float64(int64(points)<<scoreBits | int64(score))
}

func unpackScore(z float64) (points, score int) {
	packed := int64(-z)
	return int(packed >> scoreBits), int(packed & scoreMask)
}

// member encodes CreatedAt and ID zero-padded, then the user.
func member(e leaderboard.Entry) string {
	return fmt.Sprintf("%020d:%020d:%s", e.CreatedAt.UnixNano(), e.ID, e.UserID)
}

func parseMember(m string) (leaderboard.Entry, error) {
	parts := strings.SplitN(m, ":", 3)
	if len(parts) != 3 {
		return leaderboard.Entry{}, fmt.Errorf("storage: malformed member %q", m)
	}

	nanos, err1 := strconv.ParseInt(parts[0], 10, 64)
	id, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil || nanos < 0 {
		return leaderboard.Entry{}, fmt.Errorf("storage: malformed member %q", m)
	}

	return leaderboard.Entry{
		ID:        id,
		UserID:    parts[2],
		CreatedAt: time.Unix(0, nanos).UTC(),
	}, nil
}
