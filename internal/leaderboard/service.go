package leaderboard

import (
	"context"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/math-arcade/internal/auth"
	"github.com/vovakirdan/math-arcade/internal/errors"
	"github.com/vovakirdan/math-arcade/internal/event"
	"github.com/vovakirdan/math-arcade/internal/mathgame"
)

// Store persists entries and answers ranking queries for one game type at a time.
type Store interface {
	// CreateEntry persists e and returns it with its ID and CreatedAt.
	CreateEntry(ctx context.Context, e NewEntry) (Entry, error)

	// ListEntries returns entries of gameType in rank order.
	ListEntries(ctx context.Context, gameType string, limit, offset int) ([]Entry, error)

	// CountBetter returns how many entries of e.GameType rank strictly ahead of e.
	CountBetter(ctx context.Context, e Entry) (int, error)

	// GameStats summarizes gameType.
	GameStats(ctx context.Context, gameType string) (Stats, error)
}

// Publisher receives ranking events. *event.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, e event.Event)
}

// Observer records ranking outcomes, for metrics.
type Observer interface {
	ObserveRanking(gameType, op string, d time.Duration, err error)
}

const EventNameEntryRanked = "entry.ranked"

// EventEntryRanked is published after a submitted entry has been ranked.
type EventEntryRanked struct {
	Entry    Entry
	Standing Standing
}

func (EventEntryRanked) Name() string { return EventNameEntryRanked }

type Config struct {
	Store    Store
	Identity auth.Identity
	Events   Publisher
	Observer Observer
	TopN     int
	Radius   int
	Logger   *log.Logger
}

// Service ranks entries. It keeps no per-call state and is safe for concurrent use.
type Service struct {
	store    Store
	identity auth.Identity
	events   Publisher
	observer Observer
	topN     int
	radius   int
	logger   *log.Logger
}

func NewService(c Config) *Service {
	s := &Service{
		store:    c.Store,
		identity: c.Identity,
		events:   c.Events,
		observer: c.Observer,
		topN:     c.TopN,
		radius:   c.Radius,
		logger:   c.Logger,
	}

	if s.identity == nil {
		s.identity = auth.ContextIdentity{}
	}
	if s.topN <= 0 {
		s.topN = DefaultTopN
	}
	if s.radius <= 0 {
		s.radius = DefaultRadius
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "leaderboard"})
	}

	return s
}

// Standing is where an entry ranks.
type Standing struct {
	TopEntries     []Entry `json:"topEntries"`
	UserPosition   int     `json:"userPosition"`
	ContextEntries []Entry `json:"contextEntries"`
}

type SubmitRequest struct {
	GameType string
	Score    int
	Points   int
}

// Submit persists a finished game for the caller's identity and ranks it.
// Nothing is ranked unless the entry was written.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (res Standing, err error) {
	start := time.Now()
	defer func() { s.observe(req.GameType, "submit", start, err) }()

	userID, ok := s.identity.UserID(ctx)
	if !ok {
		return Standing{}, errors.Unauthenticated()
	}
	if err := validate(req.GameType, req.Score, req.Points); err != nil {
		return Standing{}, err
	}

	entry, err := s.store.CreateEntry(ctx, NewEntry{
		UserID:   userID,
		GameType: req.GameType,
		Score:    req.Score,
		Points:   req.Points,
	})
	if errors.HasCode(err, errors.CodeInvalidArgument) {
		return Standing{}, err
	}
	if err != nil {
		s.logger.Error("save entry failed", "user", userID, "game", req.GameType, "error", err)
		return Standing{}, errors.RankingUnavailable(err)
	}

	res, err = s.rank(ctx, entry)
	if err != nil {
		s.logger.Error("rank entry failed", "entry", entry.ID, "game", req.GameType, "error", err)
		return Standing{}, errors.RankingUnavailable(err)
	}

	s.logger.Debug("entry ranked", "entry", entry.ID, "user", userID, "game", req.GameType, "position", res.UserPosition)

	if s.events != nil {
		s.events.Publish(ctx, EventEntryRanked{Entry: entry, Standing: res})
	}

	return res, nil
}

type StandingsRequest struct {
	GameType string
	Score    int
	Points   int
}

// Standings ranks a hypothetical result without writing it. Existing
// entries tied with it rank ahead. No identity is needed.
func (s *Service) Standings(ctx context.Context, req StandingsRequest) (res Standing, err error) {
	start := time.Now()
	defer func() { s.observe(req.GameType, "standings", start, err) }()

	if err := validate(req.GameType, req.Score, req.Points); err != nil {
		return Standing{}, err
	}

	res, err = s.rank(ctx, Probe(req.GameType, req.Score, req.Points))
	if err != nil {
		return Standing{}, errors.RankingUnavailable(err)
	}
	return res, nil
}

type StatsRequest struct {
	GameType string
}

// Stats summarizes a game type.
func (s *Service) Stats(ctx context.Context, req StatsRequest) (Stats, error) {
	if _, err := mathgame.ParseGameType(req.GameType); err != nil {
		return Stats{}, err
	}

	st, err := s.store.GameStats(ctx, req.GameType)
	if err != nil {
		return Stats{}, errors.RankingUnavailable(err)
	}
	return st, nil
}

// rank computes the standing of a persisted (or probe) entry from its own
// CreatedAt and ID.
func (s *Service) rank(ctx context.Context, e Entry) (Standing, error) {
	better, err := s.store.CountBetter(ctx, e)
	if err != nil {
		return Standing{}, err
	}
	position := better + 1

	top, err := s.store.ListEntries(ctx, e.GameType, s.topN, 0)
	if err != nil {
		return Standing{}, err
	}

	offset, limit := Window(position, s.radius)
	around, err := s.store.ListEntries(ctx, e.GameType, limit, offset)
	if err != nil {
		return Standing{}, err
	}

	return Standing{
		TopEntries:     top,
		UserPosition:   position,
		ContextEntries: around,
	}, nil
}

func (s *Service) observe(gameType, op string, start time.Time, err error) {
	if s.observer != nil {
		s.observer.ObserveRanking(gameType, op, time.Since(start), err)
	}
}

func validate(gameType string, score, points int) error {
	if _, err := mathgame.ParseGameType(gameType); err != nil {
		return err
	}
	if score < 0 || points < 0 {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("score and points must be non-negative: score=%d points=%d", score, points))
	}
	if score > MaxScore || points > MaxPoints {
		return errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("score and points must be at most %d and %d: score=%d points=%d",
				MaxScore, MaxPoints, score, points))
	}
	return nil
}
