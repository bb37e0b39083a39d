package mathgame

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/errors"
)

// Round timing and lives.
const (
	StartingLives = 3
	TimeLimit     = 10 * time.Second
	TickInterval  = 100 * time.Millisecond
	FeedbackDelay = 1500 * time.Millisecond
	BlinkDuration = 300 * time.Millisecond
)

// timeLimitTicks is TimeLimit counted in ticks. Remaining time is kept in
// whole ticks so that reaching zero is exact.
const timeLimitTicks = int(TimeLimit / TickInterval)

// State is the phase of a session.
type State int

const (
	StateActive State = iota
	StateFeedback
	StateGameOver
)

func (s State) String() string {
	switch s {
	case StateActive:
		return "active"
	case StateFeedback:
		return "feedback"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome reports what an input did to the session.
type Outcome int

const (
	OutcomeNone      Outcome = iota // Input ignored (wrong state, or time still running)
	OutcomeCorrect                  // Correct answer, next round started
	OutcomeIncorrect                // Wrong answer, life lost
	OutcomeTimeout                  // Time ran out, life lost
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeIncorrect:
		return "incorrect"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "none"
	}
}

// Result is the final tally handed off when a session ends.
type Result struct {
	SessionID string
	GameType  string
	Score     int
	Points    int
	Custom    bool
}

// Options configures a new session.
type Options struct {
	Operator Operator

	// Difficulty defaults to level progression over the built-in table.
	Difficulty *config.DifficultyManager

	// Rand defaults to a time-seeded source.
	Rand *rand.Rand

	// Scheduler defaults to WallClock.
	Scheduler Scheduler

	// OnComplete is called exactly once when the session reaches game over.
	// It runs without the session lock held.
	OnComplete func(Result)

	// ID defaults to a fresh UUIDv7.
	ID string
}

// Session is one single-player play-through. All methods are safe for
// concurrent use; ticks, answers and delayed callbacks are serialized.
type Session struct {
	mu sync.Mutex

	id         string
	op         Operator
	difficulty *config.DifficultyManager
	custom     *config.LevelProfile
	rng        *rand.Rand
	sched      Scheduler
	onComplete func(Result)

	state       State
	score       int
	points      int
	lives       int
	ticksLeft   int
	level       int
	lastPoints  int
	problem     Problem
	answers     []AnswerChoice
	showCorrect bool
	blinking    bool

	// round increments with every new problem; delayed callbacks carry the
	// round they were scheduled in and do nothing once it has moved on.
	round    uint64
	feedback Timer
	blink    Timer

	closed    bool
	completed bool
	err       error
}

// NewSession validates the difficulty, generates the first problem and
// returns an Active session.
func NewSession(opts Options) (*Session, error) {
	if opts.Difficulty == nil {
		opts.Difficulty = config.NewDifficultyManager(config.DefaultMathConfig())
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Scheduler == nil {
		opts.Scheduler = WallClock{}
	}
	if opts.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, errors.Internal(err)
		}
		opts.ID = id.String()
	}

	s := &Session{
		id:         opts.ID,
		op:         opts.Operator,
		difficulty: opts.Difficulty,
		rng:        opts.Rand,
		sched:      opts.Scheduler,
		onComplete: opts.OnComplete,
		lives:      StartingLives,
	}

	if custom, ok := opts.Difficulty.Custom(); ok {
		profile, err := CustomProfile(opts.Operator, custom)
		if err != nil {
			return nil, err
		}
		s.custom = &profile
	}

	if err := s.nextRound(); err != nil {
		return nil, err
	}

	return s, nil
}

// CustomProfile validates the part of custom that applies to op and returns
// it as a level-1 profile.
func CustomProfile(op Operator, custom config.CustomConfig) (config.LevelProfile, error) {
	profile := config.LevelProfile{Level: 1}

	switch op {
	case OpMul:
		if custom.Multiplication == nil {
			return profile, errors.InvalidDifficulty("missing multiplication settings")
		}
		profile.Multiplication = *custom.Multiplication
		return profile, profile.Multiplication.Validate()
	case OpAdd:
		if custom.Addition == nil {
			return profile, errors.InvalidDifficulty("missing addition settings")
		}
		profile.Addition = *custom.Addition
		return profile, profile.Addition.Validate()
	case OpSub:
		if custom.Subtraction == nil {
			return profile, errors.InvalidDifficulty("missing subtraction settings")
		}
		profile.Subtraction = *custom.Subtraction
		return profile, profile.Subtraction.Validate()
	case OpDiv:
		if custom.Division == nil {
			return profile, errors.InvalidDifficulty("missing division settings")
		}
		profile.Division = *custom.Division
		return profile, profile.Division.Validate()
	default:
		return profile, errors.InvalidDifficulty("unknown operator %d", op)
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Tick advances the round timer by one TickInterval. Reaching zero costs a
// life exactly like a wrong answer. Ticks outside Active are ignored.
func (s *Session) Tick() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state != StateActive {
		return OutcomeNone
	}

	s.ticksLeft--
	if s.ticksLeft > 0 {
		return OutcomeNone
	}

	s.ticksLeft = 0
	s.miss()
	return OutcomeTimeout
}

// Answer selects the choice at index. Answers outside Active are ignored so a
// round can only be resolved once.
func (s *Session) Answer(index int) (Outcome, error) {
	s.mu.Lock()

	if s.closed || s.state != StateActive {
		s.mu.Unlock()
		return OutcomeNone, nil
	}
	if index < 0 || index >= len(s.answers) {
		s.mu.Unlock()
		return OutcomeNone, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("answer index %d out of range [0, %d)", index, len(s.answers)))
	}

	if !s.answers[index].Correct {
		s.miss()
		s.mu.Unlock()
		return OutcomeIncorrect, nil
	}

	award := int(math.Round(s.timeRemaining().Seconds()))
	s.score++
	s.points += award
	s.lastPoints = award

	// Difficulty follows the score after the increment.
	if err := s.nextRound(); err != nil {
		res, fire := s.finish(err)
		s.mu.Unlock()
		s.complete(res, fire)
		return OutcomeCorrect, err
	}

	s.blinking = true
	s.stopTimer(&s.blink)
	round := s.round
	s.blink = s.sched.AfterFunc(BlinkDuration, func() { s.endBlink(round) })

	s.mu.Unlock()
	return OutcomeCorrect, nil
}

// Close cancels pending callbacks. A closed session ignores all input and
// never completes.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.stopTimer(&s.feedback)
	s.stopTimer(&s.blink)
}

// Err returns the error that ended the session early, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// miss costs a life and enters Feedback. Must hold s.mu.
func (s *Session) miss() {
	s.lives = max(s.lives-1, 0)
	s.state = StateFeedback
	s.showCorrect = true
	s.blinking = false
	s.stopTimer(&s.blink)

	round := s.round
	s.stopTimer(&s.feedback)
	s.feedback = s.sched.AfterFunc(FeedbackDelay, func() { s.endFeedback(round) })
}

func (s *Session) endFeedback(round uint64) {
	s.mu.Lock()

	if s.closed || s.state != StateFeedback || s.round != round {
		s.mu.Unlock()
		return
	}
	s.feedback = nil

	var (
		res  Result
		fire bool
	)
	if s.lives > 0 {
		if err := s.nextRound(); err != nil {
			res, fire = s.finish(err)
		}
	} else {
		res, fire = s.finish(nil)
	}

	s.mu.Unlock()
	s.complete(res, fire)
}

func (s *Session) endBlink(round uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.round == round {
		s.blinking = false
		s.blink = nil
	}
}

// nextRound generates a problem at the current score's difficulty and
// re-enters Active. Must hold s.mu.
func (s *Session) nextRound() error {
	level := s.difficulty.Level(s.score)
	profile := s.difficulty.Profile(level)
	if s.custom != nil {
		profile = *s.custom
	}

	problem := GenerateProblem(s.rng, s.op, profile)
	answers, err := BuildAnswers(s.rng, problem, s.difficulty.AnswerCount(s.score))
	if err != nil {
		return err
	}

	s.level = level
	s.problem = problem
	s.answers = answers
	s.round++
	s.ticksLeft = timeLimitTicks
	s.showCorrect = false
	s.state = StateActive
	return nil
}

// finish enters GameOver and reports whether the completion callback is
// still owed. Must hold s.mu.
func (s *Session) finish(err error) (Result, bool) {
	s.state = StateGameOver
	s.blinking = false
	s.stopTimer(&s.feedback)
	s.stopTimer(&s.blink)
	if err != nil {
		s.err = err
	}

	if s.completed {
		return Result{}, false
	}
	s.completed = true

	return Result{
		SessionID: s.id,
		GameType:  s.op.GameType(),
		Score:     s.score,
		Points:    s.points,
		Custom:    s.custom != nil,
	}, s.onComplete != nil
}

func (s *Session) complete(res Result, fire bool) {
	if fire {
		s.onComplete(res)
	}
}

func (s *Session) timeRemaining() time.Duration {
	return time.Duration(s.ticksLeft) * TickInterval
}

func (s *Session) stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}
