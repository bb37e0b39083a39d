package core

import "time"

// RuntimeConfig is what the platform hands a game on Reset.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Frames per second (default 60)
	Seed     int64 // Problem RNG seed; 0 picks one from the clock
}

// DefaultConfig returns an 80x24 screen at 60 frames per second.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
	}
}

// WithDefaults fills unset fields from DefaultConfig and seeds from the clock.
func (c RuntimeConfig) WithDefaults() RuntimeConfig {
	d := DefaultConfig()
	if c.ScreenW <= 0 {
		c.ScreenW = d.ScreenW
	}
	if c.ScreenH <= 0 {
		c.ScreenH = d.ScreenH
	}
	if c.TickRate <= 0 {
		c.TickRate = d.TickRate
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

// FrameInterval is the wall time of one frame.
func (c RuntimeConfig) FrameInterval() time.Duration {
	return time.Second / time.Duration(c.WithDefaults().TickRate)
}

// GameState is the platform-facing summary of a running game.
type GameState struct {
	Score    int  // Correct answers so far
	Points   int  // Time bonus accumulated over all correct answers
	Lives    int  // Remaining lives
	GameOver bool // Whether the game has ended
}

// StepResult is returned by Game.Step() after each frame.
type StepResult struct {
	State GameState
}
