package config

// DifficultyManager maps a cumulative score to a level and that level's profile.
// A manager built from a custom configuration never escalates.
type DifficultyManager struct {
	cfg    MathConfig
	custom *CustomConfig
}

// NewDifficultyManager creates a level-based difficulty manager.
func NewDifficultyManager(cfg MathConfig) *DifficultyManager {
	return &DifficultyManager{cfg: cfg}
}

// NewCustomDifficultyManager creates a manager pinned to a custom configuration.
func NewCustomDifficultyManager(cfg MathConfig, custom CustomConfig) *DifficultyManager {
	return &DifficultyManager{cfg: cfg, custom: &custom}
}

// IsCustom reports whether the level is pinned.
func (d *DifficultyManager) IsCustom() bool {
	return d.custom != nil
}

// Custom returns the custom configuration, if any.
func (d *DifficultyManager) Custom() (CustomConfig, bool) {
	if d.custom == nil {
		return CustomConfig{}, false
	}
	return *d.custom, true
}

// Level returns the level for score: the first band containing it, or 1.
func (d *DifficultyManager) Level(score int) int {
	if d.custom != nil {
		return 1
	}
	for _, b := range d.cfg.Bands {
		if b.Contains(score) {
			return b.Level
		}
	}
	return 1
}

// Profile returns the difficulty for level, clamped to the highest defined level.
func (d *DifficultyManager) Profile(level int) LevelProfile {
	levels := d.cfg.Levels
	if len(levels) == 0 {
		levels = DefaultMathConfig().Levels
	}

	best := levels[0]
	for _, l := range levels {
		if l.Level == level {
			return l
		}
		if l.Level <= level && l.Level > best.Level {
			best = l
		}
	}
	return best
}

// AnswerCount returns how many choices a round at score offers.
func (d *DifficultyManager) AnswerCount(score int) int {
	if d.custom != nil {
		return d.custom.AnswerCount()
	}
	return min(2+score/5, 4)
}
