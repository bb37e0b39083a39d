// Package config provides YAML-based tuning for the math games, custom
// difficulty parsing and the viper loader used by the server.
package config

// Range is an inclusive integer interval.
type Range struct {
	Min int `yaml:"min" json:"min" mapstructure:"min"`
	Max int `yaml:"max" json:"max" mapstructure:"max"`
}

// IsZero reports whether the range was left unset.
func (r Range) IsZero() bool {
	return r.Min == 0 && r.Max == 0
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// MultiplicationProfile picks one factor from Tables and the other from Multiplier.
type MultiplicationProfile struct {
	Tables     []int `yaml:"tables" json:"tables"`
	Multiplier Range `yaml:"multiplier" json:"multiplierRange"`
}

// AdditionProfile draws both operands from Range.
type AdditionProfile struct {
	Range Range `yaml:"range" json:"range"`
}

// SubtractionProfile draws both operands from Range.
type SubtractionProfile struct {
	Range         Range `yaml:"range" json:"range"`
	AllowNegative bool  `yaml:"allow_negative" json:"allowNegative"`
}

// DivisionProfile picks the divisor first, then a quotient that keeps the
// dividend inside Dividend.
type DivisionProfile struct {
	Dividend Range `yaml:"dividend" json:"dividendRange"`
	Divisor  Range `yaml:"divisor" json:"divisorRange"`
}

// LevelProfile holds the difficulty of every operator at one level.
type LevelProfile struct {
	Level          int                   `yaml:"level"`
	Multiplication MultiplicationProfile `yaml:"multiplication"`
	Addition       AdditionProfile       `yaml:"addition"`
	Subtraction    SubtractionProfile    `yaml:"subtraction"`
	Division       DivisionProfile       `yaml:"division"`
}

// LevelBand maps a score interval to a level. MaxScore < 0 means open-ended.
type LevelBand struct {
	Level    int `yaml:"level"`
	MinScore int `yaml:"min_score"`
	MaxScore int `yaml:"max_score"`
}

// Contains reports whether score falls inside the band.
func (b LevelBand) Contains(score int) bool {
	if score < b.MinScore {
		return false
	}
	return b.MaxScore < 0 || score <= b.MaxScore
}

// MathConfig contains the level progression shared by all math games.
type MathConfig struct {
	Bands  []LevelBand    `yaml:"bands"`
	Levels []LevelProfile `yaml:"levels"`
}
