// Package mathgame implements the arithmetic practice games: problem and
// answer generation at adaptive or custom difficulty, and the timed
// lives-based session state machine that drives each play-through.
//
// Like the other arcade games, the package contains pure logic. Platform
// layers (terminal, SSH, WebSocket) feed it ticks and answers and read back
// a View.
package mathgame

import "github.com/vovakirdan/math-arcade/internal/errors"

// Operator is the arithmetic operation a game practices.
type Operator int

const (
	OpAdd Operator = iota
	OpSub
	OpMul
	OpDiv
)

// Operators lists every operator in menu order.
var Operators = []Operator{OpMul, OpAdd, OpSub, OpDiv}

// Symbol returns the operator as displayed to players.
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "×"
	case OpDiv:
		return "÷"
	default:
		return "?"
	}
}

// GameType returns the game identifier, also used as the leaderboard key.
func (o Operator) GameType() string {
	switch o {
	case OpAdd:
		return "addition"
	case OpSub:
		return "subtraction"
	case OpMul:
		return "multiplication"
	case OpDiv:
		return "division"
	default:
		return "unknown"
	}
}

func (o Operator) String() string {
	return o.GameType()
}

// Title returns a human-readable name.
func (o Operator) Title() string {
	switch o {
	case OpAdd:
		return "Addition"
	case OpSub:
		return "Subtraction"
	case OpMul:
		return "Multiplication"
	case OpDiv:
		return "Division"
	default:
		return "Unknown"
	}
}

// Apply computes a op b. Division is integer division.
func (o Operator) Apply(a, b int) int {
	switch o {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		if b == 0 {
			return 0
		}
		return a / b
	default:
		return 0
	}
}

// ParseGameType maps a game identifier back to its operator.
func ParseGameType(gameType string) (Operator, error) {
	for _, op := range Operators {
		if op.GameType() == gameType {
			return op, nil
		}
	}
	return 0, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("unknown game type %q", gameType))
}
