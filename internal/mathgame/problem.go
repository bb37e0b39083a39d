package mathgame

import (
	"fmt"
	"math/rand"

	"github.com/vovakirdan/math-arcade/internal/config"
)

// Problem is one arithmetic question.
type Problem struct {
	OperandA int      `json:"operandA"`
	OperandB int      `json:"operandB"`
	Operator Operator `json:"-"`
	Result   int      `json:"-"`
}

// Valid reports whether Result matches the operands, and for division whether
// the quotient is exact with a positive divisor.
func (p Problem) Valid() bool {
	if p.Operator == OpDiv {
		if p.OperandB <= 0 || p.OperandA%p.OperandB != 0 {
			return false
		}
	}
	return p.Result == p.Operator.Apply(p.OperandA, p.OperandB)
}

func (p Problem) String() string {
	return fmt.Sprintf("%d %s %d", p.OperandA, p.Operator.Symbol(), p.OperandB)
}

// GenerateProblem draws a problem for op using the matching part of profile.
func GenerateProblem(rng *rand.Rand, op Operator, profile config.LevelProfile) Problem {
	var a, b int

	switch op {
	case OpMul:
		p := profile.Multiplication
		a = p.Tables[rng.Intn(len(p.Tables))]
		b = intIn(rng, p.MultiplierOrDefault())

	case OpAdd:
		r := profile.Addition.Range
		a, b = intIn(rng, r), intIn(rng, r)

	case OpSub:
		p := profile.Subtraction
		a, b = intIn(rng, p.Range), intIn(rng, p.Range)
		if !p.AllowNegative && a < b {
			a, b = b, a
		}

	case OpDiv:
		a, b = divisionOperands(rng, profile.Division)
	}

	return Problem{
		OperandA: a,
		OperandB: b,
		Operator: op,
		Result:   op.Apply(a, b),
	}
}

// divisionOperands picks the divisor first and builds the dividend from a
// quotient of at least 1, so the division is always exact.
func divisionOperands(rng *rand.Rand, p config.DivisionProfile) (dividend, divisor int) {
	divisor = max(intIn(rng, p.Divisor), 1)

	qMin := max(p.Dividend.Min/divisor, 1)
	qMax := max(p.Dividend.Max/divisor, qMin)
	quotient := qMin + rng.Intn(qMax-qMin+1)

	return divisor * quotient, divisor
}

// intIn returns a uniform value from the inclusive range r.
func intIn(rng *rand.Rand, r config.Range) int {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + rng.Intn(r.Max-r.Min+1)
}
