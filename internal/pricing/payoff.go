package pricing

import (
	"fmt"
	"math"

	"github.com/Knetic/govaluate"
)

// PayoffFunction maps a terminal spot price and a strike to an exercise
// value. Implementations must be path-independent functions of the terminal
// spot only, and should return non-negative values.
type PayoffFunction interface {
	Value(terminalSpot, strike float64) (float64, error)
}

// CallPayoff is max(S-K, 0).
type CallPayoff struct{}

func (CallPayoff) Value(terminalSpot, strike float64) (float64, error) {
	return math.Max(terminalSpot-strike, 0), nil
}

// PutPayoff is max(K-S, 0).
type PutPayoff struct{}

func (PutPayoff) Value(terminalSpot, strike float64) (float64, error) {
	return math.Max(strike-terminalSpot, 0), nil
}

// PayoffForType returns the built-in payoff matching the vanilla contract.
func PayoffForType(t OptionType) (PayoffFunction, error) {
	switch t {
	case Call:
		return CallPayoff{}, nil
	case Put:
		return PutPayoff{}, nil
	}
	return nil, errUnknownOptionType(t)
}

// payoffFuncs are helper functions available inside payoff expressions.
var payoffFuncs = map[string]govaluate.ExpressionFunction{
	"max": func(args ...interface{}) (interface{}, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("max expects 2 arguments, got %d", len(args))
		}
		a, aok := args[0].(float64)
		b, bok := args[1].(float64)
		if !aok || !bok {
			return nil, fmt.Errorf("max expects numeric arguments")
		}
		return math.Max(a, b), nil
	},
	"abs": func(args ...interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("abs expects 1 argument, got %d", len(args))
		}
		a, ok := args[0].(float64)
		if !ok {
			return nil, fmt.Errorf("abs expects a numeric argument")
		}
		return math.Abs(a), nil
	},
}

// ExpressionPayoff evaluates a user-supplied payoff expression over the
// variables S (terminal spot) and K (strike), e.g.
//
//	"max(S - K, 0)"     vanilla call
//	"S > K ? 1 : 0"     cash-or-nothing digital
//
// The expression is parsed once at construction; Value only evaluates it.
type ExpressionPayoff struct {
	src  string
	expr *govaluate.EvaluableExpression
}

// NewExpressionPayoff parses expr and returns a reusable payoff.
func NewExpressionPayoff(expr string) (*ExpressionPayoff, error) {
	compiled, err := govaluate.NewEvaluableExpressionWithFunctions(expr, payoffFuncs)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPayoffExpression, expr, err)
	}
	return &ExpressionPayoff{src: expr, expr: compiled}, nil
}

func (ep *ExpressionPayoff) Value(terminalSpot, strike float64) (float64, error) {
	result, err := ep.expr.Evaluate(map[string]interface{}{
		"S": terminalSpot,
		"K": strike,
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidPayoffExpression, ep.src, err)
	}
	f, ok := result.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: %q evaluated to non-numeric %T", ErrInvalidPayoffExpression, ep.src, result)
	}
	return f, nil
}

func (ep *ExpressionPayoff) String() string { return ep.src }
