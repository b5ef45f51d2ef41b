package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuiltinPayoffs(t *testing.T) {
	t.Run("call", func(t *testing.T) {
		v, err := CallPayoff{}.Value(110, 100)
		assert.NoError(t, err)
		assert.Equal(t, 10.0, v)

		v, err = CallPayoff{}.Value(90, 100)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})

	t.Run("put", func(t *testing.T) {
		v, err := PutPayoff{}.Value(90, 100)
		assert.NoError(t, err)
		assert.Equal(t, 10.0, v)

		v, err = PutPayoff{}.Value(110, 100)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, v)
	})
}

func TestPayoffForType(t *testing.T) {
	call, err := PayoffForType(Call)
	assert.NoError(t, err)
	assert.IsType(t, CallPayoff{}, call)

	put, err := PayoffForType(Put)
	assert.NoError(t, err)
	assert.IsType(t, PutPayoff{}, put)

	_, err = PayoffForType(OptionType(42))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestExpressionPayoffMatchesBuiltinCall(t *testing.T) {
	payoff, err := NewExpressionPayoff("max(S - K, 0)")
	assert.NoError(t, err)

	for _, spot := range []float64{1, 50, 99.99, 100, 100.01, 250} {
		want, _ := CallPayoff{}.Value(spot, 100)
		got, err := payoff.Value(spot, 100)
		assert.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12, "spot=%v", spot)
	}
}

func TestExpressionPayoffDigital(t *testing.T) {
	payoff, err := NewExpressionPayoff("S > K ? 1 : 0")
	assert.NoError(t, err)

	v, err := payoff.Value(101, 100)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, v)

	v, err = payoff.Value(99, 100)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, v)
}

func TestExpressionPayoffErrors(t *testing.T) {
	t.Run("parse failure", func(t *testing.T) {
		_, err := NewExpressionPayoff("S +* K")
		assert.ErrorIs(t, err, ErrInvalidPayoffExpression)
	})

	t.Run("non-numeric result", func(t *testing.T) {
		payoff, err := NewExpressionPayoff("S > K")
		assert.NoError(t, err)

		_, err = payoff.Value(110, 100)
		assert.ErrorIs(t, err, ErrInvalidPayoffExpression)
	})

	t.Run("bad function arity", func(t *testing.T) {
		payoff, err := NewExpressionPayoff("max(S)")
		assert.NoError(t, err)

		_, err = payoff.Value(110, 100)
		assert.ErrorIs(t, err, ErrInvalidPayoffExpression)
	})
}
