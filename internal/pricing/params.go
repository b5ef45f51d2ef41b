// Package pricing implements a European option pricing kernel.
//
// Two independent pricers are provided:
//   - AnalyticPricer: the closed-form Black-Scholes-Merton price with a full
//     set of Greeks (delta, gamma, vega, theta, rho, psi)
//   - BinomialLatticePricer: a recombining Cox-Ross-Rubinstein lattice that
//     discounts the expected terminal payoff under risk-neutral probabilities
//
// Both consume the same immutable OptionParameters value and share a payoff
// abstraction, so the lattice price can be validated against the closed form.
//
// Design notes:
//   - The kernel is stateless; every call is a pure function of its inputs
//   - Invalid inputs are rejected up front with typed errors, never NaN/Inf
//   - The standard normal CDF/PDF comes from gonum, not a local approximation
package pricing

import (
	"errors"
	"fmt"
	"strings"
)

//
// ==========================
// Error taxonomy
// ==========================
//

// Typed errors allow callers and tests to detect failure categories
// without string matching.
var (
	ErrInvalidParameter        = errors.New("invalid option parameter")
	ErrInvalidLattice          = errors.New("invalid lattice configuration")
	ErrNumericOverflow         = errors.New("numeric overflow")
	ErrInvalidPayoffExpression = errors.New("invalid payoff expression")
)

//
// ==========================
// Domain Types
// ==========================
//

// OptionType selects between the two vanilla European contracts.
type OptionType int

const (
	Call OptionType = iota
	Put
)

func (t OptionType) String() string {
	switch t {
	case Call:
		return "call"
	case Put:
		return "put"
	}
	return fmt.Sprintf("OptionType(%d)", int(t))
}

// ParseOptionType accepts "call"/"c" and "put"/"p", case-insensitive.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	}
	return 0, fmt.Errorf("%w: unknown option type %q", ErrInvalidParameter, s)
}

func (t OptionType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *OptionType) UnmarshalJSON(b []byte) error {
	parsed, err := ParseOptionType(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func errUnknownOptionType(t OptionType) error {
	return fmt.Errorf("%w: unknown option type %d", ErrInvalidParameter, int(t))
}

// OptionParameters is the immutable input to both pricers.
//
// TimeToExpiry is in years, rates and yields are continuously compounded
// annual decimals, volatility is an annualized decimal.
type OptionParameters struct {
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	Volatility    float64 `json:"volatility"`
	RiskFreeRate  float64 `json:"risk_free_rate"`
	TimeToExpiry  float64 `json:"time_to_expiry"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
}

// Validate rejects parameter sets for which the pricing formulas are
// undefined. Both pricers divide by volatility*sqrt(timeToExpiry) and take
// log(spot/strike), so all four must be strictly positive; a zero dividend
// yield is fine, a negative one is not.
func (p OptionParameters) Validate() error {
	if p.Spot <= 0 {
		return fmt.Errorf("%w: spot must be > 0, got %v", ErrInvalidParameter, p.Spot)
	}
	if p.Strike <= 0 {
		return fmt.Errorf("%w: strike must be > 0, got %v", ErrInvalidParameter, p.Strike)
	}
	if p.Volatility <= 0 {
		return fmt.Errorf("%w: volatility must be > 0, got %v", ErrInvalidParameter, p.Volatility)
	}
	if p.TimeToExpiry <= 0 {
		return fmt.Errorf("%w: time to expiry must be > 0, got %v", ErrInvalidParameter, p.TimeToExpiry)
	}
	if p.DividendYield < 0 {
		return fmt.Errorf("%w: dividend yield must be >= 0, got %v", ErrInvalidParameter, p.DividendYield)
	}
	return nil
}

// PricingResult holds the closed-form price together with its sensitivities.
//
// Conventions: vega is per unit change in volatility, theta per unit of
// calendar time, rho per unit change in the risk-free rate and psi per unit
// change in the dividend yield. Rescaling to per-day or per-vol-point is a
// presentation concern left to callers.
type PricingResult struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Vega  float64 `json:"vega"`
	Theta float64 `json:"theta"`
	Rho   float64 `json:"rho"`
	Psi   float64 `json:"psi"`
}
