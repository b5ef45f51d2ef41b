package pricing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// BinomialLatticePricer prices European payoffs on a recombining
// Cox-Ross-Rubinstein lattice.
//
// Because the supported payoffs are path-independent and carry no early
// exercise right, the tree is never materialized: only the n+1 terminal
// nodes are visited, and the price is the discounted expectation of the
// payoff under the risk-neutral binomial distribution of up-move counts.
type BinomialLatticePricer struct{}

func NewBinomialLatticePricer() *BinomialLatticePricer { return &BinomialLatticePricer{} }

// latticeModel holds the per-step move sizes and the risk-neutral up
// probability derived from a parameter set and step count.
type latticeModel struct {
	h     float64 // step length in years, τ/n
	up    float64 // per-step up multiplier
	down  float64 // per-step down multiplier
	pStar float64 // risk-neutral probability of an up move
}

// buildModel derives the CRR move sizes with drift:
//
//	u = exp((r-δ)h + σ√h)
//	d = exp((r-δ)h - σ√h)
//	p* = (exp((r-δ)h) - d) / (u - d)
//
// and enforces the no-arbitrage condition d < exp((r-δ)h) < u, which is
// exactly the condition 0 < p* < 1. A violation means the discretization is
// not a valid risk-neutral model for these inputs, so it is reported as a
// configuration error rather than silently mispriced.
func buildModel(params OptionParameters, steps int) (latticeModel, error) {
	if steps <= 0 {
		return latticeModel{}, fmt.Errorf("%w: steps must be > 0, got %d", ErrInvalidLattice, steps)
	}

	h := params.TimeToExpiry / float64(steps)
	drift := math.Exp((params.RiskFreeRate - params.DividendYield) * h)
	volStep := params.Volatility * math.Sqrt(h)
	up := drift * math.Exp(volStep)
	down := drift * math.Exp(-volStep)

	if !(down < drift && drift < up) {
		return latticeModel{}, fmt.Errorf("%w: no-arbitrage condition d < e^((r-δ)h) < u violated (d=%v, e^((r-δ)h)=%v, u=%v)",
			ErrInvalidLattice, down, drift, up)
	}

	pStar := (drift - down) / (up - down)
	if !(pStar > 0 && pStar < 1) || math.IsNaN(pStar) {
		return latticeModel{}, fmt.Errorf("%w: risk-neutral probability %v outside (0,1)", ErrInvalidLattice, pStar)
	}

	return latticeModel{h: h, up: up, down: down, pStar: pStar}, nil
}

// Price computes the discounted expected payoff over the terminal layer.
//
// Node probabilities come from gonum's binomial distribution, which works in
// log space (lgamma) instead of raw factorial products, so the PMF stays
// finite for step counts far beyond the few hundred where a naive C(n,i)
// would overflow. Terminal spots are likewise assembled in log space; if a
// node's spot or the final sum leaves the representable range the call fails
// with ErrNumericOverflow instead of returning a corrupted price.
func (bp *BinomialLatticePricer) Price(params OptionParameters, payoff PayoffFunction, steps int) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}
	model, err := buildModel(params, steps)
	if err != nil {
		return 0, err
	}

	logger.Debugf("lattice n=%d: u=%.8f d=%.8f p*=%.8f", steps, model.up, model.down, model.pStar)

	upCount := distuv.Binomial{N: float64(steps), P: model.pStar}

	var (
		logSpot = math.Log(params.Spot)
		logUp   = math.Log(model.up)
		logDown = math.Log(model.down)
		sum     = 0.0
	)
	for i := 0; i <= steps; i++ {
		// S_T(i) = S · u^i · d^(n-i), for i up-moves
		terminalSpot := math.Exp(logSpot + float64(i)*logUp + float64(steps-i)*logDown)
		if math.IsInf(terminalSpot, 0) {
			return 0, fmt.Errorf("%w: terminal spot at node %d/%d exceeds float64 range", ErrNumericOverflow, i, steps)
		}
		value, err := payoff.Value(terminalSpot, params.Strike)
		if err != nil {
			return 0, fmt.Errorf("payoff at node %d/%d: %w", i, steps, err)
		}
		sum += value * upCount.Prob(float64(i))
	}

	price := math.Exp(-params.RiskFreeRate*params.TimeToExpiry) * sum
	if math.IsInf(price, 0) || math.IsNaN(price) {
		return 0, fmt.Errorf("%w: discounted expectation is not finite", ErrNumericOverflow)
	}
	return price, nil
}

// PriceOption prices a vanilla call or put by mapping the option type to its
// built-in payoff.
func (bp *BinomialLatticePricer) PriceOption(params OptionParameters, optType OptionType, steps int) (float64, error) {
	payoff, err := PayoffForType(optType)
	if err != nil {
		return 0, err
	}
	return bp.Price(params, payoff, steps)
}
