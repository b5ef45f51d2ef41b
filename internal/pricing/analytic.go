package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// stdNormal supplies N(x) and N'(x). gonum evaluates the CDF via erfc, which
// stays accurate deep into the tails, so very large |d1|,|d2| are safe.
var stdNormal = distuv.UnitNormal

// AnalyticPricer evaluates the closed-form Black-Scholes-Merton price and
// Greeks for European calls and puts on an asset paying a continuous
// dividend yield.
type AnalyticPricer struct{}

func NewAnalyticPricer() *AnalyticPricer { return &AnalyticPricer{} }

// Price returns the BSM price and all six Greeks.
//
// d1 and d2 are computed exactly once and threaded through every Greek, so
// the result is internally consistent: every sensitivity refers to the same
// point on the pricing surface as the price itself.
func (ap *AnalyticPricer) Price(params OptionParameters, optType OptionType) (PricingResult, error) {
	if err := params.Validate(); err != nil {
		return PricingResult{}, err
	}

	var (
		s     = params.Spot
		k     = params.Strike
		sigma = params.Volatility
		r     = params.RiskFreeRate
		tau   = params.TimeToExpiry
		div   = params.DividendYield
	)

	sqrtTau := math.Sqrt(tau)
	volTerm := sigma * sqrtTau
	d1 := (math.Log(s/k) + (r-div+0.5*sigma*sigma)*tau) / volTerm
	d2 := d1 - volTerm

	divDisc := math.Exp(-div * tau) // e^(-δτ)
	rateDisc := math.Exp(-r * tau)  // e^(-rτ)

	logger.Tracef("analytic %s: d1=%.8f d2=%.8f", optType, d1, d2)

	nd1 := stdNormal.CDF(d1)
	nd2 := stdNormal.CDF(d2)
	pdf1 := stdNormal.Prob(d1)
	pdf2 := stdNormal.Prob(d2)

	callPrice := s*divDisc*nd1 - k*rateDisc*nd2
	callDelta := divDisc * nd1
	callTheta := div*s*divDisc*nd1 - r*k*rateDisc*nd2 - k*rateDisc*pdf2*sigma/(2*sqrtTau)

	res := PricingResult{
		// gamma and vega are shared by calls and puts
		Gamma: divDisc * pdf1 / (s * sigma * sqrtTau),
		Vega:  s * divDisc * pdf1 * sqrtTau,
	}

	switch optType {
	case Call:
		res.Price = callPrice
		res.Delta = callDelta
		res.Theta = callTheta
		res.Rho = tau * k * rateDisc * nd2
		res.Psi = -tau * s * divDisc * nd1
	case Put:
		// put values follow from the call values via parity, keeping both
		// legs on the same d1/d2
		res.Price = callPrice - s*divDisc + k*rateDisc
		res.Delta = callDelta - divDisc
		res.Theta = callTheta + r*k*rateDisc - div*s*divDisc
		res.Rho = -tau * k * rateDisc * stdNormal.CDF(-d2)
		res.Psi = tau * s * divDisc * stdNormal.CDF(-d1)
	default:
		return PricingResult{}, errUnknownOptionType(optType)
	}

	return res, nil
}
