package pricing

import (
	"golang.org/x/sync/errgroup"

	"github.com/contactkeval/option-pricer/internal/logger"
)

// ConvergenceDriver runs the lattice pricer across a schedule of step counts
// so the resulting price sequence can be compared against the closed form.
type ConvergenceDriver struct {
	lattice *BinomialLatticePricer
}

func NewConvergenceDriver(lattice *BinomialLatticePricer) *ConvergenceDriver {
	return &ConvergenceDriver{lattice: lattice}
}

// Prices returns one lattice price per entry of stepCounts, in the same
// order as the input — no reordering, no deduplication.
//
// Step counts are priced concurrently; every pricing call is a pure function
// of its arguments, so the only coordination needed is writing each result
// to its caller-supplied index. Any failing step count fails the whole run.
func (cd *ConvergenceDriver) Prices(params OptionParameters, payoff PayoffFunction, stepCounts []int) ([]float64, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	prices := make([]float64, len(stepCounts))
	var g errgroup.Group
	for idx, steps := range stepCounts {
		idx, steps := idx, steps
		g.Go(func() error {
			price, err := cd.lattice.Price(params, payoff, steps)
			if err != nil {
				return err
			}
			logger.Debugf("converge n=%d: price=%.8f", steps, price)
			prices[idx] = price
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return prices, nil
}

// PricesForType is the vanilla-contract form of Prices.
func (cd *ConvergenceDriver) PricesForType(params OptionParameters, optType OptionType, stepCounts []int) ([]float64, error) {
	payoff, err := PayoffForType(optType)
	if err != nil {
		return nil, err
	}
	return cd.Prices(params, payoff, stepCounts)
}
