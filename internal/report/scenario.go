package report

import (
	"fmt"
	"os"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Scenario describes one convergence run, typically loaded from a JSON
// config file by the CLI.
type Scenario struct {
	Spot          float64 `json:"spot"`                     // underlying price
	Strike        float64 `json:"strike"`                   // option strike
	Volatility    float64 `json:"volatility"`               // annualized, e.g. 0.30
	RiskFreeRate  float64 `json:"risk_free_rate"`           // continuously compounded
	TimeToExpiry  float64 `json:"time_to_expiry"`           // in years
	DividendYield float64 `json:"dividend_yield,omitempty"` // continuous yield
	OptionType    string  `json:"option_type"`              // "call" or "put"
	PayoffExpr    string  `json:"payoff_expr,omitempty"`    // custom payoff over S and K, overrides option_type
	Steps         []int   `json:"steps,omitempty"`          // lattice depths to run, in order
	ReportDir     string  `json:"report_dir,omitempty"`     // where to write JSON/CSV, empty = no files
	Verbosity     int     `json:"verbosity,omitempty"`      // 0=errors,1=info,2=debug,3=trace
}

// defaultSteps is the schedule used when a scenario names none.
var defaultSteps = []int{10, 25, 50, 100, 200, 500}

// Params returns the scenario's pricing inputs as a parameter value.
func (s *Scenario) Params() pricing.OptionParameters {
	return pricing.OptionParameters{
		Spot:          s.Spot,
		Strike:        s.Strike,
		Volatility:    s.Volatility,
		RiskFreeRate:  s.RiskFreeRate,
		TimeToExpiry:  s.TimeToExpiry,
		DividendYield: s.DividendYield,
	}
}

// Run executes the scenario: it resolves the payoff, prices the lattice at
// every step count, and pairs the sequence with the analytic reference when
// one exists. Report files are only written if ReportDir is set.
func Run(s *Scenario) (*ConvergenceReport, error) {
	// fill defaults
	if len(s.Steps) == 0 {
		s.Steps = defaultSteps
	}
	if s.Verbosity < int(logger.Error) || s.Verbosity > int(logger.Trace) {
		s.Verbosity = int(logger.Info)
	}
	logger.SetVerbosity(s.Verbosity)

	params := s.Params()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var (
		payoff   pricing.PayoffFunction
		analytic *float64
		optType  pricing.OptionType
		err      error
	)
	if s.PayoffExpr != "" {
		payoff, err = pricing.NewExpressionPayoff(s.PayoffExpr)
		if err != nil {
			return nil, err
		}
		logger.Infof("custom payoff %q, no analytic reference", s.PayoffExpr)
	} else {
		optType, err = pricing.ParseOptionType(s.OptionType)
		if err != nil {
			return nil, err
		}
		payoff, err = pricing.PayoffForType(optType)
		if err != nil {
			return nil, err
		}
		res, err := pricing.NewAnalyticPricer().Price(params, optType)
		if err != nil {
			return nil, err
		}
		analytic = &res.Price
		logger.Infof("analytic %s price = %.6f", optType, res.Price)
	}

	driver := pricing.NewConvergenceDriver(pricing.NewBinomialLatticePricer())
	prices, err := driver.Prices(params, payoff, s.Steps)
	if err != nil {
		return nil, fmt.Errorf("convergence run failed: %w", err)
	}

	label := s.OptionType
	if s.PayoffExpr != "" {
		label = "custom"
	}
	rep, err := Build(params, label, analytic, s.Steps, prices)
	if err != nil {
		return nil, err
	}
	rep.PayoffExpr = s.PayoffExpr

	if s.ReportDir != "" {
		if err := os.MkdirAll(s.ReportDir, 0755); err != nil {
			logger.Errorf("could not create report dir %s: %v", s.ReportDir, err)
		}
		if err := WriteJSON(rep, s.ReportDir); err != nil {
			logger.Errorf("could not write JSON report: %v", err)
		}
		if err := WriteCSV(rep, s.ReportDir); err != nil {
			logger.Errorf("could not write CSV report: %v", err)
		}
	}
	return rep, nil
}
