package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/contactkeval/option-pricer/internal/logger"
	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

var rootCmd = &cobra.Command{
	Use:   "option-pricer",
	Short: "European option pricing kernel",
	Long:  `Prices European options with the closed-form Black-Scholes-Merton formula and validates the result against a Cox-Ross-Rubinstein binomial lattice.`,
}

func paramsFromFlags(cmd *cobra.Command) (pricing.OptionParameters, error) {
	var p pricing.OptionParameters
	var err error
	if p.Spot, err = cmd.Flags().GetFloat64("spot"); err != nil {
		return p, err
	}
	if p.Strike, err = cmd.Flags().GetFloat64("strike"); err != nil {
		return p, err
	}
	if p.Volatility, err = cmd.Flags().GetFloat64("vol"); err != nil {
		return p, err
	}
	if p.RiskFreeRate, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return p, err
	}
	if p.TimeToExpiry, err = cmd.Flags().GetFloat64("expiry"); err != nil {
		return p, err
	}
	if p.DividendYield, err = cmd.Flags().GetFloat64("div"); err != nil {
		return p, err
	}
	return p, p.Validate()
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Closed-form price and Greeks",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}
		typeStr, _ := cmd.Flags().GetString("type")
		optType, err := pricing.ParseOptionType(typeStr)
		if err != nil {
			return err
		}

		res, err := pricing.NewAnalyticPricer().Price(params, optType)
		if err != nil {
			return err
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"", optType.String()})
		table.SetAlignment(tablewriter.ALIGN_RIGHT)
		table.Append([]string{"price", fmt.Sprintf("%.6f", res.Price)})
		table.Append([]string{"delta", fmt.Sprintf("%.6f", res.Delta)})
		table.Append([]string{"gamma", fmt.Sprintf("%.6f", res.Gamma)})
		table.Append([]string{"vega", fmt.Sprintf("%.6f", res.Vega)})
		table.Append([]string{"theta", fmt.Sprintf("%.6f", res.Theta)})
		table.Append([]string{"rho", fmt.Sprintf("%.6f", res.Rho)})
		table.Append([]string{"psi", fmt.Sprintf("%.6f", res.Psi)})
		table.Render()
		return nil
	},
}

var binomialCmd = &cobra.Command{
	Use:   "binomial",
	Short: "Binomial lattice price at a fixed depth",
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := paramsFromFlags(cmd)
		if err != nil {
			return err
		}
		steps, _ := cmd.Flags().GetInt("steps")

		var payoff pricing.PayoffFunction
		if expr, _ := cmd.Flags().GetString("payoff"); expr != "" {
			payoff, err = pricing.NewExpressionPayoff(expr)
		} else {
			typeStr, _ := cmd.Flags().GetString("type")
			var optType pricing.OptionType
			if optType, err = pricing.ParseOptionType(typeStr); err == nil {
				payoff, err = pricing.PayoffForType(optType)
			}
		}
		if err != nil {
			return err
		}

		price, err := pricing.NewBinomialLatticePricer().Price(params, payoff, steps)
		if err != nil {
			return err
		}
		fmt.Printf("%.6f\n", price)
		return nil
	},
}

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Run a lattice convergence scenario against the closed form",
	RunE: func(cmd *cobra.Command, args []string) error {
		var scenario report.Scenario
		if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
			cfgData, err := os.ReadFile(configPath)
			if err != nil {
				return fmt.Errorf("reading config: %w", err)
			}
			if err := json.Unmarshal(cfgData, &scenario); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
		} else {
			params, err := paramsFromFlags(cmd)
			if err != nil {
				return err
			}
			scenario.Spot = params.Spot
			scenario.Strike = params.Strike
			scenario.Volatility = params.Volatility
			scenario.RiskFreeRate = params.RiskFreeRate
			scenario.TimeToExpiry = params.TimeToExpiry
			scenario.DividendYield = params.DividendYield
			scenario.OptionType, _ = cmd.Flags().GetString("type")
			scenario.PayoffExpr, _ = cmd.Flags().GetString("payoff")
			scenario.Steps, _ = cmd.Flags().GetIntSlice("steps-schedule")
			scenario.ReportDir, _ = cmd.Flags().GetString("out")
			scenario.Verbosity, _ = cmd.Flags().GetInt("verbosity")
		}

		rep, err := report.Run(&scenario)
		if err != nil {
			return err
		}
		report.RenderTable(os.Stdout, rep)
		if summary, err := rep.Summarize(); err == nil {
			logger.Infof("mean abs error %.6f, max %.6f, final %.6f",
				summary.MeanAbsError, summary.MaxAbsError, summary.FinalAbsError)
		}
		if scenario.ReportDir != "" {
			logger.Infof("reports written to %s", scenario.ReportDir)
		}
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().Float64("spot", 100, "spot price of the underlying")
	rootCmd.PersistentFlags().Float64("strike", 100, "strike price")
	rootCmd.PersistentFlags().Float64("vol", 0.20, "annualized volatility")
	rootCmd.PersistentFlags().Float64("rate", 0.05, "continuously compounded risk-free rate")
	rootCmd.PersistentFlags().Float64("expiry", 0.25, "time to expiry in years")
	rootCmd.PersistentFlags().Float64("div", 0, "continuous dividend yield")
	rootCmd.PersistentFlags().String("type", "call", "option type: call or put")
	rootCmd.PersistentFlags().Int("verbosity", 1, "0=errors,1=info,2=debug,3=trace")

	binomialCmd.Flags().Int("steps", 500, "lattice depth")
	binomialCmd.Flags().String("payoff", "", "custom payoff expression over S and K, e.g. \"S > K ? 1 : 0\"")

	convergeCmd.Flags().String("config", "", "path to JSON scenario config")
	convergeCmd.Flags().IntSlice("steps-schedule", nil, "step counts to run, in order")
	convergeCmd.Flags().String("payoff", "", "custom payoff expression over S and K")
	convergeCmd.Flags().String("out", "", "directory for JSON/CSV reports")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		v, _ := cmd.Flags().GetInt("verbosity")
		logger.SetVerbosity(v)
	}

	rootCmd.AddCommand(priceCmd, binomialCmd, convergeCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}
