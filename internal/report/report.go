// Package report builds and renders convergence reports: the lattice price
// at each step count side by side with the closed-form reference, plus
// aggregate error statistics.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Row is one lattice run within a convergence report.
//
// AbsError is nil when no analytic reference exists (custom payoffs have no
// closed form to compare against).
type Row struct {
	Steps    int      `json:"steps"`
	Price    float64  `json:"price"`
	AbsError *float64 `json:"abs_error,omitempty"`
}

// ConvergenceReport pairs a lattice price sequence with its inputs and,
// for vanilla contracts, the analytic reference price.
type ConvergenceReport struct {
	Parameters    pricing.OptionParameters `json:"parameters"`
	OptionType    string                   `json:"option_type"`
	PayoffExpr    string                   `json:"payoff_expr,omitempty"`
	AnalyticPrice *float64                 `json:"analytic_price,omitempty"`
	Rows          []Row                    `json:"rows"`
}

// Build assembles a report from parallel step/price slices. analytic may be
// nil for payoffs without a closed form.
func Build(params pricing.OptionParameters, optType string, analytic *float64, stepCounts []int, prices []float64) (*ConvergenceReport, error) {
	if len(stepCounts) != len(prices) {
		return nil, fmt.Errorf("step counts and prices mismatched: %d vs %d", len(stepCounts), len(prices))
	}
	rep := &ConvergenceReport{
		Parameters:    params,
		OptionType:    optType,
		AnalyticPrice: analytic,
		Rows:          make([]Row, 0, len(stepCounts)),
	}
	for i, n := range stepCounts {
		row := Row{Steps: n, Price: prices[i]}
		if analytic != nil {
			e := math.Abs(prices[i] - *analytic)
			row.AbsError = &e
		}
		rep.Rows = append(rep.Rows, row)
	}
	return rep, nil
}

// Summary aggregates error statistics over a report's rows.
type Summary struct {
	MeanAbsError  float64 `json:"mean_abs_error"`
	MaxAbsError   float64 `json:"max_abs_error"`
	FinalAbsError float64 `json:"final_abs_error"`
}

// Summarize computes error statistics across all rows carrying an error.
func (r *ConvergenceReport) Summarize() (Summary, error) {
	var errs []float64
	for _, row := range r.Rows {
		if row.AbsError != nil {
			errs = append(errs, *row.AbsError)
		}
	}
	if len(errs) == 0 {
		return Summary{}, fmt.Errorf("no analytic reference, nothing to summarize")
	}
	mean, err := stats.Mean(errs)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to calculate mean error: %w", err)
	}
	max, err := stats.Max(errs)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to calculate max error: %w", err)
	}
	return Summary{MeanAbsError: mean, MaxAbsError: max, FinalAbsError: errs[len(errs)-1]}, nil
}

func WriteJSON(r *ConvergenceReport, outdir string) error {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "convergence.json"), b, 0644)
}

func WriteCSV(r *ConvergenceReport, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "convergence.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	headers := []string{"steps", "price", "abs_error"}
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, row := range r.Rows {
		absErr := ""
		if row.AbsError != nil {
			absErr = fmt.Sprintf("%.8f", *row.AbsError)
		}
		rec := []string{fmt.Sprintf("%d", row.Steps), fmt.Sprintf("%.8f", row.Price), absErr}
		_ = w.Write(rec)
	}
	return nil
}

// RenderTable prints the report as a console table.
func RenderTable(w io.Writer, r *ConvergenceReport) {
	table := tablewriter.NewWriter(w)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	if r.AnalyticPrice != nil {
		table.SetHeader([]string{"steps", "lattice price", "abs error"})
	} else {
		table.SetHeader([]string{"steps", "lattice price"})
	}
	for _, row := range r.Rows {
		if r.AnalyticPrice != nil {
			table.Append([]string{
				fmt.Sprintf("%d", row.Steps),
				fmt.Sprintf("%.6f", row.Price),
				fmt.Sprintf("%.6f", *row.AbsError),
			})
		} else {
			table.Append([]string{
				fmt.Sprintf("%d", row.Steps),
				fmt.Sprintf("%.6f", row.Price),
			})
		}
	}
	table.Render()
	if r.AnalyticPrice != nil {
		fmt.Fprintf(w, "analytic %s price: %.6f\n", r.OptionType, *r.AnalyticPrice)
	}
}
