package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

var testParams = pricing.OptionParameters{Spot: 41, Strike: 40, Volatility: 0.30, RiskFreeRate: 0.08, TimeToExpiry: 0.25}

func TestBuild(t *testing.T) {
	analytic := 3.4
	rep, err := Build(testParams, "call", &analytic, []int{10, 50}, []float64{3.5, 3.42})
	assert.NoError(t, err)
	assert.Len(t, rep.Rows, 2)
	assert.Equal(t, 10, rep.Rows[0].Steps)
	assert.InDelta(t, 0.1, *rep.Rows[0].AbsError, 1e-12)
	assert.InDelta(t, 0.02, *rep.Rows[1].AbsError, 1e-12)
}

func TestBuildMismatchedLengths(t *testing.T) {
	_, err := Build(testParams, "call", nil, []int{10, 50}, []float64{3.5})
	assert.Error(t, err)
}

func TestBuildWithoutAnalyticReference(t *testing.T) {
	rep, err := Build(testParams, "custom", nil, []int{10}, []float64{0.5})
	assert.NoError(t, err)
	assert.Nil(t, rep.AnalyticPrice)
	assert.Nil(t, rep.Rows[0].AbsError)

	_, err = rep.Summarize()
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	analytic := 1.0
	rep, err := Build(testParams, "call", &analytic, []int{10, 50, 100}, []float64{1.3, 0.9, 1.02})
	assert.NoError(t, err)

	summary, err := rep.Summarize()
	assert.NoError(t, err)
	assert.InDelta(t, (0.3+0.1+0.02)/3, summary.MeanAbsError, 1e-12)
	assert.InDelta(t, 0.3, summary.MaxAbsError, 1e-12)
	assert.InDelta(t, 0.02, summary.FinalAbsError, 1e-12)
}

func TestWriteReports(t *testing.T) {
	analytic := 3.399078
	rep, err := Build(testParams, "call", &analytic, []int{10, 500}, []float64{3.45, 3.3995})
	assert.NoError(t, err)

	dir := t.TempDir()
	assert.NoError(t, WriteJSON(rep, dir))
	assert.NoError(t, WriteCSV(rep, dir))

	raw, err := os.ReadFile(filepath.Join(dir, "convergence.json"))
	assert.NoError(t, err)
	var back ConvergenceReport
	assert.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, rep.OptionType, back.OptionType)
	assert.Len(t, back.Rows, 2)

	f, err := os.Open(filepath.Join(dir, "convergence.csv"))
	assert.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	assert.NoError(t, err)
	assert.Len(t, records, 3) // header + 2 rows
	assert.Equal(t, []string{"steps", "price", "abs_error"}, records[0])
}

func TestRenderTable(t *testing.T) {
	analytic := 3.399078
	rep, err := Build(testParams, "call", &analytic, []int{500}, []float64{3.3995})
	assert.NoError(t, err)

	var buf bytes.Buffer
	RenderTable(&buf, rep)
	out := buf.String()
	assert.Contains(t, out, "500")
	assert.Contains(t, out, "3.399500")
	assert.Contains(t, out, "analytic call price")
}

func TestScenarioRun(t *testing.T) {
	scenario := &Scenario{
		Spot:         41,
		Strike:       40,
		Volatility:   0.30,
		RiskFreeRate: 0.08,
		TimeToExpiry: 0.25,
		OptionType:   "call",
		Steps:        []int{50, 500},
		ReportDir:    t.TempDir(),
	}

	rep, err := Run(scenario)
	assert.NoError(t, err)
	assert.Len(t, rep.Rows, 2)
	assert.NotNil(t, rep.AnalyticPrice)
	assert.InDelta(t, 3.399078, *rep.AnalyticPrice, 1e-4)
	assert.Less(t, *rep.Rows[1].AbsError, 0.01)

	// report files land in ReportDir
	_, err = os.Stat(filepath.Join(scenario.ReportDir, "convergence.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(scenario.ReportDir, "convergence.csv"))
	assert.NoError(t, err)
}

func TestScenarioRunCustomPayoff(t *testing.T) {
	scenario := &Scenario{
		Spot:         41,
		Strike:       40,
		Volatility:   0.30,
		RiskFreeRate: 0.08,
		TimeToExpiry: 0.25,
		PayoffExpr:   "S > K ? 1 : 0",
		Steps:        []int{100},
	}

	rep, err := Run(scenario)
	assert.NoError(t, err)
	assert.Nil(t, rep.AnalyticPrice)
	assert.Equal(t, "custom", rep.OptionType)
	assert.Equal(t, "S > K ? 1 : 0", rep.PayoffExpr)
	assert.Greater(t, rep.Rows[0].Price, 0.0)
	assert.Less(t, rep.Rows[0].Price, 1.0)
}

func TestScenarioRunDefaultsSteps(t *testing.T) {
	scenario := &Scenario{
		Spot:         100,
		Strike:       100,
		Volatility:   0.20,
		RiskFreeRate: 0.05,
		TimeToExpiry: 0.5,
		OptionType:   "put",
	}

	rep, err := Run(scenario)
	assert.NoError(t, err)
	assert.Len(t, rep.Rows, len(defaultSteps))
	for i, n := range defaultSteps {
		assert.Equal(t, n, rep.Rows[i].Steps)
	}
}

func TestScenarioRunRejectsInvalidInput(t *testing.T) {
	_, err := Run(&Scenario{Spot: 100, Strike: 100, Volatility: 0, RiskFreeRate: 0.05, TimeToExpiry: 0.5, OptionType: "call"})
	assert.ErrorIs(t, err, pricing.ErrInvalidParameter)

	_, err = Run(&Scenario{Spot: 100, Strike: 100, Volatility: 0.2, RiskFreeRate: 0.05, TimeToExpiry: 0.5, OptionType: "strangle"})
	assert.ErrorIs(t, err, pricing.ErrInvalidParameter)

	_, err = Run(&Scenario{Spot: 100, Strike: 100, Volatility: 0.2, RiskFreeRate: 0.05, TimeToExpiry: 0.5, PayoffExpr: "S +* K"})
	assert.ErrorIs(t, err, pricing.ErrInvalidPayoffExpression)
}
