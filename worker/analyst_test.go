package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/equityscope/config"
	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/memory"
)

func newTestAnalyst(market core.MarketData, synth core.Synthesizer, store core.MemoryStore) *Analyst {
	return NewAnalyst(market, synth, store, config.Default(), nil)
}

func TestAnalystAnalyze(t *testing.T) {
	subject := core.Subject{Symbol: "ACME", Name: "Acme Corp"}

	t.Run("full analysis with categorization", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		synth := &fakeSynth{response: "Key strengths: solid balance sheet."}
		analyst := newTestAnalyst(fakeMarket{quote: sampleQuote()}, synth, store)

		findings, err := analyst.Analyze(context.Background(), subject)
		require.NoError(t, err)
		assert.False(t, findings.Degraded())

		assert.Equal(t, "Fairly Valued", findings.Valuation.Category)
		assert.Equal(t, "Fairly valued relative to growth", findings.Valuation.PEGInterpretation)
		assert.Equal(t, "Conservative (Low leverage)", findings.Health.DebtCategory)
		assert.Equal(t, "Adequate", findings.Health.LiquidityCategory)
		assert.Equal(t, "Good", findings.Health.ProfitabilityCategory)
		assert.Equal(t, "Moderate growth", findings.Growth.Category)
		assert.Equal(t, "Positive momentum", findings.Growth.Momentum)
		assert.Equal(t, "Moderate volatility", findings.Risk.VolatilityCategory)
		assert.Equal(t, "Market-correlated", findings.Risk.BetaCategory)
		assert.Equal(t, "Medium", findings.Risk.Level)
		assert.Equal(t, "Key strengths: solid balance sheet.", findings.Insights)

		stats, err := store.Statistics()
		require.NoError(t, err)
		assert.Equal(t, 6, stats.TotalDocuments)
		assert.True(t, stats.HasSubject("ACME"))
	})

	t.Run("transport failure surfaces as error", func(t *testing.T) {
		analyst := newTestAnalyst(fakeMarket{err: errors.New("connection refused")}, &fakeSynth{}, memory.NewInMemoryStore(nil))

		_, err := analyst.Analyze(context.Background(), subject)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ACME")
	})

	t.Run("unresolvable symbol degrades without storing", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		analyst := newTestAnalyst(fakeMarket{quote: core.Quote{Symbol: "ACME", Err: "symbol not found"}}, &fakeSynth{}, store)

		findings, err := analyst.Analyze(context.Background(), subject)
		require.NoError(t, err)
		assert.True(t, findings.Degraded())
		assert.Equal(t, "symbol not found", findings.Err)

		stats, err := store.Statistics()
		require.NoError(t, err)
		assert.Zero(t, stats.TotalDocuments)
	})

	t.Run("synthesis failure falls back to deterministic insights", func(t *testing.T) {
		analyst := newTestAnalyst(fakeMarket{quote: sampleQuote()}, &fakeSynth{err: errSynthDown}, memory.NewInMemoryStore(nil))

		findings, err := analyst.Analyze(context.Background(), subject)
		require.NoError(t, err)
		assert.False(t, findings.Degraded())
		assert.Contains(t, findings.Insights, "valuation is fairly valued")
	})
}

func TestAnalyzeValuation(t *testing.T) {
	tests := []struct {
		name     string
		pe       float64
		category string
	}{
		{"undervalued below fifteen", 12.0, "Undervalued"},
		{"fairly valued below twenty five", 20.0, "Fairly Valued"},
		{"overvalued at twenty five and up", 30.0, "Overvalued"},
		{"missing ratio is unknown", 0, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzeValuation(core.Quote{PERatio: tt.pe})
			assert.Equal(t, tt.category, got.Category)
		})
	}
}

func TestAnalyzeHealth(t *testing.T) {
	tests := []struct {
		name          string
		quote         core.Quote
		debt          string
		liquidity     string
		profitability string
	}{
		{
			name:          "conservative balance sheet",
			quote:         core.Quote{DebtToEquity: 0.3, CurrentRatio: 2.5, ROE: 0.25},
			debt:          "Conservative (Low leverage)",
			liquidity:     "Strong",
			profitability: "Excellent",
		},
		{
			name:          "stretched balance sheet",
			quote:         core.Quote{DebtToEquity: 1.4, CurrentRatio: 0.8, ROE: 0.05},
			debt:          "High leverage (Higher risk)",
			liquidity:     "Poor (Potential liquidity issues)",
			profitability: "Below average",
		},
		{
			name:          "moderate leverage",
			quote:         core.Quote{DebtToEquity: 0.7, CurrentRatio: 1.5, ROE: 0.12},
			debt:          "Moderate leverage",
			liquidity:     "Adequate",
			profitability: "Good",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzeHealth(tt.quote)
			assert.Equal(t, tt.debt, got.DebtCategory)
			assert.Equal(t, tt.liquidity, got.LiquidityCategory)
			assert.Equal(t, tt.profitability, got.ProfitabilityCategory)
		})
	}
}

func TestAnalyzeGrowth(t *testing.T) {
	t.Run("high growth", func(t *testing.T) {
		got := analyzeGrowth(core.Quote{RevenueGrowth: 0.25, EarningsGrowth: 0.30})
		assert.Equal(t, "High growth", got.Category)
	})

	t.Run("negative growth", func(t *testing.T) {
		got := analyzeGrowth(core.Quote{RevenueGrowth: -0.05, EarningsGrowth: -0.10})
		assert.Equal(t, "Negative growth", got.Category)
	})

	t.Run("missing figures read as negative growth", func(t *testing.T) {
		got := analyzeGrowth(core.Quote{})
		assert.Equal(t, "Negative growth", got.Category)
	})

	t.Run("momentum buckets", func(t *testing.T) {
		assert.Equal(t, "Strong upward momentum", analyzeGrowth(core.Quote{PriceChanges: core.PriceChanges{OneYear: 35}}).Momentum)
		assert.Equal(t, "Positive momentum", analyzeGrowth(core.Quote{PriceChanges: core.PriceChanges{OneYear: 10}}).Momentum)
		assert.Equal(t, "Negative momentum", analyzeGrowth(core.Quote{PriceChanges: core.PriceChanges{OneYear: -10}}).Momentum)
		assert.Equal(t, "Strong downward momentum", analyzeGrowth(core.Quote{PriceChanges: core.PriceChanges{OneYear: -30}}).Momentum)
	})
}

func TestAnalyzeRiskIndicators(t *testing.T) {
	t.Run("high volatility forces high risk", func(t *testing.T) {
		got := analyzeRiskIndicators(core.Quote{Volatility: 45, Beta: 1.0})
		assert.Equal(t, "High", got.Level)
	})

	t.Run("high beta forces high risk", func(t *testing.T) {
		got := analyzeRiskIndicators(core.Quote{Volatility: 25, Beta: 1.6})
		assert.Equal(t, "High", got.Level)
	})

	t.Run("low volatility and defensive beta", func(t *testing.T) {
		got := analyzeRiskIndicators(core.Quote{Volatility: 15, Beta: 0.6})
		assert.Equal(t, "Low", got.Level)
		assert.Equal(t, "Low volatility (Stable)", got.VolatilityCategory)
		assert.Equal(t, "Defensive (Less volatile than market)", got.BetaCategory)
	})

	t.Run("everything else is medium", func(t *testing.T) {
		got := analyzeRiskIndicators(core.Quote{Volatility: 25, Beta: 1.0})
		assert.Equal(t, "Medium", got.Level)
	})
}
