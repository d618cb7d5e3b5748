package worker

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/equityscope/config"
	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/logging"
)

// Document types written by the analyst.
const (
	typeFinancialSummary  = "financial_summary"
	typeValuationAnalysis = "valuation_analysis"
	typeHealthAnalysis    = "health_analysis"
	typeGrowthAnalysis    = "growth_analysis"
	typeRiskIndicators    = "risk_indicators"
	typeLLMInsights       = "llm_insights"
)

// Categorization boundaries. Applied consistently in computation and tests;
// changing one changes reported categories everywhere.
const (
	peUndervaluedBelow  = 15.0
	peFairValuedBelow   = 25.0
	pegCheapBelow       = 1.0
	pegFairBelow        = 2.0
	debtConservativeMax = 0.5
	debtModerateMax     = 1.0
	liquidityPoorBelow  = 1.0
	liquidityAdequate   = 2.0
	roeBelowAverageMax  = 0.10
	roeGoodMax          = 0.20
	growthHighAbove     = 0.20
	growthModerateAbove = 0.10
	momentumStrongAbove = 20.0
	momentumWeakBelow   = -20.0
	volatilityLowBelow  = 20.0
	volatilityModBelow  = 40.0
	betaDefensiveBelow  = 0.8
	betaCorrelatedBelow = 1.2
	riskHighVolAbove    = 40.0
	riskHighBetaAbove   = 1.5
)

// Analyst performs the quantitative analysis pass: it fetches the market
// data snapshot, derives categorical judgments from fixed thresholds and
// persists every judgment into the shared memory store.
type Analyst struct {
	market core.MarketData
	synth  core.Synthesizer
	store  core.MemoryStore
	cfg    config.Settings
	logger logging.Logger
}

// NewAnalyst wires the analyst worker. A nil logger is replaced with a
// NoOpLogger.
func NewAnalyst(market core.MarketData, synth core.Synthesizer, store core.MemoryStore, cfg config.Settings, logger logging.Logger) *Analyst {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Analyst{market: market, synth: synth, store: store, cfg: cfg, logger: logger}
}

// Analyze runs the full quantitative pass for a subject. A transport failure
// on the market-data feed surfaces as an error for the coordinator to
// degrade; an unresolvable symbol yields degraded findings with Err set.
func (a *Analyst) Analyze(ctx context.Context, subject core.Subject) (core.AnalysisFindings, error) {
	a.logger.Info("Starting analysis", "subject", subject.Symbol)

	quote, err := a.market.Quote(ctx, subject.Symbol)
	if err != nil {
		return core.AnalysisFindings{}, fmt.Errorf("market data fetch failed for %s: %w", subject.Symbol, err)
	}
	if quote.Err != "" {
		return core.AnalysisFindings{Subject: subject.Symbol, Err: quote.Err}, nil
	}

	valuation := analyzeValuation(quote)
	health := analyzeHealth(quote)
	growth := analyzeGrowth(quote)
	risk := analyzeRiskIndicators(quote)
	insights := a.generateInsights(ctx, subject, quote, valuation, health, growth, risk)
	summary := analysisSummary(subject, quote, valuation, health, growth, risk)

	findings := core.AnalysisFindings{
		Subject:   subject.Symbol,
		Quote:     quote,
		Valuation: valuation,
		Health:    health,
		Growth:    growth,
		Risk:      risk,
		Insights:  insights,
		Summary:   summary,
	}
	a.storeFindings(subject, findings)

	a.logger.Info("Analysis completed", "subject", subject.Symbol)
	return findings, nil
}

func analyzeValuation(q core.Quote) core.ValuationAnalysis {
	category := "Unknown"
	if q.PERatio > 0 {
		switch {
		case q.PERatio < peUndervaluedBelow:
			category = "Undervalued"
		case q.PERatio < peFairValuedBelow:
			category = "Fairly Valued"
		default:
			category = "Overvalued"
		}
	}

	pegInterpretation := "Unknown"
	if q.PEGRatio > 0 {
		switch {
		case q.PEGRatio < pegCheapBelow:
			pegInterpretation = "Potentially undervalued relative to growth"
		case q.PEGRatio < pegFairBelow:
			pegInterpretation = "Fairly valued relative to growth"
		default:
			pegInterpretation = "Expensive relative to growth"
		}
	}

	return core.ValuationAnalysis{
		PERatio:           q.PERatio,
		ForwardPE:         q.ForwardPE,
		PEGRatio:          q.PEGRatio,
		PriceToBook:       q.PriceToBook,
		Category:          category,
		PEGInterpretation: pegInterpretation,
		Summary:           fmt.Sprintf("Stock appears %s with P/E of %.2f. %s.", strings.ToLower(category), q.PERatio, pegInterpretation),
	}
}

func analyzeHealth(q core.Quote) core.HealthAnalysis {
	debtCategory := "Unknown"
	if q.DebtToEquity >= 0 {
		switch {
		case q.DebtToEquity < debtConservativeMax:
			debtCategory = "Conservative (Low leverage)"
		case q.DebtToEquity < debtModerateMax:
			debtCategory = "Moderate leverage"
		default:
			debtCategory = "High leverage (Higher risk)"
		}
	}

	liquidityCategory := "Unknown"
	if q.CurrentRatio > 0 {
		switch {
		case q.CurrentRatio < liquidityPoorBelow:
			liquidityCategory = "Poor (Potential liquidity issues)"
		case q.CurrentRatio < liquidityAdequate:
			liquidityCategory = "Adequate"
		default:
			liquidityCategory = "Strong"
		}
	}

	profitabilityCategory := "Unknown"
	if q.ROE > 0 {
		switch {
		case q.ROE < roeBelowAverageMax:
			profitabilityCategory = "Below average"
		case q.ROE < roeGoodMax:
			profitabilityCategory = "Good"
		default:
			profitabilityCategory = "Excellent"
		}
	}

	return core.HealthAnalysis{
		DebtToEquity:          q.DebtToEquity,
		DebtCategory:          debtCategory,
		CurrentRatio:          q.CurrentRatio,
		LiquidityCategory:     liquidityCategory,
		ROE:                   q.ROE,
		ProfitabilityCategory: profitabilityCategory,
		Summary: fmt.Sprintf("Financial health is %s with %s. Profitability is %s.",
			strings.ToLower(liquidityCategory), strings.ToLower(debtCategory), strings.ToLower(profitabilityCategory)),
	}
}

func analyzeGrowth(q core.Quote) core.GrowthAnalysis {
	avgGrowth := 0.0
	if q.RevenueGrowth != 0 && q.EarningsGrowth != 0 {
		avgGrowth = (q.RevenueGrowth + q.EarningsGrowth) / 2
	}
	var category string
	switch {
	case avgGrowth > growthHighAbove:
		category = "High growth"
	case avgGrowth > growthModerateAbove:
		category = "Moderate growth"
	case avgGrowth > 0:
		category = "Slow growth"
	default:
		category = "Negative growth"
	}

	var momentum string
	switch yearChange := q.PriceChanges.OneYear; {
	case yearChange > momentumStrongAbove:
		momentum = "Strong upward momentum"
	case yearChange > 0:
		momentum = "Positive momentum"
	case yearChange > momentumWeakBelow:
		momentum = "Negative momentum"
	default:
		momentum = "Strong downward momentum"
	}

	return core.GrowthAnalysis{
		RevenueGrowth:  q.RevenueGrowth,
		EarningsGrowth: q.EarningsGrowth,
		Category:       category,
		PriceChanges:   q.PriceChanges,
		Momentum:       momentum,
		Summary:        fmt.Sprintf("Company shows %s with %s.", strings.ToLower(category), strings.ToLower(momentum)),
	}
}

func analyzeRiskIndicators(q core.Quote) core.RiskIndicators {
	volatilityCategory := "Unknown"
	if q.Volatility > 0 {
		switch {
		case q.Volatility < volatilityLowBelow:
			volatilityCategory = "Low volatility (Stable)"
		case q.Volatility < volatilityModBelow:
			volatilityCategory = "Moderate volatility"
		default:
			volatilityCategory = "High volatility (Risky)"
		}
	}

	betaCategory := "Unknown"
	if q.Beta > 0 {
		switch {
		case q.Beta < betaDefensiveBelow:
			betaCategory = "Defensive (Less volatile than market)"
		case q.Beta < betaCorrelatedBelow:
			betaCategory = "Market-correlated"
		default:
			betaCategory = "Aggressive (More volatile than market)"
		}
	}

	level := "Medium"
	switch {
	case q.Volatility > riskHighVolAbove || q.Beta > riskHighBetaAbove:
		level = "High"
	case q.Volatility < volatilityLowBelow && q.Beta < betaDefensiveBelow:
		level = "Low"
	}

	return core.RiskIndicators{
		Volatility:         q.Volatility,
		VolatilityCategory: volatilityCategory,
		Beta:               q.Beta,
		BetaCategory:       betaCategory,
		Level:              level,
		Summary: fmt.Sprintf("Risk level is %s with %s and %s characteristics.",
			level, strings.ToLower(volatilityCategory), strings.ToLower(betaCategory)),
	}
}

func (a *Analyst) generateInsights(ctx context.Context, subject core.Subject, q core.Quote, valuation core.ValuationAnalysis, health core.HealthAnalysis, growth core.GrowthAnalysis, risk core.RiskIndicators) string {
	prompt := fmt.Sprintf(`Analyze the following financial data for %s and provide key insights:

Financial Data:
- Current Price: $%.2f
- Market Cap: $%.0f
- P/E Ratio: %.2f (Forward: %.2f, PEG: %.2f)
- Debt to Equity: %.2f
- Current Ratio: %.2f
- ROE: %.2f%%
- Revenue Growth: %.2f%%, Earnings Growth: %.2f%%
- Volatility: %.2f%%, Beta: %.2f

Metric Analysis:
- Valuation: %s
- Financial Health: %s liquidity, %s
- Growth: %s
- Risk: %s

Provide:
1. 3-4 key strengths from a financial perspective
2. 3-4 key concerns or weaknesses
3. Overall financial assessment (2-3 sentences)

Be concise and focus on the most important financial indicators.
`, subject.Symbol,
		q.CurrentPrice, q.MarketCap, q.PERatio, q.ForwardPE, q.PEGRatio,
		q.DebtToEquity, q.CurrentRatio, q.ROE*100,
		q.RevenueGrowth*100, q.EarningsGrowth*100, q.Volatility, q.Beta,
		valuation.Category, health.LiquidityCategory, health.DebtCategory, growth.Category, risk.Level)

	insights, err := a.synth.Complete(ctx, "You are a quantitative financial analyst.", prompt, a.cfg.Temperature, 1000)
	if err != nil {
		a.logger.Warn("Insight synthesis failed, using deterministic fallback", "subject", subject.Symbol, "error", err)
		return fmt.Sprintf("Automated insight synthesis unavailable. Computed assessment: valuation is %s, financial health is %s with %s, growth is %s, overall risk level is %s.",
			strings.ToLower(valuation.Category), strings.ToLower(health.LiquidityCategory), strings.ToLower(health.DebtCategory),
			strings.ToLower(growth.Category), strings.ToLower(risk.Level))
	}
	return insights
}

func analysisSummary(subject core.Subject, q core.Quote, valuation core.ValuationAnalysis, health core.HealthAnalysis, growth core.GrowthAnalysis, risk core.RiskIndicators) string {
	lines := []string{
		fmt.Sprintf("Financial Analysis Summary for %s:", subject.Symbol),
		fmt.Sprintf("- Current Price: $%.2f", q.CurrentPrice),
		fmt.Sprintf("- Valuation: %s (P/E: %.2f)", valuation.Category, valuation.PERatio),
		fmt.Sprintf("- Financial Health: %s liquidity, %s", health.LiquidityCategory, health.DebtCategory),
		fmt.Sprintf("- Growth: %s", growth.Category),
		fmt.Sprintf("- Risk Level: %s (%s)", risk.Level, risk.VolatilityCategory),
	}
	return strings.Join(lines, "\n")
}

// storeFindings persists every derived judgment as an individual document.
// Storage failures are logged and never fail the worker.
func (a *Analyst) storeFindings(subject core.Subject, f core.AnalysisFindings) {
	add := func(content string, docType string, extra map[string]any) {
		md := map[string]any{
			core.MetaSubject: subject.Symbol,
			core.MetaWorker:  core.WorkerAnalyst,
			core.MetaType:    docType,
		}
		for k, v := range extra {
			md[k] = v
		}
		if _, err := a.store.Add(content, md); err != nil {
			a.logger.Warn("Failed to store analysis document", "subject", subject.Symbol, "type", docType, "error", err)
		}
	}

	add(f.Summary, typeFinancialSummary, nil)
	add("Valuation Analysis:\n"+f.Valuation.Summary, typeValuationAnalysis, map[string]any{"valuation_category": f.Valuation.Category})
	add("Financial Health:\n"+f.Health.Summary, typeHealthAnalysis, nil)
	add("Growth Analysis:\n"+f.Growth.Summary, typeGrowthAnalysis, map[string]any{"growth_category": f.Growth.Category})
	add("Risk Analysis:\n"+f.Risk.Summary, typeRiskIndicators, map[string]any{"risk_level": f.Risk.Level})
	add("Financial Insights:\n"+f.Insights, typeLLMInsights, nil)
}
