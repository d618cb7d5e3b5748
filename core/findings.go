package core

// Tone selects the narrative slant of the generated report.
type Tone string

// Supported report tones.
const (
	ToneNeutral Tone = "neutral"
	ToneBullish Tone = "bullish"
	ToneBearish Tone = "bearish"
)

// Valid reports whether the tone is one of the supported values.
func (t Tone) Valid() bool {
	switch t {
	case ToneNeutral, ToneBullish, ToneBearish:
		return true
	}
	return false
}

// Worker names used in memory-document metadata and log attributes.
const (
	WorkerResearcher = "researcher"
	WorkerAnalyst    = "analyst"
	WorkerReporter   = "reporter"
)

// SentimentAnalysis is the researcher's judgment of overall news sentiment.
// Score ranges -10 (very bearish) to +10 (very bullish).
type SentimentAnalysis struct {
	Overall     string
	Score       int
	Explanation string
	Raw         string
}

// RiskAnalysis lists risks and opportunities extracted from the news flow.
type RiskAnalysis struct {
	Risks         []string
	Opportunities []string
	Summary       string
}

// ResearchFindings is the researcher worker's structured output. A non-empty
// Err marks the findings as degraded: downstream stages proceed with the
// zero-value fields instead of failing.
type ResearchFindings struct {
	Subject   string
	Articles  []Article
	Sentiment SentimentAnalysis
	Risk      RiskAnalysis
	Summary   string
	Err       string
}

// Degraded reports whether the worker failed and defaults were substituted.
func (f ResearchFindings) Degraded() bool { return f.Err != "" }

// ValuationAnalysis categorizes how the market prices the company.
type ValuationAnalysis struct {
	PERatio           float64
	ForwardPE         float64
	PEGRatio          float64
	PriceToBook       float64
	Category          string
	PEGInterpretation string
	Summary           string
}

// HealthAnalysis categorizes leverage, liquidity and profitability.
type HealthAnalysis struct {
	DebtToEquity          float64
	DebtCategory          string
	CurrentRatio          float64
	LiquidityCategory     string
	ROE                   float64
	ProfitabilityCategory string
	Summary               string
}

// GrowthAnalysis categorizes growth pace and price momentum.
type GrowthAnalysis struct {
	RevenueGrowth  float64
	EarningsGrowth float64
	Category       string
	PriceChanges   PriceChanges
	Momentum       string
	Summary        string
}

// RiskIndicators categorizes volatility and market correlation.
type RiskIndicators struct {
	Volatility         float64
	VolatilityCategory string
	Beta               float64
	BetaCategory       string
	Level              string
	Summary            string
}

// AnalysisFindings is the analyst worker's structured output. As with
// ResearchFindings, a non-empty Err signals degradation, not failure.
type AnalysisFindings struct {
	Subject   string
	Quote     Quote
	Valuation ValuationAnalysis
	Health    HealthAnalysis
	Growth    GrowthAnalysis
	Risk      RiskIndicators
	Insights  string
	Summary   string
	Err       string
}

// Degraded reports whether the worker failed and defaults were substituted.
func (f AnalysisFindings) Degraded() bool { return f.Err != "" }

// Report is the reporter worker's output: the named sections of the final
// research report. ContextUsed carries the memory-store context the reporter
// mined before synthesizing.
type Report struct {
	Subject     string
	GeneratedAt string
	Tone        Tone

	ExecutiveSummary    string
	CompanySnapshot     string
	FinancialIndicators string
	NewsSentiment       string
	BullCase            string
	BearCase            string
	FinalPerspective    string

	ContextUsed string
	Err         string
}

// RequiredSections names the report sections the final validation demands.
var RequiredSections = []string{
	"executive_summary",
	"company_snapshot",
	"financial_indicators",
	"news_sentiment",
	"bull_case",
	"bear_case",
	"final_perspective",
}

// Section returns the named section's content, or "" for an unknown name.
func (r Report) Section(name string) string {
	switch name {
	case "executive_summary":
		return r.ExecutiveSummary
	case "company_snapshot":
		return r.CompanySnapshot
	case "financial_indicators":
		return r.FinancialIndicators
	case "news_sentiment":
		return r.NewsSentiment
	case "bull_case":
		return r.BullCase
	case "bear_case":
		return r.BearCase
	case "final_perspective":
		return r.FinalPerspective
	}
	return ""
}

// QualityCheck is the non-blocking gate run after gathering. A failed gate
// is recorded, logged and carried in the outcome; it never halts the run.
type QualityCheck struct {
	Passed          bool
	Issues          []string
	ChecksPerformed []string
}

// FinalValidation checks the assembled report for completeness. Like the
// quality gate it is informational only.
type FinalValidation struct {
	Valid           bool
	MissingSections []string
	HasError        bool
}

// Outcome is the terminal artifact of one workflow run. On failure only
// Success, Subject and Err are populated; on success every field is.
type Outcome struct {
	Success         bool
	Subject         Subject
	Research        ResearchFindings
	Analysis        AnalysisFindings
	Report          Report
	QualityCheck    QualityCheck
	FinalValidation FinalValidation
	Err             string
}
