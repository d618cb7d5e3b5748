package core

import "context"

// PriceChanges captures percentage price moves over standard lookback
// windows. Values are percentages, not fractions (a 12% gain is 12.0).
type PriceChanges struct {
	OneDay   float64
	OneWeek  float64
	OneMonth float64
	OneYear  float64
}

// Quote is the full market-data snapshot for one symbol as returned by a
// MarketData capability. An unresolvable symbol is reported through the Err
// field rather than an error return so callers can degrade instead of
// aborting; zero values mean the provider had no figure for that metric.
type Quote struct {
	Symbol      string
	CompanyName string
	Sector      string
	Industry    string

	CurrentPrice float64
	MarketCap    float64
	EPS          float64

	// Valuation ratios.
	PERatio     float64
	ForwardPE   float64
	PEGRatio    float64
	PriceToBook float64

	// Financial health ratios.
	DebtToEquity float64
	CurrentRatio float64
	ROE          float64

	// Growth figures (fractions: 0.15 is 15% growth).
	RevenueGrowth  float64
	EarningsGrowth float64

	// Risk indicators. Volatility is annualized, in percent.
	Volatility float64
	Beta       float64

	FiftyTwoWeekHigh      float64
	FiftyTwoWeekLow       float64
	TargetPrice           float64
	AnalystRecommendation string

	PriceChanges PriceChanges

	// Err is set when the provider could not resolve the symbol or had
	// insufficient data. A quote with Err set carries no usable figures.
	Err string
}

// Article is one news item returned by a NewsSearch capability.
type Article struct {
	Title         string
	URL           string
	Snippet       string
	PublishedDate string
}

// MarketData supplies quotes for ticker symbols. Implementations must report
// an unresolvable symbol via Quote.Err; the error return is reserved for
// transport-level failures.
type MarketData interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// NewsSearch retrieves recent news for a free-text query. When nothing is
// found implementations return an empty slice, never an error.
type NewsSearch interface {
	Search(ctx context.Context, query string, maxResults int) ([]Article, error)
}

// Synthesizer produces a natural-language completion from a system and user
// prompt. It may fail on transport or quota errors; every caller must catch
// the error and substitute a deterministic fallback.
type Synthesizer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64, maxTokens int64) (string, error)
}
