package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/equityscope/config"
	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/logging"
)

// Document type written by the reporter.
const typeCompleteReport = "complete_report"

// reportTimeLayout is the human-readable timestamp in generated reports.
const reportTimeLayout = "2006-01-02 15:04:05"

// Reporter synthesizes the final research report from both workers'
// findings plus context mined from the shared memory store.
type Reporter struct {
	synth  core.Synthesizer
	store  core.MemoryStore
	cfg    config.Settings
	logger logging.Logger
}

// NewReporter wires the reporter worker. A nil logger is replaced with a
// NoOpLogger.
func NewReporter(synth core.Synthesizer, store core.MemoryStore, cfg config.Settings, logger logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Reporter{synth: synth, store: store, cfg: cfg, logger: logger}
}

// GenerateReport builds every report section. Synthesis failures fall back
// to deterministic section text; the report itself never fails to assemble.
func (r *Reporter) GenerateReport(ctx context.Context, subject core.Subject, research core.ResearchFindings, analysis core.AnalysisFindings, tone core.Tone) (core.Report, error) {
	r.logger.Info("Generating report", "subject", subject.Symbol, "tone", string(tone))

	contextText, err := r.store.Context(subject.Symbol, "")
	if err != nil {
		r.logger.Warn("Context retrieval failed, proceeding without store context", "subject", subject.Symbol, "error", err)
		contextText = core.NoContextSentinel(subject.Symbol)
	}

	report := core.Report{
		Subject:     subject.Symbol,
		GeneratedAt: time.Now().Format(reportTimeLayout),
		Tone:        tone,

		ExecutiveSummary:    r.executiveSummary(ctx, subject, research, analysis, tone),
		CompanySnapshot:     companySnapshot(subject, analysis),
		FinancialIndicators: financialIndicators(analysis),
		NewsSentiment:       newsSentiment(research),
		BullCase:            r.bullCase(ctx, subject, research, analysis),
		BearCase:            r.bearCase(ctx, subject, research, analysis),
		FinalPerspective:    r.finalPerspective(ctx, subject, research, analysis, tone),

		ContextUsed: contextText,
	}

	if _, err := r.store.Add(FormatReportMarkdown(report), map[string]any{
		core.MetaSubject: subject.Symbol,
		core.MetaWorker:  core.WorkerReporter,
		core.MetaType:    typeCompleteReport,
		"generated_date": report.GeneratedAt,
	}); err != nil {
		r.logger.Warn("Failed to store report", "subject", subject.Symbol, "error", err)
	}

	r.logger.Info("Report generated", "subject", subject.Symbol)
	return report, nil
}

func (r *Reporter) executiveSummary(ctx context.Context, subject core.Subject, research core.ResearchFindings, analysis core.AnalysisFindings, tone core.Tone) string {
	name := analysis.Quote.CompanyName
	if name == "" {
		name = subject.Symbol
	}

	prompt := fmt.Sprintf(`Write a concise executive summary (at most 150 words) for %s (%s).

Current Price: $%.2f
Market Sentiment: %s
Valuation: %s
Growth: %s
Risk Level: %s

Tone: %s

Focus on:
1. Current market position
2. Key financial metrics
3. Overall sentiment
4. Primary investment consideration

Keep it professional and concise.
`, name, subject.Symbol, analysis.Quote.CurrentPrice, research.Sentiment.Overall,
		analysis.Valuation.Category, analysis.Growth.Category, analysis.Risk.Level, tone)

	text, err := r.synth.Complete(ctx, "You are a professional financial report writer.", prompt, r.cfg.Temperature, 300)
	if err != nil {
		r.logger.Warn("Executive summary synthesis failed, using fallback", "subject", subject.Symbol, "error", err)
		return fmt.Sprintf("%s (%s) trades at $%.2f. Market sentiment is %s, the stock appears %s with %s and %s risk.",
			name, subject.Symbol, analysis.Quote.CurrentPrice, research.Sentiment.Overall,
			strings.ToLower(analysis.Valuation.Category), strings.ToLower(analysis.Growth.Category), strings.ToLower(analysis.Risk.Level))
	}
	return text
}

func companySnapshot(subject core.Subject, analysis core.AnalysisFindings) string {
	q := analysis.Quote
	name := q.CompanyName
	if name == "" {
		name = subject.Symbol
	}
	recommendation := q.AnalystRecommendation
	if recommendation == "" {
		recommendation = "N/A"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Company:** %s\n", name)
	fmt.Fprintf(&b, "**Ticker:** %s\n", subject.Symbol)
	fmt.Fprintf(&b, "**Sector:** %s\n", orNA(q.Sector))
	fmt.Fprintf(&b, "**Industry:** %s\n", orNA(q.Industry))
	fmt.Fprintf(&b, "**Market Cap:** $%.0f\n", q.MarketCap)
	fmt.Fprintf(&b, "**Current Price:** $%.2f\n\n", q.CurrentPrice)
	fmt.Fprintf(&b, "**52-Week Range:** $%.2f - $%.2f\n", q.FiftyTwoWeekLow, q.FiftyTwoWeekHigh)
	fmt.Fprintf(&b, "**Analyst Recommendation:** %s\n", strings.ToUpper(recommendation))
	if q.TargetPrice > 0 {
		fmt.Fprintf(&b, "**Average Target Price:** $%.2f\n", q.TargetPrice)
	}
	return b.String()
}

func financialIndicators(analysis core.AnalysisFindings) string {
	q := analysis.Quote
	v := analysis.Valuation
	h := analysis.Health
	risk := analysis.Risk

	var b strings.Builder
	b.WriteString("### Price Performance\n")
	fmt.Fprintf(&b, "- **1 Day:** %+.2f%%\n", q.PriceChanges.OneDay)
	fmt.Fprintf(&b, "- **1 Week:** %+.2f%%\n", q.PriceChanges.OneWeek)
	fmt.Fprintf(&b, "- **1 Month:** %+.2f%%\n", q.PriceChanges.OneMonth)
	fmt.Fprintf(&b, "- **1 Year:** %+.2f%%\n\n", q.PriceChanges.OneYear)

	b.WriteString("### Valuation Metrics\n")
	fmt.Fprintf(&b, "- **P/E Ratio:** %.2f (%s)\n", v.PERatio, v.Category)
	fmt.Fprintf(&b, "- **Forward P/E:** %.2f\n", v.ForwardPE)
	fmt.Fprintf(&b, "- **PEG Ratio:** %.2f\n", v.PEGRatio)
	fmt.Fprintf(&b, "- **Price to Book:** %.2f\n\n", v.PriceToBook)

	b.WriteString("### Financial Health\n")
	fmt.Fprintf(&b, "- **Debt to Equity:** %.2f (%s)\n", h.DebtToEquity, h.DebtCategory)
	fmt.Fprintf(&b, "- **Current Ratio:** %.2f (%s)\n", h.CurrentRatio, h.LiquidityCategory)
	fmt.Fprintf(&b, "- **ROE:** %.2f%% (%s)\n\n", h.ROE*100, h.ProfitabilityCategory)

	b.WriteString("### Growth Metrics\n")
	fmt.Fprintf(&b, "- **Revenue Growth:** %.2f%%\n", q.RevenueGrowth*100)
	fmt.Fprintf(&b, "- **Earnings Growth:** %.2f%%\n", q.EarningsGrowth*100)
	fmt.Fprintf(&b, "- **EPS:** $%.2f\n\n", q.EPS)

	b.WriteString("### Risk Indicators\n")
	fmt.Fprintf(&b, "- **Volatility:** %.2f%% (%s)\n", risk.Volatility, risk.VolatilityCategory)
	fmt.Fprintf(&b, "- **Beta:** %.2f (%s)\n", risk.Beta, risk.BetaCategory)
	fmt.Fprintf(&b, "- **Overall Risk Level:** %s\n", risk.Level)
	return b.String()
}

func newsSentiment(research core.ResearchFindings) string {
	explanation := research.Sentiment.Explanation
	if explanation == "" {
		explanation = "No sentiment analysis available."
	}

	var b strings.Builder
	b.WriteString("### Overall Sentiment\n")
	fmt.Fprintf(&b, "**%s** (Score: %d/10)\n\n", strings.ToUpper(research.Sentiment.Overall), research.Sentiment.Score)
	b.WriteString(explanation + "\n\n")
	b.WriteString("### Recent News Headlines\n")
	if len(research.Articles) == 0 {
		b.WriteString("No recent news articles found.\n")
		return b.String()
	}
	for i, article := range research.Articles {
		if i == storedArticleLimit {
			break
		}
		fmt.Fprintf(&b, "%d. [%s](%s)\n   *%s*\n\n", i+1, orNA(article.Title), article.URL, orNA(article.PublishedDate))
	}
	return b.String()
}

func (r *Reporter) bullCase(ctx context.Context, subject core.Subject, research core.ResearchFindings, analysis core.AnalysisFindings) string {
	opportunities := bulletList(research.Risk.Opportunities, "No specific opportunities identified")

	prompt := fmt.Sprintf(`Based on the following information for %s, write a compelling bull case (3-4 paragraphs):

Identified Opportunities:
%s

Financial Insights:
%s

Focus on:
1. Growth potential
2. Competitive advantages
3. Positive catalysts
4. Strong financial metrics

Be balanced but optimistic.
`, subject.Symbol, opportunities, analysis.Insights)

	text, err := r.synth.Complete(ctx, "You are a financial analyst writing the bull case for an investment.", prompt, r.cfg.Temperature, 600)
	if err != nil {
		r.logger.Warn("Bull case synthesis failed, using fallback", "subject", subject.Symbol, "error", err)
		if len(research.Risk.Opportunities) == 0 {
			return "### Opportunities\nOpportunities analysis not available.\n"
		}
		return "### Opportunities\n" + bulletList(research.Risk.Opportunities, "") + "\n"
	}
	return text
}

func (r *Reporter) bearCase(ctx context.Context, subject core.Subject, research core.ResearchFindings, analysis core.AnalysisFindings) string {
	risks := bulletList(research.Risk.Risks, "No specific risks identified")

	prompt := fmt.Sprintf(`Based on the following information for %s, write a thorough bear case (3-4 paragraphs):

Identified Risks:
%s

Risk Level: %s

Focus on:
1. Potential headwinds
2. Competitive threats
3. Financial concerns
4. Market risks

Be balanced but cautious.
`, subject.Symbol, risks, analysis.Risk.Level)

	text, err := r.synth.Complete(ctx, "You are a financial analyst writing the bear case for an investment.", prompt, r.cfg.Temperature, 600)
	if err != nil {
		r.logger.Warn("Bear case synthesis failed, using fallback", "subject", subject.Symbol, "error", err)
		if len(research.Risk.Risks) == 0 {
			return "### Risks\nRisk analysis not available.\n"
		}
		return "### Risks\n" + bulletList(research.Risk.Risks, "") + "\n"
	}
	return text
}

func (r *Reporter) finalPerspective(ctx context.Context, subject core.Subject, research core.ResearchFindings, analysis core.AnalysisFindings, tone core.Tone) string {
	valuation := analysis.Valuation.Category
	if valuation == "" {
		valuation = "Unknown"
	}
	sentiment := research.Sentiment.Overall
	if sentiment == "" {
		sentiment = "neutral"
	}
	riskLevel := analysis.Risk.Level
	if riskLevel == "" {
		riskLevel = "Unknown"
	}

	prompt := fmt.Sprintf(`Write a balanced final perspective (2-3 paragraphs) for %s:

Valuation: %s
Sentiment: %s
Risk Level: %s
Report Tone: %s

Provide:
1. Summary of key points
2. Who might find this investment suitable
3. What to watch for going forward

Be professional and balanced.
`, subject.Symbol, valuation, sentiment, riskLevel, tone)

	text, err := r.synth.Complete(ctx, "You are a financial advisor providing a balanced perspective.", prompt, r.cfg.Temperature, 500)
	if err != nil {
		r.logger.Warn("Final perspective synthesis failed, using fallback", "subject", subject.Symbol, "error", err)
		return fmt.Sprintf("Based on the analysis, %s presents a %s opportunity with %s market sentiment and %s risk. Further analysis recommended.",
			subject.Symbol, strings.ToLower(valuation), sentiment, strings.ToLower(riskLevel))
	}
	return text
}

// FormatReportMarkdown renders the report as a markdown document, used for
// persistence and export.
func FormatReportMarkdown(r core.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Investment Research Report: %s\n\n", r.Subject)
	fmt.Fprintf(&b, "*Generated: %s | Tone: %s*\n\n", r.GeneratedAt, r.Tone)
	sections := []struct {
		title, body string
	}{
		{"Executive Summary", r.ExecutiveSummary},
		{"Company Snapshot", r.CompanySnapshot},
		{"Financial Indicators", r.FinancialIndicators},
		{"News & Sentiment", r.NewsSentiment},
		{"Bull Case", r.BullCase},
		{"Bear Case", r.BearCase},
		{"Final Perspective", r.FinalPerspective},
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", s.title, s.body)
	}
	return b.String()
}

func bulletList(items []string, empty string) string {
	if len(items) == 0 {
		return empty
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
