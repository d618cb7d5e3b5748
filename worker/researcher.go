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

// Document types written by the researcher.
const (
	typeResearchSummary   = "research_summary"
	typeSentimentAnalysis = "sentiment_analysis"
	typeRiskAnalysis      = "risk_analysis"
	typeNewsArticle       = "news_article"
)

// storedArticleLimit caps how many raw articles are persisted per run.
const storedArticleLimit = 5

// Researcher gathers recent news for a subject, judges sentiment and
// extracts risks/opportunities, persisting every finding into the shared
// memory store.
type Researcher struct {
	news   core.NewsSearch
	synth  core.Synthesizer
	store  core.MemoryStore
	cfg    config.Settings
	logger logging.Logger
}

// NewResearcher wires the researcher worker. A nil logger is replaced with a
// NoOpLogger.
func NewResearcher(news core.NewsSearch, synth core.Synthesizer, store core.MemoryStore, cfg config.Settings, logger logging.Logger) *Researcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Researcher{news: news, synth: synth, store: store, cfg: cfg, logger: logger}
}

// Research runs the full research pass for a subject. Capability failures on
// the news feed surface as errors for the coordinator to degrade; synthesis
// failures are absorbed here with deterministic fallbacks.
func (r *Researcher) Research(ctx context.Context, subject core.Subject) (core.ResearchFindings, error) {
	r.logger.Info("Starting research", "subject", subject.Symbol)

	articles, err := r.gatherNews(ctx, subject)
	if err != nil {
		return core.ResearchFindings{}, fmt.Errorf("news search failed for %s: %w", subject.Symbol, err)
	}

	sentiment := r.analyzeSentiment(ctx, subject, articles)
	risk := r.identifyRisks(ctx, subject, articles)
	summary := researchSummary(subject, articles, sentiment, risk)

	findings := core.ResearchFindings{
		Subject:   subject.Symbol,
		Articles:  articles,
		Sentiment: sentiment,
		Risk:      risk,
		Summary:   summary,
	}
	r.storeFindings(subject, findings)

	r.logger.Info("Research completed", "subject", subject.Symbol, "articles", len(articles))
	return findings, nil
}

func (r *Researcher) gatherNews(ctx context.Context, subject core.Subject) ([]core.Article, error) {
	query := subject.Symbol + " stock news"
	if subject.Name != "" {
		query = subject.Symbol + " " + subject.Name + " stock news"
	}
	max := r.cfg.MaxNewsResults
	if max <= 0 {
		max = 10
	}
	return r.news.Search(ctx, query, max)
}

func (r *Researcher) analyzeSentiment(ctx context.Context, subject core.Subject, articles []core.Article) core.SentimentAnalysis {
	if len(articles) == 0 {
		return core.SentimentAnalysis{
			Overall:     "neutral",
			Score:       0,
			Explanation: "No news articles available for sentiment analysis.",
		}
	}

	prompt := fmt.Sprintf(`Analyze the sentiment of the following news articles about %s.

News Articles:
%s

Provide:
1. Overall sentiment (bullish/neutral/bearish)
2. Sentiment score (-10 to +10, where -10 is very bearish and +10 is very bullish)
3. Brief explanation (2-3 sentences) of the key factors driving sentiment

Format your response as:
SENTIMENT: [bullish/neutral/bearish]
SCORE: [number]
EXPLANATION: [your explanation]
`, subject.Symbol, formatArticles(articles))

	start := time.Now()
	raw, err := r.synth.Complete(ctx, "You are a financial analyst specializing in sentiment analysis.", prompt, r.cfg.Temperature, 500)
	if err != nil {
		r.logger.Warn("Sentiment synthesis failed, using neutral fallback", "subject", subject.Symbol, "error", err)
		return core.SentimentAnalysis{
			Overall:     "neutral",
			Score:       0,
			Explanation: fmt.Sprintf("Sentiment synthesis unavailable; defaulting to neutral across %d articles.", len(articles)),
		}
	}
	r.logger.Debug("Sentiment synthesis completed", "subject", subject.Symbol, "duration", time.Since(start))

	parsed := ParseSentiment(raw)
	return core.SentimentAnalysis{
		Overall:     parsed.Overall,
		Score:       parsed.Score,
		Explanation: parsed.Explanation,
		Raw:         raw,
	}
}

func (r *Researcher) identifyRisks(ctx context.Context, subject core.Subject, articles []core.Article) core.RiskAnalysis {
	if len(articles) == 0 {
		return core.RiskAnalysis{Summary: "No news articles available for risk analysis."}
	}

	prompt := fmt.Sprintf(`Based on the following news articles about %s, identify:
1. Key RISKS (potential negative factors)
2. Key OPPORTUNITIES (potential positive factors)

News Articles:
%s

List 3-5 risks and 3-5 opportunities. Be specific and concise.

Format:
RISKS:
- [risk 1]
- [risk 2]
...

OPPORTUNITIES:
- [opportunity 1]
- [opportunity 2]
...
`, subject.Symbol, formatArticles(articles))

	raw, err := r.synth.Complete(ctx, "You are a financial risk analyst.", prompt, r.cfg.Temperature, 800)
	if err != nil {
		r.logger.Warn("Risk synthesis failed, using empty fallback", "subject", subject.Symbol, "error", err)
		return core.RiskAnalysis{
			Summary: fmt.Sprintf("Risk synthesis unavailable; no risks or opportunities extracted from %d articles.", len(articles)),
		}
	}

	risks, opportunities := ParseRiskOpportunities(raw)
	return core.RiskAnalysis{Risks: risks, Opportunities: opportunities, Summary: raw}
}

func researchSummary(subject core.Subject, articles []core.Article, sentiment core.SentimentAnalysis, risk core.RiskAnalysis) string {
	lines := []string{
		fmt.Sprintf("Research Summary for %s:", subject.Symbol),
		fmt.Sprintf("- Found %d recent news articles", len(articles)),
		fmt.Sprintf("- Overall Sentiment: %s (Score: %d)", strings.ToUpper(sentiment.Overall), sentiment.Score),
		fmt.Sprintf("- Identified %d risks and %d opportunities", len(risk.Risks), len(risk.Opportunities)),
	}
	return strings.Join(lines, "\n")
}

// storeFindings persists the derived judgments. Storage failures degrade the
// persistence step only; they are logged and never fail the worker.
func (r *Researcher) storeFindings(subject core.Subject, f core.ResearchFindings) {
	if _, err := r.store.Add(f.Summary, map[string]any{
		core.MetaSubject: subject.Symbol,
		core.MetaWorker:  core.WorkerResearcher,
		core.MetaType:    typeResearchSummary,
	}); err != nil {
		r.logger.Warn("Failed to store research summary", "subject", subject.Symbol, "error", err)
	}

	if _, err := r.store.Add("Sentiment Analysis:\n"+f.Sentiment.Explanation, map[string]any{
		core.MetaSubject: subject.Symbol,
		core.MetaWorker:  core.WorkerResearcher,
		core.MetaType:    typeSentimentAnalysis,
		"sentiment":      f.Sentiment.Overall,
		"score":          f.Sentiment.Score,
	}); err != nil {
		r.logger.Warn("Failed to store sentiment analysis", "subject", subject.Symbol, "error", err)
	}

	if _, err := r.store.Add(riskDocument(f.Risk), map[string]any{
		core.MetaSubject: subject.Symbol,
		core.MetaWorker:  core.WorkerResearcher,
		core.MetaType:    typeRiskAnalysis,
	}); err != nil {
		r.logger.Warn("Failed to store risk analysis", "subject", subject.Symbol, "error", err)
	}

	if len(f.Articles) > 0 {
		var contents []string
		var metadatas []map[string]any
		for _, article := range f.Articles {
			if len(contents) == storedArticleLimit {
				break
			}
			contents = append(contents, article.Title+"\n"+article.Snippet)
			metadatas = append(metadatas, map[string]any{
				core.MetaSubject: subject.Symbol,
				core.MetaWorker:  core.WorkerResearcher,
				core.MetaType:    typeNewsArticle,
				"url":            article.URL,
				"date":           article.PublishedDate,
			})
		}
		if _, err := r.store.AddBatch(contents, metadatas); err != nil {
			r.logger.Warn("Failed to store news articles", "subject", subject.Symbol, "error", err)
		}
	}
}

func riskDocument(risk core.RiskAnalysis) string {
	var b strings.Builder
	b.WriteString("RISKS:\n")
	for _, item := range risk.Risks {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("\nOPPORTUNITIES:\n")
	for _, item := range risk.Opportunities {
		b.WriteString("- " + item + "\n")
	}
	return b.String()
}

func formatArticles(articles []core.Article) string {
	var b strings.Builder
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s (%s)\n%s\n", i+1, a.Title, a.PublishedDate, a.Snippet)
	}
	return b.String()
}
