package coordinator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/equityscope/config"
	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/memory"
	"github.com/hupe1980/equityscope/worker"
)

type fakeMarket struct {
	quote core.Quote
	err   error
}

func (f fakeMarket) Quote(context.Context, string) (core.Quote, error) {
	return f.quote, f.err
}

type fakeNews struct {
	articles []core.Article
	err      error
}

func (f fakeNews) Search(context.Context, string, int) ([]core.Article, error) {
	return f.articles, f.err
}

type fakeSynth struct {
	response string
	err      error
}

func (f fakeSynth) Complete(context.Context, string, string, float64, int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func goodQuote() core.Quote {
	return core.Quote{
		Symbol:       "ACME",
		CompanyName:  "Acme Corp",
		CurrentPrice: 150.0,
		PERatio:      18.0,
		PEGRatio:     1.5,
		DebtToEquity: 0.4,
		CurrentRatio: 1.8,
		ROE:          0.15,
		Volatility:   25.0,
		Beta:         1.1,
		PriceChanges: core.PriceChanges{OneYear: 15.0},
	}
}

func goodArticles() []core.Article {
	return []core.Article{
		{Title: "Acme beats estimates", URL: "https://example.com/1", Snippet: "Revenue up", PublishedDate: "2026-08-20"},
	}
}

// newTestCoordinator wires a coordinator over fakes plus a real in-memory
// store so the storage verification check is exercised for real.
func newTestCoordinator(market core.MarketData, news core.NewsSearch, synth core.Synthesizer, store core.MemoryStore) *Coordinator {
	cfg := config.Default()
	researcher := worker.NewResearcher(news, synth, store, cfg, nil)
	analyst := worker.NewAnalyst(market, synth, store, cfg, nil)
	reporter := worker.NewReporter(synth, store, cfg, nil)
	return New(researcher, analyst, reporter, market, store, nil)
}

func TestCoordinatorRun(t *testing.T) {
	synthResponse := "SENTIMENT: bullish\nSCORE: 6\nEXPLANATION: Positive flow."

	t.Run("successful run populates everything", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{articles: goodArticles()}, fakeSynth{response: synthResponse}, store)

		outcome := coord.Run(context.Background(), "acme", core.ToneNeutral, true)

		require.True(t, outcome.Success)
		assert.Empty(t, outcome.Err)
		assert.Equal(t, "ACME", outcome.Subject.Symbol)
		assert.Equal(t, "Acme Corp", outcome.Subject.Name)
		assert.True(t, outcome.QualityCheck.Passed)
		assert.Empty(t, outcome.QualityCheck.Issues)
		assert.True(t, outcome.FinalValidation.Valid)
		assert.Empty(t, outcome.FinalValidation.MissingSections)
		for _, name := range core.RequiredSections {
			assert.NotEmpty(t, outcome.Report.Section(name), "section %s", name)
		}
	})

	t.Run("invalid symbol fails before touching the store", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		_, err := store.Add("pre-existing", map[string]any{
			core.MetaSubject: "NOPE",
			core.MetaWorker:  "researcher",
			core.MetaType:    "research_summary",
		})
		require.NoError(t, err)

		coord := newTestCoordinator(fakeMarket{quote: core.Quote{Err: "symbol not found"}}, fakeNews{}, fakeSynth{}, store)
		outcome := coord.Run(context.Background(), "nope", core.ToneNeutral, true)

		assert.False(t, outcome.Success)
		assert.Contains(t, outcome.Err, "symbol not found")

		stats, err := store.Statistics()
		require.NoError(t, err)
		assert.Equal(t, 1, stats.TotalDocuments)
	})

	t.Run("malformed symbol fails validation", func(t *testing.T) {
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{}, fakeSynth{}, memory.NewInMemoryStore(nil))
		outcome := coord.Run(context.Background(), "not a ticker!", core.ToneNeutral, true)
		assert.False(t, outcome.Success)
		assert.NotEmpty(t, outcome.Err)
	})

	t.Run("parallel and sequential agree", func(t *testing.T) {
		run := func(parallel bool) core.Outcome {
			store := memory.NewInMemoryStore(nil)
			coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{articles: goodArticles()}, fakeSynth{response: synthResponse}, store)
			return coord.Run(context.Background(), "ACME", core.ToneNeutral, parallel)
		}

		par := run(true)
		seq := run(false)

		assert.Equal(t, par.Research.Sentiment, seq.Research.Sentiment)
		assert.Equal(t, par.Research.Summary, seq.Research.Summary)
		assert.Equal(t, par.Analysis.Valuation, seq.Analysis.Valuation)
		assert.Equal(t, par.Analysis.Risk, seq.Analysis.Risk)
		assert.Equal(t, par.QualityCheck.Passed, seq.QualityCheck.Passed)
	})

	t.Run("failed synthesizer still succeeds with fallbacks", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{articles: goodArticles()}, fakeSynth{err: errors.New("model down")}, store)

		outcome := coord.Run(context.Background(), "ACME", core.ToneNeutral, true)

		require.True(t, outcome.Success)
		assert.True(t, outcome.FinalValidation.Valid)
		assert.Equal(t, "neutral", outcome.Research.Sentiment.Overall)
		for _, name := range core.RequiredSections {
			assert.NotEmpty(t, outcome.Report.Section(name), "section %s", name)
		}
	})

	t.Run("news failure degrades research and gate reports it", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{err: errors.New("rate limited")}, fakeSynth{response: synthResponse}, store)

		outcome := coord.Run(context.Background(), "ACME", core.ToneNeutral, true)

		require.True(t, outcome.Success)
		assert.True(t, outcome.Research.Degraded())
		assert.Equal(t, "neutral", outcome.Research.Sentiment.Overall)
		assert.False(t, outcome.QualityCheck.Passed)
		require.NotEmpty(t, outcome.QualityCheck.Issues)
		assert.Contains(t, outcome.QualityCheck.Issues[0], "Researcher error:")
	})

	t.Run("empty news flags missing articles", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{}, fakeSynth{response: synthResponse}, store)

		outcome := coord.Run(context.Background(), "ACME", core.ToneNeutral, true)

		require.True(t, outcome.Success)
		assert.False(t, outcome.QualityCheck.Passed)
		assert.Contains(t, outcome.QualityCheck.Issues, "No news articles found")
	})

	t.Run("unknown tone defaults to neutral", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{articles: goodArticles()}, fakeSynth{response: synthResponse}, store)

		outcome := coord.Run(context.Background(), "ACME", core.Tone("sarcastic"), true)
		require.True(t, outcome.Success)
		assert.Equal(t, core.ToneNeutral, outcome.Report.Tone)
	})

	t.Run("reruns replace prior findings for the subject", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{quote: goodQuote()}, fakeNews{articles: goodArticles()}, fakeSynth{response: synthResponse}, store)

		first := coord.Run(context.Background(), "ACME", core.ToneNeutral, true)
		require.True(t, first.Success)
		statsAfterFirst, err := store.Statistics()
		require.NoError(t, err)

		second := coord.Run(context.Background(), "ACME", core.ToneNeutral, true)
		require.True(t, second.Success)
		statsAfterSecond, err := store.Statistics()
		require.NoError(t, err)

		assert.Equal(t, statsAfterFirst.TotalDocuments, statsAfterSecond.TotalDocuments)
	})
}

func TestQualityGate(t *testing.T) {
	subject := core.Subject{Symbol: "ACME"}

	research := func() core.ResearchFindings {
		return core.ResearchFindings{Subject: "ACME", Articles: goodArticles()}
	}
	analysis := func() core.AnalysisFindings {
		return core.AnalysisFindings{Subject: "ACME", Quote: goodQuote()}
	}

	t.Run("data issues suppress the storage check", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{}, fakeNews{}, fakeSynth{}, store)

		a := analysis()
		a.Quote.PERatio = 0
		check := coord.qualityGate(research(), a, subject)

		assert.False(t, check.Passed)
		assert.Equal(t, []string{"Missing P/E ratio"}, check.Issues)
	})

	t.Run("clean data with empty store flags persistence", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{}, fakeNews{}, fakeSynth{}, store)

		check := coord.qualityGate(research(), analysis(), subject)

		assert.False(t, check.Passed)
		assert.Equal(t, []string{"Data not properly stored in vector memory"}, check.Issues)
	})

	t.Run("analyst degradation reported", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{}, fakeNews{}, fakeSynth{}, store)

		check := coord.qualityGate(research(), core.AnalysisFindings{Subject: "ACME", Err: "symbol not found"}, subject)

		assert.False(t, check.Passed)
		assert.Contains(t, check.Issues, "Analyst error: symbol not found")
	})

	t.Run("checks performed are always listed", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		coord := newTestCoordinator(fakeMarket{}, fakeNews{}, fakeSynth{}, store)

		check := coord.qualityGate(research(), analysis(), subject)
		assert.Equal(t, qualityChecks, check.ChecksPerformed)
	})
}

func TestValidateReport(t *testing.T) {
	full := core.Report{
		ExecutiveSummary:    "a",
		CompanySnapshot:     "b",
		FinancialIndicators: "c",
		NewsSentiment:       "d",
		BullCase:            "e",
		BearCase:            "f",
		FinalPerspective:    "g",
	}

	t.Run("complete report is valid", func(t *testing.T) {
		v := validateReport(full)
		assert.True(t, v.Valid)
		assert.Empty(t, v.MissingSections)
		assert.False(t, v.HasError)
	})

	t.Run("missing sections are named", func(t *testing.T) {
		r := full
		r.BullCase = ""
		r.FinalPerspective = "  "
		v := validateReport(r)
		assert.False(t, v.Valid)
		assert.Equal(t, []string{"bull_case", "final_perspective"}, v.MissingSections)
	})

	t.Run("report error invalidates", func(t *testing.T) {
		r := full
		r.Err = "generation failed"
		v := validateReport(r)
		assert.False(t, v.Valid)
		assert.True(t, v.HasError)
	})
}
