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

func newTestResearcher(news core.NewsSearch, synth core.Synthesizer, store core.MemoryStore) *Researcher {
	return NewResearcher(news, synth, store, config.Default(), nil)
}

func TestResearcherResearch(t *testing.T) {
	subject := core.Subject{Symbol: "ACME", Name: "Acme Corp"}

	t.Run("full research pass", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		synth := &fakeSynth{response: "SENTIMENT: bullish\nSCORE: 6\nEXPLANATION: Earnings beat and buyback support the stock."}
		researcher := newTestResearcher(fakeNews{articles: sampleArticles()}, synth, store)

		findings, err := researcher.Research(context.Background(), subject)
		require.NoError(t, err)
		assert.False(t, findings.Degraded())
		assert.Len(t, findings.Articles, 2)
		assert.Equal(t, "bullish", findings.Sentiment.Overall)
		assert.Equal(t, 6, findings.Sentiment.Score)
		assert.Contains(t, findings.Summary, "Found 2 recent news articles")

		// summary, sentiment, risk plus one document per article
		stats, err := store.Statistics()
		require.NoError(t, err)
		assert.Equal(t, 5, stats.TotalDocuments)
		assert.Equal(t, []string{core.WorkerResearcher}, stats.Workers)
	})

	t.Run("no articles yields neutral defaults", func(t *testing.T) {
		synth := &fakeSynth{response: "should not be called"}
		researcher := newTestResearcher(fakeNews{}, synth, memory.NewInMemoryStore(nil))

		findings, err := researcher.Research(context.Background(), subject)
		require.NoError(t, err)
		assert.Equal(t, "neutral", findings.Sentiment.Overall)
		assert.Zero(t, findings.Sentiment.Score)
		assert.Equal(t, "No news articles available for sentiment analysis.", findings.Sentiment.Explanation)
		assert.Equal(t, "No news articles available for risk analysis.", findings.Risk.Summary)
		assert.Zero(t, synth.calls)
	})

	t.Run("news failure surfaces as error", func(t *testing.T) {
		researcher := newTestResearcher(fakeNews{err: errors.New("rate limited")}, &fakeSynth{}, memory.NewInMemoryStore(nil))

		_, err := researcher.Research(context.Background(), subject)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "news search failed")
	})

	t.Run("synthesis failure degrades to neutral", func(t *testing.T) {
		researcher := newTestResearcher(fakeNews{articles: sampleArticles()}, &fakeSynth{err: errSynthDown}, memory.NewInMemoryStore(nil))

		findings, err := researcher.Research(context.Background(), subject)
		require.NoError(t, err)
		assert.Equal(t, "neutral", findings.Sentiment.Overall)
		assert.Zero(t, findings.Sentiment.Score)
		assert.Empty(t, findings.Risk.Risks)
		assert.Empty(t, findings.Risk.Opportunities)
	})

	t.Run("stores at most five articles", func(t *testing.T) {
		store := memory.NewInMemoryStore(nil)
		var many []core.Article
		for i := 0; i < 8; i++ {
			many = append(many, core.Article{Title: "headline", Snippet: "body"})
		}
		researcher := newTestResearcher(fakeNews{articles: many}, &fakeSynth{response: "SENTIMENT: neutral\nSCORE: 0"}, store)

		findings, err := researcher.Research(context.Background(), subject)
		require.NoError(t, err)
		assert.Len(t, findings.Articles, 8)

		results, err := store.Query("headline", 20, map[string]any{core.MetaType: "news_article"})
		require.NoError(t, err)
		assert.Len(t, results, 5)
	})
}
