package worker

import (
	"context"
	"errors"

	"github.com/hupe1980/equityscope/core"
)

// Fake capabilities shared by the worker tests.

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
	calls    int
}

func (f *fakeSynth) Complete(context.Context, string, string, float64, int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

var errSynthDown = errors.New("synthesizer unavailable")

func sampleQuote() core.Quote {
	return core.Quote{
		Symbol:       "ACME",
		CompanyName:  "Acme Corp",
		Sector:       "Industrials",
		Industry:     "Machinery",
		CurrentPrice: 150.0,
		MarketCap:    5e10,
		EPS:          8.33,

		PERatio:     18.0,
		ForwardPE:   16.0,
		PEGRatio:    1.5,
		PriceToBook: 4.2,

		DebtToEquity: 0.4,
		CurrentRatio: 1.8,
		ROE:          0.15,

		RevenueGrowth:  0.12,
		EarningsGrowth: 0.18,

		Volatility: 25.0,
		Beta:       1.1,

		FiftyTwoWeekHigh:      180.0,
		FiftyTwoWeekLow:       110.0,
		TargetPrice:           165.0,
		AnalystRecommendation: "buy",

		PriceChanges: core.PriceChanges{OneDay: 0.5, OneWeek: 1.2, OneMonth: 3.4, OneYear: 15.0},
	}
}

func sampleArticles() []core.Article {
	return []core.Article{
		{Title: "Acme beats earnings estimates", URL: "https://example.com/1", Snippet: "Q2 revenue up 12%", PublishedDate: "2026-08-20"},
		{Title: "Acme announces buyback", URL: "https://example.com/2", Snippet: "Board approves $2B program", PublishedDate: "2026-08-18"},
	}
}
