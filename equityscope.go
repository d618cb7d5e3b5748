// Package equityscope provides a high-level façade over the coordinator and
// its worker units for multi-agent investment research. Most applications
// interact with this package by:
//  1. Creating an EquityScope via New() with market-data and news-search
//     capabilities (and optionally a Synthesizer and a durable memory store)
//  2. Calling Run() per ticker symbol to obtain a full research Outcome
//
// All defaults are safe for local development and testing: an in-memory
// vector store with a deterministic hash embedder, a no-op logger and a
// synthesizer that always falls back to deterministic report text.
package equityscope

import (
	"context"
	"errors"

	"github.com/hupe1980/equityscope/config"
	"github.com/hupe1980/equityscope/coordinator"
	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/logging"
	"github.com/hupe1980/equityscope/memory"
	"github.com/hupe1980/equityscope/worker"
)

// ErrNoSynthesizer is returned by the default synthesizer stand-in. Callers
// of Complete treat it like any other synthesis failure and substitute
// deterministic text.
var ErrNoSynthesizer = errors.New("no synthesizer configured")

// Options configures the EquityScope instance.
type Options struct {
	// Settings tunes synthesis and gathering. Defaults to config.Default().
	Settings config.Settings

	// MemoryStore holds every finding (defaults to the in-memory vector
	// store with the hash embedder if not provided).
	MemoryStore core.MemoryStore

	// MarketData and NewsSearch are the raw-data capabilities. Both are
	// required for Run.
	MarketData core.MarketData
	NewsSearch core.NewsSearch

	// Synthesizer produces narrative text. When nil every synthesis call
	// fails fast and the workers use their deterministic fallbacks.
	Synthesizer core.Synthesizer

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// EquityScope is the high-level façade aggregating the coordinator, the
// workers and the shared memory store.
type EquityScope struct {
	opts  Options
	coord *coordinator.Coordinator
	store core.MemoryStore
}

// New creates a new EquityScope instance with optional overrides. Any unset
// service is initialized with an in-memory implementation.
func New(optFns ...func(o *Options)) (*EquityScope, error) {
	opts := Options{
		Settings:    config.Default(),
		Logger:      logging.NoOpLogger{},
		Synthesizer: noSynthesizer{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MemoryStore == nil {
		opts.MemoryStore = memory.NewInMemoryStore(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.Synthesizer == nil {
		opts.Synthesizer = noSynthesizer{}
	}
	if opts.MarketData == nil {
		return nil, errors.New("equityscope: MarketData capability is required")
	}
	if opts.NewsSearch == nil {
		return nil, errors.New("equityscope: NewsSearch capability is required")
	}

	researcher := worker.NewResearcher(opts.NewsSearch, opts.Synthesizer, opts.MemoryStore, opts.Settings, opts.Logger)
	analyst := worker.NewAnalyst(opts.MarketData, opts.Synthesizer, opts.MemoryStore, opts.Settings, opts.Logger)
	reporter := worker.NewReporter(opts.Synthesizer, opts.MemoryStore, opts.Settings, opts.Logger)
	coord := coordinator.New(researcher, analyst, reporter, opts.MarketData, opts.MemoryStore, opts.Logger)

	return &EquityScope{opts: opts, coord: coord, store: opts.MemoryStore}, nil
}

// Run executes the full research workflow for one symbol.
func (e *EquityScope) Run(ctx context.Context, symbol string, tone core.Tone, parallel bool) core.Outcome {
	return e.coord.Run(ctx, symbol, tone, parallel)
}

// Stats reports aggregate statistics about the memory store.
func (e *EquityScope) Stats() (core.Statistics, error) {
	return e.store.Statistics()
}

// ClearAll wipes the entire memory store across all subjects.
func (e *EquityScope) ClearAll() error {
	return e.store.ClearAll()
}

// noSynthesizer is the default Synthesizer. It fails every call so worker
// fallbacks produce fully deterministic reports.
type noSynthesizer struct{}

func (noSynthesizer) Complete(context.Context, string, string, float64, int64) (string, error) {
	return "", ErrNoSynthesizer
}
