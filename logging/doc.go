// Package logging provides a minimal logging interface and adapters for EquityScope.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn, Error)
// that the coordinator, workers and stores use for observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - NoOpLogger for silent operation (testing, minimal setups)
//   - ScopeLogger with contextual helpers (component, subject) and domain
//     specific helpers for worker runs, LLM calls and store operations
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	scope := equityscope.New(func(o *equityscope.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
