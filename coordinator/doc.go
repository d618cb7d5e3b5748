// Package coordinator drives the research workflow as an explicit state
// machine: subject validation, stale-memory clearing, parallel or
// sequential worker gathering, a non-blocking quality gate, report
// generation and a final completeness validation. Worker failures degrade
// the run instead of aborting it; only an invalid subject or a panic
// produces a failed outcome.
package coordinator
