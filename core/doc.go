// Package core defines the shared contracts of EquityScope: the research
// subject, the capability interfaces workers depend on (market data, news
// search, language synthesis), the memory store contract, the per-worker
// findings records and the workflow outcome envelope. Concrete
// implementations live in sibling packages (memory, worker, coordinator,
// synth) and depend on this package only.
package core
