// Package memory contains concrete MemoryStore implementations. The store
// interface, SearchResult and Statistics types reside in the core package.
// Import github.com/hupe1980/equityscope/core and depend on core.MemoryStore
// in your code; select an implementation (the in-memory store below, or the
// sqlite-backed store in the sqlite subpackage) at wiring time.
//
// Rationale: keeps domain contracts centralized while allowing pluggable
// backends (vector databases, embeddings indexes, etc.) to be added without
// introducing dependency cycles.
package memory
