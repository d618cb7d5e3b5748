package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/embedding"
)

// storedDocument is the internal representation persisted by InMemoryStore.
// Documents are immutable after creation.
type storedDocument struct {
	ID        string
	Content   string
	Metadata  map[string]any
	Embedding []float32
	CreatedAt time.Time
}

// InMemoryStore is a process-local core.MemoryStore with embedding-based
// similarity search. Every document is embedded at Add time through the
// configured engine; Query embeds the query text and ranks candidates by
// cosine similarity.
//
// Concurrency: protected by RWMutex, so it is safe to call from both
// gathering slots without external locking.
type InMemoryStore struct {
	mu     sync.RWMutex
	engine embedding.Engine
	docs   map[string]storedDocument
}

// NewInMemoryStore constructs an empty in-memory store. A nil engine
// defaults to the deterministic hashing engine.
func NewInMemoryStore(engine embedding.Engine) *InMemoryStore {
	if engine == nil {
		engine = embedding.NewHashEngine()
	}
	return &InMemoryStore{engine: engine, docs: make(map[string]storedDocument)}
}

// Add implements core.MemoryStore.
func (s *InMemoryStore) Add(content string, metadata map[string]any) (string, error) {
	ids, err := s.AddBatch([]string{content}, []map[string]any{metadata})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AddBatch implements core.MemoryStore. Each item either stores fully or is
// reported failed; failed slots carry an empty id and the joined error
// describes every failure.
func (s *InMemoryStore) AddBatch(contents []string, metadatas []map[string]any) ([]string, error) {
	if len(contents) != len(metadatas) {
		return nil, core.NewStorageError("add_batch", fmt.Errorf("got %d contents but %d metadatas", len(contents), len(metadatas)))
	}

	ids := make([]string, len(contents))
	var errs []error
	for i := range contents {
		md, err := prepareMetadata(metadatas[i])
		if err != nil {
			errs = append(errs, core.NewStorageError("add", err))
			continue
		}
		vec, err := s.engine.Embed(context.Background(), contents[i])
		if err != nil {
			errs = append(errs, core.NewStorageError("embed", err))
			continue
		}
		doc := storedDocument{
			ID:        uuid.NewString(),
			Content:   contents[i],
			Metadata:  md,
			Embedding: vec,
			CreatedAt: time.Now(),
		}
		s.mu.Lock()
		s.docs[doc.ID] = doc
		s.mu.Unlock()
		ids[i] = doc.ID
	}
	return ids, errors.Join(errs...)
}

// Query implements core.MemoryStore. Results are ordered by descending
// cosine similarity; an empty result set is not an error.
func (s *InMemoryStore) Query(text string, k int, filter map[string]any) ([]core.SearchResult, error) {
	if k <= 0 {
		return []core.SearchResult{}, nil
	}
	qvec, err := s.engine.Embed(context.Background(), text)
	if err != nil {
		return nil, core.NewStorageError("query", err)
	}

	s.mu.RLock()
	candidates := make([]storedDocument, 0, len(s.docs))
	for _, doc := range s.docs {
		if matchesFilter(doc.Metadata, filter) {
			candidates = append(candidates, doc)
		}
	}
	s.mu.RUnlock()

	results := make([]core.SearchResult, 0, len(candidates))
	for _, doc := range candidates {
		results = append(results, core.SearchResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Score:    embedding.Cosine(qvec, doc.Embedding),
			Metadata: copyMetadata(doc.Metadata),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Context implements core.MemoryStore.
func (s *InMemoryStore) Context(subject, worker string) (string, error) {
	filter := map[string]any{core.MetaSubject: subject}
	if worker != "" {
		filter[core.MetaWorker] = worker
	}
	results, err := s.Query(subject, core.ContextLimit, filter)
	if err != nil {
		return "", err
	}
	return FormatContext(subject, results), nil
}

// Clear implements core.MemoryStore. Removing a subject with no documents is
// a no-op.
func (s *InMemoryStore) Clear(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, doc := range s.docs {
		if doc.Metadata[core.MetaSubject] == subject {
			delete(s.docs, id)
		}
	}
	return nil
}

// ClearAll implements core.MemoryStore: the whole collection is dropped and
// recreated empty.
func (s *InMemoryStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[string]storedDocument)
	return nil
}

// Statistics implements core.MemoryStore.
func (s *InMemoryStore) Statistics() (core.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subjects := map[string]struct{}{}
	workers := map[string]struct{}{}
	for _, doc := range s.docs {
		if v, ok := doc.Metadata[core.MetaSubject].(string); ok {
			subjects[v] = struct{}{}
		}
		if v, ok := doc.Metadata[core.MetaWorker].(string); ok {
			workers[v] = struct{}{}
		}
	}
	return core.Statistics{
		TotalDocuments: len(s.docs),
		UniqueSubjects: len(subjects),
		UniqueWorkers:  len(workers),
		Subjects:       sortedKeys(subjects),
		Workers:        sortedKeys(workers),
	}, nil
}

// FormatContext renders search results as annotated blocks for prompt
// context, or the sentinel string when empty. Shared by all store
// implementations so the rendering is identical regardless of backend.
func FormatContext(subject string, results []core.SearchResult) string {
	if len(results) == 0 {
		return core.NoContextSentinel(subject)
	}
	parts := make([]string, 0, len(results))
	for _, r := range results {
		worker, _ := r.Metadata[core.MetaWorker].(string)
		if worker == "" {
			worker = "unknown"
		}
		ts, _ := r.Metadata[core.MetaTimestamp].(string)
		if ts == "" {
			ts = "unknown"
		}
		parts = append(parts, fmt.Sprintf("[%s - %s]\n%s\n", worker, ts, r.Content))
	}
	return strings.Join(parts, "\n---\n")
}

// prepareMetadata copies the caller's metadata, stamps a timestamp when
// absent and enforces the non-optional subject/worker/type tags.
func prepareMetadata(metadata map[string]any) (map[string]any, error) {
	md := copyMetadata(metadata)
	for _, key := range []string{core.MetaSubject, core.MetaWorker, core.MetaType} {
		if v, ok := md[key].(string); !ok || v == "" {
			return nil, fmt.Errorf("metadata missing required tag %q", key)
		}
	}
	if _, ok := md[core.MetaTimestamp]; !ok {
		md[core.MetaTimestamp] = time.Now().Format(time.RFC3339)
	}
	return md, nil
}

func copyMetadata(metadata map[string]any) map[string]any {
	md := make(map[string]any, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	return md
}

func matchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		if metadata[k] != want {
			return false
		}
	}
	return true
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
