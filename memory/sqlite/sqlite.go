// Package sqlite provides a persistent core.MemoryStore backed by SQLite
// through the pure-Go modernc.org/sqlite driver. Documents, their metadata
// (JSON) and their embeddings (packed float32 blobs) live in a single table;
// similarity ranking happens in process over the candidate rows.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/hupe1980/equityscope/core"
	"github.com/hupe1980/equityscope/embedding"
	"github.com/hupe1980/equityscope/memory"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	content    TEXT NOT NULL,
	metadata   TEXT NOT NULL,
	embedding  BLOB,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents(created_at);
`

// Store is a durable core.MemoryStore. Writes are serialized with a mutex on
// top of the driver's own locking since SQLite allows a single writer.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	engine embedding.Engine
}

// Open opens (creating if necessary) the store at path. A nil engine
// defaults to the deterministic hashing engine.
func Open(path string, engine embedding.Engine) (*Store, error) {
	if engine == nil {
		engine = embedding.NewHashEngine()
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, core.NewStorageError("open", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, core.NewStorageError("migrate", err)
	}
	return &Store{db: db, engine: engine}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// Add implements core.MemoryStore.
func (s *Store) Add(content string, metadata map[string]any) (string, error) {
	ids, err := s.AddBatch([]string{content}, []map[string]any{metadata})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// AddBatch implements core.MemoryStore. Items store independently; failed
// slots carry an empty id and the joined error reports every failure.
func (s *Store) AddBatch(contents []string, metadatas []map[string]any) ([]string, error) {
	if len(contents) != len(metadatas) {
		return nil, core.NewStorageError("add_batch", fmt.Errorf("got %d contents but %d metadatas", len(contents), len(metadatas)))
	}

	ids := make([]string, len(contents))
	var errs []error
	for i := range contents {
		id, err := s.addOne(contents[i], metadatas[i])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		ids[i] = id
	}
	return ids, errors.Join(errs...)
}

func (s *Store) addOne(content string, metadata map[string]any) (string, error) {
	md, err := prepareMetadata(metadata)
	if err != nil {
		return "", core.NewStorageError("add", err)
	}
	vec, err := s.engine.Embed(context.Background(), content)
	if err != nil {
		return "", core.NewStorageError("embed", err)
	}
	mdJSON, err := json.Marshal(md)
	if err != nil {
		return "", core.NewStorageError("add", err)
	}

	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		"INSERT INTO documents (id, content, metadata, embedding, created_at) VALUES (?, ?, ?, ?, ?)",
		id, content, string(mdJSON), packVector(vec), time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return "", core.NewStorageError("add", err)
	}
	return id, nil
}

// Query implements core.MemoryStore. Candidate rows are filtered by exact
// metadata match and ranked by cosine similarity in process.
func (s *Store) Query(text string, k int, filter map[string]any) ([]core.SearchResult, error) {
	if k <= 0 {
		return []core.SearchResult{}, nil
	}
	qvec, err := s.engine.Embed(context.Background(), text)
	if err != nil {
		return nil, core.NewStorageError("query", err)
	}

	rows, err := s.db.Query("SELECT id, content, metadata, embedding FROM documents")
	if err != nil {
		return nil, core.NewStorageError("query", err)
	}
	defer rows.Close()

	results := make([]core.SearchResult, 0, k)
	for rows.Next() {
		var (
			id, content, mdJSON string
			blob                []byte
		)
		if err := rows.Scan(&id, &content, &mdJSON, &blob); err != nil {
			return nil, core.NewStorageError("query", err)
		}
		var md map[string]any
		if err := json.Unmarshal([]byte(mdJSON), &md); err != nil {
			continue
		}
		if !matchesFilter(md, filter) {
			continue
		}
		results = append(results, core.SearchResult{
			ID:       id,
			Content:  content,
			Score:    embedding.Cosine(qvec, unpackVector(blob)),
			Metadata: md,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, core.NewStorageError("query", err)
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Context implements core.MemoryStore.
func (s *Store) Context(subject, worker string) (string, error) {
	filter := map[string]any{core.MetaSubject: subject}
	if worker != "" {
		filter[core.MetaWorker] = worker
	}
	results, err := s.Query(subject, core.ContextLimit, filter)
	if err != nil {
		return "", err
	}
	return memory.FormatContext(subject, results), nil
}

// Clear implements core.MemoryStore. The delete is scoped to rows whose
// metadata subject matches exactly; other subjects are untouched.
func (s *Store) Clear(subject string) error {
	rows, err := s.db.Query("SELECT id, metadata FROM documents")
	if err != nil {
		return core.NewStorageError("clear", err)
	}
	var ids []string
	for rows.Next() {
		var id, mdJSON string
		if err := rows.Scan(&id, &mdJSON); err != nil {
			_ = rows.Close()
			return core.NewStorageError("clear", err)
		}
		var md map[string]any
		if err := json.Unmarshal([]byte(mdJSON), &md); err != nil {
			continue
		}
		if md[core.MetaSubject] == subject {
			ids = append(ids, id)
		}
	}
	if err := rows.Close(); err != nil {
		return core.NewStorageError("clear", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		if _, err := s.db.Exec("DELETE FROM documents WHERE id = ?", id); err != nil {
			return core.NewStorageError("clear", err)
		}
	}
	return nil
}

// ClearAll implements core.MemoryStore by dropping and recreating the
// documents table, leaving an empty store shell.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DROP TABLE IF EXISTS documents"); err != nil {
		return core.NewStorageError("clear_all", err)
	}
	if _, err := s.db.Exec(schema); err != nil {
		return core.NewStorageError("clear_all", err)
	}
	return nil
}

// Statistics implements core.MemoryStore.
func (s *Store) Statistics() (core.Statistics, error) {
	rows, err := s.db.Query("SELECT metadata FROM documents")
	if err != nil {
		return core.Statistics{}, core.NewStorageError("statistics", err)
	}
	defer rows.Close()

	total := 0
	subjects := map[string]struct{}{}
	workers := map[string]struct{}{}
	for rows.Next() {
		var mdJSON string
		if err := rows.Scan(&mdJSON); err != nil {
			return core.Statistics{}, core.NewStorageError("statistics", err)
		}
		total++
		var md map[string]any
		if err := json.Unmarshal([]byte(mdJSON), &md); err != nil {
			continue
		}
		if v, ok := md[core.MetaSubject].(string); ok {
			subjects[v] = struct{}{}
		}
		if v, ok := md[core.MetaWorker].(string); ok {
			workers[v] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return core.Statistics{}, core.NewStorageError("statistics", err)
	}

	return core.Statistics{
		TotalDocuments: total,
		UniqueSubjects: len(subjects),
		UniqueWorkers:  len(workers),
		Subjects:       sortedKeys(subjects),
		Workers:        sortedKeys(workers),
	}, nil
}

func prepareMetadata(metadata map[string]any) (map[string]any, error) {
	md := make(map[string]any, len(metadata)+1)
	for k, v := range metadata {
		md[k] = v
	}
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

// packVector serializes a float32 vector as a little-endian blob.
func packVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func unpackVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec
}
