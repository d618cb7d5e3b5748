package core

// Metadata keys every stored document must carry. The coordinator's quality
// gate relies on the (subject, type) pair to verify persistence actually
// happened.
const (
	MetaSubject   = "subject"
	MetaWorker    = "worker"
	MetaType      = "type"
	MetaTimestamp = "timestamp"
)

// MemoryStore defines the shared semantic memory used by all workers: a
// persistent collection of text documents tagged with structured metadata,
// supporting similarity search and exact metadata filtering. Implementations
// are responsible for their own internal serialization; all methods are safe
// to call concurrently.
//
// Embeddings are derived by the store itself at Add time. Documents are never
// mutated after creation and are removed only by the Clear operations.
type MemoryStore interface {
	// Add stores one document, assigning a fresh id and an ISO-8601
	// timestamp when the metadata lacks one. The document is queryable as
	// soon as Add returns.
	Add(content string, metadata map[string]any) (string, error)

	// AddBatch stores several documents. Each item either stores fully or
	// is reported failed through the error; partial success across the
	// batch is acceptable.
	AddBatch(contents []string, metadatas []map[string]any) ([]string, error)

	// Query runs a similarity search, optionally restricted to documents
	// whose metadata matches filter exactly. At most k results are
	// returned, ordered by descending relevance. No match yields an empty
	// slice, not an error.
	Query(text string, k int, filter map[string]any) ([]SearchResult, error)

	// Context renders up to contextLimit documents for a subject
	// (optionally narrowed by worker) into a formatted text block, each
	// annotated with its producing worker and timestamp. When nothing is
	// stored it returns the "No context found" sentinel, never an error.
	Context(subject, worker string) (string, error)

	// Clear deletes every document tagged with the subject. Clearing a
	// subject with no documents is a no-op.
	Clear(subject string) error

	// ClearAll destroys and recreates the store shell, leaving it empty.
	ClearAll() error

	// Statistics scans stored metadata and reports totals plus the
	// distinct subject and worker lists.
	Statistics() (Statistics, error)
}

// SearchResult is one retrieved document with its relevance score and
// metadata tags.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// Statistics summarizes the store contents for quality gating and
// observability. Subject and worker lists are sorted.
type Statistics struct {
	TotalDocuments int
	UniqueSubjects int
	UniqueWorkers  int
	Subjects       []string
	Workers        []string
}

// HasSubject reports whether the subject appears in the statistics.
func (s Statistics) HasSubject(subject string) bool {
	for _, t := range s.Subjects {
		if t == subject {
			return true
		}
	}
	return false
}

// ContextLimit caps how many documents Context renders per subject.
const ContextLimit = 20

// NoContextSentinel builds the sentinel returned by Context when the store
// holds nothing for the subject.
func NoContextSentinel(subject string) string {
	return "No context found for " + subject
}
