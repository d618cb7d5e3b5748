package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/equityscope/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "memory.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func md(subject, worker, docType string) map[string]any {
	return map[string]any{
		core.MetaSubject: subject,
		core.MetaWorker:  worker,
		core.MetaType:    docType,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	id, err := store.Add("Acme earnings beat expectations", md("ACME", "researcher", "news_article"))
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	results, err := store.Query("Acme earnings", 5, map[string]any{core.MetaSubject: "ACME"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, id, results[0].ID)
	assert.Equal(t, "Acme earnings beat expectations", results[0].Content)
	assert.Equal(t, "researcher", results[0].Metadata[core.MetaWorker])
	assert.NotEmpty(t, results[0].Metadata[core.MetaTimestamp])
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memory.db")

	store, err := Open(path, nil)
	require.NoError(t, err)
	_, err = store.Add("durable document", md("ACME", "analyst", "financial_summary"))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	stats, err := reopened.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, []string{"ACME"}, stats.Subjects)
}

func TestStoreRejectsMissingTags(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Add("content", map[string]any{core.MetaSubject: "ACME"})
	require.Error(t, err)

	var serr *core.StorageError
	assert.ErrorAs(t, err, &serr)
}

func TestStoreClearScoping(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Add("acme doc", md("ACME", "researcher", "research_summary"))
	require.NoError(t, err)
	_, err = store.Add("globex doc", md("GLBX", "researcher", "research_summary"))
	require.NoError(t, err)

	require.NoError(t, store.Clear("ACME"))

	stats, err := store.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, []string{"GLBX"}, stats.Subjects)
}

func TestStoreClearAll(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Add("doc", md("ACME", "researcher", "research_summary"))
	require.NoError(t, err)

	require.NoError(t, store.ClearAll())

	stats, err := store.Statistics()
	require.NoError(t, err)
	assert.Zero(t, stats.TotalDocuments)

	// The recreated shell accepts new documents.
	_, err = store.Add("fresh doc", md("ACME", "researcher", "research_summary"))
	require.NoError(t, err)
}

func TestStoreContext(t *testing.T) {
	store := openTestStore(t)

	t.Run("empty store returns sentinel", func(t *testing.T) {
		text, err := store.Context("ACME", "")
		require.NoError(t, err)
		assert.Equal(t, core.NoContextSentinel("ACME"), text)
	})

	t.Run("renders annotated blocks", func(t *testing.T) {
		_, err := store.Add("summary text", map[string]any{
			core.MetaSubject:   "ACME",
			core.MetaWorker:    "researcher",
			core.MetaType:      "research_summary",
			core.MetaTimestamp: "2026-08-24T10:00:00Z",
		})
		require.NoError(t, err)

		text, err := store.Context("ACME", "")
		require.NoError(t, err)
		assert.Contains(t, text, "[researcher - 2026-08-24T10:00:00Z]\nsummary text")
	})
}
