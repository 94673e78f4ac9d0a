package cas_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/patchwork/internal/adapters/cas"
	"go.trai.ch/patchwork/internal/core/domain"
)

func sampleReport(digest string) *domain.Report {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Report{
		RunID:      "run1",
		PlanDigest: digest,
		Branch:     "patchwork/run1",
		Outcomes: []domain.Outcome{
			{TaskID: "A", Title: "First", Status: domain.StatusResolved, CommitHash: "abc123", Duration: time.Second},
			{TaskID: "B", Title: "Second", Status: domain.StatusFailed, Diagnostic: "edits unresolved"},
		},
		StartedAt:  started,
		FinishedAt: started.Add(time.Minute),
	}
}

func TestStore_PutGet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store, err := cas.NewStore()
	require.NoError(t, err)

	t.Run("put and get", func(t *testing.T) {
		report := sampleReport("0123456789abcdef")
		require.NoError(t, store.Put(root, report))

		got, err := store.Get(root, "0123456789abcdef")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, report, got)
		assert.FileExists(t, filepath.Join(root, ".patchwork", "reports", "0123456789abcdef.json"))
	})

	t.Run("put replaces", func(t *testing.T) {
		report := sampleReport("00ff")
		require.NoError(t, store.Put(root, report))
		report.RunID = "run2"
		require.NoError(t, store.Put(root, report))

		got, err := store.Get(root, "00ff")
		require.NoError(t, err)
		assert.Equal(t, "run2", got.RunID)
	})

	t.Run("get missing", func(t *testing.T) {
		got, err := store.Get(root, "ffff")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestStore_UnsafeDigestStaysInReportsDir(t *testing.T) {
	root := t.TempDir()
	store, _ := cas.NewStore()

	require.NoError(t, store.Put(root, sampleReport("../../escape")))

	entries, err := os.ReadDir(filepath.Join(root, ".patchwork", "reports"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NoFileExists(t, filepath.Join(root, "..", "escape.json"))

	got, err := store.Get(root, "../../escape")
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestStore_GetCorrupt(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".patchwork", "reports")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "abcd.json"), []byte("{"), 0o600))

	store, _ := cas.NewStore()
	_, err := store.Get(root, "abcd")
	assert.ErrorIs(t, err, domain.ErrStoreUnmarshalFailed)
}

func TestStore_Clear(t *testing.T) {
	root := t.TempDir()
	store, _ := cas.NewStore()
	require.NoError(t, store.Put(root, sampleReport("abcd")))

	require.NoError(t, store.Clear(root))
	assert.NoDirExists(t, filepath.Join(root, ".patchwork", "reports"))

	require.NoError(t, store.Clear(root), "clearing twice is not an error")
}
