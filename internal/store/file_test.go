package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"windrose/internal/types"
)

const testDecision = "Should we expand to Singapore market analysis?"

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestCreateValidation(t *testing.T) {
	fs := newTestStore(t)

	tests := []struct {
		name     string
		decision string
		preset   string
	}{
		{"short decision", "too short", "balanced"},
		{"script injection", "run <script>alert(1)</script> today?", "balanced"},
		{"unknown preset", testDecision, "galactic"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fs.Create(tt.decision, tt.preset, "mock", "m", 2)
			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}
}

func TestCreateGetRoundTrip(t *testing.T) {
	fs := newTestStore(t)
	s, err := fs.Create(testDecision, "balanced", "anthropic", "claude", 2)
	require.NoError(t, err)

	got, err := fs.Get(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, testDecision, got.Decision)

	// The file on disk is addressed by content id, not filename.
	reopened, err := NewFileStore(fs.Root())
	require.NoError(t, err)
	got2, err := reopened.Get(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got2)
	require.Equal(t, s.ID, got2.ID)
	require.Len(t, got2.Phases, len(types.PhaseOrder))
}

func TestGetMalformedID(t *testing.T) {
	fs := newTestStore(t)
	_, err := fs.Get("not-a-uuid")
	var ve *types.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestGetAbsentReturnsNilNotError(t *testing.T) {
	fs := newTestStore(t)
	got, err := fs.Get(uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDeleteAbsentReturnsFalse(t *testing.T) {
	fs := newTestStore(t)
	ok, err := fs.Delete(uuid.NewString())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDeleteRemovesFile(t *testing.T) {
	fs := newTestStore(t)
	s, err := fs.Create(testDecision, "balanced", "mock", "m", 2)
	require.NoError(t, err)

	entries, _ := os.ReadDir(fs.Root())
	require.Len(t, entries, 1)

	ok, err := fs.Delete(s.ID)
	require.NoError(t, err)
	require.True(t, ok)

	entries, _ = os.ReadDir(fs.Root())
	require.Empty(t, entries)
}

func TestCorruptFileSkippedOnLoad(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileStore(root)
	require.NoError(t, err)
	good, err := fs.Create(testDecision, "balanced", "mock", "m", 2)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "zz-corrupt.json"), []byte("{not json"), 0o644))

	reopened, err := NewFileStore(root)
	require.NoError(t, err)
	sessions, err := reopened.List(Filter{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, good.ID, sessions[0].ID)
}

func TestListFilterAndOrder(t *testing.T) {
	fs := newTestStore(t)

	old, err := fs.Create(testDecision, "balanced", "mock", "m", 2)
	require.NoError(t, err)
	recent, err := fs.Create(testDecision+" again", "startup", "mock", "m", 2)
	require.NoError(t, err)

	// Backdate one session beyond the window and mark it completed.
	require.NoError(t, fs.Update(old.ID, func(s *types.Session) {
		s.Metrics.StartedAt = time.Now().UTC().AddDate(0, 0, -10)
		s.Status = types.StatusCompleted
	}))

	all, err := fs.List(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, recent.ID, all[0].ID, "most recent first")

	windowed, err := fs.List(Filter{WithinDays: 7})
	require.NoError(t, err)
	require.Len(t, windowed, 1)
	require.Equal(t, recent.ID, windowed[0].ID)

	byStatus, err := fs.List(Filter{Status: types.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	require.Equal(t, old.ID, byStatus[0].ID)

	limited, err := fs.List(Filter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestUpdateAbsentIsNoop(t *testing.T) {
	fs := newTestStore(t)
	called := false
	err := fs.Update(uuid.NewString(), func(s *types.Session) { called = true })
	require.NoError(t, err)
	require.False(t, called)
}

func TestClone(t *testing.T) {
	fs := newTestStore(t)
	src, err := fs.Create(testDecision, "balanced", "anthropic", "claude", 3)
	require.NoError(t, err)
	require.NoError(t, fs.Update(src.ID, func(s *types.Session) {
		s.Status = types.StatusCompleted
		s.Personas = []string{"north", "east", "south", "west"}
		s.Metrics.TotalTokens = 5000
		s.Metrics.LLMCalls = 11
		for _, p := range types.PhaseOrder {
			s.PhaseRecordFor(p).Complete()
		}
	}))

	out, err := fs.Clone(src.ID)
	require.NoError(t, err)
	require.NotNil(t, out)

	require.NotEqual(t, src.ID, out.ID)
	require.Equal(t, testDecision, out.Decision)
	require.Equal(t, []string{"north", "east", "south", "west"}, out.Personas)
	require.Equal(t, types.StatusCreated, out.Status)
	require.Zero(t, out.Metrics.TotalTokens)
	require.Zero(t, out.Metrics.LLMCalls)
	for _, p := range types.PhaseOrder {
		require.Equal(t, types.PhasePending, out.PhaseRecordFor(p).Status)
	}

	cloneAbsent, err := fs.Clone(uuid.NewString())
	require.NoError(t, err)
	require.Nil(t, cloneAbsent)
}

func TestAcquireSerializesRuns(t *testing.T) {
	fs := newTestStore(t)
	s, err := fs.Create(testDecision, "balanced", "mock", "m", 2)
	require.NoError(t, err)

	release, ok := fs.Acquire(s.ID)
	require.True(t, ok)

	_, ok = fs.Acquire(s.ID)
	require.False(t, ok, "second engine must not acquire the same session")

	release()
	release2, ok := fs.Acquire(s.ID)
	require.True(t, ok)
	release2()
}

func TestFilenameIsConvenienceNotAuthority(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileStore(root)
	require.NoError(t, err)
	s, err := fs.Create(testDecision, "balanced", "mock", "m", 2)
	require.NoError(t, err)

	// Rename the file arbitrarily; the id inside still wins on reload.
	entries, _ := os.ReadDir(root)
	require.Len(t, entries, 1)
	oldPath := filepath.Join(root, entries[0].Name())
	newPath := filepath.Join(root, "renamed-by-hand.json")
	require.NoError(t, os.Rename(oldPath, newPath))

	reopened, err := NewFileStore(root)
	require.NoError(t, err)
	got, err := reopened.Get(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	var onDisk types.Session
	data, err := os.ReadFile(newPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Equal(t, s.ID, onDisk.ID)
}

func TestPersistenceErrorSurfaces(t *testing.T) {
	root := t.TempDir()
	fs, err := NewFileStore(root)
	require.NoError(t, err)
	s, err := fs.Create(testDecision, "balanced", "mock", "m", 2)
	require.NoError(t, err)

	// Make the root unwritable so the next save fails.
	require.NoError(t, os.Chmod(root, 0o555))
	t.Cleanup(func() { _ = os.Chmod(root, 0o755) })

	err = fs.Save(s)
	var pe *types.PersistenceError
	if !errors.As(err, &pe) {
		t.Skipf("filesystem did not enforce the permission change (err=%v)", err)
	}
}
