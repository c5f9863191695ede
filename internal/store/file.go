package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"windrose/internal/logging"
	"windrose/internal/personas"
	"windrose/internal/types"
)

// FileStore keeps one JSON document per session under an injected root
// directory. Filenames carry a timestamp and decision slug for human
// browsability, but the store is addressed only by the id field read from
// file content; the filename is never authoritative.
type FileStore struct {
	root string

	mu       sync.RWMutex
	sessions map[string]*types.Session
	paths    map[string]string

	// runLocks serializes engine runs per session id.
	lockMu   sync.Mutex
	runLocks map[string]*sync.Mutex
}

// NewFileStore opens (and creates if needed) the storage root and loads all
// session files. A corrupt file is skipped with a warning so one bad
// document never prevents listing the rest.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, &types.ValidationError{Field: "root", Reason: "storage root required"}
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &types.PersistenceError{Op: "mkdir", Path: root, Err: err}
	}

	fs := &FileStore{
		root:     root,
		sessions: make(map[string]*types.Session),
		paths:    make(map[string]string),
		runLocks: make(map[string]*sync.Mutex),
	}
	if err := fs.loadAll(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Root returns the storage root directory.
func (fs *FileStore) Root() string { return fs.root }

func (fs *FileStore) loadAll() error {
	timer := logging.StartTimer(logging.CategoryStore, "loadAll")
	defer timer.Stop()

	entries, err := os.ReadDir(fs.root)
	if err != nil {
		return &types.PersistenceError{Op: "readdir", Path: fs.root, Err: err}
	}
	loaded, skipped := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(fs.root, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logging.StoreWarn("skipping unreadable session file %s: %v", entry.Name(), err)
			skipped++
			continue
		}
		var s types.Session
		if err := json.Unmarshal(data, &s); err != nil {
			logging.StoreWarn("skipping corrupt session file %s: %v", entry.Name(), err)
			skipped++
			continue
		}
		if s.ID == "" || types.ValidateID(s.ID) != nil {
			logging.StoreWarn("skipping session file %s: missing or malformed id", entry.Name())
			skipped++
			continue
		}
		fs.sessions[s.ID] = &s
		fs.paths[s.ID] = path
		loaded++
	}
	logging.StoreDebug("loaded %d sessions from %s (%d skipped)", loaded, fs.root, skipped)
	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify reduces the decision text to a short filename-safe fragment.
func slugify(decision string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(decision), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 40 {
		slug = slug[:40]
		slug = strings.TrimRight(slug, "-")
	}
	if slug == "" {
		slug = "session"
	}
	return slug
}

func (fs *FileStore) pathFor(s *types.Session) string {
	if p, ok := fs.paths[s.ID]; ok {
		return p
	}
	name := fmt.Sprintf("%s-%s-%s.json",
		s.Metrics.StartedAt.Format("20060102-150405"),
		slugify(s.Decision),
		s.ID[:8])
	return filepath.Join(fs.root, name)
}

// writeLocked persists s to disk with a whole-document atomic replace.
// Caller holds fs.mu.
func (fs *FileStore) writeLocked(s *types.Session) error {
	path := fs.pathFor(s)
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return &types.PersistenceError{Op: "marshal", Path: path, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &types.PersistenceError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &types.PersistenceError{Op: "rename", Path: path, Err: err}
	}
	fs.paths[s.ID] = path
	return nil
}

// Create validates inputs and persists a fresh session.
func (fs *FileStore) Create(decision, preset, provider, model string, totalRounds int) (*types.Session, error) {
	if err := types.ValidateDecision(decision); err != nil {
		return nil, err
	}
	if !personas.ValidPreset(preset) {
		return nil, &types.ValidationError{
			Field:  "preset",
			Reason: fmt.Sprintf("unknown preset %q (valid: %s)", preset, strings.Join(personas.PresetNames(), ", ")),
		}
	}

	s := types.NewSession(decision, preset, provider, model, totalRounds)

	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.writeLocked(s); err != nil {
		return nil, err
	}
	fs.sessions[s.ID] = s
	logging.Session("created session %s preset=%s provider=%s rounds=%d", s.ID, preset, provider, s.TotalRounds)
	return s, nil
}

// Get returns the session for id, or nil when absent.
func (fs *FileStore) Get(id string) (*types.Session, error) {
	if err := types.ValidateID(id); err != nil {
		return nil, err
	}
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	return fs.sessions[id], nil
}

// List returns sessions matching the filter, most-recent-first.
func (fs *FileStore) List(f Filter) ([]*types.Session, error) {
	fs.mu.RLock()
	all := make([]*types.Session, 0, len(fs.sessions))
	for _, s := range fs.sessions {
		all = append(all, s)
	}
	fs.mu.RUnlock()
	return applyFilter(all, f), nil
}

// Update mutates and persists; silent no-op when the id is absent.
func (fs *FileStore) Update(id string, mutate func(*types.Session)) error {
	if err := types.ValidateID(id); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	s, ok := fs.sessions[id]
	if !ok {
		return nil
	}
	mutate(s)
	return fs.writeLocked(s)
}

// Save persists a session the caller already holds.
func (fs *FileStore) Save(s *types.Session) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.sessions[s.ID] = s
	return fs.writeLocked(s)
}

// Delete removes the session and its file. Returns false when absent.
func (fs *FileStore) Delete(id string) (bool, error) {
	if err := types.ValidateID(id); err != nil {
		return false, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	_, ok := fs.sessions[id]
	if !ok {
		return false, nil
	}
	path := fs.paths[id]
	delete(fs.sessions, id)
	delete(fs.paths, id)
	if path != "" {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return false, &types.PersistenceError{Op: "delete", Path: path, Err: err}
		}
	}
	logging.Session("deleted session %s", id)
	return true, nil
}

// Clone copies a session into a fresh one. Returns nil when absent.
func (fs *FileStore) Clone(id string) (*types.Session, error) {
	if err := types.ValidateID(id); err != nil {
		return nil, err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()
	src, ok := fs.sessions[id]
	if !ok {
		return nil, nil
	}
	out := cloneOf(src)
	if err := fs.writeLocked(out); err != nil {
		return nil, err
	}
	fs.sessions[out.ID] = out
	logging.Session("cloned session %s -> %s", id, out.ID)
	return out, nil
}

// Acquire takes the per-session run lock.
func (fs *FileStore) Acquire(id string) (func(), bool) {
	fs.lockMu.Lock()
	l, ok := fs.runLocks[id]
	if !ok {
		l = &sync.Mutex{}
		fs.runLocks[id] = l
	}
	fs.lockMu.Unlock()

	if !l.TryLock() {
		return nil, false
	}
	return l.Unlock, true
}
