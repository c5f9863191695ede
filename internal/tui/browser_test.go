package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"windrose/internal/store"
	"windrose/internal/types"
)

func seedStore(t *testing.T) *store.MemStore {
	t.Helper()
	ms := store.NewMemStore()
	s, err := ms.Create("Should we open a second office in Lisbon next year?", "balanced", "mock", "m", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := ms.Update(s.ID, func(s *types.Session) {
		s.Status = types.StatusCompleted
	}); err != nil {
		t.Fatal(err)
	}
	return ms
}

func TestItemRendering(t *testing.T) {
	ms := seedStore(t)
	sessions, err := ms.List(store.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	it := item{s: sessions[0]}

	if !strings.Contains(it.Title(), "Lisbon") {
		t.Errorf("title missing decision text: %q", it.Title())
	}
	if !strings.Contains(it.Description(), "completed") {
		t.Errorf("description missing status: %q", it.Description())
	}
	if it.FilterValue() != sessions[0].Decision {
		t.Errorf("filter value should be the decision text")
	}
}

func TestSessionsLoadedPopulatesList(t *testing.T) {
	ms := seedStore(t)
	m := New(ms, nil)

	sessions, _ := ms.List(store.Filter{})
	updated, _ := m.Update(sessionsLoadedMsg{sessions: sessions})
	got := updated.(Model)

	if len(got.list.Items()) != 1 {
		t.Fatalf("list has %d items, want 1", len(got.list.Items()))
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	ms := seedStore(t)
	m := New(ms, nil)

	updated, _ := m.Update(sessionsLoadedMsg{err: errFake})
	got := updated.(Model)
	if got.errMsg == "" {
		t.Fatal("load error not surfaced")
	}
	if !strings.Contains(got.View(), "error:") {
		t.Error("view does not show the error")
	}
}

var errFake = &types.PersistenceError{Op: "list", Path: "x"}

func TestQuitKey(t *testing.T) {
	ms := seedStore(t)
	m := New(ms, nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("q produced %T, want tea.QuitMsg", msg)
	}
}

func TestOpenAndBack(t *testing.T) {
	ms := seedStore(t)
	m := New(ms, nil)
	sessions, _ := ms.List(store.Filter{})

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = updated.(Model)
	updated, _ = m.Update(sessionsLoadedMsg{sessions: sessions})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.mode != modeDetail {
		t.Fatalf("enter should open the detail view, mode=%d", m.mode)
	}
	if !strings.Contains(m.View(), "session report") {
		t.Error("detail view missing header")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.mode != modeList {
		t.Fatalf("esc should return to the list, mode=%d", m.mode)
	}
}
