// Package tui provides the interactive session browser: a live list of
// stored sessions with a report view. The browser refreshes itself when
// session files change on disk, so a debate running in another terminal is
// visible as it progresses.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"windrose/internal/export"
	"windrose/internal/store"
	"windrose/internal/types"
)

// mode is the browser's active pane.
type mode int

const (
	modeList mode = iota
	modeDetail
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))

	statusColors = map[types.Status]lipgloss.Style{
		types.StatusCreated:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		types.StatusRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		types.StatusPaused:    lipgloss.NewStyle().Foreground(lipgloss.Color("178")),
		types.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("40")),
		types.StatusAborted:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		types.StatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
	}
)

// item adapts a session to the bubbles list.
type item struct {
	s *types.Session
}

func (i item) Title() string {
	style, ok := statusColors[i.s.Status]
	if !ok {
		style = statusStyle
	}
	return fmt.Sprintf("%s %s", style.Render("●"), truncate(i.s.Decision, 60))
}

func (i item) Description() string {
	desc := fmt.Sprintf("%s · %s · %s · %d calls",
		shortID(i.s.ID), i.s.Status, i.s.Preset, i.s.Metrics.LLMCalls)
	if i.s.Status == types.StatusRunning && i.s.Checkpoint.Phase != nil {
		desc += fmt.Sprintf(" · in %s", *i.s.Checkpoint.Phase)
	}
	return desc
}

func (i item) FilterValue() string { return i.s.Decision }

// Messages.
type sessionsLoadedMsg struct {
	sessions []*types.Session
	err      error
}
type fileChangedMsg struct{}
type watcherClosedMsg struct{}

// keyMap is the browser key bindings beyond the list defaults.
type keyMap struct {
	open    key.Binding
	back    key.Binding
	refresh key.Binding
	quit    key.Binding
}

var keys = keyMap{
	open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
	back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	refresh: key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "refresh")),
	quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the browser TUI model.
type Model struct {
	store   store.Store
	watcher *store.Watcher

	mode     mode
	list     list.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer

	width  int
	height int
	errMsg string
}

// New builds the browser over a store. watcher may be nil; the browser then
// refreshes only on demand.
func New(st store.Store, watcher *store.Watcher) Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(nil, delegate, 0, 0)
	l.Title = "windrose sessions"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.open, keys.refresh}
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(96))
	if err != nil {
		renderer = nil
	}

	return Model{
		store:    st,
		watcher:  watcher,
		list:     l,
		viewport: viewport.New(0, 0),
		renderer: renderer,
	}
}

// Init loads the session list and starts listening for file changes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadSessions, m.awaitChange())
}

func (m Model) loadSessions() tea.Msg {
	sessions, err := m.store.List(store.Filter{})
	return sessionsLoadedMsg{sessions: sessions, err: err}
}

// awaitChange blocks on the watcher until the next file change.
func (m Model) awaitChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return watcherClosedMsg{}
		}
		return fileChangedMsg{}
	}
}

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.SetSize(msg.Width, msg.Height-1)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 2
		return m, nil

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.errMsg = ""
		items := make([]list.Item, 0, len(msg.sessions))
		for _, s := range msg.sessions {
			items = append(items, item{s: s})
		}
		return m, m.list.SetItems(items)

	case fileChangedMsg:
		return m, tea.Batch(m.loadSessions, m.awaitChange())

	case watcherClosedMsg:
		return m, nil

	case tea.KeyMsg:
		// Never intercept keys while the list filter input is active.
		if m.mode == modeList && m.list.FilterState() == list.Filtering {
			break
		}
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.refresh):
			return m, m.loadSessions
		case key.Matches(msg, keys.open) && m.mode == modeList:
			if it, ok := m.list.SelectedItem().(item); ok {
				m.openDetail(it.s)
			}
			return m, nil
		case key.Matches(msg, keys.back) && m.mode == modeDetail:
			m.mode = modeList
			return m, nil
		}
	}

	var cmd tea.Cmd
	if m.mode == modeDetail {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

// openDetail renders the selected session's report into the viewport.
func (m *Model) openDetail(s *types.Session) {
	doc, err := export.Render(s, export.FormatMarkdown)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	body := string(doc)
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(body); err == nil {
			body = rendered
		}
	}
	m.viewport.SetContent(body)
	m.viewport.GotoTop()
	m.mode = modeDetail
}

// View renders the active pane.
func (m Model) View() string {
	if m.errMsg != "" {
		return errStyle.Render("error: "+m.errMsg) + "\n" + m.list.View()
	}
	if m.mode == modeDetail {
		header := titleStyle.Render("session report") + statusStyle.Render("  (esc to go back, q to quit)")
		return header + "\n" + m.viewport.View()
	}
	return m.list.View()
}

// Run starts the browser program and blocks until it exits.
func Run(st store.Store, watcher *store.Watcher) error {
	p := tea.NewProgram(New(st, watcher), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n-1])) + "…"
}
