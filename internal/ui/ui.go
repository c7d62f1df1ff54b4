package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/soundwrap/internal/models"
	"github.com/desertthunder/soundwrap/internal/tasks"
)

// Model represents the TUI application state.
type Model struct {
	ctx    context.Context
	engine tasks.Engine

	timeRange models.TimeRange
	limit     int
	category  int // index into models.Categories()

	width  int
	height int

	status   tasks.Status
	snapshot *models.Snapshot
	lists    map[models.Category]list.Model

	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	loaded       *models.Snapshot
	loadErr      error

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine tasks.Engine, timeRange models.TimeRange, limit int) *Model {
	return &Model{
		ctx:       ctx,
		engine:    engine,
		timeRange: timeRange,
		limit:     limit,
		status:    tasks.StatusLoading,
		lists:     map[models.Category]list.Model{},
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts the first snapshot load.
func (m *Model) Init() tea.Cmd {
	return m.loadSnapshot(false)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for category, l := range m.lists {
			l.SetSize(msg.Width-4, msg.Height-8)
			m.lists[category] = l
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case snapshotLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = tasks.StatusError
			return m, nil
		}
		m.snapshot = msg.snapshot
		m.err = nil
		m.status = tasks.StatusReady
		m.rebuildLists()
		return m, nil
	}

	return m.updateActiveList(msg)
}

// View renders the UI based on the current status.
func (m *Model) View() string {
	switch m.status {
	case tasks.StatusLoading:
		return m.renderLoading()
	case tasks.StatusError:
		return m.renderError()
	case tasks.StatusReady:
		return m.renderSnapshot()
	default:
		return ""
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab", "right", "l":
		m.category = (m.category + 1) % len(models.Categories())
		return m, nil
	case "shift+tab", "left", "h":
		m.category = (m.category + len(models.Categories()) - 1) % len(models.Categories())
		return m, nil
	case "1":
		return m.switchRange(models.ShortTerm)
	case "2":
		return m.switchRange(models.MediumTerm)
	case "3":
		return m.switchRange(models.LongTerm)
	case "r":
		if m.status != tasks.StatusLoading {
			m.status = tasks.StatusLoading
			return m, m.loadSnapshot(true)
		}
		return m, nil
	}

	return m.updateActiveList(msg)
}

func (m *Model) switchRange(tr models.TimeRange) (tea.Model, tea.Cmd) {
	if tr == m.timeRange && m.status == tasks.StatusReady {
		return m, nil
	}
	m.timeRange = tr
	m.status = tasks.StatusLoading
	return m, m.loadSnapshot(false)
}

func (m *Model) activeCategory() models.Category {
	return models.Categories()[m.category]
}

func (m *Model) updateActiveList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.status != tasks.StatusReady {
		return m, nil
	}
	category := m.activeCategory()
	l, ok := m.lists[category]
	if !ok {
		return m, nil
	}
	var cmd tea.Cmd
	l, cmd = l.Update(msg)
	m.lists[category] = l
	return m, cmd
}

// rebuildLists recreates the four category lists from the current snapshot.
func (m *Model) rebuildLists() {
	for _, category := range models.Categories() {
		l := list.New(snapshotItems(m.snapshot, category), list.NewDefaultDelegate(), 0, 0)
		l.Title = fmt.Sprintf("Top %s", category)
		l.SetShowHelp(false)
		l.SetSize(m.width-4, m.height-8)
		m.lists[category] = l
	}
}

func (m *Model) loadSnapshot(refresh bool) tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	go func(progress chan tasks.ProgressUpdate) {
		var snap *models.Snapshot
		var err error
		if refresh {
			snap, err = m.engine.Refresh(m.ctx, progress, m.timeRange, m.limit)
		} else {
			snap, err = m.engine.Load(m.ctx, progress, m.timeRange, m.limit)
		}
		m.loaded = snap
		m.loadErr = err
		close(progress)
	}(m.progressChan)

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return snapshotLoadedMsg{snapshot: m.loaded, err: m.loadErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			m.progressChan = nil
			return snapshotLoadedMsg{snapshot: m.loaded, err: m.loadErr}
		}
		return progressUpdateMsg(update)
	}
}

// renderTabs draws the category tab bar with the active tab highlighted.
func (m *Model) renderTabs() string {
	var tabs []string
	for i, category := range models.Categories() {
		if i == m.category {
			tabs = append(tabs, styles.activeTab.Render(string(category)))
		} else {
			tabs = append(tabs, styles.tab.Render(string(category)))
		}
	}
	return strings.Join(tabs, " ")
}

func rangeLabel(tr models.TimeRange) string {
	switch tr {
	case models.ShortTerm:
		return "4 weeks"
	case models.MediumTerm:
		return "6 months"
	case models.LongTerm:
		return "all time"
	default:
		return string(tr)
	}
}

func (m *Model) renderLoading() string {
	title := styles.title.Render(fmt.Sprintf("Loading your top music (%s)", rangeLabel(m.timeRange)))
	message := m.progress.Message
	if message == "" {
		message = "Starting..."
	}
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, message, m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m *Model) renderError() string {
	return styles.err.Render(fmt.Sprintf("Error: %v", m.err)) +
		"\n\n" + m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m *Model) renderSnapshot() string {
	header := fmt.Sprintf("%s   %s",
		m.renderTabs(),
		styles.help.Render(rangeLabel(m.timeRange)),
	)

	category := m.activeCategory()
	l, ok := m.lists[category]
	if !ok {
		return header
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", header, l.View(), m.help.ShortHelpView(m.keys.ShortHelp()))
}
