package update

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/layout"
	"github.com/sandeepkv93/lazytask/internal/logging"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/views"
)

type Options struct {
	Engine   *bulk.Engine
	Renderer views.Renderer
	Logger   *logging.Logger
	// Now defaults to time.Now.
	Now             func() time.Time
	Width           int
	Height          int
	FuzzyThreshold  float64
	MarkdownDetails bool
	// ExportDir receives menu exports and backups. Empty means the working
	// directory.
	ExportDir string
	Context   context.Context
}

// StatusMsg sets the footer message from outside the key loop.
type StatusMsg struct {
	Text    string
	IsError bool
}

// Model is the bubbletea program of the dashboard. Storage is reloaded before
// every key is handled, so edits made by other processes show up.
type Model struct {
	State    State
	Quitting bool

	ctx       context.Context
	engine    *bulk.Engine
	renderer  views.Renderer
	log       *logging.Logger
	now       func() time.Time
	layout    *layout.Layout
	keys      KeyMap
	exportDir string
	markdown  bool

	tasks []model.Task

	// Bubble components used for overlays
	help     help.Model
	input    textinput.Model
	menu     list.Model
	helpView viewport.Model
}

type listItem struct {
	title       string
	description string
}

func (i listItem) Title() string       { return i.title }
func (i listItem) Description() string { return i.description }
func (i listItem) FilterValue() string { return i.title }

func New(opts Options) Model {
	m := Model{
		State:     NewState(),
		ctx:       opts.Context,
		engine:    opts.Engine,
		renderer:  opts.Renderer,
		log:       opts.Logger,
		now:       opts.Now,
		layout:    layout.New(opts.Width, opts.Height),
		keys:      DefaultKeyMap(),
		exportDir: opts.ExportDir,
		markdown:  opts.MarkdownDetails,
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.renderer == nil {
		m.renderer = views.NewStyled()
	}
	if m.log == nil {
		m.log = logging.Discard()
	}
	if m.now == nil {
		m.now = time.Now
	}
	if opts.FuzzyThreshold > 0 {
		m.State.Threshold = opts.FuzzyThreshold
	}
	m.initBubbleComponents()
	m.reload()
	m.sync()
	return m
}

func (m *Model) initBubbleComponents() {
	m.help = help.New()

	m.input = textinput.New()
	m.input.CharLimit = 256
	m.input.Width = 48

	m.menu = list.New([]list.Item{}, list.NewDefaultDelegate(), 40, 12)
	m.menu.SetShowHelp(false)
	m.menu.SetShowStatusBar(false)
	m.menu.SetFilteringEnabled(false)

	m.helpView = viewport.New(60, 14)
}

// Tasks returns the task list as last loaded from storage.
func (m Model) Tasks() []model.Task {
	return m.tasks
}

// Visible is the task list as displayed: searched, then sorted.
func (m Model) Visible() []model.Task {
	return m.State.Visible(m.tasks)
}

// reload replaces the in-memory list with the stored one. A failed read keeps
// the previous list on screen.
func (m *Model) reload() {
	tasks, err := m.engine.Store().LoadAll(m.ctx)
	if err != nil {
		m.storageFailure("load tasks", err)
		return
	}
	m.tasks = tasks
	m.State.Clamp(len(m.State.Visible(tasks)))
}

// sync mirrors State into the bubble components drawn by View.
func (m *Model) sync() {
	cols, rows := m.layout.Size()
	m.help.Width = min(cols-6, 100)

	switch m.State.Mode {
	case ModeSearch:
		m.input.Prompt = "/"
		if m.State.pending == SearchFuzzy {
			m.input.Prompt = "?"
		}
	case ModeCommand:
		m.input.Prompt = ":"
	}
	if m.State.Mode == ModeSearch || m.State.Mode == ModeCommand {
		m.input.SetValue(m.State.Input)
		m.input.CursorEnd()
		m.input.Focus()
	} else {
		m.input.Blur()
	}

	if items, title, ok := m.menuItems(); ok {
		m.menu.Title = title
		m.menu.SetItems(items)
		m.menu.SetSize(menuWidth, min(len(items)*3+2, rows-6))
		m.menu.Select(m.State.Pick)
	}

	m.helpView.Width = min(cols-6, 100)
	m.helpView.Height = max(4, rows-8)
	m.helpView.SetContent(m.help.FullHelpView(m.keys.FullHelp()))
	m.helpView.SetYOffset(m.State.HelpOffset)
	m.State.HelpOffset = m.helpView.YOffset
}

func (m Model) menuItems() ([]list.Item, string, bool) {
	var entries []menuItem
	title := ""
	switch m.State.Mode {
	case ModeBulkMenu:
		entries = bulkActions
		title = "Bulk actions"
	case ModeMenu:
		entries = dataMenu
		title = "Menu"
	case ModeBulkMark, ModeMark:
		for _, st := range model.Statuses {
			entries = append(entries, menuItem{string(st), "set status to " + strings.ReplaceAll(string(st), "-", " ")})
		}
		title = "Set status"
	default:
		return nil, "", false
	}
	items := make([]list.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, listItem{title: e.title, description: e.description})
	}
	return items, title, true
}
