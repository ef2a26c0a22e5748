package update

import (
	"fmt"

	"github.com/charmbracelet/x/ansi"
	"github.com/sandeepkv93/lazytask/internal/layout"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/selection"
	"github.com/sandeepkv93/lazytask/internal/views"
)

const (
	appTitle   = "lazytask"
	formWidth  = 64
	menuWidth  = 44
	inputWidth = 60
)

func (m Model) frame() views.Frame {
	cols, rows := m.layout.Size()
	now := m.now()
	visible := m.State.Visible(m.tasks)
	stats := model.CalculateStats(m.tasks, now)

	f := views.Frame{
		Width:  cols,
		Height: rows,
		Header: m.renderer.Header(appTitle, m.headerSubtitle(stats), cols),
		Footer: m.footer(cols),
	}

	listRect := m.layout.TaskList()
	if m.State.StatsView {
		side := m.layout.StatsSidebar()
		f.Panels = append(f.Panels, m.box(side, "Stats", views.StatsLines(stats, side.Width-4, m.plain()), false))
		listRect = m.layout.TaskListWithStats()
	} else if side := m.layout.Sidebar(); !side.Empty() {
		var cur *model.Task
		if t, ok := current(visible, m.State.Cursor); ok {
			cur = &t
		}
		f.Panels = append(f.Panels, m.box(side, "Details", views.DetailsLines(cur, side.Width-4, now, m.markdown), false))
	}

	f.Panels = append(f.Panels, m.box(listRect, m.listTitle(len(visible)), views.TaskListLines(views.TaskListData{
		Tasks:       visible,
		Cursor:      m.State.Cursor,
		Selected:    m.State.Selected,
		MultiSelect: m.State.MultiSelect,
		Now:         now,
		Width:       listRect.Width - 4,
		Height:      listRect.Height - 2,
	}), m.State.Mode == ModeView))

	if title, lines, width, ok := m.overlay(); ok {
		rect := m.layout.ModalPosition(width, len(lines)+2)
		f.Modal = &views.Panel{
			Rect: rect,
			Lines: m.renderer.Modal(views.BoxSpec{
				Title:   title,
				Lines:   lines,
				Width:   rect.Width,
				Height:  rect.Height,
				Focused: true,
			}),
		}
	}
	return f
}

func (m Model) box(rect layout.Rect, title string, lines []string, focused bool) views.Panel {
	return views.Panel{Rect: rect, Lines: m.renderer.Box(views.BoxSpec{
		Title:   title,
		Lines:   lines,
		Width:   rect.Width,
		Height:  rect.Height,
		Focused: focused,
	})}
}

func (m Model) plain() bool {
	_, ok := m.renderer.(views.Plain)
	return ok
}

func (m Model) listTitle(n int) string {
	title := fmt.Sprintf("Tasks (%d)", n)
	if m.State.Search != SearchNone && m.State.SearchTerm != "" {
		title = fmt.Sprintf("Tasks (%d of %d)", n, len(m.tasks))
	}
	if m.State.MultiSelect {
		title += " [multi-select]"
	}
	return title
}

func (m Model) headerSubtitle(stats model.Stats) string {
	if m.layout.IsCompact() {
		return fmt.Sprintf("%d %s", stats.Total, plural(stats.Total, "task"))
	}
	return views.StatusBarText(views.StatusBarData{
		Stats:       stats,
		SortField:   string(m.State.Sort),
		Descending:  m.State.Descending,
		SearchKind:  string(m.State.Search),
		SearchTerm:  m.State.SearchTerm,
		MultiSelect: m.State.MultiSelect,
		Selected:    len(m.State.SelectedIDs()),
		Mode:        m.modeLabel(),
	})
}

func (m Model) modeLabel() string {
	if m.State.Mode == ModeView {
		return ""
	}
	return string(m.State.Mode)
}

// footer shows the last message followed by the short key help.
func (m Model) footer(cols int) string {
	keys := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.plain() {
		keys = ansi.Strip(keys)
	}
	if m.State.Message == "" {
		return m.renderer.Footer(keys, cols)
	}
	msg := m.renderer.Status(m.State.Message, m.State.IsError)
	rest := cols - ansi.StringWidth(msg) - 2
	if rest <= 0 {
		return m.renderer.Footer(msg, cols)
	}
	return msg + "  " + m.renderer.Footer(keys, rest)
}

// overlay returns the modal for the current mode, if any.
func (m Model) overlay() (title string, lines []string, width int, ok bool) {
	s := m.State
	switch s.Mode {
	case ModeAdd:
		return "Add task", views.FormLines(s.Form.viewData()), formWidth, true
	case ModeUpdate:
		return fmt.Sprintf("Update task #%d", s.Target), views.FormLines(s.Form.viewData()), formWidth, true
	case ModeBulkUpdate:
		n := len(s.SelectedIDs())
		return fmt.Sprintf("Update %d %s", n, plural(n, "task")), views.FormLines(s.Form.viewData()), formWidth, true
	case ModeDeleteConfirm:
		return "Delete task", views.ConfirmLines("Delete this task?", selection.Summaries(m.tasks, []int{s.Target})), formWidth, true
	case ModeBulkDeleteConfirm:
		ids := s.SelectedIDs()
		prompt := fmt.Sprintf("Delete %d selected %s?", len(ids), plural(len(ids), "task"))
		return "Delete tasks", views.ConfirmLines(prompt, selection.Summaries(m.tasks, ids)), formWidth, true
	case ModeClearConfirm:
		prompt := fmt.Sprintf("Delete all %d %s? This cannot be undone.", len(m.tasks), plural(len(m.tasks), "task"))
		return "Clear tasks", views.ConfirmLines(prompt, nil), formWidth, true
	case ModeSearch:
		title := "Search"
		if s.pending == SearchFuzzy {
			title = "Fuzzy search"
		}
		return title, []string{m.input.View(), "", "enter apply  esc cancel  empty clears"}, inputWidth, true
	case ModeCommand:
		return "Command", []string{m.input.View(), "", "add, mark, delete, priority, tag, search, fuzzy, sort"}, inputWidth, true
	case ModeBulkMenu, ModeMenu, ModeBulkMark, ModeMark:
		lines := splitLines(m.menu.View())
		title := m.menu.Title
		if s.Mode == ModeMark {
			title = fmt.Sprintf("Status of #%d", s.Target)
		}
		return title, lines, menuWidth, true
	case ModeHelp:
		return "Help", splitLines(m.helpView.View()), m.helpView.Width + 4, true
	case ModeResult:
		if s.Outcome == nil {
			return "", nil, 0, false
		}
		lines := append(views.ResultLines(s.Outcome.Verb, s.Outcome.Result), "", "enter/esc close")
		return "Result", lines, formWidth, true
	}
	return "", nil, 0, false
}
