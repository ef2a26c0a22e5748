package update

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) Init() tea.Cmd {
	return nil
}

// Update runs one loop iteration: reload, decode, transition, effect.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout.SetSize(typed.Width, typed.Height)
		m.sync()
		return m, nil
	case StatusMsg:
		m.State.Message = typed.Text
		m.State.IsError = typed.IsError
		return m, nil
	case tea.KeyMsg:
		m.reload()
		ev := m.keys.Decode(typed, m.State.TextEntry())
		if ev.Kind == EventNone {
			return m, nil
		}
		before := m.State.Mode
		eff := m.State.Handle(ev, m.tasks)
		if before != m.State.Mode {
			m.log.Debug("mode changed", "from", before, "to", m.State.Mode)
		}
		cmd := m.run(eff)
		m.State.Clamp(len(m.State.Visible(m.tasks)))
		m.sync()
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.Quitting {
		return ""
	}
	return m.renderer.RenderLayout(m.frame())
}
