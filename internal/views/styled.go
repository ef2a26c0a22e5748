package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true)
	modalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	modalTitle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Styled draws with lipgloss colors and rounded borders.
type Styled struct{}

func NewStyled() Styled {
	return Styled{}
}

func (Styled) Header(title, subtitle string, width int) string {
	line := headerStyle.Render(title)
	if subtitle != "" {
		line += " " + subtitleStyle.Render(subtitle)
	}
	return fitStyled(line, width)
}

func (Styled) Footer(text string, width int) string {
	return fitStyled(footerStyle.Render(text), width)
}

func (Styled) Box(bs BoxSpec) []string {
	edge := borderStyle
	switch {
	case bs.Dimmed:
		edge = dimStyle
	case bs.Focused:
		edge = focusedStyle
	}
	return drawBox(bs, boxPainter{
		border: lipgloss.RoundedBorder(),
		edge:   paint(edge),
		title:  paint(titleStyle),
		fit:    fitStyled,
	})
}

func (Styled) Modal(bs BoxSpec) []string {
	return drawBox(bs, boxPainter{
		border: lipgloss.DoubleBorder(),
		edge:   paint(modalStyle),
		title:  paint(modalTitle),
		fit:    fitStyled,
	})
}

func (Styled) RenderLayout(frame Frame) string {
	return compose(frame, paint(dimStyle))
}

// Status renders a footer message in the normal or error tone.
func (Styled) Status(text string, isError bool) string {
	if isError {
		return errorStyle.Render(text)
	}
	return statusStyle.Render(text)
}

func paint(st lipgloss.Style) func(string) string {
	return func(s string) string { return st.Render(s) }
}

func fitStyled(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) > width {
		s = ansi.Truncate(s, width, "")
	}
	if n := lipgloss.Width(s); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}
