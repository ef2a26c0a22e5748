package views

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

var (
	asciiBorder = lipgloss.Border{
		Top: "-", Bottom: "-", Left: "|", Right: "|",
		TopLeft: "+", TopRight: "+", BottomLeft: "+", BottomRight: "+",
	}
	asciiModalBorder = lipgloss.Border{
		Top: "=", Bottom: "=", Left: "#", Right: "#",
		TopLeft: "#", TopRight: "#", BottomLeft: "#", BottomRight: "#",
	}
)

// Plain draws without escape codes, using ASCII borders.
type Plain struct{}

func NewPlain() Plain {
	return Plain{}
}

func (Plain) Header(title, subtitle string, width int) string {
	line := title
	if subtitle != "" {
		line += " | " + subtitle
	}
	return fitPlain(line, width)
}

func (Plain) Footer(text string, width int) string {
	return fitPlain(text, width)
}

func (Plain) Status(text string, isError bool) string {
	if isError {
		return "error: " + text
	}
	return text
}

func (Plain) Box(bs BoxSpec) []string {
	return drawBox(bs, boxPainter{border: asciiBorder, edge: identity, title: identity, fit: fitPlain})
}

func (Plain) Modal(bs BoxSpec) []string {
	return drawBox(bs, boxPainter{border: asciiModalBorder, edge: identity, title: identity, fit: fitPlain})
}

func (Plain) RenderLayout(frame Frame) string {
	return compose(frame, identity)
}

func identity(s string) string { return s }

// fitPlain also strips escape codes that embedded bubbles may have emitted.
func fitPlain(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(ansi.Strip(s), width, ""), width)
}
