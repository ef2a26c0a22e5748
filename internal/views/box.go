package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// boxPainter supplies the renderer specific parts of a bordered box.
type boxPainter struct {
	border lipgloss.Border
	// edge paints border runs, title paints the caption.
	edge  func(s string) string
	title func(s string) string
	// fit truncates or pads s to exactly width cells.
	fit func(s string, width int) string
}

// controlChars maps characters with no cell width onto spaces. Escape
// sequences are left for fit to measure.
var controlChars = strings.NewReplacer("\t", "    ", "\r\n", " ", "\n", " ", "\r", " ", "\v", " ", "\f", " ")

const (
	minBoxWidth  = 4
	minBoxHeight = 2
)

func drawBox(bs BoxSpec, p boxPainter) []string {
	width := max(minBoxWidth, bs.Width)
	height := max(minBoxHeight, bs.Height)
	inner := width - 2
	b := p.border

	out := make([]string, 0, height)
	out = append(out, topBorder(bs.Title, inner, p))

	capacity := height - 2
	for i := 0; i < capacity; i++ {
		line := ""
		if i < len(bs.Lines) {
			line = bs.Lines[i]
		}
		content := p.fit(" "+controlChars.Replace(line), inner)
		out = append(out, p.edge(b.Left)+content+p.edge(b.Right))
	}

	out = append(out, p.edge(b.BottomLeft+strings.Repeat(b.Bottom, inner)+b.BottomRight))
	return out
}

func topBorder(title string, inner int, p boxPainter) string {
	b := p.border
	title = strings.TrimSpace(controlChars.Replace(title))
	if title == "" || inner < 4 {
		return p.edge(b.TopLeft + strings.Repeat(b.Top, inner) + b.TopRight)
	}
	caption := p.fit(" "+title+" ", min(inner-2, lipgloss.Width(" "+title+" ")))
	rest := inner - 1 - lipgloss.Width(caption)
	return p.edge(b.TopLeft+b.Top) + p.title(caption) + p.edge(strings.Repeat(b.Top, max(0, rest))+b.TopRight)
}
