package views

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// compose places the frame on a width x height canvas. With a modal present
// the finished background is stripped, passed through dim, and the modal is
// spliced over it.
func compose(frame Frame, dim func(string) string) string {
	width := max(1, frame.Width)
	height := max(1, frame.Height)

	canvas := make([]string, height)
	blank := strings.Repeat(" ", width)
	for i := range canvas {
		canvas[i] = blank
	}

	if frame.Header != "" {
		overlayAt(canvas, []string{frame.Header}, width, 0, 0, width)
	}
	for _, panel := range frame.Panels {
		if panel.Rect.Empty() {
			continue
		}
		lines := panel.Lines
		if len(lines) > panel.Rect.Height {
			lines = lines[:panel.Rect.Height]
		}
		overlayAt(canvas, lines, width, panel.Rect.Column-1, panel.Rect.Row-1, panel.Rect.Width)
	}
	if frame.Footer != "" {
		overlayAt(canvas, []string{frame.Footer}, width, 0, height-1, width)
	}

	if frame.Modal != nil && !frame.Modal.Rect.Empty() {
		for i, row := range canvas {
			canvas[i] = dim(ansi.Strip(row))
		}
		m := frame.Modal
		overlayAt(canvas, m.Lines, width, m.Rect.Column-1, m.Rect.Row-1, m.Rect.Width)
	}
	return strings.Join(canvas, "\n")
}

// overlayAt writes fgLines over bgLines starting at cell x of row y. Each
// foreground row is cut or padded to exactly fgW cells.
func overlayAt(bgLines []string, fgLines []string, w, x, y, fgW int) {
	if fgW <= 0 {
		return
	}
	x = max(0, x)
	y = max(0, y)
	if x+fgW > w {
		fgW = w - x
		if fgW <= 0 {
			return
		}
	}
	for i := 0; i < len(fgLines) && y+i < len(bgLines); i++ {
		bgLine := bgLines[y+i]
		left := ansi.Cut(bgLine, 0, x)
		if n := ansi.StringWidth(left); n < x {
			left += strings.Repeat(" ", x-n)
		}
		right := ansi.Cut(bgLine, x+fgW, w)

		fgLine := fgLines[i]
		if n := ansi.StringWidth(fgLine); n < fgW {
			fgLine += strings.Repeat(" ", fgW-n)
		} else if n > fgW {
			fgLine = ansi.Cut(fgLine, 0, fgW)
		}
		bgLines[y+i] = left + fgLine + right
	}
}
