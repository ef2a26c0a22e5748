// Package layout computes the screen rectangles of the dashboard from the
// terminal size. Every rectangle is derived on demand; nothing is cached.
package layout

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const (
	MinWidth  = 80
	MinHeight = 24

	// WideWidth is the column count from which the plain layout shows a sidebar.
	WideWidth    = 120
	CompactWidth = 100

	sidebarMin   = 25
	sidebarMax   = 50
	sidebarSlack = 45
	taskListMin  = 40
	panelGap     = 2
	edgeMargin   = 4
	panelMinRows = 10
	ellipsis     = "..."
)

// Rect is a 1-based screen rectangle.
type Rect struct {
	Column int
	Row    int
	Width  int
	Height int
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

type Layout struct {
	columns int
	rows    int
}

func New(columns, rows int) *Layout {
	l := &Layout{}
	l.SetSize(columns, rows)
	return l
}

// SetSize records the terminal size, clamped to MinWidth x MinHeight.
func (l *Layout) SetSize(columns, rows int) {
	l.columns = max(MinWidth, columns)
	l.rows = max(MinHeight, rows)
}

// Detect reads the size of the terminal behind fd. On failure the minimum
// size is used and the error is returned for logging.
func (l *Layout) Detect(fd int) error {
	w, h, err := term.GetSize(fd)
	if err != nil {
		l.SetSize(MinWidth, MinHeight)
		return err
	}
	l.SetSize(w, h)
	return nil
}

func (l *Layout) Size() (columns, rows int) {
	return l.columns, l.rows
}

func (l *Layout) panelHeight() int {
	return max(panelMinRows, l.rows-2)
}

// available is the width shared by the stats sidebar and the task list.
func (l *Layout) available() int {
	return l.columns - edgeMargin
}

func sidebarWidth(available int) int {
	return max(sidebarMin, min(sidebarMax, available-sidebarSlack))
}

func (l *Layout) Header() Rect {
	return Rect{Column: 1, Row: 1, Width: l.columns, Height: 1}
}

func (l *Layout) Footer() Rect {
	return Rect{Column: 1, Row: l.rows, Width: l.columns, Height: 1}
}

// Sidebar is hidden below WideWidth columns.
func (l *Layout) Sidebar() Rect {
	if l.columns < WideWidth {
		return Rect{}
	}
	return Rect{Column: 1, Row: 2, Width: sidebarWidth(l.available()), Height: l.panelHeight()}
}

func (l *Layout) TaskList() Rect {
	side := l.Sidebar()
	if side.Empty() {
		return Rect{Column: 1, Row: 2, Width: l.columns, Height: l.panelHeight()}
	}
	return Rect{
		Column: side.Width + panelGap,
		Row:    2,
		Width:  max(taskListMin, l.columns-side.Width-panelGap),
		Height: l.panelHeight(),
	}
}

// StatsSidebar is always present in the stats layout.
func (l *Layout) StatsSidebar() Rect {
	return Rect{Column: 1, Row: 2, Width: sidebarWidth(l.available()), Height: l.panelHeight()}
}

func (l *Layout) TaskListWithStats() Rect {
	side := l.StatsSidebar().Width
	return Rect{
		Column: side + 3,
		Row:    2,
		Width:  max(taskListMin, l.available()-side-panelGap),
		Height: l.panelHeight(),
	}
}

// ModalPosition centers a width x height box, never larger than the screen
// less a one-cell border on each side.
func (l *Layout) ModalPosition(width, height int) Rect {
	return Rect{
		Column: max(1, (l.columns-width)/2),
		Row:    max(2, (l.rows-height)/2),
		Width:  min(width, l.columns-2),
		Height: min(height, l.rows-2),
	}
}

func (l *Layout) IsCompact() bool {
	return l.columns < CompactWidth
}

func (l *Layout) ShouldShowElement(minWidth, minHeight int) bool {
	return l.columns >= minWidth && l.rows >= minHeight
}

// TruncateText shortens text to maxLength display cells, ending in "...".
func TruncateText(text string, maxLength int) string {
	if runewidth.StringWidth(text) <= maxLength {
		return text
	}
	if maxLength <= len(ellipsis) {
		return strings.Repeat(".", max(0, maxLength))
	}
	return runewidth.Truncate(text, maxLength, ellipsis)
}
