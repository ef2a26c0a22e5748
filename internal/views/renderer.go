package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/layout"
)

var ErrUnknownRenderer = errors.New("views: unknown renderer")

const (
	KindStyled = "styled"
	KindPlain  = "plain"
)

// BoxSpec describes one bordered panel. Lines beyond Height-2 are dropped.
type BoxSpec struct {
	Title   string
	Lines   []string
	Width   int
	Height  int
	Focused bool
	Dimmed  bool
}

// Panel is a block of already rendered rows placed at Rect.
type Panel struct {
	Rect  layout.Rect
	Lines []string
}

// Frame is everything drawn in one screen refresh.
type Frame struct {
	Width  int
	Height int
	Header string
	Panels []Panel
	Footer string
	Modal  *Panel
}

type Renderer interface {
	Header(title, subtitle string, width int) string
	Box(bs BoxSpec) []string
	Modal(bs BoxSpec) []string
	Footer(text string, width int) string
	Status(text string, isError bool) string
	RenderLayout(frame Frame) string
}

// New returns the renderer registered under kind.
func New(kind string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindStyled, "":
		return NewStyled(), nil
	case KindPlain:
		return NewPlain(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRenderer, kind)
	}
}
