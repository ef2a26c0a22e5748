package update

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type EventKind string

const (
	EventNone      EventKind = ""
	EventUp        EventKind = "up"
	EventDown      EventKind = "down"
	EventLeft      EventKind = "left"
	EventRight     EventKind = "right"
	EventTab       EventKind = "tab"
	EventBackTab   EventKind = "backtab"
	EventSpace     EventKind = "space"
	EventEnter     EventKind = "enter"
	EventEsc       EventKind = "esc"
	EventAdd       EventKind = "add"
	EventUpdate    EventKind = "update"
	EventDelete    EventKind = "delete"
	EventMark      EventKind = "mark"
	EventSearch    EventKind = "search"
	EventFuzzy     EventKind = "fuzzy"
	EventSort      EventKind = "sort"
	EventReverse   EventKind = "reverse"
	EventStats     EventKind = "stats"
	EventMenu      EventKind = "menu"
	EventHelp      EventKind = "help"
	EventCommand   EventKind = "command"
	EventYes       EventKind = "yes"
	EventNo        EventKind = "no"
	EventQuit      EventKind = "quit"
	EventInterrupt EventKind = "interrupt"
	EventRune      EventKind = "rune"
	EventBackspace EventKind = "backspace"
)

// Event is a decoded keystroke. Text carries the runes of EventRune.
type Event struct {
	Kind EventKind
	Text string
}

type KeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Tab       key.Binding
	BackTab   key.Binding
	Space     key.Binding
	Enter     key.Binding
	Esc       key.Binding
	Add       key.Binding
	Update    key.Binding
	Delete    key.Binding
	Mark      key.Binding
	Search    key.Binding
	Fuzzy     key.Binding
	Sort      key.Binding
	Reverse   key.Binding
	Stats     key.Binding
	Menu      key.Binding
	Help      key.Binding
	Command   key.Binding
	Yes       key.Binding
	No        key.Binding
	Quit      key.Binding
	Interrupt key.Binding
	Backspace key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "move up / previous field")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "move down / next field")),
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "previous value")),
		Right:     key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next value")),
		Tab:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "multi-select / next field")),
		BackTab:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous field")),
		Space:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle selection")),
		Enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit / confirm")),
		Esc:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel / clear search")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add task")),
		Update:    key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "update / bulk actions")),
		Delete:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete / bulk actions")),
		Mark:      key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "set status")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Fuzzy:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "fuzzy search")),
		Sort:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "cycle sort field")),
		Reverse:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse sort")),
		Stats:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle stats")),
		Menu:      key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "menu")),
		Help:      key.NewBinding(key.WithKeys("f1", "H"), key.WithHelp("F1/H", "help")),
		Command:   key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command line")),
		Yes:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		No:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "decline")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Interrupt: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Backspace: key.NewBinding(key.WithKeys("backspace"), key.WithHelp("backspace", "delete character")),
	}
}

// Decode turns a keystroke into an Event. In text entry printable keys are
// text, everything else keeps its binding.
func (k KeyMap) Decode(msg tea.KeyMsg, textEntry bool) Event {
	if key.Matches(msg, k.Interrupt) {
		return Event{Kind: EventInterrupt}
	}
	if textEntry {
		switch msg.Type {
		case tea.KeyRunes:
			return Event{Kind: EventRune, Text: string(msg.Runes)}
		case tea.KeySpace:
			return Event{Kind: EventRune, Text: " "}
		}
	}
	bindings := []struct {
		binding key.Binding
		kind    EventKind
	}{
		{k.Up, EventUp}, {k.Down, EventDown}, {k.Left, EventLeft}, {k.Right, EventRight},
		{k.Tab, EventTab}, {k.BackTab, EventBackTab}, {k.Space, EventSpace},
		{k.Enter, EventEnter}, {k.Esc, EventEsc}, {k.Backspace, EventBackspace},
		{k.Add, EventAdd}, {k.Update, EventUpdate}, {k.Delete, EventDelete}, {k.Mark, EventMark},
		{k.Search, EventSearch}, {k.Fuzzy, EventFuzzy}, {k.Sort, EventSort}, {k.Reverse, EventReverse},
		{k.Stats, EventStats}, {k.Menu, EventMenu}, {k.Help, EventHelp}, {k.Command, EventCommand},
		{k.Yes, EventYes}, {k.No, EventNo}, {k.Quit, EventQuit},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return Event{Kind: b.kind}
		}
	}
	return Event{}
}

// ShortHelp and FullHelp make KeyMap a help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Update, k.Delete, k.Tab, k.Search, k.Menu, k.Help, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Tab, k.BackTab, k.Space},
		{k.Add, k.Update, k.Delete, k.Mark, k.Enter, k.Esc},
		{k.Search, k.Fuzzy, k.Sort, k.Reverse, k.Stats},
		{k.Menu, k.Help, k.Command, k.Yes, k.No, k.Quit},
	}
}
