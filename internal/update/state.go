package update

import (
	"sort"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/fuzzy"
	"github.com/sandeepkv93/lazytask/internal/model"
)

type Mode string

const (
	ModeView              Mode = "view"
	ModeAdd               Mode = "add"
	ModeUpdate            Mode = "update"
	ModeDeleteConfirm     Mode = "delete-confirm"
	ModeSearch            Mode = "search"
	ModeBulkMenu          Mode = "bulk-menu"
	ModeBulkMark          Mode = "bulk-mark"
	ModeBulkUpdate        Mode = "bulk-update"
	ModeBulkDeleteConfirm Mode = "bulk-delete-confirm"
	ModeMark              Mode = "mark"
	ModeMenu              Mode = "menu"
	ModeHelp              Mode = "help"
	ModeCommand           Mode = "command"
	ModeClearConfirm      Mode = "clear-confirm"
	ModeResult            Mode = "result"
)

type SearchKind string

const (
	SearchNone  SearchKind = ""
	SearchExact SearchKind = "exact"
	SearchFuzzy SearchKind = "fuzzy"
)

type SortField string

const (
	SortID          SortField = "id"
	SortDueDate     SortField = "due-date"
	SortPriority    SortField = "priority"
	SortStatus      SortField = "status"
	SortCreated     SortField = "created"
	SortUpdated     SortField = "updated"
	SortDescription SortField = "description"
)

// SortFields is the cycle order of the sort key.
var SortFields = []SortField{SortID, SortDueDate, SortPriority, SortStatus, SortCreated, SortUpdated, SortDescription}

func ParseSortField(raw string) (SortField, bool) {
	f := SortField(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range SortFields {
		if f == known {
			return f, true
		}
	}
	return "", false
}

// Outcome is the last bulk result shown in the result panel.
type Outcome struct {
	Verb   string
	Result model.BulkResult
}

// State is the whole dashboard state. It never touches storage; mutations
// leave as Effects.
type State struct {
	Mode        Mode
	Cursor      int
	MultiSelect bool
	Selected    map[int]bool
	Search      SearchKind
	SearchTerm  string
	Sort        SortField
	Descending  bool
	StatsView   bool

	Form  Form
	Input string
	// pending is the search kind being typed in ModeSearch.
	pending SearchKind
	// Pick is the cursor of pickers and menus.
	Pick int
	// Target is the task a single-task mode acts on.
	Target     int
	Outcome    *Outcome
	HelpOffset int

	Message string
	IsError bool

	Threshold float64
}

func NewState() State {
	return State{
		Mode:      ModeView,
		Selected:  map[int]bool{},
		Sort:      SortID,
		Threshold: fuzzy.DefaultThreshold,
	}
}

// Clamp keeps the cursor inside a view of n tasks.
func (s *State) Clamp(n int) {
	if n <= 0 {
		s.Cursor = 0
		return
	}
	s.Cursor = max(0, min(s.Cursor, n-1))
}

// toView returns to ModeView, dropping any form or input buffer.
func (s *State) toView() {
	s.Mode = ModeView
	s.Form = Form{}
	s.Input = ""
	s.pending = SearchNone
	s.Pick = 0
	s.Target = 0
}

func (s *State) setMultiSelect(on bool) {
	s.MultiSelect = on
	if !on {
		s.Selected = map[int]bool{}
	}
}

// setSearch replaces the active search, resets the cursor and drops any
// multi-selection.
func (s *State) setSearch(kind SearchKind, term string) {
	s.Search = kind
	s.SearchTerm = term
	if kind == SearchNone {
		s.SearchTerm = ""
	}
	s.Cursor = 0
	s.setMultiSelect(false)
}

func (s *State) info(msg string) {
	s.Message = msg
	s.IsError = false
}

func (s *State) fail(msg string) {
	s.Message = msg
	s.IsError = true
}

// SelectedIDs returns the multi-select set in ascending order.
func (s State) SelectedIDs() []int {
	out := make([]int, 0, len(s.Selected))
	for id, on := range s.Selected {
		if on {
			out = append(out, id)
		}
	}
	sort.Ints(out)
	return out
}

// TextEntry reports whether printable keys go to an input buffer.
func (s State) TextEntry() bool {
	switch s.Mode {
	case ModeSearch, ModeCommand:
		return true
	case ModeAdd, ModeUpdate, ModeBulkUpdate:
		return !s.Form.ActiveChoice()
	default:
		return false
	}
}

func current(view []model.Task, cursor int) (model.Task, bool) {
	if cursor < 0 || cursor >= len(view) {
		return model.Task{}, false
	}
	return view[cursor], true
}

// Visible filters tasks by the active search and sorts the result.
func (s State) Visible(tasks []model.Task) []model.Task {
	out := tasks
	switch {
	case s.Search == SearchExact && s.SearchTerm != "":
		out = exactMatches(tasks, s.SearchTerm)
	case s.Search == SearchFuzzy && s.SearchTerm != "":
		opts := fuzzy.DefaultOptions()
		if s.Threshold > 0 {
			opts.Threshold = s.Threshold
		}
		out = fuzzy.Tasks(tasks, s.SearchTerm, opts)
	default:
		out = append([]model.Task(nil), tasks...)
	}
	return SortTasks(out, s.Sort, s.Descending)
}

func exactMatches(tasks []model.Task, term string) []model.Task {
	needle := strings.ToLower(term)
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Description), needle) ||
			strings.Contains(strings.ToLower(t.Details), needle) {
			out = append(out, t)
			continue
		}
		for _, tag := range t.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

// SortTasks orders tasks in place and returns them. SortID keeps the input
// order, reversed when descending. Missing due dates sort last ascending.
func SortTasks(tasks []model.Task, field SortField, desc bool) []model.Task {
	if field == SortID || field == "" {
		if desc {
			for i, j := 0, len(tasks)-1; i < j; i, j = i+1, j-1 {
				tasks[i], tasks[j] = tasks[j], tasks[i]
			}
		}
		return tasks
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareTasks(tasks[i], tasks[j], field)
		if desc {
			return c > 0
		}
		return c < 0
	})
	return tasks
}

func compareTasks(a, b model.Task, field SortField) int {
	switch field {
	case SortDueDate:
		ad, aok := a.Due()
		bd, bok := b.Due()
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		return ad.Compare(bd)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortStatus:
		return a.Status.Rank() - b.Status.Rank()
	case SortCreated:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortUpdated:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortDescription:
		return strings.Compare(strings.ToLower(a.Description), strings.ToLower(b.Description))
	default:
		return 0
	}
}
