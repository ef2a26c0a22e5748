package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/transfer"
)

type EffectKind string

const (
	EffectNone    EffectKind = ""
	EffectQuit    EffectKind = "quit"
	EffectCreate  EffectKind = "create"
	EffectUpdate  EffectKind = "update"
	EffectMark    EffectKind = "mark"
	EffectDelete  EffectKind = "delete"
	EffectClear   EffectKind = "clear"
	EffectExport  EffectKind = "export"
	EffectBackup  EffectKind = "backup"
	EffectCommand EffectKind = "command"
)

// Effect is the mutation a transition asks the Model to run.
type Effect struct {
	Kind    EffectKind
	IDs     []int
	Status  model.Status
	Changes model.Changes
	Draft   bulk.Draft
	Format  transfer.Format
	Line    string
	// Bulk results narrow the multi-select set to the failed IDs.
	Bulk bool
}

type transitionKey struct {
	mode Mode
	kind EventKind
}

type transition func(s *State, ev Event, view []model.Task) Effect

type menuItem struct {
	title       string
	description string
}

var bulkActions = []menuItem{
	{"Mark", "set the status of the selected tasks"},
	{"Update", "change priority, status, due date or tags"},
	{"Delete", "remove the selected tasks"},
	{"Cancel", "back to the task list"},
}

var dataMenu = []menuItem{
	{"Help", "show every key binding"},
	{"Export JSON", "write all tasks to a JSON file"},
	{"Export CSV", "write all tasks to a CSV file"},
	{"Backup", "write a timestamped JSON backup"},
	{"Clear all tasks", "delete every task after confirmation"},
}

var transitions = map[transitionKey]transition{
	{ModeView, EventUp}:      moveCursor(-1),
	{ModeView, EventDown}:    moveCursor(1),
	{ModeView, EventTab}:     toggleMultiSelect,
	{ModeView, EventSpace}:   toggleMembership,
	{ModeView, EventAdd}:     startAdd,
	{ModeView, EventUpdate}:  startUpdate,
	{ModeView, EventEnter}:   startUpdate,
	{ModeView, EventDelete}:  startDelete,
	{ModeView, EventMark}:    startMark,
	{ModeView, EventSearch}:  startSearch(SearchExact),
	{ModeView, EventFuzzy}:   startSearch(SearchFuzzy),
	{ModeView, EventSort}:    cycleSort,
	{ModeView, EventReverse}: reverseSort,
	{ModeView, EventStats}:   toggleStats,
	{ModeView, EventMenu}:    openMenu,
	{ModeView, EventHelp}:    openHelp,
	{ModeView, EventCommand}: openCommand,
	{ModeView, EventEsc}:     clearSearch,
	{ModeView, EventQuit}:    quit,

	{ModeDeleteConfirm, EventYes}: confirmDelete,
	{ModeDeleteConfirm, EventNo}:  cancel,
	{ModeDeleteConfirm, EventEsc}: cancel,

	{ModeSearch, EventRune}:      typeInput,
	{ModeSearch, EventBackspace}: backspaceInput,
	{ModeSearch, EventEnter}:     applySearch,
	{ModeSearch, EventEsc}:       cancelSearch,

	{ModeCommand, EventRune}:      typeInput,
	{ModeCommand, EventBackspace}: backspaceInput,
	{ModeCommand, EventEnter}:     runCommand,
	{ModeCommand, EventEsc}:       cancel,

	{ModeBulkMenu, EventUp}:    movePick(-1, len(bulkActions)),
	{ModeBulkMenu, EventDown}:  movePick(1, len(bulkActions)),
	{ModeBulkMenu, EventEnter}: chooseBulkAction,
	{ModeBulkMenu, EventEsc}:   cancel,

	{ModeBulkMark, EventUp}:    movePick(-1, len(model.Statuses)),
	{ModeBulkMark, EventDown}:  movePick(1, len(model.Statuses)),
	{ModeBulkMark, EventEnter}: confirmBulkMark,
	{ModeBulkMark, EventEsc}:   cancel,

	{ModeMark, EventUp}:    movePick(-1, len(model.Statuses)),
	{ModeMark, EventDown}:  movePick(1, len(model.Statuses)),
	{ModeMark, EventEnter}: confirmMark,
	{ModeMark, EventEsc}:   cancel,

	{ModeBulkDeleteConfirm, EventYes}: confirmBulkDelete,
	{ModeBulkDeleteConfirm, EventNo}:  cancel,
	{ModeBulkDeleteConfirm, EventEsc}: cancel,

	{ModeMenu, EventUp}:    movePick(-1, len(dataMenu)),
	{ModeMenu, EventDown}:  movePick(1, len(dataMenu)),
	{ModeMenu, EventEnter}: chooseMenuItem,
	{ModeMenu, EventEsc}:   cancel,
	{ModeMenu, EventQuit}:  cancel,

	{ModeClearConfirm, EventYes}: confirmClear,
	{ModeClearConfirm, EventNo}:  cancel,
	{ModeClearConfirm, EventEsc}: cancel,

	{ModeHelp, EventUp}:   scrollHelp(-1),
	{ModeHelp, EventDown}: scrollHelp(1),
	{ModeHelp, EventEsc}:  closeOverlay,
	{ModeHelp, EventHelp}: closeOverlay,
	{ModeHelp, EventQuit}: closeOverlay,

	{ModeResult, EventEnter}: closeOverlay,
	{ModeResult, EventEsc}:   closeOverlay,
}

func init() {
	for _, mode := range []Mode{ModeAdd, ModeUpdate, ModeBulkUpdate} {
		transitions[transitionKey{mode, EventUp}] = moveField(-1)
		transitions[transitionKey{mode, EventBackTab}] = moveField(-1)
		transitions[transitionKey{mode, EventDown}] = moveField(1)
		transitions[transitionKey{mode, EventTab}] = moveField(1)
		transitions[transitionKey{mode, EventLeft}] = cycleChoice(-1)
		transitions[transitionKey{mode, EventRight}] = cycleChoice(1)
		transitions[transitionKey{mode, EventRune}] = typeField
		transitions[transitionKey{mode, EventBackspace}] = backspaceField
		transitions[transitionKey{mode, EventEsc}] = cancel
	}
	transitions[transitionKey{ModeAdd, EventEnter}] = commitAdd
	transitions[transitionKey{ModeUpdate, EventEnter}] = commitUpdate
	transitions[transitionKey{ModeBulkUpdate, EventEnter}] = commitBulkUpdate
}

// Handle applies one event against the full task list. Pairs missing from
// the table leave the state untouched.
func (s *State) Handle(ev Event, tasks []model.Task) Effect {
	if ev.Kind == EventInterrupt {
		return Effect{Kind: EffectQuit}
	}
	tr, ok := transitions[transitionKey{s.Mode, ev.Kind}]
	if !ok {
		return Effect{}
	}
	eff := tr(s, ev, s.Visible(tasks))
	s.Clamp(len(s.Visible(tasks)))
	return eff
}

func moveCursor(delta int) transition {
	return func(s *State, _ Event, view []model.Task) Effect {
		s.Cursor += delta
		s.Clamp(len(view))
		return Effect{}
	}
}

func toggleMultiSelect(s *State, _ Event, _ []model.Task) Effect {
	s.setMultiSelect(!s.MultiSelect)
	if s.MultiSelect {
		s.info("multi-select on: space toggles tasks")
	} else {
		s.info("multi-select off")
	}
	return Effect{}
}

func toggleMembership(s *State, _ Event, view []model.Task) Effect {
	if !s.MultiSelect {
		return Effect{}
	}
	t, ok := current(view, s.Cursor)
	if !ok {
		return Effect{}
	}
	if s.Selected[t.ID] {
		delete(s.Selected, t.ID)
	} else {
		s.Selected[t.ID] = true
	}
	return Effect{}
}

func startAdd(s *State, _ Event, _ []model.Task) Effect {
	s.Mode = ModeAdd
	s.Form = newAddForm()
	return Effect{}
}

// bulkOrSingle routes u, d and enter: a non-empty multi-select opens the bulk
// menu, otherwise single reports whether a task is under the cursor.
func bulkOrSingle(s *State, view []model.Task) (model.Task, bool) {
	if s.MultiSelect {
		if len(s.SelectedIDs()) == 0 {
			s.info("no tasks selected")
			return model.Task{}, false
		}
		s.Mode = ModeBulkMenu
		s.Pick = 0
		return model.Task{}, false
	}
	t, ok := current(view, s.Cursor)
	if !ok {
		s.info("no tasks found")
	}
	return t, ok
}

func startUpdate(s *State, _ Event, view []model.Task) Effect {
	t, ok := bulkOrSingle(s, view)
	if !ok {
		return Effect{}
	}
	s.Mode = ModeUpdate
	s.Target = t.ID
	s.Form = newUpdateForm(t)
	return Effect{}
}

func startDelete(s *State, _ Event, view []model.Task) Effect {
	t, ok := bulkOrSingle(s, view)
	if !ok {
		return Effect{}
	}
	s.Mode = ModeDeleteConfirm
	s.Target = t.ID
	return Effect{}
}

func startMark(s *State, _ Event, view []model.Task) Effect {
	t, ok := current(view, s.Cursor)
	if !ok {
		s.info("no tasks found")
		return Effect{}
	}
	s.Mode = ModeMark
	s.Target = t.ID
	s.Pick = max(0, statusIndex(t.Status))
	return Effect{}
}

func statusIndex(st model.Status) int {
	for i, s := range model.Statuses {
		if s == st {
			return i
		}
	}
	return -1
}

func startSearch(kind SearchKind) transition {
	return func(s *State, _ Event, _ []model.Task) Effect {
		s.Mode = ModeSearch
		s.pending = kind
		s.Input = ""
		return Effect{}
	}
}

func cycleSort(s *State, _ Event, _ []model.Task) Effect {
	idx := 0
	for i, f := range SortFields {
		if f == s.Sort {
			idx = i
			break
		}
	}
	s.Sort = SortFields[(idx+1)%len(SortFields)]
	s.Cursor = 0
	s.info(fmt.Sprintf("sort: %s", s.Sort))
	return Effect{}
}

func reverseSort(s *State, _ Event, _ []model.Task) Effect {
	s.Descending = !s.Descending
	order := "ascending"
	if s.Descending {
		order = "descending"
	}
	s.info(fmt.Sprintf("sort: %s %s", s.Sort, order))
	return Effect{}
}

func toggleStats(s *State, _ Event, _ []model.Task) Effect {
	s.StatsView = !s.StatsView
	if s.StatsView {
		s.Cursor = 0
		s.setMultiSelect(false)
	}
	return Effect{}
}

func openMenu(s *State, _ Event, _ []model.Task) Effect {
	s.Mode = ModeMenu
	s.Pick = 0
	return Effect{}
}

func openHelp(s *State, _ Event, _ []model.Task) Effect {
	s.Mode = ModeHelp
	s.HelpOffset = 0
	return Effect{}
}

func openCommand(s *State, _ Event, _ []model.Task) Effect {
	s.Mode = ModeCommand
	s.Input = ""
	return Effect{}
}

func clearSearch(s *State, _ Event, _ []model.Task) Effect {
	if s.Search == SearchNone {
		s.Message = ""
		return Effect{}
	}
	s.setSearch(SearchNone, "")
	s.info("search cleared")
	return Effect{}
}

func cancelSearch(s *State, _ Event, _ []model.Task) Effect {
	s.toView()
	s.setSearch(SearchNone, "")
	s.info("search cancelled")
	return Effect{}
}

func quit(_ *State, _ Event, _ []model.Task) Effect {
	return Effect{Kind: EffectQuit}
}

func cancel(s *State, _ Event, _ []model.Task) Effect {
	s.toView()
	return Effect{}
}

func closeOverlay(s *State, _ Event, _ []model.Task) Effect {
	s.Outcome = nil
	s.toView()
	return Effect{}
}

func confirmDelete(s *State, _ Event, _ []model.Task) Effect {
	ids := []int{s.Target}
	s.toView()
	return Effect{Kind: EffectDelete, IDs: ids}
}

func typeInput(s *State, ev Event, _ []model.Task) Effect {
	s.Input += ev.Text
	return Effect{}
}

func backspaceInput(s *State, _ Event, _ []model.Task) Effect {
	s.Input = dropLastRune(s.Input)
	return Effect{}
}

func applySearch(s *State, _ Event, _ []model.Task) Effect {
	term := strings.TrimSpace(s.Input)
	kind := s.pending
	s.toView()
	if term == "" {
		s.setSearch(SearchNone, "")
		s.info("search cleared")
		return Effect{}
	}
	s.setSearch(kind, term)
	s.info(fmt.Sprintf("%s search: %s", kind, term))
	return Effect{}
}

func runCommand(s *State, _ Event, _ []model.Task) Effect {
	line := s.Input
	s.toView()
	return Effect{Kind: EffectCommand, Line: line}
}

func movePick(delta, n int) transition {
	return func(s *State, _ Event, _ []model.Task) Effect {
		s.Pick = max(0, min(n-1, s.Pick+delta))
		return Effect{}
	}
}

func chooseBulkAction(s *State, _ Event, _ []model.Task) Effect {
	switch bulkActions[s.Pick].title {
	case "Mark":
		s.Mode = ModeBulkMark
		s.Pick = 0
	case "Update":
		s.Mode = ModeBulkUpdate
		s.Form = newBulkUpdateForm()
	case "Delete":
		s.Mode = ModeBulkDeleteConfirm
	default:
		s.toView()
	}
	return Effect{}
}

func confirmBulkMark(s *State, _ Event, _ []model.Task) Effect {
	status := model.Statuses[s.Pick]
	ids := s.SelectedIDs()
	s.toView()
	return Effect{Kind: EffectMark, IDs: ids, Status: status, Bulk: true}
}

func confirmMark(s *State, _ Event, _ []model.Task) Effect {
	status := model.Statuses[s.Pick]
	ids := []int{s.Target}
	s.toView()
	return Effect{Kind: EffectMark, IDs: ids, Status: status}
}

func confirmBulkDelete(s *State, _ Event, _ []model.Task) Effect {
	ids := s.SelectedIDs()
	s.toView()
	return Effect{Kind: EffectDelete, IDs: ids, Bulk: true}
}

func chooseMenuItem(s *State, _ Event, _ []model.Task) Effect {
	switch dataMenu[s.Pick].title {
	case "Help":
		s.Mode = ModeHelp
		s.HelpOffset = 0
		s.Pick = 0
		return Effect{}
	case "Export JSON":
		s.toView()
		return Effect{Kind: EffectExport, Format: transfer.FormatJSON}
	case "Export CSV":
		s.toView()
		return Effect{Kind: EffectExport, Format: transfer.FormatCSV}
	case "Backup":
		s.toView()
		return Effect{Kind: EffectBackup}
	default:
		s.Mode = ModeClearConfirm
		return Effect{}
	}
}

func confirmClear(s *State, _ Event, _ []model.Task) Effect {
	s.toView()
	s.Selected = map[int]bool{}
	return Effect{Kind: EffectClear}
}

func scrollHelp(delta int) transition {
	return func(s *State, _ Event, _ []model.Task) Effect {
		s.HelpOffset = max(0, s.HelpOffset+delta)
		return Effect{}
	}
}

func moveField(delta int) transition {
	return func(s *State, _ Event, _ []model.Task) Effect {
		s.Form.Move(delta)
		return Effect{}
	}
}

func cycleChoice(delta int) transition {
	return func(s *State, _ Event, _ []model.Task) Effect {
		s.Form.Cycle(delta)
		return Effect{}
	}
}

func typeField(s *State, ev Event, _ []model.Task) Effect {
	s.Form.Type(ev.Text)
	return Effect{}
}

func backspaceField(s *State, _ Event, _ []model.Task) Effect {
	s.Form.Backspace()
	return Effect{}
}

func commitAdd(s *State, _ Event, _ []model.Task) Effect {
	draft, problem := s.Form.Draft()
	if problem != "" {
		s.Form.Error = problem
		return Effect{}
	}
	return Effect{Kind: EffectCreate, Draft: draft}
}

func commitUpdate(s *State, _ Event, _ []model.Task) Effect {
	changes, problem := s.Form.Changes()
	if problem != "" {
		s.Form.Error = problem
		return Effect{}
	}
	return Effect{Kind: EffectUpdate, IDs: []int{s.Target}, Changes: changes}
}

func commitBulkUpdate(s *State, _ Event, _ []model.Task) Effect {
	changes, problem := s.Form.BulkChanges()
	if problem != "" {
		s.Form.Error = problem
		return Effect{}
	}
	return Effect{Kind: EffectUpdate, IDs: s.SelectedIDs(), Changes: changes, Bulk: true}
}
