package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/selection"
	"github.com/sandeepkv93/lazytask/internal/transfer"
	"github.com/sandeepkv93/lazytask/internal/update"
)

var (
	headerCell  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Padding(0, 1)
	cell        = lipgloss.NewStyle().Padding(0, 1)
	overdueCell = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("9"))
	plainCell   = lipgloss.NewStyle().Padding(0, 1)
)

type listFlags struct {
	status   string
	priority string
	tags     string
	search   string
	fuzzy    bool
	sort     string
	order    string
}

func (a *app) listCommand() *cobra.Command {
	var f listFlags
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runList(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.status, "status", "", "only tasks with this status")
	cmd.Flags().StringVar(&f.priority, "priority", "", "only tasks with this priority")
	cmd.Flags().StringVar(&f.tags, "tags", "", "only tasks carrying any of these comma separated tags")
	cmd.Flags().StringVar(&f.search, "search", "", "substring search over description, details and tags")
	cmd.Flags().BoolVar(&f.fuzzy, "fuzzy", false, "treat --search as a fuzzy query")
	cmd.Flags().StringVar(&f.sort, "sort", string(update.SortID), "sort field: id, due-date, priority, status, created, updated, description")
	cmd.Flags().StringVar(&f.order, "order", "asc", "sort order: asc or desc")
	return cmd
}

func (a *app) runList(cmd *cobra.Command, f listFlags) error {
	filter, err := parseFilter(f.status, f.priority, f.tags)
	if err != nil {
		return err
	}
	field, ok := update.ParseSortField(f.sort)
	if !ok {
		return fmt.Errorf("unknown sort field: %s", f.sort)
	}
	var desc bool
	switch strings.ToLower(strings.TrimSpace(f.order)) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return fmt.Errorf("invalid sort order: %s", f.order)
	}

	s, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	tasks, err := s.store.LoadAll(cmd.Context())
	if err != nil {
		s.log.Error("storage failure", "op", "load tasks", "err", err)
		return fmt.Errorf("load tasks: %w", err)
	}

	// Searching and sorting go through the dashboard state.
	state := update.NewState()
	state.Sort = field
	state.Descending = desc
	state.Threshold = s.cfg.Search.FuzzyThreshold
	if term := strings.TrimSpace(f.search); term != "" {
		state.Search = update.SearchExact
		if f.fuzzy {
			state.Search = update.SearchFuzzy
		}
		state.SearchTerm = term
	}
	visible := state.Visible(filter.Apply(tasks))
	if len(visible) == 0 {
		a.printf("no tasks found\n")
		return nil
	}
	a.printf("%s\n", a.taskTable(visible))
	return nil
}

func parseFilter(status, priority, tags string) (transfer.Filter, error) {
	var f transfer.Filter
	if strings.TrimSpace(status) != "" {
		st, err := model.ParseStatus(status)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if strings.TrimSpace(priority) != "" {
		p, err := model.ParsePriority(priority)
		if err != nil {
			return f, err
		}
		f.Priority = p
	}
	f.Tags = model.ParseTags(tags)
	return f, nil
}

func (a *app) taskTable(tasks []model.Task) string {
	now := a.opts.Now()
	styled := a.opts.Interactive()

	rows := make([][]string, 0, len(tasks))
	overdue := make(map[int]bool)
	for i, t := range tasks {
		due := t.DueDate
		if t.Overdue(now) {
			due += " !"
			overdue[i] = true
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", t.ID),
			string(t.Status),
			string(t.Priority),
			due,
			t.Description,
			strings.Join(t.Tags, ", "),
		})
	}

	tbl := table.New().
		Headers("ID", "STATUS", "PRIORITY", "DUE", "DESCRIPTION", "TAGS").
		Rows(rows...)
	if !styled {
		return tbl.Border(lipgloss.ASCIIBorder()).
			StyleFunc(func(_, _ int) lipgloss.Style { return plainCell }).
			String()
	}
	return tbl.Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerCell
			case overdue[row]:
				return overdueCell
			default:
				return cell
			}
		}).
		String()
}

type taskFlags struct {
	description string
	details     string
	priority    string
	status      string
	due         string
	tags        string
}

func (f *taskFlags) register(cmd *cobra.Command, withDescription bool) {
	if withDescription {
		cmd.Flags().StringVar(&f.description, "description", "", "new description")
	}
	cmd.Flags().StringVar(&f.details, "details", "", "free-form details (markdown)")
	cmd.Flags().StringVar(&f.priority, "priority", "", "low, medium, high or critical")
	cmd.Flags().StringVar(&f.status, "status", "", "todo, in-progress or done")
	cmd.Flags().StringVar(&f.due, "due", "", "due date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.tags, "tags", "", "comma separated tags")
}

func (a *app) addCommand() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft := bulk.Draft{
				Description: strings.Join(args, " "),
				Details:     f.details,
				DueDate:     f.due,
				Tags:        model.ParseTags(f.tags),
			}
			if f.priority != "" {
				p, err := model.ParsePriority(f.priority)
				if err != nil {
					return err
				}
				draft.Priority = p
			}
			if f.status != "" {
				st, err := model.ParseStatus(f.status)
				if err != nil {
					return err
				}
				draft.Status = st
			}
			if _, err := model.ParseDueDate(f.due); err != nil {
				return err
			}

			s, closeFn, err := a.open()
			if err != nil {
				return err
			}
			defer closeFn()

			task, err := s.engine.Create(cmd.Context(), draft)
			if err != nil {
				if bulk.IsStorageFailure(err) {
					s.log.Error("storage failure", "op", "create task", "err", err)
				}
				return err
			}
			s.log.Info("task created", "id", task.ID)
			a.printf("created task #%d: %s\n", task.ID, task.Description)
			return nil
		},
	}
	f.register(cmd, false)
	return cmd
}

func (a *app) updateCommand() *cobra.Command {
	var f taskFlags
	cmd := &cobra.Command{
		Use:   "update <ids>",
		Short: "Change fields of one or more tasks",
		Long:  "Change fields of the tasks named by an ID expression such as 1,3,5-7. Only the flags given are applied.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var c model.Changes
			fl := cmd.Flags()
			if fl.Changed("description") {
				c.Description = model.Ptr(f.description)
			}
			if fl.Changed("details") {
				c.Details = model.Ptr(f.details)
			}
			if fl.Changed("priority") {
				c.Priority = model.Ptr(strings.ToLower(strings.TrimSpace(f.priority)))
			}
			if fl.Changed("status") {
				c.Status = model.Ptr(strings.ToLower(strings.TrimSpace(f.status)))
			}
			if fl.Changed("due") {
				c.DueDate = model.Ptr(f.due)
			}
			if fl.Changed("tags") {
				c = c.WithTags(model.ParseTags(f.tags))
			}
			if c.Empty() {
				return errors.New("no changes given")
			}
			return a.runBatch(cmd, strings.Join(args, ""), "updated", func(s *session, _ []model.Task, ids []int) model.BulkResult {
				return s.engine.Update(cmd.Context(), ids, c)
			})
		},
	}
	f.register(cmd, true)
	return cmd
}

func (a *app) markCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mark <status> <ids>",
		Short: "Set the status of one or more tasks",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := model.ParseStatus(args[0])
			if err != nil {
				return err
			}
			return a.runBatch(cmd, strings.Join(args[1:], ""), "marked "+string(status), func(s *session, _ []model.Task, ids []int) model.BulkResult {
				return s.engine.Mark(cmd.Context(), ids, status)
			})
		},
	}
}

func (a *app) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <ids>",
		Aliases: []string{"rm"},
		Short:   "Delete one or more tasks after confirmation",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runBatch(cmd, strings.Join(args, ""), "deleted", func(s *session, tasks []model.Task, ids []int) model.BulkResult {
				if !yes {
					a.printf("About to delete %d task(s):\n", len(ids))
					for _, line := range selection.Summaries(tasks, ids) {
						a.printf("  %s\n", line)
					}
					if !a.confirm("Delete these tasks?") {
						return model.BulkResult{}
					}
				}
				return s.engine.Delete(cmd.Context(), ids)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

var errCancelled = errors.New("cancelled")

// runBatch resolves expr against the stored tasks, reports invalid IDs, runs
// fn with the loaded tasks on the valid IDs and prints the outcome. Partial failures are reported,
// not returned; a rolled back batch is an error.
func (a *app) runBatch(cmd *cobra.Command, expr, verb string, fn func(*session, []model.Task, []int) model.BulkResult) error {
	s, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	tasks, err := s.store.LoadAll(cmd.Context())
	if err != nil {
		s.log.Error("storage failure", "op", "load tasks", "err", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	prepared := selection.PrepareBulkOperation(expr, tasks)
	for _, problem := range prepared.Errors {
		a.printf("%s\n", problem)
	}
	if len(prepared.IDs) == 0 {
		return errors.New(strings.Join(prepared.Errors, "; "))
	}

	started := time.Now()
	res := fn(s, tasks, prepared.IDs)
	if res.SuccessCount == 0 && res.FailedCount == 0 {
		a.printf("%s\n", errCancelled)
		return nil
	}
	if err := bulk.ResultErr(res); err != nil {
		s.log.Error("bulk operation rolled back", "verb", verb, "failed", res.FailedCount, "err", err)
		return fmt.Errorf("%s: %w", res.Summary(verb), err)
	}
	s.log.Info("bulk operation finished", "verb", verb, "success", res.SuccessCount, "failed", res.FailedCount, "elapsed", time.Since(started))

	a.printf("%s\n", res.Summary(verb))
	for _, failure := range res.Errors {
		a.printf("  #%d: %s\n", failure.ID, failure.Reason)
	}
	return nil
}
