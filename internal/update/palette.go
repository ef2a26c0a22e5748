package update

import (
	"fmt"
	"strings"

	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/commands"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/selection"
)

func (m *Model) runCommand(line string) {
	cmd, err := commands.Parse(line)
	if err != nil {
		m.State.fail(err.Error())
		return
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Add: func(a commands.AddArgs) (commands.Result, error) {
			task, err := m.engine.Create(m.ctx, bulk.Draft{Description: a.Description})
			if err != nil {
				if bulk.IsStorageFailure(err) {
					m.log.Error("storage failure", "op", "create task", "err", err)
				}
				return commands.Result{}, err
			}
			m.log.Info("task created", "id", task.ID)
			return commands.Result{Message: fmt.Sprintf("created task #%d", task.ID)}, nil
		},
		Mark: func(a commands.MarkArgs) (commands.Result, error) {
			return m.commandBatch(a.IDs, Effect{Kind: EffectMark, Status: a.Status})
		},
		Delete: func(a commands.DeleteArgs) (commands.Result, error) {
			return m.commandBatch(a.IDs, Effect{Kind: EffectDelete})
		},
		Priority: func(a commands.PriorityArgs) (commands.Result, error) {
			return m.commandBatch(a.IDs, Effect{Kind: EffectUpdate, Changes: model.Changes{Priority: model.Ptr(string(a.Priority))}})
		},
		Tag: func(a commands.TagArgs) (commands.Result, error) {
			return m.commandBatch(a.IDs, Effect{Kind: EffectUpdate, Changes: model.Changes{}.WithTags(a.Tags)})
		},
		Search: func(a commands.SearchArgs) (commands.Result, error) {
			kind := SearchExact
			if a.Fuzzy {
				kind = SearchFuzzy
			}
			m.State.setSearch(kind, a.Term)
			return commands.Result{Message: fmt.Sprintf("%s search: %s", kind, a.Term)}, nil
		},
		Sort: func(a commands.SortArgs) (commands.Result, error) {
			field, ok := ParseSortField(a.Field)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown sort field: %s", a.Field)}
			}
			m.State.Sort = field
			m.State.Descending = a.Descending
			m.State.Cursor = 0
			order := "asc"
			if a.Descending {
				order = "desc"
			}
			return commands.Result{Message: fmt.Sprintf("sort: %s %s", field, order)}, nil
		},
	})
	if err != nil {
		m.log.Warn("command failed", "line", line, "err", err)
		m.State.fail(err.Error())
		return
	}
	m.log.Debug("command executed", "type", cmd.Type)
	m.State.Message = res.Message
	m.State.IsError = res.IsError
}

// commandBatch resolves an ID expression against the loaded tasks and runs
// the batch through the engine, the same path the CLI takes.
func (m *Model) commandBatch(expr string, eff Effect) (commands.Result, error) {
	prepared := selection.PrepareBulkOperation(expr, m.tasks)
	if len(prepared.IDs) == 0 {
		return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: strings.Join(prepared.Errors, "; ")}
	}
	eff.IDs = prepared.IDs
	var res model.BulkResult
	switch eff.Kind {
	case EffectMark:
		res = m.engine.Mark(m.ctx, eff.IDs, eff.Status)
	case EffectDelete:
		res = m.engine.Delete(m.ctx, eff.IDs)
	default:
		res = m.engine.Update(m.ctx, eff.IDs, eff.Changes)
	}
	m.logResult(string(eff.Kind), res)

	parts := append([]string{res.Summary(verbFor(eff))}, prepared.Errors...)
	for _, f := range res.Errors {
		parts = append(parts, fmt.Sprintf("#%d: %s", f.ID, f.Reason))
	}
	return commands.Result{Message: strings.Join(parts, "; "), IsError: res.RolledBack}, nil
}
