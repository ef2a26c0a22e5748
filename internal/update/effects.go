package update

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/transfer"
)

func verbFor(eff Effect) string {
	switch eff.Kind {
	case EffectMark:
		return "marked " + string(eff.Status)
	case EffectDelete:
		return "deleted"
	default:
		return "updated"
	}
}

// ApplyResult folds a bulk result back into the state. Bulk results narrow
// the selection to the failed IDs, or clear it on full success.
func (s *State) ApplyResult(eff Effect, res model.BulkResult) {
	verb := verbFor(eff)
	summary := res.Summary(verb)

	if eff.Kind == EffectUpdate && !eff.Bulk && s.Mode == ModeUpdate {
		if len(res.Errors) > 0 {
			s.Form.Error = res.Errors[0].Reason
			if res.RolledBack {
				s.fail(summary)
			}
			return
		}
		s.toView()
		s.info(summary)
		return
	}
	if eff.Kind == EffectUpdate && eff.Bulk && s.Mode == ModeBulkUpdate {
		s.toView()
	}

	if eff.Bulk {
		s.Selected = map[int]bool{}
		if !res.FullSuccess() {
			for _, id := range res.FailedIDs() {
				s.Selected[id] = true
			}
		}
	}

	switch {
	case res.RolledBack:
		s.fail(summary)
	case !eff.Bulk && len(res.Errors) == 1:
		s.info(fmt.Sprintf("#%d: %s", res.Errors[0].ID, res.Errors[0].Reason))
	default:
		s.info(summary)
	}
	if eff.Bulk && len(res.Errors) > 0 {
		s.Outcome = &Outcome{Verb: verb, Result: res}
		s.Mode = ModeResult
	}
}

// run executes eff against storage and reports through the state.
func (m *Model) run(eff Effect) tea.Cmd {
	switch eff.Kind {
	case EffectNone:
		return nil
	case EffectQuit:
		m.Quitting = true
		m.log.Info("quit requested")
		return tea.Quit
	case EffectCreate:
		m.create(eff.Draft)
	case EffectUpdate, EffectMark, EffectDelete:
		m.mutate(eff)
	case EffectClear:
		n, err := m.engine.Clear(m.ctx)
		if err != nil {
			m.storageFailure("clear tasks", err)
			break
		}
		m.log.Info("tasks cleared", "count", n)
		m.State.info(fmt.Sprintf("cleared %d task(s)", n))
	case EffectExport:
		path := filepath.Join(m.exportDir, transfer.DefaultExportPath(eff.Format, m.now()))
		m.export(path, eff.Format)
	case EffectBackup:
		m.export(filepath.Join(m.exportDir, transfer.BackupPath(m.now())), transfer.FormatJSON)
	case EffectCommand:
		m.runCommand(eff.Line)
	}
	m.reload()
	return nil
}

func (m *Model) create(d bulk.Draft) {
	task, err := m.engine.Create(m.ctx, d)
	if err != nil {
		m.State.Form.Error = err.Error()
		if bulk.IsStorageFailure(err) {
			m.storageFailure("create task", err)
		}
		return
	}
	m.log.Info("task created", "id", task.ID)
	m.State.toView()
	m.State.info(fmt.Sprintf("created task #%d", task.ID))
}

func (m *Model) mutate(eff Effect) {
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
	m.State.ApplyResult(eff, res)
}

func (m *Model) logResult(op string, res model.BulkResult) {
	if err := bulk.ResultErr(res); err != nil {
		m.log.Error("bulk operation rolled back", "op", op, "failed", res.FailedCount, "err", err)
		return
	}
	m.log.Info("bulk operation finished", "op", op, "success", res.SuccessCount, "failed", res.FailedCount)
}

func (m *Model) storageFailure(op string, err error) {
	m.log.Error("storage failure", "op", op, "err", err)
	m.State.fail(fmt.Sprintf("%s failed: %v", op, err))
}

func (m *Model) export(path string, format transfer.Format) {
	f, err := os.Create(path)
	if err != nil {
		m.log.Error("export failed", "path", path, "err", err)
		m.State.fail(fmt.Sprintf("export failed: %v", err))
		return
	}
	n, err := transfer.Export(m.ctx, m.engine.Store(), f, format, transfer.Filter{})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		m.log.Error("export failed", "path", path, "err", err)
		m.State.fail(fmt.Sprintf("export failed: %v", err))
		return
	}
	m.log.Info("tasks exported", "path", path, "format", format, "count", n)
	m.State.info(fmt.Sprintf("exported %d task(s) to %s", n, path))
}
