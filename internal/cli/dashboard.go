package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lazytask/internal/layout"
	"github.com/sandeepkv93/lazytask/internal/terminal"
	"github.com/sandeepkv93/lazytask/internal/update"
	"github.com/sandeepkv93/lazytask/internal/views"
)

func (a *app) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive dashboard (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDashboard(cmd.Context())
		},
	}
}

func (a *app) runDashboard(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeFn, err := a.open()
	if err != nil {
		return err
	}
	defer closeFn()

	renderer, err := views.New(s.cfg.UI.Renderer)
	if err != nil {
		return err
	}

	fd := int(os.Stdin.Fd())
	if f, ok := a.opts.Stdin.(*os.File); ok {
		fd = int(f.Fd())
	}
	guard, err := terminal.Capture(fd, s.log)
	if err != nil {
		return fmt.Errorf("capture terminal state: %w", err)
	}
	defer func() {
		if err := guard.Restore(); err != nil {
			s.log.Error("terminal restore failed", "err", err)
		}
	}()
	ctx, stop := guard.NotifyContext(ctx)
	defer stop()

	size := layout.New(layout.MinWidth, layout.MinHeight)
	if err := size.Detect(int(os.Stdout.Fd())); err != nil {
		s.log.Warn("terminal size unavailable, using minimum", "err", err)
	}
	cols, rows := size.Size()

	exportDir, err := os.Getwd()
	if err != nil {
		exportDir = filepath.Dir(s.cfg.Storage.Path)
	}

	m := update.New(update.Options{
		Engine:          s.engine,
		Renderer:        renderer,
		Logger:          s.log,
		Now:             a.opts.Now,
		Width:           cols,
		Height:          rows,
		FuzzyThreshold:  s.cfg.Search.FuzzyThreshold,
		MarkdownDetails: s.cfg.UI.MarkdownDetails,
		ExportDir:       exportDir,
		Context:         ctx,
	})

	opts := []tea.ProgramOption{tea.WithInput(a.opts.Stdin), tea.WithOutput(a.opts.Stdout)}
	if s.cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}

	// Console logging stays off while the dashboard owns the screen.
	s.log.SetConsoleEnabled(false)
	defer s.log.SetConsoleEnabled(true)

	s.log.Info("dashboard starting", "renderer", s.cfg.UI.Renderer, "width", cols, "height", rows)
	err = a.opts.RunProgram(ctx, m, opts...)
	switch {
	case err == nil:
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		s.log.Info("dashboard interrupted")
		return nil
	default:
		s.log.Error("dashboard terminated with error", "err", err)
		return fmt.Errorf("run dashboard: %w", err)
	}
	s.log.Info("dashboard closed")
	return nil
}
