package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lazytask/internal/model"
	"github.com/sandeepkv93/lazytask/internal/transfer"
	"github.com/sandeepkv93/lazytask/internal/views"
)

func (a *app) exportCommand() *cobra.Command {
	var (
		format   string
		output   string
		status   string
		priority string
		tags     string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write tasks to a JSON, CSV or YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter, err := parseFilter(status, priority, tags)
			if err != nil {
				return err
			}
			f, err := exportFormat(format, output)
			if err != nil {
				return err
			}
			if output == "" {
				output = transfer.DefaultExportPath(f, a.opts.Now())
			}

			s, closeFn, err := a.open()
			if err != nil {
				return err
			}
			defer closeFn()

			var w io.Writer = a.opts.Stdout
			var file *os.File
			if output != "-" {
				file, err = os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				w = file
			}
			n, err := transfer.Export(cmd.Context(), s.store, w, f, filter)
			if file != nil {
				if cerr := file.Close(); err == nil {
					err = cerr
				}
			}
			if err != nil {
				s.log.Error("export failed", "path", output, "err", err)
				return fmt.Errorf("export tasks: %w", err)
			}
			s.log.Info("tasks exported", "path", output, "format", f, "count", n)
			if output != "-" {
				a.printf("exported %d task(s) to %s\n", n, output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, csv or yaml (default from --output extension, else json)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, - for stdout")
	cmd.Flags().StringVar(&status, "status", "", "only tasks with this status")
	cmd.Flags().StringVar(&priority, "priority", "", "only tasks with this priority")
	cmd.Flags().StringVar(&tags, "tags", "", "only tasks carrying any of these comma separated tags")
	return cmd
}

func exportFormat(format, output string) (transfer.Format, error) {
	if strings.TrimSpace(format) != "" {
		return transfer.ParseFormat(format)
	}
	if output != "" && output != "-" {
		if f, err := transfer.FormatFromPath(output); err == nil {
			return f, nil
		}
	}
	return transfer.FormatJSON, nil
}

func (a *app) importCommand() *cobra.Command {
	var (
		format       string
		mode         string
		validateOnly bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Read tasks from a JSON, CSV or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			m, err := transfer.ParseMode(mode)
			if err != nil {
				return err
			}
			var f transfer.Format
			if strings.TrimSpace(format) != "" {
				f, err = transfer.ParseFormat(format)
			} else {
				f, err = transfer.FormatFromPath(path)
			}
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			s, closeFn, err := a.open()
			if err != nil {
				return err
			}
			defer closeFn()

			res, err := transfer.Import(cmd.Context(), s.store, data, transfer.ImportOptions{
				Format:       f,
				Mode:         m,
				ValidateOnly: validateOnly,
			}, a.opts.Now())
			if err != nil {
				s.log.Error("import failed", "path", path, "err", err)
				return fmt.Errorf("import tasks: %w", err)
			}
			a.printf("%s\n", res.Message)
			for _, problem := range res.Errors {
				a.printf("  %s\n", problem)
			}
			if !res.Success {
				s.log.Warn("import rejected", "path", path, "problems", len(res.Errors))
				return errors.New("import failed validation")
			}
			s.log.Info("tasks imported", "path", path, "mode", m, "count", res.Imported, "validate_only", validateOnly)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json, csv or yaml (default from the file extension)")
	cmd.Flags().StringVar(&mode, "mode", string(transfer.ModeMerge), "merge or replace")
	cmd.Flags().BoolVar(&validateOnly, "validate-only", false, "check the file without writing")
	return cmd
}

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			stats := model.CalculateStats(tasks, a.opts.Now())
			for _, line := range views.StatsLines(stats, 60, !a.opts.Interactive()) {
				a.printf("%s\n", line)
			}
			return nil
		},
	}
}

func (a *app) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			a.printf("lazytask %s\n", a.opts.Version)
			return nil
		},
	}
}
