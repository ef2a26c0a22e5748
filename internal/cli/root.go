// Package cli wires the lazytask commands onto cobra. Every mutating command
// goes through the same selection and bulk packages as the dashboard.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/lazytask/internal/bulk"
	"github.com/sandeepkv93/lazytask/internal/config"
	"github.com/sandeepkv93/lazytask/internal/logging"
	"github.com/sandeepkv93/lazytask/internal/storage"
	"github.com/sandeepkv93/lazytask/internal/terminal"
)

type Options struct {
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Version string
	// Now defaults to time.Now.
	Now func() time.Time
	// RunProgram runs the dashboard. It defaults to a bubbletea program.
	RunProgram func(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) error
	// Interactive reports whether stdout is a terminal. It defaults to a TTY
	// check on os.Stdout.
	Interactive func() bool
}

type flags struct {
	configPath string
	dataFile   string
	backend    string
	ui         string
}

type app struct {
	opts  Options
	flags flags
	stdin *bufio.Reader
}

// session is one opened store plus the settings it was opened with.
type session struct {
	cfg    config.Config
	log    *logging.Logger
	store  storage.Store
	engine *bulk.Engine
}

func NewRootCommand(opts Options) *cobra.Command {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RunProgram == nil {
		opts.RunProgram = runProgram
	}
	if opts.Interactive == nil {
		opts.Interactive = func() bool { return terminal.Interactive(os.Stdout) }
	}
	a := &app{opts: opts, stdin: bufio.NewReader(opts.Stdin)}

	root := &cobra.Command{
		Use:           "lazytask",
		Short:         "A personal task tracker with a terminal dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDashboard(cmd.Context())
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "path to config TOML")
	pf.StringVar(&a.flags.dataFile, "data-file", "", "path to the task data file")
	pf.StringVar(&a.flags.backend, "backend", "", "storage backend: json or sqlite")
	pf.StringVar(&a.flags.ui, "ui", "", "renderer: styled or plain")

	root.AddCommand(
		a.dashboardCommand(),
		a.listCommand(),
		a.addCommand(),
		a.updateCommand(),
		a.deleteCommand(),
		a.markCommand(),
		a.exportCommand(),
		a.importCommand(),
		a.statsCommand(),
		a.versionCommand(),
	)
	return root
}

func runProgram(ctx context.Context, m tea.Model, opts ...tea.ProgramOption) error {
	opts = append(opts, tea.WithContext(ctx))
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// loadConfig resolves file, environment and flag settings in that order.
func (a *app) loadConfig() (config.Config, error) {
	path := strings.TrimSpace(a.flags.configPath)
	if path == "" {
		if env := strings.TrimSpace(os.Getenv("LAZYTASK_CONFIG")); env != "" {
			path = env
		} else if def, err := config.DefaultPath(); err == nil {
			path = def
		}
	}
	cfg, err := config.Load(path, config.Default())
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", path, err)
	}
	cfg = config.FromEnv(cfg)
	if v := strings.TrimSpace(a.flags.dataFile); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(a.flags.backend); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(a.flags.ui); v != "" {
		cfg.UI.Renderer = strings.ToLower(v)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// open loads config, starts logging and opens the store. The returned close
// function releases both.
func (a *app) open() (*session, func(), error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(a.opts.Stderr, logging.Options{Level: cfg.Logging.Level, File: cfg.Logging.File})
	if err != nil {
		return nil, nil, fmt.Errorf("configure logger: %w", err)
	}
	store, err := storage.Open(cfg.Storage.Backend, cfg.Storage.Path)
	if err != nil {
		logger.Error("storage open failed", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path, "err", err)
		_ = logger.Close()
		return nil, nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}
	logger.Debug("storage opened", "backend", cfg.Storage.Backend, "path", cfg.Storage.Path)

	s := &session{
		cfg:    cfg,
		log:    logger,
		store:  store,
		engine: bulk.NewEngine(store, a.opts.Now),
	}
	closeFn := func() {
		if err := store.Close(); err != nil {
			logger.Warn("storage close failed", "path", cfg.Storage.Path, "err", err)
		}
		if err := logger.Close(); err != nil {
			_, _ = fmt.Fprintf(a.opts.Stderr, "warning: close log sink: %v\n", err)
		}
	}
	return s, closeFn, nil
}

func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.opts.Stdout, format, args...)
}

// confirm asks a yes/no question on stdout and reads the answer from stdin.
// End of input counts as no.
func (a *app) confirm(question string) bool {
	a.printf("%s [y/N]: ", question)
	line, err := a.stdin.ReadString('\n')
	if err != nil && line == "" {
		a.printf("\n")
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
