// Package terminal keeps the controlling terminal usable on every exit path.
package terminal

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/sandeepkv93/lazytask/internal/logging"
)

// Interactive reports whether f is attached to a terminal.
func Interactive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Guard restores the terminal mode captured at startup. Restore is safe to
// call any number of times, from any goroutine.
type Guard struct {
	fd    int
	state *term.State
	log   *logging.Logger

	once sync.Once
	err  error
}

// Capture records the mode of the terminal behind fd. A descriptor that is
// not a terminal yields a guard whose Restore does nothing.
func Capture(fd int, log *logging.Logger) (*Guard, error) {
	if log == nil {
		log = logging.Discard()
	}
	g := &Guard{fd: fd, log: log}
	if !term.IsTerminal(fd) {
		return g, nil
	}
	state, err := term.GetState(fd)
	if err != nil {
		return nil, err
	}
	g.state = state
	return g, nil
}

func (g *Guard) Restore() error {
	g.once.Do(func() {
		if g.state == nil {
			return
		}
		g.err = term.Restore(g.fd, g.state)
		if g.err != nil {
			g.log.Error("terminal restore failed", "err", g.err)
			return
		}
		g.log.Debug("terminal restored")
	})
	return g.err
}

// NotifyContext returns a context cancelled on SIGINT or SIGTERM. The
// terminal is restored before the context is cancelled. Call stop to release
// the signal handler.
func (g *Guard) NotifyContext(parent context.Context) (ctx context.Context, stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	ctx, cancel := g.watch(parent, ch)
	return ctx, func() {
		signal.Stop(ch)
		cancel()
	}
}

func (g *Guard) watch(parent context.Context, signals <-chan os.Signal) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case sig := <-signals:
			g.log.Warn("signal received", "signal", sig.String())
			_ = g.Restore()
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
