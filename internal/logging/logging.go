// Package logging fans structured log events out to a styled console sink
// and an optional logfmt file sink.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	charmLog "github.com/charmbracelet/log"
)

const appName = "lazytask"

type Options struct {
	Level string
	// File, when set, receives every event in logfmt.
	File string
}

type Logger struct {
	sinks          []*charmLog.Logger
	consoleSink    *charmLog.Logger
	consoleEnabled bool
	closeFile      func() error
	filePath       string
}

func New(stderr io.Writer, opts Options) (*Logger, error) {
	raw := strings.TrimSpace(opts.Level)
	if raw == "" {
		raw = "info"
	}
	level, err := charmLog.ParseLevel(raw)
	if err != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", opts.Level, err)
	}
	if stderr == nil {
		stderr = io.Discard
	}

	console := charmLog.NewWithOptions(stderr, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Formatter:       charmLog.TextFormatter,
	})
	l := &Logger{
		sinks:          []*charmLog.Logger{console},
		consoleSink:    console,
		consoleEnabled: true,
	}

	path := strings.TrimSpace(opts.File)
	if path == "" {
		return l, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	fileSink := charmLog.NewWithOptions(file, charmLog.Options{
		Level:           level,
		Prefix:          appName,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Formatter:       charmLog.LogfmtFormatter,
	})
	l.sinks = append(l.sinks, fileSink)
	l.closeFile = file.Close
	l.filePath = path
	return l, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l, _ := New(io.Discard, Options{Level: "error"})
	l.consoleEnabled = false
	return l
}

func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}

func (l *Logger) Close() error {
	if l == nil || l.closeFile == nil {
		return nil
	}
	return l.closeFile()
}

// SetConsoleEnabled toggles the console sink; the dashboard turns it off
// while it owns the screen.
func (l *Logger) SetConsoleEnabled(enabled bool) {
	if l == nil {
		return
	}
	l.consoleEnabled = enabled
}

func (l *Logger) shouldLogToSink(sink *charmLog.Logger) bool {
	if sink == nil {
		return false
	}
	return sink != l.consoleSink || l.consoleEnabled
}

func (l *Logger) emit(fn func(*charmLog.Logger)) {
	if l == nil {
		return
	}
	for _, sink := range l.sinks {
		if l.shouldLogToSink(sink) {
			fn(sink)
		}
	}
}

func (l *Logger) Debug(msg string, keyvals ...any) {
	l.emit(func(s *charmLog.Logger) { s.Debug(msg, keyvals...) })
}

func (l *Logger) Info(msg string, keyvals ...any) {
	l.emit(func(s *charmLog.Logger) { s.Info(msg, keyvals...) })
}

func (l *Logger) Warn(msg string, keyvals ...any) {
	l.emit(func(s *charmLog.Logger) { s.Warn(msg, keyvals...) })
}

func (l *Logger) Error(msg string, keyvals ...any) {
	l.emit(func(s *charmLog.Logger) { s.Error(msg, keyvals...) })
}
