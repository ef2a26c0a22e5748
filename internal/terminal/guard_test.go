package terminal

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func tempFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "not-a-tty"))
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestInteractiveFalseForFiles(t *testing.T) {
	if Interactive(tempFile(t)) {
		t.Fatal("expected regular file to be non-interactive")
	}
	if Interactive(nil) {
		t.Fatal("expected nil file to be non-interactive")
	}
}

func TestCaptureNonTerminalRestoreIsNoop(t *testing.T) {
	g, err := Capture(int(tempFile(t).Fd()), nil)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := g.Restore(); err != nil {
		t.Fatalf("expected nil restore error, got %v", err)
	}
	if err := g.Restore(); err != nil {
		t.Fatalf("expected repeated restore to succeed, got %v", err)
	}
}

func TestSignalCancelsContext(t *testing.T) {
	g, err := Capture(int(tempFile(t).Fd()), nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	signals := make(chan os.Signal, 1)
	ctx, cancel := g.watch(context.Background(), signals)
	defer cancel()

	signals <- syscall.SIGTERM
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected context cancelled after signal")
	}
}

func TestStopReleasesWatcher(t *testing.T) {
	g, err := Capture(int(tempFile(t).Fd()), nil)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	ctx, stop := g.NotifyContext(context.Background())
	stop()
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("expected context done after stop")
	}
}
