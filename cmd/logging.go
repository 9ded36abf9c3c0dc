package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LogDestination is where log output goes; never the terminal the TUI draws on
type LogDestination int

const (
	LogToFile LogDestination = iota
	LogToStderr
)

const logBufferSize = 1000

// determineLogDestination picks the log target for an operating system. File paths are
// returned with a leading "~" for the home directory.
func determineLogDestination(goos string) (LogDestination, string) {
	switch goos {
	case "linux":
		return LogToFile, "~/" + cfgFilePath + "debug.log"
	case "darwin":
		return LogToFile, "~/Library/Logs/heroes.log"
	default:
		return LogToStderr, ""
	}
}

func expandHome(path, home string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// setupLogging points the default logger at the destination for goos and returns a
// closer that flushes pending log lines
func setupLogging(goos string) (io.Closer, error) {
	dest, path := determineLogDestination(goos)
	if dest == LogToStderr {
		log.SetOutput(os.Stderr)
		return closerFunc(func() error { return nil }), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cmd.setupLogging(): %w", err)
	}

	path = expandHome(path, home)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("cmd.setupLogging(): %w", err)
	}

	// Truncate on start to prevent unbounded growth
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gomnd
	if err != nil {
		return nil, fmt.Errorf("cmd.setupLogging(): %w", err)
	}

	// Use async writer to prevent log I/O from blocking the UI
	aw := newAsyncWriter(f, logBufferSize)
	log.SetOutput(aw)

	return closerFunc(func() error {
		aw.Close() //nolint:errcheck
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

// asyncWriter wraps an io.Writer and writes asynchronously via a channel
type asyncWriter struct {
	mu     sync.Mutex
	out    chan []byte
	done   chan struct{}
	closed bool
}

func newAsyncWriter(w io.Writer, bufferSize int) *asyncWriter {
	aw := &asyncWriter{
		out:  make(chan []byte, bufferSize),
		done: make(chan struct{}),
	}

	// Start background goroutine to write logs
	go func() {
		for msg := range aw.out {
			w.Write(msg) //nolint:errcheck
		}
		close(aw.done)
	}()

	return aw
}

func (aw *asyncWriter) Write(p []byte) (n int, err error) {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	if aw.closed {
		return 0, os.ErrClosed
	}

	// Make a copy since the caller might reuse the buffer
	msg := make([]byte, len(p))
	copy(msg, p)

	// Non-blocking send - if buffer is full, drop the message
	select {
	case aw.out <- msg:
	default:
	}
	return len(p), nil
}

func (aw *asyncWriter) Close() error {
	aw.mu.Lock()
	if aw.closed {
		aw.mu.Unlock()
		return nil
	}
	aw.closed = true
	close(aw.out)
	aw.mu.Unlock()

	<-aw.done // Wait for goroutine to finish
	return nil
}
