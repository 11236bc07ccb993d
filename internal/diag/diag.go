// Package diag owns the two process-wide diagnostic streams (standard and
// error output) and the structured logger written to the error stream.
//
// The streams are bound once, either explicitly with Init / InitFiles before
// first use or implicitly to os.Stdout / os.Stderr by the first Out, Err or
// Logger call. After binding they are read-only for the life of the process.
package diag

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/comalice/osalx/internal/primitives"
)

// LevelEnv names the environment variable that selects the log level.
const LevelEnv = "OSALX_LOG_LEVEL"

type streams struct {
	out    *lockedWriter
	err    *lockedWriter
	logger *slog.Logger
	files  []*os.File
}

var (
	mu    sync.Mutex
	bound *streams
)

// lockedWriter serialises writes so lines from different threads do not interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Init binds the standard and error streams. It fails with InvalidState if
// the streams are already bound.
func Init(out, errw io.Writer) error {
	if out == nil || errw == nil {
		return primitives.NewError(primitives.CodeInvalidArgument, "diag.init", "nil stream")
	}
	mu.Lock()
	defer mu.Unlock()
	if bound != nil {
		return primitives.NewError(primitives.CodeInvalidState, "diag.init", "streams already initialised")
	}
	bound = newStreams(out, errw)
	return nil
}

// InitFiles redirects the streams to files opened in append mode, creating
// them if needed. An empty path keeps the corresponding os stream.
func InitFiles(outPath, errPath string) error {
	var files []*os.File
	open := func(path string, fallback *os.File) (io.Writer, error) {
		if path == "" {
			return fallback, nil
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, primitives.WrapError(primitives.CodeInvalidArgument, "diag.init_files", err)
		}
		files = append(files, f)
		return f, nil
	}
	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	out, err := open(outPath, os.Stdout)
	if err != nil {
		return err
	}
	errw, err := open(errPath, os.Stderr)
	if err != nil {
		closeAll()
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if bound != nil {
		closeAll()
		return primitives.NewError(primitives.CodeInvalidState, "diag.init_files", "streams already initialised")
	}
	bound = newStreams(out, errw)
	bound.files = files
	return nil
}

func newStreams(out, errw io.Writer) *streams {
	s := &streams{
		out: &lockedWriter{w: out},
		err: &lockedWriter{w: errw},
	}
	s.logger = slog.New(slog.NewTextHandler(s.err, &slog.HandlerOptions{Level: levelFromEnv()}))
	return s
}

func current() *streams {
	mu.Lock()
	defer mu.Unlock()
	if bound == nil {
		bound = newStreams(os.Stdout, os.Stderr)
	}
	return bound
}

// Out returns the process-wide standard stream.
func Out() io.Writer { return current().out }

// Err returns the process-wide error stream.
func Err() io.Writer { return current().err }

// Logger returns the structured logger writing to the error stream.
func Logger() *slog.Logger { return current().logger }

// Sync flushes any file-backed streams to stable storage.
func Sync() error {
	s := current()
	for _, f := range s.files {
		if err := f.Sync(); err != nil {
			return err
		}
	}
	return nil
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv(LevelEnv)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// reset unbinds the streams. Tests only.
func reset() {
	mu.Lock()
	defer mu.Unlock()
	if bound != nil {
		for _, f := range bound.files {
			f.Close()
		}
	}
	bound = nil
}
