package osalx

import (
	"io"
	"log/slog"

	"github.com/comalice/osalx/internal/diag"
)

// InitStreams binds the process-wide output and error streams. It succeeds
// at most once per process and must run before anything writes to them.
func InitStreams(out, err io.Writer) error {
	return diag.Init(out, err)
}

// InitStreamFiles opens (appending) and binds the two stream files.
func InitStreamFiles(outPath, errPath string) error {
	return diag.InitFiles(outPath, errPath)
}

// Stdout returns the process-wide output stream, binding os.Stdout if
// InitStreams was never called.
func Stdout() io.Writer { return diag.Out() }

// Stderr returns the process-wide error stream.
func Stderr() io.Writer { return diag.Err() }

// Logger returns the structured logger writing to Stderr.
func Logger() *slog.Logger { return diag.Logger() }

// SyncStreams flushes stream files to stable storage.
func SyncStreams() error { return diag.Sync() }
