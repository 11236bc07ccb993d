package ipc

import (
	"errors"
	"io"
	"os"
	"time"
)

// Pipe is an anonymous, unidirectional OS pipe.
type Pipe struct {
	r *os.File
	w *os.File
}

// NewPipe creates a pipe.
func NewPipe() (*Pipe, error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, wrap("pipe.create", err)
	}
	return &Pipe{r: r, w: w}, nil
}

// Read reads from the read end. It returns io.EOF once the write end is
// closed and the pipe is drained.
func (p *Pipe) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	return n, wrap("pipe.read", err)
}

// Write writes to the write end.
func (p *Pipe) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	return n, wrap("pipe.write", err)
}

// SetReadDeadline bounds pending and future Reads. A zero t clears it.
func (p *Pipe) SetReadDeadline(t time.Time) error {
	return wrap("pipe.deadline", p.r.SetReadDeadline(t))
}

// CloseWrite closes the write end, signalling EOF to the reader.
func (p *Pipe) CloseWrite() error {
	return wrap("pipe.close", p.w.Close())
}

// Close closes both ends.
func (p *Pipe) Close() error {
	werr := p.w.Close()
	if errors.Is(werr, os.ErrClosed) {
		werr = nil
	}
	return wrap("pipe.close", errors.Join(p.r.Close(), werr))
}

// Reader returns the read end for use with io helpers.
func (p *Pipe) Reader() io.ReadCloser { return p.r }

// Writer returns the write end for use with io helpers.
func (p *Pipe) Writer() io.WriteCloser { return p.w }
