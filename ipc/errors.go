package ipc

import (
	"context"
	"errors"
	"io"
	"net"
	"os"

	"github.com/comalice/osalx/internal/primitives"
)

// wrap classifies an OS or network error.
func wrap(op string, err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	var pe *primitives.Error
	if errors.As(err, &pe) {
		return err
	}
	code := primitives.CodeResourceExhausted
	var ne net.Error
	var ae *net.AddrError
	var ue net.UnknownNetworkError
	switch {
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		code = primitives.CodeTimeout
	case errors.As(err, &ne) && ne.Timeout():
		code = primitives.CodeTimeout
	case errors.Is(err, net.ErrClosed), errors.Is(err, os.ErrClosed):
		code = primitives.CodeInvalidState
	case errors.As(err, &ae), errors.As(err, &ue):
		code = primitives.CodeInvalidArgument
	}
	return primitives.WrapError(code, op, err)
}
