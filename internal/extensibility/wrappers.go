package extensibility

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/comalice/osalx/internal/core"
)

// WithLogging wraps a routine and logs around its execution.
func WithLogging(logger *slog.Logger, inner core.Routine) core.Routine {
	return func(t *core.Thread, arg any) error {
		logger.Info("routine starting", "thread", t.ID(), "name", t.Name())
		start := time.Now()
		err := inner(t, arg)
		if err != nil {
			logger.Error("routine failed", "thread", t.ID(), "name", t.Name(), "elapsed", time.Since(start), "err", err)
		} else {
			logger.Info("routine finished", "thread", t.ID(), "name", t.Name(), "elapsed", time.Since(start))
		}
		return err
	}
}

// PanicError carries a panic recovered by Recover.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("routine panicked: %v", e.Value)
}

// Recover wraps a routine so a panic is returned as a *PanicError with the
// stack captured at the panic site.
func Recover(inner core.Routine) core.Routine {
	return func(t *core.Thread, arg any) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &PanicError{Value: r, Stack: debug.Stack()}
			}
		}()
		return inner(t, arg)
	}
}
