package osalx

import (
	"errors"
	"io"

	"github.com/comalice/osalx/internal/primitives"
	"github.com/comalice/osalx/internal/production"
)

// LoadProfile reads and validates a YAML thread profile.
func LoadProfile(path string) (Profile, error) {
	return production.LoadProfile(path)
}

// DecodeProfile decodes and validates a YAML thread profile.
func DecodeProfile(r io.Reader) (Profile, error) {
	return production.DecodeProfile(r)
}

// FromConfig creates a thread configured by cfg. Options in opts apply
// after cfg and may override it.
func FromConfig(cfg ThreadConfig, routine Routine, opts ...Option) (*Thread, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewThread(routine, append([]Option{WithConfig(cfg)}, opts...)...)
}

// SpawnProfile creates and starts one thread per profile entry, running the
// routine registered under the entry's name. Either every thread starts or
// none is left: on failure, threads already started are terminated, joined
// and closed, so none stays in a registry, before the error is returned.
func SpawnProfile(p Profile, routines map[string]Routine, opts ...Option) ([]*Thread, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	for _, cfg := range p.Threads {
		if routines[cfg.Name] == nil {
			return nil, primitives.NewError(primitives.CodeInvalidArgument, "profile.spawn", "no routine for thread %q", cfg.Name)
		}
	}

	threads := make([]*Thread, 0, len(p.Threads))
	for _, cfg := range p.Threads {
		th, err := FromConfig(cfg, routines[cfg.Name], opts...)
		if err != nil {
			return nil, errors.Join(err, stopAll(threads))
		}
		if err := th.Start(); err != nil {
			return nil, errors.Join(err, th.Close(), stopAll(threads))
		}
		threads = append(threads, th)
	}
	return threads, nil
}

// stopAll terminates, joins and closes threads, collecting failures to
// terminate or close. Routine errors are not failures here.
func stopAll(threads []*Thread) error {
	var errs []error
	for _, th := range threads {
		if err := th.Terminate(); err != nil {
			errs = append(errs, err)
			continue
		}
		th.Join()
		if err := th.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
