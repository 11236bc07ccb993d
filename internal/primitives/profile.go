package primitives

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// ProfileMajor is the profile schema major version this module understands.
const ProfileMajor = "v1"

// ThreadConfig is the declarative configuration of one thread.
type ThreadConfig struct {
	Name      string   `json:"name" yaml:"name"`
	Priority  Priority `json:"priority" yaml:"priority"`
	StackSize int      `json:"stackSize,omitempty" yaml:"stackSize,omitempty"`
}

// Validate checks a single thread configuration.
// A zero StackSize means "platform default".
func (c *ThreadConfig) Validate() error {
	if c.Name == "" {
		return NewError(CodeInvalidArgument, "config.validate", "thread name is required")
	}
	if !c.Priority.Valid() {
		return NewError(CodeInvalidArgument, "config.validate", "thread %q: invalid priority %d", c.Name, int8(c.Priority))
	}
	if c.StackSize < 0 {
		return NewError(CodeInvalidArgument, "config.validate", "thread %q: negative stack size %d", c.Name, c.StackSize)
	}
	return nil
}

// Profile is a versioned set of thread configurations.
type Profile struct {
	Version string         `json:"version" yaml:"version"`
	Threads []ThreadConfig `json:"threads" yaml:"threads"`
}

// Validate checks the profile version and every thread entry:
// - Version is a valid semantic version with major ProfileMajor
// - Thread names are unique
// - Each thread validates
func (p *Profile) Validate() error {
	if !semver.IsValid(p.Version) {
		return NewError(CodeInvalidArgument, "profile.validate", "invalid version %q", p.Version)
	}
	if major := semver.Major(p.Version); major != ProfileMajor {
		return NewError(CodeInvalidArgument, "profile.validate", "unsupported version %s (want %s.x.y)", p.Version, ProfileMajor)
	}
	seen := make(map[string]bool, len(p.Threads))
	for i := range p.Threads {
		tc := &p.Threads[i]
		if err := tc.Validate(); err != nil {
			return fmt.Errorf("thread %d: %w", i, err)
		}
		if seen[tc.Name] {
			return NewError(CodeInvalidArgument, "profile.validate", "duplicate thread name %q", tc.Name)
		}
		seen[tc.Name] = true
	}
	return nil
}

// Lookup returns the configuration for the named thread.
func (p *Profile) Lookup(name string) (ThreadConfig, bool) {
	for _, tc := range p.Threads {
		if tc.Name == name {
			return tc, true
		}
	}
	return ThreadConfig{}, false
}
