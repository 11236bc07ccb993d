package production

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/comalice/osalx/internal/primitives"
)

// LoadProfile reads and validates a YAML thread profile from path.
func LoadProfile(path string) (primitives.Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return primitives.Profile{}, fmt.Errorf("open profile %s: %w", path, err)
	}
	defer f.Close()
	return DecodeProfile(f)
}

// DecodeProfile decodes a YAML thread profile and validates it. Unknown
// fields are rejected.
func DecodeProfile(r io.Reader) (primitives.Profile, error) {
	var p primitives.Profile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return primitives.Profile{}, primitives.NewError(primitives.CodeInvalidArgument, "profile.decode", "empty profile")
		}
		return primitives.Profile{}, primitives.WrapError(primitives.CodeInvalidArgument, "profile.decode", err)
	}
	if err := p.Validate(); err != nil {
		return primitives.Profile{}, err
	}
	return p, nil
}

// EncodeProfile writes p as YAML after validating it.
func EncodeProfile(w io.Writer, p primitives.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
