// Package production provides production integrations: snapshot persistence,
// transition publishing, lifecycle visualization and profile loading.
// Implements core interfaces using stdlib where possible.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/osalx/internal/core"
	"github.com/comalice/osalx/internal/primitives"
)

// JSONPersister is a stdlib-only file-based persister using JSON serialization.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot core.ProcessSnapshot) error {
	fn, err := snapshotPath(p.dir, snapshot.Name, ".json")
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *JSONPersister) Load(ctx context.Context, name string) (core.ProcessSnapshot, error) {
	data, err := readSnapshot(p.dir, name, ".json")
	if err != nil {
		return core.ProcessSnapshot{}, err
	}
	var snapshot core.ProcessSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return core.ProcessSnapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	snapshot.Name = name
	return snapshot, nil
}

// YAMLPersister is a file-based persister using YAML serialization.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot core.ProcessSnapshot) error {
	fn, err := snapshotPath(p.dir, snapshot.Name, ".yaml")
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	if err := os.WriteFile(fn, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", fn, err)
	}
	return nil
}

func (p *YAMLPersister) Load(ctx context.Context, name string) (core.ProcessSnapshot, error) {
	data, err := readSnapshot(p.dir, name, ".yaml")
	if err != nil {
		return core.ProcessSnapshot{}, err
	}
	var snapshot core.ProcessSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return core.ProcessSnapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	snapshot.Name = name
	for _, ts := range snapshot.Threads {
		if !ts.State.Valid() {
			return core.ProcessSnapshot{}, fmt.Errorf("snapshot %q: thread %v has invalid state", name, ts.ID)
		}
	}
	return snapshot, nil
}

// snapshotPath rejects names that would escape dir.
func snapshotPath(dir, name, ext string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", primitives.NewError(primitives.CodeInvalidArgument, "snapshot.path", "invalid snapshot name %q", name)
	}
	return filepath.Join(dir, name+ext), nil
}

func readSnapshot(dir, name, ext string) ([]byte, error) {
	fn, err := snapshotPath(dir, name, ext)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("snapshot %q: %w", name, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return data, nil
}
