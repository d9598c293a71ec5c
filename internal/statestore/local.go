package statestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/TomBombadyl/nvidia-blog-agent/internal/domain"
)

// LocalFile implements Store against a single file on disk. Save writes to
// a sibling temp file and renames it into place so readers never observe a
// partially written state; rename is atomic on the same filesystem.
type LocalFile struct {
	Path string
}

// NewLocalFile returns a LocalFile store rooted at path.
func NewLocalFile(path string) *LocalFile {
	return &LocalFile{Path: path}
}

// Load returns the empty state if the file does not exist yet.
func (l *LocalFile) Load(ctx context.Context) (domain.State, error) {
	data, err := os.ReadFile(l.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewState(), nil
		}
		return domain.State{}, fmt.Errorf("read state file: %w", err)
	}
	return decodeState(data)
}

// Save writes state to a temp file in the same directory, then renames it
// over the target path.
func (l *LocalFile) Save(ctx context.Context, state domain.State) error {
	data, err := encodeState(state)
	if err != nil {
		return err
	}

	dir := filepath.Dir(l.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, l.Path); err != nil {
		return fmt.Errorf("rename temp state file into place: %w", err)
	}
	return nil
}
