// Package modelstore persists trained vocabulary models.
package modelstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/okian/skillmatch/internal/domain/retrain"
	"github.com/okian/skillmatch/internal/domain/vocab"
)

// DefaultPath is where FileStore keeps the artifact unless told otherwise.
const DefaultPath = "data/model.json"

var _ retrain.ModelStore = (*FileStore)(nil)

// FileStore keeps the model artifact in a single JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore writing to path.
func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultPath
	}
	return &FileStore{path: path}
}

// Path returns the artifact location.
func (s *FileStore) Path() string { return s.path }

// Save writes the artifact next to its destination and renames it into place,
// so a crash never leaves a half-written model behind.
func (s *FileStore) Save(ctx context.Context, m *vocab.Model) error {
	const op = "modelstore.file.save"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	if err := m.Encode(&buf); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after rename

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load reads the artifact. A missing file yields retrain.ErrNoArtifact.
func (s *FileStore) Load(ctx context.Context) (*vocab.Model, error) {
	const op = "modelstore.file.load"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	f, err := os.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, retrain.ErrNoArtifact
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	m, err := vocab.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, s.path, err)
	}
	return m, nil
}
