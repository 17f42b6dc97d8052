package intake

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// LocalStorage keeps uploads in a directory on disk.
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates a LocalStorage rooted at dir. The directory is
// created on first save.
func NewLocalStorage(dir string) *LocalStorage {
	if dir == "" {
		dir = "uploads"
	}
	return &LocalStorage{dir: dir}
}

// Dir returns the storage root.
func (s *LocalStorage) Dir() string {
	return s.dir
}

func (s *LocalStorage) Save(ctx context.Context, key string, body io.Reader) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "local storage: create %s", s.dir)
	}
	path := filepath.Join(s.dir, key)

	f, err := os.Create(path)
	if err != nil {
		return "", eris.Wrapf(err, "local storage: create %s", path)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return "", eris.Wrapf(err, "local storage: write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", eris.Wrapf(err, "local storage: close %s", path)
	}
	return path, nil
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	path := filepath.Join(s.dir, key)
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "local storage: open %s", path)
	}
	return f, nil
}
