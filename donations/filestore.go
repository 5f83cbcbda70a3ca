package donations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the donor log as a single JSON array on disk. The whole
// file is read and rewritten on every update.
type FileStore struct {
	path  string
	limit int

	mu sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, limit: MaxDonors}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) List(ctx context.Context) ([]Donor, error) {
	donors, err := s.load()
	if err != nil {
		return nil, err
	}

	return donors, nil
}

// Prepend records d as the newest donor. Updates are serialised within the
// process and land through a rename, so readers only ever see a complete
// array. A file that cannot be parsed is left alone.
func (s *FileStore) Prepend(ctx context.Context, d Donor) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	donors, err := s.load()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	donors = donors.Prepend(d, s.limit)

	data, err := json.MarshalIndent(donors, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	return nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (Log, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Log{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Log{}, nil
	}

	var donors Log
	if err := json.Unmarshal(data, &donors); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRead, s.path, err)
	}

	if donors == nil {
		donors = Log{}
	}

	return donors, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}

	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}
