package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goalkeeperkaa-ctrl/Kinozritel-main4/internal/models"
	"go.uber.org/zap"
)

// FileStore keeps the collection in a single JSON file. Serialization is
// process-local only: running several instances against the same file is an
// unsupported deployment.
type FileStore struct {
	path string
	log  *zap.SugaredLogger
	mu   sync.Mutex
}

// NewFileStore creates the data file (as an empty collection) if it does
// not exist yet.
func NewFileStore(path string, log *zap.SugaredLogger) (*FileStore, error) {
	s := &FileStore{path: path, log: log}
	if err := s.ensure(); err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	log.Infow("file store ready", "path", path)
	return s, nil
}

func (s *FileStore) ensure() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	empty, err := encodeCollection(&Collection{})
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, empty, 0o644)
}

func (s *FileStore) load() (*Collection, error) {
	if err := s.ensure(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	return decodeCollection(raw), nil
}

func (s *FileStore) ReadAll(ctx context.Context) ([]models.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return nil, err
	}
	return c.Applications, nil
}

func (s *FileStore) Mutate(ctx context.Context, fn func(*Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}

	encoded, err := encodeCollection(c)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := os.WriteFile(s.path, encoded, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
