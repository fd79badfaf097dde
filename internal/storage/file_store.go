package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// FileStore implements DocumentStore using the local filesystem.
//
// With a base path every reference must be a local path under it; the store opens
// the base as an os.Root so neither ".." nor symlinks can reach outside. Without a
// base path references are plain paths relative to the working directory.
type FileStore struct {
	basePath string
	root     *os.Root
	mu       sync.RWMutex
}

// NewFileStore creates a FileStore rooted at basePath. An empty basePath leaves
// references unconfined.
func NewFileStore(basePath string) (*FileStore, error) {
	s := &FileStore{basePath: basePath}
	if basePath == "" {
		return s, nil
	}

	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open base directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("base path %s is not a directory", basePath)
	}

	root, err := os.OpenRoot(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open base directory: %w", err)
	}
	s.root = root
	return s, nil
}

func (s *FileStore) Close(ctx context.Context) error {
	if s.root == nil {
		return nil
	}
	return s.root.Close()
}

// name validates ref and returns the path the store operates on.
func (s *FileStore) name(ref string) (string, error) {
	if s.root == nil {
		return ref, nil
	}
	if !filepath.IsLocal(ref) {
		return "", fmt.Errorf("%w: %q is not a relative path inside %s", ErrInvalidRef, ref, s.basePath)
	}
	return filepath.Clean(ref), nil
}

func (s *FileStore) readFile(name string) ([]byte, error) {
	if s.root != nil {
		return s.root.ReadFile(name)
	}
	return os.ReadFile(name)
}

func (s *FileStore) create(name string) (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if s.root != nil {
		return s.root.OpenFile(name, flags, 0644)
	}
	return os.OpenFile(name, flags, 0644)
}

func (s *FileStore) remove(name string) error {
	if s.root != nil {
		return s.root.Remove(name)
	}
	return os.Remove(name)
}

func (s *FileStore) rename(from, to string) error {
	if s.root != nil {
		return s.root.Rename(from, to)
	}
	return os.Rename(from, to)
}

// ReadDocument returns the raw bytes of the file at ref.
func (s *FileStore) ReadDocument(ctx context.Context, ref string) ([]byte, error) {
	name, err := s.name(ref)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := s.readFile(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDocumentNotFound, ref)
		}
		return nil, err
	}
	return data, nil
}

// WriteDocument replaces the file at ref. The data goes to a temp file in the same
// directory first, so a failed write never leaves a partial document behind. New
// files are created with mode 0644 filtered by the process umask.
func (s *FileStore) WriteDocument(ctx context.Context, ref string, data []byte) error {
	name, err := s.name(ref)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmpName := filepath.Join(filepath.Dir(name), "."+filepath.Base(name)+"."+uuid.NewString()+".tmp")
	tmp, err := s.create(tmpName)
	if err != nil {
		return err
	}
	defer s.remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return s.rename(tmpName, name)
}
