package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/quiverhq/quiver/packages/model"
)

// ErrNotFound is returned when no collection exists for the given id.
var ErrNotFound = errors.New("collection not found")

// Store is the collection persistence contract the engine consumes.
type Store interface {
	// Get returns the collection rooted at the given workspace id.
	Get(id string) (*model.Collection, error)
	// GetAll returns every stored collection keyed by workspace id.
	GetAll() (map[string]*model.Collection, error)
	// Save writes the full collection structure. Saving the same structure
	// twice is a no-op at the data level.
	Save(id string, col *model.Collection) error
	// Update runs fn inside a read-modify-write transaction: the collection
	// is loaded, fn mutates it, and the result is written back atomically
	// with respect to other Update/Save calls on this store.
	Update(id string, fn func(*model.Collection) error) error
	// Delete removes the collection. Deleting a missing id is not an error.
	Delete(id string) error
}

// FileStore keeps one <workspace-id>.json file per collection in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore opens (creating if needed) a file store rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Get(id string) (*model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked(id)
}

func (s *FileStore) GetAll() (map[string]*model.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}

	all := make(map[string]*model.Collection)
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		id := strings.TrimSuffix(name, ".json")
		col, err := s.readLocked(id)
		if err != nil {
			// A corrupt sibling file should not hide the rest of the store.
			continue
		}
		all[id] = col
	}
	return all, nil
}

func (s *FileStore) Save(id string, col *model.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(id, col)
}

func (s *FileStore) Update(id string, fn func(*model.Collection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.readLocked(id)
	if err != nil {
		return err
	}
	if err := fn(col); err != nil {
		return err
	}
	return s.writeLocked(id, col)
}

func (s *FileStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete collection %s: %w", id, err)
	}
	return nil
}

func (s *FileStore) readLocked(id string) (*model.Collection, error) {
	path, err := s.path(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("read collection %s: %w", id, err)
	}

	var col model.Collection
	if err := json.Unmarshal(data, &col); err != nil {
		return nil, fmt.Errorf("parse collection %s: %w", id, err)
	}
	return &col, nil
}

func (s *FileStore) writeLocked(id string, col *model.Collection) error {
	path, err := s.path(id)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(col, "", "  ")
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", id, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write collection %s: %w", id, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace collection %s: %w", id, err)
	}
	return nil
}

// path rejects ids that would escape the store directory.
func (s *FileStore) path(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("invalid collection id: %q", id)
	}
	return filepath.Join(s.dir, id+".json"), nil
}
