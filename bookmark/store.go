package bookmark

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/yhkl-dev/lofi/domain"
	"github.com/yhkl-dev/lofi/library"
)

// FileName is the bookmark list inside the data directory
const FileName = "bookmarks.txt"

// Store is a bookmark list persisted as a headerless track list.
// Every mutation rewrites the whole file.
type Store struct {
	fs    afero.Fs
	path  string
	mu    sync.RWMutex
	items []domain.TrackRef
}

// Open loads the bookmark file at path. A missing file is an empty store.
func Open(fs afero.Fs, path string) (*Store, error) {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	s := &Store{fs: fs, path: path}

	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read bookmarks %s", path)
	}

	list, err := library.Parse(path, bytes.NewReader(data))
	if err != nil {
		var pe *domain.ParseError
		if errors.As(err, &pe) && pe.Err == nil {
			// header only or empty: nothing bookmarked yet
			return s, nil
		}
		return nil, err
	}
	s.items = list.Tracks
	return s, nil
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Add bookmarks ref. Adding a locator twice is a no-op.
func (s *Store) Add(ref domain.TrackRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(ref.Locator) >= 0 {
		return nil
	}
	s.items = append(s.items, ref)
	if err := s.saveLocked(); err != nil {
		s.items = s.items[:len(s.items)-1]
		return err
	}
	return nil
}

// Remove deletes the bookmark for locator if there is one
func (s *Store) Remove(locator string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(locator)
	if i < 0 {
		return nil
	}
	old := s.items
	s.items = append(append([]domain.TrackRef(nil), old[:i]...), old[i+1:]...)
	if err := s.saveLocked(); err != nil {
		s.items = old
		return err
	}
	return nil
}

// Toggle adds or removes ref and reports whether it is now bookmarked
func (s *Store) Toggle(ref domain.TrackRef) (bool, error) {
	if s.Contains(ref.Locator) {
		return false, s.Remove(ref.Locator)
	}
	return true, s.Add(ref)
}

// Contains reports whether locator is bookmarked
func (s *Store) Contains(locator string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexLocked(locator) >= 0
}

// List returns the bookmarks in the order they were added
func (s *Store) List() []domain.TrackRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.TrackRef(nil), s.items...)
}

func (s *Store) indexLocked(locator string) int {
	for i, ref := range s.items {
		if ref.Locator == locator {
			return i
		}
	}
	return -1
}

// saveLocked writes to a temp file in the same directory and renames it over
// the old one so a crash never leaves a truncated list
func (s *Store) saveLocked() error {
	var buf bytes.Buffer
	buf.WriteString(library.NoHeader + "\n")
	for _, ref := range s.items {
		buf.WriteString(library.FormatEntry(ref) + "\n")
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create bookmark directory")
	}
	tmp, err := afero.TempFile(s.fs, dir, ".bookmarks-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temp file")
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		s.fs.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write bookmarks")
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmp.Name())
		return errors.Wrap(err, "failed to write bookmarks")
	}
	if err := s.fs.Rename(tmp.Name(), s.path); err != nil {
		s.fs.Remove(tmp.Name())
		return errors.Wrap(err, "failed to replace bookmarks")
	}
	return nil
}
