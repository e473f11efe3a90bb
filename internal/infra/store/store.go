// Package store persists one versioned JSON record per pipeline stage.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrRecordNotFound is returned when a stage has no persisted record yet.
var ErrRecordNotFound = errors.New("stage record not found")

// Store is the durable artifact store for stage records. A record is
// immutable once written and superseded, never edited, by the next run.
type Store struct {
	fs  afero.Fs
	dir string
}

// New creates a store rooted at dir.
func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string { return s.dir }

// WriteRecord marshals v and atomically replaces the named stage record.
// The new content is written to a temp file, fsynced, then renamed over the
// old record, so a crash mid-write never exposes a half-written record.
func (s *Store) WriteRecord(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	data = append(data, '\n')

	path := filepath.Join(s.dir, name)
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, s.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp record: %w", err)
	}
	tmpPath := tmp.Name()
	defer s.fs.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp record: %w", err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace record %s: %w", name, err)
	}
	return nil
}

// ReadRecord unmarshals the named stage record into v.
func (s *Store) ReadRecord(name string, v any) error {
	path := filepath.Join(s.dir, name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if errors.Is(err, afero.ErrFileNotFound) || isNotExist(err) {
			return fmt.Errorf("%s: %w", name, ErrRecordNotFound)
		}
		return fmt.Errorf("read record %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse record %s: %w", name, err)
	}
	return nil
}

// ReadOptional unmarshals the named record if it exists. It reports whether
// a record was found; a missing record is not an error.
func (s *Store) ReadOptional(name string, v any) (bool, error) {
	err := s.ReadRecord(name, v)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// Exists reports whether a record has been written for the stage.
func (s *Store) Exists(name string) bool {
	ok, err := afero.Exists(s.fs, filepath.Join(s.dir, name))
	return err == nil && ok
}

func isNotExist(err error) bool {
	return errors.Is(err, os.ErrNotExist)
}
