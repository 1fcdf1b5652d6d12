// Package cache persists small JSON documents (last-known-good readings,
// sample history) between runs of the deck-scripts programs.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Store keeps one JSON file per key in a flat directory:
//
//	~/.cache/deck-scripts/
//	  bandwidth.json
//	  bandwidth_history.json
//
// Entries never expire. An entry that no longer decodes is dropped and
// reads as absent, so a bad write costs one sample instead of the program.
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore opens the store at dir, creating it with 0700 permissions.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file that holds key.
func (s *Store) Path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Load decodes the entry for key into v and reports whether one was found.
// A missing entry is (false, nil). An entry that is not valid JSON for v is
// removed and also reported as (false, nil); only I/O failures are errors.
func (s *Store) Load(key string, v any) (bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: read %s: %w", key, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("cache: dropping undecodable entry", "key", key, "error", err)
		_ = os.Remove(s.Path(key))
		return false, nil
	}
	return true, nil
}

// Save replaces the entry for key with v. Readers see either the previous
// entry or the new one, never a partial file.
func (s *Store) Save(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("cache: marshal %s: %w", key, err)
	}
	if err := writeFileAtomic(s.Path(key), data, 0600); err != nil {
		return fmt.Errorf("cache: save %s: %w", key, err)
	}
	return nil
}

// Age returns the time since key was last saved, or 0 if it does not exist.
func (s *Store) Age(key string) time.Duration {
	info, err := os.Stat(s.Path(key))
	if err != nil {
		return 0
	}
	return time.Since(info.ModTime())
}

// writeFileAtomic writes data to a temp file beside path and renames it into
// place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
