// Package session persists the tag table of the most recent run so that a
// later invocation can resolve a tag without re-running the command.
//
// Only one session is kept: every Save replaces the file. Concurrent runs
// race on the file and the last writer wins.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"eer/internal/index"
)

// DefaultFile is the session file name under the home directory.
const DefaultFile = ".last_err"

var (
	// ErrMalformed reports a session file that cannot be used.
	ErrMalformed = errors.New("malformed session file")
	// ErrNotFound reports a missing session file. It wraps ErrMalformed.
	ErrNotFound = fmt.Errorf("%w: no session file", ErrMalformed)
)

// Store reads and writes the session file.
type Store struct {
	path   string
	format Format
}

// NewStore returns a Store for path; "~/" is expanded.
func NewStore(path string, format Format) *Store {
	return &Store{path: ExpandHome(path), format: format}
}

// ExpandHome replaces a leading "~" with the home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
}

// Path returns the session file location.
func (s *Store) Path() string {
	return s.path
}

// Format returns the encoding used for the file.
func (s *Store) Format() Format {
	return s.format.resolve(s.path)
}

// Save overwrites the session file with ix. An empty index writes nothing
// and reports false.
func (s *Store) Save(ix index.Index) (bool, error) {
	if ix.Empty() {
		return false, nil
	}
	data, err := codecFor(s.Format()).encode(ix)
	if err != nil {
		return false, fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create session dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".eer-session-*")
	if err != nil {
		return false, fmt.Errorf("create session temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return false, fmt.Errorf("write session: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return false, fmt.Errorf("close session: %w", err)
	}
	// атомарная замена
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return false, fmt.Errorf("replace session: %w", err)
	}
	return true, nil
}

// Load reads the session file. A missing file yields ErrNotFound, an
// unreadable or undecodable one ErrMalformed.
func (s *Store) Load() (index.Index, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w: %w", s.path, ErrMalformed, err)
	}
	ix, err := codecFor(s.Format()).decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", s.path, ErrMalformed, err)
	}
	return ix, nil
}
