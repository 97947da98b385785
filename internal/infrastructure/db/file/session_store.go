// Package file stores the client session in a JSON file on local disk.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/inkwell/dashboard/internal/core/domain"
)

// SessionStore writes the credential and user record as one JSON document.
// Writes go to a temporary file that is renamed into place, so a reader
// sees either the old pair or the new one.
type SessionStore struct {
	path string
	log  zerolog.Logger
	mu   sync.Mutex
}

func NewSessionStore(path string, log zerolog.Logger) *SessionStore {
	return &SessionStore{path: path, log: log}
}

type sessionFile struct {
	Credential domain.Credential  `json:"credential"`
	User       *domain.UserRecord `json:"user"`
}

func (s *SessionStore) Save(_ context.Context, cred domain.Credential, user domain.UserRecord) error {
	if cred == "" {
		return errors.New("save session: empty credential")
	}
	data, err := json.Marshal(sessionFile{Credential: cred, User: &user})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, data)
}

// Load returns the stored pair. A missing file is domain.ErrNoStoredSession;
// an unreadable or incomplete one is removed and reported the same way.
func (s *SessionStore) Load(_ context.Context) (domain.StoredSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.StoredSession{}, domain.ErrNoStoredSession
		}
		return domain.StoredSession{}, fmt.Errorf("read session file: %w", err)
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil || sf.Credential == "" || sf.User == nil || !sf.User.Valid() {
		s.log.Warn().Str("path", s.path).Msg("discarding unreadable session file")
		if err := s.removeLocked(); err != nil {
			return domain.StoredSession{}, err
		}
		return domain.StoredSession{}, domain.ErrNoStoredSession
	}
	return domain.StoredSession{Credential: sf.Credential, User: *sf.User}, nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked()
}

// Ping checks that the session directory is usable.
func (s *SessionStore) Ping(_ context.Context) error {
	info, err := os.Stat(filepath.Dir(s.path))
	if err != nil {
		return fmt.Errorf("session directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("session directory %s is not a directory", filepath.Dir(s.path))
	}
	return nil
}

func (s *SessionStore) removeLocked() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("create temporary session file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temporary session file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temporary session file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temporary session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temporary session file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename session file into place: %w", err)
	}
	return nil
}
