package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Session is the connected wallet identity.
type Session struct {
	Address     string    `json:"address"`
	ChainID     string    `json:"chain_id"`
	BridgeURL   string    `json:"bridge_url"`
	ConnectedAt time.Time `json:"connected_at"`
}

// SessionStore persists the session slot.
type SessionStore interface {
	Load() (*Session, error)
	Save(*Session) error
	Clear() error
}

// DefaultSessionPath returns the per-user session file.
//
//	macOS:   ~/Library/Caches/stark20/session.json
//	Linux:   ~/.cache/stark20/session.json
//	Windows: %LocalAppData%\stark20\session.json
func DefaultSessionPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "stark20", "session.json")
}

// FileStore keeps the session in a JSON file readable only by the user.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed session store.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load returns the stored session, or nil if none. A corrupt file counts as
// no session.
func (s *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.Address == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes the session with 0600 permissions.
func (s *FileStore) Save(sess *Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	_ = os.Chmod(s.path, 0o600)
	return nil
}

// Clear removes the session file. Missing files are not an error.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// --- in-memory store ---

type memStore struct {
	sess *Session
}

func (s *memStore) Load() (*Session, error) { return s.sess, nil }

func (s *memStore) Save(sess *Session) error {
	s.sess = sess
	return nil
}

func (s *memStore) Clear() error {
	s.sess = nil
	return nil
}
