// Package identity persists the signed-in user record for the duration of a
// session and inspects its access token.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/karthik/placementhub/internal/types"
)

// Store is the identity persistence contract. Load returns nil when no
// identity is signed in. Implementations may fail; callers degrade to the
// signed-out state rather than propagating a fatal error.
type Store interface {
	Load() (*types.Identity, error)
	Save(identity types.Identity, accessToken string) error
	Clear() error
}

// sessionFile is what the file store writes to disk.
type sessionFile struct {
	Identity    types.Identity `json:"identity"`
	AccessToken string         `json:"accessToken"`
}

// FileStore keeps the session in a JSON file under the state directory.
// A missing file is the signed-out sentinel.
type FileStore struct {
	path string
}

// NewFileStore creates a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{path: filepath.Join(dir, "session.json")}
}

// Load reads the persisted identity. A missing file yields (nil, nil).
func (s *FileStore) Load() (*types.Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse session file: %w", err)
	}
	return &f.Identity, nil
}

// LoadToken returns the persisted access token, or "" when signed out.
func (s *FileStore) LoadToken() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	var f sessionFile
	if err := json.Unmarshal(data, &f); err != nil {
		return "", fmt.Errorf("failed to parse session file: %w", err)
	}
	return f.AccessToken, nil
}

// Save persists the identity and its access token. The file is written to a
// temp name and renamed into place so an interrupted write cannot leave a
// corrupt session behind.
func (s *FileStore) Save(identity types.Identity, accessToken string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	data, err := json.MarshalIndent(sessionFile{Identity: identity, AccessToken: accessToken}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Clear removes the persisted session. Clearing an already-cleared store is
// a no-op.
func (s *FileStore) Clear() error {
	err := os.Remove(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to clear session file: %w", err)
	}
	return nil
}
