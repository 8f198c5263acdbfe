// Package credentials persists the bearer token across client restarts.
// One durable slot exists, unconditionally overwritten on login and
// unconditionally removed on logout; an absent slot means "logged out".
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TokenKey is the fixed application-scoped name of the durable token slot
const TokenKey = "kingface-token"

// Store is a file-backed single-slot token store
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir, creating it if necessary
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, TokenKey)
}

// Load returns the stored token, or "" when no token is stored
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save overwrites the token slot. The write goes through a temp file and
// rename so a crash never leaves a torn token behind.
func (s *Store) Save(token string) error {
	tmp, err := os.CreateTemp(s.dir, TokenKey+".*")
	if err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.WriteString(token); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("write token: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("write token: %w", err)
	}
	if err := os.Rename(name, s.path()); err != nil {
		os.Remove(name)
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// Clear removes the token slot. Clearing an absent slot is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
