package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// tokenFileName is the single well-known key under which the bearer
// credential persists between runs, the console's analogue of the browser
// localStorage "token" entry.
const tokenFileName = "token"

// CredentialFile persists one credential string on disk. Absence of the
// file means logged-out.
type CredentialFile struct {
	path string
}

// NewCredentialFile stores the credential at the given path. An empty path
// selects the default location under the user config directory.
func NewCredentialFile(path string) (*CredentialFile, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "bibliocli", tokenFileName)
	}
	return &CredentialFile{path: path}, nil
}

// Load returns the persisted credential, or "" when none is stored.
func (c *CredentialFile) Load() (string, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read credential: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save writes the credential with owner-only permissions.
func (c *CredentialFile) Save(token string) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o700); err != nil {
		return fmt.Errorf("create credential dir: %w", err)
	}
	if err := os.WriteFile(c.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write credential: %w", err)
	}
	return nil
}

// Clear removes the persisted credential. Clearing an absent credential is
// not an error.
func (c *CredentialFile) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove credential: %w", err)
	}
	return nil
}
