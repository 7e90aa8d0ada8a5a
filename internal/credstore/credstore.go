// ABOUTME: Persisted credential store for tokens, cached profile, and remember-me
// ABOUTME: Keeps all four fields in one JSON record that is replaced atomically

package credstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/markalston/fieldreport/internal/models"
)

// FileName is the credentials file inside the config directory
const FileName = "credentials.json"

// Store persists credentials in a single file under configDir.
// Getters never fail: a missing or unreadable file reads as empty.
type Store struct {
	configDir string
	mu        sync.Mutex
}

// New creates a store rooted at configDir
func New(configDir string) *Store {
	return &Store{configDir: configDir}
}

// Path returns the credentials file path
func (s *Store) Path() string {
	return filepath.Join(s.configDir, FileName)
}

// SetTokens stores the access and refresh tokens
func (s *Store) SetTokens(access, refresh string) error {
	return s.update(func(c *models.Credentials) {
		c.AccessToken = access
		c.RefreshToken = refresh
	})
}

// AccessToken returns the stored access token, if any
func (s *Store) AccessToken() (string, bool) {
	c := s.Snapshot()
	return c.AccessToken, c.AccessToken != ""
}

// RefreshToken returns the stored refresh token, if any
func (s *Store) RefreshToken() (string, bool) {
	c := s.Snapshot()
	return c.RefreshToken, c.RefreshToken != ""
}

// ClearTokens removes both tokens
func (s *Store) ClearTokens() error {
	return s.update(func(c *models.Credentials) {
		c.AccessToken = ""
		c.RefreshToken = ""
	})
}

// SetUser caches the user profile verbatim
func (s *Store) SetUser(u *models.UserProfile) error {
	return s.update(func(c *models.Credentials) {
		if u == nil {
			c.User = nil
			return
		}
		cp := *u
		c.User = &cp
	})
}

// User returns the cached user profile, if any
func (s *Store) User() (*models.UserProfile, bool) {
	c := s.Snapshot()
	return c.User, c.User != nil
}

// ClearUser removes the cached user profile
func (s *Store) ClearUser() error {
	return s.update(func(c *models.Credentials) {
		c.User = nil
	})
}

// SetRememberMe persists the remember-me flag
func (s *Store) SetRememberMe(v bool) error {
	return s.update(func(c *models.Credentials) {
		c.RememberMe = v
	})
}

// RememberMe returns the remember-me flag (false when unset)
func (s *Store) RememberMe() bool {
	return s.Snapshot().RememberMe
}

// Snapshot returns a copy of the whole persisted record
func (s *Store) Snapshot() models.Credentials {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Replace writes an entire record in one step
func (s *Store) Replace(c models.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(c.Clone())
}

// update performs a read-modify-write of the full record
func (s *Store) update(fn func(*models.Credentials)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.load()
	fn(&c)
	return s.write(c)
}

func (s *Store) load() models.Credentials {
	var c models.Credentials

	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return c
	}
	if err != nil {
		slog.Warn("Cannot read credentials", "path", s.Path(), "error", err)
		return c
	}

	if err := json.Unmarshal(data, &c); err != nil {
		// Corrupt file, treat every field as absent
		slog.Warn("Ignoring corrupt credentials file", "path", s.Path(), "error", err)
		return models.Credentials{}
	}
	return c
}

// write replaces the file via temp file + rename so readers never see a
// partially cleared record
func (s *Store) write(c models.Credentials) error {
	if err := os.MkdirAll(s.configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	tmp, err := os.CreateTemp(s.configDir, ".credentials-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync credentials: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close credentials: %w", err)
	}

	if err := os.Rename(tmpName, s.Path()); err != nil {
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}
