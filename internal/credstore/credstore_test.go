// ABOUTME: Tests for the persisted credential store
// ABOUTME: Validates absent reads, independent clears, and atomic replacement

package credstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/markalston/fieldreport/internal/models"
)

func TestEmptyStore(t *testing.T) {
	s := New(t.TempDir())

	if _, ok := s.AccessToken(); ok {
		t.Error("expected no access token")
	}
	if _, ok := s.RefreshToken(); ok {
		t.Error("expected no refresh token")
	}
	if _, ok := s.User(); ok {
		t.Error("expected no user")
	}
	if s.RememberMe() {
		t.Error("expected remember-me to default to false")
	}
}

func TestSetAndGetTokens(t *testing.T) {
	s := New(t.TempDir())

	if err := s.SetTokens("access-1", "refresh-1"); err != nil {
		t.Fatalf("SetTokens() error: %v", err)
	}

	access, ok := s.AccessToken()
	if !ok || access != "access-1" {
		t.Errorf("expected access-1, got %q (ok=%v)", access, ok)
	}
	refresh, ok := s.RefreshToken()
	if !ok || refresh != "refresh-1" {
		t.Errorf("expected refresh-1, got %q (ok=%v)", refresh, ok)
	}
}

func TestClearTokensKeepsUser(t *testing.T) {
	s := New(t.TempDir())
	s.SetTokens("a", "r")
	s.SetUser(&models.UserProfile{Username: "alice"})
	s.SetRememberMe(true)

	if err := s.ClearTokens(); err != nil {
		t.Fatalf("ClearTokens() error: %v", err)
	}

	if _, ok := s.AccessToken(); ok {
		t.Error("expected access token cleared")
	}
	u, ok := s.User()
	if !ok || u.Username != "alice" {
		t.Error("expected cached user to survive ClearTokens")
	}
	if !s.RememberMe() {
		t.Error("expected remember-me to survive ClearTokens")
	}
}

func TestClearUser(t *testing.T) {
	s := New(t.TempDir())
	s.SetUser(&models.UserProfile{Username: "alice"})

	if err := s.ClearUser(); err != nil {
		t.Fatalf("ClearUser() error: %v", err)
	}
	if _, ok := s.User(); ok {
		t.Error("expected user cleared")
	}
}

func TestSetUserCopiesProfile(t *testing.T) {
	s := New(t.TempDir())
	u := &models.UserProfile{Username: "alice"}
	s.SetUser(u)

	u.Username = "mallory"

	got, _ := s.User()
	if got.Username != "alice" {
		t.Errorf("expected stored copy to be unaffected, got %s", got.Username)
	}
}

func TestPersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	New(dir).SetTokens("a", "r")
	New(dir).SetRememberMe(true)

	s := New(dir)
	if tok, _ := s.AccessToken(); tok != "a" {
		t.Errorf("expected token to persist, got %q", tok)
	}
	if !s.RememberMe() {
		t.Error("expected remember-me to persist")
	}
}

func TestFilePermissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cfg")
	s := New(dir)
	s.SetTokens("a", "r")

	info, err := os.Stat(s.Path())
	if err != nil {
		t.Fatalf("stat error: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("expected mode 0600, got %o", perm)
	}
}

func TestCorruptFileReadsAsEmpty(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0600)

	s := New(dir)
	if _, ok := s.AccessToken(); ok {
		t.Error("expected corrupt file to read as absent")
	}

	// Writing over a corrupt file recovers
	if err := s.SetRememberMe(true); err != nil {
		t.Fatalf("SetRememberMe() error: %v", err)
	}
	if !s.RememberMe() {
		t.Error("expected remember-me after recovery write")
	}
}

func TestReplaceWritesWholeRecord(t *testing.T) {
	s := New(t.TempDir())
	s.SetTokens("old", "old-r")
	s.SetUser(&models.UserProfile{Username: "old"})

	err := s.Replace(models.Credentials{RememberMe: true})
	if err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	c := s.Snapshot()
	if c.AccessToken != "" || c.RefreshToken != "" || c.User != nil {
		t.Errorf("expected tokens and user cleared in one write, got %+v", c)
	}
	if !c.RememberMe {
		t.Error("expected remember-me from replacement record")
	}
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	for i := 0; i < 5; i++ {
		s.SetRememberMe(i%2 == 0)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != FileName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only %s, got %v", FileName, names)
	}
}
