// ABOUTME: Tests for dashboard component
// ABOUTME: Validates batch rendering, cursor movement, tabs, and the profile view

package dashboard

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/models"
)

func batchOf(names ...string) *capture.Batch {
	b := &capture.Batch{}
	for _, n := range names {
		b.Add(capture.Image{Name: n, MediaType: "image/png", DataURI: capture.EncodeDataURI("image/png", make([]byte, 2048))})
	}
	return b
}

func TestDashboardEmptyBatch(t *testing.T) {
	d := New(&capture.Batch{}, 80, 24)
	view := d.View()

	if !strings.Contains(view, "No images yet") {
		t.Errorf("expected empty batch hint\nView:\n%s", view)
	}
	if !strings.Contains(view, "Camera: off") {
		t.Errorf("expected camera status\nView:\n%s", view)
	}
}

func TestDashboardListsImages(t *testing.T) {
	d := New(batchOf("site-a.png", "site-b.png"), 100, 24)
	d.SetCameraOpen(true)
	view := d.View()

	for _, expected := range []string{"1.", "site-a.png", "2.", "site-b.png", "2.0 KB", "2 image(s), 4.0 KB", "Camera: live"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestDashboardSending(t *testing.T) {
	d := New(batchOf("a.png"), 100, 24)
	d.SetSending(true)
	if !strings.Contains(d.View(), "Sending...") {
		t.Error("expected sending indicator")
	}
}

func TestDashboardCursor(t *testing.T) {
	b := batchOf("a.png", "b.png", "c.png")
	d := New(b, 80, 24)

	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	d.Update(tea.KeyMsg{Type: tea.KeyDown})
	if d.Cursor() != 2 {
		t.Errorf("expected cursor clamped at 2, got %d", d.Cursor())
	}

	b.Remove(2)
	d.Clamp()
	if d.Cursor() != 1 {
		t.Errorf("expected cursor 1 after removal, got %d", d.Cursor())
	}

	b.Clear()
	d.Clamp()
	if d.Cursor() != 0 {
		t.Errorf("expected cursor 0 for empty batch, got %d", d.Cursor())
	}
}

func TestDashboardTabs(t *testing.T) {
	d := New(&capture.Batch{}, 80, 24)

	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	if d.Tab() != TabProfile {
		t.Errorf("expected profile tab, got %d", d.Tab())
	}
	if !strings.Contains(d.View(), "Not signed in") {
		t.Error("expected not signed in without a user")
	}

	d.Update(tea.KeyMsg{Type: tea.KeyTab})
	if d.Tab() != TabSend {
		t.Errorf("expected send tab, got %d", d.Tab())
	}
}

func TestDashboardProfile(t *testing.T) {
	d := New(&capture.Batch{}, 100, 24)
	d.SetTab(TabProfile)
	d.SetUser(&models.UserProfile{
		Username:        "alice",
		FirstName:       "Alice",
		LastName:        "Liddell",
		Email:           "alice@example.com",
		PermissionLevel: "reporter",
	}, true)
	d.SetTokenExpiry(time.Now().Add(-time.Minute), true)

	view := d.View()
	for _, expected := range []string{"Alice Liddell", "alice@example.com", "reporter", "Remember me", "on", "(expired)"} {
		if !strings.Contains(view, expected) {
			t.Errorf("expected view to contain %q\nView:\n%s", expected, view)
		}
	}
}

func TestDashboardSetSize(t *testing.T) {
	d := New(&capture.Batch{}, 80, 24)

	d.SetSize(120, 40)

	if d.width != 120 {
		t.Errorf("expected width 120, got %d", d.width)
	}
	if d.height != 40 {
		t.Errorf("expected height 40, got %d", d.height)
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{512, "512 B"},
		{2048, "2.0 KB"},
		{3 << 20, "3.0 MB"},
	}
	for _, tc := range tests {
		if got := formatSize(tc.n); got != tc.want {
			t.Errorf("formatSize(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}
