// ABOUTME: Search and display helpers for report log entries
// ABOUTME: Case-insensitive filtering and backend timestamp formatting

package history

import (
	"strings"
	"time"

	"github.com/markalston/fieldreport/internal/models"
)

const (
	listTimeLayout   = "Jan 2, 2006, 03:04 PM"
	detailTimeLayout = "Jan 2, 2006, 03:04:05 PM"
)

// Filter keeps entries whose subject, user email, or status contains term,
// ignoring case. An empty term keeps everything.
func Filter(entries []models.LogEntry, term string) []models.LogEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}

	var out []models.LogEntry
	for _, e := range entries {
		if strings.Contains(strings.ToLower(e.Subject), term) ||
			strings.Contains(strings.ToLower(e.User.Email), term) ||
			strings.Contains(strings.ToLower(string(e.Status)), term) {
			out = append(out, e)
		}
	}
	return out
}

// FormatTime renders a backend timestamp for list rows
func FormatTime(s string) string {
	return formatTime(s, listTimeLayout)
}

// FormatTimeLong renders a backend timestamp with seconds for the detail view
func FormatTimeLong(s string) string {
	return formatTime(s, detailTimeLayout)
}

func formatTime(s, layout string) string {
	for _, in := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(in, s); err == nil {
			return t.Local().Format(layout)
		}
	}
	return s
}

// StatusLabel is the display label for a status
func StatusLabel(s models.LogStatus) string {
	if !s.Known() {
		return "Unknown"
	}
	str := string(s)
	return strings.ToUpper(str[:1]) + str[1:]
}

// AttachmentURL resolves an attachment reference against the backend URL.
// Absolute references are returned unchanged.
func AttachmentURL(baseURL, ref string) string {
	if strings.Contains(ref, "://") || baseURL == "" {
		return ref
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(ref, "/")
}
