// ABOUTME: Tests for the log history commands
// ABOUTME: Verifies paging, search, JSON output, and detail lookups

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/markalston/fieldreport/internal/mockapi"
	"github.com/markalston/fieldreport/internal/models"
)

func seedLogs(api interface {
	AddLog(models.LogEntry) models.LogEntry
}, n int) []models.LogEntry {
	var out []models.LogEntry
	for i := 0; i < n; i++ {
		status := models.StatusSent
		if i%2 == 1 {
			status = models.StatusFailed
		}
		out = append(out, api.AddLog(models.LogEntry{
			Subject: fmt.Sprintf("Site visit %d", i),
			User:    models.LogUser{Email: "alice@example.com"},
			SentAt:  "2024-03-05T14:07:09Z",
			Status:  status,
		}))
	}
	return out
}

func TestLogsList_FirstPage(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)
	seedLogs(api, 5)

	var buf bytes.Buffer
	if code := runLogsList(context.Background(), &buf, rt, 0, false, ""); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	out := buf.String()
	if !strings.Contains(out, "Site visit 0") || strings.Contains(out, "Site visit 2") {
		t.Errorf("expected only the first page, got %s", out)
	}
	if !strings.Contains(out, "Showing 2 of 5 reports (more available") {
		t.Errorf("unexpected summary: %s", out)
	}
}

func TestLogsList_AllWithSearch(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)
	seedLogs(api, 5)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runLogsList(context.Background(), &buf, rt, 0, true, "FAILED"); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var out struct {
		Count   int               `json:"count"`
		HasMore bool              `json:"has_more"`
		Results []models.LogEntry `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.Count != 5 || out.HasMore || len(out.Results) != 2 {
		t.Errorf("unexpected result: count %d, more %v, results %d", out.Count, out.HasMore, len(out.Results))
	}
	if out.Results[0].Subject != "Site visit 1" || out.Results[1].Subject != "Site visit 3" {
		t.Errorf("expected page order preserved, got %s, %s", out.Results[0].Subject, out.Results[1].Subject)
	}
}

func TestLogsList_SinglePage(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)
	seedLogs(api, 5)

	var buf bytes.Buffer
	if code := runLogsList(context.Background(), &buf, rt, 3, false, ""); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	if !strings.Contains(buf.String(), "Site visit 4") || !strings.Contains(buf.String(), "Showing 1 of 5") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestLogsList_RejectsNegativePage(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)
	seedLogs(api, 3)

	var buf bytes.Buffer
	if code := runLogsList(context.Background(), &buf, rt, -2, false, ""); code != exitRejected {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(buf.String(), "invalid --page -2") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	if got := api.Hits("/get-logs"); got != 0 {
		t.Errorf("expected no log requests, got %d", got)
	}
}

func TestLogsList_AllFromPage(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)
	seedLogs(api, 5)
	jsonOutput = true

	var buf bytes.Buffer
	if code := runLogsList(context.Background(), &buf, rt, 2, true, ""); code != exitOK {
		t.Fatalf("expected exit 0, got %d", code)
	}
	var out struct {
		HasMore bool              `json:"has_more"`
		Results []models.LogEntry `json:"results"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if out.HasMore || len(out.Results) != 3 {
		t.Fatalf("expected pages 2 and 3, got more %v, %d results", out.HasMore, len(out.Results))
	}
	if out.Results[0].Subject != "Site visit 2" || out.Results[2].Subject != "Site visit 4" {
		t.Errorf("unexpected range %s..%s", out.Results[0].Subject, out.Results[2].Subject)
	}
}

func TestLogsList_AllStopsOnStalledNextLink(t *testing.T) {
	api, rt := withBackend(t, mockapi.WithPinnedNext(2))
	loginAlice(t, rt)
	seedLogs(api, 5)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var buf bytes.Buffer
	if code := runLogsList(ctx, &buf, rt, 0, true, ""); code != exitError {
		t.Fatalf("expected exit 2, got %d: %s", code, buf.String())
	}
	if !strings.Contains(buf.String(), "does not advance") {
		t.Errorf("unexpected output: %s", buf.String())
	}
	if ctx.Err() != nil {
		t.Error("listing ran until the deadline instead of stopping")
	}
}

func TestLogsList_Unauthenticated(t *testing.T) {
	_, rt := withBackend(t)

	var buf bytes.Buffer
	if code := runLogsList(context.Background(), &buf, rt, 0, false, ""); code != exitRejected {
		t.Errorf("expected exit 1, got %d", code)
	}
}

func TestLogsShow(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)
	msg := "SMTP relay refused"
	entry := api.AddLog(models.LogEntry{
		Subject:      "Bridge inspection",
		User:         models.LogUser{FirstName: "Alice", LastName: "Liddell", Email: "alice@example.com"},
		Status:       models.StatusFailed,
		ErrorMessage: &msg,
		Attachments:  []models.Attachment{{Image: "/media/1.jpg"}},
	})

	var buf bytes.Buffer
	if code := runLogsShow(context.Background(), &buf, rt, entry.UUID); code != exitOK {
		t.Fatalf("expected exit 0, got %d: %s", code, buf.String())
	}
	out := buf.String()
	for _, want := range []string{"Bridge inspection", "Failed", "SMTP relay refused", "Alice Liddell <alice@example.com>", rt.cfg.APIURL + "/media/1.jpg"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %s", want, out)
		}
	}
}

func TestLogsShow_InvalidID(t *testing.T) {
	api, rt := withBackend(t)
	loginAlice(t, rt)

	var buf bytes.Buffer
	if code := runLogsShow(context.Background(), &buf, rt, "not-an-id"); code != exitRejected {
		t.Errorf("expected exit 1, got %d", code)
	}
	if api.Hits("/get-logs/not-an-id") != 0 {
		t.Error("expected no request for a malformed id")
	}
}

func TestLogsShow_NotFound(t *testing.T) {
	_, rt := withBackend(t)
	loginAlice(t, rt)

	var buf bytes.Buffer
	if code := runLogsShow(context.Background(), &buf, rt, "6f1c1d2e-0000-4000-8000-000000000000"); code != exitError {
		t.Errorf("expected exit 2, got %d", code)
	}
	if !strings.Contains(buf.String(), "Not found.") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
