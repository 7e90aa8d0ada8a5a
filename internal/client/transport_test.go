// ABOUTME: Tests for the request logging transport
// ABOUTME: Verifies request IDs and path sanitization against log injection

package client

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "normal path",
			input: "/get-logs?page=2",
			want:  "/get-logs?page=2",
		},
		{
			name:  "path with newline injection",
			input: "/get-logs/abc\nlevel=INFO msg=forged",
			want:  "/get-logs/abclevel=INFO msg=forged",
		},
		{
			name:  "path with CRLF",
			input: "/get-data\r\ninjected",
			want:  "/get-datainjected",
		},
		{
			name:  "path with escape sequence",
			input: "/get-logs/\x1b[31mred",
			want:  "/get-logs/[31mred",
		},
		{
			name:  "path with DEL character",
			input: "/get-logs\x7f",
			want:  "/get-logs",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePath(tt.input); got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoggingTransport_SetsRequestID(t *testing.T) {
	var gotID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	httpClient := &http.Client{Transport: newLoggingTransport(nil)}
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/get-data", nil)
	resp, err := httpClient.Do(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	if len(gotID) != 16 { // 8 bytes = 16 hex chars
		t.Errorf("X-Request-ID length = %d, want 16", len(gotID))
	}
	if req.Header.Get("X-Request-ID") != "" {
		t.Error("transport must not mutate the caller's request")
	}
}

func TestLoggingTransport_LogsStatus(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	httpClient := &http.Client{Transport: newLoggingTransport(nil)}
	resp, err := httpClient.Post(server.URL+"/sent-report", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()

	out := buf.String()
	if !strings.Contains(out, "status=201") {
		t.Errorf("expected status in log, got %q", out)
	}
	if !strings.Contains(out, "path=/sent-report") {
		t.Errorf("expected path in log, got %q", out)
	}
}
