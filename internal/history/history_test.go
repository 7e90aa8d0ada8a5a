package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/markalston/fieldreport/internal/client"
	"github.com/markalston/fieldreport/internal/credstore"
	"github.com/markalston/fieldreport/internal/mockapi"
	"github.com/markalston/fieldreport/internal/models"
)

func newClient(t *testing.T, api *mockapi.Server) *client.Client {
	t.Helper()
	api.AddUser("pw", models.UserProfile{Username: "ada"})
	server := api.Start()
	t.Cleanup(server.Close)

	store := credstore.New(t.TempDir())
	c := client.New(server.URL, store)
	tokens, err := c.Login(context.Background(), "ada", "pw")
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	store.SetTokens(tokens.Access, tokens.Refresh)
	return c
}

func TestPagerAppendsInOrder(t *testing.T) {
	api := mockapi.New(mockapi.WithPageSize(2))
	for i := 0; i < 5; i++ {
		api.AddLog(models.LogEntry{Subject: fmt.Sprintf("report %d", i), Status: models.StatusSent})
	}
	p := NewPager(newClient(t, api))

	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if !p.HasMore() || p.Count() != 5 {
		t.Fatalf("expected more pages and count 5, got %v/%d", p.HasMore(), p.Count())
	}

	for p.HasMore() {
		if _, err := p.LoadMore(context.Background()); err != nil {
			t.Fatalf("LoadMore error: %v", err)
		}
	}

	entries := p.Entries()
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	for i, e := range entries {
		if want := fmt.Sprintf("report %d", i); e.Subject != want {
			t.Errorf("entry %d = %q, want %q", i, e.Subject, want)
		}
	}

	n, err := p.LoadMore(context.Background())
	if err != nil || n != 0 {
		t.Errorf("LoadMore at end = %d, %v", n, err)
	}
}

func TestPagerLoadReplaces(t *testing.T) {
	api := mockapi.New(mockapi.WithPageSize(2))
	for i := 0; i < 3; i++ {
		api.AddLog(models.LogEntry{Subject: "r"})
	}
	p := NewPager(newClient(t, api))

	p.Load(context.Background())
	p.LoadMore(context.Background())
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(p.Entries()) != 2 {
		t.Errorf("expected reload to reset to first page, got %d", len(p.Entries()))
	}
}

// slowLister blocks page fetches until released
type slowLister struct {
	mu      sync.Mutex
	calls   map[int]int
	release chan struct{}
}

func (s *slowLister) ListLogs(ctx context.Context, page int) (*models.LogPage, error) {
	s.mu.Lock()
	s.calls[page]++
	s.mu.Unlock()
	if page == 0 {
		next := "http://backend/get-logs?page=2"
		return &models.LogPage{Count: 2, Next: &next, Results: []models.LogEntry{{Subject: "first"}}}, nil
	}
	<-s.release
	return &models.LogPage{Count: 2, Results: []models.LogEntry{{Subject: "second"}}}, nil
}

func TestLoadMoreCollapsesConcurrentCalls(t *testing.T) {
	lister := &slowLister{calls: make(map[int]int), release: make(chan struct{})}
	p := NewPager(lister)
	p.Load(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.LoadMore(context.Background())
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(lister.release)
	wg.Wait()

	if lister.calls[2] != 1 {
		t.Errorf("expected one fetch of page 2, got %d", lister.calls[2])
	}
	if len(p.Entries()) != 2 {
		t.Errorf("expected 2 entries, got %d", len(p.Entries()))
	}
}

// loopLister always links back to page 2
type loopLister struct {
	calls int
}

func (l *loopLister) ListLogs(ctx context.Context, page int) (*models.LogPage, error) {
	l.calls++
	next := "http://backend/get-logs?page=2"
	return &models.LogPage{Count: 10, Next: &next, Results: []models.LogEntry{{Subject: fmt.Sprintf("page %d", page)}}}, nil
}

func TestLoadMoreStopsOnStalledNextLink(t *testing.T) {
	lister := &loopLister{}
	p := NewPager(lister)
	if err := p.Load(context.Background()); err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if _, err := p.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore error: %v", err)
	}

	_, err := p.LoadMore(context.Background())
	if !errors.Is(err, ErrPageStalled) {
		t.Fatalf("expected ErrPageStalled, got %v", err)
	}
	if lister.calls != 2 {
		t.Errorf("expected 2 fetches, got %d", lister.calls)
	}
	if len(p.Entries()) != 2 {
		t.Errorf("expected entries kept after a stalled link, got %d", len(p.Entries()))
	}
}

func TestLoadFrom(t *testing.T) {
	api := mockapi.New(mockapi.WithPageSize(2))
	for i := 0; i < 5; i++ {
		api.AddLog(models.LogEntry{Subject: fmt.Sprintf("report %d", i), Status: models.StatusSent})
	}
	p := NewPager(newClient(t, api))

	if err := p.LoadFrom(context.Background(), 0); err == nil {
		t.Error("expected an error for page 0")
	}
	if err := p.LoadFrom(context.Background(), 2); err != nil {
		t.Fatalf("LoadFrom error: %v", err)
	}
	if entries := p.Entries(); len(entries) != 2 || entries[0].Subject != "report 2" {
		t.Fatalf("unexpected page 2 entries %+v", entries)
	}
	if _, err := p.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore error: %v", err)
	}
	if p.HasMore() || len(p.Entries()) != 3 {
		t.Errorf("expected to finish on page 3, got more %v with %d entries", p.HasMore(), len(p.Entries()))
	}
}

func TestPageFromURL(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"http://api/get-logs?page=2", 2, false},
		{"https://api/get-logs/?format=json&page=10", 10, false},
		{"http://api/get-logs", 0, true},
		{"http://api/get-logs?page=0", 0, true},
		{"http://api/get-logs?page=x", 0, true},
	}
	for _, tt := range tests {
		got, err := PageFromURL(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("PageFromURL(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestFilter(t *testing.T) {
	entries := []models.LogEntry{
		{Subject: "Bridge inspection", User: models.LogUser{Email: "ada@example.com"}, Status: models.StatusSent},
		{Subject: "Roof damage", User: models.LogUser{Email: "bob@example.com"}, Status: models.StatusFailed},
		{Subject: "Pipe leak", User: models.LogUser{Email: "cy@example.com"}, Status: models.StatusPending},
	}
	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"BRIDGE", 1},
		{"bob@", 1},
		{"failed", 1},
		{"example.com", 3},
		{"nothing", 0},
	}
	for _, tt := range tests {
		if got := Filter(entries, tt.term); len(got) != tt.want {
			t.Errorf("Filter(%q) = %d entries, want %d", tt.term, len(got), tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.Local)
	if got := FormatTime(ts.Format(time.RFC3339)); got != "Mar 5, 2024, 02:07 PM" {
		t.Errorf("FormatTime = %q", got)
	}
	if got := FormatTimeLong(ts.Format(time.RFC3339)); got != "Mar 5, 2024, 02:07:09 PM" {
		t.Errorf("FormatTimeLong = %q", got)
	}
	if got := FormatTime("yesterday"); got != "yesterday" {
		t.Errorf("expected raw fallback, got %q", got)
	}
}

func TestStatusLabel(t *testing.T) {
	if StatusLabel(models.StatusPending) != "Pending" {
		t.Error("expected Pending")
	}
	if StatusLabel("queued") != "Unknown" {
		t.Error("expected Unknown for undocumented status")
	}
}

type countingGetter struct{ calls int }

func (g *countingGetter) GetLogDetail(ctx context.Context, id string) (*models.LogEntry, error) {
	g.calls++
	return &models.LogEntry{UUID: id}, nil
}

func TestDetailRejectsMalformedID(t *testing.T) {
	g := &countingGetter{}
	_, err := Detail(context.Background(), g, "../../etc/passwd")
	if !errors.Is(err, ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
	if g.calls != 0 {
		t.Error("expected no backend call")
	}
}

func TestDetailAgainstBackend(t *testing.T) {
	api := mockapi.New()
	entry := api.AddLog(models.LogEntry{Subject: "Bridge", Status: models.StatusFailed})
	c := newClient(t, api)

	got, err := Detail(context.Background(), c, entry.UUID)
	if err != nil {
		t.Fatalf("Detail error: %v", err)
	}
	if got.Subject != "Bridge" {
		t.Errorf("unexpected entry %+v", got)
	}

	_, err = Detail(context.Background(), c, "6f1c1d2e-0000-4000-8000-000000000000")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Not found." {
		t.Errorf("expected not found APIError, got %v", err)
	}
}

func TestAttachmentURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"https://api.example.com", "/media/a.jpg", "https://api.example.com/media/a.jpg"},
		{"https://api.example.com/", "media/a.jpg", "https://api.example.com/media/a.jpg"},
		{"https://api.example.com", "https://cdn.example.com/a.jpg", "https://cdn.example.com/a.jpg"},
		{"", "/media/a.jpg", "/media/a.jpg"},
	}
	for _, tt := range tests {
		if got := AttachmentURL(tt.base, tt.ref); got != tt.want {
			t.Errorf("AttachmentURL(%q, %q) = %q, want %q", tt.base, tt.ref, got, tt.want)
		}
	}
}
