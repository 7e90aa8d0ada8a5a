// ABOUTME: Paginated view model over the backend's report log list
// ABOUTME: Follows next-page links and collapses concurrent load-more requests

package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/markalston/fieldreport/internal/models"
)

// ErrPageStalled is returned when a next link does not move past the
// page already loaded
var ErrPageStalled = errors.New("next page link does not advance")

// Lister fetches one page of logs; satisfied by *client.Client
type Lister interface {
	ListLogs(ctx context.Context, page int) (*models.LogPage, error)
}

// Pager accumulates log pages in order
type Pager struct {
	lister Lister

	mu      sync.Mutex
	entries []models.LogEntry
	count   int
	next    *string
	page    int
	loaded  bool

	// Collapses concurrent LoadMore calls into one fetch
	sfGroup singleflight.Group
}

// NewPager creates an empty pager
func NewPager(lister Lister) *Pager {
	return &Pager{lister: lister}
}

// Load fetches the first page and replaces any loaded entries
func (p *Pager) Load(ctx context.Context) error {
	return p.LoadFrom(ctx, 1)
}

// LoadFrom fetches page start (1-based) and replaces any loaded entries.
// Later LoadMore calls follow next links from there.
func (p *Pager) LoadFrom(ctx context.Context, start int) error {
	if start < 1 {
		return fmt.Errorf("page must be 1 or greater, got %d", start)
	}
	// The first page is requested without a page parameter
	param := start
	if start == 1 {
		param = 0
	}
	page, err := p.lister.ListLogs(ctx, param)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append([]models.LogEntry(nil), page.Results...)
	p.count = page.Count
	p.next = page.Next
	p.page = start
	p.loaded = true
	return nil
}

// LoadMore fetches the page named by the next link and appends it.
// It returns the number of entries added; zero when there is no next page.
func (p *Pager) LoadMore(ctx context.Context) (int, error) {
	v, err, shared := p.sfGroup.Do("more", func() (interface{}, error) {
		p.mu.Lock()
		next, current := p.next, p.page
		p.mu.Unlock()
		if next == nil {
			return 0, nil
		}

		pageNum, err := PageFromURL(*next)
		if err != nil {
			return 0, err
		}
		if pageNum <= current {
			return 0, fmt.Errorf("%w: page %d after page %d", ErrPageStalled, pageNum, current)
		}
		page, err := p.lister.ListLogs(ctx, pageNum)
		if err != nil {
			return 0, err
		}

		p.mu.Lock()
		defer p.mu.Unlock()
		p.entries = append(p.entries, page.Results...)
		p.count = page.Count
		p.next = page.Next
		p.page = pageNum
		return len(page.Results), nil
	})
	if shared {
		slog.Debug("Load more collapsed into in-flight request")
	}
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// HasMore reports whether a next page exists
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.next != nil
}

// Loaded reports whether the first page has been fetched
func (p *Pager) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

// Count is the backend's total number of entries
func (p *Pager) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

// Entries returns a copy of the loaded entries
func (p *Pager) Entries() []models.LogEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.LogEntry(nil), p.entries...)
}

// Filter returns the loaded entries matching term
func (p *Pager) Filter(term string) []models.LogEntry {
	return Filter(p.Entries(), term)
}

// PageFromURL extracts the page query parameter from a next/previous link
func PageFromURL(raw string) (int, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid page link %q: %w", raw, err)
	}
	value := u.Query().Get("page")
	if value == "" {
		return 0, fmt.Errorf("page link %q has no page parameter", raw)
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("page link %q has invalid page %q", raw, value)
	}
	return n, nil
}
