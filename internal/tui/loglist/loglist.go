// ABOUTME: Report history list with client-side search and incremental paging
// ABOUTME: Drives a history.Pager from bubbletea commands

package loglist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/history"
	"github.com/markalston/fieldreport/internal/models"
	"github.com/markalston/fieldreport/internal/tui/icons"
	"github.com/markalston/fieldreport/internal/tui/styles"
	"github.com/markalston/fieldreport/internal/tui/widgets"
)

// LoadedMsg is sent when a page load finishes
type LoadedMsg struct {
	Err error
	At  time.Time
}

// OpenMsg asks to show the detail of one entry
type OpenMsg struct {
	ID string
}

// BackMsg asks to leave the list
type BackMsg struct{}

// List is the report history screen
type List struct {
	pager   *history.Pager
	search  textinput.Model
	cursor  int
	loading bool
	err     string
	width   int
	height  int
}

var (
	mutedStyle = lipgloss.NewStyle().Foreground(styles.Muted)
	errorStyle = lipgloss.NewStyle().Foreground(styles.Danger)
)

// New creates a list over pager
func New(pager *history.Pager, width, height int) *List {
	ti := textinput.New()
	ti.Placeholder = "Search subject, email, or status"
	ti.Prompt = icons.Search.String() + " "
	ti.CharLimit = 100
	ti.Width = 40

	return &List{
		pager:  pager,
		search: ti,
		width:  width,
		height: height,
	}
}

// Init loads the first page
func (l *List) Init() tea.Cmd {
	return l.reload()
}

func (l *List) reload() tea.Cmd {
	l.loading = true
	l.cursor = 0
	pager := l.pager
	return func() tea.Msg {
		err := pager.Load(context.Background())
		return LoadedMsg{Err: err, At: time.Now()}
	}
}

func (l *List) loadMore() tea.Cmd {
	if l.loading || !l.pager.HasMore() {
		return nil
	}
	l.loading = true
	pager := l.pager
	return func() tea.Msg {
		_, err := pager.LoadMore(context.Background())
		return LoadedMsg{Err: err, At: time.Now()}
	}
}

// SetSize updates the list dimensions
func (l *List) SetSize(width, height int) {
	l.width = width
	l.height = height
}

// Loading reports whether a page request is in flight
func (l *List) Loading() bool {
	return l.loading
}

// Searching reports whether the search box has focus
func (l *List) Searching() bool {
	return l.search.Focused()
}

// Visible returns the entries matching the search term
func (l *List) Visible() []models.LogEntry {
	return l.pager.Filter(l.search.Value())
}

// Update implements tea.Model
func (l *List) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		l.loading = false
		l.err = ""
		if msg.Err != nil {
			l.err = msg.Err.Error()
		}
		return l, nil

	case tea.KeyMsg:
		if l.search.Focused() {
			return l.updateSearch(msg)
		}
		return l.updateList(msg)
	}
	return l, nil
}

func (l *List) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter":
		l.search.Blur()
		return l, nil
	}
	var cmd tea.Cmd
	l.search, cmd = l.search.Update(msg)
	l.cursor = 0
	return l, cmd
}

func (l *List) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := l.Visible()

	switch msg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(visible)-1 {
			l.cursor++
		}
	case "enter":
		if l.cursor < len(visible) {
			id := visible[l.cursor].UUID
			return l, func() tea.Msg { return OpenMsg{ID: id} }
		}
	case "/":
		l.search.Focus()
		return l, textinput.Blink
	case "m":
		return l, l.loadMore()
	case "r":
		if !l.loading {
			return l, l.reload()
		}
	case "esc", "b":
		return l, func() tea.Msg { return BackMsg{} }
	}
	return l, nil
}

// View implements tea.Model
func (l *List) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.History.String() + " Report History"))
	sb.WriteString("\n")
	sb.WriteString(l.search.View())
	sb.WriteString("\n\n")

	visible := l.Visible()
	switch {
	case !l.pager.Loaded() && l.loading:
		sb.WriteString(mutedStyle.Render("Loading reports..."))
		sb.WriteString("\n")
	case len(visible) == 0 && l.search.Value() != "":
		sb.WriteString(mutedStyle.Render("No reports match your search."))
		sb.WriteString("\n")
	case len(visible) == 0:
		sb.WriteString(mutedStyle.Render("No reports sent yet."))
		sb.WriteString("\n")
	}

	start, end := l.window(len(visible))
	for i := start; i < end; i++ {
		sb.WriteString(l.row(i, visible[i]))
		sb.WriteString("\n")
	}

	if l.pager.Loaded() {
		sb.WriteString("\n")
		loaded := len(l.pager.Entries())
		summary := fmt.Sprintf("Showing %d of %d reports", len(visible), l.pager.Count())
		sb.WriteString(styles.ProgressBar(loaded, l.pager.Count(), 20) + " " + mutedStyle.Render(summary))
		sb.WriteString("\n")
		switch {
		case l.loading:
			sb.WriteString(styles.StatusWarning.Render("Loading more..."))
		case l.pager.HasMore():
			sb.WriteString(mutedStyle.Render(icons.More.String() + " press m to load more"))
		}
	}

	if l.err != "" {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render("Error: " + l.err))
	}

	return sb.String()
}

// window returns the visible row range keeping the cursor on screen
func (l *List) window(n int) (int, int) {
	rows := l.height - 10
	if rows < 3 {
		rows = 3
	}
	if n <= rows {
		return 0, n
	}
	start := l.cursor - rows/2
	start = max(0, min(start, n-rows))
	return start, start + rows
}

func (l *List) row(i int, e models.LogEntry) string {
	cursor := "  "
	style := styles.Normal
	if i == l.cursor {
		cursor = "> "
		style = styles.Selected
	}
	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	return fmt.Sprintf("%s%s %s  %s  %s",
		cursor,
		widgets.LogStatusBadge(e.Status),
		style.Render(subject),
		mutedStyle.Render(e.User.Email),
		mutedStyle.Render(fmt.Sprintf("%s · %d image(s)", history.FormatTime(e.SentAt), len(e.Attachments))),
	)
}
