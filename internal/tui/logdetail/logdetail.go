// ABOUTME: Detail view for one submitted report
// ABOUTME: Shows delivery and sender columns side by side, then the attachments

package logdetail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/history"
	"github.com/markalston/fieldreport/internal/models"
	"github.com/markalston/fieldreport/internal/tui/icons"
	"github.com/markalston/fieldreport/internal/tui/styles"
	"github.com/markalston/fieldreport/internal/tui/widgets"
)

// Detail displays one log entry
type Detail struct {
	entry   *models.LogEntry
	baseURL string
	width   int
}

// New creates a detail view. baseURL resolves relative attachment paths.
func New(entry *models.LogEntry, baseURL string, width int) *Detail {
	return &Detail{
		entry:   entry,
		baseURL: baseURL,
		width:   width,
	}
}

// SetWidth updates the view width
func (d *Detail) SetWidth(width int) {
	d.width = width
}

// Entry returns the displayed entry
func (d *Detail) Entry() *models.LogEntry {
	return d.entry
}

// View renders the detail
func (d *Detail) View() string {
	if d.entry == nil {
		return "No report loaded"
	}
	e := d.entry

	var sb strings.Builder

	subject := e.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sb.WriteString(styles.Title.Render(subject))
	sb.WriteString("\n")
	sb.WriteString(widgets.LogStatusBadge(e.Status) + "  " + styles.Subtitle.Render(e.UUID))
	sb.WriteString("\n\n")

	colWidth := (d.width - 4) / 2
	if colWidth < 30 {
		colWidth = 30
	}
	left := d.renderDelivery(e)
	right := d.renderSender(e)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(colWidth).Render(left),
		"  ",
		lipgloss.NewStyle().Width(colWidth).Render(right),
	))
	sb.WriteString("\n\n")

	if e.ErrorMessage != nil && *e.ErrorMessage != "" {
		sb.WriteString(widgets.StatusText("Error: "+*e.ErrorMessage, widgets.StatusCritical))
		sb.WriteString("\n\n")
	}

	sb.WriteString(styles.Subtitle.Render(fmt.Sprintf("%s Attachments (%d)", icons.Image.String(), len(e.Attachments))))
	sb.WriteString("\n")
	if len(e.Attachments) == 0 {
		sb.WriteString("  none\n")
	}
	for i, a := range e.Attachments {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, history.AttachmentURL(d.baseURL, a.Image)))
	}

	return lipgloss.NewStyle().Width(d.width).Render(sb.String())
}

func (d *Detail) renderDelivery(e *models.LogEntry) string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Delivery"))
	sb.WriteString("\n")
	sb.WriteString(styles.LabelStyle.Render("Status") + history.StatusLabel(e.Status) + "\n")
	sb.WriteString(styles.LabelStyle.Render("Sent at") + orDash(history.FormatTimeLong(e.SentAt)) + "\n")
	sb.WriteString(styles.LabelStyle.Render("Send time") + orDash(history.FormatTimeLong(e.SendTime)) + "\n")
	return sb.String()
}

func (d *Detail) renderSender(e *models.LogEntry) string {
	var sb strings.Builder
	sb.WriteString(styles.Subtitle.Render("Sent by"))
	sb.WriteString("\n")
	name := strings.TrimSpace(e.User.FirstName + " " + e.User.LastName)
	if name == "" {
		name = e.User.Username
	}
	sb.WriteString(styles.LabelStyle.Render("Name") + orDash(name) + "\n")
	sb.WriteString(styles.LabelStyle.Render("Email") + orDash(e.User.Email) + "\n")
	sb.WriteString(styles.LabelStyle.Render("Mobile") + orDash(e.User.Mobile) + "\n")
	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
