// ABOUTME: Log history commands for listing and inspecting submitted reports
// ABOUTME: Supports paging, search, and a detail view by log id

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/markalston/fieldreport/internal/history"
	"github.com/markalston/fieldreport/internal/models"
)

var (
	logsPage   int
	logsAll    bool
	logsSearch string
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Review submitted reports",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted reports",
	Long: `List submitted reports, newest first.

With --page and --all together, listing starts at the given page and
follows next links from there.

Exit codes:
  0 - Logs listed
  1 - Not logged in, token rejected, or invalid --page
  2 - Error (connectivity, backend failure, broken page links)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runLogsList(ctx, os.Stdout, rt, logsPage, logsAll, logsSearch))
	},
}

var logsShowCmd = &cobra.Command{
	Use:   "show <log-id>",
	Short: "Show one submitted report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signalContext()
		defer cancel()

		rt, code := setup(os.Stdout)
		if code != exitOK {
			exitWith(code)
			return
		}
		exitWith(runLogsShow(ctx, os.Stdout, rt, args[0]))
	},
}

func init() {
	rootCmd.AddCommand(logsCmd)
	logsCmd.AddCommand(logsListCmd, logsShowCmd)

	logsListCmd.Flags().IntVar(&logsPage, "page", 0, "Start at this page (1-based); without --all only this page is shown")
	logsListCmd.Flags().BoolVar(&logsAll, "all", false, "Follow next links until every page is loaded")
	logsListCmd.Flags().StringVar(&logsSearch, "search", "", "Filter by subject, email, or status")
}

// runLogsList prints log entries and returns the exit code
func runLogsList(ctx context.Context, w io.Writer, rt *runtime, page int, all bool, search string) int {
	if page < 0 {
		return fail(w, &usageError{msg: fmt.Sprintf("invalid --page %d: pages start at 1", page)})
	}
	start := max(page, 1)

	pager := history.NewPager(rt.client)
	if err := pager.LoadFrom(ctx, start); err != nil {
		return fail(w, err)
	}
	for all && pager.HasMore() {
		if _, err := pager.LoadMore(ctx); err != nil {
			return fail(w, err)
		}
	}
	entries, count, more := pager.Entries(), pager.Count(), pager.HasMore()

	entries = history.Filter(entries, search)

	if IsJSONOutput() {
		writeJSON(w, map[string]any{"count": count, "has_more": more, "results": entries})
		return exitOK
	}

	fmt.Fprintln(w, formatLogsHuman(entries))
	fmt.Fprintf(w, "Showing %d of %d reports", len(entries), count)
	if more {
		fmt.Fprint(w, " (more available: --all)")
	}
	fmt.Fprintln(w)
	return exitOK
}

// formatLogsHuman renders entries as a table
func formatLogsHuman(entries []models.LogEntry) string {
	if len(entries) == 0 {
		return "No reports found."
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "SUBJECT", "SENT BY", "SENT", "STATUS", "IMAGES")
	for _, e := range entries {
		t.Row(
			shortID(e.UUID),
			e.Subject,
			e.User.Email,
			history.FormatTime(e.SentAt),
			history.StatusLabel(e.Status),
			fmt.Sprintf("%d", len(e.Attachments)),
		)
	}
	return t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// runLogsShow prints one log entry and returns the exit code
func runLogsShow(ctx context.Context, w io.Writer, rt *runtime, id string) int {
	entry, err := history.Detail(ctx, rt.client, id)
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		writeJSON(w, entry)
		return exitOK
	}
	fmt.Fprintln(w, formatLogHuman(entry, rt.cfg.APIURL))
	return exitOK
}

// formatLogHuman formats one entry for human readability
func formatLogHuman(e *models.LogEntry, baseURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject:   %s\n", e.Subject)
	fmt.Fprintf(&sb, "ID:        %s\n", e.UUID)
	fmt.Fprintf(&sb, "Status:    %s\n", history.StatusLabel(e.Status))
	if e.ErrorMessage != nil && *e.ErrorMessage != "" {
		fmt.Fprintf(&sb, "Error:     %s\n", *e.ErrorMessage)
	}
	fmt.Fprintf(&sb, "Sent at:   %s\n", history.FormatTimeLong(e.SentAt))
	fmt.Fprintf(&sb, "Send time: %s\n", history.FormatTimeLong(e.SendTime))
	name := strings.TrimSpace(e.User.FirstName + " " + e.User.LastName)
	fmt.Fprintf(&sb, "Sent by:   %s <%s>\n", name, e.User.Email)
	if e.User.Mobile != "" {
		fmt.Fprintf(&sb, "Mobile:    %s\n", e.User.Mobile)
	}
	fmt.Fprintf(&sb, "Attachments (%d):", len(e.Attachments))
	for i, a := range e.Attachments {
		fmt.Fprintf(&sb, "\n  %d. %s", i+1, history.AttachmentURL(baseURL, a.Image))
	}
	return sb.String()
}
