// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Manages screen state and routes keyboard input to child components

package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/capture/camera"
	"github.com/markalston/fieldreport/internal/client"
	"github.com/markalston/fieldreport/internal/history"
	"github.com/markalston/fieldreport/internal/models"
	"github.com/markalston/fieldreport/internal/session"
	"github.com/markalston/fieldreport/internal/tui/dashboard"
	"github.com/markalston/fieldreport/internal/tui/filepicker"
	"github.com/markalston/fieldreport/internal/tui/icons"
	"github.com/markalston/fieldreport/internal/tui/logdetail"
	"github.com/markalston/fieldreport/internal/tui/login"
	"github.com/markalston/fieldreport/internal/tui/loglist"
	"github.com/markalston/fieldreport/internal/tui/menu"
	"github.com/markalston/fieldreport/internal/tui/recentfiles"
	"github.com/markalston/fieldreport/internal/tui/styles"
)

// Screen represents the current TUI screen
type Screen int

const (
	ScreenSplash Screen = iota
	ScreenLogin
	ScreenDashboard
	ScreenFilePicker
	ScreenLogs
	ScreenLogDetail
	ScreenNotFound
)

// Layout constants
const (
	minTerminalWidth = 80 // Minimum width before using single-column layout
	panelPadding     = 4  // Total horizontal padding from panel borders (2 each side)
)

// noticeTTL is how long a notice stays in the footer
const noticeTTL = 4 * time.Second

// Deps are the services the TUI drives
type Deps struct {
	Session   *session.Manager
	Client    *client.Client
	Camera    camera.Device
	ConfigDir string
}

// splashDoneMsg is sent when startup validation and the camera check finish
type splashDoneMsg struct {
	state         session.State
	cameraAllowed bool
	err           error
}

// loginResultMsg is sent when a login attempt completes
type loginResultMsg struct {
	err error
}

// cameraOpenedMsg is sent when the camera stream has been opened
type cameraOpenedMsg struct {
	err error
}

// filesAddedMsg is sent when picked files have been decoded into the batch
type filesAddedMsg struct {
	paths []string
	added int
	err   error
}

// capturedMsg is sent when a camera still has been added to the batch
type capturedMsg struct {
	err error
}

// submittedMsg is sent when a report submission completes
type submittedMsg struct {
	receipt *models.Receipt
	err     error
}

// detailLoadedMsg is sent when a log entry has been fetched
type detailLoadedMsg struct {
	id    string
	entry *models.LogEntry
	err   error
}

// clearNoticeMsg expires the notice with the matching sequence number
type clearNoticeMsg struct {
	seq int
}

// App is the root model for the TUI
type App struct {
	deps   Deps
	screen Screen
	width  int
	height int

	batch         *capture.Batch
	uploader      *capture.Uploader
	capturer      *camera.Capturer
	cameraAllowed bool
	sending       bool

	notice     *capture.Notice
	noticeSeq  int
	lastUpdate time.Time
	notFoundID string

	// Child models
	loginForm  *login.Form
	dashboard  *dashboard.Dashboard
	menu       *menu.Menu
	filePicker *filepicker.FilePicker
	logList    *loglist.List
	detail     *logdetail.Detail

	// Recent files manager
	recentFiles *recentfiles.RecentFiles
}

// New creates a new TUI application
func New(deps Deps) *App {
	batch := &capture.Batch{}
	a := &App{
		deps:        deps,
		screen:      ScreenSplash,
		batch:       batch,
		uploader:    &capture.Uploader{Reporter: deps.Client, Batch: batch},
		menu:        menu.New(false),
		recentFiles: recentfiles.New(deps.ConfigDir),
	}
	if deps.Camera != nil {
		a.capturer = camera.NewCapturer(deps.Camera)
	}
	a.dashboard = dashboard.New(batch, a.dashboardWidth(), a.contentHeight())
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return a.splash()
}

// splash runs the camera permission check and session validation
func (a *App) splash() tea.Cmd {
	sess := a.deps.Session
	dev := a.deps.Camera
	return func() tea.Msg {
		ctx := context.Background()
		allowed := false
		if dev != nil {
			ok, err := dev.CheckPermission(ctx)
			if err != nil {
				slog.Debug("Camera permission check failed", "device", dev.Name(), "error", err)
			}
			allowed = ok && err == nil
		}
		state, err := sess.Initialize(ctx)
		return splashDoneMsg{state: state, cameraAllowed: allowed, err: err}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(a.dashboardWidth(), a.contentHeight())
		if a.logList != nil {
			a.logList.SetSize(a.fullWidth(), a.contentHeight())
		}
		if a.detail != nil {
			a.detail.SetWidth(a.fullWidth())
		}
		if a.filePicker != nil {
			a.filePicker.Update(msg)
		}
		if a.loginForm != nil {
			a.loginForm.Update(msg)
		}
		return a, nil

	case tea.KeyMsg:
		// Handle global quit
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

		// Route to current screen
		switch a.screen {
		case ScreenLogin:
			return a.updateLogin(msg)
		case ScreenDashboard:
			return a.updateDashboard(msg)
		case ScreenFilePicker:
			return a.updateFilePicker(msg)
		case ScreenLogs:
			return a.updateLogs(msg)
		case ScreenLogDetail, ScreenNotFound:
			return a.updateDetail(msg)
		}
		return a, nil

	case splashDoneMsg:
		a.cameraAllowed = msg.cameraAllowed
		a.menu.SetCameraAvailable(msg.cameraAllowed && a.capturer != nil)
		if msg.err != nil {
			slog.Info("Stored session could not be validated", "error", msg.err)
		}
		if msg.state == session.Authenticated {
			return a, a.enterDashboard()
		}
		return a, a.enterLogin()

	case login.SubmittedMsg:
		return a, a.login(msg)

	case login.CancelledMsg:
		return a, tea.Quit

	case loginResultMsg:
		if msg.err != nil {
			notice := capture.LoginFailed(msg.err)
			cmd := a.setNotice(notice)
			if a.loginForm != nil {
				return a, tea.Batch(cmd, a.loginForm.Failed(notice.Description))
			}
			return a, cmd
		}
		a.loginForm = nil
		return a, a.enterDashboard()

	case cameraOpenedMsg:
		if a.screen != ScreenDashboard {
			a.closeCamera()
			return a, nil
		}
		if errors.Is(msg.err, camera.ErrClosed) {
			return a, nil
		}
		if msg.err != nil && !errors.Is(msg.err, camera.ErrStreamOpen) {
			slog.Info("Camera unavailable", "error", msg.err)
			a.dashboard.SetCameraOpen(false)
			return a, a.setNotice(capture.CameraNotice(msg.err))
		}
		a.dashboard.SetCameraOpen(a.capturer != nil && a.capturer.IsOpen())
		return a, nil

	case menu.ActionSelectedMsg:
		return a.handleAction(msg.Action)

	case filepicker.FilesSelectedMsg:
		return a, a.addFiles(msg.Paths)

	case filepicker.CancelledMsg:
		a.filePicker = nil
		return a, a.enterDashboard()

	case filesAddedMsg:
		if msg.err != nil {
			if a.filePicker != nil {
				a.filePicker.SetError(msg.err.Error())
			}
			return a, nil
		}
		if err := a.recentFiles.Add(msg.paths...); err != nil {
			slog.Warn("Failed to save recent files", "error", err)
		}
		slog.Debug("Images added", "count", msg.added)
		a.filePicker = nil
		return a, a.enterDashboard()

	case capturedMsg:
		if errors.Is(msg.err, camera.ErrNotOpen) && a.screen != ScreenDashboard {
			return a, nil
		}
		if msg.err != nil {
			return a, a.setNotice(capture.CameraNotice(msg.err))
		}
		return a, nil

	case submittedMsg:
		a.sending = false
		a.dashboard.SetSending(false)
		if msg.err != nil {
			if sessionRejected(msg.err) {
				return a, a.expireSession()
			}
			return a, a.setNotice(capture.UploadNotice(msg.err))
		}
		a.dashboard.Clamp()
		return a, a.setNotice(capture.ReportSent())

	case loglist.LoadedMsg:
		if a.logList != nil {
			a.logList.Update(msg)
		}
		if msg.Err != nil && sessionRejected(msg.Err) {
			return a, a.expireSession()
		}
		if msg.Err == nil {
			a.lastUpdate = msg.At
		}
		return a, nil

	case loglist.OpenMsg:
		return a, a.loadDetail(msg.ID)

	case loglist.BackMsg:
		a.logList = nil
		return a, a.enterDashboard()

	case detailLoadedMsg:
		return a.handleDetailLoaded(msg)

	case clearNoticeMsg:
		if msg.seq == a.noticeSeq {
			a.notice = nil
		}
		return a, nil

	default:
		// Forward unknown messages to the focused child (needed for huh and textinput internals)
		switch a.screen {
		case ScreenLogin:
			if a.loginForm != nil {
				_, cmd := a.loginForm.Update(msg)
				return a, cmd
			}
		case ScreenFilePicker:
			if a.filePicker != nil {
				_, cmd := a.filePicker.Update(msg)
				return a, cmd
			}
		case ScreenLogs:
			if a.logList != nil {
				_, cmd := a.logList.Update(msg)
				return a, cmd
			}
		}
	}

	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.loginForm == nil {
		return a, nil
	}
	_, cmd := a.loginForm.Update(msg)
	return a, cmd
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "q" {
		return a, tea.Quit
	}
	if a.sending {
		// Only navigation while a report is in flight
		a.dashboard.Update(msg)
		return a, nil
	}
	var cmd tea.Cmd
	a.menu, cmd = a.menu.Update(msg)
	if cmd != nil {
		return a, cmd
	}
	a.dashboard.Update(msg)
	return a, nil
}

func (a *App) updateFilePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.filePicker == nil {
		return a, nil
	}
	model, cmd := a.filePicker.Update(msg)
	a.filePicker = model.(*filepicker.FilePicker)
	return a, cmd
}

func (a *App) updateLogs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.logList == nil {
		return a, nil
	}
	if msg.String() == "q" && !a.logList.Searching() {
		return a, tea.Quit
	}
	_, cmd := a.logList.Update(msg)
	return a, cmd
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "b", "esc":
		a.detail = nil
		a.notFoundID = ""
		if a.logList != nil {
			a.screen = ScreenLogs
			return a, nil
		}
		return a, a.enterDashboard()
	}
	return a, nil
}

func (a *App) handleAction(action menu.Action) (tea.Model, tea.Cmd) {
	switch action {
	case menu.ActionAddFiles:
		a.closeCamera()
		recentList, err := a.recentFiles.Load()
		if err != nil {
			slog.Debug("Failed to load recent files", "error", err)
		}
		browseDir, _ := os.Getwd()
		a.filePicker = filepicker.New(recentList, browseDir)
		a.screen = ScreenFilePicker
		return a, a.filePicker.Init()

	case menu.ActionCapture:
		return a, a.capture()

	case menu.ActionRemove:
		if err := a.batch.Remove(a.dashboard.Cursor()); err != nil {
			slog.Debug("Nothing to remove", "error", err)
		}
		a.dashboard.Clamp()
		return a, nil

	case menu.ActionSend:
		a.sending = true
		a.dashboard.SetSending(true)
		a.dashboard.SetTab(dashboard.TabSend)
		return a, a.submit()

	case menu.ActionHistory:
		a.closeCamera()
		a.logList = loglist.New(history.NewPager(a.deps.Client), a.fullWidth(), a.contentHeight())
		a.screen = ScreenLogs
		return a, a.logList.Init()

	case menu.ActionProfile:
		if a.dashboard.Tab() == dashboard.TabProfile {
			a.dashboard.SetTab(dashboard.TabSend)
		} else {
			a.dashboard.SetTab(dashboard.TabProfile)
		}
		return a, nil

	case menu.ActionLogout:
		return a, a.logout(capture.LoggedOut())
	}
	return a, nil
}

func (a *App) handleDetailLoaded(msg detailLoadedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if sessionRejected(msg.err) {
			return a, a.expireSession()
		}
		var apiErr *client.APIError
		if errors.Is(msg.err, history.ErrInvalidID) || (errors.As(msg.err, &apiErr) && apiErr.StatusCode == http.StatusNotFound) {
			a.notFoundID = msg.id
			a.screen = ScreenNotFound
			return a, nil
		}
		return a, a.setNotice(capture.Notice{Title: "Error", Description: msg.err.Error(), Destructive: true})
	}
	a.detail = logdetail.New(msg.entry, a.deps.Client.BaseURL(), a.fullWidth())
	a.screen = ScreenLogDetail
	a.lastUpdate = time.Now()
	return a, nil
}

// enterLogin shows the login form, prefilled with the remembered username
func (a *App) enterLogin() tea.Cmd {
	a.closeCamera()
	snap := a.deps.Session.Snapshot()
	a.loginForm = login.New(a.deps.Session.RememberedUsername(), snap.RememberMe)
	a.screen = ScreenLogin
	return a.loginForm.Init()
}

// enterDashboard shows the dashboard and opens the camera when allowed
func (a *App) enterDashboard() tea.Cmd {
	snap := a.deps.Session.Snapshot()
	a.dashboard.SetUser(snap.User, snap.RememberMe)
	a.dashboard.SetTokenExpiry(a.deps.Session.AccessTokenExpiry())
	a.dashboard.Clamp()
	a.screen = ScreenDashboard
	return a.openCamera()
}

func (a *App) login(msg login.SubmittedMsg) tea.Cmd {
	sess := a.deps.Session
	return func() tea.Msg {
		err := sess.Login(context.Background(), msg.Username, msg.Password, msg.Remember)
		return loginResultMsg{err: err}
	}
}

// logout ends the session and returns to the login screen. The batch is
// discarded so the next user starts empty.
func (a *App) logout(notice capture.Notice) tea.Cmd {
	if err := a.deps.Session.Logout(); err != nil {
		slog.Warn("Logout failed", "error", err)
	}
	a.batch.Clear()
	a.dashboard.SetTab(dashboard.TabSend)
	a.logList = nil
	a.detail = nil
	return tea.Batch(a.setNotice(notice), a.enterLogin())
}

// expireSession handles a token the backend rejected mid-session
func (a *App) expireSession() tea.Cmd {
	slog.Info("Session rejected by backend")
	return a.logout(capture.SessionExpired())
}

func (a *App) openCamera() tea.Cmd {
	if a.capturer == nil || !a.cameraAllowed || a.capturer.IsOpen() {
		a.dashboard.SetCameraOpen(a.capturer != nil && a.capturer.IsOpen())
		return nil
	}
	capturer := a.capturer
	return func() tea.Msg {
		return cameraOpenedMsg{err: capturer.Open(context.Background())}
	}
}

func (a *App) closeCamera() {
	if a.capturer == nil {
		return
	}
	if err := a.capturer.Close(); err != nil {
		slog.Debug("Camera close failed", "error", err)
	}
	a.dashboard.SetCameraOpen(false)
}

func (a *App) capture() tea.Cmd {
	if a.capturer == nil || !a.capturer.IsOpen() {
		return a.setNotice(capture.CameraNotice(capture.ErrCameraUnavailable))
	}
	capturer := a.capturer
	batch := a.batch
	return func() tea.Msg {
		return capturedMsg{err: capturer.CaptureInto(context.Background(), batch)}
	}
}

func (a *App) addFiles(paths []string) tea.Cmd {
	batch := a.batch
	return func() tea.Msg {
		n, err := capture.AddFiles(context.Background(), batch, paths)
		return filesAddedMsg{paths: paths, added: n, err: err}
	}
}

func (a *App) submit() tea.Cmd {
	uploader := a.uploader
	return func() tea.Msg {
		receipt, err := uploader.Submit(context.Background())
		return submittedMsg{receipt: receipt, err: err}
	}
}

func (a *App) loadDetail(id string) tea.Cmd {
	c := a.deps.Client
	return func() tea.Msg {
		entry, err := history.Detail(context.Background(), c, id)
		return detailLoadedMsg{id: id, entry: entry, err: err}
	}
}

// setNotice shows n in the footer and schedules its removal
func (a *App) setNotice(n capture.Notice) tea.Cmd {
	a.noticeSeq++
	a.notice = &n
	seq := a.noticeSeq
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// sessionRejected reports whether err means the stored token is no longer accepted
func sessionRejected(err error) bool {
	var authErr *client.AuthError
	if errors.As(err, &authErr) {
		return true
	}
	var apiErr *client.APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// Close releases the camera
func (a *App) Close() error {
	if a.capturer == nil {
		return nil
	}
	return a.capturer.Dispose()
}

// View implements tea.Model
func (a *App) View() string {
	var content string

	switch a.screen {
	case ScreenSplash:
		content = a.viewSplash()
	case ScreenLogin:
		content = a.viewLogin()
	case ScreenDashboard:
		content = a.viewDashboard()
	case ScreenFilePicker:
		content = a.viewFilePicker()
	case ScreenLogs:
		content = a.viewLogs()
	case ScreenLogDetail:
		content = a.viewDetail()
	case ScreenNotFound:
		content = a.viewNotFound()
	}

	return a.wrapWithFrame(content)
}

func (a *App) viewSplash() string {
	return styles.Title.Render(icons.App.String()+" Field Report") + "\n" +
		styles.Subtitle.Render("Checking session...")
}

func (a *App) viewLogin() string {
	if a.loginForm != nil {
		return styles.Panel.Width(a.fullWidth()).Render(a.loginForm.View())
	}
	return ""
}

// viewFilePicker renders the file picker screen
func (a *App) viewFilePicker() string {
	if a.filePicker != nil {
		return a.filePicker.View()
	}
	return ""
}

// viewDashboard renders the dashboard with actions pane
func (a *App) viewDashboard() string {
	leftPane := styles.ActivePanel.Width(a.dashboardWidth()).Render(a.dashboard.View())
	rightPane := styles.Panel.Width(a.actionsWidth()).Render(a.menu.View())

	if a.width < minTerminalWidth {
		return lipgloss.JoinVertical(lipgloss.Left, leftPane, rightPane)
	}
	// Join panes side by side
	return lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
}

func (a *App) viewLogs() string {
	if a.logList != nil {
		return styles.ActivePanel.Width(a.fullWidth()).Render(a.logList.View())
	}
	return ""
}

func (a *App) viewDetail() string {
	if a.detail != nil {
		return styles.ActivePanel.Width(a.fullWidth()).Render(a.detail.View())
	}
	return ""
}

func (a *App) viewNotFound() string {
	content := styles.StatusCritical.Render(icons.Warning.String()+" Report not found") + "\n\n" +
		fmt.Sprintf("No report exists with id %q.", a.notFoundID)
	return styles.Panel.Width(a.fullWidth()).Render(content)
}

// dashboardWidth calculates the width for the dashboard pane
func (a *App) dashboardWidth() int {
	if a.width < minTerminalWidth {
		return a.fullWidth()
	}
	return (a.width - panelPadding) / 2
}

// actionsWidth calculates the width for the actions pane
func (a *App) actionsWidth() int {
	if a.width < minTerminalWidth {
		return a.fullWidth()
	}
	return a.width - a.dashboardWidth() - 4
}

// fullWidth is the content width of a single full-width panel
func (a *App) fullWidth() int {
	return max(a.width-panelPadding, 40)
}

// contentHeight calculates the height available for pane content
func (a *App) contentHeight() int {
	// Header, footer, the newlines around them, and panel border+padding
	return max(a.height-8, 5)
}

// frameWidth is the header and footer width. One column short of the
// terminal keeps some terminals from wrapping.
func (a *App) frameWidth() int {
	return max(a.width-1, minTerminalWidth)
}

// renderHeader creates the header bar with app branding and the signed-in user
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Field Report"))

	rightText := ""
	if a.screen != ScreenSplash && a.screen != ScreenLogin {
		if u := a.deps.Session.Snapshot().User; u != nil {
			rightText = " " + contextStyle.Render(icons.User.String()+" "+u.FullName()) + " "
		}
	}

	fillWidth := width - 4 - lipgloss.Width(leftText) - lipgloss.Width(rightText) // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╭─") + leftText +
		borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText +
		borderStyle.Render("─╮")
}

// renderFooter creates the footer with keyboard shortcuts and status
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	statusStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	// Build keyboard shortcuts based on current screen
	var shortcuts []string
	switch a.screen {
	case ScreenLogin:
		shortcuts = []string{"Tab Next", "Enter Submit", "Esc Quit"}
	case ScreenDashboard:
		shortcuts = []string{"↑↓ Select", "Tab Profile", "q Quit"}
	case ScreenFilePicker:
		shortcuts = []string{"↑↓ Navigate", "Space Toggle", "Enter Add", "Esc Back"}
	case ScreenLogs:
		shortcuts = []string{"↑↓ Navigate", "Enter Open", "/ Search", "m More", "b Back"}
	case ScreenLogDetail, ScreenNotFound:
		shortcuts = []string{"b Back", "q Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
	}

	leftText := " " + strings.Join(styledShortcuts, "  ") + " "
	leftWidth := lipgloss.Width(leftText)

	// Right side: the current notice, else the last update time
	rightPlain := ""
	rightStyle := statusStyle
	if a.notice != nil {
		rightPlain = a.notice.Title
		if a.notice.Description != "" {
			rightPlain += ": " + a.notice.Description
		}
		rightStyle = styles.StatusOK
		if a.notice.Destructive {
			rightStyle = styles.StatusCritical
		}
	} else if !a.lastUpdate.IsZero() && (a.screen == ScreenLogs || a.screen == ScreenLogDetail) {
		rightPlain = "Updated " + formatTimeSince(a.lastUpdate)
	}

	rightText := ""
	if rightPlain != "" {
		room := width - 4 - leftWidth - 2
		rightPlain = truncate(rightPlain, room)
		if rightPlain != "" {
			rightText = " " + rightStyle.Render(rightPlain) + " "
		}
	}

	fillWidth := width - 4 - leftWidth - lipgloss.Width(rightText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	return borderStyle.Render("╰─") + leftText +
		borderStyle.Render(strings.Repeat("─", fillWidth)) + rightText +
		borderStyle.Render("─╯")
}

// truncate shortens s to at most width cells
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// formatTimeSince formats a duration since the given time in human-readable form
func formatTimeSince(t time.Time) string {
	d := time.Since(t)

	if d < time.Minute {
		secs := int(d.Seconds())
		if secs < 5 {
			return "just now"
		}
		return fmt.Sprintf("%ds ago", secs)
	}

	if d < time.Hour {
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	}

	return fmt.Sprintf("%dh ago", int(d.Hours()))
}

// wrapWithFrame wraps content with header and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	sb.WriteString(content)
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI
func Run(deps Deps) error {
	app := New(deps)
	defer func() {
		if err := app.Close(); err != nil {
			slog.Warn("Failed to release camera", "error", err)
		}
	}()

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
	)
	_, err := p.Run()
	return err
}
