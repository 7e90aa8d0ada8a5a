// ABOUTME: Login form as a bubbletea model
// ABOUTME: Uses a themed huh form pre-filled with the remembered username

package login

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/tui/icons"
	"github.com/markalston/fieldreport/internal/tui/styles"
)

// SubmittedMsg is sent when the form is completed
type SubmittedMsg struct {
	Username string
	Password string
	Remember bool
}

// CancelledMsg is sent when the form is abandoned
type CancelledMsg struct{}

// Form collects credentials
type Form struct {
	form  *huh.Form
	width int
	busy  bool
	err   string

	username string
	password string
	remember bool
}

// Theme returns the huh theme shared by the TUI and the CLI prompt
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	violet := lipgloss.Color("#8B5CF6")
	violetLight := lipgloss.Color("#A78BFA")
	blue := lipgloss.Color("#3B82F6")
	gray := lipgloss.Color("#9CA3AF")
	grayLight := lipgloss.Color("#E5E7EB")
	red := lipgloss.Color("#F87171")
	slate := lipgloss.Color("#334155")

	t.Group.Title = lipgloss.NewStyle().
		Foreground(violet).
		Bold(true).
		MarginBottom(1)
	t.Group.Description = lipgloss.NewStyle().
		Foreground(gray).
		MarginBottom(1)

	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(violet)
	t.Focused.Title = lipgloss.NewStyle().
		Foreground(violetLight).
		Bold(true)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(red).
		SetString(" *")
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(red)

	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(violet)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(gray)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().
		Foreground(violet)
	t.Focused.TextInput.Text = lipgloss.NewStyle().
		Foreground(grayLight)

	t.Focused.FocusedButton = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(blue).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(gray).
		Background(slate).
		Padding(0, 2).
		MarginRight(1)

	t.Blurred = t.Focused
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)
	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(gray)

	return t
}

// New creates a login form. username pre-fills the first field.
func New(username string, remember bool) *Form {
	f := &Form{username: username, remember: remember}
	f.form = f.build()
	return f
}

func (f *Form) build() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Placeholder("your username").
				Value(&f.username).
				Validate(required("username")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(required("password")),
			huh.NewConfirm().
				Title("Remember me").
				Description("Keep your username after logging out").
				Value(&f.remember),
		).Title("Sign in").
			Description("Log in to send reports"),
	).WithTheme(Theme()).WithShowHelp(false)
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width
	case tea.KeyMsg:
		if f.busy {
			return f, nil
		}
		if msg.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted && !f.busy {
		f.busy = true
		f.err = ""
		submitted := SubmittedMsg{Username: strings.TrimSpace(f.username), Password: f.password, Remember: f.remember}
		return f, func() tea.Msg { return submitted }
	}

	return f, cmd
}

// Failed resets the form after a rejected attempt. The username and
// remember choice are kept; the password is cleared.
func (f *Form) Failed(reason string) tea.Cmd {
	f.busy = false
	f.err = reason
	f.password = ""
	f.form = f.build()
	return f.form.Init()
}

// Busy reports whether a login attempt is in flight
func (f *Form) Busy() bool {
	return f.busy
}

// Username returns the current username value
func (f *Form) Username() string {
	return f.username
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Lock.String() + " Field Report"))
	sb.WriteString("\n")
	sb.WriteString(f.form.View())

	if f.busy {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusWarning.Render("Signing in..."))
	}
	if f.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(f.err))
	}
	return sb.String()
}
