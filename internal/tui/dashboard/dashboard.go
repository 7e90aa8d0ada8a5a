// ABOUTME: Dashboard component with the report batch and profile tabs
// ABOUTME: Shows the images queued for sending and the signed-in profile in the left pane

package dashboard

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/capture"
	"github.com/markalston/fieldreport/internal/models"
	"github.com/markalston/fieldreport/internal/tui/icons"
	"github.com/markalston/fieldreport/internal/tui/styles"
)

// Tab selects the dashboard pane content
type Tab int

const (
	TabSend Tab = iota
	TabProfile
)

var mutedStyle = lipgloss.NewStyle().Foreground(styles.Muted)

// Dashboard displays the report batch or the profile
type Dashboard struct {
	batch      *capture.Batch
	user       *models.UserProfile
	rememberMe bool
	expiry     time.Time
	hasExpiry  bool
	cameraOpen bool
	sending    bool
	tab        Tab
	cursor     int
	width      int
	height     int
}

// New creates a dashboard over batch
func New(batch *capture.Batch, width, height int) *Dashboard {
	return &Dashboard{
		batch:  batch,
		width:  width,
		height: height,
	}
}

// SetUser sets the profile shown on the profile tab
func (d *Dashboard) SetUser(u *models.UserProfile, rememberMe bool) {
	d.user = u
	d.rememberMe = rememberMe
}

// SetTokenExpiry sets the access token expiry shown on the profile tab
func (d *Dashboard) SetTokenExpiry(exp time.Time, ok bool) {
	d.expiry = exp
	d.hasExpiry = ok
}

// SetCameraOpen records whether the camera stream is live
func (d *Dashboard) SetCameraOpen(open bool) {
	d.cameraOpen = open
}

// CameraOpen reports whether the view shows a live camera
func (d *Dashboard) CameraOpen() bool {
	return d.cameraOpen
}

// SetSending marks a submission in flight
func (d *Dashboard) SetSending(sending bool) {
	d.sending = sending
}

// SetTab switches the visible tab
func (d *Dashboard) SetTab(t Tab) {
	d.tab = t
}

// Tab returns the visible tab
func (d *Dashboard) Tab() Tab {
	return d.tab
}

// SetSize updates the dashboard dimensions
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// Cursor returns the selected image index
func (d *Dashboard) Cursor() int {
	return d.cursor
}

// Update moves the image cursor and switches tabs
func (d *Dashboard) Update(msg tea.Msg) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return
	}
	switch key.String() {
	case "up", "k":
		if d.cursor > 0 {
			d.cursor--
		}
	case "down", "j":
		if d.cursor < d.batch.Len()-1 {
			d.cursor++
		}
	case "tab":
		if d.tab == TabSend {
			d.tab = TabProfile
		} else {
			d.tab = TabSend
		}
	}
}

// Clamp keeps the cursor inside the batch after removals
func (d *Dashboard) Clamp() {
	if n := d.batch.Len(); d.cursor >= n {
		d.cursor = max(0, n-1)
	}
}

// View renders the dashboard
func (d *Dashboard) View() string {
	var content string
	if d.tab == TabProfile {
		content = d.viewProfile()
	} else {
		content = d.viewSend()
	}

	return lipgloss.NewStyle().
		Width(d.width).
		Height(d.height).
		Render(content)
}

func (d *Dashboard) viewSend() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Send.String() + " New Report"))
	sb.WriteString("\n")

	camera := styles.Subtitle.Render("Camera: off")
	if d.cameraOpen {
		camera = styles.StatusOK.Render(icons.Camera.String() + " Camera: live")
	}
	sb.WriteString(camera)
	sb.WriteString("\n\n")

	images := d.batch.Images()
	if len(images) == 0 {
		sb.WriteString(styles.Subtitle.Render("No images yet. Add files or capture a photo."))
		return sb.String()
	}

	total := 0
	for i, img := range images {
		total += img.Size()
		cursor := "  "
		style := styles.Normal
		if i == d.cursor {
			cursor = "> "
			style = styles.Selected
		}
		line := fmt.Sprintf("%d. %s %s", i+1, icons.Image.String(), img.Name)
		sb.WriteString(cursor + style.Render(line))
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("  %s, %s", img.MediaType, formatSize(img.Size()))))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	summary := fmt.Sprintf("%d image(s), %s", len(images), formatSize(total))
	if d.sending {
		summary += "  " + styles.StatusWarning.Render("Sending...")
	}
	sb.WriteString(styles.ValueStyle.Render(summary))
	return sb.String()
}

func (d *Dashboard) viewProfile() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.User.String() + " Profile"))
	sb.WriteString("\n")

	if d.user == nil {
		sb.WriteString(styles.Subtitle.Render("Not signed in"))
		return sb.String()
	}

	field := func(label, value string) {
		if value == "" {
			value = "-"
		}
		sb.WriteString(styles.LabelStyle.Render(label) + styles.ValueStyle.Render(value) + "\n")
	}
	field("Name", d.user.FullName())
	field("Username", d.user.Username)
	field("Email", d.user.Email)
	field("Mobile", d.user.Mobile)
	field("Permission", d.user.PermissionLevel)

	remember := "off"
	if d.rememberMe {
		remember = "on"
	}
	field("Remember me", remember)

	expiry := "unknown"
	if d.hasExpiry {
		expiry = d.expiry.Local().Format("Jan 2, 2006, 03:04 PM")
		if time.Until(d.expiry) <= 0 {
			expiry += " (expired)"
		}
	}
	field("Token until", expiry)
	return sb.String()
}

// formatSize renders a byte count for display
func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
