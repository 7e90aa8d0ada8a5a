// ABOUTME: Dashboard action menu with single-key shortcuts
// ABOUTME: Renders the actions pane and emits the chosen action

package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/tui/icons"
	"github.com/markalston/fieldreport/internal/tui/styles"
)

// Action is a dashboard action
type Action int

const (
	ActionAddFiles Action = iota
	ActionCapture
	ActionRemove
	ActionSend
	ActionHistory
	ActionProfile
	ActionLogout
)

// String returns the string representation of an Action
func (a Action) String() string {
	switch a {
	case ActionAddFiles:
		return "add-files"
	case ActionCapture:
		return "capture"
	case ActionRemove:
		return "remove"
	case ActionSend:
		return "send"
	case ActionHistory:
		return "history"
	case ActionProfile:
		return "profile"
	case ActionLogout:
		return "logout"
	default:
		return "unknown"
	}
}

// ActionSelectedMsg is sent when an action key is pressed
type ActionSelectedMsg struct {
	Action Action
}

type item struct {
	key     string
	label   string
	icon    icons.Icon
	action  Action
	enabled bool
}

var disabledStyle = lipgloss.NewStyle().Foreground(styles.Muted)

// Menu is the dashboard actions pane
type Menu struct {
	items []item
}

// New creates the menu. The capture action is disabled without a camera.
func New(cameraAvailable bool) *Menu {
	return &Menu{
		items: []item{
			{key: "a", label: "Add image files", icon: icons.Folder, action: ActionAddFiles, enabled: true},
			{key: "c", label: "Capture photo", icon: icons.Camera, action: ActionCapture, enabled: cameraAvailable},
			{key: "x", label: "Remove selected", icon: icons.Trash, action: ActionRemove, enabled: true},
			{key: "s", label: "Send report", icon: icons.Send, action: ActionSend, enabled: true},
			{key: "h", label: "Report history", icon: icons.History, action: ActionHistory, enabled: true},
			{key: "p", label: "Profile", icon: icons.User, action: ActionProfile, enabled: true},
			{key: "o", label: "Log out", icon: icons.Logout, action: ActionLogout, enabled: true},
		},
	}
}

// SetCameraAvailable enables or disables the capture action
func (m *Menu) SetCameraAvailable(ok bool) {
	for i := range m.items {
		if m.items[i].action == ActionCapture {
			m.items[i].enabled = ok
		}
	}
}

// Update maps shortcut keys to actions
func (m *Menu) Update(msg tea.Msg) (*Menu, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	for _, it := range m.items {
		if it.key == key.String() && it.enabled {
			action := it.action
			return m, func() tea.Msg { return ActionSelectedMsg{Action: action} }
		}
	}
	return m, nil
}

// View renders the actions pane
func (m *Menu) View() string {
	var sb strings.Builder
	sb.WriteString(styles.Title.Render(icons.Settings.String() + " Actions"))
	sb.WriteString("\n")
	for _, it := range m.items {
		line := styles.KeyStyle.Render(it.key) + "  " + it.icon.String() + " " + it.label
		if !it.enabled {
			line = disabledStyle.Render(it.key + "  " + it.icon.String() + " " + it.label + " (unavailable)")
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
