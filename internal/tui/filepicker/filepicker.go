// ABOUTME: File picker TUI component for attaching gallery images
// ABOUTME: Shows recent images, a path input, and a folder browser with multi-select

package filepicker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/markalston/fieldreport/internal/tui/styles"
)

// State represents the current UI state
type state int

const (
	stateList state = iota
	stateInput
	stateBrowse
)

// FilesSelectedMsg is sent when images are chosen, in selection order
type FilesSelectedMsg struct {
	Paths []string
}

// CancelledMsg is sent when the user cancels
type CancelledMsg struct{}

// FilePicker is the image selection component
type FilePicker struct {
	recentFiles []string
	browseDir   string
	browse      []ImageFile
	picked      []string
	cursor      int
	state       state
	textInput   textinput.Model
	err         string
	width       int
	height      int
}

var (
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Danger)
	helpStyle    = lipgloss.NewStyle().Foreground(styles.Muted)
	dividerStyle = lipgloss.NewStyle().Foreground(styles.Surface)
)

// New creates a new FilePicker. browseDir is the folder offered for
// browsing; empty means the working directory.
func New(recentFiles []string, browseDir string) *FilePicker {
	ti := textinput.New()
	ti.Placeholder = "/path/to/photo.jpg or a folder"
	ti.CharLimit = 256
	ti.Width = 60

	if browseDir == "" {
		browseDir, _ = os.Getwd()
	}

	return &FilePicker{
		recentFiles: recentFiles,
		browseDir:   browseDir,
		state:       stateList,
		textInput:   ti,
	}
}

// Init implements tea.Model
func (fp *FilePicker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (fp *FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fp.width = msg.Width
		fp.height = msg.Height
		return fp, nil

	case tea.KeyMsg:
		// Clear error on any key press
		fp.err = ""

		switch fp.state {
		case stateList:
			return fp.updateList(msg)
		case stateInput:
			return fp.updateInput(msg)
		case stateBrowse:
			return fp.updateBrowse(msg)
		}
	}

	return fp, nil
}

func (fp *FilePicker) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxItems := fp.listItemCount()

	switch msg.String() {
	case "up", "k":
		if fp.cursor > 0 {
			fp.cursor--
		}
	case "down", "j":
		if fp.cursor < maxItems-1 {
			fp.cursor++
		}
	case " ":
		if fp.cursor < len(fp.recentFiles) {
			fp.toggle(fp.recentFiles[fp.cursor])
		}
	case "enter":
		return fp.selectListItem()
	case "esc", "b":
		return fp, func() tea.Msg { return CancelledMsg{} }
	}

	return fp, nil
}

func (fp *FilePicker) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fp.state = stateList
		fp.textInput.SetValue("")
		fp.textInput.Blur()
		return fp, nil
	case "enter":
		path := strings.TrimSpace(fp.textInput.Value())
		if path == "" {
			fp.err = "Please enter a file path"
			return fp, nil
		}
		return fp.openPath(expandPath(path))
	}

	var cmd tea.Cmd
	fp.textInput, cmd = fp.textInput.Update(msg)
	return fp, cmd
}

func (fp *FilePicker) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	maxItems := len(fp.browse) + 1 // +1 for [back]

	switch msg.String() {
	case "up", "k":
		if fp.cursor > 0 {
			fp.cursor--
		}
	case "down", "j":
		if fp.cursor < maxItems-1 {
			fp.cursor++
		}
	case " ":
		if fp.cursor < len(fp.browse) {
			fp.toggle(fp.browse[fp.cursor].Path)
		}
	case "enter":
		if fp.cursor == len(fp.browse) {
			fp.backToList()
			return fp, nil
		}
		if len(fp.picked) == 0 {
			fp.toggle(fp.browse[fp.cursor].Path)
		}
		return fp.confirm()
	case "esc", "b":
		fp.backToList()
		return fp, nil
	}

	return fp, nil
}

func (fp *FilePicker) listItemCount() int {
	return len(fp.recentFiles) + 2 // "Enter path..." and "Browse..."
}

func (fp *FilePicker) selectListItem() (tea.Model, tea.Cmd) {
	recentCount := len(fp.recentFiles)

	switch {
	case fp.cursor < recentCount:
		if len(fp.picked) == 0 {
			fp.toggle(fp.recentFiles[fp.cursor])
		}
		return fp.confirm()

	case fp.cursor == recentCount:
		fp.state = stateInput
		fp.textInput.Focus()
		return fp, textinput.Blink

	default:
		return fp.openDir(fp.browseDir)
	}
}

// openPath browses a directory or selects a single file
func (fp *FilePicker) openPath(path string) (tea.Model, tea.Cmd) {
	info, err := os.Stat(path)
	if err != nil {
		fp.err = describeError(path, err)
		return fp, nil
	}
	if info.IsDir() {
		return fp.openDir(path)
	}
	fp.picked = []string{path}
	return fp.confirm()
}

func (fp *FilePicker) openDir(dir string) (tea.Model, tea.Cmd) {
	files, err := Discover(dir)
	if err != nil {
		fp.err = describeError(dir, err)
		return fp, nil
	}
	fp.browseDir = dir
	fp.browse = files
	fp.picked = nil
	fp.cursor = 0
	fp.state = stateBrowse
	fp.textInput.Blur()
	return fp, nil
}

func (fp *FilePicker) confirm() (tea.Model, tea.Cmd) {
	paths := fp.picked
	fp.picked = nil
	return fp, func() tea.Msg {
		return FilesSelectedMsg{Paths: paths}
	}
}

// toggle adds or removes path, keeping the order selections were made in
func (fp *FilePicker) toggle(path string) {
	for i, p := range fp.picked {
		if p == path {
			fp.picked = append(fp.picked[:i], fp.picked[i+1:]...)
			return
		}
	}
	fp.picked = append(fp.picked, path)
}

func (fp *FilePicker) order(path string) int {
	for i, p := range fp.picked {
		if p == path {
			return i + 1
		}
	}
	return 0
}

func (fp *FilePicker) backToList() {
	fp.state = stateList
	fp.cursor = 0
	fp.picked = nil
}

func describeError(path string, err error) string {
	switch {
	case os.IsNotExist(err):
		return "File not found: " + path
	case os.IsPermission(err):
		return "Cannot read file: permission denied"
	default:
		return "Error reading file: " + err.Error()
	}
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetError sets an error message to display
func (fp *FilePicker) SetError(msg string) {
	fp.err = msg
}

// View implements tea.Model
func (fp *FilePicker) View() string {
	switch fp.state {
	case stateInput:
		return fp.viewInput()
	case stateBrowse:
		return fp.viewBrowse()
	default:
		return fp.viewList()
	}
}

func (fp *FilePicker) row(i int, label, path string) string {
	cursor := "  "
	style := styles.Normal
	if i == fp.cursor {
		cursor = "> "
		style = styles.Selected
	}
	mark := ""
	if path != "" {
		mark = "[ ] "
		if n := fp.order(path); n > 0 {
			mark = fmt.Sprintf("[%d] ", n)
		}
	}
	return cursor + mark + style.Render(fp.truncate(label)) + "\n"
}

func (fp *FilePicker) truncate(s string) string {
	if fp.width > 20 && len(s) > fp.width-10 {
		return "..." + s[len(s)-(fp.width-13):]
	}
	return s
}

func (fp *FilePicker) viewList() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Attach images"))
	b.WriteString("\n")

	if len(fp.recentFiles) > 0 {
		b.WriteString(helpStyle.Render("Recent images:"))
		b.WriteString("\n")
		for i, path := range fp.recentFiles {
			b.WriteString(fp.row(i, path, path))
		}

		dividerWidth := min(40, fp.width-4)
		if dividerWidth < 1 {
			dividerWidth = 40
		}
		b.WriteString(dividerStyle.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
	}

	idx := len(fp.recentFiles)
	b.WriteString(fp.row(idx, "Enter path...", ""))
	b.WriteString(fp.row(idx+1, "Browse "+filepath.Base(fp.browseDir)+"...", ""))

	if fp.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + fp.err))
	}

	return b.String()
}

func (fp *FilePicker) viewInput() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Enter image or folder path"))
	b.WriteString("\n")
	b.WriteString(fp.textInput.View())

	if fp.err != "" {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Error: " + fp.err))
	}

	return b.String()
}

func (fp *FilePicker) viewBrowse() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Images in " + fp.truncate(fp.browseDir)))
	b.WriteString("\n")

	if len(fp.browse) == 0 {
		b.WriteString(helpStyle.Render("No images found"))
		b.WriteString("\n")
	}
	for i, f := range fp.browse {
		b.WriteString(fp.row(i, f.Name, f.Path))
	}
	b.WriteString(fp.row(len(fp.browse), "[back]", ""))

	if len(fp.picked) > 0 {
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(pluralImages(len(fp.picked)) + " selected"))
	}

	if fp.err != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Error: " + fp.err))
	}

	return b.String()
}

func pluralImages(n int) string {
	if n == 1 {
		return "1 image"
	}
	return fmt.Sprintf("%d images", n)
}
