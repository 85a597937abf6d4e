package component

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rovshanmuradov/clanker-launchpad/internal/logger"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/style"
)

// activityLimit is how many buffered entries the viewer reads per refresh.
const activityLimit = 200

// ActivityLog renders the most recent entries of a logger.ActivityBuffer
// in a scrollable viewport.
type ActivityLog struct {
	buffer    *logger.ActivityBuffer
	viewport  viewport.Model
	palette   style.Palette
	showDebug bool
	follow    bool

	container lipgloss.Style
	title     lipgloss.Style
	timestamp lipgloss.Style
}

// NewActivityLog creates a viewer over buffer. A nil buffer renders a
// placeholder.
func NewActivityLog(buffer *logger.ActivityBuffer) *ActivityLog {
	palette := style.DefaultPalette()

	al := &ActivityLog{
		buffer:   buffer,
		viewport: viewport.New(60, 8),
		palette:  palette,
		follow:   true,

		container: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.Info).
			Padding(0, 1),

		title: lipgloss.NewStyle().
			Foreground(palette.Info).
			Bold(true),

		timestamp: lipgloss.NewStyle().
			Foreground(palette.TextMuted),
	}
	al.Refresh()
	return al
}

// SetSize sets the component dimensions including the border.
func (al *ActivityLog) SetSize(width, height int) {
	al.viewport.Width = max(width-4, 10)
	al.viewport.Height = max(height-3, 2)
	al.Refresh()
}

// SetShowDebug toggles debug entries.
func (al *ActivityLog) SetShowDebug(show bool) {
	al.showDebug = show
	al.Refresh()
}

// Update forwards scrolling keys to the viewport. Scrolling up stops
// following new entries until the bottom is reached again.
func (al *ActivityLog) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	al.viewport, cmd = al.viewport.Update(msg)
	al.follow = al.viewport.AtBottom()
	return cmd
}

// Refresh reloads the viewport content from the buffer.
func (al *ActivityLog) Refresh() {
	if al.buffer == nil {
		al.viewport.SetContent("No activity buffer available")
		return
	}

	lines := al.Lines()
	if len(lines) == 0 {
		al.viewport.SetContent("No activity yet")
		return
	}

	al.viewport.SetContent(strings.Join(lines, "\n"))
	if al.follow {
		al.viewport.GotoBottom()
	}
}

// Lines returns the formatted, filtered entries, oldest first.
func (al *ActivityLog) Lines() []string {
	if al.buffer == nil {
		return nil
	}
	entries := al.buffer.GetRecentLogs(activityLimit)
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		level := strings.ToLower(entry.Level)
		if level == "debug" && !al.showDebug {
			continue
		}
		msg := lipgloss.NewStyle().Foreground(al.palette.LevelColor(level)).Render(entry.Message)
		lines = append(lines, fmt.Sprintf("%s %-5s %s",
			al.timestamp.Render(entry.Timestamp.Local().Format("15:04:05")), level, msg))
	}
	return lines
}

// View renders the viewer
func (al *ActivityLog) View() string {
	title := "Activity"
	if al.buffer != nil {
		total, malformed := al.buffer.GetStats()
		title = fmt.Sprintf("Activity (%d entries", total)
		if malformed > 0 {
			title += fmt.Sprintf(", %d unreadable", malformed)
		}
		title += ")"
	}
	return al.container.Render(lipgloss.JoinVertical(lipgloss.Left,
		al.title.Render(title),
		al.viewport.View(),
	))
}
