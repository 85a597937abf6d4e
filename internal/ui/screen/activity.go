package screen

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/clanker-launchpad/internal/logger"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/component"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/router"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/style"
)

const activityRefresh = time.Second

type activityTickMsg time.Time

// ActivityScreen shows the session's log entries
type ActivityScreen struct {
	keyMap ui.KeyMap
	help   help.Model
	log    *component.ActivityLog
}

// NewActivityScreen creates the activity screen over buffer
func NewActivityScreen(buffer *logger.ActivityBuffer) *ActivityScreen {
	return &ActivityScreen{
		keyMap: ui.DefaultKeyMap(),
		help:   help.New(),
		log:    component.NewActivityLog(buffer),
	}
}

// Init starts the refresh ticker
func (s *ActivityScreen) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(activityRefresh, func(t time.Time) tea.Msg {
		return activityTickMsg(t)
	})
}

// Update handles screen updates
func (s *ActivityScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case activityTickMsg:
		s.log.Refresh()
		return s, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, s.keyMap.Back):
			return s, ui.Back
		case key.Matches(msg, s.keyMap.Refresh):
			s.log.Refresh()
			return s, nil
		}
	}
	return s, s.log.Update(msg)
}

// View renders the screen
func (s *ActivityScreen) View() string {
	return style.TitleStyle.Render("Activity") + "\n" +
		s.log.View() + "\n" +
		s.help.ShortHelpView(s.keyMap.ContextualHelp(ui.RouteActivity))
}

// SetSize sets the screen dimensions
func (s *ActivityScreen) SetSize(width, height int) {
	s.help.Width = width
	s.log.SetSize(width, height-5)
}
