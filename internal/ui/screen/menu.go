package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/clanker-launchpad/internal/ui"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/router"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/style"
)

// MenuItem represents a menu item
type MenuItem struct {
	Label       string
	Description string
	Route       ui.Route
}

// MenuScreen is the root screen
type MenuScreen struct {
	width  int
	height int
	keyMap ui.KeyMap
	help   help.Model

	selectedIndex int
	menuItems     []MenuItem
	status        string

	titleStyle       lipgloss.Style
	menuItemStyle    lipgloss.Style
	selectedStyle    lipgloss.Style
	descriptionStyle lipgloss.Style
}

// NewMenuScreen creates the menu. status is shown under the title.
func NewMenuScreen(status string) *MenuScreen {
	palette := style.DefaultPalette()

	return &MenuScreen{
		keyMap: ui.DefaultKeyMap(),
		help:   help.New(),
		status: status,
		menuItems: []MenuItem{
			{
				Label:       "New launch plan",
				Description: "Configure a token, preview the dev buy and distribution, save the plan",
				Route:       ui.RouteWizard,
			},
			{
				Label:       "Activity",
				Description: "Recent log entries from this session",
				Route:       ui.RouteActivity,
			},
		},

		titleStyle: lipgloss.NewStyle().
			Foreground(palette.Primary).
			Bold(true).
			Margin(1, 0, 0, 0),

		menuItemStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 2),

		selectedStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 2).
			Bold(true),

		descriptionStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Padding(0, 4).
			Italic(true),
	}
}

// Init initializes the menu screen
func (m *MenuScreen) Init() tea.Cmd {
	return nil
}

// Update handles screen updates
func (m *MenuScreen) Update(msg tea.Msg) (router.Screen, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keyMap.QuitMenu):
		return m, tea.Quit
	case key.Matches(keyMsg, m.keyMap.Up):
		m.selectedIndex = (m.selectedIndex - 1 + len(m.menuItems)) % len(m.menuItems)
	case key.Matches(keyMsg, m.keyMap.Down):
		m.selectedIndex = (m.selectedIndex + 1) % len(m.menuItems)
	case key.Matches(keyMsg, m.keyMap.Enter):
		return m, ui.Navigate(m.menuItems[m.selectedIndex].Route)
	}
	return m, nil
}

// View renders the menu screen
func (m *MenuScreen) View() string {
	var content strings.Builder

	content.WriteString(m.titleStyle.Render("Clanker Launchpad"))
	content.WriteString("\n")
	if m.status != "" {
		content.WriteString(style.MutedTextStyle.Render(m.status))
		content.WriteString("\n")
	}
	content.WriteString("\n")

	items := make([]string, 0, len(m.menuItems)*2)
	for i, item := range m.menuItems {
		if i == m.selectedIndex {
			items = append(items, m.selectedStyle.Render(fmt.Sprintf("> %s", item.Label)))
			items = append(items, m.descriptionStyle.Render(item.Description))
			continue
		}
		items = append(items, m.menuItemStyle.Render("  "+item.Label))
	}
	content.WriteString(style.ActivePanelStyle.Render(strings.Join(items, "\n")))
	content.WriteString("\n")
	content.WriteString(m.help.ShortHelpView(m.keyMap.ContextualHelp(ui.RouteMenu)))

	result := content.String()
	if m.width > 80 && m.height > 0 {
		result = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, result)
	}
	return result
}

// SetSize sets the screen dimensions
func (m *MenuScreen) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width
}

// SelectedRoute returns the currently selected route
func (m *MenuScreen) SelectedRoute() ui.Route {
	return m.menuItems[m.selectedIndex].Route
}
