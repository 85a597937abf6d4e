package ui

import tea "github.com/charmbracelet/bubbletea"

// Tea message types for UI communication

// RouterMsg represents navigation between screens
type RouterMsg struct {
	To Route
}

// BackMsg asks the router to pop the current screen
type BackMsg struct{}

// Route represents different screens in the application
type Route int

const (
	RouteMenu Route = iota
	RouteWizard
	RouteActivity
)

// String returns the string representation of the route
func (r Route) String() string {
	switch r {
	case RouteMenu:
		return "menu"
	case RouteWizard:
		return "wizard"
	case RouteActivity:
		return "activity"
	default:
		return "unknown"
	}
}

// Navigate returns a command that routes to the given screen.
func Navigate(to Route) tea.Cmd {
	return func() tea.Msg { return RouterMsg{To: to} }
}

// Back returns a command that pops the current screen.
func Back() tea.Msg { return BackMsg{} }
