package router

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui"
)

// Screen represents a screen that can be navigated to
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
	SetSize(width, height int)
}

// Factory builds a fresh screen for a route
type Factory func() Screen

// Router manages navigation between screens using a stack-based approach.
// It is the root tea.Model of the program.
type Router struct {
	stack  []Screen
	routes map[ui.Route]Factory
	width  int
	height int
}

// New creates a new router with the initial screen and the screens it can
// navigate to.
func New(initialScreen Screen, routes map[ui.Route]Factory) *Router {
	if routes == nil {
		routes = make(map[ui.Route]Factory)
	}
	return &Router{
		stack:  []Screen{initialScreen},
		routes: routes,
	}
}

// Init initializes the router
func (r *Router) Init() tea.Cmd {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1].Init()
}

// Update processes messages and updates the current screen
func (r *Router) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ui.RouterMsg:
		return r, r.navigate(msg.To)

	case ui.BackMsg:
		return r, r.Pop()

	case tea.WindowSizeMsg:
		r.SetSize(msg.Width, msg.Height)
		return r, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return r, tea.Quit
		}
	}

	if len(r.stack) == 0 {
		return r, nil
	}
	current := r.stack[len(r.stack)-1]
	updated, cmd := current.Update(msg)
	r.stack[len(r.stack)-1] = updated
	return r, cmd
}

// navigate pushes the screen registered for route. The root route clears
// the stack instead.
func (r *Router) navigate(route ui.Route) tea.Cmd {
	if route == ui.RouteMenu {
		return r.Clear()
	}
	factory, ok := r.routes[route]
	if !ok {
		return nil
	}
	return r.Push(factory())
}

// View renders the current screen
func (r *Router) View() string {
	if len(r.stack) == 0 {
		return "No screen available"
	}
	return r.stack[len(r.stack)-1].View()
}

// SetSize sets the size for the router and current screen
func (r *Router) SetSize(width, height int) {
	r.width = width
	r.height = height

	if len(r.stack) > 0 {
		r.stack[len(r.stack)-1].SetSize(width, height)
	}
}

// Push adds a new screen to the navigation stack
func (r *Router) Push(screen Screen) tea.Cmd {
	screen.SetSize(r.width, r.height)
	r.stack = append(r.stack, screen)
	return screen.Init()
}

// Pop removes the current screen from the stack
func (r *Router) Pop() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:len(r.stack)-1]

	current := r.stack[len(r.stack)-1]
	current.SetSize(r.width, r.height)
	return current.Init()
}

// Clear removes all screens except the first one
func (r *Router) Clear() tea.Cmd {
	if len(r.stack) <= 1 {
		return nil
	}

	r.stack = r.stack[:1]
	r.stack[0].SetSize(r.width, r.height)
	return r.stack[0].Init()
}

// Current returns the current screen
func (r *Router) Current() Screen {
	if len(r.stack) == 0 {
		return nil
	}
	return r.stack[len(r.stack)-1]
}

// Depth returns the current navigation depth
func (r *Router) Depth() int {
	return len(r.stack)
}
