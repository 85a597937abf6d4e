package router

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui"
)

type stubScreen struct {
	name    string
	inits   int
	updates int
	width   int
	height  int
}

func (s *stubScreen) Init() tea.Cmd {
	s.inits++
	return nil
}

func (s *stubScreen) Update(msg tea.Msg) (Screen, tea.Cmd) {
	s.updates++
	return s, nil
}

func (s *stubScreen) View() string { return s.name }

func (s *stubScreen) SetSize(width, height int) {
	s.width = width
	s.height = height
}

func newTestRouter() (*Router, *stubScreen) {
	root := &stubScreen{name: "menu"}
	r := New(root, map[ui.Route]Factory{
		ui.RouteWizard:   func() Screen { return &stubScreen{name: "wizard"} },
		ui.RouteActivity: func() Screen { return &stubScreen{name: "activity"} },
	})
	return r, root
}

func TestRouterNavigation(t *testing.T) {
	r, root := newTestRouter()
	r.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	r.Update(ui.RouterMsg{To: ui.RouteWizard})
	if r.Depth() != 2 || r.View() != "wizard" {
		t.Fatalf("expected wizard on top, got depth %d view %q", r.Depth(), r.View())
	}
	if s := r.Current().(*stubScreen); s.width != 120 || s.height != 40 || s.inits != 1 {
		t.Errorf("pushed screen not sized/initialized: %+v", s)
	}

	r.Update(ui.RouterMsg{To: ui.RouteActivity})
	if r.Depth() != 3 {
		t.Fatalf("expected depth 3, got %d", r.Depth())
	}

	r.Update(ui.BackMsg{})
	if r.View() != "wizard" {
		t.Errorf("expected wizard after back, got %q", r.View())
	}

	r.Update(ui.RouterMsg{To: ui.RouteMenu})
	if r.Depth() != 1 || r.View() != "menu" {
		t.Errorf("menu route should clear the stack, got depth %d", r.Depth())
	}
	if root.inits != 1 {
		t.Errorf("root should be re-initialized once, got %d", root.inits)
	}
}

func TestRouterIgnoresUnknownRouteAndRootPop(t *testing.T) {
	r, _ := newTestRouter()

	r.Update(ui.RouterMsg{To: ui.Route(42)})
	r.Update(ui.BackMsg{})
	if r.Depth() != 1 {
		t.Errorf("expected depth 1, got %d", r.Depth())
	}
}

func TestRouterForwardsToCurrentScreen(t *testing.T) {
	r, root := newTestRouter()

	r.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if root.updates != 1 {
		t.Errorf("expected 1 update, got %d", root.updates)
	}
}

func TestRouterQuitsOnCtrlC(t *testing.T) {
	r, root := newTestRouter()

	_, cmd := r.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("expected tea.QuitMsg")
	}
	if root.updates != 0 {
		t.Errorf("ctrl+c must not reach the screen")
	}
}
