package screen

import (
	"go.uber.org/zap"

	"github.com/rovshanmuradov/clanker-launchpad/internal/logger"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui"
	"github.com/rovshanmuradov/clanker-launchpad/internal/ui/router"
)

// AppOptions wires the screens of the launchpad TUI.
type AppOptions struct {
	Exporter PlanExporter
	Wizard   WizardOptions
	Activity *logger.ActivityBuffer
	Logger   *zap.Logger
	Status   string
}

// NewApp returns the root model: the menu with the wizard and activity
// screens behind it.
func NewApp(opts AppOptions) *router.Router {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return router.New(NewMenuScreen(opts.Status), map[ui.Route]router.Factory{
		ui.RouteWizard: func() router.Screen {
			return NewLaunchWizard(opts.Exporter, opts.Wizard, opts.Logger)
		},
		ui.RouteActivity: func() router.Screen {
			return NewActivityScreen(opts.Activity)
		},
	})
}
