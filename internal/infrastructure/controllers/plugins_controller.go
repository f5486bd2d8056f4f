package controllers

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	infraRepos "github.com/rios0rios0/harbinger/internal/infrastructure/repositories"
)

// PluginsController handles the "plugins" subcommand.
type PluginsController struct {
	checkerRegistry  *infraRepos.CheckerRegistry
	notifierRegistry *infraRepos.NotifierRegistry
}

// NewPluginsController creates a new PluginsController.
func NewPluginsController(
	checkerRegistry *infraRepos.CheckerRegistry,
	notifierRegistry *infraRepos.NotifierRegistry,
) *PluginsController {
	return &PluginsController{
		checkerRegistry:  checkerRegistry,
		notifierRegistry: notifierRegistry,
	}
}

// GetBind returns the Cobra command metadata for the plugins controller.
func (it *PluginsController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "plugins",
		Short: "List the registered checker plugins and notifiers",
		Long: `List the registered checker plugins and notifiers.

A dependency's "plugin" key in the configuration must name one of the
checker plugins printed here.`,
	}
}

// Execute prints the registered plugin and notifier keys.
func (it *PluginsController) Execute(_ *cobra.Command, _ []string) {
	logger.Info("Registered checker plugins:")
	for _, name := range it.checkerRegistry.Names() {
		logger.Infof("  - %s", name)
	}

	logger.Info("Registered notifiers:")
	for _, name := range it.notifierRegistry.Names() {
		logger.Infof("  - %s", name)
	}
}
