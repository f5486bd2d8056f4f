package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/harbinger/config"
	"github.com/rios0rios0/harbinger/internal/domain/commands"
	"github.com/rios0rios0/harbinger/internal/domain/entities"
)

// CheckController handles the "check" subcommand (batch mode).
type CheckController struct {
	command commands.Check
}

// NewCheckController creates a new CheckController.
func NewCheckController(command commands.Check) *CheckController {
	return &CheckController{command: command}
}

// GetBind returns the Cobra command metadata for the check controller.
func (it *CheckController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "check",
		Short: "Check every configured dependency for a new upstream release",
		Long: `Check every configured dependency for a new upstream release.

This is the main command intended to be run on a schedule. For each
dependency it fetches the current remote version through the configured
plugin, compares it against the stored reference, and on a change posts
an issue to the notification repository and updates the reference.

One dependency's failure never aborts the batch; the exit code is
non-zero when at least one check hard-failed.`,
	}
}

// Execute runs the batch check mode.
func (it *CheckController) Execute(cmd *cobra.Command, _ []string) {
	ctx := context.Background()

	configPath, _ := cmd.Flags().GetString("config")
	token, _ := cmd.Flags().GetString("token")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")
	dependency, _ := cmd.Flags().GetString("dependency")

	// Load configuration
	cfgPath := configPath
	if cfgPath == "" {
		var err error
		cfgPath, err = config.FindConfigFile()
		if err != nil {
			logger.Fatalf(
				"no config file found: %v\nSpecify one with --config or create harbinger.yaml",
				err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	logger.Info("Starting harbinger check...")

	if runErr := it.command.Execute(ctx, cfg, commands.CheckOptions{
		DryRun:         dryRun,
		Verbose:        verbose,
		DependencyName: dependency,
		Token:          token,
	}); runErr != nil {
		logger.Fatalf("Check failed: %v", runErr)
	}
}

// AddFlags adds the check-specific flags to the given Cobra command.
func (it *CheckController) AddFlags(cmd *cobra.Command) {
	cmd.Flags().String("dependency", "", "Only check this dependency")
}
