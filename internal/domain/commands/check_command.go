package commands

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/harbinger/config"
	"github.com/rios0rios0/harbinger/internal/domain/entities"
	infraRepos "github.com/rios0rios0/harbinger/internal/infrastructure/repositories"
)

// Check is the interface for the check command (batch mode).
type Check interface {
	Execute(ctx context.Context, cfg *config.Config, opts CheckOptions) error
}

// CheckOptions holds runtime options for a single batch run.
type CheckOptions struct {
	DryRun         bool
	Verbose        bool
	DependencyName string // If set, only check this dependency (CLI override)
	Token          string // If set, overrides the configured token
}

// CheckCommand drives the full release-check batch: it iterates every
// configured dependency and runs the check-notify cycle for each, isolating
// failures so one dependency's error never aborts the batch.
type CheckCommand struct {
	checkerRegistry  *infraRepos.CheckerRegistry
	notifierRegistry *infraRepos.NotifierRegistry
	referenceFactory infraRepos.ReferenceFactory
}

// NewCheckCommand creates a new CheckCommand with the given registries and
// reference store factory.
func NewCheckCommand(
	checkerRegistry *infraRepos.CheckerRegistry,
	notifierRegistry *infraRepos.NotifierRegistry,
	referenceFactory infraRepos.ReferenceFactory,
) *CheckCommand {
	return &CheckCommand{
		checkerRegistry:  checkerRegistry,
		notifierRegistry: notifierRegistry,
		referenceFactory: referenceFactory,
	}
}

// Execute runs the batch using the provided configuration. It returns a
// non-nil error iff at least one dependency's check hard-failed, so the CLI
// can exit non-zero while every dependency still got its attempt.
func (it *CheckCommand) Execute(
	ctx context.Context,
	cfg *config.Config,
	opts CheckOptions,
) error {
	if opts.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	token := opts.Token
	if token == "" {
		token = cfg.Token
	}
	auth := entities.AuthContext{Token: token}

	sink, err := it.notifierRegistry.Get(cfg.Notifier, opts.DryRun)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	references := it.referenceFactory(cfg.RefDir)
	notifier := NewReleaseNotifier(references, sink, cfg.NotifyRepo)

	totalChecked := 0
	totalFailed := 0
	outcomes := make(map[CheckOutcome]int)

	for _, dep := range cfg.DependencyList() {
		// Skip if CLI filter is set and doesn't match
		if opts.DependencyName != "" && dep.Name != opts.DependencyName {
			continue
		}

		totalChecked++
		logger.Infof("Checking dependency: %s (plugin %q)", dep.Name, dep.Plugin)

		checker, checkerErr := it.checkerRegistry.Get(dep.Plugin)
		if checkerErr != nil {
			logger.Errorf("Failed to resolve plugin for %q: %v", dep.Name, checkerErr)
			totalFailed++
			continue
		}

		result, checkErr := notifier.Check(ctx, checker, dep, auth)
		if checkErr != nil {
			logger.Errorf("Check failed for %q: %v", dep.Name, checkErr)
			totalFailed++
			continue
		}

		outcomes[result.Outcome]++
		logger.Debugf("Dependency %q finished: %s", dep.Name, result.Outcome)
	}

	logger.Infof(
		"Check complete: %d checked, %d notified, %d bootstrapped, %d unchanged, %d failed",
		totalChecked, outcomes[OutcomeNotified], outcomes[OutcomeBootstrapped],
		outcomes[OutcomeUnchanged], totalFailed,
	)

	if totalFailed > 0 {
		return fmt.Errorf("%d of %d dependency checks failed", totalFailed, totalChecked)
	}
	return nil
}
