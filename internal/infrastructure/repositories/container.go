package repositories

import (
	"go.uber.org/dig"

	githubChecker "github.com/rios0rios0/harbinger/internal/infrastructure/repositories/checker/github"
	"github.com/rios0rios0/harbinger/internal/infrastructure/repositories/checker/gittags"
	"github.com/rios0rios0/harbinger/internal/infrastructure/repositories/checker/tarball"
	githubNotifier "github.com/rios0rios0/harbinger/internal/infrastructure/repositories/notifier/github"
	"github.com/rios0rios0/harbinger/internal/infrastructure/repositories/reference"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	// Register checker registry with all checker plugins
	if err := container.Provide(func() *CheckerRegistry {
		reg := NewCheckerRegistry()
		reg.Register(tarball.NewCheckerRepository())
		reg.Register(gittags.NewCheckerRepository())
		reg.Register(githubChecker.NewCheckerRepository())
		return reg
	}); err != nil {
		return err
	}

	// Register notifier registry with all sink factories
	if err := container.Provide(func() *NotifierRegistry {
		reg := NewNotifierRegistry()
		reg.Register("github", githubNotifier.NewNotifierRepository)
		return reg
	}); err != nil {
		return err
	}

	// Register the reference store factory (rooted at the configured refdir)
	if err := container.Provide(func() ReferenceFactory {
		return reference.NewYAMLReferenceRepository
	}); err != nil {
		return err
	}

	return nil
}
