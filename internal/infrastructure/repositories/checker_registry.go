package repositories

import (
	"fmt"
	"sort"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

// CheckerRegistry maps plugin keys to their checker implementations.
// Plugins are resolved explicitly at configuration time; an unknown key is
// an error, never a name-derived fallback.
type CheckerRegistry struct {
	checkers map[string]domainRepos.CheckerRepository
}

// NewCheckerRegistry creates an empty checker registry.
func NewCheckerRegistry() *CheckerRegistry {
	return &CheckerRegistry{
		checkers: make(map[string]domainRepos.CheckerRepository),
	}
}

// Register adds a checker under its name.
func (r *CheckerRegistry) Register(c domainRepos.CheckerRepository) {
	r.checkers[c.Name()] = c
}

// Get returns the checker registered under the given plugin key.
func (r *CheckerRegistry) Get(name string) (domainRepos.CheckerRepository, error) {
	checker, ok := r.checkers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrPluginNotFound, name)
	}
	return checker, nil
}

// Names returns the sorted list of registered plugin keys.
func (r *CheckerRegistry) Names() []string {
	names := make([]string, 0, len(r.checkers))
	for name := range r.checkers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
