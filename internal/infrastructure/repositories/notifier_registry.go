package repositories

import (
	"fmt"
	"sort"

	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

// NotifierFactory is a constructor that creates a NotifierRepository,
// optionally in dry-run mode.
type NotifierFactory func(dryRun bool) domainRepos.NotifierRepository

// ReferenceFactory is a constructor that creates a ReferenceRepository
// rooted at the given directory.
type ReferenceFactory func(dir string) domainRepos.ReferenceRepository

// NotifierRegistry manages all registered notification sink implementations.
type NotifierRegistry struct {
	notifiers map[string]NotifierFactory
}

// NewNotifierRegistry creates an empty notifier registry.
func NewNotifierRegistry() *NotifierRegistry {
	return &NotifierRegistry{
		notifiers: make(map[string]NotifierFactory),
	}
}

// Register adds a notifier factory under the given name (e.g. "github").
func (r *NotifierRegistry) Register(name string, factory NotifierFactory) {
	r.notifiers[name] = factory
}

// Get returns a configured sink instance for the given name.
func (r *NotifierRegistry) Get(name string, dryRun bool) (domainRepos.NotifierRepository, error) {
	factory, ok := r.notifiers[name]
	if !ok {
		return nil, fmt.Errorf("unknown notifier type: %q", name)
	}
	return factory(dryRun), nil
}

// Names returns the sorted list of registered notifier names.
func (r *NotifierRegistry) Names() []string {
	names := make([]string, 0, len(r.notifiers))
	for name := range r.notifiers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
