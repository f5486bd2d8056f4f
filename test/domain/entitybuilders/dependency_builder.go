//go:build integration || unit || test

package entitybuilders //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"github.com/rios0rios0/harbinger/internal/domain/entities"
)

// DependencyBuilder helps create test dependencies with a fluent interface.
type DependencyBuilder struct {
	name   string
	plugin string
	params map[string]string
}

// NewDependencyBuilder creates a new dependency builder with sensible defaults.
func NewDependencyBuilder() *DependencyBuilder {
	return &DependencyBuilder{
		name:   "test-dependency",
		plugin: "tarball",
		params: map[string]string{},
	}
}

// WithName sets the dependency name.
func (b *DependencyBuilder) WithName(name string) *DependencyBuilder {
	b.name = name
	return b
}

// WithPlugin sets the checker plugin key.
func (b *DependencyBuilder) WithPlugin(plugin string) *DependencyBuilder {
	b.plugin = plugin
	return b
}

// WithParam sets one plugin parameter.
func (b *DependencyBuilder) WithParam(key, value string) *DependencyBuilder {
	b.params[key] = value
	return b
}

// Build creates the dependency.
func (b *DependencyBuilder) Build() entities.Dependency {
	params := make(map[string]string, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	return entities.Dependency{
		Name:   b.name,
		Plugin: b.plugin,
		Params: params,
	}
}
