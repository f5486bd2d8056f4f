//go:build integration || unit || test

// Package repositorydoubles provides test doubles (spies, stubs, dummies) for
// repository interfaces. These are hand-crafted implementations — no mock frameworks.
package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	"github.com/rios0rios0/harbinger/internal/domain/repositories"
)

// SpyCheckerRepository implements repositories.CheckerRepository as a
// configurable spy.
type SpyCheckerRepository struct {
	// --- identity ---
	PluginName string

	// --- GetVersion ---
	Record     entities.VersionRecord
	VersionErr error
	// spy: calls received
	VersionCalls    []entities.Dependency
	VersionWorkDirs []string

	// --- GetChangelog ---
	Changelog    string
	ChangelogErr error
	// spy: calls received
	ChangelogCalls []ChangelogCall
}

// ChangelogCall records a single invocation of GetChangelog.
type ChangelogCall struct {
	OldRecord entities.VersionRecord
	NewRecord entities.VersionRecord
	WorkDir   string
}

var _ repositories.CheckerRepository = (*SpyCheckerRepository)(nil)

func (c *SpyCheckerRepository) Name() string { return c.PluginName }

func (c *SpyCheckerRepository) GetVersion(
	_ context.Context,
	dep entities.Dependency,
	_ entities.AuthContext,
	workDir string,
) (entities.VersionRecord, error) {
	c.VersionCalls = append(c.VersionCalls, dep)
	c.VersionWorkDirs = append(c.VersionWorkDirs, workDir)
	if c.VersionErr != nil {
		return nil, c.VersionErr
	}
	return c.Record.Clone(), nil
}

func (c *SpyCheckerRepository) GetChangelog(
	_ context.Context,
	oldRecord, newRecord entities.VersionRecord,
	_ entities.Dependency,
	_ entities.AuthContext,
	workDir string,
) (string, error) {
	c.ChangelogCalls = append(c.ChangelogCalls, ChangelogCall{
		OldRecord: oldRecord,
		NewRecord: newRecord,
		WorkDir:   workDir,
	})
	if c.ChangelogErr != nil {
		return "", c.ChangelogErr
	}
	return c.Changelog, nil
}
