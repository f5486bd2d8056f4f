package repositories

import (
	"context"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
)

// CheckerRepository abstracts a release-checker plugin for one kind of
// upstream project (source tarball, git tags, GitHub releases, etc.).
// Plugins are stateless; per-dependency parameters arrive on each call and
// all temporary artifacts must stay inside the supplied work directory.
type CheckerRepository interface {
	// Name returns the plugin key (e.g. "tarball", "gittags", "github").
	Name() string

	// GetVersion fetches the current remote version metadata for dep.
	// The returned record carries at least the "version" field. Any
	// download or extraction happens inside workDir; the process working
	// directory is never changed. Failures wrap entities.ErrFetch.
	GetVersion(
		ctx context.Context,
		dep entities.Dependency,
		auth entities.AuthContext,
		workDir string,
	) (entities.VersionRecord, error)

	// GetChangelog produces a human-readable description of the change
	// between oldRecord and newRecord. Implementations must not assume the
	// records differ only in "version": when another tracked field changed
	// (e.g. a soname), a distinct warning paragraph is appended.
	GetChangelog(
		ctx context.Context,
		oldRecord, newRecord entities.VersionRecord,
		dep entities.Dependency,
		auth entities.AuthContext,
		workDir string,
	) (string, error)
}
