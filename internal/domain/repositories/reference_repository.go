package repositories

import (
	"github.com/rios0rios0/harbinger/internal/domain/entities"
)

// ReferenceRepository persists the last-known version record per dependency.
// A reference update is only durable once the corresponding notification
// succeeded or was explicitly skipped; Backup and Rollback exist to undo a
// forward-committed Write whose notification failed.
type ReferenceRepository interface {
	// Exists reports whether a reference is stored for the dependency.
	Exists(depName string) bool

	// Read returns the stored record. It fails with
	// entities.ErrReferenceNotFound when absent and
	// entities.ErrCorruptReference when the content cannot be parsed.
	Read(depName string) (entities.VersionRecord, error)

	// Write persists the record, atomically with respect to the next Read.
	Write(depName string, record entities.VersionRecord) error

	// Backup copies the live reference aside before an overwrite. It fails
	// when no live reference exists.
	Backup(depName string) error

	// Rollback restores the backup over the live reference.
	Rollback(depName string) error
}
