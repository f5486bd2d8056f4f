//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	"github.com/rios0rios0/harbinger/internal/domain/repositories"
)

// SpyReferenceRepository implements repositories.ReferenceRepository as an
// in-memory spy with configurable failures per operation.
type SpyReferenceRepository struct {
	// --- state ---
	Records map[string]entities.VersionRecord
	Backups map[string]entities.VersionRecord

	// --- configurable failures ---
	ReadErr     error
	WriteErr    error
	BackupErr   error
	RollbackErr error

	// spy: calls received
	WriteCalls    []string
	BackupCalls   []string
	RollbackCalls []string
}

var _ repositories.ReferenceRepository = (*SpyReferenceRepository)(nil)

// NewSpyReferenceRepository creates an empty in-memory reference store.
func NewSpyReferenceRepository() *SpyReferenceRepository {
	return &SpyReferenceRepository{
		Records: make(map[string]entities.VersionRecord),
		Backups: make(map[string]entities.VersionRecord),
	}
}

func (r *SpyReferenceRepository) Exists(depName string) bool {
	_, ok := r.Records[depName]
	return ok
}

func (r *SpyReferenceRepository) Read(depName string) (entities.VersionRecord, error) {
	if r.ReadErr != nil {
		return nil, r.ReadErr
	}
	record, ok := r.Records[depName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", entities.ErrReferenceNotFound, depName)
	}
	return record.Clone(), nil
}

func (r *SpyReferenceRepository) Write(depName string, record entities.VersionRecord) error {
	r.WriteCalls = append(r.WriteCalls, depName)
	if r.WriteErr != nil {
		return r.WriteErr
	}
	r.Records[depName] = record.Clone()
	return nil
}

func (r *SpyReferenceRepository) Backup(depName string) error {
	r.BackupCalls = append(r.BackupCalls, depName)
	if r.BackupErr != nil {
		return r.BackupErr
	}
	record, ok := r.Records[depName]
	if !ok {
		return fmt.Errorf("cannot back up missing reference for %q", depName)
	}
	r.Backups[depName] = record.Clone()
	return nil
}

func (r *SpyReferenceRepository) Rollback(depName string) error {
	r.RollbackCalls = append(r.RollbackCalls, depName)
	if r.RollbackErr != nil {
		return r.RollbackErr
	}
	backup, ok := r.Backups[depName]
	if !ok {
		return fmt.Errorf("%w: no backup for %q", entities.ErrRollbackFailed, depName)
	}
	r.Records[depName] = backup
	delete(r.Backups, depName)
	return nil
}
