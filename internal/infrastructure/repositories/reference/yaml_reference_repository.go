package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	domainRepos "github.com/rios0rios0/harbinger/internal/domain/repositories"
)

const (
	referenceSuffix = "_reference.yaml"
	backupSuffix    = ".bkup"
	lockSuffix      = ".lock"
	tempSuffix      = ".tmp"

	dirMode  = 0o755
	fileMode = 0o644
)

// YAMLReferenceRepository stores one human-diffable YAML reference file per
// dependency under a single directory. Writers to the same reference are
// serialized through a sibling lock file; different dependencies never
// contend.
type YAMLReferenceRepository struct {
	dir string
}

// NewYAMLReferenceRepository creates a reference store rooted at dir.
func NewYAMLReferenceRepository(dir string) domainRepos.ReferenceRepository {
	return &YAMLReferenceRepository{dir: dir}
}

// refPath maps a dependency name to its reference file, replacing path
// separators so names like "owner/project" stay on one directory level.
func (r *YAMLReferenceRepository) refPath(depName string) string {
	norm := strings.NewReplacer("/", "-", "\\", "-").Replace(depName)
	return filepath.Join(r.dir, norm+referenceSuffix)
}

// Exists reports whether a reference file is present for the dependency.
func (r *YAMLReferenceRepository) Exists(depName string) bool {
	info, err := os.Stat(r.refPath(depName))
	return err == nil && !info.IsDir()
}

// Read loads and parses the stored record for the dependency.
func (r *YAMLReferenceRepository) Read(depName string) (entities.VersionRecord, error) {
	path := r.refPath(depName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", entities.ErrReferenceNotFound, depName)
		}
		return nil, fmt.Errorf("failed to read reference file %q: %w", path, err)
	}

	var record entities.VersionRecord
	if unmarshalErr := yaml.Unmarshal(data, &record); unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %q: %v", entities.ErrCorruptReference, path, unmarshalErr)
	}
	if record.Version() == "" {
		return nil, fmt.Errorf("%w: %q has no version field", entities.ErrCorruptReference, path)
	}

	return record, nil
}

// Write serializes the record and persists it. The content lands in a temp
// sibling first and is renamed into place, so a concurrent Read sees either
// the old or the new content, never a partial file.
func (r *YAMLReferenceRepository) Write(depName string, record entities.VersionRecord) error {
	if mkdirErr := os.MkdirAll(r.dir, dirMode); mkdirErr != nil {
		return fmt.Errorf("failed to create reference directory %q: %w", r.dir, mkdirErr)
	}

	data, err := yaml.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to serialize reference for %q: %w", depName, err)
	}

	path := r.refPath(depName)
	return r.withLock(path, func() error {
		tempPath := path + tempSuffix
		if writeErr := os.WriteFile(tempPath, data, fileMode); writeErr != nil {
			return fmt.Errorf("failed to write reference file %q: %w", tempPath, writeErr)
		}
		if renameErr := os.Rename(tempPath, path); renameErr != nil {
			return fmt.Errorf("failed to move reference file into place: %w", renameErr)
		}
		return nil
	})
}

// Backup copies the live reference file to its .bkup sibling.
func (r *YAMLReferenceRepository) Backup(depName string) error {
	path := r.refPath(depName)
	return r.withLock(path, func() error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("cannot back up reference for %q: %w", depName, err)
		}
		if writeErr := os.WriteFile(path+backupSuffix, data, fileMode); writeErr != nil {
			return fmt.Errorf("failed to write backup for %q: %w", depName, writeErr)
		}
		return nil
	})
}

// Rollback restores the backup over the live reference file.
func (r *YAMLReferenceRepository) Rollback(depName string) error {
	path := r.refPath(depName)
	return r.withLock(path, func() error {
		backupPath := path + backupSuffix
		if _, statErr := os.Stat(backupPath); statErr != nil {
			return fmt.Errorf("%w: no backup for %q: %v",
				entities.ErrRollbackFailed, depName, statErr)
		}
		if renameErr := os.Rename(backupPath, path); renameErr != nil {
			return fmt.Errorf("%w: restoring %q: %v",
				entities.ErrRollbackFailed, depName, renameErr)
		}
		return nil
	})
}

// withLock serializes mutations of one reference file across processes.
func (r *YAMLReferenceRepository) withLock(path string, fn func() error) error {
	lock := flock.New(path + lockSuffix)
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire reference lock %q: %w", lock.Path(), err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}
