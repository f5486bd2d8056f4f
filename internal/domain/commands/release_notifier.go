package commands

import (
	"context"
	"fmt"
	"os"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	"github.com/rios0rios0/harbinger/internal/domain/repositories"
)

// CheckOutcome is the terminal state of one dependency's check cycle.
type CheckOutcome int

const (
	// OutcomeBootstrapped means no reference existed; the fetched record
	// was stored as the new baseline and no notification was sent.
	OutcomeBootstrapped CheckOutcome = iota
	// OutcomeUnchanged means the remote version equals the reference.
	OutcomeUnchanged
	// OutcomeNotified means a new version was detected, the reference was
	// updated and the notification was delivered (or dry-run logged).
	OutcomeNotified
)

// String returns a human-readable outcome label.
func (o CheckOutcome) String() string {
	switch o {
	case OutcomeBootstrapped:
		return "bootstrapped"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeNotified:
		return "notified"
	default:
		return "unknown"
	}
}

// CheckResult reports how one dependency's check cycle ended.
type CheckResult struct {
	Outcome    CheckOutcome
	OldVersion string // "" when no reference existed
	NewVersion string
}

// ReleaseNotifier runs the check-notify cycle for a single dependency:
// fetch the remote version, compare it against the stored reference, and on
// a change fetch the changelog, forward-commit the reference and post the
// notification. A failed post rolls the reference back so the next run
// re-detects the same change and retries the notification.
type ReleaseNotifier struct {
	references repositories.ReferenceRepository
	notifier   repositories.NotifierRepository
	notifyRepo string
}

// NewReleaseNotifier creates an orchestrator bound to a reference store, a
// notification sink and a target repository.
func NewReleaseNotifier(
	references repositories.ReferenceRepository,
	notifier repositories.NotifierRepository,
	notifyRepo string,
) *ReleaseNotifier {
	return &ReleaseNotifier{
		references: references,
		notifier:   notifier,
		notifyRepo: notifyRepo,
	}
}

// Check runs one dependency's cycle to completion using the given checker.
// All temporary artifacts live in a scoped work directory that is removed
// on every exit path.
func (it *ReleaseNotifier) Check(
	ctx context.Context,
	checker repositories.CheckerRepository,
	dep entities.Dependency,
	auth entities.AuthContext,
) (CheckResult, error) {
	var result CheckResult

	workDir, err := os.MkdirTemp("", "harbinger-*")
	if err != nil {
		return result, fmt.Errorf("failed to create work directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	record, err := checker.GetVersion(ctx, dep, auth, workDir)
	if err != nil {
		return result, fmt.Errorf("fetching remote version of %q: %w", dep.Name, err)
	}
	if record.Version() == "" {
		return result, fmt.Errorf("%w: plugin %q returned a record without a version for %q",
			entities.ErrFetch, checker.Name(), dep.Name)
	}
	result.NewVersion = entities.NormalizeVersion(record.Version())

	// First run for this dependency: store the baseline, do not notify.
	if !it.references.Exists(dep.Name) {
		logger.Infof("No existing version reference found for %q, storing %q as baseline",
			dep.Name, result.NewVersion)
		if writeErr := it.references.Write(dep.Name, record); writeErr != nil {
			return result, fmt.Errorf("bootstrapping reference for %q: %w", dep.Name, writeErr)
		}
		result.Outcome = OutcomeBootstrapped
		return result, nil
	}

	oldRecord, err := it.references.Read(dep.Name)
	if err != nil {
		return result, fmt.Errorf("reading reference for %q: %w", dep.Name, err)
	}
	result.OldVersion = entities.NormalizeVersion(oldRecord.Version())

	if result.OldVersion == result.NewVersion {
		logger.Infof("No new version detected for %q (still %q)", dep.Name, result.OldVersion)
		result.Outcome = OutcomeUnchanged
		return result, nil
	}

	logger.Infof("New version of %q detected: %q -> %q",
		dep.Name, result.OldVersion, result.NewVersion)

	changelog, err := checker.GetChangelog(ctx, oldRecord, record, dep, auth, workDir)
	if err != nil {
		return result, fmt.Errorf("fetching changelog for %q: %w", dep.Name, err)
	}

	// Forward-commit the reference before notifying so a crash between the
	// two steps never loses the comparison baseline. A failed notification
	// rolls this back below.
	if backupErr := it.references.Backup(dep.Name); backupErr != nil {
		return result, fmt.Errorf("backing up reference for %q: %w", dep.Name, backupErr)
	}
	if writeErr := it.references.Write(dep.Name, record); writeErr != nil {
		return result, fmt.Errorf("updating reference for %q: %w", dep.Name, writeErr)
	}

	event := entities.NewNotificationEvent(dep.Name, changelog, it.notifyRepo)
	if postErr := it.notifier.Post(ctx, event, auth); postErr != nil {
		return result, it.rollback(dep, record, postErr)
	}

	result.Outcome = OutcomeNotified
	return result, nil
}

// rollback undoes the forward-committed reference write after a failed
// notification. When the rollback itself fails the intended reference
// contents are surfaced verbatim so an operator can restore state manually.
func (it *ReleaseNotifier) rollback(
	dep entities.Dependency,
	record entities.VersionRecord,
	postErr error,
) error {
	if rollbackErr := it.references.Rollback(dep.Name); rollbackErr != nil {
		intended, marshalErr := yaml.Marshal(record)
		if marshalErr != nil {
			intended = []byte(fmt.Sprintf("%v", record))
		}
		logger.Errorf(
			"Reference for %q could not be rolled back after a failed notification.\n"+
				"To avoid a duplicated notification on the next run, store the following "+
				"as the sole contents of its reference file:\n%s",
			dep.Name, intended,
		)
		return fmt.Errorf("%w: for %q after notification failure (%v): %v",
			entities.ErrRollbackFailed, dep.Name, postErr, rollbackErr)
	}

	logger.Warnf("Notification for %q failed, reference rolled back for retry on the next run",
		dep.Name)
	return fmt.Errorf("notifying about %q: %w", dep.Name, postErr)
}
