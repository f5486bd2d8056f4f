package entities

import "errors"

// Error taxonomy shared across layers. Callers match with errors.Is; call
// sites wrap with fmt.Errorf("%w: ...") to attach context.
var (
	// ErrFetch indicates a checker failed to retrieve or parse remote
	// version metadata (network, archive, or parse failure).
	ErrFetch = errors.New("fetch failed")

	// ErrReferenceNotFound indicates no reference file exists for a dependency.
	ErrReferenceNotFound = errors.New("version reference not found")

	// ErrCorruptReference indicates a reference file exists but cannot be
	// parsed, or is missing its version field.
	ErrCorruptReference = errors.New("version reference corrupt")

	// ErrPluginNotFound indicates a dependency is configured with an
	// unknown checker plugin key.
	ErrPluginNotFound = errors.New("checker plugin not found")

	// ErrAuth indicates the notification sink rejected the credentials.
	ErrAuth = errors.New("authentication failed")

	// ErrDelivery indicates the notification could not be posted.
	ErrDelivery = errors.New("notification delivery failed")

	// ErrRollbackFailed indicates a reference rollback after a failed
	// notification could not be completed. Operator intervention is
	// required; the error text carries the intended reference contents.
	ErrRollbackFailed = errors.New("reference rollback failed")
)
