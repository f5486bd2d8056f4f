package repositories

import (
	"context"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
)

// NotifierRepository posts a notification event to an external issue
// tracker. Implementations constructed in dry-run mode log the formatted
// event and return success without contacting any service.
type NotifierRepository interface {
	// Name returns the sink key (e.g. "github").
	Name() string

	// Post delivers the event. Failures wrap entities.ErrAuth or
	// entities.ErrDelivery.
	Post(ctx context.Context, event entities.NotificationEvent, auth entities.AuthContext) error
}
