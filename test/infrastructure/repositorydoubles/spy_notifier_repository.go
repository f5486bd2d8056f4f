//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"context"

	"github.com/rios0rios0/harbinger/internal/domain/entities"
	"github.com/rios0rios0/harbinger/internal/domain/repositories"
)

// SpyNotifierRepository implements repositories.NotifierRepository as a
// configurable spy.
type SpyNotifierRepository struct {
	// --- identity ---
	SinkName string

	// --- Post ---
	PostErr error
	// spy: events received
	PostedEvents []entities.NotificationEvent
	PostedAuths  []entities.AuthContext
}

var _ repositories.NotifierRepository = (*SpyNotifierRepository)(nil)

func (n *SpyNotifierRepository) Name() string { return n.SinkName }

func (n *SpyNotifierRepository) Post(
	_ context.Context,
	event entities.NotificationEvent,
	auth entities.AuthContext,
) error {
	n.PostedEvents = append(n.PostedEvents, event)
	n.PostedAuths = append(n.PostedAuths, auth)
	return n.PostErr
}
