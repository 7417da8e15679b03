package outboxRepo

import (
	"context"

	"bikeserve/models"
)

// OutboxRepository stores optimistic creates until they reach the upstream.
type OutboxRepository interface {
	Insert(ctx context.Context, rec *models.PendingSync) error
	ListPending(ctx context.Context, limit int64) ([]models.PendingSync, error)
	MarkSynced(ctx context.Context, id, remoteID string) error
	MarkAttempt(ctx context.Context, id string, attemptErr error, giveUp bool) error
	// RemoteID returns the server id for a local id once synced.
	RemoteID(ctx context.Context, localID string) (string, error)
}
