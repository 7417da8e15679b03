// Package reconcile replays creates that were answered with local ids while the upstream was down.
package reconcile

import (
	"context"
	"errors"
	"fmt"

	outboxRepo "bikeserve/database/repository/outbox"
	"bikeserve/models"
	"bikeserve/services/api"
	"bikeserve/services/session"

	"go.uber.org/zap"
)

const (
	maxAttempts = 5
	batchSize   = 50
)

// SessionLoader finds the session a pending create belongs to.
type SessionLoader interface {
	Load(ctx context.Context, id string) (*models.Session, error)
}

// Summary counts what one run did.
type Summary struct {
	Synced   int
	Retrying int
	Failed   int
}

// Reconciler pushes pending outbox records upstream.
type Reconciler struct {
	Outbox      outboxRepo.OutboxRepository
	Marketplace api.MarketplaceService
	Sessions    SessionLoader
	Logger      *zap.Logger
}

func NewReconciler(outbox outboxRepo.OutboxRepository, m api.MarketplaceService, sessions SessionLoader, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{Outbox: outbox, Marketplace: m, Sessions: sessions, Logger: logger}
}

// Run replays one batch of pending records.
func (r *Reconciler) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	pending, err := r.Outbox.ListPending(ctx, batchSize)
	if err != nil {
		return sum, err
	}

	for i := range pending {
		rec := &pending[i]
		remoteID, err := r.replay(ctx, rec)
		if err == nil {
			if err := r.Outbox.MarkSynced(ctx, rec.ID, remoteID); err != nil {
				r.Logger.Error("failed to mark record synced", zap.String("id", rec.ID), zap.Error(err))
				continue
			}
			sum.Synced++
			r.Logger.Info("pending create synced",
				zap.String("kind", rec.Kind),
				zap.String("localId", rec.LocalID),
				zap.String("remoteId", remoteID),
			)
			continue
		}

		giveUp := rec.Attempts+1 >= maxAttempts || errors.Is(err, errUnrecoverable)
		if markErr := r.Outbox.MarkAttempt(ctx, rec.ID, err, giveUp); markErr != nil {
			r.Logger.Error("failed to record replay attempt", zap.String("id", rec.ID), zap.Error(markErr))
		}
		if giveUp {
			sum.Failed++
			r.Logger.Error("giving up on pending create", zap.String("localId", rec.LocalID), zap.Error(err))
		} else {
			sum.Retrying++
			r.Logger.Warn("pending create replay failed", zap.String("localId", rec.LocalID), zap.Int("attempt", rec.Attempts+1), zap.Error(err))
		}
	}
	return sum, nil
}

var errUnrecoverable = errors.New("record cannot be replayed")

func (r *Reconciler) replay(ctx context.Context, rec *models.PendingSync) (string, error) {
	sess, err := r.Sessions.Load(ctx, rec.SessionID)
	if errors.Is(err, session.ErrSessionNotFound) {
		return "", fmt.Errorf("%w: session %s: %v", errUnrecoverable, rec.SessionID, err)
	}
	if err != nil {
		return "", fmt.Errorf("load session %s: %w", rec.SessionID, err)
	}
	if !sess.LoggedIn() {
		return "", fmt.Errorf("%w: session %s is logged out", errUnrecoverable, rec.SessionID)
	}

	switch {
	case rec.Kind == models.SyncKindVehicle && rec.Vehicle != nil:
		v, err := r.Marketplace.CreateVehicle(ctx, sess, *rec.Vehicle)
		if err != nil {
			return "", err
		}
		return string(v.ID), nil
	case rec.Kind == models.SyncKindAddress && rec.Address != nil:
		a, err := r.Marketplace.CreateAddress(ctx, sess, *rec.Address)
		if err != nil {
			return "", err
		}
		return string(a.ID), nil
	}
	return "", fmt.Errorf("%w: unknown kind %q", errUnrecoverable, rec.Kind)
}
