package outboxRepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"bikeserve/models"
)

// MemoryOutboxRepo is an OutboxRepository for tests and runs without MongoDB.
type MemoryOutboxRepo struct {
	mu      sync.Mutex
	records map[string]models.PendingSync
}

func NewMemoryOutboxRepo() *MemoryOutboxRepo {
	return &MemoryOutboxRepo{records: map[string]models.PendingSync{}}
}

func (r *MemoryOutboxRepo) Insert(_ context.Context, rec *models.PendingSync) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[rec.ID]; exists {
		return fmt.Errorf("pending record %s already exists", rec.ID)
	}
	r.records[rec.ID] = *rec
	return nil
}

func (r *MemoryOutboxRepo) ListPending(_ context.Context, limit int64) ([]models.PendingSync, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.PendingSync, 0, len(r.records))
	for _, rec := range r.records {
		if rec.Status == models.SyncStatusPending {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryOutboxRepo) MarkSynced(_ context.Context, id, remoteID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("pending record %s not found", id)
	}
	rec.Status = models.SyncStatusSynced
	rec.RemoteID = remoteID
	rec.LastError = ""
	rec.Attempts++
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return nil
}

func (r *MemoryOutboxRepo) MarkAttempt(_ context.Context, id string, attemptErr error, giveUp bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("pending record %s not found", id)
	}
	rec.Attempts++
	if attemptErr != nil {
		rec.LastError = attemptErr.Error()
	}
	if giveUp {
		rec.Status = models.SyncStatusFailed
	}
	rec.UpdatedAt = time.Now()
	r.records[id] = rec
	return nil
}

func (r *MemoryOutboxRepo) RemoteID(_ context.Context, localID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.LocalID != localID {
			continue
		}
		if rec.Status != models.SyncStatusSynced {
			return "", ErrNotSynced
		}
		return rec.RemoteID, nil
	}
	return "", fmt.Errorf("no pending record for %s", localID)
}

// Get returns a copy of one record.
func (r *MemoryOutboxRepo) Get(id string) (models.PendingSync, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	return rec, ok
}
