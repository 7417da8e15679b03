package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Redis     bool      `json:"redis"`
	Mongo     bool      `json:"mongo"`
	Upstream  bool      `json:"upstream"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Pinger is anything with a cheap liveness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthMonitor keeps the latest probe snapshot in memory.
type HealthMonitor struct {
	Redis    *redis.Client
	Mongo    *mongo.Client
	Upstream Pinger

	mu      sync.RWMutex
	current HealthStatus
}

// Status returns the latest stored snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Check probes every configured dependency once and stores the result.
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	status := HealthStatus{CheckedAt: time.Now()}
	if h.Redis != nil {
		status.Redis = h.Redis.Ping(ctx).Err() == nil
	}
	if h.Mongo != nil {
		status.Mongo = h.Mongo.Ping(ctx, nil) == nil
	}
	if h.Upstream != nil {
		status.Upstream = h.Upstream.Ping(ctx) == nil
	}

	h.mu.Lock()
	h.current = status
	h.mu.Unlock()
	return status
}

// Start runs Check on the interval until ctx is done.
func (h *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	go func() {
		h.Check(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}
