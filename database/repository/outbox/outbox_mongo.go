package outboxRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bikeserve/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "pending_sync"

// ErrNotSynced is returned by RemoteID while the record is still pending.
var ErrNotSynced = errors.New("local record has not been synced yet")

// MongoOutboxRepo implements OutboxRepository using MongoDB.
type MongoOutboxRepo struct {
	coll *mongo.Collection
}

// NewMongoOutboxRepo opens the pending_sync collection and makes sure its indexes exist.
func NewMongoOutboxRepo(db *mongo.Database) (*MongoOutboxRepo, error) {
	repo := &MongoOutboxRepo{coll: db.Collection(collectionName)}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoOutboxRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "localId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: 1}}},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create outbox indexes: %w", err)
	}
	return nil
}

func (r *MongoOutboxRepo) Insert(ctx context.Context, rec *models.PendingSync) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert pending %s %s: %w", rec.Kind, rec.LocalID, err)
	}
	return nil
}

// ListPending returns the oldest pending records first.
func (r *MongoOutboxRepo) ListPending(ctx context.Context, limit int64) ([]models.PendingSync, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}).SetLimit(limit)
	cursor, err := r.coll.Find(ctx, bson.M{"status": models.SyncStatusPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending records: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.PendingSync
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pending records: %w", err)
	}
	return out, nil
}

func (r *MongoOutboxRepo) MarkSynced(ctx context.Context, id, remoteID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":    models.SyncStatusSynced,
			"remoteId":  remoteID,
			"updatedAt": time.Now(),
		},
		"$unset": bson.M{"lastError": ""},
		"$inc":   bson.M{"attempts": 1},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to mark record %s synced: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("pending record %s not found", id)
	}
	return nil
}

// MarkAttempt records a failed replay. giveUp moves the record to failed.
func (r *MongoOutboxRepo) MarkAttempt(ctx context.Context, id string, attemptErr error, giveUp bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	if attemptErr != nil {
		set["lastError"] = attemptErr.Error()
	}
	if giveUp {
		set["status"] = models.SyncStatusFailed
	}
	update := bson.M{"$set": set, "$inc": bson.M{"attempts": 1}}

	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to record attempt on %s: %w", id, err)
	}
	return nil
}

func (r *MongoOutboxRepo) RemoteID(ctx context.Context, localID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var rec models.PendingSync
	opts := options.FindOne().SetProjection(bson.M{"remoteId": 1, "status": 1})
	err := r.coll.FindOne(ctx, bson.M{"localId": localID}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", fmt.Errorf("no pending record for %s", localID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up %s: %w", localID, err)
	}
	if rec.Status != models.SyncStatusSynced {
		return "", ErrNotSynced
	}
	return rec.RemoteID, nil
}
