package models

import "time"

const (
	SyncKindVehicle = "vehicle"
	SyncKindAddress = "address"

	SyncStatusPending = "pending"
	SyncStatusSynced  = "synced"
	SyncStatusFailed  = "failed"
)

// PendingSync records an optimistic create that has not reached the upstream yet.
type PendingSync struct {
	ID        string    `bson:"id" json:"id"`
	Kind      string    `bson:"kind" json:"kind"` // "vehicle" or "address"
	LocalID   string    `bson:"localId" json:"localId"`
	RemoteID  string    `bson:"remoteId,omitempty" json:"remoteId,omitempty"`
	SessionID string    `bson:"sessionId" json:"sessionId"`
	Vehicle   *Vehicle  `bson:"vehicle,omitempty" json:"vehicle,omitempty"`
	Address   *Address  `bson:"address,omitempty" json:"address,omitempty"`
	Status    string    `bson:"status" json:"status"`
	Attempts  int       `bson:"attempts" json:"attempts"`
	LastError string    `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
