package model

import "time"

// Sync outcome prefix constants.
const (
	SyncStatusSuccess     = "Success"
	SyncStatusErrorPrefix = "Error: "
)

// SyncStatus is the singleton record (id=1) describing the last sync run.
// It is the only durable state this service keeps between runs.
type SyncStatus struct {
	LastSyncTime   time.Time `json:"last_sync_time" db:"last_sync_time"`
	LastSyncStatus string    `json:"last_sync_status" db:"last_sync_status"`
	NodesCount     int       `json:"nodes_count" db:"nodes_count"`
	EdgesCount     int       `json:"edges_count" db:"edges_count"`
}
