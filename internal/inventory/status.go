package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/edvin/vpngraph/internal/model"
)

// errMessageCap bounds the stored failure message so repeated failing runs
// cannot grow the status record without limit.
const errMessageCap = 100

// SyncStatusService maintains the singleton vpn_sync_status record. Writes
// are best-effort at the call site: the runner logs a recorder failure but
// never lets it replace the primary run outcome.
type SyncStatusService struct {
	db DB
}

func NewSyncStatusService(db DB) *SyncStatusService {
	return &SyncStatusService{db: db}
}

// RecordSuccess upserts the status record for a completed run.
func (s *SyncStatusService) RecordSuccess(ctx context.Context, syncedAt time.Time, nodes, edges int) error {
	return s.upsert(ctx, syncedAt, model.SyncStatusSuccess, nodes, edges)
}

// RecordFailure upserts the status record with a truncated error message.
// Counts are left untouched from the last successful run when the row already
// exists.
func (s *SyncStatusService) RecordFailure(ctx context.Context, syncedAt time.Time, runErr error) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO vpn_sync_status (id, last_sync_time, last_sync_status)
		 VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE
		 SET last_sync_time = EXCLUDED.last_sync_time,
		     last_sync_status = EXCLUDED.last_sync_status`,
		syncedAt, TruncateError(runErr),
	)
	if err != nil {
		return fmt.Errorf("record sync failure: %w", err)
	}
	return nil
}

func (s *SyncStatusService) upsert(ctx context.Context, syncedAt time.Time, status string, nodes, edges int) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO vpn_sync_status (id, last_sync_time, last_sync_status, nodes_count, edges_count)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE
		 SET last_sync_time = EXCLUDED.last_sync_time,
		     last_sync_status = EXCLUDED.last_sync_status,
		     nodes_count = EXCLUDED.nodes_count,
		     edges_count = EXCLUDED.edges_count`,
		syncedAt, status, nodes, edges,
	)
	if err != nil {
		return fmt.Errorf("record sync status: %w", err)
	}
	return nil
}

// Get returns the current status record, or nil when no run has completed
// yet.
func (s *SyncStatusService) Get(ctx context.Context) (*model.SyncStatus, error) {
	var st model.SyncStatus
	err := s.db.QueryRow(ctx,
		`SELECT last_sync_time, last_sync_status, nodes_count, edges_count
		 FROM vpn_sync_status WHERE id = 1`,
	).Scan(&st.LastSyncTime, &st.LastSyncStatus, &st.NodesCount, &st.EdgesCount)
	if err != nil {
		return nil, fmt.Errorf("get sync status: %w", err)
	}
	return &st, nil
}

// TruncateError renders a run error as a bounded status string.
func TruncateError(runErr error) string {
	msg := runErr.Error()
	if len(msg) > errMessageCap {
		return model.SyncStatusErrorPrefix + msg[:errMessageCap] + "..."
	}
	return model.SyncStatusErrorPrefix + msg
}
