package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edvin/vpngraph/internal/graph"
	"github.com/edvin/vpngraph/internal/model"
)

// Inventory is the relational read side consumed by a run.
type Inventory interface {
	ListTunnelsForSync(ctx context.Context) ([]model.Tunnel, error)
	ListInterfaceIPHosts(ctx context.Context) ([]string, error)
}

// GraphStore is the write side. The store must already be connected and
// verified; connection lifecycle belongs to the caller, which releases it on
// every exit path.
type GraphStore interface {
	ClearManaged(ctx context.Context) error
	UpsertNodes(ctx context.Context, nodes []graph.Node) error
	UpsertEdges(ctx context.Context, edges []graph.Edge) error
}

// StatusRecorder persists the singleton sync-status record. All calls from
// the runner are best-effort: a recorder failure is logged and never masks
// the primary run outcome.
type StatusRecorder interface {
	RecordSuccess(ctx context.Context, syncedAt time.Time, nodes, edges int) error
	RecordFailure(ctx context.Context, syncedAt time.Time, runErr error) error
}

// Summary is the run result returned to the invoking scheduler.
type Summary struct {
	DeviceGroupNodes int
	ManualPeerNodes  int
	Edges            int
	SkippedTunnels   int
}

func (s *Summary) String() string {
	return fmt.Sprintf("Graph sync finished. DeviceGroup nodes: %d, ManualPeer nodes: %d, tunnel edges: %d, skipped tunnels: %d.",
		s.DeviceGroupNodes, s.ManualPeerNodes, s.Edges, s.SkippedTunnels)
}

// Runner sequences one full projection: load, build, wipe, write, record.
// Single-pass and non-resumable; concurrent runs against the same store must
// be serialized by the caller.
type Runner struct {
	inventory Inventory
	store     GraphStore
	status    StatusRecorder
	logger    zerolog.Logger
	now       func() time.Time
}

func NewRunner(inventory Inventory, store GraphStore, status StatusRecorder, logger zerolog.Logger) *Runner {
	return &Runner{
		inventory: inventory,
		store:     store,
		status:    status,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one sync. The returned error carries the original cause of
// the first fatal failure; per-tunnel data problems never fail the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	now := r.now().UTC()
	logger := r.logger.With().Str("run_id", uuid.New().String()).Logger()
	logger.Info().Msg("topology sync started")

	// The IP index is an enrichment for scope classification; losing it
	// degrades tunnels to the device-based rule instead of failing the run.
	hosts, err := r.inventory.ListInterfaceIPHosts(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("unable to preload interface ip index; scope falls back to device presence")
	}
	ipIndex := NewIPIndex(hosts)
	logger.Info().Int("ip_hosts", len(ipIndex)).Msg("interface ip index loaded")

	tunnels, err := r.inventory.ListTunnelsForSync(ctx)
	if err != nil {
		return nil, r.fail(ctx, logger, now, fmt.Errorf("load tunnels: %w", err))
	}

	proj := BuildProjection(tunnels, ipIndex, now, logger)
	logger.Info().
		Int("tunnels", len(tunnels)).
		Int("nodes", len(proj.Nodes)).
		Int("edges", len(proj.Edges)).
		Int("skipped", proj.SkippedTunnels).
		Msg("projection built")

	if err := r.store.ClearManaged(ctx); err != nil {
		return nil, r.fail(ctx, logger, now, err)
	}
	if err := r.store.UpsertNodes(ctx, proj.Nodes); err != nil {
		return nil, r.fail(ctx, logger, now, err)
	}
	if err := r.store.UpsertEdges(ctx, proj.Edges); err != nil {
		return nil, r.fail(ctx, logger, now, err)
	}

	if err := r.status.RecordSuccess(ctx, now, len(proj.Nodes), len(proj.Edges)); err != nil {
		logger.Warn().Err(err).Msg("failed to record sync status")
	}

	summary := &Summary{
		DeviceGroupNodes: proj.DeviceGroupCount,
		ManualPeerNodes:  proj.ManualPeerCount,
		Edges:            len(proj.Edges),
		SkippedTunnels:   proj.SkippedTunnels,
	}
	logger.Info().Str("summary", summary.String()).Msg("topology sync complete")
	return summary, nil
}

// fail logs the fatal error and records it best-effort before surfacing it.
func (r *Runner) fail(ctx context.Context, logger zerolog.Logger, now time.Time, runErr error) error {
	logger.Error().Err(runErr).Msg("topology sync failed")
	if err := r.status.RecordFailure(ctx, now, runErr); err != nil {
		logger.Warn().Err(err).Msg("failed to record sync failure status")
	}
	return runErr
}
