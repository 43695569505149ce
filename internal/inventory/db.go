// Package inventory reads the relational source of truth (devices, IKE
// gateways, IPSec tunnels) and owns the vpn_sync_status record. All reads are
// bulk prefetches issued once per run; iteration afterwards is pure in-memory
// work.
package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by this package.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row
}
