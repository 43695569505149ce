package graph

import (
	"context"
	"errors"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog"
)

// Config holds the graph store connection settings.
type Config struct {
	URI      string
	User     string
	Password string
	Database string
}

// Store wraps a Neo4j driver scoped to one database. All write operations run
// as single explicit transactions so each phase of a sync is atomic.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	logger   zerolog.Logger
}

// Open creates a driver and verifies connectivity before returning. A failure
// here is classified so callers can tell credentials problems from an
// unreachable store; in both cases nothing has been written.
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, &ConnectError{URI: cfg.URI, Err: err}
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		if isAuthError(err) {
			return nil, &AuthError{Err: err}
		}
		return nil, &ConnectError{URI: cfg.URI, Err: err}
	}

	return &Store{
		driver:   driver,
		database: cfg.Database,
		logger:   logger.With().Str("component", "graph-store").Logger(),
	}, nil
}

// Close releases the driver. Safe to call on every exit path.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// ClearManaged deletes every node carrying the managed label together with
// all attached relationships. Unrelated graph data is never touched.
func (s *Store) ClearManaged(ctx context.Context) error {
	cypher := "MATCH (n:" + NodeLabel + ") DETACH DELETE n"
	if err := s.writeTx(ctx, PhaseClear, cypher, nil); err != nil {
		return err
	}
	s.logger.Info().Msg("cleared managed subgraph")
	return nil
}

// UpsertNodes writes all nodes in one transactional batch. Match-or-create by
// id, then overwrite every property unconditionally (last writer wins).
func (s *Store) UpsertNodes(ctx context.Context, nodes []Node) error {
	if len(nodes) == 0 {
		return nil
	}

	batch := make([]map[string]any, len(nodes))
	for i, n := range nodes {
		batch[i] = n.Properties()
	}

	cypher := `
		UNWIND $nodes_batch AS props
		MERGE (n:` + NodeLabel + ` {id: props.id})
		SET n = props`
	if err := s.writeTx(ctx, PhaseUpsertNodes, cypher, map[string]any{"nodes_batch": batch}); err != nil {
		return err
	}
	s.logger.Info().Int("nodes", len(nodes)).Msg("upserted nodes")
	return nil
}

// UpsertEdges writes all edges in one transactional batch. Both endpoints are
// matched by id; an edge whose endpoints are missing simply fails to match
// and is skipped by MATCH semantics, which is tolerated.
func (s *Store) UpsertEdges(ctx context.Context, edges []Edge) error {
	if len(edges) == 0 {
		return nil
	}

	batch := make([]map[string]any, len(edges))
	for i, e := range edges {
		batch[i] = map[string]any{
			"source_id":  e.SourceID,
			"target_id":  e.TargetID,
			"properties": e.Properties(),
		}
	}

	cypher := `
		UNWIND $edges_batch AS edge
		MATCH (src:` + NodeLabel + ` {id: edge.source_id})
		MATCH (dst:` + NodeLabel + ` {id: edge.target_id})
		MERGE (src)-[r:` + EdgeType + ` {tunnel_pk: edge.properties.tunnel_pk}]->(dst)
		SET r = edge.properties`
	if err := s.writeTx(ctx, PhaseUpsertEdges, cypher, map[string]any{"edges_batch": batch}); err != nil {
		return err
	}
	s.logger.Info().Int("edges", len(edges)).Msg("upserted edges")
	return nil
}

func (s *Store) writeTx(ctx context.Context, phase, cypher string, params map[string]any) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return &WriteError{Phase: phase, Err: err}
	}
	return nil
}

func isAuthError(err error) bool {
	var neoErr *neo4j.Neo4jError
	if errors.As(err, &neoErr) {
		return strings.HasPrefix(neoErr.Code, "Neo.ClientError.Security.")
	}
	return false
}
