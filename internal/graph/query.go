package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// TopologyFilter narrows a topology query. Zero-value fields are ignored.
// String matching is case-insensitive throughout; Platform and Location are
// substring matches, the rest are exact.
type TopologyFilter struct {
	Country  string
	Platform string
	Location string
	// Device matches the node when it equals a member device name or PK, or
	// when the node label contains it.
	Device   string
	NodeRole string

	TunnelStatus string
	IKEVersion   string
	TunnelRole   string
}

// Topology is a queried slice of the managed subgraph.
type Topology struct {
	Nodes []Node
	Edges []Edge
}

// QueryTopology returns the nodes and edges matching the filter. Edges are
// returned with their endpoint ids regardless of whether the endpoints
// matched the node filters, mirroring how the visualization layer consumes
// the graph.
func (s *Store) QueryTopology(ctx context.Context, filter TopologyFilter) (*Topology, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	nodeQuery, nodeParams := buildNodeQuery(filter)
	edgeQuery, edgeParams := buildEdgeQuery(filter)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		topo := &Topology{}

		nodeRes, err := tx.Run(ctx, nodeQuery, nodeParams)
		if err != nil {
			return nil, fmt.Errorf("run node query: %w", err)
		}
		nodeRecords, err := nodeRes.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect nodes: %w", err)
		}
		for _, rec := range nodeRecords {
			val, ok := rec.Get("n")
			if !ok {
				continue
			}
			node, ok := val.(neo4j.Node)
			if !ok {
				continue
			}
			topo.Nodes = append(topo.Nodes, nodeFromProps(node.Props))
		}

		edgeRes, err := tx.Run(ctx, edgeQuery, edgeParams)
		if err != nil {
			return nil, fmt.Errorf("run edge query: %w", err)
		}
		edgeRecords, err := edgeRes.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect edges: %w", err)
		}
		for _, rec := range edgeRecords {
			srcVal, _ := rec.Get("source_id")
			dstVal, _ := rec.Get("target_id")
			relVal, ok := rec.Get("r")
			if !ok {
				continue
			}
			rel, ok := relVal.(neo4j.Relationship)
			if !ok {
				continue
			}
			edge := edgeFromProps(rel.Props)
			edge.SourceID, _ = srcVal.(string)
			edge.TargetID, _ = dstVal.(string)
			topo.Edges = append(topo.Edges, edge)
		}

		return topo, nil
	})
	if err != nil {
		return nil, fmt.Errorf("query topology: %w", err)
	}

	return out.(*Topology), nil
}

func buildNodeQuery(f TopologyFilter) (string, map[string]any) {
	var where []string
	params := map[string]any{}

	if f.Country != "" {
		where = append(where, "toLower(n.country) = toLower($country)")
		params["country"] = f.Country
	}
	if f.Platform != "" {
		where = append(where, "toLower(n.platform_name) CONTAINS toLower($platform)")
		params["platform"] = f.Platform
	}
	if f.Location != "" {
		where = append(where, "toLower(n.location_name) CONTAINS toLower($location)")
		params["location"] = f.Location
	}
	if f.Device != "" {
		// coalesce() guards nodes written without member lists.
		where = append(where,
			"(toLower($device) IN [dev IN coalesce(n.device_names, []) | toLower(dev)]"+
				" OR $device IN coalesce(n.device_pks, [])"+
				" OR toLower(n.label) CONTAINS toLower($device))")
		params["device"] = strings.TrimSpace(f.Device)
	}
	if f.NodeRole != "" {
		where = append(where, "toLower(n.role) = toLower($node_role)")
		params["node_role"] = f.NodeRole
	}

	query := "MATCH (n:" + NodeLabel + ")"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " RETURN n"
	return query, params
}

func buildEdgeQuery(f TopologyFilter) (string, map[string]any) {
	var where []string
	params := map[string]any{}

	if f.TunnelStatus != "" {
		where = append(where, "toLower(r.status) = toLower($tunnel_status)")
		params["tunnel_status"] = f.TunnelStatus
	}
	if f.IKEVersion != "" {
		where = append(where, "toLower(r.ike_version) = toLower($ike_version)")
		params["ike_version"] = f.IKEVersion
	}
	if f.TunnelRole != "" {
		where = append(where, "toLower(r.role) = toLower($tunnel_role)")
		params["tunnel_role"] = f.TunnelRole
	}

	query := "MATCH (a:" + NodeLabel + ")-[r:" + EdgeType + "]->(b:" + NodeLabel + ")"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " RETURN a.id AS source_id, b.id AS target_id, r"
	return query, params
}

func nodeFromProps(props map[string]any) Node {
	return Node{
		ID:           propString(props, "id"),
		Label:        propString(props, "label"),
		NodeType:     propString(props, "node_type"),
		Country:      propString(props, "country"),
		LocationName: propString(props, "location_name"),
		Latitude:     propFloat(props, "latitude"),
		Longitude:    propFloat(props, "longitude"),
		PlatformName: propString(props, "platform_name"),
		IconFilename: propString(props, "icon_filename"),
		Status:       propString(props, "status"),
		Role:         propString(props, "role"),
		PrimaryIP:    propString(props, "primary_ip"),
		IsHAPair:     propBool(props, "is_ha_pair"),
		IsManualPeer: propBool(props, "is_manual_peer"),
		ModelName:    propString(props, "model_name"),
		DevicePKs:    propStrings(props, "device_pks"),
		DeviceNames:  propStrings(props, "device_names"),
	}
}

func edgeFromProps(props map[string]any) Edge {
	return Edge{
		ID:                propString(props, "id"),
		Label:             propString(props, "label"),
		TunnelPK:          propString(props, "tunnel_pk"),
		Status:            propString(props, "status"),
		Role:              propString(props, "role"),
		GatewayName:       propString(props, "ike_gateway_name"),
		IKEVersion:        propString(props, "ike_version"),
		IPSecProfileName:  propString(props, "ipsec_profile_name"),
		TunnelInterface:   propString(props, "tunnel_interface"),
		Description:       propString(props, "description"),
		SyncedAt:          propString(props, "synced_at_utc"),
		LocalIP:           propString(props, "local_ip"),
		PeerIP:            propString(props, "peer_ip"),
		Scope:             propString(props, "scope"),
		FirewallHostnames: propString(props, "firewall_hostnames"),
		TooltipJSON:       propString(props, "tooltip_json"),
	}
}

func propString(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func propBool(props map[string]any, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func propStrings(props map[string]any, key string) []string {
	raw, ok := props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
