// Package graph holds the topology graph model and the Neo4j store that
// persists it. Nodes and edges are plain structs with an explicit property
// conversion for the driver; the only free-form field is the tooltip payload.
package graph

// Labels and property values used in the managed subgraph. Every entity this
// service writes carries NodeLabel / EdgeType, which scopes the wipe phase to
// data owned by the sync.
const (
	NodeLabel = "VPNNode"
	EdgeType  = "TUNNEL"
)

// Node type discriminators.
const (
	NodeTypeDeviceGroup = "DeviceGroup"
	NodeTypeManualPeer  = "ManualPeer"
)

// Tunnel scope classifications.
const (
	ScopeInternal = "internal"
	ScopeExternal = "external"
)

// Node is one topology vertex: a device group (HA pair or singleton) or a
// manually-entered external peer.
type Node struct {
	ID           string
	Label        string
	NodeType     string
	Country      string
	LocationName string
	Latitude     float64
	Longitude    float64
	PlatformName string
	IconFilename string
	Status       string
	Role         string
	PrimaryIP    string
	IsHAPair     bool
	IsManualPeer bool
	ModelName    string
	DevicePKs    []string
	DeviceNames  []string
}

// Properties flattens the node for a parameterized upsert. Coordinates are
// written under both the long and short key pairs because downstream map
// clients read either.
func (n Node) Properties() map[string]any {
	return map[string]any{
		"id":             n.ID,
		"label":          n.Label,
		"node_type":      n.NodeType,
		"country":        n.Country,
		"location_name":  n.LocationName,
		"latitude":       n.Latitude,
		"longitude":      n.Longitude,
		"lat":            n.Latitude,
		"lon":            n.Longitude,
		"platform_name":  n.PlatformName,
		"icon_filename":  n.IconFilename,
		"status":         n.Status,
		"role":           n.Role,
		"primary_ip":     n.PrimaryIP,
		"is_ha_pair":     n.IsHAPair,
		"is_manual_peer": n.IsManualPeer,
		"model_name":     n.ModelName,
		"device_pks":     toAnySlice(n.DevicePKs),
		"device_names":   toAnySlice(n.DeviceNames),
	}
}

// Edge is one directed tunnel relationship between two nodes. TunnelPK is the
// relational tunnel identifier and is the match key on upsert, so each
// tunnel stays individually addressable even between the same node pair.
type Edge struct {
	SourceID string
	TargetID string

	ID                string
	Label             string
	TunnelPK          string
	Status            string
	Role              string
	GatewayName       string
	IKEVersion        string
	IPSecProfileName  string
	TunnelInterface   string
	Description       string
	SyncedAt          string
	LocalIP           string
	PeerIP            string
	Scope             string
	FirewallHostnames string
	TooltipJSON       string
}

// Properties flattens the edge for a parameterized upsert.
func (e Edge) Properties() map[string]any {
	return map[string]any{
		"id":                 e.ID,
		"label":              e.Label,
		"tunnel_pk":          e.TunnelPK,
		"status":             e.Status,
		"role":               e.Role,
		"ike_gateway_name":   e.GatewayName,
		"ike_version":        e.IKEVersion,
		"ipsec_profile_name": e.IPSecProfileName,
		"tunnel_interface":   e.TunnelInterface,
		"description":        e.Description,
		"synced_at_utc":      e.SyncedAt,
		"local_ip":           e.LocalIP,
		"peer_ip":            e.PeerIP,
		"scope":              e.Scope,
		"firewall_hostnames": e.FirewallHostnames,
		"tooltip_json":       e.TooltipJSON,
	}
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
