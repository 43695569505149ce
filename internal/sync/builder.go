package sync

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/vpngraph/internal/geo"
	"github.com/edvin/vpngraph/internal/graph"
	"github.com/edvin/vpngraph/internal/model"
)

// Projection is the finalized, deduplicated node/edge set for one run.
// Nodes are in first-insertion order; each derived node id appears exactly
// once no matter how many tunnels reference it.
type Projection struct {
	Nodes []graph.Node
	Edges []graph.Edge

	DeviceGroupCount int
	ManualPeerCount  int
	SkippedTunnels   int
}

type builder struct {
	ipIndex IPIndex
	now     time.Time
	logger  zerolog.Logger

	proj Projection
	seen map[string]struct{}
}

// BuildProjection walks every tunnel exactly once and assembles the graph to
// upsert. Tunnels with no representable local or peer side are skipped with a
// warning; the run carries on with reduced counts.
func BuildProjection(tunnels []model.Tunnel, ipIndex IPIndex, now time.Time, logger zerolog.Logger) *Projection {
	b := &builder{
		ipIndex: ipIndex,
		now:     now.UTC(),
		logger:  logger.With().Str("component", "projection").Logger(),
		seen:    make(map[string]struct{}),
	}

	for i := range tunnels {
		b.addTunnel(&tunnels[i])
	}

	return &b.proj
}

func (b *builder) addTunnel(t *model.Tunnel) {
	gw := t.Gateway
	if gw == nil {
		b.logger.Warn().Str("tunnel", t.Name).Str("tunnel_pk", t.ID).Msg("skipping tunnel without gateway reference")
		b.proj.SkippedTunnels++
		return
	}

	local := sortedByID(gw.LocalDevices)
	if len(local) == 0 {
		b.logger.Warn().Str("tunnel", t.Name).Str("tunnel_pk", t.ID).Msg("skipping tunnel without local devices")
		b.proj.SkippedTunnels++
		return
	}
	localID := GroupNodeID(local)
	b.ensureGroupNode(localID, local, gw.LocalPlatform)

	peers := sortedByID(gw.PeerDevices)
	var peerID string
	switch {
	case len(peers) > 0:
		peerID = GroupNodeID(peers)
		b.ensureGroupNode(peerID, peers, gw.PeerPlatform)
	default:
		manualLabel := strings.TrimSpace(strOr(gw.PeerDeviceManual, ""))
		if manualLabel == "" {
			manualLabel = strings.TrimSpace(strOr(gw.PeerLocationManual, ""))
		}
		if manualLabel == "" {
			b.logger.Warn().Str("tunnel", t.Name).Str("tunnel_pk", t.ID).Msg("skipping tunnel without representable peer")
			b.proj.SkippedTunnels++
			return
		}
		peerID = ManualPeerNodeID(manualLabel)
		b.ensureManualPeerNode(peerID, manualLabel, gw)
	}

	scope := ClassifyScope(strOr(gw.LocalIP, ""), strOr(gw.PeerIP, ""), len(local) > 0, len(peers) > 0, b.ipIndex)
	b.proj.Edges = append(b.proj.Edges, b.buildEdge(t, gw, localID, peerID, scope, local, peers))
}

// ensureGroupNode inserts a DeviceGroup node unless the id is already
// present; first insertion wins. The representative member for shared
// attributes is the lowest device id, a deterministic tie-break.
func (b *builder) ensureGroupNode(id string, devices []model.Device, platformOverride *string) {
	if _, ok := b.seen[id]; ok {
		return
	}
	b.seen[id] = struct{}{}

	rep := devices[0]
	country := DeviceCountry(rep)
	lat, lon := geo.Resolve(rep.Latitude, rep.Longitude, country)

	platform := strOr(platformOverride, strOr(rep.PlatformName, "Unknown"))

	ids := make([]string, len(devices))
	names := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
		names[i] = d.Name
	}

	b.proj.Nodes = append(b.proj.Nodes, graph.Node{
		ID:           id,
		Label:        GroupLabel(devices),
		NodeType:     graph.NodeTypeDeviceGroup,
		Country:      country,
		LocationName: strOr(rep.LocationName, "Unknown"),
		Latitude:     lat,
		Longitude:    lon,
		PlatformName: platform,
		IconFilename: IconFilename(platform),
		Status:       strOr(rep.Status, "Unknown"),
		Role:         strOr(rep.Role, "Unknown"),
		PrimaryIP:    strOr(rep.PrimaryIP, ""),
		IsHAPair:     len(devices) > 1,
		ModelName:    strOr(rep.ModelName, "N/A"),
		DevicePKs:    ids,
		DeviceNames:  names,
	})
	b.proj.DeviceGroupCount++
}

func (b *builder) ensureManualPeerNode(id, label string, gw *model.IKEGateway) {
	if _, ok := b.seen[id]; ok {
		return
	}
	b.seen[id] = struct{}{}

	country := unknownCountry
	location := strOr(gw.PeerLocationManual, "")
	if location != "" {
		country = ManualCountry(location)
	}
	lat, lon := geo.Fallback(country)

	platform := strOr(gw.PeerPlatform, "Unknown")

	b.proj.Nodes = append(b.proj.Nodes, graph.Node{
		ID:           id,
		Label:        label,
		NodeType:     graph.NodeTypeManualPeer,
		Country:      country,
		LocationName: location,
		Latitude:     lat,
		Longitude:    lon,
		PlatformName: platform,
		IconFilename: IconFilename(platform),
		Status:       "Manual",
		Role:         "External",
		PrimaryIP:    strOr(gw.PeerIP, ""),
		IsManualPeer: true,
		DevicePKs:    []string{},
		DeviceNames:  []string{label},
	})
	b.proj.ManualPeerCount++
}

func (b *builder) buildEdge(t *model.Tunnel, gw *model.IKEGateway, localID, peerID, scope string, local, peers []model.Device) graph.Edge {
	label := t.Name
	if label == "" {
		label = "Tunnel " + t.ID
	}

	hostnames := joinDeviceNames(local, peers)
	localIP := strOr(gw.LocalIP, "N/A")
	peerIP := strOr(gw.PeerIP, "N/A")

	edge := graph.Edge{
		SourceID:          localID,
		TargetID:          peerID,
		ID:                "tunnel_" + t.ID,
		Label:             label,
		TunnelPK:          t.ID,
		Status:            strOr(t.Status, "Unknown"),
		Role:              strOr(t.Role, "Unknown"),
		GatewayName:       gw.Name,
		IKEVersion:        strOr(gw.IKEVersion, "Unknown"),
		IPSecProfileName:  strOr(t.IPSecProfileName, "N/A"),
		TunnelInterface:   strOr(t.TunnelInterfaceName, "N/A"),
		Description:       strOr(t.Description, ""),
		SyncedAt:          b.now.Format(time.RFC3339),
		LocalIP:           localIP,
		PeerIP:            peerIP,
		Scope:             scope,
		FirewallHostnames: hostnames,
	}
	if edge.GatewayName == "" {
		edge.GatewayName = "N/A"
	}

	tooltip := map[string]string{
		"Tunnel Name":      label,
		"Status":           edge.Status,
		"Role":             edge.Role,
		"IKE Gateway":      edge.GatewayName,
		"IKE Version":      edge.IKEVersion,
		"IPsec Profile":    edge.IPSecProfileName,
		"Tunnel Interface": edge.TunnelInterface,
		"Description":      edge.Description,
		"Local IP":         localIP,
		"Peer IP":          peerIP,
		"Scope":            scope,
		"Last Synced":      b.now.Format("2006-01-02 15:04:05 UTC"),
		"Firewalls":        hostnames,
	}
	payload, err := json.Marshal(tooltip)
	if err != nil {
		// A map of strings cannot fail to marshal; keep the edge usable anyway.
		b.logger.Error().Err(err).Str("tunnel_pk", t.ID).Msg("marshal tooltip payload")
	} else {
		edge.TooltipJSON = string(payload)
	}

	return edge
}

func sortedByID(devices []model.Device) []model.Device {
	out := make([]model.Device, len(devices))
	copy(out, devices)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func joinDeviceNames(groups ...[]model.Device) string {
	var names []string
	for _, group := range groups {
		for _, d := range group {
			if d.Name != "" {
				names = append(names, d.Name)
			}
		}
	}
	return strings.Join(names, ", ")
}

func strOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}
