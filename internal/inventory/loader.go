package inventory

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edvin/vpngraph/internal/model"
)

// Loader bulk-fetches tunnels with their related gateway, profile, and device
// group data. Read-only.
type Loader struct {
	db     DB
	logger zerolog.Logger
}

func NewLoader(db DB, logger zerolog.Logger) *Loader {
	return &Loader{db: db, logger: logger.With().Str("component", "inventory").Logger()}
}

const tunnelQuery = `
	SELECT t.id, t.name, t.description, t.role, t.status,
	       cp.name, ti.name, mp.name,
	       g.id, g.name, g.local_ip, g.peer_ip, g.ike_version,
	       g.local_platform, g.peer_platform, g.peer_device_manual, g.peer_location_manual
	FROM ipsec_tunnels t
	LEFT JOIN ike_gateways g ON g.id = t.gateway_id
	LEFT JOIN ipsec_crypto_profiles cp ON cp.id = t.ipsec_profile_id
	LEFT JOIN interfaces ti ON ti.id = t.tunnel_interface_id
	LEFT JOIN tunnel_monitor_profiles mp ON mp.id = t.monitor_profile_id
	ORDER BY t.name, t.role`

// memberQuery returns one row per gateway membership, devices flattened with
// their location. Ordered by device id so group members arrive in the
// deterministic representative order.
const memberQueryFmt = `
	SELECT m.gateway_id, d.id, d.name, d.status, d.role, d.platform, d.model, d.primary_ip,
	       l.name, l.country_code, l.latitude, l.longitude
	FROM %s m
	JOIN devices d ON d.id = m.device_id
	LEFT JOIN locations l ON l.id = d.location_id
	ORDER BY m.gateway_id, d.id`

const ipHostQuery = `
	SELECT DISTINCT ip.host
	FROM ip_addresses ip
	JOIN interface_ip_assignments a ON a.ip_address_id = ip.id
	WHERE ip.host IS NOT NULL AND ip.host <> ''`

// ListTunnelsForSync fetches every tunnel with its gateway and both device
// groups attached. Tunnels whose gateway reference is missing come back with
// a nil Gateway; the projection skips them.
func (l *Loader) ListTunnelsForSync(ctx context.Context) ([]model.Tunnel, error) {
	tunnels, err := l.listTunnels(ctx)
	if err != nil {
		return nil, err
	}

	localMembers, err := l.listMembers(ctx, "ike_gateway_local_devices")
	if err != nil {
		return nil, fmt.Errorf("load local device groups: %w", err)
	}
	peerMembers, err := l.listMembers(ctx, "ike_gateway_peer_devices")
	if err != nil {
		return nil, fmt.Errorf("load peer device groups: %w", err)
	}

	for i := range tunnels {
		gw := tunnels[i].Gateway
		if gw == nil {
			continue
		}
		gw.LocalDevices = localMembers[gw.ID]
		gw.PeerDevices = peerMembers[gw.ID]
	}

	l.logger.Debug().Int("tunnels", len(tunnels)).Msg("prefetched tunnels")
	return tunnels, nil
}

func (l *Loader) listTunnels(ctx context.Context) ([]model.Tunnel, error) {
	rows, err := l.db.Query(ctx, tunnelQuery)
	if err != nil {
		return nil, fmt.Errorf("list tunnels: %w", err)
	}
	defer rows.Close()

	var tunnels []model.Tunnel
	for rows.Next() {
		var t model.Tunnel
		var gwID, gwName *string
		var gw model.IKEGateway
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Description, &t.Role, &t.Status,
			&t.IPSecProfileName, &t.TunnelInterfaceName, &t.MonitorProfileName,
			&gwID, &gwName, &gw.LocalIP, &gw.PeerIP, &gw.IKEVersion,
			&gw.LocalPlatform, &gw.PeerPlatform, &gw.PeerDeviceManual, &gw.PeerLocationManual,
		); err != nil {
			return nil, fmt.Errorf("scan tunnel: %w", err)
		}
		if gwID != nil {
			gw.ID = *gwID
			if gwName != nil {
				gw.Name = *gwName
			}
			t.Gateway = &gw
		}
		tunnels = append(tunnels, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tunnels: %w", err)
	}

	return tunnels, nil
}

func (l *Loader) listMembers(ctx context.Context, memberTable string) (map[string][]model.Device, error) {
	rows, err := l.db.Query(ctx, fmt.Sprintf(memberQueryFmt, memberTable))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", memberTable, err)
	}
	defer rows.Close()

	members := make(map[string][]model.Device)
	for rows.Next() {
		var gatewayID string
		var d model.Device
		if err := rows.Scan(
			&gatewayID, &d.ID, &d.Name, &d.Status, &d.Role, &d.PlatformName, &d.ModelName, &d.PrimaryIP,
			&d.LocationName, &d.CountryCode, &d.Latitude, &d.Longitude,
		); err != nil {
			return nil, fmt.Errorf("scan %s member: %w", memberTable, err)
		}
		members[gatewayID] = append(members[gatewayID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", memberTable, err)
	}

	return members, nil
}

// ListInterfaceIPHosts returns every IP host assigned to any interface in the
// inventory. The sync builds its scope-classification index from this set.
func (l *Loader) ListInterfaceIPHosts(ctx context.Context) ([]string, error) {
	rows, err := l.db.Query(ctx, ipHostQuery)
	if err != nil {
		return nil, fmt.Errorf("list interface ip hosts: %w", err)
	}
	defer rows.Close()

	var hosts []string
	for rows.Next() {
		var host string
		if err := rows.Scan(&host); err != nil {
			return nil, fmt.Errorf("scan ip host: %w", err)
		}
		hosts = append(hosts, host)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ip hosts: %w", err)
	}

	return hosts, nil
}
