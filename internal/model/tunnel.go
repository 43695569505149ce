package model

// Tunnel role constants.
const (
	TunnelRolePrimary   = "primary"
	TunnelRoleSecondary = "secondary"
	TunnelRoleTertiary  = "tertiary"
)

// IKE version constants.
const (
	IKEv1          = "ikev1"
	IKEv2          = "ikev2"
	IKEv2Preferred = "ikev2-preferred"
)

// IKEGateway holds one gateway row together with its prefetched local and
// peer device groups. Member slices are sorted by device ID ascending so the
// first member is the deterministic representative for group attributes.
type IKEGateway struct {
	ID                 string   `json:"id" db:"id"`
	Name               string   `json:"name" db:"name"`
	LocalIP            *string  `json:"local_ip,omitempty" db:"local_ip"`
	PeerIP             *string  `json:"peer_ip,omitempty" db:"peer_ip"`
	IKEVersion         *string  `json:"ike_version,omitempty" db:"ike_version"`
	LocalPlatform      *string  `json:"local_platform,omitempty" db:"local_platform"`
	PeerPlatform       *string  `json:"peer_platform,omitempty" db:"peer_platform"`
	PeerDeviceManual   *string  `json:"peer_device_manual,omitempty" db:"peer_device_manual"`
	PeerLocationManual *string  `json:"peer_location_manual,omitempty" db:"peer_location_manual"`
	LocalDevices       []Device `json:"local_devices"`
	PeerDevices        []Device `json:"peer_devices"`
}

// Tunnel is one IPSec tunnel row with its related names flattened in.
// Gateway is nil when the tunnel's gateway reference could not be resolved;
// such tunnels are skipped by the projection.
type Tunnel struct {
	ID                  string      `json:"id" db:"id"`
	Name                string      `json:"name" db:"name"`
	Description         *string     `json:"description,omitempty" db:"description"`
	Role                *string     `json:"role,omitempty" db:"role"`
	Status              *string     `json:"status,omitempty" db:"status"`
	IPSecProfileName    *string     `json:"ipsec_profile_name,omitempty" db:"ipsec_profile_name"`
	TunnelInterfaceName *string     `json:"tunnel_interface_name,omitempty" db:"tunnel_interface_name"`
	MonitorProfileName  *string     `json:"monitor_profile_name,omitempty" db:"monitor_profile_name"`
	Gateway             *IKEGateway `json:"gateway,omitempty"`
}
