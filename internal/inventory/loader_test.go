package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string    { return &s }
func f64Ptr(f float64) *float64  { return &f }

func sqlContains(substr string) any {
	return mock.MatchedBy(func(sql string) bool {
		return strings.Contains(sql, substr)
	})
}

// ---------- ListTunnelsForSync ----------

func TestLoader_ListTunnelsForSync_AssemblesDeviceGroups(t *testing.T) {
	db := &mockDB{}
	loader := NewLoader(db, zerolog.Nop())
	ctx := context.Background()

	tunnelRows := newMockRows(func(dest ...any) error {
		*(dest[0].(*string)) = "t-1"
		*(dest[1].(*string)) = "sg-to-london"
		*(dest[2].(**string)) = strPtr("branch uplink")
		*(dest[3].(**string)) = strPtr("primary")
		*(dest[4].(**string)) = strPtr("Active")
		*(dest[5].(**string)) = strPtr("default-esp")
		*(dest[6].(**string)) = strPtr("tunnel.1")
		*(dest[7].(**string)) = nil
		*(dest[8].(**string)) = strPtr("gw-1")
		*(dest[9].(**string)) = strPtr("gw-sg")
		*(dest[10].(**string)) = strPtr("192.0.2.1")
		*(dest[11].(**string)) = strPtr("198.51.100.1")
		*(dest[12].(**string)) = strPtr("ikev2")
		*(dest[13].(**string)) = nil
		*(dest[14].(**string)) = nil
		*(dest[15].(**string)) = strPtr("HQ-London")
		*(dest[16].(**string)) = nil
		return nil
	})

	localRows := newMockRows(func(dest ...any) error {
		*(dest[0].(*string)) = "gw-1"
		*(dest[1].(*string)) = "dev-1"
		*(dest[2].(*string)) = "FW-SG-01"
		*(dest[3].(**string)) = strPtr("Active")
		*(dest[4].(**string)) = strPtr("Firewall")
		*(dest[5].(**string)) = strPtr("PAN-OS")
		*(dest[6].(**string)) = strPtr("PA-5220")
		*(dest[7].(**string)) = strPtr("10.0.0.1")
		*(dest[8].(**string)) = strPtr("Singapore DC1")
		*(dest[9].(**string)) = strPtr("SG")
		*(dest[10].(**float64)) = f64Ptr(1.3521)
		*(dest[11].(**float64)) = f64Ptr(103.8198)
		return nil
	})

	db.On("Query", ctx, sqlContains("FROM ipsec_tunnels"), mock.Anything).Return(tunnelRows, nil)
	db.On("Query", ctx, sqlContains("ike_gateway_local_devices"), mock.Anything).Return(localRows, nil)
	db.On("Query", ctx, sqlContains("ike_gateway_peer_devices"), mock.Anything).Return(newEmptyMockRows(), nil)

	tunnels, err := loader.ListTunnelsForSync(ctx)
	require.NoError(t, err)
	require.Len(t, tunnels, 1)

	tun := tunnels[0]
	assert.Equal(t, "t-1", tun.ID)
	assert.Equal(t, "sg-to-london", tun.Name)
	require.NotNil(t, tun.Gateway)
	assert.Equal(t, "gw-1", tun.Gateway.ID)
	assert.Equal(t, "gw-sg", tun.Gateway.Name)
	require.Len(t, tun.Gateway.LocalDevices, 1)
	assert.Equal(t, "FW-SG-01", tun.Gateway.LocalDevices[0].Name)
	assert.Equal(t, "SG", *tun.Gateway.LocalDevices[0].CountryCode)
	assert.Empty(t, tun.Gateway.PeerDevices)
	assert.Equal(t, "HQ-London", *tun.Gateway.PeerDeviceManual)

	db.AssertExpectations(t)
}

func TestLoader_ListTunnelsForSync_MissingGatewayReference(t *testing.T) {
	db := &mockDB{}
	loader := NewLoader(db, zerolog.Nop())
	ctx := context.Background()

	tunnelRows := newMockRows(func(dest ...any) error {
		*(dest[0].(*string)) = "t-orphan"
		*(dest[1].(*string)) = "dangling"
		*(dest[8].(**string)) = nil // no gateway row joined
		return nil
	})

	db.On("Query", ctx, sqlContains("FROM ipsec_tunnels"), mock.Anything).Return(tunnelRows, nil)
	db.On("Query", ctx, sqlContains("ike_gateway_local_devices"), mock.Anything).Return(newEmptyMockRows(), nil)
	db.On("Query", ctx, sqlContains("ike_gateway_peer_devices"), mock.Anything).Return(newEmptyMockRows(), nil)

	tunnels, err := loader.ListTunnelsForSync(ctx)
	require.NoError(t, err)
	require.Len(t, tunnels, 1)
	assert.Nil(t, tunnels[0].Gateway)
}

func TestLoader_ListTunnelsForSync_QueryError(t *testing.T) {
	db := &mockDB{}
	loader := NewLoader(db, zerolog.Nop())
	ctx := context.Background()

	db.On("Query", ctx, sqlContains("FROM ipsec_tunnels"), mock.Anything).Return(nil, errors.New("db down"))

	_, err := loader.ListTunnelsForSync(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list tunnels")
}

// ---------- ListInterfaceIPHosts ----------

func TestLoader_ListInterfaceIPHosts(t *testing.T) {
	db := &mockDB{}
	loader := NewLoader(db, zerolog.Nop())
	ctx := context.Background()

	rows := newMockRows(
		func(dest ...any) error { *(dest[0].(*string)) = "192.0.2.1"; return nil },
		func(dest ...any) error { *(dest[0].(*string)) = "198.51.100.7"; return nil },
	)
	db.On("Query", ctx, sqlContains("interface_ip_assignments"), mock.Anything).Return(rows, nil)

	hosts, err := loader.ListInterfaceIPHosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"192.0.2.1", "198.51.100.7"}, hosts)
}

func TestLoader_ListInterfaceIPHosts_QueryError(t *testing.T) {
	db := &mockDB{}
	loader := NewLoader(db, zerolog.Nop())
	ctx := context.Background()

	db.On("Query", ctx, sqlContains("interface_ip_assignments"), mock.Anything).Return(nil, errors.New("db down"))

	_, err := loader.ListInterfaceIPHosts(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list interface ip hosts")
}
