package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/edvin/vpngraph/internal/model"
)

func TestGroupNodeID_OrderIndependent(t *testing.T) {
	a := model.Device{ID: "aaa-1", Name: "FW-SG-01"}
	b := model.Device{ID: "bbb-2", Name: "FW-SG-02"}

	assert.Equal(t,
		GroupNodeID([]model.Device{a, b}),
		GroupNodeID([]model.Device{b, a}),
	)
	assert.Equal(t, "group:aaa-1|bbb-2", GroupNodeID([]model.Device{b, a}))
}

func TestGroupNodeID_Singleton(t *testing.T) {
	assert.Equal(t, "group:dev-9", GroupNodeID([]model.Device{{ID: "dev-9"}}))
}

func TestManualPeerNodeID_Normalization(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"HQ-London", "manual_peer:hq-london"},
		{"  Branch Office  ", "manual_peer:branch_office"},
		{"DC/West Wing", "manual_peer:dc_west_wing"},
		{"plain", "manual_peer:plain"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ManualPeerNodeID(tt.label), "label %q", tt.label)
	}
}

func TestGroupLabel_SortedForDeterminism(t *testing.T) {
	a := model.Device{ID: "2", Name: "FW-SG-02"}
	b := model.Device{ID: "1", Name: "FW-SG-01"}

	assert.Equal(t, "FW-SG-01 <-> FW-SG-02", GroupLabel([]model.Device{a, b}))
	assert.Equal(t, "FW-SG-01 <-> FW-SG-02", GroupLabel([]model.Device{b, a}))
}

func TestDeviceCountry_PrefersLocationAttribute(t *testing.T) {
	code := "sg"
	dev := model.Device{Name: "FW-UK-01", CountryCode: &code}

	assert.Equal(t, "SG", DeviceCountry(dev))
}

func TestDeviceCountry_FallsBackToNameToken(t *testing.T) {
	assert.Equal(t, "DE", DeviceCountry(model.Device{Name: "de-fra-fw01"}))
	assert.Equal(t, "STANDALONE", DeviceCountry(model.Device{Name: "standalone"}))
}

func TestDeviceCountry_Unknown(t *testing.T) {
	empty := "  "
	assert.Equal(t, "UN", DeviceCountry(model.Device{CountryCode: &empty}))
	assert.Equal(t, "UN", DeviceCountry(model.Device{}))
}

func TestManualCountry(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"London, UK", "UK"},
		{"Building 4, Austin, us", "US"},
		{"Singapore", "SINGAPORE"},
		{"trailing comma,", "UN"},
		{"", "UN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ManualCountry(tt.location), "location %q", tt.location)
	}
}

func TestIconFilename(t *testing.T) {
	assert.Equal(t, "PAN-OS.svg", IconFilename("PAN-OS"))
	assert.Equal(t, "Cisco_ASA_9_x.svg", IconFilename("Cisco ASA 9.x"))
	assert.Equal(t, "unknown.svg", IconFilename(""))
	assert.Equal(t, "unknown.svg", IconFilename("Unknown"))
}
