// Package sync projects the relational VPN inventory into the topology
// graph: it derives stable node identities, classifies tunnel scope, builds
// the deduplicated node/edge set, and orchestrates the write into the store.
package sync

import (
	"regexp"
	"sort"
	"strings"

	"github.com/edvin/vpngraph/internal/model"
)

const (
	groupIDPrefix      = "group:"
	manualPeerIDPrefix = "manual_peer:"
	groupIDSeparator   = "|"
	groupLabelJoiner   = " <-> "

	unknownCountry = "UN"
)

// GroupNodeID derives the canonical node id for a device group. Member ids
// are sorted before joining, so the same HA pair always yields the same id
// regardless of query ordering. This is the dedup key.
func GroupNodeID(devices []model.Device) string {
	ids := make([]string, len(devices))
	for i, d := range devices {
		ids[i] = d.ID
	}
	sort.Strings(ids)
	return groupIDPrefix + strings.Join(ids, groupIDSeparator)
}

// ManualPeerNodeID derives the canonical node id for a free-text peer. Two
// gateways referencing the same peer name collapse onto the same node.
func ManualPeerNodeID(label string) string {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.ReplaceAll(norm, " ", "_")
	norm = strings.ReplaceAll(norm, "/", "_")
	return manualPeerIDPrefix + norm
}

// GroupLabel renders a display label for a device group, member names sorted
// for determinism.
func GroupLabel(devices []model.Device) string {
	names := make([]string, len(devices))
	for i, d := range devices {
		names[i] = d.Name
	}
	sort.Strings(names)
	return strings.Join(names, groupLabelJoiner)
}

// DeviceCountry derives a country code for a device: the authoritative
// location attribute when present, else the leading hyphen-delimited token of
// the device name (site code convention), else "UN".
func DeviceCountry(dev model.Device) string {
	if dev.CountryCode != nil && strings.TrimSpace(*dev.CountryCode) != "" {
		return strings.ToUpper(strings.TrimSpace(*dev.CountryCode))
	}
	if dev.Name != "" {
		return strings.ToUpper(strings.SplitN(dev.Name, "-", 2)[0])
	}
	return unknownCountry
}

// ManualCountry derives a country code from a free-text peer location,
// taking the last comma-delimited token ("London, UK" -> "UK").
func ManualCountry(location string) string {
	parts := strings.Split(location, ",")
	last := strings.TrimSpace(parts[len(parts)-1])
	if last == "" {
		return unknownCountry
	}
	return strings.ToUpper(last)
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_\-]`)

// IconFilename maps a platform name onto its icon asset.
func IconFilename(platformName string) string {
	name := strings.TrimSpace(platformName)
	if name == "" || strings.EqualFold(name, "unknown") {
		return "unknown.svg"
	}
	return unsafeFilenameChars.ReplaceAllString(name, "_") + ".svg"
}
