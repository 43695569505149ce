package sync

import (
	"net/netip"
	"regexp"
	"strings"

	"github.com/edvin/vpngraph/internal/graph"
)

// IPIndex is the set of IP hosts assigned to any interface in the inventory.
// Built once per run, read-only afterwards.
type IPIndex map[string]struct{}

func NewIPIndex(hosts []string) IPIndex {
	idx := make(IPIndex, len(hosts))
	for _, h := range hosts {
		if h != "" {
			idx[h] = struct{}{}
		}
	}
	return idx
}

func (idx IPIndex) Contains(host string) bool {
	_, ok := idx[host]
	return ok
}

var ipv4Pattern = regexp.MustCompile(`[0-9]{1,3}(?:\.[0-9]{1,3}){3}`)

// HostOnly extracts the bare host from an IP value, tolerating CIDR notation
// and FQDN/garbage strings. As a last resort the raw string comes back
// unchanged; it will simply fail to match the index. Never errors.
func HostOnly(value string) string {
	s := strings.TrimSpace(value)
	if s == "" {
		return ""
	}
	if prefix, err := netip.ParsePrefix(s); err == nil {
		return prefix.Addr().String()
	}
	if addr, err := netip.ParseAddr(s); err == nil {
		return addr.String()
	}
	if m := ipv4Pattern.FindString(s); m != "" {
		return m
	}
	return s
}

// ClassifyScope marks a tunnel internal when both sides are known in the
// inventory: either both IP hosts are assigned to interfaces, or both device
// groups contain at least one device. Everything else is external.
func ClassifyScope(localIP, peerIP string, hasLocalDevices, hasPeerDevices bool, idx IPIndex) string {
	local := HostOnly(localIP)
	peer := HostOnly(peerIP)
	if local != "" && peer != "" && idx.Contains(local) && idx.Contains(peer) {
		return graph.ScopeInternal
	}
	if hasLocalDevices && hasPeerDevices {
		return graph.ScopeInternal
	}
	return graph.ScopeExternal
}
