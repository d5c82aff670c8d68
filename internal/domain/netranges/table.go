// Package netranges holds the static IP prefix tables the threat
// collectors consult on every request: allowlists, VPN and datacenter
// ranges, Tor exit nodes, the internal blacklist and the known-good set.
//
// Tables are loaded once at process start and never mutated afterwards,
// so lookups take no locks. Matching is done per prefix length against
// sorted masked bases with binary search rather than scanning the whole
// table.
package netranges

import (
	"fmt"
	"net/netip"
	"slices"
	"strings"
)

// Table is an immutable set of IP prefixes supporting fast membership
// checks.
type Table struct {
	name string
	// masked prefix bases grouped by prefix length, each bucket sorted
	v4bits []int
	v6bits []int
	v4     map[int][]netip.Addr
	v6     map[int][]netip.Addr
	size   int
}

// New builds a table from CIDR strings. Bare addresses are accepted and
// treated as host prefixes.
func New(name string, cidrs []string) (*Table, error) {
	t := &Table{
		name: name,
		v4:   make(map[int][]netip.Addr),
		v6:   make(map[int][]netip.Addr),
	}

	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		var pfx netip.Prefix
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("table %s: parse prefix %q: %w", name, raw, err)
			}
			pfx = p
		} else {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				return nil, fmt.Errorf("table %s: parse address %q: %w", name, raw, err)
			}
			pfx = netip.PrefixFrom(addr, addr.BitLen())
		}

		pfx = pfx.Masked()
		bucket := t.v4
		if pfx.Addr().Is6() {
			bucket = t.v6
		}
		bucket[pfx.Bits()] = append(bucket[pfx.Bits()], pfx.Addr())
		t.size++
	}

	for bits, addrs := range t.v4 {
		slices.SortFunc(addrs, netip.Addr.Compare)
		t.v4bits = append(t.v4bits, bits)
	}
	for bits, addrs := range t.v6 {
		slices.SortFunc(addrs, netip.Addr.Compare)
		t.v6bits = append(t.v6bits, bits)
	}
	// Longest prefixes first so the most specific match is tried early.
	slices.Sort(t.v4bits)
	slices.Reverse(t.v4bits)
	slices.Sort(t.v6bits)
	slices.Reverse(t.v6bits)

	return t, nil
}

// MustNew is New, panicking on malformed input. Used for the embedded
// tables which are validated at startup anyway.
func MustNew(name string, cidrs []string) *Table {
	t, err := New(name, cidrs)
	if err != nil {
		panic(err)
	}
	return t
}

// Name returns the table's name, used in signal indicators.
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Len returns the number of prefixes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

// Contains reports whether addr falls inside any prefix in the table.
// IPv4-mapped IPv6 addresses are unmapped before matching.
func (t *Table) Contains(addr netip.Addr) bool {
	if t == nil || !addr.IsValid() {
		return false
	}
	addr = addr.Unmap()

	bits := t.v4bits
	buckets := t.v4
	if addr.Is6() {
		bits = t.v6bits
		buckets = t.v6
	}

	for _, b := range bits {
		masked := netip.PrefixFrom(addr, b).Masked().Addr()
		bucket := buckets[b]
		if _, found := slices.BinarySearchFunc(bucket, masked, netip.Addr.Compare); found {
			return true
		}
	}
	return false
}

// ContainsIP is Contains for string input; malformed addresses never match.
func (t *Table) ContainsIP(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	return t.Contains(addr)
}
