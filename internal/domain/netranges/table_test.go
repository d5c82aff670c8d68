package netranges

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableContains(t *testing.T) {
	tbl, err := New("test", []string{
		"10.0.0.0/8",
		"192.168.1.0/24",
		"203.0.113.7",
		"2001:db8::/32",
	})
	require.NoError(t, err)
	assert.Equal(t, 4, tbl.Len())

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"10.255.255.255", true},
		{"11.0.0.0", false},
		{"192.168.1.200", true},
		{"192.168.2.1", false},
		{"203.0.113.7", true},
		{"203.0.113.8", false},
		{"2001:db8:1234::1", true},
		{"2001:db9::1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.ContainsIP(tt.ip))
		})
	}
}

func TestTableContainsOverlappingPrefixes(t *testing.T) {
	tbl, err := New("overlap", []string{"172.16.0.0/12", "172.16.5.0/24"})
	require.NoError(t, err)

	assert.True(t, tbl.ContainsIP("172.16.5.10"))
	assert.True(t, tbl.ContainsIP("172.20.0.1"))
	assert.False(t, tbl.ContainsIP("172.32.0.1"))
}

func TestTableUnmapsV4InV6(t *testing.T) {
	tbl, err := New("mapped", []string{"8.8.8.0/24"})
	require.NoError(t, err)

	mapped := netip.MustParseAddr("::ffff:8.8.8.8")
	assert.True(t, tbl.Contains(mapped))
}

func TestTableNilAndInvalid(t *testing.T) {
	var tbl *Table
	assert.False(t, tbl.Contains(netip.MustParseAddr("1.2.3.4")))
	assert.False(t, tbl.ContainsIP("not-an-ip"))
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, "", tbl.Name())
}

func TestTableRejectsMalformedInput(t *testing.T) {
	_, err := New("bad", []string{"10.0.0.0/33"})
	assert.Error(t, err)

	_, err = New("bad", []string{"999.1.1.1"})
	assert.Error(t, err)
}

func TestLoadEmbedded(t *testing.T) {
	tables, err := LoadEmbedded()
	require.NoError(t, err)

	// Well known resolvers are allowlisted out of the box.
	assert.True(t, tables.KnownGood.ContainsIP("8.8.8.8"))
	assert.True(t, tables.KnownGood.ContainsIP("1.1.1.1"))
	assert.True(t, tables.LegitimateServices.ContainsIP("8.8.8.8"))
	assert.False(t, tables.Blacklist.ContainsIP("8.8.8.8"))
	assert.Positive(t, tables.VPNRanges.Len())
	assert.Positive(t, tables.TorExitNodes.Len())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load([]byte("vpn_ranges: [not: valid"))
	assert.Error(t, err)
}
