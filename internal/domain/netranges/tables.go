package netranges

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed data/tables.yaml
var embeddedTables []byte

// Tables bundles every prefix table the engines consult.
type Tables struct {
	// LegitimateISPs short-circuits the VPN and proxy checks: consumer
	// carrier space that must never be flagged.
	LegitimateISPs *Table
	// LegitimateServices covers well-known service infrastructure
	// (public DNS, CDNs) excluded from the datacenter heuristic.
	LegitimateServices *Table
	// VPNRanges are addresses of known commercial VPN egress space.
	VPNRanges *Table
	// DatacenterRanges are hosting/cloud provider allocations.
	DatacenterRanges *Table
	// ProxyRanges are known open-proxy networks.
	ProxyRanges *Table
	// TorExitNodes are published Tor exit prefixes.
	TorExitNodes *Table
	// Blacklist is the internal deny table used by the reputation check.
	Blacklist *Table
	// KnownGood forces a good reputation and a score reduction.
	KnownGood *Table
}

type tablesFile struct {
	LegitimateISPs     []string `yaml:"legitimate_isps"`
	LegitimateServices []string `yaml:"legitimate_services"`
	VPNRanges          []string `yaml:"vpn_ranges"`
	DatacenterRanges   []string `yaml:"datacenter_ranges"`
	ProxyRanges        []string `yaml:"proxy_ranges"`
	TorExitNodes       []string `yaml:"tor_exit_nodes"`
	Blacklist          []string `yaml:"blacklist"`
	KnownGood          []string `yaml:"known_good"`
}

// Load parses table data in the embedded YAML layout.
func Load(data []byte) (*Tables, error) {
	var f tablesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse range tables: %w", err)
	}

	t := &Tables{}
	var err error
	if t.LegitimateISPs, err = New("legitimate_isps", f.LegitimateISPs); err != nil {
		return nil, err
	}
	if t.LegitimateServices, err = New("legitimate_services", f.LegitimateServices); err != nil {
		return nil, err
	}
	if t.VPNRanges, err = New("vpn_ranges", f.VPNRanges); err != nil {
		return nil, err
	}
	if t.DatacenterRanges, err = New("datacenter_ranges", f.DatacenterRanges); err != nil {
		return nil, err
	}
	if t.ProxyRanges, err = New("proxy_ranges", f.ProxyRanges); err != nil {
		return nil, err
	}
	if t.TorExitNodes, err = New("tor_exit_nodes", f.TorExitNodes); err != nil {
		return nil, err
	}
	if t.Blacklist, err = New("blacklist", f.Blacklist); err != nil {
		return nil, err
	}
	if t.KnownGood, err = New("known_good", f.KnownGood); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadEmbedded loads the tables compiled into the binary.
func LoadEmbedded() (*Tables, error) {
	return Load(embeddedTables)
}

// MustLoadEmbedded is LoadEmbedded, panicking on error. The embedded
// data is validated by tests, so a failure here means a broken build.
func MustLoadEmbedded() *Tables {
	t, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	return t
}
