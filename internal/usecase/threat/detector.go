// Package threat implements the heuristic threat-classification engine:
// six independent signal collectors plus the risk fusion that folds
// their outputs into one assessment. Everything here is advisory and
// fail-open; the geolocation path never waits on or fails with it.
package threat

import (
	"github.com/IIXINGCHEN/ip-api-production/internal/domain/netranges"
)

// Signal source names, also the keys of the configured weight table.
const (
	SourceVPN        = "vpn_check"
	SourceProxy      = "proxy_check"
	SourceTor        = "tor_check"
	SourceBot        = "bot_check"
	SourceReputation = "reputation_check"
	SourceMalicious  = "malicious_activity_check"
)

// Detector owns the static prefix tables and implements the six signal
// collectors. The tables are read-only after construction, so one
// Detector serves all concurrent requests.
type Detector struct {
	tables *netranges.Tables
}

// NewDetector creates a detector over the given tables.
func NewDetector(tables *netranges.Tables) *Detector {
	return &Detector{tables: tables}
}
