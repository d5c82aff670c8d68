package threat

import (
	"context"
	"net/netip"
	"strings"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

var torHeaders = []string{"x-tor", "x-tor-exit", "onion-location", "x-onion-routing"}

var socksPorts = []string{"9050", "9150"}

// CheckTor scores Tor likelihood from the exit-node table, browser
// fingerprints and SOCKS hints.
func (d *Detector) CheckTor(_ context.Context, ip netip.Addr, rc *entity.RequestContext) entity.ThreatSignal {
	sig := entity.NeutralSignal(SourceTor)

	ua := strings.ToLower(rc.UserAgent())
	if strings.Contains(ua, "tor browser") || strings.Contains(ua, "torbrowser") {
		sig.Detected = true
		sig.RiskScore += 50
		sig.Indicators = append(sig.Indicators, "tor_browser_user_agent")
	}

	if d.tables.TorExitNodes.Contains(ip) {
		sig.Detected = true
		sig.RiskScore += 70
		sig.Indicators = append(sig.Indicators, "known_exit_node")
	}

	for _, h := range torHeaders {
		if rc.HasHeader(h) {
			sig.Detected = true
			sig.RiskScore += 40
			sig.Indicators = append(sig.Indicators, "tor_header:"+h)
		}
	}

	// SOCKS hints raise suspicion without triggering detection alone.
	if host := rc.Header("Host"); host != "" {
		if _, port, ok := strings.Cut(host, ":"); ok {
			for _, p := range socksPorts {
				if port == p {
					sig.RiskScore += 25
					sig.Indicators = append(sig.Indicators, "socks_port:"+port)
					break
				}
			}
		}
	}
	if strings.Contains(ua, "socks") {
		sig.RiskScore += 20
		sig.Indicators = append(sig.Indicators, "socks_user_agent")
	}

	return sig
}
