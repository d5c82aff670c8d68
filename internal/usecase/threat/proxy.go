package threat

import (
	"context"
	"net/netip"
	"strings"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// Generic proxy-indicative headers with their suspicion scores.
var proxyHeaders = map[string]float64{
	"via":                20,
	"forwarded":          10,
	"x-forwarded":        10,
	"x-proxy-id":         25,
	"proxy-connection":   25,
	"x-proxy-connection": 25,
	"x-bluecoat-via":     25,
	"x-squid-error":      25,
	"client-ip":          10,
	"x-client-ip":        10,
}

// Platform and CDN headers. These appear on perfectly normal traffic
// that transited an edge network, so an isolated one never triggers
// detection.
var cdnHeaders = map[string]float64{
	"cf-ray":              5,
	"cf-connecting-ip":    5,
	"cf-ipcountry":        5,
	"x-amz-cf-id":         5,
	"x-served-by":         5,
	"x-fastly-request-id": 5,
	"fastly-client-ip":    5,
	"x-azure-ref":         5,
	"akamai-origin-hop":   5,
	"x-akamai-request-id": 5,
}

var proxyUserAgents = []string{"proxy", "squid", "charles", "fiddler", "mitmproxy"}

var vpnClientUserAgents = []string{
	"openvpn", "wireguard", "nordvpn", "expressvpn", "tunnelbear", "windscribe",
}

var suspiciousProxyPorts = []string{"8080", "3128", "1080", "8118", "8888"}

// CheckProxy scores proxy likelihood. Both allowlists short-circuit to
// not-detected before any heuristic runs.
func (d *Detector) CheckProxy(_ context.Context, ip netip.Addr, rc *entity.RequestContext) entity.ThreatSignal {
	sig := entity.NeutralSignal(SourceProxy)

	if d.tables.LegitimateISPs.Contains(ip) || d.tables.LegitimateServices.Contains(ip) {
		sig.Indicators = append(sig.Indicators, "allowlisted")
		return sig
	}

	var genericCount int
	var genericScore float64
	for name, score := range proxyHeaders {
		if rc.HasHeader(name) {
			genericCount++
			genericScore += score
			sig.Indicators = append(sig.Indicators, "proxy_header:"+name)
		}
	}
	for name, score := range cdnHeaders {
		if rc.HasHeader(name) {
			sig.RiskScore += score
			sig.Indicators = append(sig.Indicators, "cdn_header:"+name)
		}
	}
	sig.RiskScore += genericScore

	// Detection fires only on a pattern of generic proxy headers, never
	// on CDN headers alone.
	if genericCount > 2 || (genericCount > 1 && genericScore > 40) {
		sig.Detected = true
		sig.Indicators = append(sig.Indicators, "proxy_header_pattern")
	}

	if d.tables.ProxyRanges.Contains(ip) {
		sig.Detected = true
		sig.RiskScore += 50
		sig.Indicators = append(sig.Indicators, "known_proxy_range")
	}

	if host := rc.Header("Host"); host != "" {
		if _, port, ok := strings.Cut(host, ":"); ok {
			for _, p := range suspiciousProxyPorts {
				if port == p {
					sig.RiskScore += 15
					sig.Indicators = append(sig.Indicators, "suspicious_port:"+port)
					break
				}
			}
		}
	}

	ua := strings.ToLower(rc.UserAgent())
	if ua != "" {
		for _, marker := range proxyUserAgents {
			if strings.Contains(ua, marker) {
				sig.RiskScore += 30
				sig.Indicators = append(sig.Indicators, "proxy_user_agent:"+marker)
				break
			}
		}
		for _, marker := range vpnClientUserAgents {
			if strings.Contains(ua, marker) {
				sig.RiskScore += 40
				sig.Indicators = append(sig.Indicators, "vpn_client_user_agent:"+marker)
				break
			}
		}
	}

	return sig
}
