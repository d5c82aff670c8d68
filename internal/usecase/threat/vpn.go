package threat

import (
	"context"
	"net/netip"
	"strings"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// Headers set by VPN client software or tunnel middleware.
var vpnHeaders = []string{
	"x-vpn",
	"x-vpn-client",
	"x-forwarded-vpn",
	"x-tunnel-id",
	"x-wireguard",
}

// CheckVPN scores VPN likelihood for one IP. A legitimate-ISP allowlist
// match overrides every other heuristic and short-circuits to
// not-detected.
func (d *Detector) CheckVPN(_ context.Context, ip netip.Addr, rc *entity.RequestContext) entity.ThreatSignal {
	sig := entity.NeutralSignal(SourceVPN)

	if d.tables.LegitimateISPs.Contains(ip) {
		sig.Indicators = append(sig.Indicators, "legitimate_isp")
		return sig
	}

	if d.tables.VPNRanges.Contains(ip) {
		sig.Detected = true
		sig.RiskScore += 60
		sig.Indicators = append(sig.Indicators, "known_vpn_range")
	}

	if d.tables.DatacenterRanges.Contains(ip) && !d.tables.LegitimateServices.Contains(ip) {
		sig.Detected = true
		sig.RiskScore += 40
		sig.Indicators = append(sig.Indicators, "datacenter_range")
	}

	// Locale vs. edge-geolocation mismatch adds suspicion but is not
	// strong enough to trigger detection on its own.
	if mismatchGeoLocale(rc) {
		sig.RiskScore += 20
		sig.Indicators = append(sig.Indicators, "geo_locale_mismatch")
	}

	if hops := forwardedHops(rc); hops > 2 {
		sig.Detected = true
		sig.RiskScore += 30
		sig.Indicators = append(sig.Indicators, "multiple_hops")
	}

	for _, h := range vpnHeaders {
		if rc.HasHeader(h) {
			sig.Detected = true
			sig.RiskScore += 25
			sig.Indicators = append(sig.Indicators, "vpn_header:"+h)
		}
	}

	return sig
}

// forwardedHops counts addresses in the X-Forwarded-For chain.
func forwardedHops(rc *entity.RequestContext) int {
	xff := rc.Header("X-Forwarded-For")
	if xff == "" {
		return 0
	}
	return len(strings.Split(xff, ","))
}

// mismatchGeoLocale compares the request's primary Accept-Language
// region against the edge-reported country when both are present.
func mismatchGeoLocale(rc *entity.RequestContext) bool {
	lang := rc.Header("Accept-Language")
	country := strings.ToUpper(strings.TrimSpace(rc.Header("cf-ipcountry")))
	if lang == "" || country == "" || country == "XX" {
		return false
	}

	// First tag only, e.g. "en-US,en;q=0.9" -> "US".
	first, _, _ := strings.Cut(lang, ",")
	first, _, _ = strings.Cut(first, ";")
	if _, region, ok := strings.Cut(strings.TrimSpace(first), "-"); ok {
		region = strings.ToUpper(strings.TrimSpace(region))
		if len(region) == 2 && region != country {
			return true
		}
	}
	return false
}
