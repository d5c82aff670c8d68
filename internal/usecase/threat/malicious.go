package threat

import (
	"context"
	"net/netip"
	"strings"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// Fixed attack-marker patterns scanned against the request path and
// user-agent. Matching is substring on the lower-cased input.
var maliciousPatterns = []struct {
	indicator string
	marker    string
}{
	{"directory_traversal", "../"},
	{"directory_traversal", "..%2f"},
	{"directory_traversal", "/etc/passwd"},
	{"sql_injection", "union select"},
	{"sql_injection", "' or '1'='1"},
	{"sql_injection", " or 1=1"},
	{"sql_injection", "; drop table"},
	{"script_injection", "<script"},
	{"script_injection", "javascript:"},
	{"script_injection", "onerror="},
	{"code_evaluation", "eval("},
	{"code_evaluation", "base64_decode("},
	{"code_evaluation", "system("},
	{"command_injection", "; rm -"},
	{"command_injection", "&& cat "},
	{"command_injection", "| sh"},
	{"command_injection", "`id`"},
	{"command_injection", "$("},
}

// CheckMalicious scans request path and user-agent for attack markers.
// Any match detects with a flat score.
func (d *Detector) CheckMalicious(_ context.Context, _ netip.Addr, rc *entity.RequestContext) entity.ThreatSignal {
	sig := entity.NeutralSignal(SourceMalicious)
	if rc == nil {
		return sig
	}

	haystack := strings.ToLower(rc.Path) + "\n" + strings.ToLower(rc.UserAgent())

	seen := map[string]bool{}
	for _, p := range maliciousPatterns {
		if strings.Contains(haystack, p.marker) && !seen[p.indicator] {
			seen[p.indicator] = true
			sig.Indicators = append(sig.Indicators, p.indicator)
		}
	}

	if len(sig.Indicators) > 0 {
		sig.Detected = true
		sig.RiskScore += 60
	}
	return sig
}
