package threat

import (
	"context"
	"net/netip"
	"strings"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

var botUserAgents = []string{
	"bot", "crawler", "spider", "scraper", "scrapy",
	"curl", "wget", "python-requests", "python-urllib", "go-http-client",
	"httpclient", "okhttp", "java/", "phantomjs", "headless",
}

// botDetectionThreshold: the bot check fires on accumulated evidence
// rather than any single weak indicator.
const botDetectionThreshold = 10

// CheckBot scores automation likelihood from user-agent patterns and
// missing browser headers.
func (d *Detector) CheckBot(_ context.Context, _ netip.Addr, rc *entity.RequestContext) entity.ThreatSignal {
	sig := entity.NeutralSignal(SourceBot)

	ua := strings.ToLower(rc.UserAgent())
	if ua == "" {
		sig.RiskScore += 20
		sig.Indicators = append(sig.Indicators, "missing_user_agent")
	} else {
		for _, marker := range botUserAgents {
			if strings.Contains(ua, marker) {
				sig.RiskScore += 15
				sig.Indicators = append(sig.Indicators, "bot_user_agent:"+marker)
				break
			}
		}
	}

	if rc.Header("Accept-Language") == "" {
		sig.RiskScore += 5
		sig.Indicators = append(sig.Indicators, "missing_accept_language")
	}
	if rc.Header("Accept-Encoding") == "" {
		sig.RiskScore += 5
		sig.Indicators = append(sig.Indicators, "missing_accept_encoding")
	}

	sig.Detected = sig.RiskScore > botDetectionThreshold
	return sig
}
