package threat

import (
	"context"
	"net/netip"
	"sync"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// repResult is one reputation sub-check's verdict.
type repResult struct {
	verdict   string
	score     float64
	indicator string
}

// CheckReputation runs the four reputation sub-checks concurrently and
// folds them with precedence malicious > suspicious > trusted. A
// known-good table match forces reputation "good" and subtracts 50 from
// the accumulated score, floored at zero.
func (d *Detector) CheckReputation(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) entity.ThreatSignal {
	sig := entity.NeutralSignal(SourceReputation)
	sig.Reputation = entity.ReputationUnknown

	subchecks := []func(context.Context, netip.Addr) repResult{
		d.checkInternalBlacklist,
		d.checkThreatIntel,
		d.checkAbuseDatabase,
		d.checkDNSBlacklist,
	}

	results := make([]repResult, len(subchecks))
	var wg sync.WaitGroup
	for i, check := range subchecks {
		wg.Add(1)
		go func(i int, check func(context.Context, netip.Addr) repResult) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[i] = repResult{verdict: entity.ReputationUnknown}
				}
			}()
			results[i] = check(ctx, ip)
		}(i, check)
	}
	wg.Wait()

	for _, r := range results {
		if r.score != 0 {
			sig.RiskScore += r.score
		}
		if r.indicator != "" {
			sig.Indicators = append(sig.Indicators, r.indicator)
		}
		switch r.verdict {
		case entity.ReputationMalicious:
			// First malicious verdict wins regardless of the rest.
			sig.Reputation = entity.ReputationMalicious
		case entity.ReputationSuspicious:
			if sig.Reputation != entity.ReputationMalicious {
				sig.Reputation = entity.ReputationSuspicious
			}
		}
	}

	if d.tables.KnownGood.Contains(ip) {
		sig.Reputation = entity.ReputationGood
		sig.RiskScore -= 50
		if sig.RiskScore < 0 {
			sig.RiskScore = 0
		}
		sig.Indicators = append(sig.Indicators, "known_good_ip")
	}

	sig.Detected = sig.Reputation == entity.ReputationMalicious ||
		sig.Reputation == entity.ReputationSuspicious
	return sig
}

func (d *Detector) checkInternalBlacklist(_ context.Context, ip netip.Addr) repResult {
	if d.tables.Blacklist.Contains(ip) {
		return repResult{
			verdict:   entity.ReputationMalicious,
			score:     80,
			indicator: "internal_blacklist",
		}
	}
	return repResult{verdict: entity.ReputationUnknown}
}

// checkThreatIntel is a placeholder for a commercial threat-intel
// lookup. Checks here reference static in-process tables only.
func (d *Detector) checkThreatIntel(_ context.Context, _ netip.Addr) repResult {
	return repResult{verdict: entity.ReputationUnknown}
}

// checkAbuseDatabase is a placeholder for an abuse-report database.
func (d *Detector) checkAbuseDatabase(_ context.Context, _ netip.Addr) repResult {
	return repResult{verdict: entity.ReputationUnknown}
}

// checkDNSBlacklist is a placeholder for a DNSBL query.
func (d *Detector) checkDNSBlacklist(_ context.Context, _ netip.Addr) repResult {
	return repResult{verdict: entity.ReputationUnknown}
}
