// Package aggregation implements the multi-source geolocation engine:
// concurrent fan-out to every configured provider, per-result
// validation, and a per-field weighted merge into one authoritative
// record.
package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/IIXINGCHEN/ip-api-production/internal/adapter/external/provider"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// ErrInvalidIP is returned before any fan-out when the input is not a
// well-formed IPv4 or IPv6 literal.
var ErrInvalidIP = errors.New("invalid ip address")

// ErrLookupFailed is the fail-loud translation of an unexpected
// internal error on the geolocation path.
var ErrLookupFailed = errors.New("failed to retrieve ip information")

// ThreatAssessor is the advisory threat pipeline, attached to a geo
// record on request. Its failures never fail the geolocation answer.
type ThreatAssessor interface {
	Assess(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.ThreatAssessment, error)
}

// Options selects what one lookup computes.
type Options struct {
	IncludeThreat bool
}

// Service is the aggregation engine. Providers are registered once in
// priority order and never mutated afterwards; all per-request state is
// allocated fresh in Lookup.
type Service struct {
	providers []provider.Provider
	assessor  ThreatAssessor
	logger    *slog.Logger
}

// NewService creates the engine. The provider slice order fixes the
// tie-break for equal merge weights, so register highest priority
// first. assessor may be nil when threat assessment is not deployed.
func NewService(providers []provider.Provider, assessor ThreatAssessor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		providers: providers,
		assessor:  assessor,
		logger:    logger,
	}
}

type providerOutcome struct {
	p   provider.Provider
	res *entity.GeoResult
	err error
}

// Lookup resolves one IP into an aggregated geolocation record.
// Malformed input fails fast with ErrInvalidIP; any other internal
// failure surfaces as ErrLookupFailed (fail-loud). Individual provider
// failures are isolated and excluded from the merge.
func (s *Service) Lookup(ctx context.Context, ip string, rc *entity.RequestContext, opts Options) (rec *entity.GeoRecord, err error) {
	addr, perr := netip.ParseAddr(ip)
	if perr != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	// The geolocation path is fail-loud, but loud means a clean error
	// for the caller, not a propagated panic.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("aggregation panic", "ip", ip, "panic", r)
			rec, err = nil, ErrLookupFailed
		}
	}()

	lookupID := uuid.NewString()
	start := time.Now()

	outcomes := s.fanOut(ctx, addr, rc)
	record := s.merge(addr, outcomes)

	s.logger.Info("geolocation aggregated",
		"lookup_id", lookupID,
		"ip", addr.String(),
		"sources", len(record.Sources),
		"completeness", record.DataQuality.Completeness,
		"duration", time.Since(start),
	)

	if opts.IncludeThreat {
		s.attachThreat(ctx, addr, rc, record)
	}

	return record, nil
}

// fanOut issues every configured provider's lookup as one concurrent
// batch and waits for all to settle. A failing branch never cancels its
// siblings; each outcome lands in its own slot so the later merge is
// independent of arrival order.
func (s *Service) fanOut(ctx context.Context, addr netip.Addr, rc *entity.RequestContext) []providerOutcome {
	enabled := make([]provider.Provider, 0, len(s.providers))
	for _, p := range s.providers {
		if p.IsConfigured() {
			enabled = append(enabled, p)
		}
	}

	outcomes := make([]providerOutcome, len(enabled))
	var wg sync.WaitGroup
	for i, p := range enabled {
		wg.Add(1)
		go func(i int, p provider.Provider) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					outcomes[i] = providerOutcome{p: p, err: fmt.Errorf("provider %s panic: %v", p.Name(), r)}
				}
			}()
			res, err := p.GetGeoInfo(ctx, addr, rc)
			outcomes[i] = providerOutcome{p: p, res: res, err: err}
		}(i, p)
	}
	wg.Wait()

	return outcomes
}

// merge folds the settled outcomes into one record. The winner is
// tracked per field: a provider overwrites a field only when its
// priority x validationScore strictly exceeds the field's current
// weight, so a high-priority but low-quality source wins only the
// fields it actually scores well on.
func (s *Service) merge(addr netip.Addr, outcomes []providerOutcome) *entity.GeoRecord {
	record := &entity.GeoRecord{
		IP:      addr.String(),
		Sources: []entity.SourceAttribution{},
	}

	// Per-field winning weights, allocated fresh per call.
	fieldWeights := make(map[string]float64)
	confWeights := make(map[string]float64)
	var scores []float64

	for _, o := range outcomes {
		if o.err != nil {
			s.logger.Warn("provider failed, excluded from merge",
				"provider", o.p.Name(), "ip", addr.String(), "error", o.err)
			continue
		}
		if o.res == nil {
			// No opinion; contributes nothing.
			continue
		}

		v := Validate(o.res)
		weight := float64(o.p.Priority()) * v.Score
		scores = append(scores, v.Score)

		contributed := []string{}
		for _, f := range geoFields {
			if !f.present(o.res) {
				continue
			}
			if weight > fieldWeights[f.name] {
				fieldWeights[f.name] = weight
				f.assign(o.res, record)
				contributed = append(contributed, f.name)
			}
		}

		for sub, val := range o.res.Confidence {
			if weight > confWeights[sub] {
				confWeights[sub] = weight
				if record.Confidence == nil {
					record.Confidence = make(map[string]entity.FieldConfidence)
				}
				record.Confidence[sub] = entity.FieldConfidence{
					Value:    val,
					Source:   o.p.Name(),
					Priority: o.p.Priority(),
				}
			}
		}

		record.Sources = append(record.Sources, entity.SourceAttribution{
			Provider:        o.p.Name(),
			Priority:        o.p.Priority(),
			ValidationScore: v.Score,
			Fields:          contributed,
			Issues:          v.Issues,
		})
	}

	record.DataQuality = computeDataQuality(len(fieldWeights), scores)
	s.enrich(record)

	return record
}

func computeDataQuality(filledFields int, scores []float64) entity.DataQuality {
	q := entity.DataQuality{
		Completeness: float64(filledFields) / float64(totalDeclaredFields),
	}

	if len(scores) > 0 {
		var sum float64
		for _, sc := range scores {
			sum += sc
		}
		q.Accuracy = sum / float64(len(scores))
		q.Consistency = q.Accuracy
		if len(scores) > 1 {
			q.Consistency = q.Accuracy * 1.2
			if q.Consistency > 1 {
				q.Consistency = 1
			}
		}
	}

	q.Overall = (q.Completeness + q.Consistency + q.Accuracy) / 3
	return q
}

// enrich applies derived fallbacks. These never override an
// authoritative provider value.
func (s *Service) enrich(record *entity.GeoRecord) {
	if record.Timezone == "" && record.Longitude != nil {
		record.Timezone = approximateTimezone(*record.Longitude)
	}
	if record.CountryCode != "" {
		record.Currency = countryCurrencies[record.CountryCode]
		record.Languages = countryLanguages[record.CountryCode]
	}
}

// attachThreat runs the advisory pipeline inside its own failure
// boundary: any error or panic degrades to an annotation on the record,
// never to a failed geolocation answer.
func (s *Service) attachThreat(ctx context.Context, addr netip.Addr, rc *entity.RequestContext, record *entity.GeoRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("threat assessment panic", "ip", addr.String(), "panic", r)
			record.Threat = nil
			record.ThreatError = "unavailable"
		}
	}()

	if s.assessor == nil {
		record.ThreatError = "unavailable"
		return
	}

	assessment, err := s.assessor.Assess(ctx, addr, rc)
	if err != nil {
		s.logger.Warn("threat assessment failed", "ip", addr.String(), "error", err)
		record.ThreatError = "unavailable"
		return
	}
	record.Threat = assessment
}
