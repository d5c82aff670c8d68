package threat

import (
	"context"
	"fmt"
	"log/slog"
	"net/netip"
	"sync"
	"time"

	"github.com/IIXINGCHEN/ip-api-production/internal/domain/netranges"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// CollectorFunc is the uniform signature every signal collector shares.
type CollectorFunc func(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) entity.ThreatSignal

type collector struct {
	name string
	fn   CollectorFunc
}

// fallbackWeight is added for a detected signal whose name has no
// configured weight and whose own score is zero.
const fallbackWeight = 10

// DefaultSignalWeights is the stock weight table used when the
// deployment does not override it. Signals without an entry fall back
// to their own accumulated score.
func DefaultSignalWeights() map[string]float64 {
	return map[string]float64{
		SourceVPN:       25,
		SourceProxy:     20,
		SourceTor:       30,
		SourceMalicious: 40,
	}
}

// Service is the risk fusion engine.
type Service struct {
	detector   *Detector
	collectors []collector
	weights    map[string]float64
	logger     *slog.Logger
}

// NewService wires the six collectors in their fixed order. A nil
// weights map selects DefaultSignalWeights.
func NewService(tables *netranges.Tables, weights map[string]float64, logger *slog.Logger) *Service {
	if weights == nil {
		weights = DefaultSignalWeights()
	}
	if logger == nil {
		logger = slog.Default()
	}

	d := NewDetector(tables)
	return &Service{
		detector: d,
		collectors: []collector{
			{SourceVPN, d.CheckVPN},
			{SourceProxy, d.CheckProxy},
			{SourceTor, d.CheckTor},
			{SourceBot, d.CheckBot},
			{SourceReputation, d.CheckReputation},
			{SourceMalicious, d.CheckMalicious},
		},
		weights: weights,
		logger:  logger,
	}
}

// AssessIP validates the input and runs an assessment. The only error
// it can return is a malformed IP; everything past validation is
// fail-open.
func (s *Service) AssessIP(ctx context.Context, ip string, rc *entity.RequestContext) (*entity.ThreatAssessment, error) {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return nil, fmt.Errorf("invalid ip address %q: %w", ip, err)
	}
	return s.Assess(ctx, addr, rc)
}

// Assess runs all six collectors concurrently and fuses their signals
// into one assessment. Threat data is advisory, so any unexpected
// internal failure degrades to a minimal assessment with an error
// marker instead of propagating.
func (s *Service) Assess(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (assessment *entity.ThreatAssessment, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("risk fusion panic, degrading", "ip", ip.String(), "panic", r)
			assessment = s.degraded(ip)
			err = nil
		}
	}()

	signals := s.collect(ctx, ip, rc)

	assessment = &entity.ThreatAssessment{
		IP:         ip.String(),
		Reputation: entity.ReputationUnknown,
		Threats:    []string{},
		Sources:    []string{},
		Timestamp:  time.Now().UTC(),
	}

	var score float64
	for _, sig := range signals {
		// Each boolean flag has exactly one producing collector.
		switch sig.Source {
		case SourceVPN:
			assessment.IsVPN = sig.Detected
		case SourceProxy:
			assessment.IsProxy = sig.Detected
		case SourceTor:
			assessment.IsTor = sig.Detected
		case SourceBot:
			assessment.IsBot = sig.Detected
		case SourceMalicious:
			assessment.IsMalicious = sig.Detected
		case SourceReputation:
			if sig.Reputation != "" {
				assessment.Reputation = sig.Reputation
			}
		}

		if !sig.Detected {
			continue
		}

		weight, ok := s.weights[sig.Source]
		if !ok {
			weight = sig.RiskScore
			if weight == 0 {
				weight = fallbackWeight
			}
		}
		score += weight

		assessment.Threats = append(assessment.Threats, sig.Indicators...)
		assessment.Sources = append(assessment.Sources, sig.Source)
	}

	assessment.RiskScore = score
	assessment.RiskLevel = entity.ClassifyRiskLevel(score)
	return assessment, nil
}

// collect fans out to every collector and waits for all. A panicking
// collector is isolated and replaced with the neutral signal, so one
// bad heuristic cannot poison the assessment.
func (s *Service) collect(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) []entity.ThreatSignal {
	signals := make([]entity.ThreatSignal, len(s.collectors))

	var wg sync.WaitGroup
	for i, c := range s.collectors {
		wg.Add(1)
		go func(i int, c collector) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					s.logger.Warn("collector failed, substituting neutral signal",
						"collector", c.name, "ip", ip.String(), "panic", r)
					signals[i] = entity.NeutralSignal(c.name)
				}
			}()
			signals[i] = c.fn(ctx, ip, rc)
		}(i, c)
	}
	wg.Wait()

	return signals
}

func (s *Service) degraded(ip netip.Addr) *entity.ThreatAssessment {
	return &entity.ThreatAssessment{
		IP:         ip.String(),
		RiskScore:  0,
		RiskLevel:  entity.RiskLevelMinimal,
		Reputation: entity.ReputationUnknown,
		Threats:    []string{},
		Sources:    []string{},
		Timestamp:  time.Now().UTC(),
		Error:      "assessment degraded",
	}
}

// Tables exposes the detector's range tables.
func (s *Service) Tables() *netranges.Tables {
	return s.detector.tables
}
