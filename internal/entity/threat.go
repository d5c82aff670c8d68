package entity

import (
	"time"
)

// Risk levels, classified from the fused score. Boundaries are inclusive
// on the lower bound: >=80 high, >=40 medium, >=20 low, else minimal.
const (
	RiskLevelMinimal = "minimal"
	RiskLevelLow     = "low"
	RiskLevelMedium  = "medium"
	RiskLevelHigh    = "high"
)

// Reputation verdicts. Precedence across sub-checks is
// malicious > suspicious > trusted.
const (
	ReputationUnknown    = "unknown"
	ReputationGood       = "good"
	ReputationSuspicious = "suspicious"
	ReputationMalicious  = "malicious"
)

// ThreatSignal is the output of one heuristic check.
type ThreatSignal struct {
	Detected   bool     `json:"detected"`
	RiskScore  float64  `json:"risk_score"`
	Indicators []string `json:"indicators"`
	Source     string   `json:"source"`

	// Reputation is set only by the reputation check.
	Reputation string `json:"reputation,omitempty"`
}

// NeutralSignal is what a failed collector degrades to. It contributes
// nothing to the fused score.
func NeutralSignal(source string) ThreatSignal {
	return ThreatSignal{
		Detected:   false,
		RiskScore:  0,
		Indicators: []string{},
		Source:     source,
	}
}

// ThreatAssessment is the fused risk verdict for one IP.
type ThreatAssessment struct {
	IP          string    `json:"ip"`
	RiskScore   float64   `json:"risk_score"`
	RiskLevel   string    `json:"risk_level"`
	IsVPN       bool      `json:"is_vpn"`
	IsProxy     bool      `json:"is_proxy"`
	IsTor       bool      `json:"is_tor"`
	IsBot       bool      `json:"is_bot"`
	IsMalicious bool      `json:"is_malicious"`
	Reputation  string    `json:"reputation"`
	Threats     []string  `json:"threats"`
	Sources     []string  `json:"sources"`
	Timestamp   time.Time `json:"timestamp"`

	// Error marks a degraded (fail-open) assessment.
	Error string `json:"error,omitempty"`
}

// ClassifyRiskLevel converts a fused score into a risk level.
// Pure function of the final score; thresholds checked highest first.
func ClassifyRiskLevel(score float64) string {
	switch {
	case score >= 80:
		return RiskLevelHigh
	case score >= 40:
		return RiskLevelMedium
	case score >= 20:
		return RiskLevelLow
	default:
		return RiskLevelMinimal
	}
}
