package threat

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IIXINGCHEN/ip-api-production/internal/domain/netranges"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func browserContext() *entity.RequestContext {
	return rcWithHeaders(
		"User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0",
		"Accept-Language", "en-US,en;q=0.9",
		"Accept-Encoding", "gzip, deflate, br",
	)
}

func TestAssessIPRejectsMalformedInput(t *testing.T) {
	svc := NewService(testTables(), nil, testLogger())

	for _, ip := range []string{"", "abc", "999.1.1.1", "1.2.3"} {
		assessment, err := svc.AssessIP(context.Background(), ip, nil)
		assert.Nil(t, assessment)
		assert.Error(t, err)
	}
}

func TestAssessCleanBrowserRequest(t *testing.T) {
	svc := NewService(testTables(), nil, testLogger())

	assessment, err := svc.AssessIP(context.Background(), "203.0.113.5", browserContext())
	require.NoError(t, err)

	assert.InDelta(t, 0, assessment.RiskScore, 1e-9)
	assert.Equal(t, entity.RiskLevelMinimal, assessment.RiskLevel)
	assert.False(t, assessment.IsVPN)
	assert.False(t, assessment.IsProxy)
	assert.False(t, assessment.IsTor)
	assert.False(t, assessment.IsBot)
	assert.False(t, assessment.IsMalicious)
	assert.Equal(t, entity.ReputationUnknown, assessment.Reputation)
	assert.Empty(t, assessment.Threats)
	assert.Empty(t, assessment.Sources)
	assert.False(t, assessment.Timestamp.IsZero())
}

func TestAssessWellKnownResolverStaysClean(t *testing.T) {
	tables, err := netranges.LoadEmbedded()
	require.NoError(t, err)
	svc := NewService(tables, nil, testLogger())

	assessment, err := svc.AssessIP(context.Background(), "8.8.8.8", browserContext())
	require.NoError(t, err)

	assert.Equal(t, entity.RiskLevelMinimal, assessment.RiskLevel)
	assert.False(t, assessment.IsVPN)
	assert.False(t, assessment.IsProxy)
	assert.Equal(t, entity.ReputationGood, assessment.Reputation)
}

func TestAssessTunneledBotRequest(t *testing.T) {
	svc := NewService(testTables(), nil, testLogger())

	// Three forwarding hops and no user agent at all.
	rc := rcWithHeaders("X-Forwarded-For", "10.0.0.1, 10.0.0.2, 10.0.0.3")

	assessment, err := svc.AssessIP(context.Background(), "203.0.113.5", rc)
	require.NoError(t, err)

	assert.True(t, assessment.IsVPN)
	assert.True(t, assessment.IsBot)
	assert.False(t, assessment.IsProxy)
	// Configured VPN weight plus the bot signal's own score.
	assert.InDelta(t, 55, assessment.RiskScore, 1e-9)
	assert.Equal(t, entity.RiskLevelMedium, assessment.RiskLevel)
	assert.Contains(t, assessment.Threats, "multiple_hops")
	assert.Contains(t, assessment.Threats, "missing_user_agent")
	assert.ElementsMatch(t, []string{SourceVPN, SourceBot}, assessment.Sources)
}

func TestAssessUsesConfiguredWeights(t *testing.T) {
	// The detected signal's name resolves through the weight table, so
	// the fused score is exactly the configured weight.
	tests := []struct {
		name  string
		vpnW  float64
		level string
	}{
		{"below low threshold", 19, entity.RiskLevelMinimal},
		{"low threshold", 20, entity.RiskLevelLow},
		{"medium threshold", 40, entity.RiskLevelMedium},
		{"high threshold", 80, entity.RiskLevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(testTables(), map[string]float64{SourceVPN: tt.vpnW}, testLogger())

			rc := browserContext()
			rc.Headers.Set("x-vpn", "1")

			assessment, err := svc.AssessIP(context.Background(), "203.0.113.5", rc)
			require.NoError(t, err)

			assert.True(t, assessment.IsVPN)
			assert.InDelta(t, tt.vpnW, assessment.RiskScore, 1e-9)
			assert.Equal(t, tt.level, assessment.RiskLevel)
		})
	}
}

func TestAssessUnweightedSignalFallsBackToOwnScore(t *testing.T) {
	// Reputation has no entry in the stock weight table, so a blacklist
	// hit contributes its accumulated sub-check score.
	svc := NewService(testTables(), nil, testLogger())

	assessment, err := svc.AssessIP(context.Background(), "198.51.100.66", browserContext())
	require.NoError(t, err)

	assert.Equal(t, entity.ReputationMalicious, assessment.Reputation)
	assert.InDelta(t, 80, assessment.RiskScore, 1e-9)
	assert.Equal(t, entity.RiskLevelHigh, assessment.RiskLevel)
	assert.Contains(t, assessment.Threats, "internal_blacklist")
	assert.Contains(t, assessment.Sources, SourceReputation)
}

func TestAssessTorExitNode(t *testing.T) {
	svc := NewService(testTables(), nil, testLogger())

	assessment, err := svc.AssessIP(context.Background(), "171.25.193.20", browserContext())
	require.NoError(t, err)

	assert.True(t, assessment.IsTor)
	assert.InDelta(t, 30, assessment.RiskScore, 1e-9)
	assert.Equal(t, entity.RiskLevelLow, assessment.RiskLevel)
	assert.Contains(t, assessment.Threats, "known_exit_node")
}

func TestAssessStackedSignals(t *testing.T) {
	svc := NewService(testTables(), nil, testLogger())

	// VPN range hit, attack path, missing user agent.
	rc := &entity.RequestContext{
		Path:    "/cgi-bin/../../etc/passwd",
		Headers: http.Header{},
	}

	assessment, err := svc.AssessIP(context.Background(), "185.159.156.10", rc)
	require.NoError(t, err)

	assert.True(t, assessment.IsVPN)
	assert.True(t, assessment.IsBot)
	assert.True(t, assessment.IsMalicious)
	// vpn 25 + malicious 40 + bot own score 30.
	assert.InDelta(t, 95, assessment.RiskScore, 1e-9)
	assert.Equal(t, entity.RiskLevelHigh, assessment.RiskLevel)
}

func TestAssessSurvivesBrokenCollectors(t *testing.T) {
	// A nil table set makes every range-based collector panic; the
	// fusion isolates each one and keeps the survivors' signals.
	svc := NewService(nil, nil, testLogger())

	assessment, err := svc.AssessIP(context.Background(), "203.0.113.5", nil)
	require.NoError(t, err)
	require.NotNil(t, assessment)

	assert.False(t, assessment.IsVPN)
	assert.False(t, assessment.IsProxy)
	assert.False(t, assessment.IsTor)
	// The bot check needs no tables and still fires on the bare request.
	assert.True(t, assessment.IsBot)
	assert.Equal(t, entity.ReputationUnknown, assessment.Reputation)
	assert.Empty(t, assessment.Error)
}

func TestDefaultSignalWeights(t *testing.T) {
	w := DefaultSignalWeights()
	assert.InDelta(t, 25, w[SourceVPN], 1e-9)
	assert.InDelta(t, 20, w[SourceProxy], 1e-9)
	assert.InDelta(t, 30, w[SourceTor], 1e-9)
	assert.InDelta(t, 40, w[SourceMalicious], 1e-9)
	assert.NotContains(t, w, SourceBot)
	assert.NotContains(t, w, SourceReputation)
}

func TestTablesAccessor(t *testing.T) {
	tables := testTables()
	svc := NewService(tables, nil, testLogger())
	assert.Same(t, tables, svc.Tables())
}
