package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IIXINGCHEN/ip-api-production/internal/adapter/external/provider"
	"github.com/IIXINGCHEN/ip-api-production/internal/domain/netranges"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
	"github.com/IIXINGCHEN/ip-api-production/internal/usecase/aggregation"
	"github.com/IIXINGCHEN/ip-api-production/internal/usecase/threat"
)

// newTestRouter wires the handler over the edge provider only, so the
// whole request path runs without any outbound call.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tables, err := netranges.LoadEmbedded()
	require.NoError(t, err)

	threatSvc := threat.NewService(tables, nil, logger)
	geoSvc := aggregation.NewService(
		[]provider.Provider{provider.NewEdgeProvider(3)},
		threatSvc,
		logger,
	)
	h := NewLookupHandler(geoSvc, threatSvc, logger)

	r := chi.NewRouter()
	r.Get("/api/v1/geo/{ip}", h.GetGeo)
	r.Get("/api/v1/lookup/{ip}", h.GetLookup)
	r.Get("/api/v1/threat/{ip}", h.GetThreat)
	r.Get("/health", Health)
	return r
}

func doRequest(t *testing.T, router chi.Router, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) Firefox/128.0")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetGeo(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/api/v1/geo/8.8.8.8", map[string]string{
		"cf-ipcountry": "US",
		"cf-ipcity":    "Mountain View",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var record entity.GeoRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))

	assert.Equal(t, "8.8.8.8", record.IP)
	assert.Equal(t, "US", record.CountryCode)
	assert.Equal(t, "Mountain View", record.City)
	assert.Nil(t, record.Threat)
	require.Len(t, record.Sources, 1)
	assert.Equal(t, "edge", record.Sources[0].Provider)
}

func TestGetGeoInvalidIP(t *testing.T) {
	router := newTestRouter(t)

	for _, ip := range []string{"abc", "999.1.1.1", "1.2.3"} {
		rec := doRequest(t, router, "/api/v1/geo/"+ip, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "ip=%s", ip)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "invalid ip address", body["error"])
		assert.Equal(t, false, body["success"])
	}
}

func TestGetLookupAttachesThreat(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/api/v1/lookup/8.8.8.8", map[string]string{
		"cf-ipcountry": "US",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var record entity.GeoRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))

	require.NotNil(t, record.Threat)
	assert.Equal(t, entity.RiskLevelMinimal, record.Threat.RiskLevel)
	assert.False(t, record.Threat.IsVPN)
	assert.Equal(t, entity.ReputationGood, record.Threat.Reputation)
	assert.Empty(t, record.ThreatError)
}

func TestGetThreat(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/api/v1/threat/8.8.8.8", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var assessment entity.ThreatAssessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &assessment))

	assert.Equal(t, "8.8.8.8", assessment.IP)
	assert.Equal(t, entity.RiskLevelMinimal, assessment.RiskLevel)
	assert.False(t, assessment.IsBot)
}

func TestGetThreatInvalidIP(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/api/v1/threat/nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := doRequest(t, router, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["uptime"])
}
