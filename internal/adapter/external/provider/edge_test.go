package provider

import (
	"context"
	"net/http"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

func edgeContext(pairs ...string) *entity.RequestContext {
	h := http.Header{}
	for i := 0; i+1 < len(pairs); i += 2 {
		h.Set(pairs[i], pairs[i+1])
	}
	return &entity.RequestContext{Headers: h}
}

func TestEdgeProviderParsesHeaders(t *testing.T) {
	p := NewEdgeProvider(3)
	ip := netip.MustParseAddr("1.2.3.4")

	rc := edgeContext(
		"cf-ipcountry", "us",
		"cf-ipcity", "Mountain View",
		"cf-ipcontinent", "na",
		"cf-region", "California",
		"cf-region-code", "ca",
		"cf-postal-code", "94043",
		"cf-timezone", "America/Los_Angeles",
		"cf-iplatitude", "37.386",
		"cf-iplongitude", "-122.0838",
	)

	res, err := p.GetGeoInfo(context.Background(), ip, rc)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, "1.2.3.4", res.IP)
	assert.Equal(t, "US", res.CountryCode)
	assert.Equal(t, "Mountain View", res.City)
	assert.Equal(t, "NA", res.ContinentCode)
	assert.Equal(t, "California", res.Region)
	assert.Equal(t, "CA", res.RegionCode)
	assert.Equal(t, "94043", res.PostalCode)
	assert.Equal(t, "America/Los_Angeles", res.Timezone)
	require.NotNil(t, res.Latitude)
	assert.InDelta(t, 37.386, *res.Latitude, 0.0001)
	require.NotNil(t, res.Longitude)
	assert.InDelta(t, -122.0838, *res.Longitude, 0.0001)
	assert.Equal(t, "edge", res.Provider)

	assert.InDelta(t, 0.95, res.Confidence["country_code"], 1e-9)
	assert.InDelta(t, 0.7, res.Confidence["city"], 1e-9)
	assert.InDelta(t, 0.6, res.Confidence["latitude"], 1e-9)
}

func TestEdgeProviderNoOpinionWithoutCountry(t *testing.T) {
	p := NewEdgeProvider(3)
	ip := netip.MustParseAddr("1.2.3.4")

	tests := []struct {
		name string
		rc   *entity.RequestContext
	}{
		{"no headers at all", edgeContext()},
		{"nil context", nil},
		{"unknown country sentinel", edgeContext("cf-ipcountry", "XX")},
		{"garbage country", edgeContext("cf-ipcountry", "USA")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := p.GetGeoInfo(context.Background(), ip, tt.rc)
			assert.NoError(t, err)
			assert.Nil(t, res)
		})
	}
}

func TestEdgeProviderGetIPInfoFailsHardWithoutHeaders(t *testing.T) {
	p := NewEdgeProvider(3)
	ip := netip.MustParseAddr("1.2.3.4")

	_, err := p.GetIPInfo(context.Background(), ip, edgeContext())
	require.Error(t, err)
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, KindParse, perr.Kind)
}

func TestEdgeProviderMalformedCoordinatesDropped(t *testing.T) {
	p := NewEdgeProvider(3)
	ip := netip.MustParseAddr("1.2.3.4")

	rc := edgeContext(
		"cf-ipcountry", "DE",
		"cf-iplatitude", "north",
		"cf-iplongitude", "",
	)
	res, err := p.GetGeoInfo(context.Background(), ip, rc)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Nil(t, res.Latitude)
	assert.Nil(t, res.Longitude)
	assert.NotContains(t, res.Confidence, "latitude")
}

func TestEdgeProviderIsAlwaysConfigured(t *testing.T) {
	p := NewEdgeProvider(3)
	assert.True(t, p.IsConfigured())
	assert.Equal(t, 3, p.Priority())
	assert.Equal(t, "edge", p.Name())
}
