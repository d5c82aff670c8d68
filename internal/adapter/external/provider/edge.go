package provider

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/IIXINGCHEN/ip-api-production/internal/domain/sanitize"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// Edge headers set by the edge network in front of the service. When
// present they carry the edge's own geolocation of the client, which is
// the highest-priority source and costs no outbound call.
const (
	headerEdgeCountry    = "cf-ipcountry"
	headerEdgeCity       = "cf-ipcity"
	headerEdgeContinent  = "cf-ipcontinent"
	headerEdgeLatitude   = "cf-iplatitude"
	headerEdgeLongitude  = "cf-iplongitude"
	headerEdgeRegion     = "cf-region"
	headerEdgeRegionCode = "cf-region-code"
	headerEdgePostal     = "cf-postal-code"
	headerEdgeTimezone   = "cf-timezone"
)

// EdgeProvider derives geolocation from edge-network request headers.
// It performs no network call of its own.
type EdgeProvider struct {
	priority int
}

// NewEdgeProvider creates the edge-metadata provider.
func NewEdgeProvider(priority int) *EdgeProvider {
	return &EdgeProvider{priority: priority}
}

func (p *EdgeProvider) Name() string {
	return "edge"
}

func (p *EdgeProvider) Priority() int {
	return p.priority
}

// IsConfigured is always true: whether the edge supplied metadata is a
// per-request question, answered by GetGeoInfo returning no opinion.
func (p *EdgeProvider) IsConfigured() bool {
	return true
}

// GetIPInfo fails when the request carries no edge geolocation headers.
func (p *EdgeProvider) GetIPInfo(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error) {
	res, err := p.GetGeoInfo(ctx, ip, rc)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, NewError(p.Name(), KindParse, fmt.Errorf("request carries no edge geolocation headers"))
	}
	return res, nil
}

// GetGeoInfo reads the edge headers. No opinion when the country header
// is missing, since the edge always sets it when geolocation ran.
func (p *EdgeProvider) GetGeoInfo(_ context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error) {
	country := sanitize.CountryCode(rc.Header(headerEdgeCountry))
	if country == "" || country == "XX" {
		return nil, nil
	}

	res := &entity.GeoResult{
		IP:            ip.String(),
		CountryCode:   country,
		City:          sanitize.Text(rc.Header(headerEdgeCity)),
		ContinentCode: sanitize.RegionCode(rc.Header(headerEdgeContinent)),
		Region:        sanitize.Text(rc.Header(headerEdgeRegion)),
		RegionCode:    sanitize.RegionCode(rc.Header(headerEdgeRegionCode)),
		PostalCode:    sanitize.PostalCode(rc.Header(headerEdgePostal)),
		Timezone:      sanitize.Text(rc.Header(headerEdgeTimezone)),
		Latitude:      sanitize.Coordinate(rc.Header(headerEdgeLatitude)),
		Longitude:     sanitize.Coordinate(rc.Header(headerEdgeLongitude)),
		Provider:      p.Name(),
	}

	// The edge is authoritative on the connecting country but only
	// approximate below that.
	res.Confidence = map[string]float64{
		"country_code": 0.95,
	}
	if res.City != "" {
		res.Confidence["city"] = 0.7
	}
	if res.Latitude != nil && res.Longitude != nil {
		res.Confidence["latitude"] = 0.6
		res.Confidence["longitude"] = 0.6
	}

	return res, nil
}
