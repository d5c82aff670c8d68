package provider

import (
	"context"
	"fmt"
	"net/netip"

	"github.com/oschwald/maxminddb-golang"

	"github.com/IIXINGCHEN/ip-api-production/internal/domain/sanitize"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// MMDBConfig holds configuration for the local database provider.
type MMDBConfig struct {
	// Path to a GeoIP2/GeoLite2 City database file. Empty disables the
	// provider.
	Path     string
	Priority int
}

// MMDBProvider answers lookups from a local MaxMind database file.
// No network, so no timeout handling either.
type MMDBProvider struct {
	path     string
	priority int
	reader   *maxminddb.Reader
}

// mmdbRecord is the subset of the City database layout we map.
type mmdbRecord struct {
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Continent struct {
		Code  string            `maxminddb:"code"`
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"continent"`
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Location struct {
		AccuracyRadius uint16  `maxminddb:"accuracy_radius"`
		Latitude       float64 `maxminddb:"latitude"`
		Longitude      float64 `maxminddb:"longitude"`
		TimeZone       string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
	Postal struct {
		Code string `maxminddb:"code"`
	} `maxminddb:"postal"`
	Subdivisions []struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	Traits struct {
		AutonomousSystemNumber       uint64 `maxminddb:"autonomous_system_number"`
		AutonomousSystemOrganization string `maxminddb:"autonomous_system_organization"`
		ISP                          string `maxminddb:"isp"`
		Organization                 string `maxminddb:"organization"`
		Domain                       string `maxminddb:"domain"`
		UserType                     string `maxminddb:"user_type"`
	} `maxminddb:"traits"`
}

// NewMMDBProvider opens the database file. A missing path is not an
// error; the provider simply reports not configured.
func NewMMDBProvider(cfg MMDBConfig) (*MMDBProvider, error) {
	p := &MMDBProvider{
		path:     cfg.Path,
		priority: cfg.Priority,
	}
	if cfg.Path == "" {
		return p, nil
	}

	reader, err := maxminddb.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open mmdb %s: %w", cfg.Path, err)
	}
	p.reader = reader
	return p, nil
}

func (p *MMDBProvider) Name() string {
	return "mmdb"
}

func (p *MMDBProvider) Priority() int {
	return p.priority
}

func (p *MMDBProvider) IsConfigured() bool {
	return p.reader != nil
}

// Close releases the memory-mapped database.
func (p *MMDBProvider) Close() error {
	if p.reader == nil {
		return nil
	}
	return p.reader.Close()
}

// GetIPInfo looks the IP up in the local database.
func (p *MMDBProvider) GetIPInfo(_ context.Context, ip netip.Addr, _ *entity.RequestContext) (*entity.GeoResult, error) {
	if p.reader == nil {
		return nil, NewError(p.Name(), KindAuth, fmt.Errorf("no database configured"))
	}

	var rec mmdbRecord
	if err := p.reader.Lookup(ip.AsSlice(), &rec); err != nil {
		return nil, NewError(p.Name(), KindParse, fmt.Errorf("lookup: %w", err))
	}

	// An empty record means the database has no entry for this address.
	if rec.Country.ISOCode == "" && rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return nil, nil
	}

	res := &entity.GeoResult{
		IP:             ip.String(),
		City:           sanitize.Text(rec.City.Names["en"]),
		Country:        sanitize.Text(rec.Country.Names["en"]),
		CountryCode:    sanitize.CountryCode(rec.Country.ISOCode),
		Continent:      sanitize.Text(rec.Continent.Names["en"]),
		ContinentCode:  sanitize.RegionCode(rec.Continent.Code),
		Timezone:       sanitize.Text(rec.Location.TimeZone),
		PostalCode:     sanitize.PostalCode(rec.Postal.Code),
		ASOrganization: sanitize.Text(rec.Traits.AutonomousSystemOrganization),
		ISP:            sanitize.Text(rec.Traits.ISP),
		Organization:   sanitize.Text(rec.Traits.Organization),
		Domain:         sanitize.Text(rec.Traits.Domain),
		UsageType:      sanitize.Text(rec.Traits.UserType),
		Provider:       p.Name(),
	}

	lat, lon := rec.Location.Latitude, rec.Location.Longitude
	if lat != 0 || lon != 0 {
		res.Latitude = &lat
		res.Longitude = &lon
	}
	if rec.Location.AccuracyRadius > 0 {
		acc := int(rec.Location.AccuracyRadius)
		res.Accuracy = &acc
	}
	if rec.Traits.AutonomousSystemNumber > 0 {
		res.ASN = sanitize.ASN(rec.Traits.AutonomousSystemNumber)
	}
	if len(rec.Subdivisions) > 0 {
		res.Region = sanitize.Text(rec.Subdivisions[0].Names["en"])
		res.RegionCode = sanitize.RegionCode(rec.Subdivisions[0].ISOCode)
	}

	return res, nil
}

// GetGeoInfo is GetIPInfo for the merge path.
func (p *MMDBProvider) GetGeoInfo(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error) {
	return p.GetIPInfo(ctx, ip, rc)
}
