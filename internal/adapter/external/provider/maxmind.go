package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"time"

	"github.com/IIXINGCHEN/ip-api-production/internal/domain/sanitize"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// MaxMindConfig holds credentials for the GeoIP2 Precision web service.
type MaxMindConfig struct {
	AccountID  string
	LicenseKey string
	BaseURL    string
	Priority   int
	Timeout    time.Duration
}

// MaxMindClient speaks the GeoIP2 city endpoint over HTTP basic auth.
type MaxMindClient struct {
	accountID  string
	licenseKey string
	baseURL    string
	priority   int
	httpClient *http.Client
}

// NewMaxMindClient creates the commercial GeoIP provider adapter.
func NewMaxMindClient(cfg MaxMindConfig) *MaxMindClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://geoip.maxmind.com"
	}

	return &MaxMindClient{
		accountID:  cfg.AccountID,
		licenseKey: cfg.LicenseKey,
		baseURL:    cfg.BaseURL,
		priority:   cfg.Priority,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *MaxMindClient) Name() string {
	return "maxmind"
}

func (c *MaxMindClient) Priority() int {
	return c.priority
}

// IsConfigured returns true if both halves of the basic-auth credential
// are present.
func (c *MaxMindClient) IsConfigured() bool {
	return c.accountID != "" && c.licenseKey != ""
}

// maxmindResponse is the subset of the city endpoint payload we map.
type maxmindResponse struct {
	City struct {
		Names      map[string]string `json:"names"`
		Confidence int               `json:"confidence"`
	} `json:"city"`
	Continent struct {
		Code  string            `json:"code"`
		Names map[string]string `json:"names"`
	} `json:"continent"`
	Country struct {
		ISOCode    string            `json:"iso_code"`
		Names      map[string]string `json:"names"`
		Confidence int               `json:"confidence"`
	} `json:"country"`
	Location struct {
		Latitude       *float64 `json:"latitude"`
		Longitude      *float64 `json:"longitude"`
		AccuracyRadius int      `json:"accuracy_radius"`
		TimeZone       string   `json:"time_zone"`
	} `json:"location"`
	Postal struct {
		Code       string `json:"code"`
		Confidence int    `json:"confidence"`
	} `json:"postal"`
	Subdivisions []struct {
		ISOCode string            `json:"iso_code"`
		Names   map[string]string `json:"names"`
	} `json:"subdivisions"`
	Traits struct {
		AutonomousSystemNumber       any    `json:"autonomous_system_number"`
		AutonomousSystemOrganization string `json:"autonomous_system_organization"`
		ISP                          string `json:"isp"`
		Organization                 string `json:"organization"`
		Domain                       string `json:"domain"`
		UserType                     string `json:"user_type"`
	} `json:"traits"`
}

// GetIPInfo queries the city endpoint for one IP. HTTP and auth
// failures map to typed errors, never to silent wrong data.
func (c *MaxMindClient) GetIPInfo(ctx context.Context, ip netip.Addr, _ *entity.RequestContext) (*entity.GeoResult, error) {
	if !c.IsConfigured() {
		return nil, NewError(c.Name(), KindAuth, fmt.Errorf("account ID or license key not configured"))
	}

	reqURL := fmt.Sprintf("%s/geoip/v2.1/city/%s", c.baseURL, ip.String())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, NewError(c.Name(), KindNetwork, fmt.Errorf("create request: %w", err))
	}
	req.SetBasicAuth(c.accountID, c.licenseKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(c.Name(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewError(c.Name(), KindAuth, fmt.Errorf("credentials rejected: status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		// The service has no record for this address.
		return nil, nil
	case resp.StatusCode != http.StatusOK:
		return nil, NewError(c.Name(), KindNetwork, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var apiResp maxmindResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, NewError(c.Name(), KindParse, fmt.Errorf("decode response: %w", err))
	}

	return c.toGeoResult(ip, &apiResp), nil
}

// GetGeoInfo is GetIPInfo for the merge path; a nil result is a valid
// "no opinion" answer.
func (c *MaxMindClient) GetGeoInfo(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error) {
	return c.GetIPInfo(ctx, ip, rc)
}

func (c *MaxMindClient) toGeoResult(ip netip.Addr, r *maxmindResponse) *entity.GeoResult {
	res := &entity.GeoResult{
		IP:             ip.String(),
		City:           sanitize.Text(r.City.Names["en"]),
		Country:        sanitize.Text(r.Country.Names["en"]),
		CountryCode:    sanitize.CountryCode(r.Country.ISOCode),
		Continent:      sanitize.Text(r.Continent.Names["en"]),
		ContinentCode:  sanitize.RegionCode(r.Continent.Code),
		Latitude:       r.Location.Latitude,
		Longitude:      r.Location.Longitude,
		Timezone:       sanitize.Text(r.Location.TimeZone),
		PostalCode:     sanitize.PostalCode(r.Postal.Code),
		ASN:            sanitize.ASN(r.Traits.AutonomousSystemNumber),
		ASOrganization: sanitize.Text(r.Traits.AutonomousSystemOrganization),
		ISP:            sanitize.Text(r.Traits.ISP),
		Organization:   sanitize.Text(r.Traits.Organization),
		Domain:         sanitize.Text(r.Traits.Domain),
		UsageType:      sanitize.Text(r.Traits.UserType),
		Provider:       c.Name(),
	}
	if r.Location.AccuracyRadius > 0 {
		acc := r.Location.AccuracyRadius
		res.Accuracy = &acc
	}
	if len(r.Subdivisions) > 0 {
		res.Region = sanitize.Text(r.Subdivisions[0].Names["en"])
		res.RegionCode = sanitize.RegionCode(r.Subdivisions[0].ISOCode)
	}

	// The web service reports per-field confidence on a 0-100 scale.
	conf := make(map[string]float64)
	if r.Country.Confidence > 0 {
		conf["country_code"] = float64(r.Country.Confidence) / 100
	}
	if r.City.Confidence > 0 {
		conf["city"] = float64(r.City.Confidence) / 100
	}
	if r.Postal.Confidence > 0 {
		conf["postal_code"] = float64(r.Postal.Confidence) / 100
	}
	if len(conf) > 0 {
		res.Confidence = conf
	}

	return res
}
