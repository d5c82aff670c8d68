package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/IIXINGCHEN/ip-api-production/internal/domain/sanitize"
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// IPInfoConfig holds configuration for the ipinfo.io adapter.
type IPInfoConfig struct {
	// Token is optional; without it the free tier is used at a lower
	// request rate.
	Token    string
	BaseURL  string
	Priority int
	Timeout  time.Duration
	// FreeTierRate is requests per minute allowed without a token.
	FreeTierRate int
}

// IPInfoClient speaks the ipinfo.io JSON endpoint, optionally with a
// bearer token.
type IPInfoClient struct {
	token      string
	baseURL    string
	priority   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewIPInfoClient creates the free-lookup provider adapter.
func NewIPInfoClient(cfg IPInfoConfig) *IPInfoClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://ipinfo.io"
	}
	if cfg.FreeTierRate == 0 {
		cfg.FreeTierRate = 45
	}

	c := &IPInfoClient{
		token:    cfg.Token,
		baseURL:  cfg.BaseURL,
		priority: cfg.Priority,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.Token == "" {
		// Unauthenticated calls share a tight upstream quota.
		c.limiter = rate.NewLimiter(rate.Limit(float64(cfg.FreeTierRate)/60.0), 5)
	}
	return c
}

func (c *IPInfoClient) Name() string {
	return "ipinfo"
}

func (c *IPInfoClient) Priority() int {
	return c.priority
}

// IsConfigured is always true: the endpoint answers without a token.
func (c *IPInfoClient) IsConfigured() bool {
	return true
}

type ipinfoResponse struct {
	IP       string `json:"ip"`
	Hostname string `json:"hostname"`
	City     string `json:"city"`
	Region   string `json:"region"`
	Country  string `json:"country"`
	Loc      string `json:"loc"`
	Org      string `json:"org"`
	Postal   string `json:"postal"`
	Timezone string `json:"timezone"`
	Bogon    bool   `json:"bogon"`
}

// GetIPInfo queries ipinfo.io for one IP.
func (c *IPInfoClient) GetIPInfo(ctx context.Context, ip netip.Addr, _ *entity.RequestContext) (*entity.GeoResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(c.Name(), err)
		}
	}

	reqURL := fmt.Sprintf("%s/%s/json", c.baseURL, ip.String())
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, NewError(c.Name(), KindNetwork, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(c.Name(), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, NewError(c.Name(), KindAuth, fmt.Errorf("token rejected: status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewError(c.Name(), KindNetwork, fmt.Errorf("rate limit exceeded"))
	case resp.StatusCode != http.StatusOK:
		return nil, NewError(c.Name(), KindNetwork, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var apiResp ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, NewError(c.Name(), KindParse, fmt.Errorf("decode response: %w", err))
	}

	if apiResp.Bogon {
		// Private or reserved space: no opinion.
		return nil, nil
	}

	return c.toGeoResult(ip, &apiResp), nil
}

// GetGeoInfo is GetIPInfo for the merge path.
func (c *IPInfoClient) GetGeoInfo(ctx context.Context, ip netip.Addr, rc *entity.RequestContext) (*entity.GeoResult, error) {
	return c.GetIPInfo(ctx, ip, rc)
}

func (c *IPInfoClient) toGeoResult(ip netip.Addr, r *ipinfoResponse) *entity.GeoResult {
	res := &entity.GeoResult{
		IP:          ip.String(),
		City:        sanitize.Text(r.City),
		Region:      sanitize.Text(r.Region),
		CountryCode: sanitize.CountryCode(r.Country),
		PostalCode:  sanitize.PostalCode(r.Postal),
		Timezone:    sanitize.Text(r.Timezone),
		Provider:    c.Name(),
	}

	// loc is "lat,lon"
	if lat, lon, ok := strings.Cut(r.Loc, ","); ok {
		res.Latitude = sanitize.Coordinate(lat)
		res.Longitude = sanitize.Coordinate(lon)
	}

	// org is "AS#### Organization Name"
	if r.Org != "" {
		if asPart, orgPart, ok := strings.Cut(r.Org, " "); ok && strings.HasPrefix(asPart, "AS") {
			res.ASN = sanitize.ASN(asPart)
			res.ASOrganization = sanitize.Text(orgPart)
			res.ISP = sanitize.Text(orgPart)
		} else {
			res.Organization = sanitize.Text(r.Org)
		}
	}
	if r.Hostname != "" {
		res.Domain = sanitize.Text(r.Hostname)
	}

	return res
}
