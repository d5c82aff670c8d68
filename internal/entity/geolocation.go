package entity

// GeoResult represents a single provider's raw answer for one IP.
// Pointer fields distinguish "provider had no value" from a zero value,
// which matters during the per-field merge.
type GeoResult struct {
	IP             string   `json:"ip"`
	City           string   `json:"city,omitempty"`
	Region         string   `json:"region,omitempty"`
	RegionCode     string   `json:"region_code,omitempty"`
	Country        string   `json:"country,omitempty"`
	CountryCode    string   `json:"country_code,omitempty"`
	Continent      string   `json:"continent,omitempty"`
	ContinentCode  string   `json:"continent_code,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Accuracy       *int     `json:"accuracy,omitempty"`
	Timezone       string   `json:"timezone,omitempty"`
	PostalCode     string   `json:"postal_code,omitempty"`
	ASN            *int64   `json:"asn,omitempty"`
	ASOrganization string   `json:"as_organization,omitempty"`
	ISP            string   `json:"isp,omitempty"`
	Organization   string   `json:"organization,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	UsageType      string   `json:"usage_type,omitempty"`

	// Confidence holds optional per-field confidence sub-scores reported
	// by the provider itself (0-1 scale), keyed by field name.
	Confidence map[string]float64 `json:"confidence,omitempty"`

	// Provider is set by the adapter that produced this result.
	Provider string `json:"provider"`
}

// Validation is the quality judgement of one GeoResult.
type Validation struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues"`
}

// FieldConfidence records which provider won a field and with what confidence.
type FieldConfidence struct {
	Value    float64 `json:"value"`
	Source   string  `json:"source"`
	Priority int     `json:"priority"`
}

// SourceAttribution records what one provider contributed to a merged record.
type SourceAttribution struct {
	Provider        string   `json:"provider"`
	Priority        int      `json:"priority"`
	ValidationScore float64  `json:"validation_score"`
	Fields          []string `json:"fields"`
	Issues          []string `json:"issues,omitempty"`
}

// DataQuality describes confidence in a merged record.
type DataQuality struct {
	Completeness float64 `json:"completeness"`
	Consistency  float64 `json:"consistency"`
	Accuracy     float64 `json:"accuracy"`
	Overall      float64 `json:"overall"`
}

// GeoRecord is the final reconciled geolocation answer for one IP.
// Immutable once returned from the aggregation engine.
type GeoRecord struct {
	IP             string   `json:"ip"`
	City           string   `json:"city,omitempty"`
	Region         string   `json:"region,omitempty"`
	RegionCode     string   `json:"region_code,omitempty"`
	Country        string   `json:"country,omitempty"`
	CountryCode    string   `json:"country_code,omitempty"`
	Continent      string   `json:"continent,omitempty"`
	ContinentCode  string   `json:"continent_code,omitempty"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	Accuracy       *int     `json:"accuracy,omitempty"`
	Timezone       string   `json:"timezone,omitempty"`
	PostalCode     string   `json:"postal_code,omitempty"`
	ASN            *int64   `json:"asn,omitempty"`
	ASOrganization string   `json:"as_organization,omitempty"`
	ISP            string   `json:"isp,omitempty"`
	Organization   string   `json:"organization,omitempty"`
	Domain         string   `json:"domain,omitempty"`
	UsageType      string   `json:"usage_type,omitempty"`

	// Fallback enrichments derived from the country code, never
	// overriding a provider-supplied value.
	Currency  string   `json:"currency,omitempty"`
	Languages []string `json:"languages,omitempty"`

	Confidence  map[string]FieldConfidence `json:"confidence,omitempty"`
	Sources     []SourceAttribution        `json:"sources"`
	DataQuality DataQuality                `json:"data_quality"`

	// Threat is attached only when the caller asked for an assessment.
	// ThreatError carries the degradation marker when the threat engine
	// failed; the geolocation answer is still valid in that case.
	Threat      *ThreatAssessment `json:"threat,omitempty"`
	ThreatError string            `json:"threat_error,omitempty"`
}
