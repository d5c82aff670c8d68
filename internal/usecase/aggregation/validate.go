package aggregation

import (
	"net/netip"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// Validate computes the quality score of one provider result. The score
// starts at 1.0 and each defect subtracts a fixed penalty; a result at
// or below 0.5 is still merged, just down-weighted.
func Validate(res *entity.GeoResult) entity.Validation {
	score := 1.0
	issues := []string{}

	if res.IP == "" {
		score -= 0.2
		issues = append(issues, "missing_ip")
	} else if _, err := netip.ParseAddr(res.IP); err != nil {
		score -= 0.2
		issues = append(issues, "malformed_ip")
	}

	if res.Latitude != nil && (*res.Latitude < -90 || *res.Latitude > 90) {
		score -= 0.1
		issues = append(issues, "latitude_out_of_range")
	}
	if res.Longitude != nil && (*res.Longitude < -180 || *res.Longitude > 180) {
		score -= 0.1
		issues = append(issues, "longitude_out_of_range")
	}
	if res.CountryCode != "" && !validCountryCode(res.CountryCode) {
		score -= 0.1
		issues = append(issues, "malformed_country_code")
	}
	if res.ASN != nil && *res.ASN < 0 {
		score -= 0.05
		issues = append(issues, "negative_asn")
	}

	// Required field set.
	if res.IP == "" {
		score -= 0.1
		issues = append(issues, "missing_required:ip")
	}
	if res.Country == "" {
		score -= 0.1
		issues = append(issues, "missing_required:country")
	}
	if res.CountryCode == "" {
		score -= 0.1
		issues = append(issues, "missing_required:country_code")
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return entity.Validation{Score: score, Issues: issues}
}

func validCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
