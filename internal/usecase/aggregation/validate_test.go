package aggregation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestValidatePerfectResult(t *testing.T) {
	v := Validate(&entity.GeoResult{
		IP:          "8.8.8.8",
		Country:     "United States",
		CountryCode: "US",
		Latitude:    f64(37.386),
		Longitude:   f64(-122.0838),
		ASN:         i64(15169),
	})

	assert.InDelta(t, 1.0, v.Score, 1e-9)
	assert.Empty(t, v.Issues)
}

func TestValidatePenalties(t *testing.T) {
	tests := []struct {
		name   string
		res    *entity.GeoResult
		score  float64
		issues []string
	}{
		{
			name:   "missing ip",
			res:    &entity.GeoResult{Country: "Germany", CountryCode: "DE"},
			score:  0.7,
			issues: []string{"missing_ip", "missing_required:ip"},
		},
		{
			name:   "malformed ip",
			res:    &entity.GeoResult{IP: "999.1.1.1", Country: "Germany", CountryCode: "DE"},
			score:  0.8,
			issues: []string{"malformed_ip"},
		},
		{
			name:   "latitude out of range",
			res:    &entity.GeoResult{IP: "1.2.3.4", Country: "Germany", CountryCode: "DE", Latitude: f64(91)},
			score:  0.9,
			issues: []string{"latitude_out_of_range"},
		},
		{
			name:   "longitude out of range",
			res:    &entity.GeoResult{IP: "1.2.3.4", Country: "Germany", CountryCode: "DE", Longitude: f64(-180.5)},
			score:  0.9,
			issues: []string{"longitude_out_of_range"},
		},
		{
			name:   "malformed country code",
			res:    &entity.GeoResult{IP: "1.2.3.4", Country: "Germany", CountryCode: "D1"},
			score:  0.9,
			issues: []string{"malformed_country_code"},
		},
		{
			name:   "negative asn",
			res:    &entity.GeoResult{IP: "1.2.3.4", Country: "Germany", CountryCode: "DE", ASN: i64(-1)},
			score:  0.95,
			issues: []string{"negative_asn"},
		},
		{
			name:   "missing required fields",
			res:    &entity.GeoResult{IP: "1.2.3.4"},
			score:  0.8,
			issues: []string{"missing_required:country", "missing_required:country_code"},
		},
		{
			name:  "everything wrong at once",
			res:   &entity.GeoResult{Latitude: f64(200), Longitude: f64(200), ASN: i64(-7)},
			score: 0.25,
			issues: []string{
				"missing_ip",
				"latitude_out_of_range",
				"longitude_out_of_range",
				"negative_asn",
				"missing_required:ip",
				"missing_required:country",
				"missing_required:country_code",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Validate(tt.res)
			assert.InDelta(t, tt.score, v.Score, 1e-9)
			assert.ElementsMatch(t, tt.issues, v.Issues)
		})
	}
}

func TestValidateBoundaryCoordinatesAreValid(t *testing.T) {
	v := Validate(&entity.GeoResult{
		IP:          "1.2.3.4",
		Country:     "Norway",
		CountryCode: "NO",
		Latitude:    f64(90),
		Longitude:   f64(-180),
	})
	assert.InDelta(t, 1.0, v.Score, 1e-9)
	assert.Empty(t, v.Issues)
}

func TestValidateScoreNeverNegative(t *testing.T) {
	v := Validate(&entity.GeoResult{
		IP:          "not an ip",
		CountryCode: "XYZ",
		Latitude:    f64(-999),
		Longitude:   f64(999),
		ASN:         i64(-1),
	})
	assert.GreaterOrEqual(t, v.Score, 0.0)
	assert.LessOrEqual(t, v.Score, 1.0)
}
