package aggregation

import (
	"github.com/IIXINGCHEN/ip-api-production/internal/entity"
)

// geoFields enumerates every declared output field once: how to tell
// whether a provider result carries it and how to copy it into the
// merged record. The merge, the confidence map and the completeness
// metric all run off this table.
type geoField struct {
	name    string
	present func(*entity.GeoResult) bool
	assign  func(*entity.GeoResult, *entity.GeoRecord)
}

var geoFields = []geoField{
	{"city",
		func(r *entity.GeoResult) bool { return r.City != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.City = r.City }},
	{"region",
		func(r *entity.GeoResult) bool { return r.Region != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Region = r.Region }},
	{"region_code",
		func(r *entity.GeoResult) bool { return r.RegionCode != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.RegionCode = r.RegionCode }},
	{"country",
		func(r *entity.GeoResult) bool { return r.Country != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Country = r.Country }},
	{"country_code",
		func(r *entity.GeoResult) bool { return r.CountryCode != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.CountryCode = r.CountryCode }},
	{"continent",
		func(r *entity.GeoResult) bool { return r.Continent != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Continent = r.Continent }},
	{"continent_code",
		func(r *entity.GeoResult) bool { return r.ContinentCode != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.ContinentCode = r.ContinentCode }},
	{"latitude",
		func(r *entity.GeoResult) bool { return r.Latitude != nil },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Latitude = r.Latitude }},
	{"longitude",
		func(r *entity.GeoResult) bool { return r.Longitude != nil },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Longitude = r.Longitude }},
	{"accuracy",
		func(r *entity.GeoResult) bool { return r.Accuracy != nil },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Accuracy = r.Accuracy }},
	{"timezone",
		func(r *entity.GeoResult) bool { return r.Timezone != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Timezone = r.Timezone }},
	{"postal_code",
		func(r *entity.GeoResult) bool { return r.PostalCode != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.PostalCode = r.PostalCode }},
	{"asn",
		func(r *entity.GeoResult) bool { return r.ASN != nil },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.ASN = r.ASN }},
	{"as_organization",
		func(r *entity.GeoResult) bool { return r.ASOrganization != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.ASOrganization = r.ASOrganization }},
	{"isp",
		func(r *entity.GeoResult) bool { return r.ISP != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.ISP = r.ISP }},
	{"organization",
		func(r *entity.GeoResult) bool { return r.Organization != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Organization = r.Organization }},
	{"domain",
		func(r *entity.GeoResult) bool { return r.Domain != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.Domain = r.Domain }},
	{"usage_type",
		func(r *entity.GeoResult) bool { return r.UsageType != "" },
		func(r *entity.GeoResult, out *entity.GeoRecord) { out.UsageType = r.UsageType }},
}

// totalDeclaredFields is the completeness denominator.
var totalDeclaredFields = len(geoFields)
