package aggregation

import (
	"fmt"
	"math"
)

// approximateTimezone derives a coarse UTC offset from longitude, 15
// degrees per hour. Used only when no provider supplied a timezone.
func approximateTimezone(longitude float64) string {
	offset := int(math.Round(longitude / 15))
	if offset == 0 {
		return "UTC"
	}
	return fmt.Sprintf("UTC%+d", offset)
}

// Static country-code lookup tables. These are hints attached as
// fallback enrichment, not geolocation data in their own right.
var countryCurrencies = map[string]string{
	"US": "USD", "CA": "CAD", "MX": "MXN", "BR": "BRL", "AR": "ARS",
	"GB": "GBP", "IE": "EUR", "FR": "EUR", "DE": "EUR", "ES": "EUR",
	"IT": "EUR", "PT": "EUR", "NL": "EUR", "BE": "EUR", "AT": "EUR",
	"FI": "EUR", "GR": "EUR", "CH": "CHF", "SE": "SEK", "NO": "NOK",
	"DK": "DKK", "PL": "PLN", "CZ": "CZK", "HU": "HUF", "RO": "RON",
	"RU": "RUB", "UA": "UAH", "TR": "TRY", "IL": "ILS", "SA": "SAR",
	"AE": "AED", "EG": "EGP", "ZA": "ZAR", "NG": "NGN", "KE": "KES",
	"IN": "INR", "PK": "PKR", "BD": "BDT", "CN": "CNY", "JP": "JPY",
	"KR": "KRW", "TW": "TWD", "HK": "HKD", "SG": "SGD", "MY": "MYR",
	"TH": "THB", "VN": "VND", "ID": "IDR", "PH": "PHP", "AU": "AUD",
	"NZ": "NZD", "CL": "CLP", "CO": "COP", "PE": "PEN",
}

var countryLanguages = map[string][]string{
	"US": {"en"}, "CA": {"en", "fr"}, "MX": {"es"}, "BR": {"pt"},
	"AR": {"es"}, "GB": {"en"}, "IE": {"en", "ga"}, "FR": {"fr"},
	"DE": {"de"}, "ES": {"es"}, "IT": {"it"}, "PT": {"pt"},
	"NL": {"nl"}, "BE": {"nl", "fr", "de"}, "AT": {"de"},
	"FI": {"fi", "sv"}, "GR": {"el"}, "CH": {"de", "fr", "it"},
	"SE": {"sv"}, "NO": {"no"}, "DK": {"da"}, "PL": {"pl"},
	"CZ": {"cs"}, "HU": {"hu"}, "RO": {"ro"}, "RU": {"ru"},
	"UA": {"uk"}, "TR": {"tr"}, "IL": {"he"}, "SA": {"ar"},
	"AE": {"ar"}, "EG": {"ar"}, "ZA": {"af", "en", "zu"},
	"NG": {"en"}, "KE": {"en", "sw"}, "IN": {"hi", "en"},
	"PK": {"ur", "en"}, "BD": {"bn"}, "CN": {"zh"}, "JP": {"ja"},
	"KR": {"ko"}, "TW": {"zh"}, "HK": {"zh", "en"},
	"SG": {"en", "zh", "ms", "ta"}, "MY": {"ms"}, "TH": {"th"},
	"VN": {"vi"}, "ID": {"id"}, "PH": {"en", "tl"}, "AU": {"en"},
	"NZ": {"en", "mi"}, "CL": {"es"}, "CO": {"es"}, "PE": {"es"},
}
