package extract

import (
	"regexp"
	"strings"
)

// US state, DC-less; plus Canadian province codes. Used to skip the
// state/province segment when reducing a full address.
var statePattern = regexp.MustCompile(`(?i)^(AL|AK|AZ|AR|CA|CO|CT|DE|FL|GA|HI|ID|IL|IN|IA|KS|KY|LA|ME|MD|MA|MI|MN|MS|MO|MT|NE|NV|NH|NJ|NM|NY|NC|ND|OH|OK|OR|PA|RI|SC|SD|TN|TX|UT|VT|VA|WA|WV|WI|WY|ON|QC|BC|AB|MB|SK|NS|NB|NL|PE|NT|YT|NU)$`)

// CityCountry reduces a full address like "123 Main St, Cape Town, South
// Africa" to "City, Country". Inputs that are already two segments or fewer
// pass through unchanged; a state/province segment between city and country
// is skipped.
func CityCountry(address string) string {
	address = strings.TrimSpace(address)
	if address == "" {
		return ""
	}

	var parts []string
	for _, p := range strings.Split(address, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}

	if len(parts) <= 2 {
		return strings.Join(parts, ", ")
	}

	city := parts[len(parts)-2]
	country := parts[len(parts)-1]
	if statePattern.MatchString(city) && len(parts) >= 3 {
		city = parts[len(parts)-3]
	}
	return city + ", " + country
}
