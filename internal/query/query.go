// Package query assembles search queries from tenant preference sets.
// Builders are pure string assembly with no failure modes: absent preference
// fields are skipped, never treated as errors.
package query

import (
	"fmt"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// defaultQuery is used when every preference field is empty.
const defaultQuery = "businesses"

// Build produces the generic free-text query from a preference set. Fields
// are concatenated in a fixed order so that identical preferences always
// yield identical queries.
func Build(prefs model.Preferences) string {
	parts := appendNonEmpty(nil,
		prefs.CompanyType,
		prefs.TargetIndustry,
		prefs.Location(),
		prefs.Keywords,
		prefs.CompanySize,
		prefs.TechnologyStack,
		prefs.FundingStage,
	)
	if len(parts) == 0 {
		return defaultQuery
	}
	return strings.Join(parts, " ")
}

// Places produces the structured-business lookup query, which leads with the
// concrete business descriptors and ends with the location.
func Places(prefs model.Preferences) string {
	parts := appendNonEmpty(nil,
		prefs.CompanyType,
		prefs.TargetIndustry,
		prefs.Keywords,
		prefs.Location(),
	)
	if len(parts) == 0 {
		return defaultQuery
	}
	return strings.Join(parts, " ")
}

// LinkedIn produces a site-scoped profile query for one position/location
// pair, with an optional experience clause.
func LinkedIn(position, location, operator string, years int) string {
	q := fmt.Sprintf("site:linkedin.com/in %s %s", position, location)
	if years <= 0 {
		return q
	}

	yearsText := fmt.Sprintf("%d years", years)
	switch operator {
	case ">":
		q += fmt.Sprintf(" %q OR %q", yearsText, fmt.Sprintf("%d+ years", years))
	case "<":
		q += fmt.Sprintf(" %q OR %q OR %q", "less than "+yearsText, "junior", "entry level")
	default:
		q += fmt.Sprintf(" %q", yearsText)
	}
	return q
}

func appendNonEmpty(parts []string, values ...string) []string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
