package model

import "strings"

// Preferences is a tenant's lead generation preference set. All fields are
// optional; an absent field means "no constraint", never an error.
type Preferences struct {
	TenantID string `json:"tenant_id"`

	TargetIndustry   string `json:"target_industry,omitempty"`
	CompanySize      string `json:"company_size,omitempty"`
	GeographicRegion string `json:"geographic_region,omitempty"`
	Locations        string `json:"locations,omitempty"`
	TargetRoles      string `json:"target_roles,omitempty"`
	TargetPositions  string `json:"target_positions,omitempty"`
	CompanyType      string `json:"company_type,omitempty"`
	Keywords         string `json:"keywords,omitempty"`
	RevenueRange     string `json:"revenue_range,omitempty"`
	TechnologyStack  string `json:"technology_stack,omitempty"`
	FundingStage     string `json:"funding_stage,omitempty"`
	Notes            string `json:"notes,omitempty"`

	// LinkedIn-specific overrides. The general fields above act as fallbacks.
	LinkedInLocations          string `json:"linkedin_locations,omitempty"`
	LinkedInPositions          string `json:"linkedin_positions,omitempty"`
	LinkedInExperienceOperator string `json:"linkedin_experience_operator,omitempty"`
	LinkedInExperienceYears    int    `json:"linkedin_experience_years,omitempty"`

	ExperienceOperator string `json:"experience_operator,omitempty"`
	ExperienceYears    int    `json:"experience_years,omitempty"`

	// EnabledMethods lists the acquisition strategies this tenant has turned on.
	EnabledMethods []Method `json:"enabled_methods,omitempty"`
}

// Location returns the first non-empty of locations and geographic region.
func (p Preferences) Location() string {
	if p.Locations != "" {
		return p.Locations
	}
	return p.GeographicRegion
}

// LocationList splits the LinkedIn search locations into trimmed entries.
func (p Preferences) LocationList() []string {
	return splitCSV(firstNonEmpty(p.Locations, p.LinkedInLocations, p.GeographicRegion))
}

// PositionList splits the LinkedIn search positions into trimmed entries.
func (p Preferences) PositionList() []string {
	return splitCSV(firstNonEmpty(p.TargetPositions, p.LinkedInPositions, p.TargetRoles))
}

// Experience returns the effective experience operator and years, preferring
// the general fields over the LinkedIn-specific ones. The operator defaults
// to "=" when unset.
func (p Preferences) Experience() (operator string, years int) {
	operator = firstNonEmpty(p.ExperienceOperator, p.LinkedInExperienceOperator, "=")
	years = p.ExperienceYears
	if years == 0 {
		years = p.LinkedInExperienceYears
	}
	return operator, years
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
