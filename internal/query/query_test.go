package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name  string
		prefs model.Preferences
		want  string
	}{
		{
			name:  "empty preferences fall back to default",
			prefs: model.Preferences{},
			want:  "businesses",
		},
		{
			name: "fields joined in fixed order",
			prefs: model.Preferences{
				CompanyType:     "startup",
				TargetIndustry:  "fintech",
				Locations:       "Berlin",
				Keywords:        "payments",
				CompanySize:     "11-50",
				TechnologyStack: "Go",
				FundingStage:    "seed",
			},
			want: "startup fintech Berlin payments 11-50 Go seed",
		},
		{
			name: "geographic region used when locations empty",
			prefs: model.Preferences{
				TargetIndustry:   "logistics",
				GeographicRegion: "Midwest",
			},
			want: "logistics Midwest",
		},
		{
			name: "whitespace-only fields skipped",
			prefs: model.Preferences{
				CompanyType:    "  ",
				TargetIndustry: "healthcare",
			},
			want: "healthcare",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.prefs))
		})
	}
}

func TestBuildDeterministic(t *testing.T) {
	prefs := model.Preferences{TargetIndustry: "saas", Locations: "Austin", Keywords: "crm"}
	first := Build(prefs)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Build(prefs))
	}
}

func TestPlaces(t *testing.T) {
	prefs := model.Preferences{
		CompanyType:    "pharmacy",
		TargetIndustry: "healthcare",
		Keywords:       "independent",
		Locations:      "Denver",
	}
	assert.Equal(t, "pharmacy healthcare independent Denver", Places(prefs))
	assert.Equal(t, "businesses", Places(model.Preferences{}))
}

func TestLinkedIn(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		years    int
		want     string
	}{
		{
			name:     "no experience clause when years is zero",
			operator: ">",
			years:    0,
			want:     "site:linkedin.com/in CTO Boston",
		},
		{
			name:     "greater-than clause",
			operator: ">",
			years:    5,
			want:     `site:linkedin.com/in CTO Boston "5 years" OR "5+ years"`,
		},
		{
			name:     "less-than clause",
			operator: "<",
			years:    3,
			want:     `site:linkedin.com/in CTO Boston "less than 3 years" OR "junior" OR "entry level"`,
		},
		{
			name:     "equals clause",
			operator: "=",
			years:    7,
			want:     `site:linkedin.com/in CTO Boston "7 years"`,
		},
		{
			name:     "unknown operator treated as equals",
			operator: ">=",
			years:    2,
			want:     `site:linkedin.com/in CTO Boston "2 years"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkedIn("CTO", "Boston", tt.operator, tt.years))
		})
	}
}
