package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferencesLocation(t *testing.T) {
	p := Preferences{Locations: "Berlin", GeographicRegion: "Europe"}
	assert.Equal(t, "Berlin", p.Location())

	p = Preferences{GeographicRegion: "Europe"}
	assert.Equal(t, "Europe", p.Location())

	assert.Empty(t, Preferences{}.Location())
}

func TestPreferencesLocationList(t *testing.T) {
	p := Preferences{Locations: "Berlin, Munich , "}
	assert.Equal(t, []string{"Berlin", "Munich"}, p.LocationList())

	p = Preferences{LinkedInLocations: "Boston"}
	assert.Equal(t, []string{"Boston"}, p.LocationList())

	assert.Nil(t, Preferences{}.LocationList())
}

func TestPreferencesPositionList(t *testing.T) {
	p := Preferences{TargetPositions: "CTO,VP Engineering"}
	assert.Equal(t, []string{"CTO", "VP Engineering"}, p.PositionList())

	p = Preferences{TargetRoles: "Founder"}
	assert.Equal(t, []string{"Founder"}, p.PositionList())
}

func TestPreferencesExperience(t *testing.T) {
	op, years := Preferences{}.Experience()
	assert.Equal(t, "=", op)
	assert.Zero(t, years)

	op, years = Preferences{ExperienceOperator: ">", ExperienceYears: 5}.Experience()
	assert.Equal(t, ">", op)
	assert.Equal(t, 5, years)

	op, years = Preferences{LinkedInExperienceOperator: "<", LinkedInExperienceYears: 3}.Experience()
	assert.Equal(t, "<", op)
	assert.Equal(t, 3, years)
}

func TestMethodValid(t *testing.T) {
	for _, m := range KnownMethods {
		assert.True(t, m.Valid())
	}
	assert.False(t, Method("carrier_pigeon").Valid())
	assert.False(t, Method("").Valid())
}
