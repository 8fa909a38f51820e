package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCityCountry(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{
			name:    "full address reduced to city and country",
			address: "123 Main St, Cape Town, South Africa",
			want:    "Cape Town, South Africa",
		},
		{
			name:    "state segment between city and country skipped",
			address: "500 Congress Ave, Austin, TX, USA",
			want:    "Austin, USA",
		},
		{
			name:    "two segments pass through",
			address: "Berlin, Germany",
			want:    "Berlin, Germany",
		},
		{
			name:    "single segment passes through",
			address: "Reykjavik",
			want:    "Reykjavik",
		},
		{
			name:    "empty input",
			address: "   ",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CityCountry(tt.address))
		})
	}
}
