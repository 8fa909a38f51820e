package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestContactFromSnippet(t *testing.T) {
	c := ContactFromSnippet("Reach out to Sarah Johnson at sarah@initech.com or call 555-123-4567.")
	assert.Equal(t, "Sarah Johnson", c.Name)
	assert.Equal(t, "sarah@initech.com", c.Email)
	assert.NotEmpty(t, c.Phone)
}

func TestContactFromSnippetEmpty(t *testing.T) {
	c := ContactFromSnippet("no contact details here")
	assert.Empty(t, c.Name)
	assert.Empty(t, c.Email)
	assert.Empty(t, c.Phone)
}

func TestSiteCompany(t *testing.T) {
	tests := []struct {
		name  string
		title string
		url   string
		want  string
	}{
		{
			name:  "title before dash separator",
			title: "Initech Systems - Enterprise Software",
			want:  "Initech Systems",
		},
		{
			name:  "title before pipe separator",
			title: "Globex Corp | Home",
			want:  "Globex Corp",
		},
		{
			name:  "short title falls back to domain",
			title: "Hi",
			url:   "https://www.initech.com/about",
			want:  "Initech",
		},
		{
			name:  "no title uses domain label",
			title: "",
			url:   "https://globex.io",
			want:  "Globex",
		},
		{
			name:  "short domain label yields sentinel",
			title: "",
			url:   "https://ab.com",
			want:  model.UnknownCompany,
		},
		{
			name:  "nothing usable yields sentinel",
			title: "",
			url:   "not a url",
			want:  model.UnknownCompany,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SiteCompany(tt.title, tt.url))
		})
	}
}
