package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe     = regexp.MustCompile(`\+?\(?[0-9]{1,4}\)?[-\s.]?\(?[0-9]{1,4}\)?[-\s.]?[0-9]{1,9}`)
	fullNameRe  = regexp.MustCompile(`\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)
	wwwPrefixRe = regexp.MustCompile(`^www\.`)
)

// Contact holds contact details pulled from a search snippet.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// ContactFromSnippet scans a snippet for an email address, a phone number and
// a capitalized first-plus-last name. Missing fields stay empty.
func ContactFromSnippet(snippet string) Contact {
	var c Contact
	if m := emailRe.FindString(snippet); m != "" {
		c.Email = m
	}
	if m := phoneRe.FindString(snippet); m != "" {
		c.Phone = m
	}
	if m := fullNameRe.FindStringSubmatch(snippet); m != nil {
		c.Name = m[1]
	}
	return c
}

// SiteCompany derives a company name for a generic web result: the title up
// to its first separator, else the first label of the URL's domain,
// title-cased. Returns the "Unknown Company" sentinel when both fail.
func SiteCompany(title, rawURL string) string {
	if title != "" {
		clean := title
		if idx := strings.Index(clean, " - "); idx >= 0 {
			clean = clean[:idx]
		}
		if idx := strings.Index(clean, " | "); idx >= 0 {
			clean = clean[:idx]
		}
		clean = strings.TrimSpace(clean)
		if len(clean) > 3 {
			return clean
		}
	}

	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		domain := wwwPrefixRe.ReplaceAllString(u.Host, "")
		if idx := strings.Index(domain, "."); idx > 2 {
			return titleCaser.String(domain[:idx])
		}
	}

	return model.UnknownCompany
}
