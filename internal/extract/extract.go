// Package extract implements best-effort heuristics that turn free-text
// search results (title, snippet, link) into structured contact fields.
//
// Each field is resolved by a prioritized list of patterns followed by a
// plausibility check; the first plausible match wins. Every function here is
// pure: for a fixed input the output is always the same.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var titleCaser = cases.Title(language.English)

// Person name: two-to-three capitalized words before a separator, before
// "at", or standalone. Ordered by reliability.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s*[-|]`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s+at\s+`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s*:`),
	regexp.MustCompile(`^([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s*$`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+){1,2})\s*[-|]`),
}

var companyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)at\s+([A-Z][A-Za-z0-9\s&'\-\.]+?)(?:\s*[-|,\.]|\s+at\s+|\s*$|\s*·)`),
	regexp.MustCompile(`(?i)[-|]\s*([A-Z][A-Za-z0-9\s&'\-\.]+?)\s*[-|]`),
	regexp.MustCompile(`(?i)(?:works? at|current|previous|employed at)[:\s]+([A-Z][A-Za-z0-9\s&'\-\.]+)`),
	regexp.MustCompile(`(?i)([A-Z][A-Za-z0-9\s&'\-\.]{2,50})\s*[-|]\s*(?:CEO|CTO|CFO|VP|Director|Manager|Engineer|Developer|Designer|Analyst|Lead|Senior|Junior)`),
	regexp.MustCompile(`(?i)([A-Z][A-Za-z0-9\s&'\-\.]+)\s*·\s*`),
	regexp.MustCompile(`(?i)(?:CEO|CTO|CFO|VP|Director|Manager|Engineer|Developer|Designer|Analyst|Lead|Senior|Junior|President|Chief)\s+(?:of|at)\s+([A-Z][A-Za-z0-9\s&'\-\.]+)`),
}

// companyStopwords are values that regularly match the company patterns but
// are never real company names (role titles, UI chrome, regions).
var companyStopwords = []string{
	"linkedin", "profile", "view", "the", "a", "an", "have", "has", "had",
	"chief", "executive", "officer", "president", "director", "manager",
	"engineer", "developer", "designer", "analyst", "lead", "senior", "junior",
	"vice", "vp", "ceo", "cto", "cfo", "coo", "experience", "education",
	"location", "greater", "united", "states", "inc", "llc", "ltd",
}

var rolePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)([A-Z][A-Za-z\s]+?)\s+at\s+[A-Z]`),
	regexp.MustCompile(`(?i)(Chief\s+Executive\s+Officer|Chief\s+Technology\s+Officer|Chief\s+Financial\s+Officer|Chief\s+Operating\s+Officer|Vice\s+President|Head\s+of)`),
	regexp.MustCompile(`(?i)[-|]\s*([A-Z][A-Za-z\s]+?)\s*[-|]`),
	regexp.MustCompile(`(?i)(CEO|CTO|CFO|COO|VP|Director|Manager|Engineer|Developer|Designer|Analyst|Lead|Senior|Junior|Principal|Chief)`),
	regexp.MustCompile(`([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)\s*[-|]\s*[A-Z]`),
	regexp.MustCompile(`(?i)(President|CEO|CTO|CFO|COO|VP|Director|Manager|Engineer|Developer|Designer|Analyst|Lead|Senior|Junior|Principal|Head of|Chief)\s+(?:of|at)`),
}

var roleStopwords = []string{"linkedin", "profile", "view", "experience", "education", "location"}

var (
	linkedInPathRe = regexp.MustCompile(`linkedin\.com/in/([^/?]+)`)
	atPrefixRe     = regexp.MustCompile(`(?i)^\s*at\s+`)
	ofAtPrefixRe   = regexp.MustCompile(`(?i)^\s*(?:of|at)\s+`)
	whitespaceRe   = regexp.MustCompile(`\s+`)
	alphaWordRe    = regexp.MustCompile(`^[A-Za-z]+$`)
)

// Name extracts a person name, trying the title first, then the snippet, then
// deriving one from the URL path. Returns the "Unknown" sentinel when nothing
// plausible is found.
func Name(title, snippet, rawURL string) string {
	for _, text := range []string{title, snippet} {
		for _, pattern := range namePatterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			if plausibleName(name) {
				return name
			}
		}
	}

	if name := nameFromURL(rawURL); name != "" {
		return name
	}
	return model.UnknownContact
}

// plausibleName requires 2-3 words, each starting with an uppercase letter.
func plausibleName(name string) bool {
	words := strings.Fields(name)
	if len(words) < 2 || len(words) > 3 {
		return false
	}
	for _, w := range words {
		r := rune(w[0])
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// nameFromURL derives a name from the URL's profile path segment. Hyphenated
// words become name words; segments containing digits (profile hash suffixes)
// are dropped. Capped at three words.
func nameFromURL(rawURL string) string {
	var segment string
	if m := linkedInPathRe.FindStringSubmatch(rawURL); m != nil {
		segment = m[1]
	} else if u, err := url.Parse(rawURL); err == nil {
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) > 0 {
			segment = parts[len(parts)-1]
		}
	}
	if segment == "" {
		return ""
	}

	var words []string
	for _, w := range strings.Split(segment, "-") {
		if alphaWordRe.MatchString(w) {
			words = append(words, titleCaser.String(strings.ToLower(w)))
		}
	}
	if len(words) < 2 {
		return ""
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// Company extracts a company name, trying the snippet first (it usually has
// more detail), then the title. Returns the "Unknown Company" sentinel when
// nothing plausible is found.
func Company(snippet, title string) string {
	for _, text := range []string{snippet, title} {
		for _, pattern := range companyPatterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil || m[1] == "" {
				continue
			}
			company := cleanCompany(m[1])
			if plausibleCompany(company) {
				return company
			}
		}
	}
	return model.UnknownCompany
}

func cleanCompany(company string) string {
	company = strings.TrimSpace(company)
	company = atPrefixRe.ReplaceAllString(company, "")
	company = ofAtPrefixRe.ReplaceAllString(company, "")
	return whitespaceRe.ReplaceAllString(company, " ")
}

// plausibleCompany requires a length strictly between 2 and 100 and rejects
// stopwords: exact matches always, substring matches for stopwords longer
// than three characters.
func plausibleCompany(company string) bool {
	if len(company) <= 2 || len(company) >= 100 {
		return false
	}
	lower := strings.ToLower(company)
	for _, stop := range companyStopwords {
		if lower == stop {
			return false
		}
		if len(stop) > 3 && strings.Contains(lower, stop) {
			return false
		}
	}
	return true
}

// Role extracts a role/title, trying the snippet then the title, and falling
// back to the originally-searched position when it is non-trivial.
func Role(snippet, title, position string) string {
	for _, text := range []string{snippet, title} {
		for _, pattern := range rolePatterns {
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			role := m[0]
			if len(m) > 1 && m[1] != "" {
				role = m[1]
			}
			role = ofAtPrefixRe.ReplaceAllString(strings.TrimSpace(role), "")
			if plausibleRole(role) {
				return role
			}
		}
	}

	switch strings.ToLower(strings.TrimSpace(position)) {
	case "", "unknown", "unknown role":
		return model.UnknownRole
	default:
		return position
	}
}

func plausibleRole(role string) bool {
	if len(role) <= 2 || len(strings.Fields(role)) > 5 {
		return false
	}
	lower := strings.ToLower(role)
	for _, stop := range roleStopwords {
		if lower == stop {
			return false
		}
	}
	return true
}
