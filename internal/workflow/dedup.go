package workflow

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Deduplicate removes duplicate leads by normalized (company, contact) key,
// keeping the first occurrence. Leads with an empty company name are dropped
// outright. Input order is preserved and the input slice is not mutated.
func Deduplicate(leads []model.Lead) []model.Lead {
	seen := make(map[string]struct{}, len(leads))
	out := make([]model.Lead, 0, len(leads))

	for _, lead := range leads {
		company := strings.ToLower(strings.TrimSpace(lead.CompanyName))
		if company == "" {
			continue
		}
		contact := strings.ToLower(strings.TrimSpace(lead.ContactPerson))

		key := company + "|" + contact
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, lead)
	}
	return out
}
