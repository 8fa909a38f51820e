package model

// Sentinel values used when extraction cannot determine a field. Leads whose
// company name is the sentinel (or empty) are dropped before persistence.
const (
	UnknownContact = "Unknown"
	UnknownCompany = "Unknown Company"
	UnknownRole    = "Unknown Role"
)

// Method identifies a lead acquisition strategy.
type Method string

const (
	MethodPlaces       Method = "google_places_api"
	MethodCustomSearch Method = "google_custom_search"
	MethodLLM          Method = "pure_llm"
	MethodLinkedIn     Method = "linkedin_search"

	// MethodImport marks leads loaded from an admin-supplied file rather
	// than an acquisition run. It is not a workflow strategy.
	MethodImport Method = "csv_import"
)

// KnownMethods lists every registered acquisition strategy.
var KnownMethods = []Method{MethodPlaces, MethodCustomSearch, MethodLLM, MethodLinkedIn}

// Valid reports whether m names a registered strategy.
func (m Method) Valid() bool {
	for _, k := range KnownMethods {
		if m == k {
			return true
		}
	}
	return false
}

// Lead is a candidate contact/company record produced by a single source
// invocation. It lives in memory until deduplicated and persisted; fields are
// never mutated after creation except defaulting.
type Lead struct {
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	ContactEmail  string `json:"contact_email"`
	Role          string `json:"role"`
	Address       string `json:"address"`
	Phone         string `json:"phone"`
	Website       string `json:"website"`
	Industry      string `json:"industry"`
	Source        Method `json:"source"`
}

// WorkflowResult summarizes a single lead generation run. Success is true iff
// at least one lead was actually persisted, regardless of per-method failures.
type WorkflowResult struct {
	Success          bool           `json:"success"`
	LeadsCreated     int            `json:"leads_created"`
	CompaniesCreated int            `json:"companies_created"`
	MethodResults    map[Method]int `json:"method_results"`
	TotalLeadsFound  int            `json:"total_leads_found"`
	Errors           []string       `json:"errors,omitempty"`
}

// SaveResult reports what a persistence batch actually committed.
type SaveResult struct {
	LeadsCreated     int `json:"leads_created"`
	CompaniesCreated int `json:"companies_created"`
}

// Classification is the tier assigned to a lead by the classifier collaborator.
type Classification struct {
	Tier            int    `json:"tier"`
	TierReason      string `json:"tier_reason"`
	WarmConnections int    `json:"warm_connections"`
}
