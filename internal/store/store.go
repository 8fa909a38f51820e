// Package store persists companies, leads and tenant preference sets. Two
// backends implement the same interface: Postgres for deployments and SQLite
// for local runs.
package store

import (
	"context"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// Company is a persisted company row.
type Company struct {
	ID       string `json:"id"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
	Source   string `json:"source,omitempty"`
}

// LeadRecord is the persisted form of a lead, attached to a company.
type LeadRecord struct {
	ID            string `json:"id"`
	TenantID      string `json:"tenant_id"`
	CompanyID     string `json:"company_id"`
	ContactPerson string `json:"contact_person"`
	ContactEmail  string `json:"contact_email,omitempty"`
	Role          string `json:"role,omitempty"`
	Phone         string `json:"phone,omitempty"`
	Status        string `json:"status"`
	Source        string `json:"source,omitempty"`

	Tier            int    `json:"tier,omitempty"`
	TierReason      string `json:"tier_reason,omitempty"`
	WarmConnections int    `json:"warm_connections,omitempty"`
}

// StatusNotContacted is the status every new lead starts in.
const StatusNotContacted = "not_contacted"

// Store is the persistence interface for the lead pipeline.
type Store interface {
	// UpsertCompany finds or creates the company named by the lead within
	// the tenant, matching on (tenant, name). created reports whether a new
	// row was inserted.
	UpsertCompany(ctx context.Context, tenantID string, lead model.Lead) (companyID string, created bool, err error)

	// LeadExists reports whether a lead with the given (tenant, company,
	// contact person) is already stored.
	LeadExists(ctx context.Context, tenantID, companyID, contactPerson string) (bool, error)

	// InsertLead inserts a lead under the company unless a lead with the
	// same (tenant, company, contact person) already exists. created is
	// false for duplicates; they are not an error.
	InsertLead(ctx context.Context, tenantID, companyID string, lead model.Lead, class *model.Classification) (leadID string, created bool, err error)

	// GetPreferences returns the tenant's preference set, or nil when the
	// tenant has none stored.
	GetPreferences(ctx context.Context, tenantID string) (*model.Preferences, error)

	// SavePreferences creates or replaces the tenant's preference set.
	SavePreferences(ctx context.Context, prefs model.Preferences) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
