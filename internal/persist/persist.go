// Package persist turns deduplicated in-memory leads into database rows. It
// owns the write-side rules: which leads are storable, how companies are
// shared between leads, and how duplicates are skipped silently.
package persist

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/classify"
	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/internal/store"
)

// Saver persists lead batches. The classifier is optional; when present each
// new lead is tiered before insert, and a classification failure never blocks
// the insert.
type Saver struct {
	store      store.Store
	classifier classify.Classifier
}

// NewSaver creates a Saver. classifier may be nil.
func NewSaver(st store.Store, classifier classify.Classifier) *Saver {
	return &Saver{store: st, classifier: classifier}
}

// SaveBatch persists a batch for a tenant. Leads with no usable company name
// are skipped, as are exact duplicates of already-stored leads. Per-lead
// database failures are logged and the batch continues; the returned counts
// reflect only rows actually created.
func (s *Saver) SaveBatch(ctx context.Context, tenantID string, leads []model.Lead) (model.SaveResult, error) {
	log := zap.L().With(zap.String("tenant_id", tenantID))

	var result model.SaveResult
	for _, lead := range leads {
		if lead.CompanyName == "" || lead.CompanyName == model.UnknownCompany {
			continue
		}

		companyID, companyCreated, err := s.store.UpsertCompany(ctx, tenantID, lead)
		if err != nil {
			log.Warn("company upsert failed", zap.String("company", lead.CompanyName), zap.Error(err))
			continue
		}
		if companyCreated {
			result.CompaniesCreated++
		}

		// Check for an existing row before classifying so duplicates never
		// spend a model call.
		exists, err := s.store.LeadExists(ctx, tenantID, companyID, lead.ContactPerson)
		if err != nil {
			log.Warn("lead lookup failed",
				zap.String("company", lead.CompanyName),
				zap.String("contact", lead.ContactPerson), zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		var class *model.Classification
		if s.classifier != nil {
			class, err = s.classifier.Classify(ctx, lead)
			if err != nil {
				log.Warn("classification failed, storing unclassified",
					zap.String("company", lead.CompanyName), zap.Error(err))
				class = nil
			}
		}

		_, leadCreated, err := s.store.InsertLead(ctx, tenantID, companyID, lead, class)
		if err != nil {
			log.Warn("lead insert failed",
				zap.String("company", lead.CompanyName),
				zap.String("contact", lead.ContactPerson), zap.Error(err))
			continue
		}
		if leadCreated {
			result.LeadsCreated++
		}
	}

	log.Info("batch persisted",
		zap.Int("leads_created", result.LeadsCreated),
		zap.Int("companies_created", result.CompaniesCreated),
		zap.Int("batch_size", len(leads)))
	return result, nil
}
