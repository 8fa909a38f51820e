// Package ingest parses externally supplied lead lists. Admins regularly
// bring spreadsheets from conferences or bought lists; ingest turns those
// into the same lead shape the acquisition sources produce.
package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// CSVOptions configures the CSV reader.
type CSVOptions struct {
	Delimiter  rune // default ','
	LazyQuotes bool
}

// columnAliases maps normalized header names to lead fields. Column order
// in the file does not matter; unknown columns are ignored.
var columnAliases = map[string]string{
	"company":        "company",
	"company name":   "company",
	"business":       "company",
	"organization":   "company",
	"contact":        "contact",
	"contact name":   "contact",
	"contact person": "contact",
	"name":           "contact",
	"email":          "email",
	"contact email":  "email",
	"e mail":         "email",
	"role":           "role",
	"title":          "role",
	"job title":      "role",
	"position":       "role",
	"phone":          "phone",
	"phone number":   "phone",
	"telephone":      "phone",
	"website":        "website",
	"url":            "website",
	"site":           "website",
	"address":        "address",
	"location":       "address",
	"industry":       "industry",
	"sector":         "industry",
}

// ReadLeads parses a CSV of leads. The first row must be a header naming at
// least a company column; rows without a company are skipped. Contacts
// default to the unknown sentinel so imported rows survive persistence.
func ReadLeads(ctx context.Context, r io.Reader, opts CSVOptions) ([]model.Lead, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, eris.New("ingest: empty file")
	}
	if err != nil {
		return nil, eris.Wrap(err, "ingest: read header")
	}

	fields := mapHeader(header)
	if _, ok := fields["company"]; !ok {
		return nil, eris.New("ingest: no company column in header")
	}

	var leads []model.Lead
	skipped := 0
	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "ingest: cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read row")
		}

		lead, ok := rowToLead(record, fields)
		if !ok {
			skipped++
			continue
		}
		leads = append(leads, lead)
	}

	if skipped > 0 {
		zap.L().Warn("skipped rows without a company name", zap.Int("rows", skipped))
	}
	return leads, nil
}

// mapHeader resolves each header cell to a lead field index. The first
// column claiming a field wins.
func mapHeader(header []string) map[string]int {
	fields := make(map[string]int)
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
		field, ok := columnAliases[name]
		if !ok {
			continue
		}
		if _, claimed := fields[field]; claimed {
			continue
		}
		fields[field] = i
	}
	return fields
}

func rowToLead(record []string, fields map[string]int) (model.Lead, bool) {
	cell := func(field string) string {
		i, ok := fields[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	company := cell("company")
	if company == "" {
		return model.Lead{}, false
	}

	contact := cell("contact")
	if contact == "" {
		contact = model.UnknownContact
	}

	return model.Lead{
		CompanyName:   company,
		ContactPerson: contact,
		ContactEmail:  cell("email"),
		Role:          cell("role"),
		Phone:         cell("phone"),
		Website:       cell("website"),
		Address:       cell("address"),
		Industry:      cell("industry"),
		Source:        model.MethodImport,
	}, true
}
