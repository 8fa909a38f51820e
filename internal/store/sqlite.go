package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db     *sql.DB
	prefix string
}

// NewSQLite opens a SQLite database at the given path and configures WAL
// mode. prefix is prepended to every table name; non-production environments
// use "dev_" so experiments never touch live tables.
func NewSQLite(dsn, prefix string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db, prefix: prefix}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS {P}companies (
	id         TEXT PRIMARY KEY,
	tenant_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	industry   TEXT,
	address    TEXT,
	phone      TEXT,
	website    TEXT,
	source     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (tenant_id, name)
);

CREATE TABLE IF NOT EXISTS {P}leads (
	id               TEXT PRIMARY KEY,
	tenant_id        TEXT NOT NULL,
	company_id       TEXT NOT NULL REFERENCES {P}companies(id),
	contact_person   TEXT NOT NULL,
	contact_email    TEXT,
	role             TEXT,
	phone            TEXT,
	status           TEXT NOT NULL DEFAULT 'not_contacted',
	source           TEXT,
	tier             INTEGER,
	tier_reason      TEXT,
	warm_connections INTEGER,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (tenant_id, company_id, contact_person)
);

CREATE TABLE IF NOT EXISTS {P}tenant_preferences (
	tenant_id   TEXT PRIMARY KEY,
	preferences TEXT NOT NULL,
	updated_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_{P}companies_tenant ON {P}companies(tenant_id);
CREATE INDEX IF NOT EXISTS idx_{P}leads_tenant ON {P}leads(tenant_id);
CREATE INDEX IF NOT EXISTS idx_{P}leads_company ON {P}leads(company_id);
CREATE INDEX IF NOT EXISTS idx_{P}leads_status ON {P}leads(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, expandPrefix(sqliteMigration, s.prefix))
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) UpsertCompany(ctx context.Context, tenantID string, lead model.Lead) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM `+s.prefix+`companies WHERE tenant_id = ? AND name = ?`,
		tenantID, lead.CompanyName,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, eris.Wrapf(err, "sqlite: lookup company %s", lead.CompanyName)
	}

	id = uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+s.prefix+`companies (id, tenant_id, name, industry, address, phone, website, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, lead.CompanyName, lead.Industry, lead.Address, lead.Phone,
		lead.Website, string(lead.Source), time.Now().UTC(),
	)
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: insert company %s", lead.CompanyName)
	}
	return id, true, nil
}

func (s *SQLiteStore) LeadExists(ctx context.Context, tenantID, companyID, contactPerson string) (bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM `+s.prefix+`leads WHERE tenant_id = ? AND company_id = ? AND contact_person = ?`,
		tenantID, companyID, contactPerson,
	).Scan(&id)
	if err == nil {
		return true, nil
	}
	if err == sql.ErrNoRows {
		return false, nil
	}
	return false, eris.Wrapf(err, "sqlite: lookup lead %s", contactPerson)
}

func (s *SQLiteStore) InsertLead(ctx context.Context, tenantID, companyID string, lead model.Lead, class *model.Classification) (string, bool, error) {
	var existing string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM `+s.prefix+`leads WHERE tenant_id = ? AND company_id = ? AND contact_person = ?`,
		tenantID, companyID, lead.ContactPerson,
	).Scan(&existing)
	if err == nil {
		return existing, false, nil
	}
	if err != sql.ErrNoRows {
		return "", false, eris.Wrapf(err, "sqlite: lookup lead %s", lead.ContactPerson)
	}

	id := uuid.New().String()
	var tier, warm *int
	var tierReason *string
	if class != nil {
		tier = &class.Tier
		tierReason = &class.TierReason
		warm = &class.WarmConnections
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+s.prefix+`leads
		 (id, tenant_id, company_id, contact_person, contact_email, role, phone, status, source, tier, tier_reason, warm_connections, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, tenantID, companyID, lead.ContactPerson, lead.ContactEmail, lead.Role,
		lead.Phone, StatusNotContacted, string(lead.Source), tier, tierReason, warm,
		time.Now().UTC(),
	)
	if err != nil {
		return "", false, eris.Wrapf(err, "sqlite: insert lead %s", lead.ContactPerson)
	}
	return id, true, nil
}

func (s *SQLiteStore) GetPreferences(ctx context.Context, tenantID string) (*model.Preferences, error) {
	var prefsJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT preferences FROM `+s.prefix+`tenant_preferences WHERE tenant_id = ?`,
		tenantID,
	).Scan(&prefsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get preferences %s", tenantID)
	}

	var prefs model.Preferences
	if err := json.Unmarshal([]byte(prefsJSON), &prefs); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal preferences")
	}
	prefs.TenantID = tenantID
	return &prefs, nil
}

func (s *SQLiteStore) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	if prefs.TenantID == "" {
		return eris.New("sqlite: preferences missing tenant id")
	}

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal preferences")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO `+s.prefix+`tenant_preferences (tenant_id, preferences, updated_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT (tenant_id) DO UPDATE SET preferences = excluded.preferences, updated_at = excluded.updated_at`,
		prefs.TenantID, string(prefsJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: save preferences %s", prefs.TenantID)
}
