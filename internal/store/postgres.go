package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/db"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	prefix  string
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for the
// hot path of batch persistence. Keys double as statement names.
var preparedStatements = map[string]string{
	"get_company": `SELECT id FROM {P}companies WHERE tenant_id = $1 AND name = $2`,
	"insert_company": `INSERT INTO {P}companies (id, tenant_id, name, industry, address, phone, website, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
	"get_lead": `SELECT id FROM {P}leads WHERE tenant_id = $1 AND company_id = $2 AND contact_person = $3`,
	"insert_lead": `INSERT INTO {P}leads
		(id, tenant_id, company_id, contact_person, contact_email, role, phone, status, source, tier, tier_reason, warm_connections, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
	"get_preferences": `SELECT preferences FROM {P}tenant_preferences WHERE tenant_id = $1`,
	"save_preferences": `INSERT INTO {P}tenant_preferences (tenant_id, preferences, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id) DO UPDATE SET preferences = $2, updated_at = $3`,
}

// expandPrefix substitutes the table prefix placeholder in SQL text.
func expandPrefix(sql, prefix string) string {
	return strings.ReplaceAll(sql, "{P}", prefix)
}

// NewPostgres creates a PostgresStore with a connection pool. prefix is
// prepended to every table name.
func NewPostgres(ctx context.Context, connString, prefix string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare the batch persistence statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, expandPrefix(sql, prefix)); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, prefix: prefix, closeFn: pool.Close}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresWithPool(pool db.Pool, prefix string) *PostgresStore {
	return &PostgresStore{pool: pool, prefix: prefix}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS {P}companies (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	tenant_id  TEXT NOT NULL,
	name       TEXT NOT NULL,
	industry   TEXT,
	address    TEXT,
	phone      TEXT,
	website    TEXT,
	source     TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, name)
);

CREATE TABLE IF NOT EXISTS {P}leads (
	id               TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
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
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (tenant_id, company_id, contact_person)
);

CREATE TABLE IF NOT EXISTS {P}tenant_preferences (
	tenant_id   TEXT PRIMARY KEY,
	preferences JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_{P}companies_tenant ON {P}companies(tenant_id);
CREATE INDEX IF NOT EXISTS idx_{P}leads_tenant ON {P}leads(tenant_id);
CREATE INDEX IF NOT EXISTS idx_{P}leads_company ON {P}leads(company_id);
CREATE INDEX IF NOT EXISTS idx_{P}leads_status ON {P}leads(status);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, expandPrefix(postgresMigration, s.prefix))
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) UpsertCompany(ctx context.Context, tenantID string, lead model.Lead) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		expandPrefix(`SELECT id FROM {P}companies WHERE tenant_id = $1 AND name = $2`, s.prefix),
		tenantID, lead.CompanyName,
	).Scan(&id)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, eris.Wrapf(err, "postgres: lookup company %s", lead.CompanyName)
	}

	id = uuid.New().String()
	_, err = s.pool.Exec(ctx,
		expandPrefix(`INSERT INTO {P}companies (id, tenant_id, name, industry, address, phone, website, source, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`, s.prefix),
		id, tenantID, lead.CompanyName, lead.Industry, lead.Address, lead.Phone,
		lead.Website, string(lead.Source), time.Now().UTC(),
	)
	if err != nil {
		return "", false, eris.Wrapf(err, "postgres: insert company %s", lead.CompanyName)
	}
	return id, true, nil
}

func (s *PostgresStore) LeadExists(ctx context.Context, tenantID, companyID, contactPerson string) (bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		expandPrefix(`SELECT id FROM {P}leads WHERE tenant_id = $1 AND company_id = $2 AND contact_person = $3`, s.prefix),
		tenantID, companyID, contactPerson,
	).Scan(&id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, eris.Wrapf(err, "postgres: lookup lead %s", contactPerson)
}

func (s *PostgresStore) InsertLead(ctx context.Context, tenantID, companyID string, lead model.Lead, class *model.Classification) (string, bool, error) {
	var existing string
	err := s.pool.QueryRow(ctx,
		expandPrefix(`SELECT id FROM {P}leads WHERE tenant_id = $1 AND company_id = $2 AND contact_person = $3`, s.prefix),
		tenantID, companyID, lead.ContactPerson,
	).Scan(&existing)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, eris.Wrapf(err, "postgres: lookup lead %s", lead.ContactPerson)
	}

	id := uuid.New().String()
	var tier, warm *int
	var tierReason *string
	if class != nil {
		tier = &class.Tier
		tierReason = &class.TierReason
		warm = &class.WarmConnections
	}

	_, err = s.pool.Exec(ctx,
		expandPrefix(`INSERT INTO {P}leads
		 (id, tenant_id, company_id, contact_person, contact_email, role, phone, status, source, tier, tier_reason, warm_connections, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, s.prefix),
		id, tenantID, companyID, lead.ContactPerson, lead.ContactEmail, lead.Role,
		lead.Phone, StatusNotContacted, string(lead.Source), tier, tierReason, warm,
		time.Now().UTC(),
	)
	if err != nil {
		return "", false, eris.Wrapf(err, "postgres: insert lead %s", lead.ContactPerson)
	}
	return id, true, nil
}

func (s *PostgresStore) GetPreferences(ctx context.Context, tenantID string) (*model.Preferences, error) {
	var prefsJSON []byte
	err := s.pool.QueryRow(ctx,
		expandPrefix(`SELECT preferences FROM {P}tenant_preferences WHERE tenant_id = $1`, s.prefix),
		tenantID,
	).Scan(&prefsJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get preferences %s", tenantID)
	}

	var prefs model.Preferences
	if err := json.Unmarshal(prefsJSON, &prefs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal preferences")
	}
	prefs.TenantID = tenantID
	return &prefs, nil
}

func (s *PostgresStore) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	if prefs.TenantID == "" {
		return eris.New("postgres: preferences missing tenant id")
	}

	prefsJSON, err := json.Marshal(prefs)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal preferences")
	}

	_, err = s.pool.Exec(ctx,
		expandPrefix(`INSERT INTO {P}tenant_preferences (tenant_id, preferences, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (tenant_id) DO UPDATE SET preferences = $2, updated_at = $3`, s.prefix),
		prefs.TenantID, prefsJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: save preferences %s", prefs.TenantID)
}
