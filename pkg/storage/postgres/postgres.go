package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/enhancv/go-subscriptions/pkg/billing"
	"github.com/enhancv/go-subscriptions/pkg/customer"
	"github.com/enhancv/go-subscriptions/pkg/observability"
	"github.com/enhancv/go-subscriptions/pkg/storage"
)

// Store implements storage.CustomerStore on top of PostgreSQL. Customer
// aggregates live in a JSONB document column, written whole on every Put so
// readers never observe a half-applied edit.
type Store struct {
	db       *sql.DB
	registry *customer.Registry
	config   storage.Config
	metrics  *observability.Metrics
}

// NewStore connects to PostgreSQL and returns a document store. The
// registry decodes the tagged payment method, transaction and discount
// variants inside customer documents.
func NewStore(config storage.Config, registry *customer.Registry, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("postgres", config.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(config.PostgresMaxConns)
	db.SetMaxIdleConns(config.PostgresMinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), config.PostgresTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Store{db: db, registry: registry, config: config, metrics: metrics}, nil
}

// recordStoreOp counts a completed store operation. Not-found results are
// normal outcomes, not failures.
func recordStoreOp(m *observability.Metrics, op string, err error) {
	if m == nil {
		return
	}
	m.StoreOperationsTotal.WithLabelValues(op).Inc()
	if err != nil && !errors.Is(err, storage.ErrNotFound) && !errors.Is(err, billing.ErrCouponNotFound) {
		m.StoreErrorsTotal.WithLabelValues(op).Inc()
	}
}

// NewStoreWithDB wraps an existing connection, used by tests.
func NewStoreWithDB(db *sql.DB, registry *customer.Registry) *Store {
	return &Store{db: db, registry: registry, config: storage.DefaultConfig()}
}

// Coupons returns the coupon store sharing this connection.
func (s *Store) Coupons() *CouponStore {
	return &CouponStore{db: s.db, metrics: s.metrics}
}

// InitSchema creates the tables when they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS customers (
			entity_id    TEXT PRIMARY KEY,
			processor_id TEXT,
			email        TEXT NOT NULL,
			document     JSONB NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS customers_processor_id_idx ON customers (processor_id);

		CREATE TABLE IF NOT EXISTS coupons (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			amount_off     NUMERIC(12,2) NOT NULL DEFAULT 0,
			percent_off    NUMERIC(5,2) NOT NULL DEFAULT 0,
			used_count     INTEGER NOT NULL DEFAULT 0,
			used_count_max INTEGER NOT NULL DEFAULT 0,
			start_at       TIMESTAMPTZ,
			expire_at      TIMESTAMPTZ
		);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Get loads a customer aggregate by entity id.
func (s *Store) Get(ctx context.Context, entityID string) (_ *customer.Customer, err error) {
	defer func() { recordStoreOp(s.metrics, "get", err) }()

	query := `SELECT document FROM customers WHERE entity_id = $1`

	var document []byte
	err = s.db.QueryRowContext(ctx, query, entityID).Scan(&document)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	c, err := s.registry.DecodeCustomer(document)
	if err != nil {
		return nil, fmt.Errorf("failed to decode customer document: %w", err)
	}
	return c, nil
}

// Put upserts the whole aggregate in one write.
func (s *Store) Put(ctx context.Context, c *customer.Customer) (err error) {
	defer func() { recordStoreOp(s.metrics, "put", err) }()

	document, err := s.registry.EncodeCustomer(c)
	if err != nil {
		return fmt.Errorf("failed to encode customer document: %w", err)
	}

	query := `
		INSERT INTO customers (entity_id, processor_id, email, document)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (entity_id) DO UPDATE
		SET processor_id = EXCLUDED.processor_id,
		    email        = EXCLUDED.email,
		    document     = EXCLUDED.document,
		    updated_at   = now()
	`
	if _, err := s.db.ExecContext(ctx, query, c.EntityID, c.Processor.ID, c.Email, document); err != nil {
		return fmt.Errorf("failed to put customer: %w", err)
	}
	return nil
}

// Delete removes a customer.
func (s *Store) Delete(ctx context.Context, entityID string) (err error) {
	defer func() { recordStoreOp(s.metrics, "delete", err) }()

	result, err := s.db.ExecContext(ctx, `DELETE FROM customers WHERE entity_id = $1`, entityID)
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// List returns customer entity ids, newest first.
func (s *Store) List(ctx context.Context, limit, offset int) (_ []string, _ int64, err error) {
	defer func() { recordStoreOp(s.metrics, "list", err) }()

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}

	query := `
		SELECT entity_id FROM customers
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0, limit)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, 0, fmt.Errorf("failed to scan customer id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return ids, total, nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres unhealthy: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
