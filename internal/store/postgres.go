package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/po-matcher/internal/db"
	"github.com/sells-group/po-matcher/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const listOrdersStmt = "list_orders"

const listOrdersSQL = `SELECT id, po_item, catalog_item_id, catalog_item_description, created_at FROM orders ORDER BY created_at DESC, id DESC`

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	listOrdersStmt: listOrdersSQL,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
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
	pgxCfg.AfterConnect = PrepareStatements

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// newPostgresWithPool wraps an existing pool (used by tests with pgxmock).
func newPostgresWithPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS orders (
	id                       BIGSERIAL PRIMARY KEY,
	po_item                  TEXT NOT NULL,
	catalog_item_id          TEXT NOT NULL,
	catalog_item_description TEXT NOT NULL DEFAULT '',
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC, id DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// PrepareStatements prepares frequently-used statements on a new connection.
func PrepareStatements(ctx context.Context, conn *pgx.Conn) error {
	for name, sql := range preparedStatements {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return eris.Wrapf(err, "postgres: prepare %s", name)
		}
	}
	return nil
}

func (s *PostgresStore) ConfirmMatches(ctx context.Context, matches []model.ConfirmedMatch) error {
	if len(matches) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, []any{m.POItem, m.CatalogItemID, m.CatalogItemDescription})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return persistErr("confirm matches", eris.Wrap(err, "postgres: begin tx"))
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if err := db.CopyFromExact(ctx, tx, "orders", orderColumns, rows); err != nil {
		return persistErr("confirm matches", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return persistErr("confirm matches", eris.Wrap(err, "postgres: commit"))
	}
	committed = true
	return nil
}

func (s *PostgresStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	// Prepared on every connection by PrepareStatements.
	rows, err := s.pool.Query(ctx, listOrdersStmt)
	if err != nil {
		return nil, persistErr("list orders", eris.Wrap(err, "postgres: query orders"))
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.POItem, &o.CatalogItemID, &o.CatalogItemDescription, &o.CreatedAt); err != nil {
			return nil, persistErr("list orders", eris.Wrap(err, "postgres: scan order"))
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list orders", eris.Wrap(err, "postgres: iterate orders"))
	}
	return orders, nil
}
