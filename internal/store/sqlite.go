package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/po-matcher/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
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
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS orders (
	id                       INTEGER PRIMARY KEY AUTOINCREMENT,
	po_item                  TEXT NOT NULL,
	catalog_item_id          TEXT NOT NULL,
	catalog_item_description TEXT NOT NULL DEFAULT '',
	created_at               DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.db.PingContext(ctx), "sqlite: ping")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ConfirmMatches(ctx context.Context, matches []model.ConfirmedMatch) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("confirm matches", eris.Wrap(err, "sqlite: begin tx"))
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO orders (po_item, catalog_item_id, catalog_item_description, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return persistErr("confirm matches", eris.Wrap(err, "sqlite: prepare insert"))
	}
	defer stmt.Close() //nolint:errcheck

	// One timestamp per confirmation; ids break the tie when listing.
	now := time.Now().UTC()
	for i, m := range matches {
		if _, err := stmt.ExecContext(ctx, m.POItem, m.CatalogItemID, m.CatalogItemDescription, now); err != nil {
			return persistErr("confirm matches", eris.Wrapf(err, "sqlite: insert order %d", i))
		}
	}

	if err := tx.Commit(); err != nil {
		return persistErr("confirm matches", eris.Wrap(err, "sqlite: commit"))
	}
	return nil
}

func (s *SQLiteStore) ListOrders(ctx context.Context) ([]model.Order, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, po_item, catalog_item_id, catalog_item_description, created_at FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, persistErr("list orders", eris.Wrap(err, "sqlite: query orders"))
	}
	defer rows.Close() //nolint:errcheck

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.POItem, &o.CatalogItemID, &o.CatalogItemDescription, &o.CreatedAt); err != nil {
			return nil, persistErr("list orders", eris.Wrap(err, "sqlite: scan order"))
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, persistErr("list orders", eris.Wrap(err, "sqlite: iterate orders"))
	}
	return orders, nil
}
