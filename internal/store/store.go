package store

import (
	"context"

	"github.com/sells-group/po-matcher/internal/model"
)

// Store defines the persistence interface for confirmed orders.
type Store interface {
	// ConfirmMatches inserts one order per match in a single transaction:
	// either every row is committed or none is. An empty slice is a no-op.
	ConfirmMatches(ctx context.Context, matches []model.ConfirmedMatch) error
	// ListOrders returns all orders, newest first (ties: higher id first).
	ListOrders(ctx context.Context) ([]model.Order, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// PersistenceError reports a failed store operation. Any transaction the
// operation opened has been rolled back.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return "store: " + e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func persistErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// orderColumns is the insert column list shared by both drivers.
var orderColumns = []string{"po_item", "catalog_item_id", "catalog_item_description"}
