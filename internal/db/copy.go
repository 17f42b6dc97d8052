package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// CopyFrom bulk-inserts rows into a table using the PostgreSQL COPY protocol.
// Pass a pgx.Tx to make the copy part of a larger transaction.
func CopyFrom(ctx context.Context, dst Copier, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	n, err := dst.CopyFrom(ctx, pgx.Identifier{table}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, eris.Wrapf(err, "db: COPY INTO %s", table)
	}
	return n, nil
}

// CopyFromExact is CopyFrom that also fails when the server reports a row
// count different from len(rows).
func CopyFromExact(ctx context.Context, dst Copier, table string, columns []string, rows [][]any) error {
	n, err := CopyFrom(ctx, dst, table, columns, rows)
	if err != nil {
		return err
	}
	if n != int64(len(rows)) {
		return eris.Errorf("db: COPY INTO %s: copied %d of %d rows", table, n, len(rows))
	}
	return nil
}
