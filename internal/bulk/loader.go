// Package bulk loads raw CSV buffers into tables through PostgreSQL's COPY
// protocol. Streaming the payload through a single COPY channel is orders of
// magnitude faster than row-at-a-time inserts and never materializes row
// objects on the way in.
package bulk

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Loader streams delimited-text payloads into named tables.
type Loader struct {
	pool *pgxpool.Pool
}

// New creates a Loader over the shared connection pool. Each Load acquires
// its own dedicated connection for the duration of the copy.
func New(pool *pgxpool.Pool) *Loader {
	return &Loader{pool: pool}
}

// Load streams buf into table, mapping CSV fields positionally onto columns.
// The payload's first line is a header and is skipped by the server-side
// loader. On any mid-stream error the whole copy is aborted and no rows from
// this call persist. Returns the number of rows loaded.
//
// An empty payload loads zero rows without error, so Load must not be relied
// on to detect absent input.
func (l *Loader) Load(ctx context.Context, buf []byte, table string, columns []string) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("copy into %s: no columns given", table)
	}

	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Conn().PgConn().CopyFrom(ctx, bytes.NewReader(clean(buf)), copyStatement(table, columns))
	if err != nil {
		return 0, fmt.Errorf("copy into %s: %w", table, err)
	}
	return tag.RowsAffected(), nil
}

// copyStatement builds the COPY command for a table and an explicit ordered
// column list. Identifiers are quoted; the column order must match the CSV's
// field order, not necessarily the table's declared order.
func copyStatement(table string, columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = quoteIdentifier(c)
	}
	return fmt.Sprintf("COPY %s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		quoteIdentifier(table), strings.Join(quoted, ", "))
}

// quoteIdentifier makes an identifier safe for embedding in the COPY command.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
