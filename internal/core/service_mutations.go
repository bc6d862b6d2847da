package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpdateEntity rewrites all mutable attributes of one entity inside a single
// transaction. Returns ErrNotFound when no row matches the identifier; on any
// statement error the transaction rolls back, leaving prior data untouched.
func (s *Service) UpdateEntity(ctx context.Context, id int64, fields EntityFields) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE entities
			 SET name = $2, current_price = $3, sector = $4, country = $5,
			     founding_year = $6, shares_outstanding = $7, market_cap = $8
			 WHERE id = $1`,
			id, fields.Name, fields.CurrentPrice, fields.Sector, fields.Country,
			fields.FoundingYear, fields.SharesOutstanding, fields.MarketCap,
		)
		if err != nil {
			return fmt.Errorf("update entity %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteEntity deletes one entity inside a single transaction. The schema's
// cascade constraint removes all its transactions and time-series rows
// atomically within the same transaction. Returns ErrNotFound when no row
// matches; rollback on failure leaves the entity and all dependents intact.
func (s *Service) DeleteEntity(ctx context.Context, id int64) error {
	return s.db.WithTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM entities WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete entity %d: %w", id, err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}
