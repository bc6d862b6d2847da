package core

import (
	"context"
	"fmt"
)

const entityColumns = `id, name, current_price, sector, country, founding_year, shares_outstanding, market_cap`

// Search returns the entities whose name contains query as a case-insensitive
// substring, each with its full transaction and time-series history ordered by
// date ascending. An empty query matches every entity.
//
// Dependent rows are fetched sequentially per match, two lookups each. That
// keeps per-request store concurrency at one at the cost of latency linear in
// the match count, which is acceptable at this dataset size.
func (s *Service) Search(ctx context.Context, query string) ([]EntityResult, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+entityColumns+` FROM entities WHERE name ILIKE $1 ORDER BY name, id`,
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search entities: %w", err)
	}
	defer rows.Close()

	results := []EntityResult{}
	for rows.Next() {
		var e Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.CurrentPrice, &e.Sector, &e.Country,
			&e.FoundingYear, &e.SharesOutstanding, &e.MarketCap); err != nil {
			return nil, fmt.Errorf("scan entity: %w", err)
		}
		results = append(results, EntityResult{Entity: e})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("search entities: %w", err)
	}
	rows.Close()

	for i := range results {
		txns, err := s.entityTransactions(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		series, err := s.entityTimeseries(ctx, results[i].ID)
		if err != nil {
			return nil, err
		}
		results[i].Transactions = txns
		results[i].Timeseries = series
	}

	return results, nil
}

// entityTransactions returns an entity's transactions ordered by date
// ascending. Entities with no transactions get an empty slice.
func (s *Service) entityTransactions(ctx context.Context, entityID int64) ([]Transaction, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, entity_id, transaction_date, buy_price, sell_price, quantity,
		        transaction_type, trader_id, commission_fee, currency
		 FROM transactions WHERE entity_id = $1 ORDER BY transaction_date, id`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	out := []Transaction{}
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.EntityID, &t.TransactionDate, &t.BuyPrice, &t.SellPrice,
			&t.Quantity, &t.TransactionType, &t.TraderID, &t.CommissionFee, &t.Currency); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// entityTimeseries returns an entity's time-series rows ordered by date
// ascending. Entities with no rows get an empty slice.
func (s *Service) entityTimeseries(ctx context.Context, entityID int64) ([]TimeSeriesRecord, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, entity_id, date, open_price, close_price, high_price, low_price, volume
		 FROM timeseries WHERE entity_id = $1 ORDER BY date, id`,
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch timeseries for entity %d: %w", entityID, err)
	}
	defer rows.Close()

	out := []TimeSeriesRecord{}
	for rows.Next() {
		var r TimeSeriesRecord
		if err := rows.Scan(&r.ID, &r.EntityID, &r.Date, &r.OpenPrice, &r.ClosePrice,
			&r.HighPrice, &r.LowPrice, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan timeseries row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
