// Package core coordinates snapshot ingestion, search and point mutations
// over the relational store, the bulk loader and the blob archive.
package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the relational access the service depends on.
// Implemented by database.Store.
type Store interface {
	DBTX

	// TruncateAll discards the current snapshot: all three tables emptied,
	// generated identifiers restarted, cascading through foreign keys.
	TruncateAll(ctx context.Context) error

	// WithTx runs fn on a dedicated connection, committing on nil and
	// rolling back on any error, releasing the connection on every path.
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// Loader streams one CSV payload into one table through the bulk-copy channel.
// Implemented by bulk.Loader.
type Loader interface {
	Load(ctx context.Context, buf []byte, table string, columns []string) (int64, error)
}

// Archiver is the durable object store for raw uploads.
// Implemented by archive.Archive.
type Archiver interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Entity is the top-level record; transactions and timeseries rows reference
// it. Its identifier is assigned by the ingested data, not generated. All
// attribute columns are nullable in the store (an empty CSV field loads as
// NULL), so they are pointers here: a nil field round-trips as JSON null.
type Entity struct {
	ID                int64    `json:"id"`
	Name              string   `json:"name"`
	CurrentPrice      *float64 `json:"current_price"`
	Sector            *string  `json:"sector"`
	Country           *string  `json:"country"`
	FoundingYear      *int     `json:"founding_year"`
	SharesOutstanding *int64   `json:"shares_outstanding"`
	MarketCap         *float64 `json:"market_cap"`
}

// EntityFields holds the mutable attributes of an entity. The identifier is
// supplied by the ingested data and is never rewritten. A field absent from
// the update body is nil and writes NULL.
type EntityFields struct {
	Name              string   `json:"name"`
	CurrentPrice      *float64 `json:"current_price"`
	Sector            *string  `json:"sector"`
	Country           *string  `json:"country"`
	FoundingYear      *int     `json:"founding_year"`
	SharesOutstanding *int64   `json:"shares_outstanding"`
	MarketCap         *float64 `json:"market_cap"`
}

// Transaction is one buy/sell record referencing exactly one entity.
// Attribute columns are nullable, same as Entity's.
type Transaction struct {
	ID              int64      `json:"id"`
	EntityID        int64      `json:"entity_id"`
	TransactionDate *time.Time `json:"transaction_date"`
	BuyPrice        *float64   `json:"buy_price"`
	SellPrice       *float64   `json:"sell_price"`
	Quantity        *int64     `json:"quantity"`
	TransactionType *string    `json:"transaction_type"`
	TraderID        *string    `json:"trader_id"`
	CommissionFee   *float64   `json:"commission_fee"`
	Currency        *string    `json:"currency"`
}

// TimeSeriesRecord is one daily price row referencing exactly one entity.
// Its identifier is a store-generated surrogate and carries no meaning.
type TimeSeriesRecord struct {
	ID         int64      `json:"id"`
	EntityID   int64      `json:"entity_id"`
	Date       *time.Time `json:"date"`
	OpenPrice  *float64   `json:"open_price"`
	ClosePrice *float64   `json:"close_price"`
	HighPrice  *float64   `json:"high_price"`
	LowPrice   *float64   `json:"low_price"`
	Volume     *int64     `json:"volume"`
}

// EntityResult is a matched entity with its full ordered dependent rows.
// Dependent slices are empty, never nil, when an entity has no dependents.
type EntityResult struct {
	Entity
	Transactions []Transaction      `json:"transactions"`
	Timeseries   []TimeSeriesRecord `json:"timeseries"`
}

// Payload is one named CSV document exactly as uploaded.
type Payload struct {
	Name string
	Data []byte
}

// IngestFiles carries the three payloads of one ingestion request.
type IngestFiles struct {
	Entities     Payload
	Transactions Payload
	Timeseries   Payload
}

// validate reports ErrMissingInput unless all three payloads are present.
func (f IngestFiles) validate() error {
	if len(f.Entities.Data) == 0 || len(f.Transactions.Data) == 0 || len(f.Timeseries.Data) == 0 {
		return ErrMissingInput
	}
	return nil
}

// payload returns the payload destined for the given table.
func (f IngestFiles) payload(table string) Payload {
	switch table {
	case tableEntities:
		return f.Entities
	case tableTransactions:
		return f.Transactions
	case tableTimeseries:
		return f.Timeseries
	}
	return Payload{}
}

// IngestResult is the timing and row-count metadata of a completed ingestion.
type IngestResult struct {
	IngestID        string
	ArchiveDuration time.Duration
	LoadDuration    time.Duration
	RowsLoaded      map[string]int64
}

const (
	tableEntities     = "entities"
	tableTransactions = "transactions"
	tableTimeseries   = "timeseries"
)

// TableSpec binds a table to the ordered column list its CSV fields map onto.
type TableSpec struct {
	Table   string
	Columns []string
}

// loadOrder is processed strictly in sequence. Both dependent tables carry a
// foreign key into entities validated at insert time, so entities must load
// first; the order is declared here structurally rather than implied by call
// sites.
var loadOrder = []TableSpec{
	{
		Table:   tableEntities,
		Columns: []string{"id", "name", "current_price", "sector", "country", "founding_year", "shares_outstanding", "market_cap"},
	},
	{
		Table:   tableTransactions,
		Columns: []string{"id", "entity_id", "transaction_date", "buy_price", "sell_price", "quantity", "transaction_type", "trader_id", "commission_fee", "currency"},
	},
	{
		// No id column: timeseries identifiers are surrogate-generated.
		Table:   tableTimeseries,
		Columns: []string{"entity_id", "date", "open_price", "close_price", "high_price", "low_price", "volume"},
	},
}
