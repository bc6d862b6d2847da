package database

// The three tables form one snapshot: transactions and timeseries each
// reference entities and are removed with their entity via ON DELETE CASCADE.
// Entity and transaction identifiers come from the ingested data; timeseries
// rows get a surrogate id restarted on every snapshot replace.
var schemaDDL = []string{
	`CREATE TABLE IF NOT EXISTS entities (
		id                 INTEGER PRIMARY KEY,
		name               TEXT,
		current_price      NUMERIC(14,2),
		sector             TEXT,
		country            TEXT,
		founding_year      INTEGER,
		shares_outstanding BIGINT,
		market_cap         NUMERIC(18,2)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id               INTEGER PRIMARY KEY,
		entity_id        INTEGER REFERENCES entities(id) ON DELETE CASCADE,
		transaction_date DATE,
		buy_price        NUMERIC(14,2),
		sell_price       NUMERIC(14,2),
		quantity         BIGINT,
		transaction_type TEXT,
		trader_id        TEXT,
		commission_fee   NUMERIC(14,2),
		currency         TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS timeseries (
		id          BIGSERIAL PRIMARY KEY,
		entity_id   INTEGER REFERENCES entities(id) ON DELETE CASCADE,
		date        DATE,
		open_price  NUMERIC(14,2),
		close_price NUMERIC(14,2),
		high_price  NUMERIC(14,2),
		low_price   NUMERIC(14,2),
		volume      BIGINT
	)`,
}

const truncateAllSQL = `TRUNCATE entities, transactions, timeseries RESTART IDENTITY CASCADE`
