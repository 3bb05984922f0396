// Package sqlite implements the SQLite storage backend for pantry items.
// SQLite is the query engine; items.jsonl in the data directory is the
// source of truth and is reloaded into a fresh database on every Attach.
package sqlite

// File names inside the data directory.
const (
	itemsJSONL = "items.jsonl"
	dbFileName = "pantry.db"
)

// Timestamps are stored as fixed-width UTC text so that string order is
// chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const createItems = `CREATE TABLE items (
    item_id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    expiration_date TEXT NOT NULL,
    original_expiration_date TEXT NOT NULL,
    opened_date TEXT,
    category TEXT NOT NULL,
    storage_location TEXT NOT NULL,
    is_opened INTEGER NOT NULL,
    is_partially_consumed INTEGER NOT NULL,
    remaining_quantity REAL,
    last_consumed_date TEXT,
    notes TEXT,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`

const (
	idxItemsExpiration = `CREATE INDEX idx_items_expiration ON items(expiration_date, name);`
	idxItemsCategory   = `CREATE INDEX idx_items_category ON items(lower(category));`
	idxItemsLocation   = `CREATE INDEX idx_items_location ON items(lower(storage_location));`
	idxItemsOpened     = `CREATE INDEX idx_items_opened ON items(is_opened);`
)

// pragmas are applied once per connection before the schema.
var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// schemaDDL lists all statements that build a fresh database.
var schemaDDL = []string{
	createItems,
	idxItemsExpiration,
	idxItemsCategory,
	idxItemsLocation,
	idxItemsOpened,
}

// itemColumns is the column order used by every SELECT and INSERT.
const itemColumns = `item_id, name, expiration_date, original_expiration_date, opened_date,
    category, storage_location, is_opened, is_partially_consumed, remaining_quantity,
    last_consumed_date, notes, created_at, updated_at`
