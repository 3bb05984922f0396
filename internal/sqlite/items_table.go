package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// Compile-time interface check.
var _ types.ItemRepository = (*itemsTable)(nil)

const itemPlaceholders = "?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?"

// itemsTable implements types.ItemRepository. Every write goes to SQLite
// first and then to items.jsonl according to the sync strategy.
type itemsTable struct {
	backend *Backend
}

// Save inserts or replaces an item. An empty ItemID gets a fresh UUID v7,
// written back to the item once the write has succeeded. Lifecycle fields are
// stored as given, but a NaN or infinite remaining quantity cannot be stored
// and returns ErrInvalidData.
func (it *itemsTable) Save(item *types.Item) (string, error) {
	if item == nil {
		return "", types.ErrInvalidData
	}
	if strings.TrimSpace(item.Name) == "" {
		return "", types.ErrInvalidName
	}
	if q := item.RemainingQuantity; q != nil && (math.IsNaN(*q) || math.IsInf(*q, 0)) {
		return "", types.ErrInvalidData
	}

	it.backend.mu.Lock()
	defer it.backend.mu.Unlock()

	if !it.backend.attached {
		return "", types.ErrPantryDetached
	}

	row := *item
	if row.ItemID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating UUID v7: %w", err)
		}
		row.ItemID = id.String()
	}

	err := it.write("save", row.ItemID, func(tx *sql.Tx) error {
		_, err := tx.Exec(
			"INSERT OR REPLACE INTO items ("+itemColumns+") VALUES ("+itemPlaceholders+")",
			itemArgs(&row)...,
		)
		if err != nil {
			return fmt.Errorf("persisting item %s: %w", row.ItemID, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	item.ItemID = row.ItemID
	return row.ItemID, nil
}

// Load returns the item with the given ID.
func (it *itemsTable) Load(id string) (*types.Item, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}

	it.backend.mu.RLock()
	defer it.backend.mu.RUnlock()

	if !it.backend.attached {
		return nil, types.ErrPantryDetached
	}

	row := it.backend.db.QueryRow("SELECT "+itemColumns+" FROM items WHERE item_id = ?", id)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("getting item %s: %w", id, err)
	}
	return item, nil
}

// Delete removes the item with the given ID.
func (it *itemsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}

	it.backend.mu.Lock()
	defer it.backend.mu.Unlock()

	if !it.backend.attached {
		return types.ErrPantryDetached
	}

	return it.write("delete", id, func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM items WHERE item_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting item %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting item %s: %w", id, err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// write runs change in a transaction. Under the immediate strategy
// items.jsonl is rewritten from inside the transaction, and the transaction
// commits only when that succeeds; other strategies queue the rewrite after
// commit. The caller must hold backend.mu.
func (it *itemsTable) write(operation, itemID string, change func(tx *sql.Tx) error) error {
	b := it.backend
	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning %s %s: %w", operation, itemID, err)
	}
	defer tx.Rollback()

	if err := change(tx); err != nil {
		return err
	}
	immediate := b.shouldPersistImmediately()
	if immediate {
		if err := it.persistJSONLFrom(tx); err != nil {
			return fmt.Errorf("persisting %s: %w", itemsJSONL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s %s: %w", operation, itemID, err)
	}
	if !immediate {
		b.queueWrite(operation, itemID, it.persistJSONL)
	}
	return nil
}

// Query returns items matching filter, soonest expiration first.
func (it *itemsTable) Query(filter types.Filter) ([]*types.Item, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	it.backend.mu.RLock()
	defer it.backend.mu.RUnlock()

	if !it.backend.attached {
		return nil, types.ErrPantryDetached
	}

	query, args := buildItemQuery(filter)
	rows, err := it.backend.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	var items []*types.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return items, nil
}

// buildItemQuery turns a Filter into SQL and its arguments.
func buildItemQuery(filter types.Filter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Category != "" {
		conditions = append(conditions, "lower(category) = lower(?)")
		args = append(args, filter.Category)
	}
	if filter.StorageLocation != "" {
		conditions = append(conditions, "lower(storage_location) = lower(?)")
		args = append(args, filter.StorageLocation)
	}
	if filter.Opened != nil {
		conditions = append(conditions, "is_opened = ?")
		args = append(args, boolToInt(*filter.Opened))
	}
	if filter.ExpiringBefore != nil {
		conditions = append(conditions, "expiration_date < ?")
		args = append(args, formatTime(*filter.ExpiringBefore))
	}
	if filter.NameContains != "" {
		conditions = append(conditions, "instr(lower(name), lower(?)) > 0")
		args = append(args, filter.NameContains)
	}

	query := "SELECT " + itemColumns + " FROM items"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY expiration_date ASC, name ASC, item_id ASC"

	// SQLite needs a LIMIT clause for OFFSET; -1 means unbounded.
	if filter.Limit > 0 || filter.Offset > 0 {
		limit := -1
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, filter.Offset)
	}
	return query, args
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// persistJSONL rewrites items.jsonl from the items table in creation order.
// The caller must hold backend.mu.
func (it *itemsTable) persistJSONL() error {
	return it.persistJSONLFrom(it.backend.db)
}

func (it *itemsTable) persistJSONLFrom(q querier) error {
	rows, err := q.Query("SELECT " + itemColumns + " FROM items ORDER BY created_at ASC, item_id ASC")
	if err != nil {
		return fmt.Errorf("reading items: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return fmt.Errorf("scanning item: %w", err)
		}
		rec, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("encoding item %s: %w", item.ItemID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating items: %w", err)
	}

	return writeJSONL(filepath.Join(it.backend.dataDir, itemsJSONL), records)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanItem hydrates one row selected with itemColumns.
func scanItem(row rowScanner) (*types.Item, error) {
	var (
		item                                   types.Item
		expiration, original, created, updated string
		opened, lastConsumed, notes            sql.NullString
		remaining                              sql.NullFloat64
		isOpened, isPartial                    int
	)
	err := row.Scan(
		&item.ItemID, &item.Name, &expiration, &original, &opened,
		&item.Category, &item.StorageLocation, &isOpened, &isPartial, &remaining,
		&lastConsumed, &notes, &created, &updated,
	)
	if err != nil {
		return nil, err
	}

	if item.ExpirationDate, err = parseTime(expiration); err != nil {
		return nil, err
	}
	if item.OriginalExpirationDate, err = parseTime(original); err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, err
	}
	if item.OpenedDate, err = parseNullTime(opened); err != nil {
		return nil, err
	}
	if item.LastConsumedDate, err = parseNullTime(lastConsumed); err != nil {
		return nil, err
	}
	if remaining.Valid {
		q := remaining.Float64
		item.RemainingQuantity = &q
	}
	if notes.Valid {
		n := notes.String
		item.Notes = &n
	}
	item.IsOpened = isOpened != 0
	item.IsPartiallyConsumed = isPartial != 0
	return &item, nil
}

// itemArgs returns the values for itemColumns in order.
func itemArgs(item *types.Item) []any {
	return []any{
		item.ItemID,
		item.Name,
		formatTime(item.ExpirationDate),
		formatTime(item.OriginalExpirationDate),
		formatNullTime(item.OpenedDate),
		item.Category,
		item.StorageLocation,
		boolToInt(item.IsOpened),
		boolToInt(item.IsPartiallyConsumed),
		nullFloat(item.RemainingQuantity),
		formatNullTime(item.LastConsumedDate),
		nullString(item.Notes),
		formatTime(item.CreatedAt),
		formatTime(item.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
