package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

// loadItemsJSONL reads items.jsonl into the items table inside one
// transaction: either every readable record loads or none does. Lines that
// are not JSON, do not decode into an Item, or carry no item_id are
// skipped and counted. Unknown fields are ignored. When an ID appears more
// than once the last line wins.
func loadItemsJSONL(db *sql.DB, path string) (int, error) {
	records, skipped, err := readJSONL(path)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return skipped, nil
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO items (" + itemColumns + ") VALUES (" + itemPlaceholders + ")")
	if err != nil {
		return 0, fmt.Errorf("preparing item insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		var item types.Item
		if err := json.Unmarshal(rec, &item); err != nil || item.ItemID == "" {
			skipped++
			continue
		}
		if _, err := stmt.Exec(itemArgs(&item)...); err != nil {
			return 0, fmt.Errorf("inserting item %s: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing load transaction: %w", err)
	}
	return skipped, nil
}
