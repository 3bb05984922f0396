package types

import (
	"errors"
	"time"
)

// ItemRepository stores plain Item values. It knows nothing about the
// lifecycle rules; callers transition an item with Lifecycle and then Save
// it.
type ItemRepository interface {
	// Save inserts the item when ItemID is empty, generating a UUID v7 and
	// writing it back to item.ItemID, or replaces the stored item otherwise.
	// Returns the ID used. Returns ErrInvalidName if the name is empty.
	Save(item *Item) (string, error)

	// Load returns the item with the given ID.
	// Returns ErrNotFound if no item exists with that ID.
	Load(id string) (*Item, error)

	// Delete removes the item with the given ID.
	// Returns ErrNotFound if no item exists with that ID.
	Delete(id string) error

	// Query returns the items matching filter ordered by expiration date,
	// then name. A zero Filter returns every item.
	Query(filter Filter) ([]*Item, error)
}

// Filter narrows a Query. Zero-valued fields do not filter.
type Filter struct {
	Category        string     // Case-insensitive exact match.
	StorageLocation string     // Case-insensitive exact match.
	Opened          *bool      // Match IsOpened.
	ExpiringBefore  *time.Time // ExpirationDate strictly before this instant.
	NameContains    string     // Case-insensitive substring.
	Limit           int        // 0 means no limit.
	Offset          int
}

// Validate rejects negative paging values.
func (f Filter) Validate() error {
	if f.Limit < 0 || f.Offset < 0 {
		return ErrInvalidFilter
	}
	return nil
}

// Pantry is a storage backend for items. Callers attach it to a data
// directory, use Items, and detach when done.
type Pantry interface {
	// Attach connects to the backend described by config. Creates DataDir if
	// it does not exist. Returns ErrAlreadyAttached if already attached.
	Attach(config Config) error

	// Detach flushes pending writes and releases resources. Idempotent.
	// After Detach, Items returns ErrPantryDetached.
	Detach() error

	// Items returns the item repository.
	Items() (ItemRepository, error)
}

// Pantry lifecycle errors.
var (
	ErrPantryDetached  = errors.New("pantry is detached")
	ErrAlreadyAttached = errors.New("pantry is already attached")
)
