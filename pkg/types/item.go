package types

import (
	"strings"
	"time"
)

// Item defaults applied by NewItem when the caller passes no override.
const (
	DefaultCategory        = "Uncategorized"
	DefaultStorageLocation = "Unspecified"
)

// Item states. The state is derived from IsOpened; it is not stored.
const (
	ItemStateUnopened = "unopened"
	ItemStateOpened   = "opened"
)

// Shelf life after opening, in calendar days, keyed by lowercased category.
const (
	shelfLifeDairy     = 7
	shelfLifeMeat      = 3
	shelfLifeProduce   = 5
	shelfLifePantry    = 14
	shelfLifeBeverages = 7
	shelfLifeDefault   = 7
)

var shelfLifeByCategory = map[string]int{
	"dairy":     shelfLifeDairy,
	"meat":      shelfLifeMeat,
	"produce":   shelfLifeProduce,
	"pantry":    shelfLifePantry,
	"beverages": shelfLifeBeverages,
}

// Item is one tracked perishable good. It is a plain record: the lifecycle
// methods below mutate it in place and persistence lives behind
// ItemRepository.
type Item struct {
	ItemID                 string     `json:"item_id"`                  // UUID v7, assigned on first save.
	Name                   string     `json:"name"`                     // Display name.
	ExpirationDate         time.Time  `json:"expiration_date"`          // Current effective expiration.
	OriginalExpirationDate time.Time  `json:"original_expiration_date"` // Set at creation, never changed.
	OpenedDate             *time.Time `json:"opened_date"`              // Non-nil iff IsOpened.
	Category               string     `json:"category"`                 // Selects the shelf-life rule.
	StorageLocation        string     `json:"storage_location"`         // Fridge, freezer, cupboard...
	IsOpened               bool       `json:"is_opened"`
	IsPartiallyConsumed    bool       `json:"is_partially_consumed"`
	RemainingQuantity      *float64   `json:"remaining_quantity"` // Nil until the first quantity update.
	LastConsumedDate       *time.Time `json:"last_consumed_date"` // Reserved; no transition writes it.
	Notes                  *string    `json:"notes"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// ItemOption overrides a creation default.
type ItemOption func(*Item)

// WithCategory sets the item category.
func WithCategory(category string) ItemOption {
	return func(i *Item) { i.Category = category }
}

// WithStorageLocation sets where the item is kept.
func WithStorageLocation(location string) ItemOption {
	return func(i *Item) { i.StorageLocation = location }
}

// WithNotes attaches free-form notes. An empty string is stored as an empty
// note, not as absent.
func WithNotes(notes string) ItemOption {
	return func(i *Item) { i.Notes = &notes }
}

// NewItem builds an unopened item created at now. The expiration date is
// also recorded as the original expiration date so that MarkAsUnopened can
// restore it. No field is validated.
func NewItem(name string, expirationDate time.Time, now time.Time, opts ...ItemOption) *Item {
	item := &Item{
		Name:                   name,
		ExpirationDate:         expirationDate,
		OriginalExpirationDate: expirationDate,
		Category:               DefaultCategory,
		StorageLocation:        DefaultStorageLocation,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	for _, opt := range opts {
		opt(item)
	}
	return item
}

// MarkAsOpened moves the item to the opened state at now and recalculates
// the expiration date from the category's shelf life. Calling it on an
// opened item is a no-op. If the calendar cannot compute the new date the
// previous expiration date is kept.
func (i *Item) MarkAsOpened(now time.Time, cal Calendar) {
	if i.IsOpened {
		return
	}
	opened := now
	i.IsOpened = true
	i.OpenedDate = &opened
	i.UpdatedAt = now
	i.adjustExpirationForCategory(cal)
}

// MarkAsUnopened moves the item back to the unopened state and restores the
// original expiration date exactly. Calling it on an unopened item is a no-op.
func (i *Item) MarkAsUnopened(now time.Time) {
	if !i.IsOpened {
		return
	}
	i.IsOpened = false
	i.OpenedDate = nil
	i.ExpirationDate = i.OriginalExpirationDate
	i.UpdatedAt = now
}

// UpdateRemainingQuantity records the remaining fraction of the item. The
// value is stored as given; it is not clamped to [0, 1]. Any value below 1.0,
// including 0, marks the item partially consumed.
func (i *Item) UpdateRemainingQuantity(quantity float64, now time.Time) {
	q := quantity
	i.RemainingQuantity = &q
	i.IsPartiallyConsumed = quantity < 1.0
	i.UpdatedAt = now
}

func (i *Item) adjustExpirationForCategory(cal Calendar) {
	if i.OpenedDate == nil || cal == nil {
		return
	}
	expires, err := cal.AddDays(*i.OpenedDate, ShelfLifeDays(i.Category))
	if err != nil {
		return
	}
	i.ExpirationDate = expires
}

// ShelfLifeDays returns how many calendar days an opened item of the given
// category stays fresh. Matching is case-insensitive; unknown categories get
// the default of 7 days.
func ShelfLifeDays(category string) int {
	if days, ok := shelfLifeByCategory[strings.ToLower(category)]; ok {
		return days
	}
	return shelfLifeDefault
}

// State returns ItemStateOpened or ItemStateUnopened.
func (i *Item) State() string {
	if i.IsOpened {
		return ItemStateOpened
	}
	return ItemStateUnopened
}

// RemainingPercent returns the remaining quantity as a percentage. An item
// with no recorded quantity is whole.
func (i *Item) RemainingPercent() float64 {
	if i.RemainingQuantity == nil {
		return 100
	}
	return *i.RemainingQuantity * 100
}

// IsExpired reports whether the effective expiration date is before now.
func (i *Item) IsExpired(now time.Time) bool {
	return i.ExpirationDate.Before(now)
}
