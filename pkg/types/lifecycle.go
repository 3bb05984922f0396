package types

import "time"

// Lifecycle is the entry point collaborators use to create and transition
// items. It binds the clock and calendar the Item methods need and reads the
// clock exactly once per operation, so every field set by one transition
// carries the same instant.
type Lifecycle struct {
	clock    Clock
	calendar Calendar
}

// LifecycleOption configures a Lifecycle.
type LifecycleOption func(*Lifecycle)

// WithClock replaces the system clock.
func WithClock(c Clock) LifecycleOption {
	return func(l *Lifecycle) { l.clock = c }
}

// WithCalendar replaces the local-time calendar.
func WithCalendar(c Calendar) LifecycleOption {
	return func(l *Lifecycle) { l.calendar = c }
}

// NewLifecycle returns a Lifecycle using the system clock and a calendar in
// time.Local unless overridden.
func NewLifecycle(opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		clock:    SystemClock{},
		calendar: LocalCalendar{Location: time.Local},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the lifecycle clock's current instant.
func (l *Lifecycle) Now() time.Time {
	return l.clock.Now()
}

// Create returns a new unopened item.
func (l *Lifecycle) Create(name string, expirationDate time.Time, opts ...ItemOption) *Item {
	return NewItem(name, expirationDate, l.clock.Now(), opts...)
}

// MarkAsOpened opens item and returns it.
func (l *Lifecycle) MarkAsOpened(item *Item) *Item {
	item.MarkAsOpened(l.clock.Now(), l.calendar)
	return item
}

// MarkAsUnopened unopens item and returns it.
func (l *Lifecycle) MarkAsUnopened(item *Item) *Item {
	item.MarkAsUnopened(l.clock.Now())
	return item
}

// UpdateRemainingQuantity records the remaining fraction and returns item.
func (l *Lifecycle) UpdateRemainingQuantity(item *Item, quantity float64) *Item {
	item.UpdateRemainingQuantity(quantity, l.clock.Now())
	return item
}
