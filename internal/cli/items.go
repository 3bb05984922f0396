// Item commands for the pantry CLI.
package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/pantry/internal/ui"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

const (
	defaultItemName   = "New Item"
	defaultShelfDays  = 7
	expiresDateLayout = "2006-01-02"
)

func (a *app) newAddCmd() *cobra.Command {
	var expires, category, location, notes string
	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add an unopened item",
		Long: `Add an unopened item. The name defaults to "New Item" and the expiration
to one week from now. --expires takes a YYYY-MM-DD date.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultItemName
			if len(args) == 1 {
				name = args[0]
			}

			now := a.lifecycle.Now()
			exp, err := a.expirationDate(expires, now)
			if err != nil {
				return err
			}

			opts := []types.ItemOption{types.WithNotes(notes)}
			if cmd.Flags().Changed("category") {
				opts = append(opts, types.WithCategory(category))
			}
			if cmd.Flags().Changed("location") {
				opts = append(opts, types.WithStorageLocation(location))
			}

			return a.withItems(func(items types.ItemRepository) error {
				item := types.NewItem(name, exp, now, opts...)
				if err := a.saveItem(items, item); err != nil {
					return err
				}
				return a.printItem(item, fmt.Sprintf("Added %s %s (expires %s)",
					item.ItemID, item.Name, ui.FormatDate(item.ExpirationDate, a.location)))
			})
		},
	}
	cmd.Flags().StringVar(&expires, "expires", "", "expiration date, YYYY-MM-DD (default: 7 days from now)")
	cmd.Flags().StringVar(&category, "category", types.DefaultCategory, "category: dairy, meat, produce, pantry, beverages or any other")
	cmd.Flags().StringVar(&location, "location", types.DefaultStorageLocation, "storage location")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	return cmd
}

// expirationDate parses --expires in the configured zone, keeping now's
// time of day. An empty value means now plus one week.
func (a *app) expirationDate(value string, now time.Time) (time.Time, error) {
	if value == "" {
		exp, err := types.LocalCalendar{Location: a.location}.AddDays(now, defaultShelfDays)
		if err != nil {
			return time.Time{}, usageError(err)
		}
		return exp, nil
	}
	day, err := time.ParseInLocation(expiresDateLayout, value, a.location)
	if err != nil {
		return time.Time{}, types.NewValidationError(
			fmt.Sprintf("invalid --expires %q, want YYYY-MM-DD", value), types.ErrInvalidData)
	}
	h, m, s := now.Clock()
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, s, 0, a.location), nil
}

func (a *app) newListCmd() *cobra.Command {
	var (
		category, location, name string
		opened, unopened         bool
		expiringWithin           int
		limit, offset            int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items, soonest expiration first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := types.Filter{
				Category:        category,
				StorageLocation: location,
				NameContains:    name,
				Limit:           limit,
				Offset:          offset,
			}
			switch {
			case opened && unopened:
				return types.NewValidationError("--opened and --unopened are mutually exclusive", types.ErrInvalidFilter)
			case opened:
				filter.Opened = &opened
			case unopened:
				isOpened := false
				filter.Opened = &isOpened
			}
			now := a.lifecycle.Now()
			if cmd.Flags().Changed("expiring-within") {
				if expiringWithin < 0 {
					return types.NewValidationError("--expiring-within must not be negative", types.ErrInvalidFilter)
				}
				cutoff, err := types.LocalCalendar{Location: a.location}.AddDays(now, expiringWithin)
				if err != nil {
					return usageError(err)
				}
				filter.ExpiringBefore = &cutoff
			}

			return a.withItems(func(items types.ItemRepository) error {
				found, err := items.Query(filter)
				if err != nil {
					if types.Classify(err) == types.KindValidation {
						return err
					}
					return dataError("query items", err)
				}
				if a.flags.jsonMode {
					if found == nil {
						found = []*types.Item{}
					}
					return a.printJSON(found)
				}
				if len(found) == 0 {
					fmt.Fprintln(a.stdout, "No items.")
					return nil
				}
				fmt.Fprint(a.stdout, ui.ItemTable(found, now))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only items in this category (case-insensitive)")
	cmd.Flags().StringVar(&location, "location", "", "only items kept here (case-insensitive)")
	cmd.Flags().StringVar(&name, "name", "", "only items whose name contains this text")
	cmd.Flags().BoolVar(&opened, "opened", false, "only opened items")
	cmd.Flags().BoolVar(&unopened, "unopened", false, "only unopened items")
	cmd.Flags().IntVar(&expiringWithin, "expiring-within", 0, "only items expiring within this many days")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of items (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "skip this many items")
	return cmd
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display an item with full details",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withItems(func(items types.ItemRepository) error {
				item, err := loadItem(items, args[0])
				if err != nil {
					return err
				}
				if a.flags.jsonMode {
					return a.printJSON(item)
				}
				fmt.Fprint(a.stdout, ui.ItemDetail(item, a.lifecycle.Now()))
				return nil
			})
		},
	}
}

// transition loads an item, applies change and saves the result.
func (a *app) transition(id string, change func(*types.Item), summary func(*types.Item) string) error {
	return a.withItems(func(items types.ItemRepository) error {
		item, err := loadItem(items, id)
		if err != nil {
			return err
		}
		change(item)
		if err := a.saveItem(items, item); err != nil {
			return err
		}
		return a.printItem(item, summary(item))
	})
}

func (a *app) newOpenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open <id>",
		Short: "Mark an item as opened and shorten its shelf life",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(args[0],
				func(item *types.Item) { a.lifecycle.MarkAsOpened(item) },
				func(item *types.Item) string {
					return fmt.Sprintf("Opened %s, now expires %s", item.Name,
						ui.FormatDate(item.ExpirationDate, a.location))
				})
		},
	}
}

func (a *app) newUnopenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unopen <id>",
		Short: "Undo opening and restore the original expiration",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.transition(args[0],
				func(item *types.Item) { a.lifecycle.MarkAsUnopened(item) },
				func(item *types.Item) string {
					return fmt.Sprintf("Unopened %s, expires %s", item.Name,
						ui.FormatDate(item.ExpirationDate, a.location))
				})
		},
	}
}

func (a *app) newConsumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "consume <id> <remaining>",
		Short: "Record how much of an item is left",
		Long: `Record the remaining quantity of an item as a fraction (0.25) or a
percentage (25%). Any finite value is stored as given; a value below 1 marks
the item partially consumed. Negative values need "--" before the arguments:

  pantry consume -- <id> -0.5`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return a.transition(args[0],
				func(item *types.Item) { a.lifecycle.UpdateRemainingQuantity(item, quantity) },
				func(item *types.Item) string {
					return fmt.Sprintf("%s: %s remaining", item.Name, ui.FormatPercent(item.RemainingPercent()))
				})
		},
	}
}

// parseQuantity accepts a fraction or a percentage. Values outside 0..1
// are passed through unchanged; NaN and infinities are rejected.
func parseQuantity(value string) (float64, error) {
	s := strings.TrimSpace(value)
	scale := 1.0
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSuffix(s, "%")
		scale = 100
	}
	q, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(q) || math.IsInf(q/scale, 0) {
		return 0, types.NewValidationError(fmt.Sprintf("invalid quantity %q", value), types.ErrInvalidData)
	}
	return q / scale, nil
}

func (a *app) newEditCmd() *cobra.Command {
	var name, category, location, notes string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change an item's name, category, location or notes",
		Long: `Change descriptive fields. The expiration date is not recomputed; open
and unopen manage it. An empty --notes clears the notes.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("category") &&
				!flags.Changed("location") && !flags.Changed("notes") {
				return types.NewValidationError("nothing to edit", types.ErrInvalidData)
			}

			return a.transition(args[0],
				func(item *types.Item) {
					if flags.Changed("name") {
						item.Name = name
					}
					if flags.Changed("category") {
						item.Category = category
					}
					if flags.Changed("location") {
						item.StorageLocation = location
					}
					if flags.Changed("notes") {
						if notes == "" {
							item.Notes = nil
						} else {
							n := notes
							item.Notes = &n
						}
					}
					item.UpdatedAt = a.lifecycle.Now()
				},
				func(item *types.Item) string { return "Updated " + item.ItemID })
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&category, "category", "", "new category")
	cmd.Flags().StringVar(&location, "location", "", "new storage location")
	cmd.Flags().StringVar(&notes, "notes", "", "new notes")
	return cmd
}

func (a *app) newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an item",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			return a.withItems(func(items types.ItemRepository) error {
				if err := items.Delete(id); err != nil {
					if errors.Is(err, types.ErrNotFound) || errors.Is(err, types.ErrInvalidID) {
						return fmt.Errorf("item %q: %w", id, err)
					}
					return dataError("delete item", err)
				}
				if a.flags.jsonMode {
					return a.printJSON(map[string]string{"deleted": id})
				}
				fmt.Fprintln(a.stdout, "Deleted", id)
				return nil
			})
		},
	}
}
