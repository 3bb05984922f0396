package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

const dateLayout = "2006-01-02"

// soonDays is how close an expiration must be to render as a warning.
const soonDays = 3

var itemTableHeaders = []string{"ID", "NAME", "CATEGORY", "LOCATION", "STATUS", "LEFT", "EXPIRES"}

// ItemTable renders items as a table. Dates are shown in now's location.
func ItemTable(items []*types.Item, now time.Time) string {
	builder := NewTableBuilder(itemTableHeaders, len(items))
	for _, item := range items {
		builder.AddRow([]string{
			item.ItemID,
			TruncateTableCell(item.Name),
			TruncateTableCell(item.Category),
			TruncateTableCell(item.StorageLocation),
			StatusLabel(item),
			FormatPercent(item.RemainingPercent()),
			FormatDate(item.ExpirationDate, now.Location()) + " " + ExpiryLabel(item.ExpirationDate, now),
		})
	}
	return builder.String()
}

// ItemDetail renders every field of item as labelled lines.
func ItemDetail(item *types.Item, now time.Time) string {
	loc := now.Location()
	var b strings.Builder
	line := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(label+":"), value)
	}

	line("ID", item.ItemID)
	line("Name", item.Name)
	line("Expires", FormatDate(item.ExpirationDate, loc)+" "+ExpiryLabel(item.ExpirationDate, now))
	if !item.OriginalExpirationDate.Equal(item.ExpirationDate) {
		line("Best before", FormatDate(item.OriginalExpirationDate, loc))
	}
	line("Category", item.Category)
	line("Location", item.StorageLocation)
	line("Status", StatusLabel(item))
	if item.OpenedDate != nil {
		line("Opened on", FormatDate(*item.OpenedDate, loc))
	}
	line("Remaining", FormatPercent(item.RemainingPercent()))
	if item.LastConsumedDate != nil {
		line("Last consumed", FormatDate(*item.LastConsumedDate, loc))
	}
	if item.Notes != nil && *item.Notes != "" {
		line("Notes", *item.Notes)
	}
	line("Added", valueMuted.Render(item.CreatedAt.In(loc).Format(time.DateTime)))
	line("Updated", valueMuted.Render(item.UpdatedAt.In(loc).Format(time.DateTime)))
	return b.String()
}

// StatusLabel renders "Opened" or "Unopened".
func StatusLabel(item *types.Item) string {
	if item.IsOpened {
		return openedStyle.Render("Opened")
	}
	return unopenedStyle.Render("Unopened")
}

// ExpiryLabel describes how far exp is from now in calendar days.
func ExpiryLabel(exp, now time.Time) string {
	days := DaysUntil(exp, now)
	switch {
	case days < 0:
		return expiredStyle.Render(fmt.Sprintf("(expired %dd ago)", -days))
	case days == 0:
		if !exp.After(now) {
			return expiredStyle.Render("(expired)")
		}
		return soonStyle.Render("(today)")
	case days == 1:
		return soonStyle.Render("(tomorrow)")
	case days <= soonDays:
		return soonStyle.Render(fmt.Sprintf("(in %dd)", days))
	default:
		return freshStyle.Render(fmt.Sprintf("(in %dd)", days))
	}
}

const secondsPerDay = 24 * 60 * 60

// DaysUntil counts calendar days from now to exp in now's location.
func DaysUntil(exp, now time.Time) int {
	loc := now.Location()
	ey, em, ed := exp.In(loc).Date()
	ny, nm, nd := now.Date()
	from := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// FormatDate renders t as YYYY-MM-DD in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(dateLayout)
}

// FormatPercent renders a remaining percentage with no decimals.
func FormatPercent(pct float64) string {
	return fmt.Sprintf("%.0f%%", pct)
}
