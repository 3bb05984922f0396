package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/pantry/pkg/types"
)

var uiNow = time.Date(2025, 4, 28, 15, 0, 0, 0, time.UTC)

func TestDaysUntil(t *testing.T) {
	tests := []struct {
		name string
		exp  time.Time
		want int
	}{
		{"later today", uiNow.Add(2 * time.Hour), 0},
		{"earlier today", uiNow.Add(-2 * time.Hour), 0},
		{"just after midnight", time.Date(2025, 4, 29, 0, 30, 0, 0, time.UTC), 1},
		{"a week", uiNow.AddDate(0, 0, 7), 7},
		{"yesterday", uiNow.AddDate(0, 0, -1), -1},
		{"last calendar day", time.Date(9999, 12, 31, 12, 0, 0, 0, time.UTC), 2912690},
		{"first calendar day", time.Date(1, 1, 1, 12, 0, 0, 0, time.UTC), -739368},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.exp, uiNow))
		})
	}
}

func TestDaysUntilUsesNowLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2025, 4, 28, 23, 0, 0, 0, tokyo)
	// 2025-04-28 16:00 UTC is 2025-04-29 01:00 in Tokyo.
	exp := time.Date(2025, 4, 28, 16, 0, 0, 0, time.UTC)

	assert.Equal(t, 1, DaysUntil(exp, now))
	assert.Equal(t, "2025-04-29", FormatDate(exp, now.Location()))
}

func TestExpiryLabel(t *testing.T) {
	tests := []struct {
		name string
		exp  time.Time
		want string
	}{
		{"expired days ago", uiNow.AddDate(0, 0, -3), "expired 3d ago"},
		{"expired earlier today", uiNow.Add(-time.Hour), "(expired)"},
		{"later today", uiNow.Add(time.Hour), "today"},
		{"tomorrow", uiNow.AddDate(0, 0, 1), "tomorrow"},
		{"soon", uiNow.AddDate(0, 0, 3), "in 3d"},
		{"fresh", uiNow.AddDate(0, 0, 30), "in 30d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, ExpiryLabel(tt.exp, uiNow), tt.want)
		})
	}
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "100%", FormatPercent(100))
	assert.Equal(t, "25%", FormatPercent(25))
	assert.Equal(t, "-50%", FormatPercent(-50))
	assert.Equal(t, "150%", FormatPercent(150))
}

func TestItemDetail(t *testing.T) {
	item := types.NewItem("Milk", uiNow.AddDate(0, 0, 10), uiNow.AddDate(0, 0, -1),
		types.WithCategory("dairy"),
		types.WithStorageLocation("Fridge"),
		types.WithNotes("2% fat"))
	item.ItemID = "0196d1a0-0000-7000-8000-000000000001"

	t.Run("unopened", func(t *testing.T) {
		out := ItemDetail(item, uiNow)
		assert.Contains(t, out, "Milk")
		assert.Contains(t, out, "2025-05-08")
		assert.Contains(t, out, "dairy")
		assert.Contains(t, out, "Fridge")
		assert.Contains(t, out, "Unopened")
		assert.Contains(t, out, "Remaining:")
		assert.Contains(t, out, "100%")
		assert.Contains(t, out, "2% fat")
		assert.NotContains(t, out, "Opened on")
		assert.NotContains(t, out, "Last consumed")
		assert.NotContains(t, out, "Best before")
	})

	t.Run("opened and consumed", func(t *testing.T) {
		item.MarkAsOpened(uiNow, types.LocalCalendar{Location: time.UTC})
		item.UpdateRemainingQuantity(0.4, uiNow)
		consumed := uiNow
		item.LastConsumedDate = &consumed

		out := ItemDetail(item, uiNow)
		assert.Contains(t, out, "Opened on")
		assert.Contains(t, out, "2025-04-28")
		assert.Contains(t, out, "Best before")
		assert.Contains(t, out, "2025-05-08")
		assert.Contains(t, out, "2025-05-05")
		assert.Contains(t, out, "40%")
		assert.Contains(t, out, "Last consumed")
	})
}

func TestItemTable(t *testing.T) {
	milk := types.NewItem("Milk", uiNow.AddDate(0, 0, 2), uiNow, types.WithCategory("dairy"))
	milk.ItemID = "id-milk"
	rice := types.NewItem("Rice\nbasmati", uiNow.AddDate(1, 0, 0), uiNow, types.WithCategory("pantry"))
	rice.ItemID = "id-rice"
	rice.MarkAsOpened(uiNow, types.LocalCalendar{Location: time.UTC})

	out := ItemTable([]*types.Item{milk, rice}, uiNow)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Contains(t, lines[0], "NAME")
	assert.Contains(t, lines[0], "EXPIRES")
	assert.Contains(t, lines[1], "id-milk")
	assert.Contains(t, lines[1], "Unopened")
	assert.Contains(t, lines[1], "in 2d")
	assert.Contains(t, lines[2], "Rice basmati")
	assert.Contains(t, lines[2], "Opened")
	assert.Contains(t, lines[2], "2025-05-12")
}

func TestItemTableEmpty(t *testing.T) {
	out := ItemTable(nil, uiNow)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
