package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"despensa/internal/core"
)

var testNow = time.Date(2026, 3, 10, 14, 30, 0, 0, time.Local)

func daysFromNow(days int) *time.Time {
	d := testNow.AddDate(0, 0, days)
	return &d
}

func TestEvaluate_StockThresholdBoundary(t *testing.T) {
	tests := []struct {
		name       string
		totalStock core.Quantity
		threshold  core.Quantity
		wantLow    bool
	}{
		{"well below threshold", 2, 5, true},
		{"exactly at threshold", 5, 5, true},
		{"one above threshold", 6, 5, false},
		{"zero stock zero threshold", 0, 0, true},
		{"both missing coerce to zero", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := core.Item{ID: 1, Name: "Rice", TotalStock: tt.totalStock, StockThreshold: tt.threshold}
			ev := core.Evaluate(item, testNow)
			if ev.StockLow != tt.wantLow {
				t.Errorf("StockLow = %v, want %v", ev.StockLow, tt.wantLow)
			}
			if ev.NeedsStockAlert != tt.wantLow {
				t.Errorf("NeedsStockAlert = %v, want %v (unnotified item)", ev.NeedsStockAlert, tt.wantLow)
			}
			if ev.DaysUntilExpiry != nil {
				t.Errorf("DaysUntilExpiry = %v, want nil for item without expiry", *ev.DaysUntilExpiry)
			}
		})
	}
}

func TestEvaluate_ExpiryWindowBoundary(t *testing.T) {
	tests := []struct {
		name     string
		expiry   *time.Time
		wantNear bool
		wantDays *int
	}{
		{"no expiry date", nil, false, nil},
		{"exactly at window edge (15 days)", daysFromNow(15), true, intPtr(15)},
		{"one day past window (16 days)", daysFromNow(16), false, intPtr(16)},
		{"expires today", daysFromNow(0), true, intPtr(0)},
		{"already expired", daysFromNow(-3), true, intPtr(-3)},
		{"far future", daysFromNow(90), false, intPtr(90)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// High stock so only the expiry dimension is in play.
			item := core.Item{ID: 1, Name: "Milk", TotalStock: 100, StockThreshold: 3, ExpiryDate: tt.expiry}
			ev := core.Evaluate(item, testNow)
			if ev.ExpiryNear != tt.wantNear {
				t.Errorf("ExpiryNear = %v, want %v", ev.ExpiryNear, tt.wantNear)
			}
			if ev.NeedsExpiryAlert != tt.wantNear {
				t.Errorf("NeedsExpiryAlert = %v, want %v", ev.NeedsExpiryAlert, tt.wantNear)
			}
			switch {
			case tt.wantDays == nil && ev.DaysUntilExpiry != nil:
				t.Errorf("DaysUntilExpiry = %v, want nil", *ev.DaysUntilExpiry)
			case tt.wantDays != nil && ev.DaysUntilExpiry == nil:
				t.Errorf("DaysUntilExpiry = nil, want %d", *tt.wantDays)
			case tt.wantDays != nil && *ev.DaysUntilExpiry != *tt.wantDays:
				t.Errorf("DaysUntilExpiry = %d, want %d", *ev.DaysUntilExpiry, *tt.wantDays)
			}
		})
	}
}

func intPtr(v int) *int { return &v }

// Time-of-day components must not shift the day count: an expiry late tonight
// is still "today" and an expiry early tomorrow morning is exactly one day
// out, regardless of the evaluation instant's clock time.
func TestDaysUntilExpiry_TruncatesTimeOfDay(t *testing.T) {
	now := time.Date(2026, 3, 10, 23, 59, 0, 0, time.Local)
	tests := []struct {
		name   string
		expiry time.Time
		want   int
	}{
		{"tonight just before midnight", time.Date(2026, 3, 10, 23, 59, 59, 0, time.Local), 0},
		{"early tomorrow morning", time.Date(2026, 3, 11, 0, 30, 0, 0, time.Local), 1},
		{"noon fifteen days out", time.Date(2026, 3, 25, 12, 0, 0, 0, time.Local), 15},
		{"yesterday evening", time.Date(2026, 3, 9, 20, 0, 0, 0, time.Local), -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.DaysUntilExpiry(tt.expiry, now); got != tt.want {
				t.Errorf("DaysUntilExpiry = %d, want %d", got, tt.want)
			}
		})
	}
}

// DATE columns scan as midnight UTC while the evaluation clock runs in local
// time. The calendar-day distance must be the same whichever side of UTC the
// local zone sits on; an item exactly at the window edge must stay inside it.
func TestDaysUntilExpiry_MixedLocations(t *testing.T) {
	east := time.FixedZone("UTC+5:30", 5*3600+30*60)
	west := time.FixedZone("UTC-3", -3*3600)
	expiry := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"clock east of UTC", time.Date(2026, 3, 10, 9, 0, 0, 0, east), 15},
		{"clock west of UTC", time.Date(2026, 3, 10, 21, 0, 0, 0, west), 15},
		{"clock in UTC", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.DaysUntilExpiry(expiry, tt.now); got != tt.want {
				t.Errorf("DaysUntilExpiry = %d, want %d", got, tt.want)
			}

			item := core.Item{ID: 1, Name: "Rice", TotalStock: 99, StockThreshold: 1, ExpiryDate: &expiry}
			if ev := core.Evaluate(item, tt.now); !ev.ExpiryNear {
				t.Errorf("ExpiryNear = false, want true at the window edge")
			}
		})
	}
}

func TestEvaluate_NotifiedFlagsSuppress(t *testing.T) {
	item := core.Item{
		ID: 7, Name: "Beans",
		TotalStock: 1, StockThreshold: 5,
		ExpiryDate:    daysFromNow(3),
		StockNotified: true, ExpiryNotified: true,
	}
	ev := core.Evaluate(item, testNow)
	if !ev.StockLow || !ev.ExpiryNear {
		t.Fatalf("conditions should still be detected: StockLow=%v ExpiryNear=%v", ev.StockLow, ev.ExpiryNear)
	}
	if ev.NeedsStockAlert || ev.NeedsExpiryAlert {
		t.Errorf("notified flags must suppress alerts: stock=%v expiry=%v", ev.NeedsStockAlert, ev.NeedsExpiryAlert)
	}

	// Flipping the flags back with identical values makes the item eligible again.
	item.StockNotified = false
	item.ExpiryNotified = false
	ev = core.Evaluate(item, testNow)
	if !ev.NeedsStockAlert || !ev.NeedsExpiryAlert {
		t.Errorf("cleared flags must re-enable alerts: stock=%v expiry=%v", ev.NeedsStockAlert, ev.NeedsExpiryAlert)
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	item := core.Item{ID: 3, Name: "Flour", TotalStock: 2, StockThreshold: 5, ExpiryDate: daysFromNow(10)}
	first := core.Evaluate(item, testNow)
	for i := 0; i < 5; i++ {
		if got := core.Evaluate(item, testNow); got.StockLow != first.StockLow ||
			got.ExpiryNear != first.ExpiryNear ||
			got.NeedsStockAlert != first.NeedsStockAlert ||
			got.NeedsExpiryAlert != first.NeedsExpiryAlert ||
			*got.DaysUntilExpiry != *first.DaysUntilExpiry {
			t.Fatalf("evaluation %d differs from first: %+v vs %+v", i, got, first)
		}
	}
}

func TestQuantity_CoercesLooseJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want core.Quantity
	}{
		{"plain number", `3`, 3},
		{"fractional number", `2.5`, 2.5},
		{"quoted number", `"7"`, 7},
		{"quoted fractional", `"1.25"`, 1.25},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
		{"garbage string", `"abc"`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q core.Quantity
			if err := json.Unmarshal([]byte(tt.in), &q); err != nil {
				t.Fatalf("Unmarshal(%s) returned error: %v", tt.in, err)
			}
			if q != tt.want {
				t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, q, tt.want)
			}
		})
	}
}

// An item arriving as a loose JSON document with string quantities must
// evaluate without panicking and with numeric comparison semantics.
func TestEvaluate_StringCoercedStock(t *testing.T) {
	var item core.Item
	payload := `{"id":9,"name":"Sugar","unit":"kg","total_stock":"2","stock_threshold":"5"}`
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ev := core.Evaluate(item, testNow)
	if !ev.StockLow {
		t.Errorf("string-coerced 2 <= 5 should be stock-low")
	}
}

func TestBuildNotificationSets_Dedup(t *testing.T) {
	both := core.Item{ID: 1, Name: "A", TotalStock: 1, StockThreshold: 5, ExpiryDate: daysFromNow(3)}
	lowOnly := core.Item{ID: 2, Name: "B", TotalStock: 1, StockThreshold: 5, ExpiryDate: daysFromNow(60)}
	fine := core.Item{ID: 3, Name: "C", TotalStock: 50, StockThreshold: 5}

	for _, order := range [][]core.Item{
		{both, lowOnly, fine},
		{fine, lowOnly, both},
		{lowOnly, both, fine},
	} {
		sets := core.BuildNotificationSets(order, testNow)
		if len(sets.ExpiredItems) != 1 || sets.ExpiredItems[0].ID != both.ID {
			t.Fatalf("ExpiredItems = %v, want only item 1", ids(sets.ExpiredItems))
		}
		if len(sets.LowStockItems) != 1 || sets.LowStockItems[0].ID != lowOnly.ID {
			t.Fatalf("LowStockItems = %v, want only item 2 (item 1 deduped into expired)", ids(sets.LowStockItems))
		}
	}
}

func TestBuildNotificationSets_PreservesOrder(t *testing.T) {
	items := []core.Item{
		{ID: 10, Name: "D", TotalStock: 0, StockThreshold: 5},
		{ID: 11, Name: "E", TotalStock: 100, StockThreshold: 5, ExpiryDate: daysFromNow(2)},
		{ID: 12, Name: "F", TotalStock: 1, StockThreshold: 5},
		{ID: 13, Name: "G", TotalStock: 100, StockThreshold: 5, ExpiryDate: daysFromNow(-1)},
	}
	sets := core.BuildNotificationSets(items, testNow)
	if got := ids(sets.LowStockItems); len(got) != 2 || got[0] != 10 || got[1] != 12 {
		t.Errorf("LowStockItems order = %v, want [10 12]", got)
	}
	if got := ids(sets.ExpiredItems); len(got) != 2 || got[0] != 11 || got[1] != 13 {
		t.Errorf("ExpiredItems order = %v, want [11 13]", got)
	}
}

func TestBuildNotificationSets_Idempotent(t *testing.T) {
	items := []core.Item{
		{ID: 1, Name: "A", TotalStock: 1, StockThreshold: 5, ExpiryDate: daysFromNow(3)},
		{ID: 2, Name: "B", TotalStock: 1, StockThreshold: 5},
		{ID: 3, Name: "C", TotalStock: 50, StockThreshold: 5},
	}
	first := core.BuildNotificationSets(items, testNow)
	second := core.BuildNotificationSets(items, testNow)
	if !equalIDs(ids(first.LowStockItems), ids(second.LowStockItems)) ||
		!equalIDs(ids(first.ExpiredItems), ids(second.ExpiredItems)) {
		t.Errorf("repeated builds differ: %v/%v vs %v/%v",
			ids(first.LowStockItems), ids(first.ExpiredItems),
			ids(second.LowStockItems), ids(second.ExpiredItems))
	}
}

func TestBuildNotificationSets_DoesNotMutateInput(t *testing.T) {
	items := []core.Item{
		{ID: 1, Name: "A", TotalStock: 1, StockThreshold: 5},
	}
	_ = core.BuildNotificationSets(items, testNow)
	if items[0].StockNotified || items[0].Name != "A" || items[0].TotalStock != 1 {
		t.Errorf("input slice mutated: %+v", items[0])
	}
}

// Example scenarios from the alerting rules.
func TestBuildNotificationSets_Scenarios(t *testing.T) {
	t.Run("low stock without expiry", func(t *testing.T) {
		item := core.Item{ID: 1, Name: "Rice", Unit: "kg", TotalStock: 2, StockThreshold: 5}
		sets := core.BuildNotificationSets([]core.Item{item}, testNow)
		if len(sets.LowStockItems) != 1 || len(sets.ExpiredItems) != 0 {
			t.Errorf("want low=[1] expired=[], got low=%v expired=%v", ids(sets.LowStockItems), ids(sets.ExpiredItems))
		}
	})

	t.Run("near expiry with healthy stock", func(t *testing.T) {
		item := core.Item{ID: 2, Name: "Milk", TotalStock: 10, StockThreshold: 3, ExpiryDate: daysFromNow(10)}
		sets := core.BuildNotificationSets([]core.Item{item}, testNow)
		if len(sets.LowStockItems) != 0 || len(sets.ExpiredItems) != 1 {
			t.Errorf("want low=[] expired=[2], got low=%v expired=%v", ids(sets.LowStockItems), ids(sets.ExpiredItems))
		}
	})
}

func TestMarkNotified(t *testing.T) {
	item := core.Item{ID: 1, Name: "Rice", StockNotified: false, ExpiryNotified: false}
	now := testNow

	stock := core.MarkNotified(item, core.AlertStock, now)
	if stock.StockNotified == nil || !*stock.StockNotified {
		t.Errorf("stock patch must set StockNotified true")
	}
	if stock.ExpiryNotified != nil {
		t.Errorf("stock patch must leave ExpiryNotified untouched")
	}
	if stock.LastNotifiedAt == nil || !stock.LastNotifiedAt.Equal(now) {
		t.Errorf("patch must stamp LastNotifiedAt")
	}

	expiry := core.MarkNotified(item, core.AlertExpiry, now)
	if expiry.ExpiryNotified == nil || !*expiry.ExpiryNotified {
		t.Errorf("expiry patch must set ExpiryNotified true")
	}
	if expiry.StockNotified != nil {
		t.Errorf("expiry patch must leave StockNotified untouched")
	}
}

func TestResetNotificationsIfResolved(t *testing.T) {
	qty := func(v float64) *core.Quantity { q := core.Quantity(v); return &q }

	base := core.Item{
		ID: 1, Name: "Rice",
		QuantityIn: 10, QuantityOut: 8, TotalStock: 2, StockThreshold: 5,
		ExpiryDate:    daysFromNow(3),
		StockNotified: true, ExpiryNotified: true,
	}

	t.Run("restock above threshold clears stock flag", func(t *testing.T) {
		stock, expiry := core.ResetNotificationsIfResolved(base, core.ItemUpdate{QuantityIn: qty(14)}, testNow)
		// floor(14-8)=6 > 5
		if stock {
			t.Errorf("StockNotified should reset after restock above threshold")
		}
		// expiry still within window, flag stays set
		if !expiry {
			t.Errorf("ExpiryNotified should remain set while expiry is near")
		}
	})

	t.Run("restock to exactly threshold keeps stock flag", func(t *testing.T) {
		stock, _ := core.ResetNotificationsIfResolved(base, core.ItemUpdate{QuantityIn: qty(13)}, testNow)
		// floor(13-8)=5 == threshold, still low
		if !stock {
			t.Errorf("StockNotified should persist while stock is at or below threshold")
		}
	})

	t.Run("expiry pushed past window clears expiry flag", func(t *testing.T) {
		_, expiry := core.ResetNotificationsIfResolved(base, core.ItemUpdate{ExpiryDate: daysFromNow(30)}, testNow)
		if expiry {
			t.Errorf("ExpiryNotified should reset when expiry moves beyond the window")
		}
	})

	t.Run("expiry removed clears expiry flag", func(t *testing.T) {
		_, expiry := core.ResetNotificationsIfResolved(base, core.ItemUpdate{ClearExpiry: true}, testNow)
		if expiry {
			t.Errorf("ExpiryNotified should reset when expiry is removed")
		}
	})

	t.Run("no-op update leaves both flags", func(t *testing.T) {
		name := "Rice"
		stock, expiry := core.ResetNotificationsIfResolved(base, core.ItemUpdate{Name: &name}, testNow)
		if !stock || !expiry {
			t.Errorf("flags should survive an update that resolves nothing: stock=%v expiry=%v", stock, expiry)
		}
	})

	t.Run("raising threshold above stock keeps flag set", func(t *testing.T) {
		// Stock unchanged and still at-or-below the new threshold means the
		// episode is not resolved.
		stock, _ := core.ResetNotificationsIfResolved(base, core.ItemUpdate{StockThreshold: qty(2)}, testNow)
		if !stock {
			t.Errorf("StockNotified should persist: stock 2 <= threshold 2")
		}
	})

	t.Run("lowering threshold below stock clears flag", func(t *testing.T) {
		stock, _ := core.ResetNotificationsIfResolved(base, core.ItemUpdate{StockThreshold: qty(1)}, testNow)
		if stock {
			t.Errorf("StockNotified should reset: stock 2 > threshold 1")
		}
	})
}

func TestComputeTotalStock(t *testing.T) {
	tests := []struct {
		name string
		in   core.Quantity
		out  core.Quantity
		want int
	}{
		{"whole numbers", 10, 3, 7},
		{"fractional difference floors", 10.5, 3, 7},
		{"exact zero", 4, 4, 0},
		{"negative result floors down", 3, 4.5, -2},
		{"float artifact does not shift floor", 0.3, 0.1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.ComputeTotalStock(tt.in, tt.out); got != tt.want {
				t.Errorf("ComputeTotalStock(%v, %v) = %d, want %d", tt.in, tt.out, got, tt.want)
			}
		})
	}
}

func ids(items []core.Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
