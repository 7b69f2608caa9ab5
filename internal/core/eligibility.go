package core

import (
	"time"
)

// DefaultExpiryWindowDays is the alert horizon for near-expiry items. Earlier
// revisions of the system used 7, 15, and 30 days in different call sites;
// 15 is the agreed value and every call site reads it from here.
const DefaultExpiryWindowDays = 15

// expiryWindowDays is set once at startup (SetExpiryWindowDays) and read-only
// afterwards.
var expiryWindowDays = DefaultExpiryWindowDays

// ExpiryWindowDays returns the configured near-expiry horizon in days.
func ExpiryWindowDays() int {
	return expiryWindowDays
}

// SetExpiryWindowDays overrides the near-expiry horizon. Call it from main
// before serving requests; it is not safe to change while evaluations run.
func SetExpiryWindowDays(days int) {
	if days > 0 {
		expiryWindowDays = days
	}
}

// Evaluation is the per-item eligibility verdict for a given reference time.
type Evaluation struct {
	StockLow         bool `json:"stock_low"`
	ExpiryNear       bool `json:"expiry_near"`
	NeedsStockAlert  bool `json:"needs_stock_alert"`
	NeedsExpiryAlert bool `json:"needs_expiry_alert"`
	// DaysUntilExpiry is nil when the item has no expiry date. Zero means
	// "expires today"; negative means already expired.
	DaysUntilExpiry *int `json:"days_until_expiry,omitempty"`
}

// Evaluate decides stock-low and expiry-near status for one item at the given
// reference time. It is pure: no I/O, no mutation, deterministic for a given
// (item, now) pair, and it never panics on partial records; a malformed
// dimension degrades to "no alert".
func Evaluate(item Item, now time.Time) Evaluation {
	ev := Evaluation{
		StockLow: item.TotalStock <= item.StockThreshold,
	}

	if item.ExpiryDate != nil && !item.ExpiryDate.IsZero() {
		days := DaysUntilExpiry(*item.ExpiryDate, now)
		ev.DaysUntilExpiry = &days
		ev.ExpiryNear = days <= expiryWindowDays
	}

	ev.NeedsStockAlert = ev.StockLow && !item.StockNotified
	ev.NeedsExpiryAlert = ev.ExpiryNear && !item.ExpiryNotified
	return ev
}

// DaysUntilExpiry computes the whole-day distance between now and the expiry
// date. Each value's calendar date is read in its own location and the two
// dates are compared as UTC midnights, so neither time-of-day components nor
// mismatched zones (DATE columns scan as midnight UTC while the clock runs
// local) can shift the count. Zero means the item expires today; negative
// values mean it already expired.
func DaysUntilExpiry(expiry, now time.Time) int {
	return int(civilDay(expiry).Sub(civilDay(now)).Hours() / 24)
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NotificationSets partitions items needing an alert. An item eligible for
// both alerts appears only in ExpiredItems: expiry is the more urgent bucket
// and an item is never reported twice.
type NotificationSets struct {
	LowStockItems []Item `json:"low_stock_items"`
	ExpiredItems  []Item `json:"expired_items"`
}

// Empty reports whether no item needs any alert.
func (s NotificationSets) Empty() bool {
	return len(s.LowStockItems) == 0 && len(s.ExpiredItems) == 0
}

// BuildNotificationSets evaluates every item and partitions the collection
// into the two alert sets. Input order is preserved within each set (stable
// filter, no re-sort) and the input slice is never mutated. Callers re-derive
// the sets from scratch after every item mutation rather than patching them
// incrementally.
func BuildNotificationSets(items []Item, now time.Time) NotificationSets {
	sets := NotificationSets{}

	expiredIDs := make(map[int]bool)
	for _, item := range items {
		if Evaluate(item, now).NeedsExpiryAlert {
			sets.ExpiredItems = append(sets.ExpiredItems, item)
			expiredIDs[item.ID] = true
		}
	}

	for _, item := range items {
		if Evaluate(item, now).NeedsStockAlert && !expiredIDs[item.ID] {
			sets.LowStockItems = append(sets.LowStockItems, item)
		}
	}

	return sets
}

// AlertKind identifies which alert dimension was dispatched.
type AlertKind string

const (
	AlertStock  AlertKind = "stock"
	AlertExpiry AlertKind = "expiry"
)

// ItemPatch is a flag-update instruction produced after a successful
// dispatch. Nil fields are left untouched by the persistence layer.
type ItemPatch struct {
	StockNotified  *bool      `json:"stock_notified,omitempty"`
	ExpiryNotified *bool      `json:"expiry_notified,omitempty"`
	LastNotifiedAt *time.Time `json:"last_notified_at,omitempty"`
}

// MarkNotified builds the patch recording that an alert of the given kind was
// dispatched for the item's current episode. It must only be applied after
// the dispatch is confirmed successful: a failed dispatch leaves the flags
// alone so the item stays eligible on the next evaluation.
func MarkNotified(item Item, kind AlertKind, now time.Time) ItemPatch {
	t := true
	patch := ItemPatch{LastNotifiedAt: &now}
	switch kind {
	case AlertExpiry:
		patch.ExpiryNotified = &t
	default:
		patch.StockNotified = &t
	}
	return patch
}

// ResetNotificationsIfResolved returns the notified flags to persist with an
// item update. When the update resolves the condition behind a past alert,
// the matching flag is cleared so a future re-trigger alerts again:
//
//   - resulting stock strictly above the threshold clears StockNotified;
//   - resulting expiry beyond the window, or expiry removed, clears
//     ExpiryNotified.
//
// ItemService applies this on every update, whether or not a notification was
// ever dispatched.
func ResetNotificationsIfResolved(prev Item, upd ItemUpdate, now time.Time) (stockNotified, expiryNotified bool) {
	stockNotified = prev.StockNotified
	expiryNotified = prev.ExpiryNotified

	in := prev.QuantityIn
	if upd.QuantityIn != nil {
		in = *upd.QuantityIn
	}
	out := prev.QuantityOut
	if upd.QuantityOut != nil {
		out = *upd.QuantityOut
	}
	threshold := prev.StockThreshold
	if upd.StockThreshold != nil {
		threshold = *upd.StockThreshold
	}
	if Quantity(ComputeTotalStock(in, out)) > threshold {
		stockNotified = false
	}

	expiry := prev.ExpiryDate
	if upd.ClearExpiry {
		expiry = nil
	} else if upd.ExpiryDate != nil {
		expiry = upd.ExpiryDate
	}
	if expiry == nil || DaysUntilExpiry(*expiry, now) > expiryWindowDays {
		expiryNotified = false
	}

	return stockNotified, expiryNotified
}
