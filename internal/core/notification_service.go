package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"despensa/internal/logger"
)

// ErrNoRecipients is returned when alerts exist but nobody is registered to
// receive them. Callers must surface this as "no one to notify", never as
// "nothing needs notification".
var ErrNoRecipients = errors.New("no active notification recipients registered")

// DispatchPlan is one alert round: the partitioned item sets, the composed
// message, the delivery targets, and the ready-to-open wa.me links.
// GeneratedAt is the reference instant the sets were derived for; the
// post-dispatch flag updates reuse it so the confirmation matches what was
// actually sent.
type DispatchPlan struct {
	Sets        NotificationSets        `json:"sets"`
	Message     string                  `json:"message"`
	Recipients  []NotificationRecipient `json:"recipients"`
	Links       []string                `json:"links"`
	GeneratedAt time.Time               `json:"generated_at"`
}

// NotificationService derives alert rounds from current item state and, after
// an operator confirms the links were opened, records the dispatch. It never
// sends anything itself; delivery is the WhatsApp deep links.
type NotificationService interface {
	// PrepareDispatch rebuilds the notification sets from scratch and
	// assembles the plan. An empty plan (no item needs an alert) is not an
	// error; a plan with alerts but no recipients is returned as-is so
	// callers can show the distinct "no one to notify" condition.
	PrepareDispatch(ctx context.Context, now time.Time) (*DispatchPlan, error)

	// ConfirmDispatch must be called only after a successful dispatch. It
	// marks every alerted item notified (per dimension alerted) and stamps
	// the recipients' last-notification time. A failed dispatch must simply
	// not call this, leaving every item eligible for the next round.
	ConfirmDispatch(ctx context.Context, plan *DispatchPlan) error
}

type notificationService struct {
	items       ItemService
	recipients  RecipientService
	countryCode string
}

// NewNotificationService wires the dispatch orchestration over the item and
// recipient services. countryCode is prefixed to phones when missing; empty
// means DefaultCountryCode.
func NewNotificationService(items ItemService, recipients RecipientService, countryCode string) NotificationService {
	if countryCode == "" {
		countryCode = DefaultCountryCode
	}
	return &notificationService{items: items, recipients: recipients, countryCode: countryCode}
}

func (s *notificationService) PrepareDispatch(ctx context.Context, now time.Time) (*DispatchPlan, error) {
	items, err := s.items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for dispatch: %w", err)
	}

	plan := &DispatchPlan{
		Sets:        BuildNotificationSets(items, now),
		GeneratedAt: now,
	}
	if plan.Sets.Empty() {
		return plan, nil
	}

	plan.Message = ComposeAlertMessage(plan.Sets, now)

	recipients, err := s.recipients.ListRecipients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recipients for dispatch: %w", err)
	}
	plan.Recipients = recipients

	phones := make([]string, len(recipients))
	for i, r := range recipients {
		phones[i] = r.Phone
	}
	plan.Links = BuildWhatsAppLinks(phones, plan.Message, s.countryCode)
	return plan, nil
}

func (s *notificationService) ConfirmDispatch(ctx context.Context, plan *DispatchPlan) error {
	if plan == nil || plan.Sets.Empty() {
		return nil
	}
	if len(plan.Recipients) == 0 {
		return ErrNoRecipients
	}

	now := time.Now()
	for _, item := range plan.Sets.ExpiredItems {
		ev := Evaluate(item, plan.GeneratedAt)
		patch := MarkNotified(item, AlertExpiry, now)
		if ev.NeedsStockAlert {
			// The alert message included the low-stock line too; both
			// episodes were notified in one send.
			t := true
			patch.StockNotified = &t
		}
		if err := s.applyPatch(ctx, item, patch); err != nil {
			return err
		}
	}
	for _, item := range plan.Sets.LowStockItems {
		if err := s.applyPatch(ctx, item, MarkNotified(item, AlertStock, now)); err != nil {
			return err
		}
	}

	ids := make([]int, len(plan.Recipients))
	for i, r := range plan.Recipients {
		ids[i] = r.ID
	}
	if err := s.recipients.TouchLastNotification(ctx, ids, now); err != nil {
		return err
	}
	return nil
}

func (s *notificationService) applyPatch(ctx context.Context, item Item, patch ItemPatch) error {
	_, err := s.items.ApplyNotifiedPatch(ctx, item.ID, patch)
	switch {
	case errors.Is(err, ErrConflict):
		// A concurrent update already reset or set the flags for this item;
		// the fresher state wins and the next round re-evaluates it.
		logger.Warn("notified patch lost to concurrent update", "item_id", item.ID, "item", item.Name)
		return nil
	case errors.Is(err, ErrNotFound):
		logger.Warn("item deleted before dispatch was confirmed", "item_id", item.ID)
		return nil
	case err != nil:
		return fmt.Errorf("failed to confirm dispatch for item %d: %w", item.ID, err)
	}
	return nil
}

// ComposeAlertMessage renders the WhatsApp alert text: one block per item,
// expiry-alerted items first, blocks separated by a blank line.
func ComposeAlertMessage(sets NotificationSets, now time.Time) string {
	var blocks []string
	for _, item := range sets.ExpiredItems {
		blocks = append(blocks, alertBlock(item, now))
	}
	for _, item := range sets.LowStockItems {
		blocks = append(blocks, alertBlock(item, now))
	}
	return strings.Join(blocks, "\n\n")
}

func alertBlock(item Item, now time.Time) string {
	ev := Evaluate(item, now)

	var b strings.Builder
	fmt.Fprintf(&b, "⚠️ ALERT: %s\n", item.Name)
	if ev.StockLow {
		fmt.Fprintf(&b, "Low stock: %g %s (minimum: %g %s)\n",
			float64(item.TotalStock), item.Unit, float64(item.StockThreshold), item.Unit)
	}
	if ev.ExpiryNear && item.ExpiryDate != nil {
		fmt.Fprintf(&b, "Expiry date: %s\n", item.ExpiryDate.Format("02/01/2006"))
	}
	if ev.ExpiryNear {
		b.WriteString("Status: NEAR EXPIRY")
	} else {
		b.WriteString("Status: LOW STOCK")
	}
	return b.String()
}
