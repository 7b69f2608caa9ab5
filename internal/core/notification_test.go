package core_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"despensa/internal/core"
)

func TestComposeAlertMessage(t *testing.T) {
	expiry := testNow.AddDate(0, 0, 3)
	sets := core.NotificationSets{
		ExpiredItems: []core.Item{
			{ID: 1, Name: "Milk", Unit: "L", TotalStock: 1, StockThreshold: 2, ExpiryDate: &expiry},
		},
		LowStockItems: []core.Item{
			{ID: 2, Name: "Rice", Unit: "kg", TotalStock: 2, StockThreshold: 5},
		},
	}

	msg := core.ComposeAlertMessage(sets, testNow)

	blocks := strings.Split(msg, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2:\n%s", len(blocks), msg)
	}

	// Expiry-alerted item comes first and carries both problem lines plus
	// the expiry status tail.
	if !strings.Contains(blocks[0], "ALERT: Milk") {
		t.Errorf("first block should be the expiry item:\n%s", blocks[0])
	}
	if !strings.Contains(blocks[0], "Low stock: 1 L (minimum: 2 L)") {
		t.Errorf("expiry block should still include the low-stock line:\n%s", blocks[0])
	}
	if !strings.Contains(blocks[0], "Expiry date: "+expiry.Format("02/01/2006")) {
		t.Errorf("expiry block missing expiry date:\n%s", blocks[0])
	}
	if !strings.HasSuffix(blocks[0], "Status: NEAR EXPIRY") {
		t.Errorf("expiry block must end with NEAR EXPIRY status:\n%s", blocks[0])
	}

	if !strings.Contains(blocks[1], "ALERT: Rice") {
		t.Errorf("second block should be the low-stock item:\n%s", blocks[1])
	}
	if strings.Contains(blocks[1], "Expiry date") {
		t.Errorf("low-stock block must not mention expiry:\n%s", blocks[1])
	}
	if !strings.HasSuffix(blocks[1], "Status: LOW STOCK") {
		t.Errorf("low-stock block must end with LOW STOCK status:\n%s", blocks[1])
	}
}

func TestComposeAlertMessage_Empty(t *testing.T) {
	if msg := core.ComposeAlertMessage(core.NotificationSets{}, testNow); msg != "" {
		t.Errorf("empty sets should compose an empty message, got %q", msg)
	}
}

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"admin", false},
		{"ab", true},
		{"has space", true},
		{"ok_name123", false},
	}
	for _, tt := range tests {
		if err := core.ValidateUsername(tt.in); (err != nil) != tt.wantErr {
			t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", "secret123", false},
		{"too short", "ab1", true},
		{"no digit", "onlyletters", true},
		{"no letter", "12345678", true},
		{"contains space", "secret 123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := core.ValidatePassword(tt.in); (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
		})
	}
}

// A plan whose sets are empty confirms as a no-op without touching storage.
func TestConfirmDispatch_EmptyPlanIsNoop(t *testing.T) {
	svc := core.NewNotificationService(nil, nil, "")
	if err := svc.ConfirmDispatch(context.Background(), &core.DispatchPlan{GeneratedAt: time.Now()}); err != nil {
		t.Errorf("empty plan should confirm as no-op, got %v", err)
	}
	if err := svc.ConfirmDispatch(context.Background(), nil); err != nil {
		t.Errorf("nil plan should confirm as no-op, got %v", err)
	}
}

// Alerts without anyone registered to receive them must surface the distinct
// no-recipients condition.
func TestConfirmDispatch_NoRecipients(t *testing.T) {
	svc := core.NewNotificationService(nil, nil, "")
	plan := &core.DispatchPlan{
		Sets: core.NotificationSets{
			LowStockItems: []core.Item{{ID: 1, Name: "Rice", TotalStock: 1, StockThreshold: 5}},
		},
		GeneratedAt: time.Now(),
	}
	if err := svc.ConfirmDispatch(context.Background(), plan); err != core.ErrNoRecipients {
		t.Errorf("ConfirmDispatch = %v, want ErrNoRecipients", err)
	}
}
