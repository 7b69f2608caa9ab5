package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"despensa/internal/app"
	"despensa/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:], the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	switch args[0] {
	case "items", "ls":
		result, err := svc.ListItems(ctx)
		if err != nil {
			log.Fatalf("Failed to list items: %v", err)
		}
		printItems(result.Items)

	case "alerts", "al":
		result, err := svc.GetAlerts(ctx)
		if err != nil {
			log.Fatalf("Failed to build alerts: %v", err)
		}
		printAlerts(result)

	case "confirm":
		result, err := svc.GetAlerts(ctx)
		if err != nil {
			log.Fatalf("Failed to build alerts: %v", err)
		}
		if result.Plan.Sets.Empty() {
			fmt.Println("Nothing to confirm, no item needs an alert.")
			return
		}
		if err := svc.ConfirmDispatch(ctx, result.Plan); err != nil {
			log.Fatalf("Confirm failed: %v", err)
		}
		fmt.Printf("Confirmed: %d expiring, %d low stock, %d recipients stamped.\n",
			len(result.Plan.Sets.ExpiredItems), len(result.Plan.Sets.LowStockItems),
			len(result.Plan.Recipients))

	case "notified":
		if len(args) < 3 {
			log.Fatal("Usage: app notified <item-id> <stock|expiry>")
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid item id: %s", args[1])
		}
		result, err := svc.MarkItemNotified(ctx, id, core.AlertKind(args[2]))
		if err != nil {
			log.Fatalf("Mark notified failed: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Item)

	case "recipients", "rec":
		result, err := svc.ListRecipients(ctx)
		if err != nil {
			log.Fatalf("Failed to list recipients: %v", err)
		}
		printRecipients(result.Recipients)

	case "status":
		status, err := svc.GetRecipientStatus(ctx)
		if err != nil {
			log.Fatalf("Failed to get recipient status: %v", err)
		}
		fmt.Printf("Active recipients: %d\n", status.TotalRecipients)
		if !status.HasRecipients {
			fmt.Println("Warning: alerts will have no one to go to.")
		}
		for _, r := range status.RecentRecipients {
			last := "never"
			if r.LastNotification != nil {
				last = r.LastNotification.Format("2006-01-02 15:04")
			}
			fmt.Printf("  %s (%s) last notified %s\n", r.FullName, r.FormattedPhone(), last)
		}

	default:
		log.Fatalf("Unknown command: %s\nAvailable: items, alerts, confirm, notified, recipients, status", args[0])
	}
}

func printItems(items []core.Item) {
	fmt.Println()
	fmt.Printf("  %-4s %-24s %10s %10s %-12s %-8s\n", "ID", "NAME", "STOCK", "THRESHOLD", "EXPIRY", "NOTIFIED")
	fmt.Println(strings.Repeat("-", 76))
	for _, it := range items {
		expiry := "-"
		if it.ExpiryDate != nil {
			expiry = it.ExpiryDate.Format("2006-01-02")
		}
		notified := ""
		if it.StockNotified {
			notified += "S"
		}
		if it.ExpiryNotified {
			notified += "E"
		}
		fmt.Printf("  %-4d %-24s %10g %10g %-12s %-8s\n",
			it.ID, it.Name, float64(it.TotalStock), float64(it.StockThreshold), expiry, notified)
	}
	fmt.Println(strings.Repeat("-", 76))
	fmt.Printf("  %d items\n", len(items))
}

func printAlerts(result *app.AlertsResult) {
	sets := result.Plan.Sets
	if sets.Empty() {
		fmt.Println("No item needs an alert right now.")
		return
	}
	if len(sets.ExpiredItems) > 0 {
		fmt.Printf("Near expiry (%d):\n", len(sets.ExpiredItems))
		for _, it := range sets.ExpiredItems {
			fmt.Printf("  %s\n", it.Name)
		}
	}
	if len(sets.LowStockItems) > 0 {
		fmt.Printf("Low stock (%d):\n", len(sets.LowStockItems))
		for _, it := range sets.LowStockItems {
			fmt.Printf("  %s\n", it.Name)
		}
	}
	fmt.Println()
	fmt.Println(result.Plan.Message)
	if !result.HasRecipients {
		fmt.Println()
		fmt.Println("Warning: no active recipients registered.")
		return
	}
	fmt.Println()
	fmt.Println("Links:")
	for _, link := range result.Plan.Links {
		fmt.Printf("  %s\n", link)
	}
}

func printRecipients(recipients []core.NotificationRecipient) {
	fmt.Println()
	fmt.Printf("  %-4s %-30s %-18s %-8s\n", "ID", "NAME", "PHONE", "ACTIVE")
	fmt.Println(strings.Repeat("-", 64))
	for _, r := range recipients {
		fmt.Printf("  %-4d %-30s %-18s %-8t\n", r.ID, r.FullName, r.FormattedPhone(), r.IsActive)
	}
	fmt.Println(strings.Repeat("-", 64))
}
