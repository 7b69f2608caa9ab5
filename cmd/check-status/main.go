// check-status is a one-shot diagnostic tool. It loads every item, runs the
// eligibility evaluation against the current clock, and prints which items
// would enter the next alert round.
//
// Usage: go run ./cmd/check-status
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"despensa/internal/core"
	"despensa/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if v := os.Getenv("EXPIRY_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			log.Fatalf("invalid EXPIRY_WINDOW_DAYS: %q", v)
		}
		core.SetExpiryWindowDays(days)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	items := core.NewItemService(pool)
	recipients := core.NewRecipientService(pool)

	all, err := items.ListItems(ctx)
	if err != nil {
		log.Fatalf("Failed to load items: %v", err)
	}
	if len(all) == 0 {
		fmt.Println("No items registered.")
		return
	}

	now := time.Now()
	pending := 0
	for _, it := range all {
		ev := core.Evaluate(it, now)

		fmt.Printf("%s (%s)\n", it.Name, it.Unit)
		fmt.Printf("  stock: %g / threshold %g\n", float64(it.TotalStock), float64(it.StockThreshold))
		if it.ExpiryDate != nil {
			days := 0
			if ev.DaysUntilExpiry != nil {
				days = *ev.DaysUntilExpiry
			}
			fmt.Printf("  expiry: %s (%d days)\n", it.ExpiryDate.Format("2006-01-02"), days)
		} else {
			fmt.Println("  expiry: not set")
		}
		fmt.Printf("  notified: stock=%t expiry=%t\n", it.StockNotified, it.ExpiryNotified)

		switch {
		case ev.NeedsStockAlert || ev.NeedsExpiryAlert:
			pending++
			if ev.NeedsStockAlert {
				fmt.Println("  LOW STOCK: needs notification")
			}
			if ev.NeedsExpiryAlert {
				fmt.Println("  NEAR EXPIRY: needs notification")
			}
		case ev.StockLow || ev.ExpiryNear:
			fmt.Println("  problem detected, already notified")
		default:
			fmt.Println("  ok")
		}
		fmt.Println()
	}

	status, err := recipients.GetStatus(ctx)
	if err != nil {
		log.Fatalf("Failed to load recipient status: %v", err)
	}

	fmt.Printf("Summary: %d items, %d pending notification, %d active recipients\n",
		len(all), pending, status.TotalRecipients)
	if pending > 0 && !status.HasRecipients {
		fmt.Println("Warning: alerts are pending but no recipients are registered.")
	}
}
