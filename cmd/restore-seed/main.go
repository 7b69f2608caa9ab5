// restore-seed is a one-shot tool that resets the database to a known demo
// state: an admin user, a couple of notification recipients, and a handful of
// items covering each alert condition.
//
// Usage: go run ./cmd/restore-seed
package main

import (
	"context"
	"log"
	"time"

	"despensa/internal/core"
	"despensa/internal/db"

	"github.com/joho/godotenv"
)

func seedDate(daysFromNow int) *time.Time {
	t := time.Now().AddDate(0, 0, daysFromNow)
	return &t
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	log.Println("Clearing existing data...")
	if _, err := pool.Exec(ctx,
		"TRUNCATE items, notification_recipients, users RESTART IDENTITY"); err != nil {
		log.Fatalf("Failed to clear tables: %v", err)
	}

	users := core.NewUserService(pool)
	items := core.NewItemService(pool)
	recipients := core.NewRecipientService(pool)

	log.Println("Creating admin user...")
	if _, err := users.CreateUser(ctx, "admin", "admin123456"); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}

	log.Println("Creating recipients...")
	seedRecipients := []core.RecipientInput{
		{FullName: "Maria Silva", Phone: "(11) 98765-4321"},
		{FullName: "João Santos", Phone: "21912345678"},
	}
	for _, r := range seedRecipients {
		if _, err := recipients.CreateRecipient(ctx, r); err != nil {
			log.Fatalf("Failed to create recipient %s: %v", r.FullName, err)
		}
	}

	log.Println("Creating items...")
	seedItems := []core.ItemInput{
		// Low stock: total 2 <= threshold 5.
		{Name: "Rice", Unit: "kg", QuantityIn: 10, QuantityOut: 8, StockThreshold: 5},
		// Near expiry: 7 days out.
		{Name: "Milk", Unit: "l", QuantityIn: 24, QuantityOut: 4, StockThreshold: 6, ExpiryDate: seedDate(7)},
		// Both conditions at once.
		{Name: "Yogurt", Unit: "un", QuantityIn: 6, QuantityOut: 5, StockThreshold: 4, ExpiryDate: seedDate(2)},
		// Already expired.
		{Name: "Bread", Unit: "un", QuantityIn: 20, QuantityOut: 2, StockThreshold: 5, ExpiryDate: seedDate(-1)},
		// Healthy on both dimensions.
		{Name: "Beans", Unit: "kg", QuantityIn: 30, QuantityOut: 5, StockThreshold: 5, ExpiryDate: seedDate(120)},
	}
	for _, it := range seedItems {
		if _, err := items.CreateItem(ctx, it); err != nil {
			log.Fatalf("Failed to create item %s: %v", it.Name, err)
		}
	}

	log.Println("Seed restored: 1 user, 2 recipients, 5 items.")
}
