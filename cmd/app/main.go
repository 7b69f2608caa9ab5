// app is the terminal entry point for operational tasks: listing items,
// previewing the current alert round, confirming a dispatch, and checking
// recipients, without going through the HTTP server.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"despensa/internal/adapters/cli"
	"despensa/internal/app"
	"despensa/internal/core"
	"despensa/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println("Usage: app <command>")
		fmt.Println("Commands: items, alerts, confirm, notified, recipients, status")
		os.Exit(1)
	}

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
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	itemService := core.NewItemService(pool)
	recipientService := core.NewRecipientService(pool)
	userService := core.NewUserService(pool)
	countryCode := os.Getenv("WHATSAPP_COUNTRY_CODE")
	notificationService := core.NewNotificationService(itemService, recipientService, countryCode)

	svc := app.NewAppService(itemService, recipientService, userService, notificationService, countryCode)

	cli.Run(ctx, svc, os.Args[1:])
}
