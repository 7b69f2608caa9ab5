package main

import (
	"context"
	"net/http"
	"os"
	"strconv"

	webAdapter "despensa/internal/adapters/web"
	"despensa/internal/app"
	"despensa/internal/core"
	"despensa/internal/db"
	"despensa/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	if v := os.Getenv("EXPIRY_WINDOW_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			logger.Error("invalid EXPIRY_WINDOW_DAYS", "value", v)
			os.Exit(1)
		}
		core.SetExpiryWindowDays(days)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	itemService := core.NewItemService(pool)
	recipientService := core.NewRecipientService(pool)
	userService := core.NewUserService(pool)
	countryCode := os.Getenv("WHATSAPP_COUNTRY_CODE")
	notificationService := core.NewNotificationService(itemService, recipientService, countryCode)

	svc := app.NewAppService(itemService, recipientService, userService, notificationService, countryCode)

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		logger.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins, jwtSecret)

	logger.Info("server starting", "port", port, "expiry_window_days", core.ExpiryWindowDays())
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
