package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/pagewatch-dev/pagewatch/db"
	"github.com/pagewatch-dev/pagewatch/internal/checker"
	"github.com/pagewatch-dev/pagewatch/internal/config"
	"github.com/pagewatch-dev/pagewatch/internal/costmon"
	"github.com/pagewatch-dev/pagewatch/internal/handlers"
	"github.com/pagewatch-dev/pagewatch/internal/notifier"
	"github.com/pagewatch-dev/pagewatch/internal/ratelimit"
	"github.com/pagewatch-dev/pagewatch/internal/router"
	"github.com/pagewatch-dev/pagewatch/internal/scheduler"
	"github.com/pagewatch-dev/pagewatch/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	cfg, err := config.Load()

	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := db.ConnectDatabase(cfg.DatabaseDSN); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	monitorStore := store.NewMonitorStore(db.DB)
	checkStore := store.NewCheckStore(db.DB)
	recordStore := store.NewRecordStore(db.DB)
	usageStore := store.NewUsageStore(db.DB)

	guard := ratelimit.NewGuard(usageStore, cfg.SMS)

	var smsSender notifier.SMSSender

	if cfg.SMS.AccountSID != "" {
		smsSender = notifier.NewTwilioSender(cfg.SMS, cfg.IsProduction())
	} else {
		log.Println("No SMS provider configured, using dev sender")
		smsSender = notifier.NewDevSMSSender()
	}

	emailSender := notifier.NewResendSender(cfg.Email)
	dispatcher := notifier.NewDispatcher(recordStore, guard, emailSender, smsSender)

	chk := checker.New(monitorStore, checkStore, dispatcher, checker.NewHTTPFetcher(cfg.Fetch)).
		WithResultHook(handlers.BroadcastCheckResult)

	costs := costmon.New(usageStore, cfg.SMS, cfg.CostAlertThreshold)

	handlers.Init(cfg, chk, costs, usageStore, recordStore, checkStore)

	if err := scheduler.Initialize(chk); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer scheduler.Shutdown()

	r := router.NewRouter(cfg)

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
