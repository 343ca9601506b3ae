package main

import (
	"context"
	"log"
	"net/http"
	"os"

	webAdapter "fieldstock/internal/adapters/web"
	"fieldstock/internal/app"
	"fieldstock/internal/core"
	"fieldstock/internal/db"

	"github.com/joho/godotenv"
)

// logNotifier logs inventory change events. A cache or websocket layer can
// replace it without touching the application service.
type logNotifier struct{}

func (logNotifier) ItemChanged(orgID, itemID int) {
	log.Printf("item changed: org=%d item=%d", orgID, itemID)
}

func (logNotifier) TransferChanged(orgID, transferID int, status core.TransferStatus) {
	log.Printf("transfer changed: org=%d transfer=%d status=%s", orgID, transferID, status)
}

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	catalog := core.NewCatalogService(pool)
	ledger := core.NewStockLedger(pool)
	transfers := core.NewTransferWorkflow(pool, ledger)
	reporting := core.NewReportingService(pool, ledger)
	locations := core.NewLocationService(pool)
	vendors := core.NewVendorService(pool)
	users := core.NewUserService(pool)

	svc := app.NewAppService(pool, catalog, ledger, transfers, reporting, locations, vendors, users, logNotifier{})

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(svc, allowedOrigins)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}
