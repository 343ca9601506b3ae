// app is the one-shot admin CLI. It reads ORG_CODE from the environment
// (falling back to the first positional argument form: app <org> <command>)
// and dispatches to the cli adapter.
package main

import (
	"context"
	"log"
	"os"

	"fieldstock/internal/adapters/cli"
	"fieldstock/internal/app"
	"fieldstock/internal/core"
	"fieldstock/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	orgCode := os.Getenv("ORG_CODE")
	args := os.Args[1:]
	if orgCode == "" && len(args) >= 2 {
		orgCode, args = args[0], args[1:]
	}
	if orgCode == "" || len(args) == 0 {
		log.Fatal("Usage: app [<org>] <command> [args...]  (or set ORG_CODE)\nCommands: items, adjust, transfers, summary")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	ledger := core.NewStockLedger(pool)
	svc := app.NewAppService(
		pool,
		core.NewCatalogService(pool),
		ledger,
		core.NewTransferWorkflow(pool, ledger),
		core.NewReportingService(pool, ledger),
		core.NewLocationService(pool),
		core.NewVendorService(pool),
		core.NewUserService(pool),
		core.NopNotifier{},
	)

	cli.Run(ctx, svc, orgCode, args)
}
