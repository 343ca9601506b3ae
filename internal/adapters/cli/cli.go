package cli

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"fieldstock/internal/app"
)

// Run executes a one-shot CLI command against an org and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, orgCode string, args []string) {
	switch args[0] {
	case "items", "ls":
		req := app.ItemListRequest{}
		if len(args) > 1 {
			req.Search = args[1]
		}
		result, err := svc.ListItems(ctx, orgCode, req)
		if err != nil {
			log.Fatalf("Failed to list items: %v", err)
		}
		printItems(orgCode, result)

	case "adjust", "adj":
		if len(args) < 4 {
			log.Fatal("Usage: app adjust <item-id> <delta> <user-id> [notes]")
		}
		itemID, err1 := strconv.Atoi(args[1])
		delta, err2 := strconv.Atoi(args[2])
		userID, err3 := strconv.Atoi(args[3])
		if err1 != nil || err2 != nil || err3 != nil {
			log.Fatal("item-id, delta, and user-id must be integers")
		}
		req := app.AdjustStockRequest{ItemID: itemID, Delta: &delta, PerformedBy: userID}
		if len(args) > 4 {
			req.Notes = strings.Join(args[4:], " ")
		}
		result, err := svc.AdjustStock(ctx, orgCode, req)
		if err != nil {
			log.Fatalf("Adjustment failed: %v", err)
		}
		fmt.Printf("%s: %d -> %d (%s)\n",
			result.Item.Name, result.Adjustment.PreviousQuantity,
			result.Adjustment.NewQuantity, result.Item.Status)

	case "transfers", "tr":
		result, err := svc.ListTransfers(ctx, orgCode, app.TransferListRequest{})
		if err != nil {
			log.Fatalf("Failed to list transfers: %v", err)
		}
		printTransfers(orgCode, result)

	case "summary", "sum":
		result, err := svc.GetInventorySummary(ctx, orgCode)
		if err != nil {
			log.Fatalf("Failed to get summary: %v", err)
		}
		printSummary(result)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: items, adjust, transfers, summary", args[0])
	}
}

func printItems(orgCode string, result *app.ItemListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  INVENTORY — %s\n", orgCode)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-5s %-10s %-28s %8s %-14s\n", "ID", "SKU", "NAME", "QTY", "STATUS")
	fmt.Println(strings.Repeat("-", 72))
	for _, it := range result.Items {
		sku := "-"
		if it.SKU != nil {
			sku = *it.SKU
		}
		fmt.Printf("  %-5d %-10s %-28s %8d %-14s\n", it.ID, sku, it.Name, it.Quantity, it.Status)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printTransfers(orgCode string, result *app.TransferListResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  TRANSFERS — %s\n", orgCode)
	fmt.Println(strings.Repeat("=", 72))
	fmt.Printf("  %-5s %-22s %-22s %-12s\n", "ID", "FROM", "TO", "STATUS")
	fmt.Println(strings.Repeat("-", 72))
	for _, t := range result.Transfers {
		from := fmt.Sprintf("%s %d", t.Source.Type, t.Source.ID)
		to := fmt.Sprintf("%s %d", t.Destination.Type, t.Destination.ID)
		fmt.Printf("  %-5d %-22s %-22s %-12s\n", t.ID, from, to, t.Status)
	}
	fmt.Println(strings.Repeat("=", 72))
}

func printSummary(result *app.SummaryResult) {
	s := result.Summary
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  INVENTORY SUMMARY\n")
	fmt.Printf("  Org : %s — %s\n", result.OrgCode, result.OrgName)
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Items        : %d\n", s.TotalItems)
	fmt.Printf("  Total value  : %s\n", s.TotalValue.StringFixed(2))
	fmt.Printf("  Low stock    : %d\n", s.LowStockCount)
	fmt.Printf("  Out of stock : %d\n", s.OutOfStockCount)
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  %-24s %6s %8s %12s\n", "CATEGORY", "ITEMS", "QTY", "VALUE")
	for _, c := range s.Categories {
		fmt.Printf("  %-24s %6d %8d %12s\n", c.Category, c.ItemCount, c.TotalQuantity, c.TotalValue.StringFixed(2))
	}
	fmt.Println(strings.Repeat("=", 62))
}
