package core_test

import (
	"context"
	"os"
	"testing"

	"fieldstock/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Seed ids (TRUNCATE ... RESTART IDENTITY makes them deterministic):
// org 1 = ACME (user 1 Dana, user 2 Sam; locations 1 Main WH, 2 North Depot, 3 Van 1)
// org 2 = BETA (user 3 Riley; location 4 Beta WH)
const (
	orgAcme = 1
	orgBeta = 2

	userDana  = 1
	userSam   = 2
	userRiley = 3

	locMainWH = 1
	locDepot  = 2
	locVan    = 3
	locBetaWH = 4
)

func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	_ = godotenv.Load("../../.env")

	// Use a dedicated TEST database to avoid wiping the live app database.
	// Set TEST_DATABASE_URL in your .env or environment to run integration tests.
	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set — skipping integration test to protect live database")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, err = pool.Exec(ctx, `
		TRUNCATE TABLE stock_adjustments, transfer_items, transfers,
			inventory_items, vendors, locations, users, organizations
			RESTART IDENTITY CASCADE;

		INSERT INTO organizations (code, name) VALUES
		('ACME', 'Acme Field Services'),
		('BETA', 'Beta Plumbing');

		INSERT INTO users (org_id, name, email) VALUES
		(1, 'Dana Reyes', 'dana@acme.example'),
		(1, 'Sam Okafor', 'sam@acme.example'),
		(2, 'Riley Chen', 'riley@beta.example');

		INSERT INTO locations (org_id, type, name) VALUES
		(1, 'warehouse', 'Main Warehouse'),
		(1, 'warehouse', 'North Depot'),
		(1, 'vehicle',   'Service Van 1'),
		(2, 'warehouse', 'Beta Warehouse');
	`)
	if err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}

	return pool
}

func strp(s string) *string { return &s }

// mustCreateItem seeds one item through the catalog service.
func mustCreateItem(t *testing.T, ctx context.Context, catalog core.CatalogService, orgID int, input core.ItemInput) *core.InventoryItem {
	t.Helper()
	it, err := catalog.CreateItem(ctx, orgID, input, userDana)
	if err != nil {
		t.Fatalf("CreateItem(%s) failed: %v", input.Name, err)
	}
	return it
}

func TestCatalog_CreateRecordsOpeningStock(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)
	ledger := core.NewStockLedger(pool)

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		SKU:           strp("CHL-001"),
		Name:          "Chlorine Tablets",
		Category:      "Chemicals",
		LocationType:  core.LocationWarehouse,
		LocationID:    locMainWH,
		Quantity:      10,
		UnitCostCents: 500,
		MinimumStock:  intp(2),
	})

	if it.Quantity != 10 {
		t.Errorf("quantity = %d, want 10", it.Quantity)
	}
	if it.StockStatus() != core.StockIn {
		t.Errorf("status = %s, want in_stock", it.StockStatus())
	}

	// Opening stock must appear in the audit trail.
	adj, err := ledger.LatestAdjustment(ctx, it.ID)
	if err != nil {
		t.Fatalf("LatestAdjustment failed: %v", err)
	}
	if adj.Reason != core.ReasonInitial {
		t.Errorf("reason = %s, want initial", adj.Reason)
	}
	if adj.PreviousQuantity != 0 || adj.NewQuantity != 10 || adj.Delta != 10 {
		t.Errorf("adjustment = %d -> %d (delta %d), want 0 -> 10 (delta 10)",
			adj.PreviousQuantity, adj.NewQuantity, adj.Delta)
	}
}

func TestCatalog_CreateZeroStockHasNoLedgerEntry(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)
	ledger := core.NewStockLedger(pool)

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name:         "Empty Bin",
		LocationType: core.LocationWarehouse,
		LocationID:   locMainWH,
	})

	if _, err := ledger.LatestAdjustment(ctx, it.ID); !core.IsNotFound(err) {
		t.Errorf("expected NotFound for zero-stock item ledger, got %v", err)
	}
	if it.StockStatus() != core.StockOutOfStock {
		t.Errorf("status = %s, want out_of_stock", it.StockStatus())
	}
}

func TestCatalog_DuplicateSKURejected(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)

	input := core.ItemInput{
		SKU:          strp("DUP-01"),
		Name:         "First",
		LocationType: core.LocationWarehouse,
		LocationID:   locMainWH,
	}
	mustCreateItem(t, ctx, catalog, orgAcme, input)

	input.Name = "Second"
	if _, err := catalog.CreateItem(ctx, orgAcme, input, userDana); !core.IsValidation(err) {
		t.Errorf("expected validation error on duplicate SKU, got %v", err)
	}

	// SKU uniqueness is per stocking location: the same product stocked at
	// another warehouse or vehicle is a separate item row.
	input.LocationID = locDepot
	if _, err := catalog.CreateItem(ctx, orgAcme, input, userDana); err != nil {
		t.Errorf("same SKU at another location should succeed, got %v", err)
	}
	input.LocationType = core.LocationVehicle
	input.LocationID = locVan
	if _, err := catalog.CreateItem(ctx, orgAcme, input, userDana); err != nil {
		t.Errorf("same SKU on a vehicle should succeed, got %v", err)
	}

	// The same SKU in another org is fine.
	input.LocationType = core.LocationWarehouse
	input.LocationID = locBetaWH
	if _, err := catalog.CreateItem(ctx, orgBeta, input, userRiley); err != nil {
		t.Errorf("same SKU in another org should succeed, got %v", err)
	}
}

func TestCatalog_CreateValidation(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)

	cases := []struct {
		name  string
		input core.ItemInput
	}{
		{"missing name", core.ItemInput{LocationType: core.LocationWarehouse, LocationID: locMainWH}},
		{"negative quantity", core.ItemInput{Name: "X", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: -1}},
		{"negative cost", core.ItemInput{Name: "X", LocationType: core.LocationWarehouse, LocationID: locMainWH, UnitCostCents: -1}},
		{"location type mismatch", core.ItemInput{Name: "X", LocationType: core.LocationVehicle, LocationID: locMainWH}},
		{"negative minimum stock", core.ItemInput{Name: "X", LocationType: core.LocationWarehouse, LocationID: locMainWH, MinimumStock: intp(-1)}},
	}
	for _, tc := range cases {
		if _, err := catalog.CreateItem(ctx, orgAcme, tc.input, userDana); !core.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}

	// Unknown location is NotFound, not validation.
	_, err := catalog.CreateItem(ctx, orgAcme, core.ItemInput{
		Name: "X", LocationType: core.LocationWarehouse, LocationID: 9999,
	}, userDana)
	if !core.IsNotFound(err) {
		t.Errorf("expected NotFound for unknown location, got %v", err)
	}
}

func TestCatalog_OrgScoping(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name:         "Acme Only",
		LocationType: core.LocationWarehouse,
		LocationID:   locMainWH,
	})

	// Another org cannot see, update, or deactivate the item.
	if _, err := catalog.GetItem(ctx, orgBeta, it.ID); !core.IsNotFound(err) {
		t.Errorf("cross-org GetItem: expected NotFound, got %v", err)
	}
	if _, err := catalog.UpdateItem(ctx, orgBeta, it.ID, core.ItemUpdate{Name: "Stolen"}); !core.IsNotFound(err) {
		t.Errorf("cross-org UpdateItem: expected NotFound, got %v", err)
	}
	if err := catalog.DeactivateItem(ctx, orgBeta, it.ID); !core.IsNotFound(err) {
		t.Errorf("cross-org DeactivateItem: expected NotFound, got %v", err)
	}
}

func TestCatalog_UpdatePreservesQuantity(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		SKU:          strp("UPD-01"),
		Name:         "Before",
		Category:     "Tools",
		LocationType: core.LocationWarehouse,
		LocationID:   locMainWH,
		Quantity:     7,
	})

	updated, err := catalog.UpdateItem(ctx, orgAcme, it.ID, core.ItemUpdate{
		SKU:            strp("UPD-01"),
		Name:           "After",
		Category:       "Tools",
		UnitPriceCents: 1250,
		MinimumStock:   intp(3),
	})
	if err != nil {
		t.Fatalf("UpdateItem failed: %v", err)
	}

	if updated.Name != "After" || updated.UnitPriceCents != 1250 {
		t.Errorf("descriptive fields not updated: %+v", updated)
	}
	if updated.Quantity != 7 {
		t.Errorf("quantity changed by update: %d, want 7", updated.Quantity)
	}
}

func TestCatalog_UpdateRejectsUnknownVendor(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name:         "Skimmer Net",
		LocationType: core.LocationWarehouse,
		LocationID:   locMainWH,
	})

	_, err := catalog.UpdateItem(ctx, orgAcme, it.ID, core.ItemUpdate{
		Name:     "Skimmer Net",
		VendorID: intp(9999),
	})
	if !core.IsNotFound(err) {
		t.Errorf("expected not-found error for unknown vendor, got %v", err)
	}
}

func TestCatalog_ListFilters(t *testing.T) {
	pool := setupTestDB(t)
	defer pool.Close()
	ctx := context.Background()

	catalog := core.NewCatalogService(pool)

	mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		SKU: strp("CHL-001"), Name: "Chlorine Tablets", Category: "Chemicals",
		LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 3, MinimumStock: intp(5),
	})
	mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		SKU: strp("FLT-001"), Name: "Filter Cartridge", Category: "Parts",
		LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 20,
	})
	inactive := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Retired Pump", Category: "Parts",
		LocationType: core.LocationVehicle, LocationID: locVan,
	})
	if err := catalog.DeactivateItem(ctx, orgAcme, inactive.ID); err != nil {
		t.Fatalf("DeactivateItem failed: %v", err)
	}

	// Active only by default.
	items, err := catalog.ListItems(ctx, orgAcme, core.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("default list = %d items, want 2", len(items))
	}

	// Case-insensitive search over name.
	items, _ = catalog.ListItems(ctx, orgAcme, core.ItemFilter{Search: "chlorine"})
	if len(items) != 1 || items[0].Name != "Chlorine Tablets" {
		t.Errorf("search: got %+v, want only Chlorine Tablets", items)
	}

	// Category filter.
	items, _ = catalog.ListItems(ctx, orgAcme, core.ItemFilter{Category: "Parts"})
	if len(items) != 1 || items[0].Name != "Filter Cartridge" {
		t.Errorf("category filter: got %+v, want only Filter Cartridge", items)
	}

	// Derived-status filter.
	low := core.StockLow
	items, _ = catalog.ListItems(ctx, orgAcme, core.ItemFilter{Status: &low})
	if len(items) != 1 || items[0].Name != "Chlorine Tablets" {
		t.Errorf("status filter: got %+v, want only Chlorine Tablets", items)
	}

	// IncludeInactive brings back the retired item.
	items, _ = catalog.ListItems(ctx, orgAcme, core.ItemFilter{IncludeInactive: true})
	if len(items) != 3 {
		t.Errorf("include_inactive list = %d items, want 3", len(items))
	}
}
