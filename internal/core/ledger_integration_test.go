package core_test

import (
	"context"
	"sync"
	"testing"

	"fieldstock/internal/core"
)

func setupLedgerTest(t *testing.T) (core.CatalogService, core.StockLedger, context.Context, func()) {
	t.Helper()
	pool := setupTestDB(t)
	return core.NewCatalogService(pool), core.NewStockLedger(pool), context.Background(), pool.Close
}

func TestLedger_DeltaAdjustment(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Gasket", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 10,
	})

	adj, updated, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, -3, core.ReasonManual, userDana, "used on job", "2026-04-01")
	if err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}

	if updated.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", updated.Quantity)
	}
	if adj.PreviousQuantity != 10 || adj.NewQuantity != 7 || adj.Delta != -3 {
		t.Errorf("adjustment = %d -> %d (delta %d), want 10 -> 7 (delta -3)",
			adj.PreviousQuantity, adj.NewQuantity, adj.Delta)
	}
	if got := adj.AdjustmentDate.Format("2006-01-02"); got != "2026-04-01" {
		t.Errorf("adjustment date = %s, want 2026-04-01", got)
	}
	if updated.Version != it.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, it.Version+1)
	}
}

func TestLedger_ClampsBelowZero(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "O-Ring", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 4,
	})

	// Removing more than on hand floors at zero; the recorded delta is the
	// effective change.
	adj, updated, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, -10, core.ReasonManual, userDana, "", "")
	if err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}
	if updated.Quantity != 0 {
		t.Errorf("quantity = %d, want 0", updated.Quantity)
	}
	if adj.Delta != -4 || adj.NewQuantity != 0 {
		t.Errorf("adjustment delta = %d, new = %d; want -4, 0", adj.Delta, adj.NewQuantity)
	}
}

func TestLedger_SetQuantity(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Valve", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 12,
	})

	adj, updated, err := ledger.SetQuantity(ctx, orgAcme, it.ID, 9, userSam, "cycle count", "")
	if err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if updated.Quantity != 9 {
		t.Errorf("quantity = %d, want 9", updated.Quantity)
	}
	if adj.Reason != core.ReasonRecount || adj.Delta != -3 {
		t.Errorf("adjustment = %s delta %d, want recount delta -3", adj.Reason, adj.Delta)
	}

	if _, _, err := ledger.SetQuantity(ctx, orgAcme, it.ID, -1, userSam, "", ""); !core.IsValidation(err) {
		t.Errorf("negative absolute quantity: expected validation error, got %v", err)
	}
}

func TestLedger_Validation(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Hose", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 2,
	})

	if _, _, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, 0, core.ReasonManual, userDana, "", ""); !core.IsValidation(err) {
		t.Errorf("zero delta: expected validation error, got %v", err)
	}
	if _, _, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, 1, core.ReasonTransferIn, userDana, "", ""); !core.IsValidation(err) {
		t.Errorf("reserved reason: expected validation error, got %v", err)
	}
	if _, _, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, 1, core.ReasonManual, userDana, "", "04/01/2026"); !core.IsValidation(err) {
		t.Errorf("bad date: expected validation error, got %v", err)
	}
	if _, _, err := ledger.ApplyAdjustment(ctx, orgBeta, it.ID, 1, core.ReasonManual, userRiley, "", ""); !core.IsNotFound(err) {
		t.Errorf("cross-org adjustment: expected NotFound, got %v", err)
	}
	if _, _, err := ledger.ApplyAdjustment(ctx, orgAcme, 9999, 1, core.ReasonManual, userDana, "", ""); !core.IsNotFound(err) {
		t.Errorf("unknown item: expected NotFound, got %v", err)
	}
}

// The defining ledger invariant: after any series of writes, the newest
// entry's new_quantity equals the item's current quantity.
func TestLedger_LatestEntryMatchesItem(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Pool Brush", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 5,
	})

	writes := []struct {
		delta    int
		absolute *int
	}{
		{delta: 4}, {delta: -2}, {absolute: intp(20)}, {delta: -25}, {delta: 1},
	}
	for _, wr := range writes {
		var err error
		if wr.absolute != nil {
			_, _, err = ledger.SetQuantity(ctx, orgAcme, it.ID, *wr.absolute, userDana, "", "")
		} else {
			_, _, err = ledger.ApplyAdjustment(ctx, orgAcme, it.ID, wr.delta, core.ReasonManual, userDana, "", "")
		}
		if err != nil {
			t.Fatalf("write %+v failed: %v", wr, err)
		}

		current, err := catalog.GetItem(ctx, orgAcme, it.ID)
		if err != nil {
			t.Fatalf("GetItem failed: %v", err)
		}
		latest, err := ledger.LatestAdjustment(ctx, it.ID)
		if err != nil {
			t.Fatalf("LatestAdjustment failed: %v", err)
		}
		if latest.NewQuantity != current.Quantity {
			t.Fatalf("after %+v: latest entry new_quantity %d != item quantity %d",
				wr, latest.NewQuantity, current.Quantity)
		}
	}
}

func TestLedger_ConcurrentAdjustmentsAllLand(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Test Strips", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 100,
	})

	// Each write re-reads under the transaction, so every committed delta
	// must land; writers that lose the compare-and-swap surface a conflict
	// instead of silently overwriting.
	const workers = 8
	var wg sync.WaitGroup
	conflicts := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, -1, core.ReasonManual, userDana, "", "")
			if err != nil {
				conflicts <- err
			}
		}()
	}
	wg.Wait()
	close(conflicts)

	failed := 0
	for err := range conflicts {
		if !core.IsConflict(err) {
			t.Fatalf("unexpected concurrent write error: %v", err)
		}
		failed++
	}

	current, err := catalog.GetItem(ctx, orgAcme, it.ID)
	if err != nil {
		t.Fatalf("GetItem failed: %v", err)
	}
	if want := 100 - (workers - failed); current.Quantity != want {
		t.Errorf("quantity = %d, want %d (%d conflicts)", current.Quantity, want, failed)
	}

	latest, err := ledger.LatestAdjustment(ctx, it.ID)
	if err != nil {
		t.Fatalf("LatestAdjustment failed: %v", err)
	}
	if latest.NewQuantity != current.Quantity {
		t.Errorf("latest entry new_quantity %d != item quantity %d", latest.NewQuantity, current.Quantity)
	}
}

func TestLedger_ListAdjustmentsNewestFirst(t *testing.T) {
	catalog, ledger, ctx, closePool := setupLedgerTest(t)
	defer closePool()

	it := mustCreateItem(t, ctx, catalog, orgAcme, core.ItemInput{
		Name: "Skimmer Net", LocationType: core.LocationWarehouse, LocationID: locMainWH, Quantity: 6,
	})
	if _, _, err := ledger.ApplyAdjustment(ctx, orgAcme, it.ID, 2, core.ReasonManual, userDana, "", ""); err != nil {
		t.Fatalf("ApplyAdjustment failed: %v", err)
	}
	if _, _, err := ledger.SetQuantity(ctx, orgAcme, it.ID, 5, userSam, "", ""); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}

	adjustments, err := ledger.ListAdjustments(ctx, orgAcme, core.AdjustmentFilter{ItemID: &it.ID})
	if err != nil {
		t.Fatalf("ListAdjustments failed: %v", err)
	}
	if len(adjustments) != 3 {
		t.Fatalf("got %d adjustments, want 3 (initial + manual + recount)", len(adjustments))
	}
	if adjustments[0].Reason != core.ReasonRecount || adjustments[2].Reason != core.ReasonInitial {
		t.Errorf("order wrong: got %s ... %s, want recount first, initial last",
			adjustments[0].Reason, adjustments[2].Reason)
	}

	recount := core.ReasonRecount
	filtered, err := ledger.ListAdjustments(ctx, orgAcme, core.AdjustmentFilter{Reason: &recount})
	if err != nil {
		t.Fatalf("ListAdjustments(reason) failed: %v", err)
	}
	if len(filtered) != 1 {
		t.Errorf("reason filter: got %d entries, want 1", len(filtered))
	}

	limited, err := ledger.ListAdjustments(ctx, orgAcme, core.AdjustmentFilter{ItemID: &it.ID, Limit: 2})
	if err != nil {
		t.Fatalf("ListAdjustments(limit) failed: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("limit: got %d entries, want 2", len(limited))
	}
}
