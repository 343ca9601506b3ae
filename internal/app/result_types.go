package app

import "fieldstock/internal/core"

// ItemView pairs an item with its derived stock status so adapters never
// re-derive classification.
type ItemView struct {
	core.InventoryItem
	Status core.StockStatus `json:"status"`
}

func viewOf(it core.InventoryItem) ItemView {
	return ItemView{InventoryItem: it, Status: it.StockStatus()}
}

// ItemResult wraps a single item.
type ItemResult struct {
	Item ItemView `json:"item"`
}

// ItemListResult wraps a catalog listing.
type ItemListResult struct {
	Items []ItemView `json:"items"`
}

// AdjustmentResult returns both sides of a stock adjustment: the updated
// item and the appended ledger entry.
type AdjustmentResult struct {
	Item       ItemView             `json:"item"`
	Adjustment core.StockAdjustment `json:"adjustment"`
}

// AdjustmentListResult wraps a ledger listing.
type AdjustmentListResult struct {
	Adjustments []core.StockAdjustment `json:"adjustments"`
}

// TransferResult wraps a single transfer (items included).
type TransferResult struct {
	Transfer core.Transfer `json:"transfer"`
}

// TransferListResult wraps a transfer listing.
type TransferListResult struct {
	Transfers []core.Transfer `json:"transfers"`
}

// TransferItemsResult wraps the item lines of one transfer.
type TransferItemsResult struct {
	Items []core.TransferItem `json:"items"`
}

// SummaryResult is the dashboard snapshot plus the org it describes.
type SummaryResult struct {
	OrgCode string                `json:"org_code"`
	OrgName string                `json:"org_name"`
	Summary core.InventorySummary `json:"summary"`
}

// LocationListResult wraps a location listing.
type LocationListResult struct {
	Locations []core.Location `json:"locations"`
}

// VendorListResult wraps a vendor listing.
type VendorListResult struct {
	Vendors []core.Vendor `json:"vendors"`
}

// UserListResult wraps a user listing.
type UserListResult struct {
	Users []core.User `json:"users"`
}
