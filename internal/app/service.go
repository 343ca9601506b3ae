package app

import (
	"context"

	"fieldstock/internal/core"
)

// ApplicationService is the single request/response boundary all adapters
// (web, CLI, tests) call into. It decouples presentation from the inventory
// core: implementations contain no display logic. Every mutating call
// carries the acting user's id; callers own authentication.
type ApplicationService interface {
	// ListItems returns catalog items for an org, with derived stock status.
	ListItems(ctx context.Context, orgCode string, req ItemListRequest) (*ItemListResult, error)

	// GetItem returns one item by id.
	GetItem(ctx context.Context, orgCode string, itemID int) (*ItemResult, error)

	// CreateItem creates a catalog item; opening stock is recorded in the
	// ledger. Fails with a validation error on negative quantity or a
	// missing name.
	CreateItem(ctx context.Context, orgCode string, req CreateItemRequest) (*ItemResult, error)

	// UpdateItem replaces an item's descriptive fields. Quantity cannot be
	// edited here; use AdjustStock.
	UpdateItem(ctx context.Context, orgCode string, itemID int, req UpdateItemRequest) (*ItemResult, error)

	// DeactivateItem soft-deletes an item.
	DeactivateItem(ctx context.Context, orgCode string, itemID, actingUser int) error

	// AdjustStock applies a delta or an absolute quantity to an item through
	// the ledger and returns both the updated item and the adjustment entry.
	AdjustStock(ctx context.Context, orgCode string, req AdjustStockRequest) (*AdjustmentResult, error)

	// ListAdjustments returns ledger entries, newest first.
	ListAdjustments(ctx context.Context, orgCode string, req AdjustmentListRequest) (*AdjustmentListResult, error)

	// CreateTransfer creates a pending transfer between two locations.
	CreateTransfer(ctx context.Context, orgCode string, req CreateTransferRequest) (*TransferResult, error)

	// GetTransfer returns one transfer with its items.
	GetTransfer(ctx context.Context, orgCode string, transferID int) (*TransferResult, error)

	// ListTransfers returns transfers matching the filter, newest first.
	ListTransfers(ctx context.Context, orgCode string, req TransferListRequest) (*TransferListResult, error)

	// TransitionTransfer advances a transfer's status. Completion moves the
	// stock through the ledger.
	TransitionTransfer(ctx context.Context, orgCode string, transferID int, newStatus string, actingUser int) (*TransferResult, error)

	// GetTransferItems returns the item lines of a transfer.
	GetTransferItems(ctx context.Context, orgCode string, transferID int) (*TransferItemsResult, error)

	// GetInventorySummary returns the dashboard snapshot for an org.
	GetInventorySummary(ctx context.Context, orgCode string) (*SummaryResult, error)

	// ListLocations returns active warehouses and vehicles.
	ListLocations(ctx context.Context, orgCode string, locType string) (*LocationListResult, error)

	// CreateLocation registers a warehouse or vehicle.
	CreateLocation(ctx context.Context, orgCode string, req CreateLocationRequest) (*core.Location, error)

	// ListVendors returns all active vendors.
	ListVendors(ctx context.Context, orgCode string) (*VendorListResult, error)

	// ListUsers returns the org's users, active first.
	ListUsers(ctx context.Context, orgCode string) (*UserListResult, error)

	// CreateVendor creates a vendor record.
	CreateVendor(ctx context.Context, orgCode string, req CreateVendorRequest) (*core.Vendor, error)
}
