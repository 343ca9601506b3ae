package app

// ItemListRequest filters a catalog listing. Search is a case-insensitive
// substring match over name/SKU/description; Category and Status are exact.
type ItemListRequest struct {
	Search          string
	Category        string
	Status          string // out_of_stock | low_stock | in_stock; empty = all
	IncludeInactive bool
}

// CreateItemRequest is the input for creating an inventory item.
type CreateItemRequest struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	LocationType   string `json:"location_type"`
	LocationID     int    `json:"location_id"`
	VendorID       *int   `json:"vendor_id"`
	Quantity       int    `json:"quantity"`
	UnitCostCents  int64  `json:"unit_cost_cents"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	MinimumStock   *int   `json:"minimum_stock"`
	ReorderPoint   *int   `json:"reorder_point"`
	PerformedBy    int    `json:"performed_by"`
}

// UpdateItemRequest is the input for replacing an item's descriptive fields.
// Quantity is deliberately absent.
type UpdateItemRequest struct {
	SKU            string `json:"sku"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	VendorID       *int   `json:"vendor_id"`
	UnitCostCents  int64  `json:"unit_cost_cents"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	MinimumStock   *int   `json:"minimum_stock"`
	ReorderPoint   *int   `json:"reorder_point"`
}

// AdjustStockRequest applies a quantity change to one item. Exactly one of
// Delta and Absolute must be set. Date is YYYY-MM-DD; empty means today.
type AdjustStockRequest struct {
	ItemID      int    `json:"item_id"`
	Delta       *int   `json:"delta"`
	Absolute    *int   `json:"absolute"`
	Reason      string `json:"reason"`
	Notes       string `json:"notes"`
	Date        string `json:"date"`
	PerformedBy int    `json:"performed_by"`
}

// AdjustmentListRequest filters a ledger listing.
type AdjustmentListRequest struct {
	ItemID     *int
	Reason     string
	TransferID *int
	Limit      int
}

// TransferLineRequest is one requested line of a new transfer.
type TransferLineRequest struct {
	ItemID   int    `json:"item_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

// CreateTransferRequest is the input for creating a transfer.
type CreateTransferRequest struct {
	SourceType      string                `json:"source_type"`
	SourceID        int                   `json:"source_id"`
	DestinationType string                `json:"destination_type"`
	DestinationID   int                   `json:"destination_id"`
	Items           []TransferLineRequest `json:"items"`
	Notes           string                `json:"notes"`
	RequestedBy     int                   `json:"requested_by"`
}

// TransferListRequest filters a transfer listing.
type TransferListRequest struct {
	Status       string
	LocationType string
	LocationID   *int
}

// CreateLocationRequest registers a warehouse or vehicle.
type CreateLocationRequest struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// CreateVendorRequest is the input for creating a vendor.
type CreateVendorRequest struct {
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
}
