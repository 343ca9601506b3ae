package core

import (
	"strings"
	"time"
)

// StockStatus is the derived classification of an item's quantity against
// its thresholds.
type StockStatus string

const (
	StockOutOfStock StockStatus = "out_of_stock"
	StockLow        StockStatus = "low_stock"
	StockIn         StockStatus = "in_stock"
)

// ParseStockStatus validates a stock status string.
func ParseStockStatus(s string) (StockStatus, error) {
	switch StockStatus(s) {
	case StockOutOfStock, StockLow, StockIn:
		return StockStatus(s), nil
	}
	return "", Invalidf("unknown stock status %q", s)
}

// InventoryItem is one stocked product at one location. Quantity is mutated
// exclusively through the StockLedger; Version backs the ledger's
// compare-and-swap.
type InventoryItem struct {
	ID             int          `json:"id"`
	OrgID          int          `json:"org_id"`
	SKU            *string      `json:"sku,omitempty"`
	Name           string       `json:"name"`
	Description    string       `json:"description,omitempty"`
	Category       string       `json:"category,omitempty"`
	LocationType   LocationType `json:"location_type"`
	LocationID     int          `json:"location_id"`
	VendorID       *int         `json:"vendor_id,omitempty"`
	Quantity       int          `json:"quantity"`
	UnitCostCents  int64        `json:"unit_cost_cents"`
	UnitPriceCents int64        `json:"unit_price_cents"`
	MinimumStock   *int         `json:"minimum_stock,omitempty"`
	ReorderPoint   *int         `json:"reorder_point,omitempty"`
	IsActive       bool         `json:"is_active"`
	Version        int          `json:"version"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// StockStatus classifies the item's current quantity.
func (it *InventoryItem) StockStatus() StockStatus {
	return ClassifyStock(it.Quantity, it.MinimumStock, it.ReorderPoint)
}

// ClassifyStock derives the stock status for a quantity against the two
// optional thresholds. The larger of minimum stock and reorder point governs
// low-stock alerting; zero-or-below always wins over threshold comparison.
func ClassifyStock(quantity int, minimumStock, reorderPoint *int) StockStatus {
	threshold := 0
	if minimumStock != nil && *minimumStock > threshold {
		threshold = *minimumStock
	}
	if reorderPoint != nil && *reorderPoint > threshold {
		threshold = *reorderPoint
	}
	switch {
	case quantity <= 0:
		return StockOutOfStock
	case threshold > 0 && quantity <= threshold:
		return StockLow
	default:
		return StockIn
	}
}

// ItemInput holds the fields for creating an inventory item. Quantity here is
// the opening stock; it is recorded as an initial ledger adjustment so the
// audit trail covers the item's whole life.
type ItemInput struct {
	SKU            *string
	Name           string
	Description    string
	Category       string
	LocationType   LocationType
	LocationID     int
	VendorID       *int
	Quantity       int
	UnitCostCents  int64
	UnitPriceCents int64
	MinimumStock   *int
	ReorderPoint   *int
}

// ItemUpdate holds the writable descriptive fields of an item. Quantity is
// deliberately absent: direct quantity edits go through the ledger's
// SetQuantity so every change is audited.
type ItemUpdate struct {
	SKU            *string
	Name           string
	Description    string
	Category       string
	VendorID       *int
	UnitCostCents  int64
	UnitPriceCents int64
	MinimumStock   *int
	ReorderPoint   *int
}

// ItemFilter narrows a catalog listing. Search matches name, SKU, and
// description case-insensitively; Category is an exact match; Status filters
// on the derived classification.
type ItemFilter struct {
	Search          string
	Category        string
	Status          *StockStatus
	LocationType    *LocationType
	LocationID      *int
	IncludeInactive bool
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return Invalidf("item name is required")
	}
	if input.Quantity < 0 {
		return Invalidf("item quantity cannot be negative, got %d", input.Quantity)
	}
	return validateItemFields(input.UnitCostCents, input.UnitPriceCents, input.MinimumStock, input.ReorderPoint)
}

func validateItemUpdate(update ItemUpdate) error {
	if strings.TrimSpace(update.Name) == "" {
		return Invalidf("item name is required")
	}
	return validateItemFields(update.UnitCostCents, update.UnitPriceCents, update.MinimumStock, update.ReorderPoint)
}

func validateItemFields(unitCost, unitPrice int64, minimumStock, reorderPoint *int) error {
	if unitCost < 0 {
		return Invalidf("unit cost cannot be negative, got %d", unitCost)
	}
	if unitPrice < 0 {
		return Invalidf("unit price cannot be negative, got %d", unitPrice)
	}
	if minimumStock != nil && *minimumStock < 0 {
		return Invalidf("minimum stock cannot be negative, got %d", *minimumStock)
	}
	if reorderPoint != nil && *reorderPoint < 0 {
		return Invalidf("reorder point cannot be negative, got %d", *reorderPoint)
	}
	return nil
}
