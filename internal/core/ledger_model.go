package core

import "time"

// AdjustmentReason tags why a quantity changed.
type AdjustmentReason string

const (
	ReasonInitial     AdjustmentReason = "initial"      // opening stock at item creation
	ReasonManual      AdjustmentReason = "manual"       // caller-supplied delta
	ReasonRecount     AdjustmentReason = "recount"      // absolute quantity set
	ReasonTransferOut AdjustmentReason = "transfer_out" // source leg of a completed transfer
	ReasonTransferIn  AdjustmentReason = "transfer_in"  // destination leg of a completed transfer
)

// StockAdjustment is one append-only ledger entry. Entries are never updated
// or deleted; the latest entry's NewQuantity always equals the item's current
// quantity.
type StockAdjustment struct {
	ID               int              `json:"id"`
	ItemID           int              `json:"item_id"`
	PreviousQuantity int              `json:"previous_quantity"`
	NewQuantity      int              `json:"new_quantity"`
	Delta            int              `json:"delta"`
	Reason           AdjustmentReason `json:"reason"`
	PerformedBy      int              `json:"performed_by"`
	Notes            string           `json:"notes,omitempty"`
	LocationType     *LocationType    `json:"location_type,omitempty"`
	LocationID       *int             `json:"location_id,omitempty"`
	TransferID       *int             `json:"transfer_id,omitempty"`
	AdjustmentDate   time.Time        `json:"adjustment_date"`
	CreatedAt        time.Time        `json:"created_at"`
}

// ClampQuantity applies a delta to a quantity, flooring at zero. Decrements
// below zero are silently floored rather than erroring; the recorded delta is
// the effective change (new minus previous).
func ClampQuantity(previous, delta int) int {
	n := previous + delta
	if n < 0 {
		return 0
	}
	return n
}

// AdjustmentFilter narrows a ledger listing. A zero Limit means no truncation.
type AdjustmentFilter struct {
	ItemID     *int
	Reason     *AdjustmentReason
	TransferID *int
	Limit      int
}
