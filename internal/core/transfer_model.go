package core

import "time"

// TransferStatus is the explicit lifecycle state of a transfer. Transitions
// are permitted only by the table below; there are no ad hoc status
// comparisons anywhere else.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferInTransit TransferStatus = "in_transit"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// transferTransitions is the single source of truth for legal status edges.
// Terminal states have no outgoing edges; re-issuing a terminal status is
// rejected, not silently accepted.
var transferTransitions = map[TransferStatus][]TransferStatus{
	TransferPending:   {TransferInTransit, TransferCancelled},
	TransferInTransit: {TransferCompleted, TransferCancelled},
	TransferCompleted: nil,
	TransferCancelled: nil,
}

// CanTransition reports whether the edge from -> to is legal.
func CanTransition(from, to TransferStatus) bool {
	for _, next := range transferTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status permits no further transitions.
func (s TransferStatus) IsTerminal() bool {
	return len(transferTransitions[s]) == 0
}

// ParseTransferStatus validates a transfer status string.
func ParseTransferStatus(s string) (TransferStatus, error) {
	switch TransferStatus(s) {
	case TransferPending, TransferInTransit, TransferCompleted, TransferCancelled:
		return TransferStatus(s), nil
	}
	return "", Invalidf("unknown transfer status %q", s)
}

// Transfer is a request to move stock between two locations. It owns its
// TransferItems; once the transfer leaves pending, the item list is frozen.
type Transfer struct {
	ID          int            `json:"id"`
	OrgID       int            `json:"org_id"`
	Source      LocationRef    `json:"source"`
	Destination LocationRef    `json:"destination"`
	Status      TransferStatus `json:"status"`
	RequestedBy int            `json:"requested_by"`
	RequestedAt time.Time      `json:"requested_at"`
	ApprovedBy  *int           `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time     `json:"approved_at,omitempty"`
	CompletedBy *int           `json:"completed_by,omitempty"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CancelledBy *int           `json:"cancelled_by,omitempty"`
	CancelledAt *time.Time     `json:"cancelled_at,omitempty"`
	Notes       string         `json:"notes,omitempty"`
	Items       []TransferItem `json:"items,omitempty"`
}

// TransferItem is one line of a transfer, referencing the source-location
// inventory item to move.
type TransferItem struct {
	ID         int    `json:"id"`
	TransferID int    `json:"transfer_id"`
	ItemID     int    `json:"item_id"`
	Quantity   int    `json:"quantity"`
	Notes      string `json:"notes,omitempty"`

	// Joined fields (not always populated).
	ItemName string  `json:"item_name,omitempty"`
	ItemSKU  *string `json:"item_sku,omitempty"`
}

// TransferItemInput is one requested line when creating a transfer.
type TransferItemInput struct {
	ItemID   int
	Quantity int
	Notes    string
}

// TransferInput holds the fields for creating a transfer.
type TransferInput struct {
	Source      LocationRef
	Destination LocationRef
	Items       []TransferItemInput
	RequestedBy int
	Notes       string
}

// TransferFilter narrows a transfer listing.
type TransferFilter struct {
	Status       *TransferStatus
	LocationType *LocationType
	LocationID   *int
}
