package core

// Notifier is the narrow change-notification hook for callers that maintain
// derived views. Mutating operations already return the updated records;
// these events only tell an observer that something changed, never what to
// display. Implementations must not block.
type Notifier interface {
	// ItemChanged fires after an item's quantity or fields change.
	ItemChanged(orgID, itemID int)

	// TransferChanged fires after a transfer is created or transitions.
	TransferChanged(orgID, transferID int, status TransferStatus)
}

// NopNotifier discards all events.
type NopNotifier struct{}

func (NopNotifier) ItemChanged(int, int) {}

func (NopNotifier) TransferChanged(int, int, TransferStatus) {}
