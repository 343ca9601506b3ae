package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TransferWorkflow governs the movement of stock between locations. Status
// only advances along the transition table; stock actually moves at
// completion, through the StockLedger, one leg at a time.
type TransferWorkflow interface {
	// CreateTransfer creates a transfer in pending with its item lines.
	CreateTransfer(ctx context.Context, orgID int, input TransferInput) (*Transfer, error)

	// GetTransfer returns a transfer with its items.
	GetTransfer(ctx context.Context, orgID, transferID int) (*Transfer, error)

	// ListTransfers returns transfers matching the filter, newest first.
	ListTransfers(ctx context.Context, orgID int, filter TransferFilter) ([]Transfer, error)

	// GetTransferItems returns the item lines of a transfer.
	GetTransferItems(ctx context.Context, orgID, transferID int) ([]TransferItem, error)

	// Transition moves a transfer to newStatus. Illegal edges surface
	// InvalidTransitionError; a failed completion (e.g. insufficient source
	// stock) leaves the transfer in its prior state.
	Transition(ctx context.Context, orgID, transferID int, newStatus TransferStatus, actingUser int) (*Transfer, error)
}

type transferWorkflow struct {
	pool   *pgxpool.Pool
	ledger StockLedger
}

func NewTransferWorkflow(pool *pgxpool.Pool, ledger StockLedger) TransferWorkflow {
	return &transferWorkflow{pool: pool, ledger: ledger}
}

func (w *transferWorkflow) CreateTransfer(ctx context.Context, orgID int, input TransferInput) (*Transfer, error) {
	if input.Source.Equal(input.Destination) {
		return nil, Invalidf("source and destination must differ")
	}
	if len(input.Items) == 0 {
		return nil, Invalidf("transfer must have at least one item")
	}
	if input.RequestedBy <= 0 {
		return nil, Invalidf("requested_by user id is required")
	}
	for i, line := range input.Items {
		if line.Quantity <= 0 {
			return nil, Invalidf("line %d: transfer quantity must be positive, got %d", i+1, line.Quantity)
		}
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lookupLocation(ctx, tx, orgID, input.Source); err != nil {
		return nil, err
	}
	if _, err := lookupLocation(ctx, tx, orgID, input.Destination); err != nil {
		return nil, err
	}

	// Every line must reference an active item stocked at the source location.
	for i, line := range input.Items {
		it, err := fetchItem(ctx, tx, orgID, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		if !it.IsActive {
			return nil, Invalidf("line %d: item %d (%s) is inactive", i+1, it.ID, it.Name)
		}
		if it.LocationType != input.Source.Type || it.LocationID != input.Source.ID {
			return nil, Invalidf("line %d: item %d (%s) is not stocked at the source location", i+1, it.ID, it.Name)
		}
	}

	var transferID int
	err = tx.QueryRow(ctx, `
		INSERT INTO transfers (
			org_id, source_type, source_id, destination_type, destination_id,
			status, requested_by, requested_at, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), $8)
		RETURNING id
	`, orgID, input.Source.Type, input.Source.ID, input.Destination.Type, input.Destination.ID,
		TransferPending, input.RequestedBy, input.Notes).Scan(&transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transfer: %w", err)
	}

	for i, line := range input.Items {
		_, err = tx.Exec(ctx, `
			INSERT INTO transfer_items (transfer_id, item_id, quantity, notes)
			VALUES ($1, $2, $3, $4)
		`, transferID, line.ItemID, line.Quantity, line.Notes)
		if err != nil {
			return nil, fmt.Errorf("failed to insert transfer line %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer creation: %w", err)
	}

	return w.GetTransfer(ctx, orgID, transferID)
}

const transferColumns = `
	id, org_id, source_type, source_id, destination_type, destination_id,
	status, requested_by, requested_at, approved_by, approved_at,
	completed_by, completed_at, cancelled_by, cancelled_at, notes`

func scanTransfer(row pgx.Row) (*Transfer, error) {
	var t Transfer
	err := row.Scan(
		&t.ID, &t.OrgID, &t.Source.Type, &t.Source.ID, &t.Destination.Type, &t.Destination.ID,
		&t.Status, &t.RequestedBy, &t.RequestedAt, &t.ApprovedBy, &t.ApprovedAt,
		&t.CompletedBy, &t.CompletedAt, &t.CancelledBy, &t.CancelledAt, &t.Notes,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (w *transferWorkflow) GetTransfer(ctx context.Context, orgID, transferID int) (*Transfer, error) {
	t, err := scanTransfer(w.pool.QueryRow(ctx,
		"SELECT"+transferColumns+" FROM transfers WHERE id = $1 AND org_id = $2",
		transferID, orgID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("transfer %d not found", transferID)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", transferID, err)
	}

	items, err := fetchTransferItems(ctx, w.pool, transferID)
	if err != nil {
		return nil, err
	}
	t.Items = items
	return t, nil
}

func (w *transferWorkflow) ListTransfers(ctx context.Context, orgID int, filter TransferFilter) ([]Transfer, error) {
	query := "SELECT" + transferColumns + " FROM transfers WHERE org_id = $1"
	args := []any{orgID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.LocationType != nil && filter.LocationID != nil {
		args = append(args, *filter.LocationType, *filter.LocationID)
		n := len(args)
		query += fmt.Sprintf(
			" AND ((source_type = $%d AND source_id = $%d) OR (destination_type = $%d AND destination_id = $%d))",
			n-1, n, n-1, n)
	}
	query += " ORDER BY id DESC"

	rows, err := w.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, *t)
	}
	return transfers, rows.Err()
}

func (w *transferWorkflow) GetTransferItems(ctx context.Context, orgID, transferID int) ([]TransferItem, error) {
	var exists bool
	err := w.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM transfers WHERE id = $1 AND org_id = $2)",
		transferID, orgID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve transfer %d: %w", transferID, err)
	}
	if !exists {
		return nil, NotFoundf("transfer %d not found", transferID)
	}
	return fetchTransferItems(ctx, w.pool, transferID)
}

func fetchTransferItems(ctx context.Context, q pgxRowQuerier, transferID int) ([]TransferItem, error) {
	rows, err := q.Query(ctx, `
		SELECT ti.id, ti.transfer_id, ti.item_id, ti.quantity, ti.notes, i.name, i.sku
		FROM transfer_items ti
		JOIN inventory_items i ON i.id = ti.item_id
		WHERE ti.transfer_id = $1
		ORDER BY ti.id
	`, transferID)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfer items: %w", err)
	}
	defer rows.Close()

	var items []TransferItem
	for rows.Next() {
		var ti TransferItem
		if err := rows.Scan(&ti.ID, &ti.TransferID, &ti.ItemID, &ti.Quantity, &ti.Notes, &ti.ItemName, &ti.ItemSKU); err != nil {
			return nil, fmt.Errorf("failed to scan transfer item: %w", err)
		}
		items = append(items, ti)
	}
	return items, rows.Err()
}

func (w *transferWorkflow) Transition(ctx context.Context, orgID, transferID int, newStatus TransferStatus, actingUser int) (*Transfer, error) {
	if actingUser <= 0 {
		return nil, Invalidf("acting user id is required")
	}
	if _, err := ParseTransferStatus(string(newStatus)); err != nil {
		return nil, err
	}

	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Row lock serializes concurrent transitions on the same transfer.
	t, err := scanTransfer(tx.QueryRow(ctx,
		"SELECT"+transferColumns+" FROM transfers WHERE id = $1 AND org_id = $2 FOR UPDATE",
		transferID, orgID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("transfer %d not found", transferID)
		}
		return nil, fmt.Errorf("failed to fetch transfer %d: %w", transferID, err)
	}

	if !CanTransition(t.Status, newStatus) {
		return nil, &InvalidTransitionError{From: t.Status, To: newStatus}
	}

	switch newStatus {
	case TransferInTransit:
		_, err = tx.Exec(ctx, `
			UPDATE transfers
			SET status = $1, approved_by = $2, approved_at = NOW()
			WHERE id = $3
		`, TransferInTransit, actingUser, transferID)

	case TransferCancelled:
		_, err = tx.Exec(ctx, `
			UPDATE transfers
			SET status = $1, cancelled_by = $2, cancelled_at = NOW()
			WHERE id = $3
		`, TransferCancelled, actingUser, transferID)

	case TransferCompleted:
		if err := w.completeTransfer(ctx, tx, t, actingUser); err != nil {
			return nil, err
		}
		_, err = tx.Exec(ctx, `
			UPDATE transfers
			SET status = $1, completed_by = $2, completed_at = NOW()
			WHERE id = $3
		`, TransferCompleted, actingUser, transferID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition transfer %d to %s: %w", transferID, newStatus, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transition: %w", err)
	}

	return w.GetTransfer(ctx, orgID, transferID)
}

// completeTransfer moves stock for every line: strict source decrement, then
// destination increment, each an independent ledger transaction (this is not
// a distributed transaction). A leg failure leaves earlier lines committed
// and the transfer in its prior status because the surrounding status update
// rolls back; re-issuing the completion resumes where it stopped — legs
// already tagged with this transfer id in the ledger are skipped, never
// re-applied.
func (w *transferWorkflow) completeTransfer(ctx context.Context, tx pgx.Tx, t *Transfer, actingUser int) error {
	lines, err := fetchTransferItems(ctx, tx, t.ID)
	if err != nil {
		return err
	}

	outDone := make(map[int]bool, len(lines))
	for _, line := range lines {
		done, err := w.legRecorded(ctx, t.ID, line.ItemID, ReasonTransferOut)
		if err != nil {
			return err
		}
		outDone[line.ItemID] = done
	}

	// Cheap pre-check so the common insufficient-stock case fails before any
	// leg commits. Lines already decremented by a prior attempt are exempt:
	// their stock has left the source. The ledger's strict TransferOut
	// re-validates under CAS.
	for _, line := range lines {
		if outDone[line.ItemID] {
			continue
		}
		it, err := fetchItem(ctx, tx, t.OrgID, line.ItemID)
		if err != nil {
			return err
		}
		if it.Quantity < line.Quantity {
			return Invalidf("insufficient stock on item %d (%s): have %d, transfer needs %d",
				it.ID, it.Name, it.Quantity, line.Quantity)
		}
	}

	for _, line := range lines {
		if !outDone[line.ItemID] {
			if _, err := w.ledger.TransferOut(ctx, line.ItemID, line.Quantity, t.ID, actingUser); err != nil {
				return fmt.Errorf("source leg failed for item %d: %w", line.ItemID, err)
			}
		}

		destItemID, err := w.resolveDestinationItem(ctx, t.OrgID, line.ItemID, t.Destination)
		if err != nil {
			return fmt.Errorf("destination leg failed for item %d (source decrement is recorded in the ledger): %w", line.ItemID, err)
		}
		inDone, err := w.legRecorded(ctx, t.ID, destItemID, ReasonTransferIn)
		if err != nil {
			return err
		}
		if !inDone {
			if _, err := w.ledger.TransferIn(ctx, destItemID, line.Quantity, t.ID, actingUser); err != nil {
				return fmt.Errorf("destination leg failed for item %d (source decrement is recorded in the ledger): %w", line.ItemID, err)
			}
		}
	}
	return nil
}

// legRecorded reports whether a ledger entry with the given reason already
// exists for this transfer and item.
func (w *transferWorkflow) legRecorded(ctx context.Context, transferID, itemID int, reason AdjustmentReason) (bool, error) {
	var exists bool
	err := w.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM stock_adjustments
			WHERE transfer_id = $1 AND item_id = $2 AND reason = $3
		)
	`, transferID, itemID, reason).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger for transfer %d item %d: %w", transferID, itemID, err)
	}
	return exists, nil
}

// resolveDestinationItem finds the counterpart item at the destination
// location, matching by SKU when the source item has one and by name
// otherwise. A deactivated counterpart is reactivated: stock arriving for a
// retired record resurfaces it rather than failing or vanishing into a
// hidden row. A missing counterpart is created with the source item's
// descriptive fields and zero quantity, so the increment itself is what the
// ledger audits.
func (w *transferWorkflow) resolveDestinationItem(ctx context.Context, orgID, sourceItemID int, dest LocationRef) (int, error) {
	src, err := fetchItem(ctx, w.pool, orgID, sourceItemID)
	if err != nil {
		return 0, err
	}

	var destID int
	var destActive bool
	if src.SKU != nil {
		err = w.pool.QueryRow(ctx, `
			SELECT id, is_active FROM inventory_items
			WHERE org_id = $1 AND location_type = $2 AND location_id = $3 AND sku = $4
		`, orgID, dest.Type, dest.ID, *src.SKU).Scan(&destID, &destActive)
	} else {
		err = w.pool.QueryRow(ctx, `
			SELECT id, is_active FROM inventory_items
			WHERE org_id = $1 AND location_type = $2 AND location_id = $3 AND sku IS NULL AND name = $4
			ORDER BY is_active DESC, id
			LIMIT 1
		`, orgID, dest.Type, dest.ID, src.Name).Scan(&destID, &destActive)
	}
	if err == nil {
		if !destActive {
			if _, err := w.pool.Exec(ctx, `
				UPDATE inventory_items SET is_active = TRUE, updated_at = NOW() WHERE id = $1
			`, destID); err != nil {
				return 0, fmt.Errorf("failed to reactivate destination item %d: %w", destID, err)
			}
		}
		return destID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("failed to resolve destination item: %w", err)
	}

	err = w.pool.QueryRow(ctx, `
		INSERT INTO inventory_items (
			org_id, sku, name, description, category, location_type, location_id,
			vendor_id, quantity, unit_cost_cents, unit_price_cents, minimum_stock, reorder_point
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0, $9, $10, $11, $12)
		RETURNING id
	`, orgID, src.SKU, src.Name, src.Description, src.Category, dest.Type, dest.ID,
		src.VendorID, src.UnitCostCents, src.UnitPriceCents, src.MinimumStock, src.ReorderPoint,
	).Scan(&destID)
	if err != nil {
		// A concurrent completion can win the insert race on the SKU index.
		if isUniqueViolation(err) {
			return 0, Conflictf("destination item for %s was created concurrently; retry the completion", src.Name)
		}
		return 0, fmt.Errorf("failed to create destination item: %w", err)
	}
	return destID, nil
}
