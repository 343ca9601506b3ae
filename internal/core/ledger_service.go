package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StockLedger is the only path by which InventoryItem.Quantity changes after
// creation. Each call is one atomic unit: the item's new quantity and the
// adjustment entry commit together or not at all. Writes use an optimistic
// compare-and-swap on the item's version; a stale version surfaces as
// ConflictError and the caller decides whether to re-read and retry.
type StockLedger interface {
	// ApplyAdjustment applies a delta to an item's quantity, flooring at
	// zero, and appends the adjustment entry.
	ApplyAdjustment(ctx context.Context, orgID, itemID, delta int, reason AdjustmentReason, performedBy int, notes string, adjustmentDate string) (*StockAdjustment, *InventoryItem, error)

	// SetQuantity sets an absolute quantity; equivalent to ApplyAdjustment
	// with delta = newQuantity - currentQuantity.
	SetQuantity(ctx context.Context, orgID, itemID, newQuantity, performedBy int, notes string, adjustmentDate string) (*StockAdjustment, *InventoryItem, error)

	// TransferOut is the strict source leg of a transfer completion: unlike
	// ApplyAdjustment it refuses (ValidationError) to move below zero.
	TransferOut(ctx context.Context, itemID, quantity, transferID, performedBy int) (*StockAdjustment, error)

	// TransferIn is the destination leg of a transfer completion.
	TransferIn(ctx context.Context, itemID, quantity, transferID, performedBy int) (*StockAdjustment, error)

	// ListAdjustments returns ledger entries for the org, newest first.
	ListAdjustments(ctx context.Context, orgID int, filter AdjustmentFilter) ([]StockAdjustment, error)

	// LatestAdjustment returns the most recent entry for an item, or
	// NotFoundError when the item has no entries.
	LatestAdjustment(ctx context.Context, itemID int) (*StockAdjustment, error)
}

type stockLedger struct {
	pool *pgxpool.Pool
}

func NewStockLedger(pool *pgxpool.Pool) StockLedger {
	return &stockLedger{pool: pool}
}

const adjustmentColumns = `
	id, item_id, previous_quantity, new_quantity, delta, reason, performed_by,
	notes, location_type, location_id, transfer_id, adjustment_date, created_at`

func scanAdjustment(row pgx.Row) (*StockAdjustment, error) {
	var a StockAdjustment
	err := row.Scan(
		&a.ID, &a.ItemID, &a.PreviousQuantity, &a.NewQuantity, &a.Delta,
		&a.Reason, &a.PerformedBy, &a.Notes, &a.LocationType, &a.LocationID,
		&a.TransferID, &a.AdjustmentDate, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// apply runs the single canonical quantity-change sequence: read the item,
// compute the new quantity, CAS-update the item, append the ledger entry.
// compute receives the current quantity and returns the new one.
func (l *stockLedger) apply(
	ctx context.Context,
	itemID int,
	compute func(current int) (int, error),
	reason AdjustmentReason,
	performedBy int,
	notes string,
	transferID *int,
	adjustmentDate string,
) (*StockAdjustment, *InventoryItem, error) {
	date, err := NormalizeDate(adjustmentDate)
	if err != nil {
		return nil, nil, err
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin adjustment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var it InventoryItem
	err = tx.QueryRow(ctx, `
		SELECT id, org_id, quantity, version, location_type, location_id, name
		FROM inventory_items
		WHERE id = $1
	`, itemID).Scan(&it.ID, &it.OrgID, &it.Quantity, &it.Version, &it.LocationType, &it.LocationID, &it.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, NotFoundf("inventory item %d not found", itemID)
		}
		return nil, nil, fmt.Errorf("failed to read item %d: %w", itemID, err)
	}

	newQuantity, err := compute(it.Quantity)
	if err != nil {
		return nil, nil, err
	}

	// Compare-and-swap on version: a concurrent adjustment to the same item
	// bumps the version and turns this write into a detectable conflict
	// instead of a lost update.
	tag, err := tx.Exec(ctx, `
		UPDATE inventory_items
		SET quantity = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND version = $3
	`, newQuantity, itemID, it.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update quantity for item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, nil, Conflictf("item %d was modified concurrently; re-read and retry", itemID)
	}

	adj, err := scanAdjustment(tx.QueryRow(ctx, `
		INSERT INTO stock_adjustments (
			item_id, previous_quantity, new_quantity, delta, reason,
			performed_by, notes, location_type, location_id, transfer_id, adjustment_date
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING`+adjustmentColumns,
		itemID, it.Quantity, newQuantity, newQuantity-it.Quantity, reason,
		performedBy, notes, it.LocationType, it.LocationID, transferID, date,
	))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to append adjustment for item %d: %w", itemID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}

	updated, err := fetchItem(ctx, l.pool, it.OrgID, itemID)
	if err != nil {
		return nil, nil, err
	}
	return adj, updated, nil
}

func (l *stockLedger) ApplyAdjustment(ctx context.Context, orgID, itemID, delta int, reason AdjustmentReason, performedBy int, notes string, adjustmentDate string) (*StockAdjustment, *InventoryItem, error) {
	if delta == 0 {
		return nil, nil, Invalidf("adjustment delta cannot be zero")
	}
	if performedBy <= 0 {
		return nil, nil, Invalidf("performed_by user id is required")
	}
	switch reason {
	case "":
		reason = ReasonManual
	case ReasonManual, ReasonRecount:
	default:
		return nil, nil, Invalidf("reason %q is not allowed on direct adjustments", reason)
	}
	if err := l.checkOrg(ctx, orgID, itemID); err != nil {
		return nil, nil, err
	}
	return l.apply(ctx, itemID, func(current int) (int, error) {
		return ClampQuantity(current, delta), nil
	}, reason, performedBy, notes, nil, adjustmentDate)
}

func (l *stockLedger) SetQuantity(ctx context.Context, orgID, itemID, newQuantity, performedBy int, notes string, adjustmentDate string) (*StockAdjustment, *InventoryItem, error) {
	if newQuantity < 0 {
		return nil, nil, Invalidf("quantity cannot be negative, got %d", newQuantity)
	}
	if performedBy <= 0 {
		return nil, nil, Invalidf("performed_by user id is required")
	}
	if err := l.checkOrg(ctx, orgID, itemID); err != nil {
		return nil, nil, err
	}
	return l.apply(ctx, itemID, func(current int) (int, error) {
		return newQuantity, nil
	}, ReasonRecount, performedBy, notes, nil, adjustmentDate)
}

func (l *stockLedger) TransferOut(ctx context.Context, itemID, quantity, transferID, performedBy int) (*StockAdjustment, error) {
	adj, _, err := l.apply(ctx, itemID, func(current int) (int, error) {
		if current < quantity {
			return 0, Invalidf("insufficient stock on item %d: have %d, transfer needs %d", itemID, current, quantity)
		}
		return current - quantity, nil
	}, ReasonTransferOut, performedBy,
		fmt.Sprintf("Transfer %d: stock out", transferID), &transferID, "")
	return adj, err
}

func (l *stockLedger) TransferIn(ctx context.Context, itemID, quantity, transferID, performedBy int) (*StockAdjustment, error) {
	adj, _, err := l.apply(ctx, itemID, func(current int) (int, error) {
		return current + quantity, nil
	}, ReasonTransferIn, performedBy,
		fmt.Sprintf("Transfer %d: stock in", transferID), &transferID, "")
	return adj, err
}

// checkOrg rejects adjustments against items from another organization.
func (l *stockLedger) checkOrg(ctx context.Context, orgID, itemID int) error {
	var itemOrg int
	err := l.pool.QueryRow(ctx, "SELECT org_id FROM inventory_items WHERE id = $1", itemID).Scan(&itemOrg)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return NotFoundf("inventory item %d not found", itemID)
		}
		return fmt.Errorf("failed to resolve item %d: %w", itemID, err)
	}
	if itemOrg != orgID {
		return NotFoundf("inventory item %d not found", itemID)
	}
	return nil
}

func (l *stockLedger) ListAdjustments(ctx context.Context, orgID int, filter AdjustmentFilter) ([]StockAdjustment, error) {
	query := `
		SELECT a.id, a.item_id, a.previous_quantity, a.new_quantity, a.delta,
		       a.reason, a.performed_by, a.notes, a.location_type, a.location_id,
		       a.transfer_id, a.adjustment_date, a.created_at
		FROM stock_adjustments a
		JOIN inventory_items i ON i.id = a.item_id
		WHERE i.org_id = $1`
	args := []any{orgID}

	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		query += fmt.Sprintf(" AND a.item_id = $%d", len(args))
	}
	if filter.Reason != nil {
		args = append(args, *filter.Reason)
		query += fmt.Sprintf(" AND a.reason = $%d", len(args))
	}
	if filter.TransferID != nil {
		args = append(args, *filter.TransferID)
		query += fmt.Sprintf(" AND a.transfer_id = $%d", len(args))
	}
	query += " ORDER BY a.adjustment_date DESC, a.id DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := l.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []StockAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, *a)
	}
	return adjustments, rows.Err()
}

func (l *stockLedger) LatestAdjustment(ctx context.Context, itemID int) (*StockAdjustment, error) {
	adj, err := scanAdjustment(l.pool.QueryRow(ctx,
		"SELECT"+adjustmentColumns+" FROM stock_adjustments WHERE item_id = $1 ORDER BY id DESC LIMIT 1",
		itemID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("no adjustments recorded for item %d", itemID)
		}
		return nil, fmt.Errorf("failed to fetch latest adjustment for item %d: %w", itemID, err)
	}
	return adj, nil
}
