package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogService owns inventory item records and their derived stock status.
// It never touches Quantity outside of item creation; all later quantity
// changes flow through the StockLedger.
type CatalogService interface {
	// CreateItem creates an item at a location. Opening stock, if non-zero,
	// is recorded as an initial ledger adjustment in the same transaction.
	CreateItem(ctx context.Context, orgID int, input ItemInput, performedBy int) (*InventoryItem, error)

	// GetItem returns one item scoped to the org.
	GetItem(ctx context.Context, orgID, itemID int) (*InventoryItem, error)

	// UpdateItem replaces the item's descriptive fields. Quantity is not
	// writable here.
	UpdateItem(ctx context.Context, orgID, itemID int, update ItemUpdate) (*InventoryItem, error)

	// DeactivateItem soft-deletes an item. The row is kept because ledger
	// entries and transfer items reference it.
	DeactivateItem(ctx context.Context, orgID, itemID int) error

	// ListItems returns items matching the filter, ordered by name.
	ListItems(ctx context.Context, orgID int, filter ItemFilter) ([]InventoryItem, error)
}

type catalogService struct {
	pool *pgxpool.Pool
}

func NewCatalogService(pool *pgxpool.Pool) CatalogService {
	return &catalogService{pool: pool}
}

const itemColumns = `
	id, org_id, sku, name, description, category, location_type, location_id,
	vendor_id, quantity, unit_cost_cents, unit_price_cents, minimum_stock,
	reorder_point, is_active, version, created_at, updated_at`

func scanItem(row pgx.Row) (*InventoryItem, error) {
	var it InventoryItem
	err := row.Scan(
		&it.ID, &it.OrgID, &it.SKU, &it.Name, &it.Description, &it.Category,
		&it.LocationType, &it.LocationID, &it.VendorID, &it.Quantity,
		&it.UnitCostCents, &it.UnitPriceCents, &it.MinimumStock, &it.ReorderPoint,
		&it.IsActive, &it.Version, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// fetchItem reads one item within any querier (pool or tx).
func fetchItem(ctx context.Context, q pgxQuerier, orgID, itemID int) (*InventoryItem, error) {
	it, err := scanItem(q.QueryRow(ctx,
		"SELECT"+itemColumns+" FROM inventory_items WHERE id = $1 AND org_id = $2",
		itemID, orgID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("inventory item %d not found", itemID)
		}
		return nil, fmt.Errorf("failed to fetch item %d: %w", itemID, err)
	}
	return it, nil
}

// isUniqueViolation reports a Postgres unique-constraint error.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (s *catalogService) CreateItem(ctx context.Context, orgID int, input ItemInput, performedBy int) (*InventoryItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := lookupLocation(ctx, tx, orgID, LocationRef{Type: input.LocationType, ID: input.LocationID}); err != nil {
		return nil, err
	}

	if input.VendorID != nil {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1 AND org_id = $2)",
			*input.VendorID, orgID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to verify vendor: %w", err)
		}
		if !exists {
			return nil, NotFoundf("vendor %d not found", *input.VendorID)
		}
	}

	it, err := scanItem(tx.QueryRow(ctx, `
		INSERT INTO inventory_items (
			org_id, sku, name, description, category, location_type, location_id,
			vendor_id, quantity, unit_cost_cents, unit_price_cents, minimum_stock, reorder_point
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING`+itemColumns,
		orgID, input.SKU, input.Name, input.Description, input.Category,
		input.LocationType, input.LocationID, input.VendorID, input.Quantity,
		input.UnitCostCents, input.UnitPriceCents, input.MinimumStock, input.ReorderPoint,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, Invalidf("an item with SKU %q already exists at this location", derefStr(input.SKU))
		}
		return nil, fmt.Errorf("failed to insert item: %w", err)
	}

	// Opening stock is part of the audit trail: the latest adjustment's
	// new_quantity must always equal the item's quantity.
	if input.Quantity > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO stock_adjustments (
				item_id, previous_quantity, new_quantity, delta, reason,
				performed_by, notes, location_type, location_id, adjustment_date
			)
			VALUES ($1, 0, $2, $2, $3, $4, $5, $6, $7, CURRENT_DATE)
		`, it.ID, input.Quantity, ReasonInitial, performedBy,
			fmt.Sprintf("Opening stock for %s", it.Name), it.LocationType, it.LocationID)
		if err != nil {
			return nil, fmt.Errorf("failed to record opening stock for item %d: %w", it.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit item creation: %w", err)
	}
	return it, nil
}

func (s *catalogService) GetItem(ctx context.Context, orgID, itemID int) (*InventoryItem, error) {
	return fetchItem(ctx, s.pool, orgID, itemID)
}

func (s *catalogService) UpdateItem(ctx context.Context, orgID, itemID int, update ItemUpdate) (*InventoryItem, error) {
	if err := validateItemUpdate(update); err != nil {
		return nil, err
	}

	if update.VendorID != nil {
		var exists bool
		if err := s.pool.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM vendors WHERE id = $1 AND org_id = $2)",
			*update.VendorID, orgID,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to verify vendor: %w", err)
		}
		if !exists {
			return nil, NotFoundf("vendor %d not found", *update.VendorID)
		}
	}

	it, err := scanItem(s.pool.QueryRow(ctx, `
		UPDATE inventory_items
		SET sku = $1, name = $2, description = $3, category = $4, vendor_id = $5,
		    unit_cost_cents = $6, unit_price_cents = $7, minimum_stock = $8,
		    reorder_point = $9, updated_at = NOW()
		WHERE id = $10 AND org_id = $11
		RETURNING`+itemColumns,
		update.SKU, update.Name, update.Description, update.Category, update.VendorID,
		update.UnitCostCents, update.UnitPriceCents, update.MinimumStock, update.ReorderPoint,
		itemID, orgID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("inventory item %d not found", itemID)
		}
		if isUniqueViolation(err) {
			return nil, Invalidf("an item with SKU %q already exists at this location", derefStr(update.SKU))
		}
		return nil, fmt.Errorf("failed to update item %d: %w", itemID, err)
	}
	return it, nil
}

func (s *catalogService) DeactivateItem(ctx context.Context, orgID, itemID int) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE inventory_items SET is_active = false, updated_at = NOW() WHERE id = $1 AND org_id = $2",
		itemID, orgID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate item %d: %w", itemID, err)
	}
	if tag.RowsAffected() == 0 {
		return NotFoundf("inventory item %d not found", itemID)
	}
	return nil
}

func (s *catalogService) ListItems(ctx context.Context, orgID int, filter ItemFilter) ([]InventoryItem, error) {
	query := "SELECT" + itemColumns + " FROM inventory_items WHERE org_id = $1"
	args := []any{orgID}

	if !filter.IncludeInactive {
		query += " AND is_active = true"
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (name ILIKE $%d OR sku ILIKE $%d OR description ILIKE $%d)", n, n, n)
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if filter.LocationType != nil && filter.LocationID != nil {
		args = append(args, *filter.LocationType, *filter.LocationID)
		query += fmt.Sprintf(" AND location_type = $%d AND location_id = $%d", len(args)-1, len(args))
	}
	query += " ORDER BY name, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		// Status is derived, not stored; filter on the snapshot.
		if filter.Status != nil && it.StockStatus() != *filter.Status {
			continue
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
