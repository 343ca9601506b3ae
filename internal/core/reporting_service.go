package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ── Report types ──────────────────────────────────────────────────────────────

// CategorySummary aggregates the active items of one category. TotalValue is
// TotalValueCents rendered in major currency units.
type CategorySummary struct {
	Category        string          `json:"category"`
	ItemCount       int             `json:"item_count"`
	TotalQuantity   int             `json:"total_quantity"`
	TotalValueCents int64           `json:"total_value_cents"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

// InventorySummary is the dashboard snapshot: total stock value, low/out
// counts, category breakdown, and the most recent ledger activity. It is
// recomputed on demand; nothing here is cached.
type InventorySummary struct {
	TotalItems        int               `json:"total_items"`
	TotalValueCents   int64             `json:"total_value_cents"`
	TotalValue        decimal.Decimal   `json:"total_value"`
	LowStockCount     int               `json:"low_stock_count"`
	OutOfStockCount   int               `json:"out_of_stock_count"`
	Categories        []CategorySummary `json:"categories"`
	RecentAdjustments []StockAdjustment `json:"recent_adjustments"`
}

// uncategorized is the bucket for items without a category.
const uncategorized = "Uncategorized"

// defaultRecentLimit bounds RecentAdjustments when the caller passes no limit.
const defaultRecentLimit = 10

// ── Interface ─────────────────────────────────────────────────────────────────

// ReportingService derives read-only summary statistics from the catalog and
// the ledger. It never mutates either.
type ReportingService interface {
	// GetInventorySummary returns the full dashboard snapshot for an org.
	GetInventorySummary(ctx context.Context, orgID int) (*InventorySummary, error)

	// CategoryBreakdown groups active items by category, sorted by total
	// value descending.
	CategoryBreakdown(ctx context.Context, orgID int) ([]CategorySummary, error)

	// LowStockReport returns active items classified low_stock or
	// out_of_stock.
	LowStockReport(ctx context.Context, orgID int) ([]InventoryItem, error)

	// RecentAdjustments returns ledger entries ordered by adjustment date
	// descending, truncated to limit (<= 0 means the default of 10).
	RecentAdjustments(ctx context.Context, orgID, limit int) ([]StockAdjustment, error)
}

type reportingService struct {
	pool   *pgxpool.Pool
	ledger StockLedger
}

func NewReportingService(pool *pgxpool.Pool, ledger StockLedger) ReportingService {
	return &reportingService{pool: pool, ledger: ledger}
}

func (s *reportingService) GetInventorySummary(ctx context.Context, orgID int) (*InventorySummary, error) {
	var summary InventorySummary

	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(quantity::bigint * unit_cost_cents), 0)
		FROM inventory_items
		WHERE org_id = $1 AND is_active = true
	`, orgID).Scan(&summary.TotalItems, &summary.TotalValueCents)
	if err != nil {
		return nil, fmt.Errorf("failed to compute inventory totals: %w", err)
	}
	summary.TotalValue = centsToDecimal(summary.TotalValueCents)

	flagged, err := s.LowStockReport(ctx, orgID)
	if err != nil {
		return nil, err
	}
	for _, it := range flagged {
		switch it.StockStatus() {
		case StockOutOfStock:
			summary.OutOfStockCount++
		case StockLow:
			summary.LowStockCount++
		}
	}

	if summary.Categories, err = s.CategoryBreakdown(ctx, orgID); err != nil {
		return nil, err
	}
	if summary.RecentAdjustments, err = s.RecentAdjustments(ctx, orgID, defaultRecentLimit); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *reportingService) CategoryBreakdown(ctx context.Context, orgID int) ([]CategorySummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT COALESCE(NULLIF(category, ''), $2),
		       COUNT(*),
		       COALESCE(SUM(quantity), 0),
		       COALESCE(SUM(quantity::bigint * unit_cost_cents), 0) AS total_value
		FROM inventory_items
		WHERE org_id = $1 AND is_active = true
		GROUP BY 1
		ORDER BY total_value DESC, 1
	`, orgID, uncategorized)
	if err != nil {
		return nil, fmt.Errorf("failed to query category breakdown: %w", err)
	}
	defer rows.Close()

	var categories []CategorySummary
	for rows.Next() {
		var c CategorySummary
		if err := rows.Scan(&c.Category, &c.ItemCount, &c.TotalQuantity, &c.TotalValueCents); err != nil {
			return nil, fmt.Errorf("failed to scan category summary: %w", err)
		}
		c.TotalValue = centsToDecimal(c.TotalValueCents)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *reportingService) LowStockReport(ctx context.Context, orgID int) ([]InventoryItem, error) {
	// The SQL mirrors ClassifyStock: out of stock at zero-or-below, low when
	// the larger threshold is set and quantity is at or under it.
	rows, err := s.pool.Query(ctx, `
		SELECT`+itemColumns+`
		FROM inventory_items
		WHERE org_id = $1 AND is_active = true
		  AND (quantity <= 0
		       OR (GREATEST(COALESCE(minimum_stock, 0), COALESCE(reorder_point, 0)) > 0
		           AND quantity <= GREATEST(COALESCE(minimum_stock, 0), COALESCE(reorder_point, 0))))
		ORDER BY quantity, name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query low-stock items: %w", err)
	}
	defer rows.Close()

	var items []InventoryItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan low-stock item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (s *reportingService) RecentAdjustments(ctx context.Context, orgID, limit int) ([]StockAdjustment, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.ledger.ListAdjustments(ctx, orgID, AdjustmentFilter{Limit: limit})
}

func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
