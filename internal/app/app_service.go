package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fieldstock/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type appService struct {
	pool      *pgxpool.Pool
	catalog   core.CatalogService
	ledger    core.StockLedger
	transfers core.TransferWorkflow
	reporting core.ReportingService
	locations core.LocationService
	vendors   core.VendorService
	users     core.UserService
	notifier  core.Notifier
}

// NewAppService constructs an appService that satisfies ApplicationService.
// Pass core.NopNotifier{} when no observer needs change events.
func NewAppService(
	pool *pgxpool.Pool,
	catalog core.CatalogService,
	ledger core.StockLedger,
	transfers core.TransferWorkflow,
	reporting core.ReportingService,
	locations core.LocationService,
	vendors core.VendorService,
	users core.UserService,
	notifier core.Notifier,
) ApplicationService {
	return &appService{
		pool:      pool,
		catalog:   catalog,
		ledger:    ledger,
		transfers: transfers,
		reporting: reporting,
		locations: locations,
		vendors:   vendors,
		users:     users,
		notifier:  notifier,
	}
}

// resolveOrg maps an org code to its internal id and display name.
func (s *appService) resolveOrg(ctx context.Context, orgCode string) (int, string, error) {
	var id int
	var name string
	err := s.pool.QueryRow(ctx,
		"SELECT id, name FROM organizations WHERE code = $1", orgCode,
	).Scan(&id, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", core.NotFoundf("organization %s not found", orgCode)
		}
		return 0, "", fmt.Errorf("failed to resolve organization %s: %w", orgCode, err)
	}
	return id, name, nil
}

// verifyActingUser checks that the acting user exists in the org and is
// active. Deactivated accounts cannot appear on new ledger entries or
// transfer stamps.
func (s *appService) verifyActingUser(ctx context.Context, orgID, userID int) error {
	if userID <= 0 {
		return core.Invalidf("acting user id is required")
	}
	u, err := s.users.GetUser(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if !u.IsActive {
		return core.Invalidf("user %d is deactivated", userID)
	}
	return nil
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (s *appService) ListItems(ctx context.Context, orgCode string, req ItemListRequest) (*ItemListResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}

	filter := core.ItemFilter{
		Search:          req.Search,
		Category:        req.Category,
		IncludeInactive: req.IncludeInactive,
	}
	if req.Status != "" {
		status, err := core.ParseStockStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}

	items, err := s.catalog.ListItems(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}

	result := &ItemListResult{Items: make([]ItemView, 0, len(items))}
	for _, it := range items {
		result.Items = append(result.Items, viewOf(it))
	}
	return result, nil
}

func (s *appService) GetItem(ctx context.Context, orgCode string, itemID int) (*ItemResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	it, err := s.catalog.GetItem(ctx, orgID, itemID)
	if err != nil {
		return nil, err
	}
	return &ItemResult{Item: viewOf(*it)}, nil
}

func (s *appService) CreateItem(ctx context.Context, orgCode string, req CreateItemRequest) (*ItemResult, error) {
	locType, err := core.ParseLocationType(req.LocationType)
	if err != nil {
		return nil, err
	}
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	if err := s.verifyActingUser(ctx, orgID, req.PerformedBy); err != nil {
		return nil, err
	}

	input := core.ItemInput{
		SKU:            optionalStr(req.SKU),
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		LocationType:   locType,
		LocationID:     req.LocationID,
		VendorID:       req.VendorID,
		Quantity:       req.Quantity,
		UnitCostCents:  req.UnitCostCents,
		UnitPriceCents: req.UnitPriceCents,
		MinimumStock:   req.MinimumStock,
		ReorderPoint:   req.ReorderPoint,
	}
	it, err := s.catalog.CreateItem(ctx, orgID, input, req.PerformedBy)
	if err != nil {
		return nil, err
	}
	s.notifier.ItemChanged(orgID, it.ID)
	return &ItemResult{Item: viewOf(*it)}, nil
}

func (s *appService) UpdateItem(ctx context.Context, orgCode string, itemID int, req UpdateItemRequest) (*ItemResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}

	update := core.ItemUpdate{
		SKU:            optionalStr(req.SKU),
		Name:           req.Name,
		Description:    req.Description,
		Category:       req.Category,
		VendorID:       req.VendorID,
		UnitCostCents:  req.UnitCostCents,
		UnitPriceCents: req.UnitPriceCents,
		MinimumStock:   req.MinimumStock,
		ReorderPoint:   req.ReorderPoint,
	}
	it, err := s.catalog.UpdateItem(ctx, orgID, itemID, update)
	if err != nil {
		return nil, err
	}
	s.notifier.ItemChanged(orgID, it.ID)
	return &ItemResult{Item: viewOf(*it)}, nil
}

func (s *appService) DeactivateItem(ctx context.Context, orgCode string, itemID, actingUser int) error {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return err
	}
	if err := s.verifyActingUser(ctx, orgID, actingUser); err != nil {
		return err
	}
	if err := s.catalog.DeactivateItem(ctx, orgID, itemID); err != nil {
		return err
	}
	s.notifier.ItemChanged(orgID, itemID)
	return nil
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func (s *appService) AdjustStock(ctx context.Context, orgCode string, req AdjustStockRequest) (*AdjustmentResult, error) {
	// Validate the request shape before touching the store.
	if (req.Delta == nil) == (req.Absolute == nil) {
		return nil, core.Invalidf("exactly one of delta and absolute must be set")
	}
	if req.PerformedBy <= 0 {
		return nil, core.Invalidf("performed_by user id is required")
	}

	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	if err := s.verifyActingUser(ctx, orgID, req.PerformedBy); err != nil {
		return nil, err
	}

	var adj *core.StockAdjustment
	var it *core.InventoryItem
	if req.Delta != nil {
		reason := core.AdjustmentReason(req.Reason)
		adj, it, err = s.ledger.ApplyAdjustment(ctx, orgID, req.ItemID, *req.Delta, reason, req.PerformedBy, req.Notes, req.Date)
	} else {
		adj, it, err = s.ledger.SetQuantity(ctx, orgID, req.ItemID, *req.Absolute, req.PerformedBy, req.Notes, req.Date)
	}
	if err != nil {
		return nil, err
	}

	s.notifier.ItemChanged(orgID, it.ID)
	return &AdjustmentResult{Item: viewOf(*it), Adjustment: *adj}, nil
}

func (s *appService) ListAdjustments(ctx context.Context, orgCode string, req AdjustmentListRequest) (*AdjustmentListResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}

	filter := core.AdjustmentFilter{
		ItemID:     req.ItemID,
		TransferID: req.TransferID,
		Limit:      req.Limit,
	}
	if req.Reason != "" {
		reason := core.AdjustmentReason(req.Reason)
		filter.Reason = &reason
	}

	adjustments, err := s.ledger.ListAdjustments(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	return &AdjustmentListResult{Adjustments: adjustments}, nil
}

// ── Transfers ────────────────────────────────────────────────────────────────

func (s *appService) CreateTransfer(ctx context.Context, orgCode string, req CreateTransferRequest) (*TransferResult, error) {
	sourceType, err := core.ParseLocationType(req.SourceType)
	if err != nil {
		return nil, err
	}
	destType, err := core.ParseLocationType(req.DestinationType)
	if err != nil {
		return nil, err
	}
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	if err := s.verifyActingUser(ctx, orgID, req.RequestedBy); err != nil {
		return nil, err
	}

	input := core.TransferInput{
		Source:      core.LocationRef{Type: sourceType, ID: req.SourceID},
		Destination: core.LocationRef{Type: destType, ID: req.DestinationID},
		RequestedBy: req.RequestedBy,
		Notes:       req.Notes,
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, core.TransferItemInput{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Notes:    line.Notes,
		})
	}

	t, err := s.transfers.CreateTransfer(ctx, orgID, input)
	if err != nil {
		return nil, err
	}
	s.notifier.TransferChanged(orgID, t.ID, t.Status)
	return &TransferResult{Transfer: *t}, nil
}

func (s *appService) GetTransfer(ctx context.Context, orgCode string, transferID int) (*TransferResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	t, err := s.transfers.GetTransfer(ctx, orgID, transferID)
	if err != nil {
		return nil, err
	}
	return &TransferResult{Transfer: *t}, nil
}

func (s *appService) ListTransfers(ctx context.Context, orgCode string, req TransferListRequest) (*TransferListResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}

	var filter core.TransferFilter
	if req.Status != "" {
		status, err := core.ParseTransferStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = &status
	}
	if req.LocationType != "" && req.LocationID != nil {
		locType, err := core.ParseLocationType(req.LocationType)
		if err != nil {
			return nil, err
		}
		filter.LocationType = &locType
		filter.LocationID = req.LocationID
	}

	transfers, err := s.transfers.ListTransfers(ctx, orgID, filter)
	if err != nil {
		return nil, err
	}
	return &TransferListResult{Transfers: transfers}, nil
}

func (s *appService) TransitionTransfer(ctx context.Context, orgCode string, transferID int, newStatus string, actingUser int) (*TransferResult, error) {
	status, err := core.ParseTransferStatus(newStatus)
	if err != nil {
		return nil, err
	}
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	if err := s.verifyActingUser(ctx, orgID, actingUser); err != nil {
		return nil, err
	}

	t, err := s.transfers.Transition(ctx, orgID, transferID, status, actingUser)
	if err != nil {
		return nil, err
	}

	s.notifier.TransferChanged(orgID, t.ID, t.Status)
	if t.Status == core.TransferCompleted {
		for _, line := range t.Items {
			s.notifier.ItemChanged(orgID, line.ItemID)
		}
	}
	return &TransferResult{Transfer: *t}, nil
}

func (s *appService) GetTransferItems(ctx context.Context, orgCode string, transferID int) (*TransferItemsResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	items, err := s.transfers.GetTransferItems(ctx, orgID, transferID)
	if err != nil {
		return nil, err
	}
	return &TransferItemsResult{Items: items}, nil
}

// ── Reporting and master data ────────────────────────────────────────────────

func (s *appService) GetInventorySummary(ctx context.Context, orgCode string) (*SummaryResult, error) {
	orgID, orgName, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	summary, err := s.reporting.GetInventorySummary(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &SummaryResult{OrgCode: orgCode, OrgName: orgName, Summary: *summary}, nil
}

func (s *appService) ListLocations(ctx context.Context, orgCode string, locType string) (*LocationListResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}

	var typeFilter *core.LocationType
	if locType != "" {
		parsed, err := core.ParseLocationType(locType)
		if err != nil {
			return nil, err
		}
		typeFilter = &parsed
	}

	locations, err := s.locations.GetLocations(ctx, orgID, typeFilter)
	if err != nil {
		return nil, err
	}
	return &LocationListResult{Locations: locations}, nil
}

func (s *appService) CreateLocation(ctx context.Context, orgCode string, req CreateLocationRequest) (*core.Location, error) {
	locType, err := core.ParseLocationType(req.Type)
	if err != nil {
		return nil, err
	}
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	return s.locations.CreateLocation(ctx, orgID, locType, req.Name)
}

func (s *appService) ListVendors(ctx context.Context, orgCode string) (*VendorListResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	vendors, err := s.vendors.GetVendors(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &VendorListResult{Vendors: vendors}, nil
}

func (s *appService) CreateVendor(ctx context.Context, orgCode string, req CreateVendorRequest) (*core.Vendor, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	return s.vendors.CreateVendor(ctx, orgID, core.VendorInput{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
	})
}

func (s *appService) ListUsers(ctx context.Context, orgCode string) (*UserListResult, error) {
	orgID, _, err := s.resolveOrg(ctx, orgCode)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListUsers(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &UserListResult{Users: users}, nil
}

func optionalStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
