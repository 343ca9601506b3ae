package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Vendor is a supplier referenced by inventory items.
type Vendor struct {
	ID            int       `json:"id"`
	OrgID         int       `json:"org_id"`
	Name          string    `json:"name"`
	ContactPerson *string   `json:"contact_person,omitempty"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// VendorInput holds the fields required to create a new vendor.
type VendorInput struct {
	Name          string
	ContactPerson string
	Email         string
	Phone         string
}

// VendorService provides vendor master data operations.
type VendorService interface {
	// CreateVendor creates a new vendor record for the given org.
	CreateVendor(ctx context.Context, orgID int, input VendorInput) (*Vendor, error)

	// GetVendors returns all active vendors for an org.
	GetVendors(ctx context.Context, orgID int) ([]Vendor, error)

	// GetVendor returns one vendor scoped to the org.
	GetVendor(ctx context.Context, orgID, vendorID int) (*Vendor, error)
}

type vendorService struct {
	pool *pgxpool.Pool
}

func NewVendorService(pool *pgxpool.Pool) VendorService {
	return &vendorService{pool: pool}
}

func (s *vendorService) CreateVendor(ctx context.Context, orgID int, input VendorInput) (*Vendor, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, Invalidf("vendor name is required")
	}

	var v Vendor
	err := s.pool.QueryRow(ctx, `
		INSERT INTO vendors (org_id, name, contact_person, email, phone)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''))
		RETURNING id, org_id, name, contact_person, email, phone, is_active, created_at
	`, orgID, input.Name, input.ContactPerson, input.Email, input.Phone).Scan(
		&v.ID, &v.OrgID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vendor: %w", err)
	}
	return &v, nil
}

func (s *vendorService) GetVendors(ctx context.Context, orgID int) ([]Vendor, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, name, contact_person, email, phone, is_active, created_at
		FROM vendors
		WHERE org_id = $1 AND is_active = true
		ORDER BY name
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to query vendors: %w", err)
	}
	defer rows.Close()

	var vendors []Vendor
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.OrgID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (s *vendorService) GetVendor(ctx context.Context, orgID, vendorID int) (*Vendor, error) {
	var v Vendor
	err := s.pool.QueryRow(ctx, `
		SELECT id, org_id, name, contact_person, email, phone, is_active, created_at
		FROM vendors
		WHERE id = $1 AND org_id = $2
	`, vendorID, orgID).Scan(
		&v.ID, &v.OrgID, &v.Name, &v.ContactPerson, &v.Email, &v.Phone, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("vendor %d not found", vendorID)
		}
		return nil, fmt.Errorf("failed to fetch vendor %d: %w", vendorID, err)
	}
	return &v, nil
}
