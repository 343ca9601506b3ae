package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationService provides warehouse/vehicle master data. Transfers and items
// reference locations; they are never deleted, only deactivated.
type LocationService interface {
	// CreateLocation registers a warehouse or vehicle.
	CreateLocation(ctx context.Context, orgID int, locType LocationType, name string) (*Location, error)

	// GetLocations returns active locations, optionally filtered by type.
	GetLocations(ctx context.Context, orgID int, locType *LocationType) ([]Location, error)

	// GetLocation returns one location scoped to the org.
	GetLocation(ctx context.Context, orgID, locationID int) (*Location, error)
}

type locationService struct {
	pool *pgxpool.Pool
}

func NewLocationService(pool *pgxpool.Pool) LocationService {
	return &locationService{pool: pool}
}

func (s *locationService) CreateLocation(ctx context.Context, orgID int, locType LocationType, name string) (*Location, error) {
	if _, err := ParseLocationType(string(locType)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, Invalidf("location name is required")
	}

	var loc Location
	err := s.pool.QueryRow(ctx, `
		INSERT INTO locations (org_id, type, name)
		VALUES ($1, $2, $3)
		RETURNING id, org_id, type, name, is_active, created_at
	`, orgID, locType, name).Scan(&loc.ID, &loc.OrgID, &loc.Type, &loc.Name, &loc.IsActive, &loc.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}
	return &loc, nil
}

func (s *locationService) GetLocations(ctx context.Context, orgID int, locType *LocationType) ([]Location, error) {
	query := `
		SELECT id, org_id, type, name, is_active, created_at
		FROM locations
		WHERE org_id = $1 AND is_active = true`
	args := []any{orgID}
	if locType != nil {
		args = append(args, *locType)
		query += " AND type = $2"
	}
	query += " ORDER BY type, name"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.ID, &loc.OrgID, &loc.Type, &loc.Name, &loc.IsActive, &loc.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (s *locationService) GetLocation(ctx context.Context, orgID, locationID int) (*Location, error) {
	return lookupLocationByID(ctx, s.pool, orgID, locationID)
}

func lookupLocationByID(ctx context.Context, q pgxQuerier, orgID, locationID int) (*Location, error) {
	var loc Location
	err := q.QueryRow(ctx, `
		SELECT id, org_id, type, name, is_active, created_at
		FROM locations
		WHERE id = $1 AND org_id = $2
	`, locationID, orgID).Scan(&loc.ID, &loc.OrgID, &loc.Type, &loc.Name, &loc.IsActive, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("location %d not found", locationID)
		}
		return nil, fmt.Errorf("failed to fetch location %d: %w", locationID, err)
	}
	return &loc, nil
}
