package core

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// Organization is the tenant boundary. Every item, transfer, and master-data
// record belongs to exactly one organization, resolved by code at the app
// boundary.
type Organization struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// User identifies who performed a mutation. Authentication is a caller
// concern; core only records the id.
type User struct {
	ID        int       `json:"id"`
	OrgID     int       `json:"org_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type LocationType string

const (
	LocationWarehouse LocationType = "warehouse"
	LocationVehicle   LocationType = "vehicle"
)

// ParseLocationType validates a location type string.
func ParseLocationType(s string) (LocationType, error) {
	switch LocationType(s) {
	case LocationWarehouse, LocationVehicle:
		return LocationType(s), nil
	}
	return "", Invalidf("unknown location type %q (want warehouse or vehicle)", s)
}

// Location is a stocking point: a warehouse or a service vehicle.
type Location struct {
	ID        int          `json:"id"`
	OrgID     int          `json:"org_id"`
	Type      LocationType `json:"type"`
	Name      string       `json:"name"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
}

// LocationRef identifies one end of a transfer.
type LocationRef struct {
	Type LocationType `json:"type"`
	ID   int          `json:"id"`
}

// Equal reports whether two refs point at the same location.
func (r LocationRef) Equal(other LocationRef) bool {
	return r.Type == other.Type && r.ID == other.ID
}

const dateLayout = "2006-01-02"

// NormalizeDate parses a calendar date in the single accepted format
// (YYYY-MM-DD). An empty string means "today". Any other shape is a
// validation error; there are no per-call-site format branches and no
// hard-coded fallback dates.
func NormalizeDate(s string) (time.Time, error) {
	if s == "" {
		now := time.Now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, Invalidf("invalid date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, enabling shared
// query helpers.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgxRowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx (for Query).
type pgxRowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// lookupLocation verifies a location exists, is active, belongs to the org,
// and has the expected type.
func lookupLocation(ctx context.Context, q pgxQuerier, orgID int, ref LocationRef) (*Location, error) {
	var loc Location
	err := q.QueryRow(ctx, `
		SELECT id, org_id, type, name, is_active, created_at
		FROM locations
		WHERE id = $1 AND org_id = $2
	`, ref.ID, orgID).Scan(&loc.ID, &loc.OrgID, &loc.Type, &loc.Name, &loc.IsActive, &loc.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("location %d not found", ref.ID)
		}
		return nil, err
	}
	if loc.Type != ref.Type {
		return nil, Invalidf("location %d is a %s, not a %s", ref.ID, loc.Type, ref.Type)
	}
	if !loc.IsActive {
		return nil, Invalidf("location %d (%s) is inactive", loc.ID, loc.Name)
	}
	return &loc, nil
}
