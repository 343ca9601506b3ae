package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserService provides user lookup operations.
type UserService interface {
	// GetUser returns a user scoped to the org.
	GetUser(ctx context.Context, orgID, userID int) (*User, error)

	// ListUsers returns all users of an org, active first.
	ListUsers(ctx context.Context, orgID int) ([]User, error)
}

type userService struct {
	pool *pgxpool.Pool
}

// NewUserService constructs a UserService backed by PostgreSQL.
func NewUserService(pool *pgxpool.Pool) UserService {
	return &userService{pool: pool}
}

func (s *userService) GetUser(ctx context.Context, orgID, userID int) (*User, error) {
	u := &User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, org_id, name, email, is_active, created_at
		FROM users
		WHERE id = $1 AND org_id = $2`,
		userID, orgID,
	).Scan(&u.ID, &u.OrgID, &u.Name, &u.Email, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, NotFoundf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to load user %d: %w", userID, err)
	}
	return u, nil
}

func (s *userService) ListUsers(ctx context.Context, orgID int) ([]User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, org_id, name, email, is_active, created_at
		FROM users
		WHERE org_id = $1
		ORDER BY is_active DESC, name`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.OrgID, &u.Name, &u.Email, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
