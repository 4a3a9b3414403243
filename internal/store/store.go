// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/ashford-hq/hr-assistant/internal/domain"
)

// Repository defines the interface for employee profiles, promotion
// rules, and promotion progress records. Lookups return (nil, nil) when
// no record exists; the orchestrator turns that into a user-facing
// message rather than an error.
type Repository interface {
	// GetEmployee retrieves an employee profile by user ID.
	GetEmployee(ctx context.Context, userID string) (*domain.Employee, error)

	// UpsertEmployee creates or updates an employee profile.
	UpsertEmployee(ctx context.Context, e *domain.Employee) error

	// UpdateAddress replaces the address on an employee profile.
	// Returns false if no profile exists for the user.
	UpdateAddress(ctx context.Context, userID string, addr domain.Address) (bool, error)

	// GetPromotionRule retrieves the promotion rule for a role and
	// target level.
	GetPromotionRule(ctx context.Context, role, targetLevel string) (*domain.PromotionRule, error)

	// UpsertPromotionRule creates or updates a promotion rule.
	UpsertPromotionRule(ctx context.Context, r *domain.PromotionRule) error

	// GetPromotionProgress retrieves a user's progress toward a target
	// level.
	GetPromotionProgress(ctx context.Context, userID, targetLevel string) (*domain.PromotionProgress, error)

	// UpsertPromotionProgress creates or updates a progress record.
	UpsertPromotionProgress(ctx context.Context, p *domain.PromotionProgress) error

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
