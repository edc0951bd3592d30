package auth

import (
	"context"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

// Repository looks up the portal principals that can hold a password.
type Repository interface {
	FindDriverByPhone(ctx context.Context, phone string) (*models.Driver, error)
	FindRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	FindStaffByEmail(ctx context.Context, email string) (*models.Staff, error)
}
