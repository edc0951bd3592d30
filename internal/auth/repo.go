package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an auth repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindDriverByPhone(ctx context.Context, phone string) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&driver).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

func (r *repository) FindRestaurantBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&restaurant).Error
	if err != nil {
		return nil, err
	}
	return &restaurant, nil
}

func (r *repository) FindStaffByEmail(ctx context.Context, email string) (*models.Staff, error) {
	var staff models.Staff
	err := r.db.WithContext(ctx).Where("lower(email) = ?", email).First(&staff).Error
	if err != nil {
		return nil, err
	}
	return &staff, nil
}
