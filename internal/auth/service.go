package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgauth "github.com/rmagbanua/kaon-backend/pkg/auth"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// LoginResult is a minted portal token plus the claims the client will see.
type LoginResult struct {
	Token          string           `json:"token"`
	ExpiresAt      time.Time        `json:"expires_at"`
	ActorID        uuid.UUID        `json:"actor_id"`
	ActorClass     enums.ActorClass `json:"actor_class"`
	Name           string           `json:"name"`
	RestaurantSlug *string          `json:"restaurant_slug,omitempty"`
}

// Service issues portal tokens. Customers never log in; their order access
// rides on the phone gate instead.
type Service interface {
	DriverLogin(ctx context.Context, phone, password string) (*LoginResult, error)
	RestaurantLogin(ctx context.Context, slug, password string) (*LoginResult, error)
	StaffLogin(ctx context.Context, email, password string) (*LoginResult, error)
}

type service struct {
	repo   Repository
	jwtCfg config.JWTConfig
	now    func() time.Time
}

// NewService wires auth dependencies.
func NewService(repo Repository, jwtCfg config.JWTConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("auth repository required")
	}
	return &service{
		repo:   repo,
		jwtCfg: jwtCfg,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) DriverLogin(ctx context.Context, phone, password string) (*LoginResult, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	driver, err := s.repo.FindDriverByPhone(ctx, phone)
	if err != nil {
		return nil, loginLookupError(err)
	}
	if err := verify(password, driver.PasswordHash); err != nil {
		return nil, err
	}
	return s.mint(pkgauth.AccessTokenPayload{
		ActorID:    driver.ID,
		ActorClass: enums.ActorDriver,
		Name:       driver.Name,
	})
}

func (s *service) RestaurantLogin(ctx context.Context, slug, password string) (*LoginResult, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	restaurant, err := s.repo.FindRestaurantBySlug(ctx, slug)
	if err != nil {
		return nil, loginLookupError(err)
	}
	if err := verify(password, restaurant.PasswordHash); err != nil {
		return nil, err
	}
	return s.mint(pkgauth.AccessTokenPayload{
		ActorID:        restaurant.ID,
		ActorClass:     enums.ActorRestaurant,
		Name:           restaurant.Name,
		RestaurantSlug: &restaurant.Slug,
	})
}

func (s *service) StaffLogin(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	staff, err := s.repo.FindStaffByEmail(ctx, email)
	if err != nil {
		return nil, loginLookupError(err)
	}
	if err := verify(password, staff.PasswordHash); err != nil {
		return nil, err
	}
	return s.mint(pkgauth.AccessTokenPayload{
		ActorID:    staff.ID,
		ActorClass: enums.ActorStaff,
		Name:       staff.Name,
	})
}

func (s *service) mint(payload pkgauth.AccessTokenPayload) (*LoginResult, error) {
	now := s.now()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, now, payload)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint access token")
	}
	return &LoginResult{
		Token:          token,
		ExpiresAt:      now.Add(time.Duration(s.jwtCfg.ExpirationMinutes) * time.Minute),
		ActorID:        payload.ActorID,
		ActorClass:     payload.ActorClass,
		Name:           payload.Name,
		RestaurantSlug: payload.RestaurantSlug,
	}, nil
}

// loginLookupError hides missing accounts behind the generic credentials
// message.
func loginLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
}

func verify(password, hash string) error {
	ok, err := security.VerifyPassword(password, hash)
	if err != nil || !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return nil
}
