package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	ActorID        uuid.UUID
	ActorClass     enums.ActorClass
	Name           string
	RestaurantSlug *string
	JTI            string
}

// AccessTokenClaims represents the typed JWT issued to portal clients. The
// restaurant slug rides along for merchant tokens so menu and order scoping
// never needs a lookup.
type AccessTokenClaims struct {
	ActorID        uuid.UUID        `json:"actor_id"`
	ActorClass     enums.ActorClass `json:"actor_class"`
	Name           string           `json:"name,omitempty"`
	RestaurantSlug *string          `json:"restaurant_slug,omitempty"`
	jwt.RegisteredClaims
}
