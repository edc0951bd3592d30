package middleware

import (
	"net/http"
	"strings"

	"github.com/rmagbanua/kaon-backend/api/responses"
	pkgauth "github.com/rmagbanua/kaon-backend/pkg/auth"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the
// claims. Customers never carry tokens; their endpoints sit outside this
// middleware and authorize by order phone instead.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			token := raw
			if strings.HasPrefix(strings.ToLower(token), "bearer ") {
				token = strings.TrimSpace(token[7:])
			}
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithActor(r.Context(), claims.ActorID, claims.ActorClass, claims.Name)
			if claims.RestaurantSlug != nil {
				ctx = WithRestaurantSlug(ctx, *claims.RestaurantSlug)
			}

			if logg != nil {
				ctx = logg.WithActorClass(ctx, string(claims.ActorClass))
				if claims.RestaurantSlug != nil {
					ctx = logg.WithRestaurantSlug(ctx, *claims.RestaurantSlug)
				}
				if claims.ActorClass == enums.ActorDriver {
					ctx = logg.WithDriverID(ctx, claims.ActorID.String())
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects tokens whose class is not in the allowed set.
func RequireActor(logg *logger.Logger, allowed ...enums.ActorClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := ActorClassFromContext(r.Context())
			for _, candidate := range allowed {
				if class == candidate {
					next.ServeHTTP(w, r)
					return
				}
			}
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "access denied"))
		})
	}
}
