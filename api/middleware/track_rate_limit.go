package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rmagbanua/kaon-backend/api/responses"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/logger"
)

type rateLimiterStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// TrackRateLimit throttles the phone-gated customer endpoints, which carry no
// token and would otherwise be free to enumerate. Both the caller IP and the
// presented phone are counted per fixed window.
func TrackRateLimit(cfg config.TrackRateLimitConfig, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if cfg.Limit <= 0 || cfg.Window <= 0 || store == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			keys := []string{}
			if ip := clientIP(r); ip != "" {
				keys = append(keys, fmt.Sprintf("rl:track:ip:%s", ip))
			}
			if phone := strings.TrimSpace(r.URL.Query().Get("phone")); phone != "" {
				keys = append(keys, fmt.Sprintf("rl:track:phone:%s", hashValue(phone)))
			}

			for _, key := range keys {
				count, err := store.IncrWithTTL(ctx, key, cfg.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(cfg.Limit) {
					if logg != nil {
						logCtx := logg.WithFields(ctx, map[string]any{
							"attempts":       count,
							"limit":          cfg.Limit,
							"window_seconds": int(cfg.Window.Seconds()),
						})
						logg.Warn(logCtx, "track.rate_limit.blocked")
					}
					responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "rate limit exceeded"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		for _, part := range strings.Split(header, ",") {
			if ip := strings.TrimSpace(part); ip != "" {
				return ip
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
