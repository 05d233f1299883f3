package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"

	logpkg "github.com/jobwatch/jobwatch/internal/logger"
)

// RateLimit builds a per-client-IP rate limiter backed by an in-memory
// store. The rate string uses the limiter format, e.g. "20-S" for
// twenty requests per second.
func RateLimit(rate string, logger *zap.Logger) (func(http.Handler) http.Handler, error) {
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	instance := limiter.New(memory.NewStore(), parsed)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)

			limiterCtx, err := instance.Get(r.Context(), key)
			if err != nil {
				logger.Error("rate_limit_store_error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", limiterCtx.Limit))
			w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", limiterCtx.Remaining))
			w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", limiterCtx.Reset))

			if limiterCtx.Reached {
				logger.Warn("rate_limit_exceeded",
					zap.String("client_ip", key),
					zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				)
				respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests",
					"Rate limit exceeded. Try again later.", logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}, nil
}

// clientIP extracts the originating client address, preferring proxy
// headers when present.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx >= 0 {
			forwarded = forwarded[:idx]
		}
		if ip := strings.TrimSpace(forwarded); ip != "" {
			return ip
		}
	}
	if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
		return real
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
