// Package security provides request throttling for abuse-prone endpoints
// such as login and ticket scanning.
package security

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"eventgate/internal/model"
)

// RateLimiter is a fixed-window per-client limiter backed by Redis, so the
// window survives restarts and is shared across replicas.
type RateLimiter struct {
	redis     *redis.Client
	perMinute int64
}

// NewRateLimiter constructs a RateLimiter allowing perMinute requests per
// client per minute.
func NewRateLimiter(client *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{redis: client, perMinute: int64(perMinute)}
}

// Limit wraps a handler with the throttle, keyed by client IP under the
// given prefix. Redis outages fail open: throttling is protection, not a
// correctness requirement.
func (rl *RateLimiter) Limit(prefix string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := prefix + ":" + clientIP(r)

			count, err := rl.redis.Incr(r.Context(), key).Result()
			if err != nil {
				log.Printf("rate limiter unavailable: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				rl.redis.Expire(r.Context(), key, time.Minute)
			}
			if count > rl.perMinute {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: "too many requests, try again later"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
