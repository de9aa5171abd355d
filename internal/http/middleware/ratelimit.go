package middleware

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/stormarchive/timeline-service/internal/ratelimit"
	"github.com/stormarchive/timeline-service/internal/utils/response"
)

// LoginRateLimit throttles unauthenticated login attempts per client IP.
type LoginRateLimit struct {
	bucket *ratelimit.TokenBucket
	limit  int64
}

func NewLoginRateLimit(redisClient *redis.Client, limit int64) *LoginRateLimit {
	return &LoginRateLimit{
		bucket: ratelimit.NewTokenBucket(redisClient, limit, limit),
		limit:  limit,
	}
}

func (l *LoginRateLimit) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		allowed, err := l.bucket.Allow(r.Context(), ip, "login")
		if err != nil {
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(
				fmt.Errorf("rate limit check failed: %w", err)))
			return
		}

		remaining, _ := l.bucket.GetRemaining(r.Context(), ip, "login")
		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", "60")

		if !allowed {
			response.WriteJSON(w, http.StatusTooManyRequests, response.GeneralError(
				errors.New("too many login attempts")))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
