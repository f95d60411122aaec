package api

import (
	"alcyxob/flexplan/internal/service"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Constants for context keys
const (
	ContextSessionIDKey = "sessionID"
)

// SessionMiddleware authenticates the bearer token and stores the session ID in the context.
// It does not check that the session still exists; handlers get ErrSessionNotFound for that.
func SessionMiddleware(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		sessionID, err := tokens.Parse(parts[1])
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Session token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, "Invalid session token")
			}
			return
		}

		c.Set(ContextSessionIDKey, sessionID)
		c.Next()
	}
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"error": message})
}

// abortWithErrorCode adds a machine-readable code next to the message.
func abortWithErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": code})
}

// Helper function to get Session ID from context (used by handlers)
func getSessionIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextSessionIDKey)
	if !exists {
		return "", errors.New("session ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok || idStr == "" {
		return "", errors.New("invalid session ID type in context")
	}
	return idStr, nil
}

// rateLimiter hands out one token bucket per caller.
type rateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newRateLimiter(requestsPerMinute, burst int) *rateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &rateLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60),
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
}

func (r *rateLimiter) allow(key string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(r.limit, r.burst)}
		r.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}

// forget drops buckets not used since olderThan.
func (r *rateLimiter) forget(olderThan time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, v := range r.visitors {
		if v.lastSeen.Before(olderThan) {
			delete(r.visitors, key)
		}
	}
}

// RateLimitMiddleware throttles calls per session (or per client IP before a session exists).
// A non-positive requestsPerMinute disables limiting.
func RateLimitMiddleware(requestsPerMinute, burst int) gin.HandlerFunc {
	if requestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	limiter := newRateLimiter(requestsPerMinute, burst)
	var lastCleanup time.Time

	return func(c *gin.Context) {
		key := c.ClientIP()
		if sessionID, err := getSessionIDFromContext(c); err == nil {
			key = "session:" + sessionID
		}

		now := time.Now()
		if !limiter.allow(key, now) {
			abortWithErrorCode(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, slow down")
			return
		}

		limiter.mu.Lock()
		cleanup := now.Sub(lastCleanup) > 10*time.Minute
		if cleanup {
			lastCleanup = now
		}
		limiter.mu.Unlock()
		if cleanup {
			limiter.forget(now.Add(-time.Hour))
		}
		c.Next()
	}
}
