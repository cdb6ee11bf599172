package handler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/segyhp/gym-membership/internal/auth"
	customError "github.com/segyhp/gym-membership/pkg/errors"
	"github.com/segyhp/gym-membership/pkg/response"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (uuid.UUID, error)
}

type adminKey struct{}

// AdminIDFrom returns the admin id stored by RequireAuth
func AdminIDFrom(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(adminKey{}).(uuid.UUID)
	return id, ok
}

// RequireAuth rejects requests without a bearer token (401) or with one that does not
// resolve to an admin (403).
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				response.Unauthorized(w, "Access token required")
				return
			}

			adminID, err := authn.Authenticate(r.Context(), strings.TrimSpace(token))
			switch {
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, customError.ErrInvalidCredentials):
				response.Forbidden(w, "Invalid or expired token")
				return
			case err != nil:
				response.FromError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), adminKey{}, adminID)))
		})
	}
}

// RateLimiter keeps one token bucket per client address. The address is the socket
// peer unless the peer is a trusted proxy, in which case it comes from X-Forwarded-For.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	limit    rate.Limit
	burst    int
	trusted  []netip.Prefix
}

func NewRateLimiter(rps float64, burst int, trustedProxies ...netip.Prefix) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		limit:    rate.Limit(rps),
		burst:    max(1, burst),
		trusted:  trustedProxies,
	}
}

func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = limiter
	}
	l.lastSeen[key] = time.Now()
	return limiter.Allow()
}

// Evict drops buckets idle for longer than maxAge.
func (l *RateLimiter) Evict(maxAge time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for key, seen := range l.lastSeen {
		if seen.Before(cutoff) {
			delete(l.limiters, key)
			delete(l.lastSeen, key)
		}
	}
}

// RunEviction calls Evict every interval until ctx is done.
func (l *RateLimiter) RunEviction(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Evict(maxAge)
		}
	}
}

func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(l.clientIP(r)) {
			response.TooManyRequests(w, "Too many requests, please try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP walks X-Forwarded-For from the right, past our own proxies, and stops at
// the first hop they did not vouch for. Entries left of that are client supplied.
func (l *RateLimiter) clientIP(r *http.Request) string {
	peer := remoteHost(r)
	addr, err := netip.ParseAddr(peer)
	if err != nil || !l.isTrusted(addr) {
		return peer
	}

	hops := r.Header.Values("X-Forwarded-For")
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		entries := strings.Split(hops[i], ",")
		for j := len(entries) - 1; j >= 0; j-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(entries[j]))
			if err != nil {
				return client
			}
			client = hop.Unmap().String()
			if !l.isTrusted(hop) {
				return client
			}
		}
	}
	return client
}

func (l *RateLimiter) isTrusted(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, prefix := range l.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
