package httpapi

import (
	"net"
	"net/http"
	"sync"

	"github.com/labstack/echo/v5"
	"golang.org/x/time/rate"
)

// addressLimiter hands out one token-bucket limiter per remote address.
type addressLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	r        rate.Limit
	burst    int
}

func newAddressLimiter(perSecond float64, burst int) *addressLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &addressLimiter{
		limiters: make(map[string]*rate.Limiter),
		r:        rate.Limit(perSecond),
		burst:    burst,
	}
}

func (a *addressLimiter) allow(addr string) bool {
	a.mu.Lock()
	l, ok := a.limiters[addr]
	if !ok {
		l = rate.NewLimiter(a.r, a.burst)
		a.limiters[addr] = l
	}
	a.mu.Unlock()
	return l.Allow()
}

func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		host, _, err := net.SplitHostPort(c.Request().RemoteAddr)
		if err != nil {
			host = c.Request().RemoteAddr
		}
		if !s.limiter.allow(host) {
			return writeError(c, http.StatusTooManyRequests, "rate limit exceeded")
		}
		return next(c)
	}
}
