package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/textlens/internal/pkg/errcode"
	"github.com/xxxsen/textlens/internal/pkg/response"
)

const rateLimitMaxKeys = 10000

type rateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	last   *expirable.LRU[string, time.Time]
}

// RateLimit allows one request per (ip, user, route) key within window. A non positive window
// disables the limiter.
func RateLimit(window time.Duration) gin.HandlerFunc {
	return newRateLimiter(window).handle
}

func newRateLimiter(window time.Duration) *rateLimiter {
	l := &rateLimiter{window: window}
	if window > 0 {
		l.last = expirable.NewLRU[string, time.Time](rateLimitMaxKeys, nil, window)
	}
	return l
}

func (l *rateLimiter) key(c *gin.Context) (string, string, string) {
	ip := c.ClientIP()
	uid := "0"
	if v, ok := c.Get(ContextUserIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			uid = id
		}
	}
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	return ip, uid, path
}

func (l *rateLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.last.Peek(key); ok && now.Sub(last) < l.window {
		return false
	}
	l.last.Add(key, now)
	return true
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 {
		c.Next()
		return
	}
	ip, uid, path := l.key(c)
	if !l.allow(strings.Join([]string{ip, uid, path}, "|"), time.Now()) {
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("user_id", uid),
			zap.String("path", path),
		)
		response.Error(c, http.StatusTooManyRequests, errcode.ErrTooMany, http.StatusText(http.StatusTooManyRequests))
		return
	}
	c.Next()
}
