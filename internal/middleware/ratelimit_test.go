package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func runLimited(l *rateLimiter, userID string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/analyze/", nil)
	if userID != "" {
		c.Set(ContextUserIDKey, userID)
	}
	l.handle(c)
	return w
}

func TestRateLimiterHandle_BlocksWithinWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newRateLimiter(10 * time.Second)

	require.Equal(t, http.StatusOK, runLimited(limiter, "u1").Code)
	w := runLimited(limiter, "u1")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.Contains(t, w.Body.String(), "Too Many Requests")

	require.Equal(t, http.StatusOK, runLimited(limiter, "u2").Code)
}

func TestRateLimiterHandle_AllowsAfterWindow(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newRateLimiter(30 * time.Millisecond)

	require.Equal(t, http.StatusOK, runLimited(limiter, "u1").Code)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, http.StatusOK, runLimited(limiter, "u1").Code)
}

func TestRateLimiterHandle_Disabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := newRateLimiter(0)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, runLimited(limiter, "u1").Code)
	}
}
