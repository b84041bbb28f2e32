package gin

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secondsky/ratelimit"
	"github.com/secondsky/ratelimit/store"
	"github.com/secondsky/ratelimit/strategy"
)

func newRouter(t *testing.T, limiter ratelimit.Limiter, opts ...ratelimit.Option) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(limiter, opts...))
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func serve(router *gin.Engine, target string) *httptest.ResponseRecorder {
	r := httptest.NewRequest("GET", target, nil)
	r.RemoteAddr = "203.0.113.5:41000"
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, r)
	return rr
}

func TestRateLimiter_AllowsThenDenies(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 15, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	fw, err := strategy.NewFixedWindow(store.NewMemory(clock), 1, time.Minute, strategy.WithClock(clock))
	require.NoError(t, err)

	router := newRouter(t, fw)

	rr := serve(router, "/")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "1", rr.Header().Get(ratelimit.HeaderLimit))
	assert.Equal(t, "0", rr.Header().Get(ratelimit.HeaderRemaining))

	rr = serve(router, "/")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get(ratelimit.HeaderRetryAfter))
	assert.Contains(t, rr.Body.String(), "Too Many Requests")
}

func TestRateLimiter_SkipBypassesEvaluation(t *testing.T) {
	now := time.Date(2024, time.June, 23, 10, 15, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	fw, err := strategy.NewFixedWindow(store.NewMemory(clock), 1, time.Minute, strategy.WithClock(clock))
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(fw, ratelimit.WithSkip(func(r *http.Request) bool {
		return r.URL.Path == "/healthz"
	})))
	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for x := 0; x < 3; x++ {
		rr := serve(router, "/healthz")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, rr.Header().Get(ratelimit.HeaderLimit))
	}
}
