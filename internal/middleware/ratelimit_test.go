package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/showtix/concert-reservation/internal/config"
)

func rateKeyFor(t *testing.T, cfg config.RateLimitConfig, userID interface{}) string {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/concerts", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/concerts")
	if userID != nil {
		c.Set("user_id", userID)
	}
	return buildRateKey(cfg, c)
}

func TestBuildRateKeySeparatesUsers(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip_user_route"}

	anon := rateKeyFor(t, cfg, nil)
	alice := rateKeyFor(t, cfg, float64(1))
	bob := rateKeyFor(t, cfg, float64(2))

	assert.Contains(t, anon, "anon")
	assert.NotEqual(t, alice, bob)
	assert.NotEqual(t, anon, alice)
}

func TestBuildRateKeyIPStrategy(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}

	// Different users on the same address share one bucket.
	assert.Equal(t, rateKeyFor(t, cfg, float64(1)), rateKeyFor(t, cfg, float64(2)))
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(5), asInt64(int64(5)))
	assert.Equal(t, int64(5), asInt64(float64(5)))
	assert.Equal(t, int64(5), asInt64("5"))
	assert.Equal(t, int64(0), asInt64("nope"))
	assert.Equal(t, int64(0), asInt64(nil))
}

func TestNilRedisDisablesRateLimit(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Capacity: 1}
	mw := NewTokenBucket(cfg, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	h := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.True(t, called)
}
