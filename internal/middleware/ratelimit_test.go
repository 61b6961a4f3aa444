package middleware

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRateLimit(t *testing.T) {
	t.Setenv("APP_ENV", "")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)

	// A different caller has its own budget.
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:5.6.7.8", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// The window expiring resets the counter.
	mr.FastForward(2 * time.Minute)
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_FailOpen(t *testing.T) {
	t.Setenv("APP_ENV", "")
	ctx := context.Background()

	// No Redis at all.
	allowed, err := CheckRateLimit(ctx, nil, "login", "ip:1.2.3.4", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	// Redis reachable but erroring.
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()
	allowed, err = CheckRateLimit(ctx, rdb, "login", "ip:1.2.3.4", 1, time.Minute)
	require.Error(t, err)
	assert.True(t, allowed)
}

func TestCheckRateLimit_TestEnvBypass(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	for i := 0; i < 10; i++ {
		allowed, err := CheckRateLimit(context.Background(), rdb, "login", "ip:1.2.3.4", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Setenv("APP_ENV", "")
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	app := fiber.New()
	app.Get("/limited", RateLimit(rdb, 2, time.Minute, "limited"), func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/limited", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
