package middleware

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the application-wide structured logger. JSON to stdout so the
// log shipper can pick it up without any adapter.
var Logger *slog.Logger

func init() {
	level := slog.LevelInfo
	if strings.EqualFold(os.Getenv("LOG_LEVEL"), "debug") {
		level = slog.LevelDebug
	}
	Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// slowRequestThreshold marks requests worth a warning even when they succeed.
const slowRequestThreshold = time.Second

// StructuredLogger logs one line per request. Server errors log at error
// level, slow requests at warn, everything else at info. Health and
// metrics endpoints are skipped to keep the log readable.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Path()
		if path == "/health" || path == "/metrics" {
			return err
		}

		status := c.Response().StatusCode()
		latency := time.Since(start)

		fields := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", path),
			slog.String("ip", c.IP()),
			slog.Duration("latency", latency),
			slog.String("user_agent", c.Get("User-Agent")),
		}
		if uid := c.Locals("userID"); uid != nil {
			fields = append(fields, slog.Any("user_id", uid))
		}
		if rid := c.Locals("requestid"); rid != nil {
			fields = append(fields, slog.Any("request_id", rid))
		}
		if err != nil {
			fields = append(fields, slog.String("error", err.Error()))
		}

		switch {
		case err != nil || status >= fiber.StatusInternalServerError:
			Logger.Error("request failed", fields...)
		case latency >= slowRequestThreshold:
			Logger.Warn("slow request", fields...)
		default:
			Logger.Info("request processed", fields...)
		}

		return err
	}
}
