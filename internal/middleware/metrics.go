package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters exported alongside the standard HTTP metrics.
var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silenceboost_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// RateLimited counts requests rejected by the rate limiter, by resource.
	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silenceboost_rate_limited_total",
		Help: "Total number of requests rejected by rate limiting",
	}, []string{"resource"})

	// VotesRecorded counts accepted battle votes by target side.
	VotesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silenceboost_memewar_votes_total",
		Help: "Total number of accepted meme war votes",
	}, []string{"target"})

	// WarsResolved counts wars moved to the ended phase.
	WarsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "silenceboost_memewar_resolutions_total",
		Help: "Total number of meme wars resolved",
	})

	// WebSocketDrops counts messages dropped on the way to a client.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silenceboost_websocket_drops_total",
		Help: "Total number of websocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})

	// ActiveWebSockets tracks the number of open websocket connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "silenceboost_websocket_connections",
		Help: "Number of currently open websocket connections",
	})

	// NotificationsPublished counts notifications written, by kind.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "silenceboost_notifications_total",
		Help: "Total number of notifications created",
	}, []string{"kind"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}
