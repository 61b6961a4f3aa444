package server

import (
	"context"
	"fmt"
	"time"

	_ "silenceboost/docs" // swagger docs
	"silenceboost/internal/cache"
	"silenceboost/internal/config"
	"silenceboost/internal/database"
	"silenceboost/internal/middleware"
	"silenceboost/internal/notifications"
	"silenceboost/internal/repository"
	"silenceboost/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	warRepo        repository.WarRepository
	notifRepo      repository.NotificationRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	feedService    *service.FeedService
	postService    *service.PostService
	userService    *service.UserService
	warService     *service.WarService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	warRepo := repository.NewWarRepository(db)
	notifRepo := repository.NewNotificationRepository(db)

	prom := middleware.InitMetrics("silenceboost-api")

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: prom,
		userRepo:       userRepo,
		postRepo:       postRepo,
		warRepo:        warRepo,
		notifRepo:      notifRepo,
	}

	var publisher service.EventPublisher = service.NopPublisher{}
	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
		server.hub = notifications.NewHub()
		publisher = server.notifier
	}

	server.feedService = service.NewFeedService(postRepo, userRepo)
	server.postService = service.NewPostService(postRepo, userRepo, notifRepo, publisher)
	server.userService = service.NewUserService(userRepo, notifRepo, publisher)
	server.warService = service.NewWarService(warRepo, userRepo, notifRepo, publisher)

	return server, nil
}

// StartHubWiring subscribes the websocket hub to Redis pub/sub.
func (s *Server) StartHubWiring(ctx context.Context) error {
	if s.hub == nil || s.notifier == nil {
		return nil
	}
	return s.hub.StartWiring(ctx, s.notifier)
}

// Shutdown closes all live websocket connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub == nil {
		return nil
	}
	return s.hub.Shutdown(ctx)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Silence Booster Metrics Dashboard",
	}))

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)

	// Public feed and post routes. Feed personalization keys off an optional
	// bearer token, so these stay outside AuthRequired.
	api.Get("/feed", s.GetFeed)
	api.Get("/discover", s.Discover)

	publicPosts := api.Group("/posts")
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 10, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/:id/replies", s.GetReplies)
	publicPosts.Get("/:id", s.GetPost)

	// Public meme war routes
	memewar := api.Group("/memewar")
	memewar.Get("/active", s.GetActiveWar)
	memewar.Get("/winners", s.GetWinners)
	memewar.Get("/leaderboard", s.GetLeaderboard)
	memewar.Get("/:warId/entries", s.GetWarEntries)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	// User routes
	users := protected.Group("/users")
	users.Get("/me", s.GetMyProfile)
	users.Put("/me/badge", s.SetActiveBadge)
	users.Get("/followable", s.GetFollowableAccounts)
	users.Post("/:id/follow", s.FollowUser)
	users.Delete("/:id/follow", s.UnfollowUser)
	users.Get("/:id/posts", s.GetUserPosts)
	users.Get("/:id", s.GetUserProfile)

	// Protected post routes
	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 5, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.ToggleLike)
	posts.Post("/:id/replies", middleware.RateLimit(
		s.redis, 10, time.Minute, "create_reply"), s.CreateReply)
	posts.Post("/:id/share", s.SharePost)
	posts.Delete("/:id", s.DeletePost)

	// Protected meme war routes
	warRoutes := protected.Group("/memewar")
	warRoutes.Post("/:warId/entries", middleware.RateLimit(
		s.redis, 3, time.Minute, "submit_entry"), s.SubmitEntry)
	warRoutes.Post("/entries/:entryId/respond", middleware.RateLimit(
		s.redis, 3, time.Minute, "respond_entry"), s.RespondToEntry)
	warRoutes.Post("/entries/:entryId/vote", s.VoteOnEntry)

	// Notification routes
	notifs := protected.Group("/notifications")
	notifs.Get("/", s.GetNotifications)
	notifs.Get("/unread-count", s.GetUnreadCount)
	notifs.Post("/read-all", s.MarkAllNotificationsRead)
	notifs.Post("/:id/read", s.MarkNotificationRead)

	// Websocket endpoint
	ws := api.Group("/ws", middleware.AuthRequired)
	ws.Get("/", s.WebsocketHandler())

	// Admin routes drive the war lifecycle
	admin := protected.Group("/admin", s.AdminRequired())
	admin.Post("/memewar/start", s.StartWar)
	admin.Post("/memewar/:warId/voting", s.StartVoting)
	admin.Post("/memewar/:warId/end", s.EndWar)
}

// HealthCheck is a legacy/simple alias for ReadinessCheck
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	return s.ReadinessCheck(c)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "disabled"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overall := "ready"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "not ready"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"time":   time.Now(),
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	})
}
