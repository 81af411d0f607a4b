package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/pkg/metrics"
)

const handlerTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// CORS for the web and mobile frontends
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// The French route names of the first release are served until 2027.
	app.Use(DeprecationMiddleware([]DeprecatedRoute{
		{
			Prefix:      "/v1/annonces",
			SunsetDate:  time.Date(2027, 3, 1, 0, 0, 0, 0, time.UTC),
			Alternative: "/v1/listings",
		},
	}))

	// Health & readiness (no timeout, these are fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	auth := RequireAuth(deps)
	ownerOnly := RequireRole(domain.RoleOwner, domain.RoleAdmin)
	adminOnly := RequireRole(domain.RoleAdmin)

	// Auth
	v1.Post("/auth/register", timeout.NewWithContext(RegisterHandler(deps), handlerTimeout))
	v1.Post("/auth/login", timeout.NewWithContext(LoginHandler(deps), handlerTimeout))
	v1.Get("/auth/me", auth, timeout.NewWithContext(MeHandler(deps), handlerTimeout))

	// Universities (campus catalog)
	v1.Get("/universities", timeout.NewWithContext(ListUniversitiesHandler(deps), handlerTimeout))
	v1.Get("/universities/:id", timeout.NewWithContext(GetUniversityHandler(deps), handlerTimeout))

	// Listings: public search and detail, authenticated writes.
	// Static segments must register before /:id.
	v1.Get("/listings", timeout.NewWithContext(SearchListingsHandler(deps), handlerTimeout))
	v1.Get("/listings/nearby", timeout.NewWithContext(NearbyListingsHandler(deps), handlerTimeout))
	v1.Get("/listings/mine", auth, ownerOnly, timeout.NewWithContext(MyListingsHandler(deps), handlerTimeout))
	v1.Get("/listings/:id", timeout.NewWithContext(GetListingHandler(deps), handlerTimeout))
	v1.Post("/listings", auth, ownerOnly, timeout.NewWithContext(CreateListingHandler(deps), handlerTimeout))
	v1.Put("/listings/:id", auth, ownerOnly, timeout.NewWithContext(UpdateListingHandler(deps), handlerTimeout))
	v1.Delete("/listings/:id", auth, timeout.NewWithContext(DeleteListingHandler(deps), handlerTimeout))
	v1.Post("/listings/:id/photos", auth, ownerOnly, timeout.NewWithContext(AddListingPhotosHandler(deps), handlerTimeout))
	v1.Post("/listings/:id/report", auth, timeout.NewWithContext(ReportListingHandler(deps), handlerTimeout))

	// Legacy aliases kept for the first mobile release
	v1.Get("/annonces", timeout.NewWithContext(SearchListingsHandler(deps), handlerTimeout))
	v1.Get("/annonces/:id", timeout.NewWithContext(GetListingHandler(deps), handlerTimeout))

	// Route enrichment
	v1.Post("/routes/enrich", timeout.NewWithContext(EnrichRoutesHandler(deps), handlerTimeout))

	// Reservations
	v1.Post("/reservations", auth, timeout.NewWithContext(CreateReservationHandler(deps), handlerTimeout))
	v1.Get("/reservations", auth, timeout.NewWithContext(MyReservationsHandler(deps), handlerTimeout))
	v1.Get("/reservations/received", auth, ownerOnly, timeout.NewWithContext(OwnerReservationsHandler(deps), handlerTimeout))
	v1.Get("/reservations/:id", auth, timeout.NewWithContext(GetReservationHandler(deps), handlerTimeout))
	v1.Post("/reservations/:id/respond", auth, ownerOnly, timeout.NewWithContext(RespondReservationHandler(deps), handlerTimeout))
	v1.Delete("/reservations/:id", auth, timeout.NewWithContext(CancelReservationHandler(deps), handlerTimeout))

	// Notifications
	v1.Get("/notifications", auth, timeout.NewWithContext(ListNotificationsHandler(deps), handlerTimeout))
	v1.Post("/notifications/read-all", auth, timeout.NewWithContext(MarkAllNotificationsReadHandler(deps), handlerTimeout))
	v1.Post("/notifications/:id/read", auth, timeout.NewWithContext(MarkNotificationReadHandler(deps), handlerTimeout))
	v1.Delete("/notifications/:id", auth, timeout.NewWithContext(DeleteNotificationHandler(deps), handlerTimeout))

	// Admin
	admin := v1.Group("/admin", auth, adminOnly)
	admin.Get("/stats", timeout.NewWithContext(AdminStatsHandler(deps), handlerTimeout))
	admin.Get("/listings/pending", timeout.NewWithContext(PendingListingsHandler(deps), handlerTimeout))
	admin.Post("/listings/:id/review", timeout.NewWithContext(ReviewListingHandler(deps), handlerTimeout))
	admin.Get("/reports", timeout.NewWithContext(PendingReportsHandler(deps), handlerTimeout))
	admin.Post("/reports/:id/resolve", timeout.NewWithContext(ResolveReportHandler(deps), handlerTimeout))
	admin.Get("/users", timeout.NewWithContext(ListUsersHandler(deps), handlerTimeout))
	admin.Post("/users/:id/verify", timeout.NewWithContext(VerifyUserHandler(deps), handlerTimeout))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket notification relay
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", WebSocketUpgradeHandler(deps))
}
