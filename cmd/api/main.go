package main

import (
	"context"
	"log"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/forvaidya/icomment/internal/config"
	"github.com/forvaidya/icomment/internal/handler"
	"github.com/forvaidya/icomment/internal/identity"
	"github.com/forvaidya/icomment/internal/kv"
	"github.com/forvaidya/icomment/internal/metrics"
	"github.com/forvaidya/icomment/internal/middleware"
	"github.com/forvaidya/icomment/internal/pkg/logger"
	"github.com/forvaidya/icomment/internal/ratelimit"
	"github.com/forvaidya/icomment/internal/repository"
	"github.com/forvaidya/icomment/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	zlog, err := logger.New(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()

	if err := repository.Migrate(context.Background(), db); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}

	redisClient, err := config.NewRedisClient(cfg)
	if err != nil {
		zlog.Fatal("redis connection failed", zap.Error(err))
	}
	defer redisClient.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		zlog.Warn("minio unavailable, attachment blobs will be stranded", zap.Error(err))
		minioClient = nil
	}

	metrics.MustRegister()

	limiterCfg := ratelimit.DefaultConfig()
	limiterCfg.Window = cfg.RateLimitWindow
	limiterCfg.Authenticated = ratelimit.ClassLimits{Read: cfg.AuthReadLimit, Write: cfg.AuthWriteLimit}
	limiterCfg.Anonymous = ratelimit.ClassLimits{Read: cfg.AnonReadLimit, Write: cfg.AnonWriteLimit}
	limiter := ratelimit.New(kv.NewRedis(redisClient), limiterCfg, zlog)

	var resolver identity.Resolver
	switch cfg.AuthMode {
	case "jwt":
		if cfg.JWTSecret == "" {
			zlog.Fatal("AUTH_MODE=jwt requires JWT_SECRET")
		}
		resolver = identity.NewJWT(cfg.JWTSecret, cfg.JWTIssuer)
	default:
		zlog.Warn("static auth mode active, do not use in production",
			zap.String("identity", cfg.DevIdentity))
		resolver = identity.NewStatic(cfg.DevIdentity)
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, redisClient, minioClient, cfg, zlog)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, resolver, services, limiter)

	zlog.Info("server starting", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, resolver identity.Resolver, services *service.Services, limiter *ratelimit.Limiter) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	readLimit := middleware.RateLimit(limiter, ratelimit.ActionRead)
	writeLimit := middleware.RateLimit(limiter, ratelimit.ActionWrite)

	v1 := app.Group("/api/v1", middleware.Authenticate(resolver, services.User))

	discussions := v1.Group("/discussions")
	discussions.Post("/", writeLimit, middleware.RequireAuth(), h.Discussion.Create)
	discussions.Get("/", readLimit, h.Discussion.List)
	discussions.Get("/:discussionId", readLimit, h.Discussion.Get)
	discussions.Post("/:discussionId/archive", writeLimit, middleware.RequireAuth(), h.Discussion.SetArchived)
	discussions.Delete("/:discussionId", writeLimit, middleware.RequireAuth(), h.Discussion.Delete)
	discussions.Get("/:discussionId/comments", readLimit, h.Comment.Tree)
	discussions.Post("/:discussionId/comments", writeLimit, middleware.RequireAuth(), h.Comment.Create)

	comments := v1.Group("/comments")
	comments.Patch("/:commentId", writeLimit, middleware.RequireAuth(), h.Comment.Update)
	comments.Delete("/:commentId", writeLimit, middleware.RequireAuth(), h.Comment.Delete)
	comments.Post("/:commentId/restore", writeLimit, middleware.RequireAuth(), h.Comment.Restore)
	comments.Post("/:commentId/attachments", writeLimit, middleware.RequireAuth(), h.Attachment.Add)
	comments.Get("/:commentId/attachments", readLimit, h.Attachment.List)

	attachments := v1.Group("/attachments")
	attachments.Delete("/:attachmentId", writeLimit, middleware.RequireAuth(), h.Attachment.Delete)

	users := v1.Group("/users")
	users.Get("/me", readLimit, middleware.RequireAuth(), h.User.GetProfile)
	users.Post("/:userId/admin", writeLimit, middleware.RequireAuth(), h.User.SetAdmin)
	users.Delete("/:userId", writeLimit, middleware.RequireAuth(), h.User.Delete)

	moderation := v1.Group("/moderation")
	moderation.Get("/recent", readLimit, middleware.RequireAuth(), h.Moderation.Recent)
}
