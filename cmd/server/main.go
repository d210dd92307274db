package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/config"
	"github.com/hacktrack/api/internal/handler"
	"github.com/hacktrack/api/internal/middleware"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/internal/taste"
	"github.com/hacktrack/api/internal/worker"
	ws "github.com/hacktrack/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()

	// Initialize clients
	sunoClient := client.NewSunoClient(&cfg.Suno)
	if !sunoClient.IsConfigured() {
		log.Println("Warning: SUNO_API_KEY not set, generation calls will fail")
	}
	spotifyAuth := client.NewSpotifyAuth(&cfg.Spotify)
	githubClient := client.NewGitHubClient(&cfg.GitHub)
	downloader := client.NewAudioDownloader(cfg.Downloads.Dir)

	// Initialize services
	tasteService := service.NewTasteService(func(accessToken string) service.ListenerSource {
		return client.NewSpotifyClient(accessToken)
	})
	clipService := service.NewClipService(sunoClient, downloader)
	anthemService := service.NewAnthemService(tasteService, sunoClient, clipService, redisClient, asynqClient)
	streamService := service.NewStreamService(sunoClient, clipService, &cfg.Poll, &cfg.Stream)
	songifyService := service.NewSongifyService(githubClient, sunoClient, clipService)

	// Initialize handlers
	anthemHandler := handler.NewAnthemHandler(anthemService, validate)
	clipHandler := handler.NewClipHandler(clipService, validate)
	songifyHandler := handler.NewSongifyHandler(songifyService, validate)
	spotifyHandler := handler.NewSpotifyHandler(spotifyAuth, tasteService, validate)
	streamHandler := handler.NewStreamHandler(anthemService, streamService, validate)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":             "ok",
			"suno_configured":    sunoClient.IsConfigured(),
			"spotify_configured": spotifyAuth.IsConfigured(),
		})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":  "hacktrack",
			"moods": taste.MoodKeys(),
		})
	})

	// API routes
	api := app.Group("/api")

	// Spotify routes
	spotify := api.Group("/spotify")
	spotify.Get("/authorize", spotifyHandler.Authorize)
	spotify.Get("/callback", spotifyHandler.Callback)
	spotify.Post("/refresh", spotifyHandler.Refresh)
	spotify.Post("/me", rateLimiter.TasteLimit(cfg.RateLimit.TastePerMin), spotifyHandler.Me)
	spotify.Post("/me-min", rateLimiter.TasteLimit(cfg.RateLimit.TastePerMin), spotifyHandler.MeMin)
	spotify.Post("/recent", rateLimiter.TasteLimit(cfg.RateLimit.TastePerMin), spotifyHandler.Recent)
	spotify.Post("/taste", rateLimiter.TasteLimit(cfg.RateLimit.TastePerMin), spotifyHandler.Taste)

	// Generation routes
	api.Post("/team-anthem", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), anthemHandler.TeamAnthem)
	api.Post("/hackjam-once", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), anthemHandler.HackJamOnce)
	api.Post("/songify", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), songifyHandler.Songify)
	api.Post("/repojam-once", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), songifyHandler.RepoJamOnce)
	api.Post("/hackjam-stream", rateLimiter.StreamLimit(cfg.RateLimit.StreamPerHour), streamHandler.HackJamStream)

	// Clip routes
	api.Get("/clip/:clipId", clipHandler.Get)
	api.Get("/clip/:clipId/wait", clipHandler.Wait)
	api.Post("/wait-and-save", clipHandler.WaitAndSave)

	// Background anthem jobs
	anthem := api.Group("/anthem")
	anthem.Post("/start", rateLimiter.GenerateLimit(cfg.RateLimit.GeneratePerHour), anthemHandler.Start)
	anthem.Get("/status/:jobId", anthemHandler.Status)
	anthem.Get("/result/:jobId", anthemHandler.Result)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, anthemService, clipService, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, anthemService *service.AnthemService, clipService *service.ClipService, hub *ws.Hub) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 5,
			Queues: map[string]int{
				"anthem": 10,
			},
		},
	)

	anthemWorker := worker.NewAnthemWorker(anthemService, clipService, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeAnthem, anthemWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
