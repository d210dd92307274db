package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/config"
	"github.com/hacktrack/api/internal/handler"
	"github.com/hacktrack/api/internal/middleware"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/internal/taste"
)

// testApp holds all components needed for testing
type testApp struct {
	app *fiber.App
}

// setupApp creates a Fiber app wired like main.go but with unconfigured
// external clients, so only validation and routing behavior is exercised.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	redisClient := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // use DB 15 for tests to avoid collision
	})

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr: "localhost:6379",
		DB:   15,
	})
	t.Cleanup(func() { asynqClient.Close() })

	validate := validator.New()

	// External clients, all unconfigured
	sunoClient := client.NewSunoClient(&config.SunoConfig{})
	spotifyAuth := client.NewSpotifyAuth(&config.SpotifyConfig{})
	githubClient := client.NewGitHubClient(&config.GitHubConfig{})

	tasteService := service.NewTasteService(func(accessToken string) service.ListenerSource {
		return client.NewSpotifyClient(accessToken)
	})
	clipService := service.NewClipService(sunoClient, nil)
	anthemService := service.NewAnthemService(tasteService, sunoClient, clipService, redisClient, asynqClient)
	streamService := service.NewStreamService(sunoClient, clipService,
		&config.PollConfig{IntervalSeconds: 2.5, StreamingTimeout: 90, CompleteTimeout: 180},
		&config.StreamConfig{MaxTracks: 10, MaxMinutes: 15},
	)
	songifyService := service.NewSongifyService(githubClient, sunoClient, clipService)

	anthemHandler := handler.NewAnthemHandler(anthemService, validate)
	clipHandler := handler.NewClipHandler(clipService, validate)
	songifyHandler := handler.NewSongifyHandler(songifyService, validate)
	spotifyHandler := handler.NewSpotifyHandler(spotifyAuth, tasteService, validate)
	streamHandler := handler.NewStreamHandler(anthemService, streamService, validate)

	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"name":  "hacktrack",
			"moods": taste.MoodKeys(),
		})
	})

	api := app.Group("/api")

	spotify := api.Group("/spotify")
	spotify.Get("/authorize", spotifyHandler.Authorize)
	spotify.Get("/callback", spotifyHandler.Callback)
	spotify.Post("/refresh", spotifyHandler.Refresh)
	spotify.Post("/me", spotifyHandler.Me)
	spotify.Post("/me-min", spotifyHandler.MeMin)
	spotify.Post("/recent", spotifyHandler.Recent)
	spotify.Post("/taste", spotifyHandler.Taste)

	// Use very high rate limits so tests don't get blocked
	api.Post("/team-anthem", rateLimiter.GenerateLimit(10000), anthemHandler.TeamAnthem)
	api.Post("/hackjam-once", rateLimiter.GenerateLimit(10000), anthemHandler.HackJamOnce)
	api.Post("/songify", rateLimiter.GenerateLimit(10000), songifyHandler.Songify)
	api.Post("/repojam-once", rateLimiter.GenerateLimit(10000), songifyHandler.RepoJamOnce)
	api.Post("/hackjam-stream", rateLimiter.StreamLimit(10000), streamHandler.HackJamStream)

	api.Get("/clip/:clipId", clipHandler.Get)
	api.Get("/clip/:clipId/wait", clipHandler.Wait)
	api.Post("/wait-and-save", clipHandler.WaitAndSave)

	anthem := api.Group("/anthem")
	anthem.Post("/start", anthemHandler.Start)
	anthem.Get("/status/:jobId", anthemHandler.Status)
	anthem.Get("/result/:jobId", anthemHandler.Result)

	return &testApp{app: app}
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
