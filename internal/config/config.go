package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Suno      SunoConfig
	Spotify   SpotifyConfig
	GitHub    GitHubConfig
	Downloads DownloadsConfig
	Poll      PollConfig
	Stream    StreamConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	TastePerMin     int
	GeneratePerHour int
	StreamPerHour   int
}

type SunoConfig struct {
	APIKey  string
	BaseURL string
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type GitHubConfig struct {
	Token string
}

type DownloadsConfig struct {
	Dir string
}

// PollConfig tunes clip status polling.
type PollConfig struct {
	IntervalSeconds  float64
	StreamingTimeout int // seconds to wait for the provisional stream URL
	CompleteTimeout  int // seconds to wait for the final clip
}

// StreamConfig caps a hackjam stream run.
type StreamConfig struct {
	MaxTracks  int
	MaxMinutes int
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("SUNO_API_KEY")
	readSecret("SPOTIFY_CLIENT_SECRET")
	readSecret("GITHUB_TOKEN")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("suno.api_key", "SUNO_API_KEY")
	_ = viper.BindEnv("suno.base_url", "SUNO_BASE_URL")
	_ = viper.BindEnv("spotify.client_id", "SPOTIFY_CLIENT_ID")
	_ = viper.BindEnv("spotify.client_secret", "SPOTIFY_CLIENT_SECRET")
	_ = viper.BindEnv("spotify.redirect_url", "SPOTIFY_REDIRECT_URI")
	_ = viper.BindEnv("github.token", "GITHUB_TOKEN")
	_ = viper.BindEnv("downloads.dir", "DOWNLOADS_DIR")
	_ = viper.BindEnv("poll.interval_seconds", "POLL_INTERVAL_SECONDS")
	_ = viper.BindEnv("poll.streaming_timeout", "POLL_STREAMING_TIMEOUT")
	_ = viper.BindEnv("poll.complete_timeout", "POLL_COMPLETE_TIMEOUT")
	_ = viper.BindEnv("stream.max_tracks", "STREAM_MAX_TRACKS")
	_ = viper.BindEnv("stream.max_minutes", "STREAM_MAX_MINUTES")

	// Defaults
	viper.SetDefault("server.port", "8787")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("ratelimit.taste_per_min", 60)
	viper.SetDefault("ratelimit.generate_per_hour", 30)
	viper.SetDefault("ratelimit.stream_per_hour", 10)

	// Suno defaults
	viper.SetDefault("suno.base_url", "https://studio-api.prod.suno.com/api/v2/external/hackmit")

	// Downloads defaults
	viper.SetDefault("downloads.dir", "downloads")

	// Polling defaults
	viper.SetDefault("poll.interval_seconds", 2.5)
	viper.SetDefault("poll.streaming_timeout", 90)
	viper.SetDefault("poll.complete_timeout", 180)

	// Stream defaults
	viper.SetDefault("stream.max_tracks", 10)
	viper.SetDefault("stream.max_minutes", 15)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		RateLimit: RateLimitConfig{
			TastePerMin:     viper.GetInt("ratelimit.taste_per_min"),
			GeneratePerHour: viper.GetInt("ratelimit.generate_per_hour"),
			StreamPerHour:   viper.GetInt("ratelimit.stream_per_hour"),
		},
		Suno: SunoConfig{
			APIKey:  viper.GetString("suno.api_key"),
			BaseURL: viper.GetString("suno.base_url"),
		},
		Spotify: SpotifyConfig{
			ClientID:     viper.GetString("spotify.client_id"),
			ClientSecret: viper.GetString("spotify.client_secret"),
			RedirectURL:  viper.GetString("spotify.redirect_url"),
		},
		GitHub: GitHubConfig{
			Token: viper.GetString("github.token"),
		},
		Downloads: DownloadsConfig{
			Dir: viper.GetString("downloads.dir"),
		},
		Poll: PollConfig{
			IntervalSeconds:  viper.GetFloat64("poll.interval_seconds"),
			StreamingTimeout: viper.GetInt("poll.streaming_timeout"),
			CompleteTimeout:  viper.GetInt("poll.complete_timeout"),
		},
		Stream: StreamConfig{
			MaxTracks:  viper.GetInt("stream.max_tracks"),
			MaxMinutes: viper.GetInt("stream.max_minutes"),
		},
	}

	return cfg, nil
}
