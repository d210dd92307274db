package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/hacktrack/api/internal/config"
)

// MusicGenerator defines the interface for the external generation provider
type MusicGenerator interface {
	Generate(ctx context.Context, req *GenerateClipRequest) (*GenerateClipResponse, error)
	GetClip(ctx context.Context, clipID string) (*Clip, error)
}

// SunoClient implements MusicGenerator for the Suno HackMIT API
type SunoClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// GenerateClipRequest represents the request for clip generation. Exactly one
// of Topic (provider writes lyrics) or Prompt (custom lyrics) should be set.
type GenerateClipRequest struct {
	Topic            string `json:"topic,omitempty"`
	Prompt           string `json:"prompt,omitempty"`
	Tags             string `json:"tags"`
	MakeInstrumental *bool  `json:"make_instrumental,omitempty"`
}

// GenerateClipResponse represents the response from clip generation.
// A missing ID is a fatal condition for the submission.
type GenerateClipResponse struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// Clip represents one generation clip as returned by the clips endpoint
type Clip struct {
	ID       string       `json:"id"`
	Status   string       `json:"status"`
	Title    string       `json:"title,omitempty"`
	AudioURL string       `json:"audio_url,omitempty"`
	ImageURL string       `json:"image_url,omitempty"`
	Metadata ClipMetadata `json:"metadata"`
}

// ClipMetadata carries secondary clip fields
type ClipMetadata struct {
	Duration float64 `json:"duration,omitempty"`
}

// NewSunoClient creates a new Suno API client
func NewSunoClient(cfg *config.SunoConfig) *SunoClient {
	return &SunoClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Generate submits a generation job
func (c *SunoClient) Generate(ctx context.Context, req *GenerateClipRequest) (*GenerateClipResponse, error) {
	var result GenerateClipResponse
	if err := c.post(ctx, "/generate", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetClip fetches the current state of a clip. The provider answers with an
// array even for a single id; an empty array means no data yet, not an error.
func (c *SunoClient) GetClip(ctx context.Context, clipID string) (*Clip, error) {
	endpoint := "/clips?ids=" + url.QueryEscape(clipID)
	var clips []Clip
	if err := c.get(ctx, endpoint, &clips); err != nil {
		return nil, err
	}
	if len(clips) == 0 {
		return nil, nil
	}
	return &clips[0], nil
}

// post sends a POST request with JSON body
func (c *SunoClient) post(ctx context.Context, endpoint string, body interface{}, result interface{}) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// get sends a GET request and parses JSON response
func (c *SunoClient) get(ctx context.Context, endpoint string, result interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return c.doRequest(req, result)
}

// doRequest executes an HTTP request and parses the response
func (c *SunoClient) doRequest(req *http.Request, result interface{}) error {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[Suno API] → %s %s", req.Method, req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — request failed: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("[Suno API] ✗ %s %s — failed to read response: %v", req.Method, req.URL.String(), err)
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("[Suno API] ← %d %s %s — %s", resp.StatusCode, req.Method, req.URL.String(), string(respBody))
		return fmt.Errorf("suno API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		log.Printf("[Suno API] ✗ unmarshal error for %s %s: %v (body: %s)", req.Method, req.URL.String(), err, string(respBody))
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return nil
}

// IsConfigured returns true if the client has valid configuration
func (c *SunoClient) IsConfigured() bool {
	return c.apiKey != ""
}
