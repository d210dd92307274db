package client

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// AudioDownloader saves finished clips from the provider's CDN to local disk.
type AudioDownloader struct {
	httpClient *http.Client
	dir        string
}

// NewAudioDownloader creates a downloader writing into dir.
func NewAudioDownloader(dir string) *AudioDownloader {
	return &AudioDownloader{
		httpClient: &http.Client{
			Timeout: 180 * time.Second,
		},
		dir: dir,
	}
}

// Download fetches audioURL, following redirects to the CDN, and writes it
// under the configured directory. Returns the absolute path of the file.
func (d *AudioDownloader) Download(ctx context.Context, audioURL, filename string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	log.Printf("[Downloader] → GET %s", audioURL)
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("audio download error (status %d)", resp.StatusCode)
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create downloads dir: %w", err)
	}

	path := filepath.Join(d.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	log.Printf("[Downloader] saved %s", abs)
	return abs, nil
}

// IsConfigured returns true if a download directory is set.
func (d *AudioDownloader) IsConfigured() bool {
	return d.dir != ""
}
