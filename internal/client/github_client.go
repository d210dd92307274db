package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/hacktrack/api/internal/config"
	"github.com/hacktrack/api/internal/model"
)

// ErrInvalidRepoURL is returned for URLs that do not point at a GitHub repo.
// Handlers map it to a validation failure, before any network call is made.
var ErrInvalidRepoURL = errors.New("invalid GitHub URL, expected https://github.com/owner/repo")

var (
	repoURLPattern     = regexp.MustCompile(`(?i)github\.com/([^/]+)/([^/#?]+)`)
	readmeTitlePattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	whitespacePattern  = regexp.MustCompile(`[\n\r]+`)
)

const (
	readmeTLDRMaxLen = 240
	commitPageSize   = 50
)

// GitHubClient fetches repository metadata (README + commit subjects) used
// for lyric construction.
type GitHubClient struct {
	httpClient *http.Client
	token      string
}

// NewGitHubClient creates a GitHub client. The token is optional; without it
// requests run against the anonymous rate limit.
func NewGitHubClient(cfg *config.GitHubConfig) *GitHubClient {
	return &GitHubClient{
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		token: cfg.Token,
	}
}

// FetchRepoData resolves a repository URL to its README title/TLDR and
// recent commit subjects. A failed commit fetch degrades to README-only.
func (c *GitHubClient) FetchRepoData(ctx context.Context, repoURL string) (*model.RepoMeta, error) {
	owner, repo, err := ParseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	readme := c.fetchReadme(ctx, owner, repo)
	title, tldr := ParseReadme(readme)

	commits, err := c.fetchCommitSubjects(ctx, owner, repo)
	if err != nil {
		// rate limited or private repo: the README is enough to sing about
		log.Printf("[GitHub API] commits for %s/%s unavailable: %v", owner, repo, err)
		commits = nil
	}

	return &model.RepoMeta{
		ReadmeTitle: title,
		ReadmeTLDR:  tldr,
		Commits:     commits,
	}, nil
}

// ParseRepoURL extracts owner and repo from a GitHub URL.
func ParseRepoURL(repoURL string) (owner, repo string, err error) {
	m := repoURLPattern.FindStringSubmatch(repoURL)
	if m == nil {
		return "", "", ErrInvalidRepoURL
	}
	return m[1], m[2], nil
}

// ParseReadme pulls the first heading as title and the first non-heading
// paragraph, collapsed to one line and capped, as the TLDR.
func ParseReadme(md string) (title, tldr string) {
	if md == "" {
		return "", ""
	}
	if m := readmeTitlePattern.FindStringSubmatch(md); m != nil {
		title = strings.TrimSpace(m[1])
	}

	blocks := strings.Split(strings.ReplaceAll(md, "\r", ""), "\n\n")
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if b == "" || strings.HasPrefix(b, "#") {
			continue
		}
		tldr = whitespacePattern.ReplaceAllString(b, " ")
		if len(tldr) > readmeTLDRMaxLen {
			tldr = tldr[:readmeTLDRMaxLen]
		}
		break
	}
	return title, tldr
}

// fetchReadme tries the raw README on the main then master branch.
func (c *GitHubClient) fetchReadme(ctx context.Context, owner, repo string) string {
	for _, branch := range []string{"main", "master"} {
		url := fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/%s/README.md", owner, repo, branch)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			continue
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr == nil && resp.StatusCode == http.StatusOK {
			return string(body)
		}
	}
	return ""
}

// fetchCommitSubjects returns the subject line of the most recent commits.
func (c *GitHubClient) fetchCommitSubjects(ctx context.Context, owner, repo string) ([]string, error) {
	url := fmt.Sprintf("https://api.github.com/repos/%s/%s/commits?per_page=%d", owner, repo, commitPageSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("github API error (status %d): %s", resp.StatusCode, string(body))
	}

	var payload []struct {
		Commit struct {
			Message string `json:"message"`
		} `json:"commit"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	var subjects []string
	for _, entry := range payload {
		subject, _, _ := strings.Cut(entry.Commit.Message, "\n")
		if subject != "" {
			subjects = append(subjects, subject)
		}
	}
	return subjects, nil
}
