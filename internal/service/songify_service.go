package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/taste"
)

const (
	maxLyricsPreview = 600
	maxChorusLen     = 120
	maxCommitLines   = 14
)

var (
	boringCommitPattern = regexp.MustCompile(`(?i)^(merge|wip|fix typo|bump|ci|chore|update readme)`)
	whitespacePattern   = regexp.MustCompile(`\s+`)
)

var fallbackCommitLines = []string{
	"- first commit, first light",
	"- feature flags and hopeful logs",
	"- tests are green, deploy at dawn",
}

// SongifyService turns a GitHub repository's history into a song submission.
type SongifyService struct {
	github    *client.GitHubClient
	generator client.MusicGenerator
	clips     *ClipService
}

func NewSongifyService(github *client.GitHubClient, generator client.MusicGenerator, clips *ClipService) *SongifyService {
	return &SongifyService{github: github, generator: generator, clips: clips}
}

// Songify fetches repo metadata, builds lyrics from its commit log, and
// submits a custom-lyric generation.
func (s *SongifyService) Songify(ctx context.Context, req *model.SongifyRequest) (*model.SongifyResponse, error) {
	meta, err := s.github.FetchRepoData(ctx, req.RepoURL)
	if err != nil {
		return nil, err
	}

	lyrics := BuildLyrics(meta)
	tags := taste.MergeTags(req.Tags, req.Mood)

	gen, err := s.generator.Generate(ctx, &client.GenerateClipRequest{
		Prompt: lyrics,
		Tags:   tags,
	})
	if err != nil {
		return nil, err
	}
	if gen.ID == "" {
		return nil, fmt.Errorf("generation provider returned no clip id")
	}

	preview := lyrics
	if len(preview) > maxLyricsPreview {
		preview = preview[:maxLyricsPreview]
	}

	return &model.SongifyResponse{
		ClipID:        gen.ID,
		Tags:          tags,
		LyricsPreview: preview,
		RepoMeta:      *meta,
		TitleHint:     titleHint(meta, req.TeamName),
	}, nil
}

// RepoJamOnce runs songify and then, unless the caller opted out, waits for
// the clip to complete and optionally downloads it. A poll timeout surfaces
// as a degraded success carrying the last-known status.
func (s *SongifyService) RepoJamOnce(ctx context.Context, req *model.RepoJamOnceRequest, interval time.Duration) (*model.RepoJamOnceResponse, error) {
	submitted, err := s.Songify(ctx, &model.SongifyRequest{
		RepoURL:  req.RepoURL,
		Tags:     req.Tags,
		Mood:     req.Mood,
		TeamName: req.TeamName,
	})
	if err != nil {
		return nil, err
	}

	resp := &model.RepoJamOnceResponse{SongifyResponse: *submitted}

	wait := req.Wait == nil || *req.Wait
	if !wait {
		return resp, nil
	}

	final, err := s.clips.WaitAndSave(ctx, &model.WaitAndSaveRequest{
		ClipID:     submitted.ClipID,
		TimeoutSec: req.TimeoutSec,
		Download:   req.Download,
	}, interval)
	if err != nil {
		return nil, err
	}

	resp.Status = final.Status
	resp.Title = final.Title
	resp.ImageURL = final.ImageURL
	resp.AudioURL = final.AudioURL
	resp.Duration = final.Duration
	resp.SavedPath = final.SavedPath
	resp.Message = final.Message
	return resp, nil
}

// BuildLyrics assembles verse/chorus/verse/bridge sections from commit
// subjects, padding with stock lines when history runs short.
func BuildLyrics(meta *model.RepoMeta) string {
	lines := commitLines(meta.Commits)
	for len(lines) < 6 {
		lines = append(lines, fallbackCommitLines[len(lines)%len(fallbackCommitLines)])
	}

	verse1 := lines[:6]
	verse2 := slice(lines, 6, 12)
	bridge := slice(lines, 12, 16)

	chorus := meta.ReadmeTLDR
	if chorus == "" {
		chorus = meta.ReadmeTitle
	}
	if chorus == "" {
		chorus = "ship it at HackMIT"
	}
	if len(chorus) > maxChorusLen {
		chorus = chorus[:maxChorusLen]
	}

	var b strings.Builder
	b.WriteString("[Verse 1]\n")
	b.WriteString(strings.Join(verse1, "\n"))
	b.WriteString("\n\n[Chorus]\n")
	b.WriteString(chorus)
	b.WriteString("\nbuild, refactor, iterate, we ship tonight\n")
	if len(verse2) > 0 {
		b.WriteString("\n[Verse 2]\n")
		b.WriteString(strings.Join(verse2, "\n"))
		b.WriteString("\n")
	}
	if len(bridge) > 0 {
		b.WriteString("\n[Bridge]\n")
		b.WriteString(strings.Join(bridge, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

// commitLines filters noise commits and formats the survivors as lyric lines.
func commitLines(commits []string) []string {
	lines := make([]string, 0, maxCommitLines)
	for _, subject := range commits {
		cleaned := strings.TrimSpace(whitespacePattern.ReplaceAllString(subject, " "))
		if len(cleaned) < 8 || boringCommitPattern.MatchString(cleaned) {
			continue
		}
		lines = append(lines, "- "+cleaned)
		if len(lines) == maxCommitLines {
			break
		}
	}
	return lines
}

func slice(lines []string, from, to int) []string {
	if from >= len(lines) {
		return nil
	}
	if to > len(lines) {
		to = len(lines)
	}
	return lines[from:to]
}

func titleHint(meta *model.RepoMeta, teamName string) string {
	if meta.ReadmeTitle != "" {
		return meta.ReadmeTitle
	}
	if teamName != "" {
		return teamName
	}
	return "HackMIT Track"
}
