package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/config"
	"github.com/hacktrack/api/internal/model"
)

func TestRepoJamOnceInvalidRepoURL(t *testing.T) {
	gen := &scriptedGenerator{}
	svc := NewSongifyService(client.NewGitHubClient(&config.GitHubConfig{}), gen, nil)

	_, err := svc.RepoJamOnce(context.Background(), &model.RepoJamOnceRequest{
		RepoURL: "https://gitlab.com/a/b",
	}, 0)
	if !errors.Is(err, client.ErrInvalidRepoURL) {
		t.Fatalf("expected ErrInvalidRepoURL, got %v", err)
	}
	if gen.genCalls != 0 {
		t.Errorf("no submission should happen for a rejected URL, got %d", gen.genCalls)
	}
}

func TestBuildLyricsSections(t *testing.T) {
	meta := &model.RepoMeta{
		ReadmeTitle: "hacktrack",
		ReadmeTLDR:  "A taste-fused anthem generator",
		Commits: []string{
			"add taste fusion service",
			"implement clip polling loop",
			"wire redis job store",
			"add stream orchestrator",
			"support mood directives",
			"add spotify signal chain",
			"handle poll timeout as degraded result",
			"emit session events in order",
		},
	}

	lyrics := BuildLyrics(meta)

	for _, section := range []string{"[Verse 1]", "[Chorus]", "[Verse 2]"} {
		if !strings.Contains(lyrics, section) {
			t.Errorf("missing section %s in:\n%s", section, lyrics)
		}
	}
	if !strings.Contains(lyrics, "A taste-fused anthem generator") {
		t.Error("chorus should use the readme summary")
	}
	if !strings.Contains(lyrics, "- add taste fusion service") {
		t.Error("commit subjects should appear as lyric lines")
	}
}

func TestBuildLyricsFiltersNoiseCommits(t *testing.T) {
	meta := &model.RepoMeta{
		Commits: []string{
			"Merge branch 'main' into feature",
			"wip",
			"fix typo",
			"bump deps",
			"ci: tweak cache",
			"chore: lint",
			"update readme",
			"short",
			"add the actual taste fusion core",
		},
	}

	lyrics := BuildLyrics(meta)

	if !strings.Contains(lyrics, "- add the actual taste fusion core") {
		t.Error("substantive commit should survive filtering")
	}
	for _, noise := range []string{"Merge branch", "fix typo", "bump deps", "update readme"} {
		if strings.Contains(lyrics, noise) {
			t.Errorf("noise commit %q should be filtered", noise)
		}
	}
}

func TestBuildLyricsFallbackLines(t *testing.T) {
	lyrics := BuildLyrics(&model.RepoMeta{})

	if !strings.Contains(lyrics, "- first commit, first light") {
		t.Error("empty history should fall back to stock lines")
	}
	if !strings.Contains(lyrics, "ship it at HackMIT") {
		t.Error("missing readme should fall back to the stock chorus")
	}
}

func TestBuildLyricsChorusFallsBackToTitle(t *testing.T) {
	lyrics := BuildLyrics(&model.RepoMeta{ReadmeTitle: "my-project"})
	if !strings.Contains(lyrics, "my-project") {
		t.Error("chorus should fall back to the readme title when no summary exists")
	}
}

func TestBuildLyricsCollapsesWhitespace(t *testing.T) {
	meta := &model.RepoMeta{
		Commits: []string{"add   multi\tspace   commit message"},
	}
	lyrics := BuildLyrics(meta)
	if !strings.Contains(lyrics, "- add multi space commit message") {
		t.Errorf("whitespace should collapse to single spaces:\n%s", lyrics)
	}
}

func TestTitleHintFallbackChain(t *testing.T) {
	cases := []struct {
		meta     model.RepoMeta
		teamName string
		want     string
	}{
		{model.RepoMeta{ReadmeTitle: "cool-repo"}, "Team X", "cool-repo"},
		{model.RepoMeta{}, "Team X", "Team X"},
		{model.RepoMeta{}, "", "HackMIT Track"},
	}
	for _, tc := range cases {
		if got := titleHint(&tc.meta, tc.teamName); got != tc.want {
			t.Errorf("titleHint(%+v, %q) = %q, want %q", tc.meta, tc.teamName, got, tc.want)
		}
	}
}
