package model

// SpotifyUser identifies one listener by access token.
type SpotifyUser struct {
	AccessToken string `json:"accessToken" validate:"required"`
}

// TeamAnthemRequest is the body for POST /api/team-anthem.
type TeamAnthemRequest struct {
	Users        []SpotifyUser `json:"users" validate:"required,min=1,dive"`
	Mood         string        `json:"mood"`
	TeamName     string        `json:"teamName"`
	InsideJokes  string        `json:"insideJokes"`
	Instrumental *bool         `json:"instrumental"`
}

// TeamAnthemResponse mirrors the directive back to the caller.
type TeamAnthemResponse struct {
	ClipID       string       `json:"clipId"`
	Tags         string       `json:"tags"`
	Instrumental bool         `json:"make_instrumental"`
	Explain      TasteExplain `json:"explain"`
}

// SongifyRequest is the body for POST /api/songify.
type SongifyRequest struct {
	RepoURL  string `json:"repoUrl" validate:"required"`
	Tags     string `json:"tags"`
	Mood     string `json:"mood"`
	TeamName string `json:"teamName"`
}

// RepoMeta is the repository metadata fed into lyric construction.
type RepoMeta struct {
	ReadmeTitle string   `json:"readmeTitle"`
	ReadmeTLDR  string   `json:"readmeTLDR"`
	Commits     []string `json:"commits"`
}

// SongifyResponse is the result of a repo-to-song submission.
type SongifyResponse struct {
	ClipID        string   `json:"clipId"`
	Tags          string   `json:"tags"`
	LyricsPreview string   `json:"lyricsPreview"`
	RepoMeta      RepoMeta `json:"repoMeta"`
	TitleHint     string   `json:"titleHint"`
}

// RepoJamOnceRequest is the body for POST /api/repojam-once.
type RepoJamOnceRequest struct {
	RepoURL    string `json:"repoUrl" validate:"required"`
	Tags       string `json:"tags"`
	Mood       string `json:"mood"`
	TeamName   string `json:"teamName"`
	Wait       *bool  `json:"wait"`
	Download   *bool  `json:"download"`
	TimeoutSec int    `json:"timeoutSec"`
}

// RepoJamOnceResponse is a songify submission plus the final clip state
// when the caller chose to wait for it.
type RepoJamOnceResponse struct {
	SongifyResponse
	Status    ClipStatus `json:"status,omitempty"`
	Title     string     `json:"title,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	AudioURL  string     `json:"audio_url,omitempty"`
	Duration  float64    `json:"duration,omitempty"`
	SavedPath string     `json:"saved_path,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// WaitAndSaveRequest is the body for POST /api/wait-and-save.
type WaitAndSaveRequest struct {
	ClipID     string `json:"clipId" validate:"required"`
	TimeoutSec int    `json:"timeoutSec"`
	Download   *bool  `json:"download"`
}

// WaitAndSaveResponse carries the final (or last-known) clip state. A
// non-complete Status with Message set means the poll deadline expired;
// that is a degraded result, not an error.
type WaitAndSaveResponse struct {
	ClipID    string     `json:"clipId"`
	Status    ClipStatus `json:"status"`
	AudioURL  string     `json:"audio_url,omitempty"`
	SavedPath string     `json:"saved_path,omitempty"`
	Duration  float64    `json:"duration,omitempty"`
	Title     string     `json:"title,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	Message   string     `json:"message,omitempty"`
}

// HackJamOnceRequest is the body for POST /api/hackjam-once.
type HackJamOnceRequest struct {
	Users        []SpotifyUser `json:"users" validate:"required,min=1,dive"`
	Mood         string        `json:"mood"`
	TeamName     string        `json:"teamName"`
	InsideJokes  string        `json:"insideJokes"`
	Instrumental *bool         `json:"instrumental"`
	Count        int           `json:"count"`
	Wait         *bool         `json:"wait"`
	Download     *bool         `json:"download"`
	TimeoutSec   int           `json:"timeoutSec"`
	DelaySec     float64       `json:"delayBetweenSec"`
}

// HackJamTrack is one generated track in a hackjam-once response.
type HackJamTrack struct {
	ClipID    string       `json:"clipId"`
	Tags      string       `json:"tags"`
	Explain   TasteExplain `json:"explain"`
	Index     int          `json:"index"`
	Status    ClipStatus   `json:"status,omitempty"`
	Title     string       `json:"title,omitempty"`
	ImageURL  string       `json:"image_url,omitempty"`
	AudioURL  string       `json:"audio_url,omitempty"`
	Duration  float64      `json:"duration,omitempty"`
	SavedPath string       `json:"saved_path,omitempty"`
}

// HackJamOnceResponse is the result of a hackjam-once run.
type HackJamOnceResponse struct {
	Count        int            `json:"count"`
	Tracks       []HackJamTrack `json:"tracks"`
	Instrumental bool           `json:"make_instrumental"`
}

// StreamRequest is the body for POST /api/hackjam-stream.
type StreamRequest struct {
	Users        []SpotifyUser `json:"users" validate:"required,min=1,dive"`
	Mood         string        `json:"mood"`
	TeamName     string        `json:"teamName"`
	InsideJokes  string        `json:"insideJokes"`
	Instrumental *bool         `json:"instrumental"`
	MaxTracks    int           `json:"maxTracks"`
	MaxMinutes   int           `json:"maxMinutes"`
	DelaySec     float64       `json:"delayBetweenSec"`
	SaveEach     bool          `json:"saveEach"`
}

// AnthemStartRequest is the body for POST /api/anthem/start.
type AnthemStartRequest struct {
	Users        []SpotifyUser `json:"users" validate:"required,min=1,dive"`
	Mood         string        `json:"mood"`
	TeamName     string        `json:"teamName"`
	InsideJokes  string        `json:"insideJokes"`
	Instrumental *bool         `json:"instrumental"`
	Download     bool          `json:"download"`
}

// AnthemStartResponse acknowledges a queued anthem job.
type AnthemStartResponse struct {
	JobID  string    `json:"jobId"`
	Status JobStatus `json:"status"`
}

// AnthemStatusResponse reports background job progress.
type AnthemStatusResponse struct {
	JobID       string    `json:"jobId"`
	Status      JobStatus `json:"status"`
	Progress    int       `json:"progress"`
	CurrentStep string    `json:"currentStep,omitempty"`
	Error       *string   `json:"error,omitempty"`
}

// RefreshRequest is the body for POST /api/spotify/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TasteRequest is the body for the spotify taste endpoints.
type TasteRequest struct {
	AccessToken string `json:"accessToken" validate:"required"`
}
