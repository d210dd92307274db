package model

import "time"

// ClipStatus is the provider-controlled lifecycle of a generation clip.
// Statuses are totally ordered for reached-or-passed comparison.
type ClipStatus string

const (
	ClipStatusUnknown   ClipStatus = ""
	ClipStatusSubmitted ClipStatus = "submitted"
	ClipStatusStreaming ClipStatus = "streaming"
	ClipStatusComplete  ClipStatus = "complete"
)

var clipStatusRank = map[ClipStatus]int{
	ClipStatusUnknown:   0,
	ClipStatusSubmitted: 1,
	ClipStatusStreaming: 2,
	ClipStatusComplete:  3,
}

// Reached reports whether s has reached or passed target. Reaching complete
// always satisfies a streaming target.
func (s ClipStatus) Reached(target ClipStatus) bool {
	if target == ClipStatusUnknown {
		return true
	}
	return clipStatusRank[s] >= clipStatusRank[target]
}

// JobHandle is the last-known state of one generation clip. Only the poller
// re-fetching status mutates it; it goes terminal at complete or when the
// poll deadline expires with whatever was last observed.
type JobHandle struct {
	ID       string     `json:"clipId"`
	Status   ClipStatus `json:"status"`
	AudioURL string     `json:"audio_url,omitempty"`
	Title    string     `json:"title,omitempty"`
	ImageURL string     `json:"image_url,omitempty"`
	Duration float64    `json:"duration,omitempty"`
}

// Job status for background anthem jobs
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
)

// Job represents a background anthem job in the system
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"-"` // Stored as JSON
	Result      []byte     `json:"-"` // Stored as JSON
	CreatedAt   time.Time  `json:"createdAt"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Job types
const (
	JobTypeAnthem = "anthem"
)

// AnthemJobPayload carries everything the anthem worker needs.
type AnthemJobPayload struct {
	Users        []SpotifyUser `json:"users"`
	Mood         string        `json:"mood"`
	TeamName     string        `json:"teamName"`
	InsideJokes  string        `json:"insideJokes,omitempty"`
	Instrumental *bool         `json:"instrumental,omitempty"`
	Download     bool          `json:"download"`
}

// AnthemJobResult is stored as the job result once the worker finishes.
type AnthemJobResult struct {
	ClipID       string       `json:"clipId"`
	Tags         string       `json:"tags"`
	Instrumental bool         `json:"make_instrumental"`
	Explain      TasteExplain `json:"explain"`
	Status       ClipStatus   `json:"status"`
	Title        string       `json:"title,omitempty"`
	AudioURL     string       `json:"audio_url,omitempty"`
	ImageURL     string       `json:"image_url,omitempty"`
	Duration     float64      `json:"duration,omitempty"`
	SavedPath    string       `json:"saved_path,omitempty"`
}
