package model

// Stream event framing. Named records, one per flush; ordering is part of
// the contract.
const (
	StreamTypeSession = "session"
	StreamTypeTrack   = "track"
	StreamTypeError   = "error"

	SessionEventStart = "start"
	SessionEventEnd   = "end"

	TrackStageSubmitted = "submitted"
	TrackStageStreaming = "streaming"
	TrackStageComplete  = "complete"
)

// StreamEvent is one record on the live event stream.
type StreamEvent struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"` // session events: start / end
	Stage string `json:"stage,omitempty"` // track events: submitted / streaming / complete

	// session/start
	Tags    string        `json:"tags,omitempty"`
	Explain *TasteExplain `json:"explain,omitempty"`

	// track/*
	ClipID    string  `json:"clipId,omitempty"`
	Index     int     `json:"index,omitempty"`
	StreamURL string  `json:"stream_url,omitempty"`
	AudioURL  string  `json:"audio_url,omitempty"`
	Title     string  `json:"title,omitempty"`
	ImageURL  string  `json:"image_url,omitempty"`
	Duration  float64 `json:"duration,omitempty"`
	SavedPath string  `json:"saved_path,omitempty"`
	SaveError string  `json:"save_error,omitempty"`

	// error
	Message string `json:"message,omitempty"`

	// session/end
	TracksDone *int `json:"tracks_done,omitempty"`
}

func SessionStartEvent(directive GenerationDirective) StreamEvent {
	explain := directive.Explain
	return StreamEvent{
		Type:    StreamTypeSession,
		Event:   SessionEventStart,
		Tags:    directive.TagString,
		Explain: &explain,
	}
}

func SessionEndEvent(tracksDone int) StreamEvent {
	return StreamEvent{
		Type:       StreamTypeSession,
		Event:      SessionEventEnd,
		TracksDone: &tracksDone,
	}
}

func TrackSubmittedEvent(clipID string, index int) StreamEvent {
	return StreamEvent{
		Type:   StreamTypeTrack,
		Stage:  TrackStageSubmitted,
		ClipID: clipID,
		Index:  index,
	}
}

func ErrorEvent(message string) StreamEvent {
	return StreamEvent{
		Type:    StreamTypeError,
		Message: message,
	}
}
