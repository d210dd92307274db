package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/config"
	"github.com/hacktrack/api/internal/model"
)

// minTrackDelay is the pacing floor between successive submissions, to
// respect provider rate limits.
const minTrackDelay = 200 * time.Millisecond

// EmitFunc delivers one stream event to the consumer. It must flush before
// returning; a non-nil error means the consumer is gone and the run must
// stop submitting work.
type EmitFunc func(model.StreamEvent) error

// StreamOptions bounds one orchestration run.
type StreamOptions struct {
	MaxTracks  int
	MaxMinutes int
	Delay      time.Duration
	SaveEach   bool
}

// StreamService drives a bounded sequence of generation jobs, emitting a
// typed event for every transition.
type StreamService struct {
	generator client.MusicGenerator
	clips     *ClipService

	pollInterval     time.Duration
	streamingTimeout time.Duration
	completeTimeout  time.Duration
	defaultTracks    int
	defaultMinutes   int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewStreamService(generator client.MusicGenerator, clips *ClipService, pollCfg *config.PollConfig, streamCfg *config.StreamConfig) *StreamService {
	return &StreamService{
		generator:        generator,
		clips:            clips,
		pollInterval:     time.Duration(pollCfg.IntervalSeconds * float64(time.Second)),
		streamingTimeout: time.Duration(pollCfg.StreamingTimeout) * time.Second,
		completeTimeout:  time.Duration(pollCfg.CompleteTimeout) * time.Second,
		defaultTracks:    streamCfg.MaxTracks,
		defaultMinutes:   streamCfg.MaxMinutes,
		now:              time.Now,
		sleep:            sleepCtx,
	}
}

// Run executes one stream session. Bounds gate starting new tracks, never
// abort a track in flight. The run ends with session/end unless a fatal
// error or cancellation terminated it.
func (s *StreamService) Run(ctx context.Context, directive model.GenerationDirective, topicBase string, opts StreamOptions, emit EmitFunc) {
	maxTracks := opts.MaxTracks
	if maxTracks < 1 {
		maxTracks = s.defaultTracks
	}
	maxMinutes := opts.MaxMinutes
	if maxMinutes < 1 {
		maxMinutes = s.defaultMinutes
	}
	budget := time.Duration(maxMinutes) * time.Minute
	delay := opts.Delay
	if delay < minTrackDelay {
		delay = minTrackDelay
	}

	start := s.now()
	if emit(model.SessionStartEvent(directive)) != nil {
		return
	}

	tracksDone := 0
	for tracksDone < maxTracks && s.now().Sub(start) < budget {
		if ctx.Err() != nil {
			return
		}
		index := tracksDone + 1

		gen, err := s.generator.Generate(ctx, &client.GenerateClipRequest{
			Topic:            trackTopic(topicBase, index),
			Tags:             directive.TagString,
			MakeInstrumental: &directive.Instrumental,
		})
		if err != nil {
			emit(model.ErrorEvent(fmt.Sprintf("generation submit failed: %v", err)))
			return
		}
		if gen.ID == "" {
			emit(model.ErrorEvent("no clip id from generation provider"))
			return
		}

		if emit(model.TrackSubmittedEvent(gen.ID, index)) != nil {
			return
		}

		// provisional stream URL as soon as the provider has one
		st, err := s.clips.PollUntil(ctx, gen.ID, model.ClipStatusStreaming, s.streamingTimeout, s.pollInterval)
		if err != nil {
			emit(model.ErrorEvent(fmt.Sprintf("status fetch failed: %v", err)))
			return
		}
		if st != nil {
			title := st.Title
			if title == "" {
				title = fmt.Sprintf("HackJam Track %d", index)
			}
			ev := model.StreamEvent{
				Type:      model.StreamTypeTrack,
				Stage:     model.TrackStageStreaming,
				ClipID:    gen.ID,
				Index:     index,
				StreamURL: st.AudioURL,
				ImageURL:  st.ImageURL,
				Title:     title,
			}
			if emit(ev) != nil {
				return
			}
		}

		fin, err := s.clips.PollUntil(ctx, gen.ID, model.ClipStatusComplete, s.completeTimeout, s.pollInterval)
		if err != nil {
			emit(model.ErrorEvent(fmt.Sprintf("status fetch failed: %v", err)))
			return
		}

		// track/complete reflects the last-known state even when the
		// deadline expired before the provider finished
		ev := model.StreamEvent{
			Type:   model.StreamTypeTrack,
			Stage:  model.TrackStageComplete,
			ClipID: gen.ID,
			Index:  index,
		}
		if fin != nil {
			ev.AudioURL = fin.AudioURL
			ev.Title = fin.Title
			ev.ImageURL = fin.ImageURL
			ev.Duration = fin.Duration
		}

		if opts.SaveEach && isMP3(ev.AudioURL) {
			path, err := s.clips.Save(ctx, gen.ID, ev.AudioURL)
			if err != nil {
				ev.SaveError = err.Error()
			} else {
				ev.SavedPath = path
			}
		}

		if emit(ev) != nil {
			return
		}

		tracksDone++
		if err := s.sleep(ctx, delay); err != nil {
			log.Printf("[Stream] cancelled after %d track(s)", tracksDone)
			return
		}
	}

	emit(model.SessionEndEvent(tracksDone))
}

func trackTopic(topicBase string, index int) string {
	topic := fmt.Sprintf("%s Track %d", topicBase, index)
	if len(topic) > maxTopicLen {
		topic = topic[:maxTopicLen]
	}
	return topic
}

func isMP3(audioURL string) bool {
	return len(audioURL) > 4 && audioURL[len(audioURL)-4:] == ".mp3"
}
