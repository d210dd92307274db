package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
)

// minPollTimeout is the enforced floor on any poll deadline.
const minPollTimeout = 5 * time.Second

const defaultWaitTimeout = 180 * time.Second

// ClipService tracks generation clips against the provider's status
// lifecycle.
type ClipService struct {
	generator  client.MusicGenerator
	downloader *client.AudioDownloader

	// swapped out in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewClipService(generator client.MusicGenerator, downloader *client.AudioDownloader) *ClipService {
	return &ClipService{
		generator:  generator,
		downloader: downloader,
		now:        time.Now,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// GetClip fetches the current handle for a clip.
func (s *ClipService) GetClip(ctx context.Context, clipID string) (*model.JobHandle, error) {
	clip, err := s.generator.GetClip(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if clip == nil {
		return nil, fmt.Errorf("clip not found")
	}
	h := toHandle(clip)
	return &h, nil
}

// PollUntil re-fetches clip status at the given cadence until the status
// reaches or passes target, or the deadline elapses. A timeout is not an
// error: the last-observed handle comes back verbatim and the caller reads
// its status. A failed status fetch is a hard failure and propagates
// immediately. Cancellation stops the loop promptly.
func (s *ClipService) PollUntil(ctx context.Context, clipID string, target model.ClipStatus, timeout, interval time.Duration) (*model.JobHandle, error) {
	if timeout < minPollTimeout {
		timeout = minPollTimeout
	}
	deadline := s.now().Add(timeout)

	var last *model.JobHandle
	attempt := 0
	for s.now().Before(deadline) {
		attempt++
		clip, err := s.generator.GetClip(ctx, clipID)
		if err != nil {
			return nil, err
		}
		if clip != nil {
			h := toHandle(clip)
			last = &h
			log.Printf("[Clip Poll] #%d (clip=%s) → status: %s", attempt, clipID, h.Status)
			if h.Status.Reached(target) {
				return last, nil
			}
		}
		if err := s.sleep(ctx, interval); err != nil {
			return last, err
		}
	}
	return last, nil
}

// WaitAndSave polls a clip to completion and optionally downloads the MP3.
// A poll timeout surfaces as a degraded success with the last-known status
// and an explanatory message; a failed download degrades to an unset
// saved_path rather than aborting.
func (s *ClipService) WaitAndSave(ctx context.Context, req *model.WaitAndSaveRequest, interval time.Duration) (*model.WaitAndSaveResponse, error) {
	timeout := defaultWaitTimeout
	if req.TimeoutSec > 0 {
		timeout = time.Duration(req.TimeoutSec) * time.Second
	}

	handle, err := s.PollUntil(ctx, req.ClipID, model.ClipStatusComplete, timeout, interval)
	if err != nil {
		return nil, err
	}
	if handle == nil {
		handle = &model.JobHandle{ID: req.ClipID, Status: model.ClipStatusUnknown}
	}

	resp := &model.WaitAndSaveResponse{
		ClipID:   req.ClipID,
		Status:   handle.Status,
		AudioURL: handle.AudioURL,
		Duration: handle.Duration,
		Title:    handle.Title,
		ImageURL: handle.ImageURL,
	}

	if handle.Status != model.ClipStatusComplete {
		resp.Message = "Timeout before completion"
		return resp, nil
	}

	download := req.Download == nil || *req.Download
	if download && handle.AudioURL != "" {
		path, err := s.Save(ctx, req.ClipID, handle.AudioURL)
		if err != nil {
			log.Printf("[Clip] download failed (clip=%s): %v", req.ClipID, err)
			resp.Message = "Saved audio unavailable: " + err.Error()
		} else {
			resp.SavedPath = path
		}
	}

	return resp, nil
}

// Save downloads a clip's audio into the downloads directory.
func (s *ClipService) Save(ctx context.Context, clipID, audioURL string) (string, error) {
	if s.downloader == nil || !s.downloader.IsConfigured() {
		return "", fmt.Errorf("downloads not configured")
	}
	return s.downloader.Download(ctx, audioURL, fmt.Sprintf("hacktrack_%s.mp3", clipID))
}

// toHandle maps the provider clip shape onto a JobHandle.
func toHandle(clip *client.Clip) model.JobHandle {
	return model.JobHandle{
		ID:       clip.ID,
		Status:   model.ClipStatus(strings.ToLower(clip.Status)),
		AudioURL: clip.AudioURL,
		Title:    clip.Title,
		ImageURL: clip.ImageURL,
		Duration: clip.Metadata.Duration,
	}
}
