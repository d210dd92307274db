package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/internal/websocket"
)

const pollInterval = 2500 * time.Millisecond

// AnthemWorker processes queued anthem jobs end to end: fuse the team's
// taste, submit the generation, poll it to completion, optionally save.
type AnthemWorker struct {
	anthemService *service.AnthemService
	clipService   *service.ClipService
	hub           *websocket.Hub
}

func NewAnthemWorker(anthemService *service.AnthemService, clipService *service.ClipService, hub *websocket.Hub) *AnthemWorker {
	return &AnthemWorker{
		anthemService: anthemService,
		clipService:   clipService,
		hub:           hub,
	}
}

// ProcessTask handles one anthem task from the queue.
func (w *AnthemWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var taskPayload struct {
		JobID   string          `json:"jobId"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(t.Payload(), &taskPayload); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	jobID := taskPayload.JobID
	log.Printf("[Worker] starting anthem job %s", jobID)

	var payload model.AnthemJobPayload
	if err := json.Unmarshal(taskPayload.Payload, &payload); err != nil {
		w.failJob(ctx, jobID, "Invalid payload")
		return fmt.Errorf("failed to unmarshal anthem payload: %w", err)
	}

	w.progress(ctx, jobID, 10, "Fetching listener taste...")
	directive, err := w.anthemService.BuildDirective(ctx, payload.Users, payload.Mood, payload.Instrumental)
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return err
	}

	w.progress(ctx, jobID, 35, "Submitting generation...")
	topic := service.TopicBase(payload.TeamName, payload.Mood, payload.InsideJokes)
	submitted, err := w.anthemService.SubmitAnthem(ctx, directive, topic)
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return err
	}

	w.progress(ctx, jobID, 55, "Waiting for audio...")
	download := payload.Download
	waitResp, err := w.clipService.WaitAndSave(ctx, &model.WaitAndSaveRequest{
		ClipID:   submitted.ClipID,
		Download: &download,
	}, pollInterval)
	if err != nil {
		w.failJob(ctx, jobID, err.Error())
		return err
	}

	result := &model.AnthemJobResult{
		ClipID:       submitted.ClipID,
		Tags:         directive.TagString,
		Instrumental: directive.Instrumental,
		Explain:      directive.Explain,
		Status:       waitResp.Status,
		Title:        waitResp.Title,
		AudioURL:     waitResp.AudioURL,
		ImageURL:     waitResp.ImageURL,
		Duration:     waitResp.Duration,
		SavedPath:    waitResp.SavedPath,
	}

	if err := w.anthemService.CompleteJob(ctx, jobID, result); err != nil {
		w.failJob(ctx, jobID, "Failed to save result")
		return err
	}
	w.hub.BroadcastComplete(jobID, result)

	log.Printf("[Worker] anthem job %s completed (clip=%s, status=%s)", jobID, result.ClipID, result.Status)
	return nil
}

func (w *AnthemWorker) progress(ctx context.Context, jobID string, progress int, step string) {
	if err := w.anthemService.UpdateJobProgress(ctx, jobID, progress, step); err != nil {
		log.Printf("[Worker] failed to update progress: %v", err)
	}
	w.hub.BroadcastProgress(jobID, progress, model.JobStatusRunning, step)
}

func (w *AnthemWorker) failJob(ctx context.Context, jobID, errMsg string) {
	if err := w.anthemService.FailJob(ctx, jobID, errMsg); err != nil {
		log.Printf("[Worker] failed to mark job as failed: %v", err)
	}
	w.hub.BroadcastError(jobID, "ANTHEM_FAILED", errMsg)
}
