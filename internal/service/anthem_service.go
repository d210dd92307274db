package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/taste"
)

const (
	TaskTypeAnthem = "anthem:generate"

	maxTopicLen      = 480
	maxInsideJokeLen = 120

	defaultTrackDelay = time.Second
)

// ErrNoUsers rejects requests without listeners before any external call.
var ErrNoUsers = fmt.Errorf("at least one Spotify user accessToken is required")

// AnthemService fuses team taste into a directive and drives generation,
// synchronously or as a queued background job.
type AnthemService struct {
	taste     *TasteService
	generator client.MusicGenerator
	clips     *ClipService

	pollInterval    time.Duration
	completeTimeout time.Duration

	redis       *redis.Client
	asynqClient *asynq.Client

	sleep func(ctx context.Context, d time.Duration) error
}

func NewAnthemService(tasteService *TasteService, generator client.MusicGenerator, clips *ClipService, redisClient *redis.Client, asynqClient *asynq.Client) *AnthemService {
	return &AnthemService{
		taste:           tasteService,
		generator:       generator,
		clips:           clips,
		pollInterval:    2500 * time.Millisecond,
		completeTimeout: defaultWaitTimeout,
		redis:           redisClient,
		asynqClient:     asynqClient,
		sleep:           sleepCtx,
	}
}

// BuildDirective fetches every listener's signal bundle and fuses them
// under the requested mood.
func (s *AnthemService) BuildDirective(ctx context.Context, users []model.SpotifyUser, mood string, instrumental *bool) (model.GenerationDirective, error) {
	if len(users) == 0 {
		return model.GenerationDirective{}, ErrNoUsers
	}
	bundles, err := s.taste.FetchAll(ctx, users)
	if err != nil {
		return model.GenerationDirective{}, err
	}
	return taste.Fuse(bundles, mood, instrumental), nil
}

// TopicBase builds the shared topic prefix for a team's tracks.
func TopicBase(teamName, mood, insideJokes string) string {
	if teamName == "" {
		teamName = "our team"
	}
	topic := fmt.Sprintf("An anthem for %s at HackMIT. Mood: %s. ", teamName, mood)
	if insideJokes != "" {
		jokes := insideJokes
		if len(jokes) > maxInsideJokeLen {
			jokes = jokes[:maxInsideJokeLen]
		}
		topic += "Inside jokes: " + jokes
	}
	if len(topic) > maxTopicLen {
		topic = topic[:maxTopicLen]
	}
	return strings.TrimSpace(topic)
}

// TeamAnthem runs the synchronous flow: fuse taste, submit one generation,
// hand the clip id back for the caller to track.
func (s *AnthemService) TeamAnthem(ctx context.Context, req *model.TeamAnthemRequest) (*model.TeamAnthemResponse, error) {
	directive, err := s.BuildDirective(ctx, req.Users, req.Mood, req.Instrumental)
	if err != nil {
		return nil, err
	}
	return s.SubmitAnthem(ctx, directive, TopicBase(req.TeamName, req.Mood, req.InsideJokes))
}

// SubmitAnthem submits one generation for an already-fused directive. Callers
// that built the directive themselves (the background worker) reuse it here
// so the listener taste is fetched exactly once.
func (s *AnthemService) SubmitAnthem(ctx context.Context, directive model.GenerationDirective, topic string) (*model.TeamAnthemResponse, error) {
	gen, err := s.generator.Generate(ctx, &client.GenerateClipRequest{
		Topic:            topic,
		Tags:             directive.TagString,
		MakeInstrumental: &directive.Instrumental,
	})
	if err != nil {
		return nil, err
	}
	if gen.ID == "" {
		return nil, fmt.Errorf("generation provider returned no clip id")
	}

	return &model.TeamAnthemResponse{
		ClipID:       gen.ID,
		Tags:         directive.TagString,
		Instrumental: directive.Instrumental,
		Explain:      directive.Explain,
	}, nil
}

// HackJamOnce generates a fixed number of tracks sequentially, optionally
// waiting for and saving each. A missing clip id aborts the whole run; a
// failed save degrades to an unset saved_path.
func (s *AnthemService) HackJamOnce(ctx context.Context, req *model.HackJamOnceRequest) (*model.HackJamOnceResponse, error) {
	directive, err := s.BuildDirective(ctx, req.Users, req.Mood, req.Instrumental)
	if err != nil {
		return nil, err
	}
	topicBase := TopicBase(req.TeamName, req.Mood, req.InsideJokes)

	count := req.Count
	if count < 1 {
		count = 1
	}
	wait := req.Wait == nil || *req.Wait
	download := req.Download == nil || *req.Download
	delay := defaultTrackDelay
	if req.DelaySec > 0 {
		delay = time.Duration(req.DelaySec * float64(time.Second))
	}

	tracks := make([]model.HackJamTrack, 0, count)
	for i := 0; i < count; i++ {
		gen, err := s.generator.Generate(ctx, &client.GenerateClipRequest{
			Topic:            trackTopic(topicBase, i+1),
			Tags:             directive.TagString,
			MakeInstrumental: &directive.Instrumental,
		})
		if err != nil {
			return nil, err
		}
		if gen.ID == "" {
			return nil, fmt.Errorf("generation provider returned no clip id")
		}

		track := model.HackJamTrack{
			ClipID:  gen.ID,
			Tags:    directive.TagString,
			Explain: directive.Explain,
			Index:   i + 1,
		}

		if wait {
			timeout := s.completeTimeout
			if req.TimeoutSec > 0 {
				timeout = time.Duration(req.TimeoutSec) * time.Second
			}
			final, err := s.clips.PollUntil(ctx, gen.ID, model.ClipStatusComplete, timeout, s.pollInterval)
			if err != nil {
				return nil, err
			}
			if final != nil {
				track.Status = final.Status
				track.Title = final.Title
				track.ImageURL = final.ImageURL
				track.AudioURL = final.AudioURL
				track.Duration = final.Duration
			}
			if download && isMP3(track.AudioURL) {
				path, err := s.clips.Save(ctx, gen.ID, track.AudioURL)
				if err != nil {
					log.Printf("[Anthem] save failed (clip=%s): %v", gen.ID, err)
				} else {
					track.SavedPath = path
				}
			}
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		tracks = append(tracks, track)
	}

	return &model.HackJamOnceResponse{
		Count:        len(tracks),
		Tracks:       tracks,
		Instrumental: directive.Instrumental,
	}, nil
}

// StartAnthem queues a background anthem job.
func (s *AnthemService) StartAnthem(ctx context.Context, req *model.AnthemStartRequest) (*model.AnthemStartResponse, error) {
	if len(req.Users) == 0 {
		return nil, ErrNoUsers
	}

	jobID := uuid.New().String()
	now := time.Now()

	payload := &model.AnthemJobPayload{
		Users:        req.Users,
		Mood:         req.Mood,
		TeamName:     req.TeamName,
		InsideJokes:  req.InsideJokes,
		Instrumental: req.Instrumental,
		Download:     req.Download,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job := &model.Job{
		ID:        jobID,
		Type:      model.JobTypeAnthem,
		Status:    model.JobStatusQueued,
		Progress:  0,
		Payload:   payloadBytes,
		CreatedAt: now,
	}
	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	task, err := newAnthemTask(jobID, payloadBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	_, err = s.asynqClient.Enqueue(task,
		asynq.Queue("anthem"),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue task: %w", err)
	}

	return &model.AnthemStartResponse{
		JobID:  jobID,
		Status: model.JobStatusQueued,
	}, nil
}

// GetStatus returns the current status of an anthem job
func (s *AnthemService) GetStatus(ctx context.Context, jobID string) (*model.AnthemStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &model.AnthemStatusResponse{
		JobID:       job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
	}, nil
}

// GetResult returns the result of a completed anthem job
func (s *AnthemService) GetResult(ctx context.Context, jobID string) (*model.AnthemJobResult, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Status != model.JobStatusSucceeded {
		return nil, fmt.Errorf("job not completed")
	}

	var result model.AnthemJobResult
	if err := json.Unmarshal(job.Result, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return &result, nil
}

// UpdateJobProgress updates job progress (called by worker)
func (s *AnthemService) UpdateJobProgress(ctx context.Context, jobID string, progress int, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Progress = progress
	job.CurrentStep = step
	if job.Status == model.JobStatusQueued {
		job.Status = model.JobStatusRunning
		now := time.Now()
		job.StartedAt = &now
	}
	return s.saveJob(ctx, job)
}

// CompleteJob marks a job as succeeded (called by worker)
func (s *AnthemService) CompleteJob(ctx context.Context, jobID string, result interface{}) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return err
	}
	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.Result = resultBytes
	now := time.Now()
	job.CompletedAt = &now
	return s.saveJob(ctx, job)
}

// FailJob marks a job as failed (called by worker)
func (s *AnthemService) FailJob(ctx context.Context, jobID string, errMsg string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	now := time.Now()
	job.CompletedAt = &now
	return s.saveJob(ctx, job)
}

func (s *AnthemService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(struct {
		*model.Job
		Payload []byte `json:"payload,omitempty"`
		Result  []byte `json:"result,omitempty"`
	}{job, job.Payload, job.Result})
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, fmt.Sprintf("job:%s", job.ID), data, 24*time.Hour).Err()
}

func (s *AnthemService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, fmt.Sprintf("job:%s", jobID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("job not found")
		}
		return nil, err
	}

	var stored struct {
		model.Job
		Payload []byte `json:"payload,omitempty"`
		Result  []byte `json:"result,omitempty"`
	}
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	job := stored.Job
	job.Payload = stored.Payload
	job.Result = stored.Result
	return &job, nil
}

func newAnthemTask(jobID string, payload []byte) (*asynq.Task, error) {
	taskPayload := map[string]interface{}{
		"jobId":   jobID,
		"payload": payload,
	}
	data, err := json.Marshal(taskPayload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAnthem, data), nil
}
