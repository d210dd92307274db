package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
)

// scriptedGenerator replays a fixed sequence of clip states, one per GetClip
// call, holding the last state once the script runs out.
type scriptedGenerator struct {
	clips    []*client.Clip
	errs     []error
	fetches  int
	genClip  *client.GenerateClipResponse
	genErr   error
	genCalls int
}

func (g *scriptedGenerator) Generate(ctx context.Context, req *client.GenerateClipRequest) (*client.GenerateClipResponse, error) {
	g.genCalls++
	if g.genErr != nil {
		return nil, g.genErr
	}
	if g.genClip != nil {
		return g.genClip, nil
	}
	return &client.GenerateClipResponse{ID: "clip-1", Status: "submitted"}, nil
}

func (g *scriptedGenerator) GetClip(ctx context.Context, clipID string) (*client.Clip, error) {
	i := g.fetches
	g.fetches++
	if i < len(g.errs) && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	if len(g.clips) == 0 {
		return nil, nil
	}
	if i >= len(g.clips) {
		i = len(g.clips) - 1
	}
	return g.clips[i], nil
}

// fakeClock drives ClipService time without real sleeps. Every sleep call
// advances the clock by the requested duration.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.t = c.t.Add(d)
	return nil
}

func newTestClipService(gen *scriptedGenerator) (*ClipService, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := NewClipService(gen, nil)
	svc.now = clock.now
	svc.sleep = clock.sleep
	return svc, clock
}

func clipAt(status string) *client.Clip {
	return &client.Clip{
		ID:       "clip-1",
		Status:   status,
		Title:    "Test Track",
		AudioURL: "https://cdn.example.com/clip-1.mp3",
		Metadata: client.ClipMetadata{Duration: 42.5},
	}
}

func TestPollUntilCompleteOnFirstFetch(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("complete")}}
	svc, _ := newTestClipService(gen)

	h, err := svc.PollUntil(context.Background(), "clip-1", model.ClipStatusComplete, 30*time.Second, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h == nil || h.Status != model.ClipStatusComplete {
		t.Fatalf("expected complete handle, got %+v", h)
	}
	if gen.fetches != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", gen.fetches)
	}
}

func TestPollUntilCompleteSatisfiesStreamingTarget(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("complete")}}
	svc, _ := newTestClipService(gen)

	h, err := svc.PollUntil(context.Background(), "clip-1", model.ClipStatusStreaming, 30*time.Second, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != model.ClipStatusComplete {
		t.Fatalf("complete should satisfy a streaming target, got %s", h.Status)
	}
}

func TestPollUntilTimeoutReturnsLastHandle(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("submitted")}}
	svc, _ := newTestClipService(gen)

	h, err := svc.PollUntil(context.Background(), "clip-1", model.ClipStatusComplete, 10*time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("timeout must not be an error, got: %v", err)
	}
	if h == nil {
		t.Fatal("timeout must still return the last-observed handle")
	}
	if h.Status != model.ClipStatusSubmitted {
		t.Errorf("expected last-known submitted status, got %s", h.Status)
	}
}

func TestPollUntilEnforcesTimeoutFloor(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("submitted")}}
	svc, _ := newTestClipService(gen)

	// one-second deadline still polls for the five-second floor
	_, err := svc.PollUntil(context.Background(), "clip-1", model.ClipStatusComplete, time.Second, 2*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen.fetches < 2 {
		t.Errorf("expected at least 2 fetches under the floored deadline, got %d", gen.fetches)
	}
}

func TestPollUntilFetchErrorIsFatal(t *testing.T) {
	gen := &scriptedGenerator{
		clips: []*client.Clip{clipAt("submitted"), nil},
		errs:  []error{nil, errors.New("upstream 500")},
	}
	svc, _ := newTestClipService(gen)

	h, err := svc.PollUntil(context.Background(), "clip-1", model.ClipStatusComplete, 30*time.Second, time.Second)
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if h != nil {
		t.Errorf("hard failure returns no handle, got %+v", h)
	}
}

func TestPollUntilCancellation(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("submitted")}}
	svc, _ := newTestClipService(gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h, err := svc.PollUntil(ctx, "clip-1", model.ClipStatusComplete, 30*time.Second, time.Second)
	if err == nil {
		t.Fatal("expected context error after cancellation")
	}
	if h == nil || h.Status != model.ClipStatusSubmitted {
		t.Errorf("expected last handle alongside the context error, got %+v", h)
	}
}

func TestWaitAndSaveTimeoutMessage(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("streaming")}}
	svc, _ := newTestClipService(gen)

	download := false
	resp, err := svc.WaitAndSave(context.Background(), &model.WaitAndSaveRequest{
		ClipID:     "clip-1",
		TimeoutSec: 6,
		Download:   &download,
	}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != model.ClipStatusStreaming {
		t.Errorf("expected last-known streaming status, got %s", resp.Status)
	}
	if resp.Message == "" {
		t.Error("expected a timeout message on the degraded result")
	}
}

func TestWaitAndSaveCompleteNoDownload(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("complete")}}
	svc, _ := newTestClipService(gen)

	download := false
	resp, err := svc.WaitAndSave(context.Background(), &model.WaitAndSaveRequest{
		ClipID:   "clip-1",
		Download: &download,
	}, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != model.ClipStatusComplete {
		t.Fatalf("expected complete, got %s", resp.Status)
	}
	if resp.AudioURL == "" || resp.Title == "" {
		t.Errorf("complete response should carry clip metadata, got %+v", resp)
	}
	if resp.SavedPath != "" {
		t.Errorf("download disabled, saved path should be empty, got %q", resp.SavedPath)
	}
}

func TestWaitAndSaveDownloadFailureDegrades(t *testing.T) {
	gen := &scriptedGenerator{clips: []*client.Clip{clipAt("complete")}}
	svc, _ := newTestClipService(gen)

	// no downloader configured, Save fails, response still succeeds
	resp, err := svc.WaitAndSave(context.Background(), &model.WaitAndSaveRequest{ClipID: "clip-1"}, time.Second)
	if err != nil {
		t.Fatalf("save failure must not abort, got: %v", err)
	}
	if resp.SavedPath != "" {
		t.Errorf("expected empty saved path, got %q", resp.SavedPath)
	}
	if resp.Message == "" {
		t.Error("expected an explanatory message for the failed save")
	}
}

func TestGetClipNotFound(t *testing.T) {
	gen := &scriptedGenerator{}
	svc, _ := newTestClipService(gen)

	_, err := svc.GetClip(context.Background(), "nope")
	if err == nil {
		t.Fatal("expected error for unknown clip")
	}
}
