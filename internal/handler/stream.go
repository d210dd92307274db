package handler

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/pkg/response"
)

type StreamHandler struct {
	anthem    *service.AnthemService
	stream    *service.StreamService
	validator *validator.Validate
}

func NewStreamHandler(anthem *service.AnthemService, stream *service.StreamService, v *validator.Validate) *StreamHandler {
	return &StreamHandler{
		anthem:    anthem,
		stream:    stream,
		validator: v,
	}
}

// HackJamStream handles POST /api/hackjam-stream. The taste fusion runs
// before the response switches to SSE so validation and upstream failures
// still get proper status codes; everything after the first byte is events.
func (h *StreamHandler) HackJamStream(c *fiber.Ctx) error {
	var req model.StreamRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	directive, err := h.anthem.BuildDirective(c.Context(), req.Users, req.Mood, req.Instrumental)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	topicBase := service.TopicBase(req.TeamName, req.Mood, req.InsideJokes)
	opts := service.StreamOptions{
		MaxTracks:  req.MaxTracks,
		MaxMinutes: req.MaxMinutes,
		Delay:      time.Duration(req.DelaySec * float64(time.Second)),
		SaveEach:   req.SaveEach,
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		emit := func(ev model.StreamEvent) error {
			data, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				cancel()
				return err
			}
			if err := w.Flush(); err != nil {
				// consumer disconnected
				cancel()
				return err
			}
			return nil
		}

		h.stream.Run(ctx, directive, topicBase, opts, emit)
	}))

	return nil
}
