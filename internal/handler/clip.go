package handler

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/pkg/response"
)

const clipPollInterval = 2500 * time.Millisecond

type ClipHandler struct {
	service   *service.ClipService
	validator *validator.Validate
}

func NewClipHandler(svc *service.ClipService, v *validator.Validate) *ClipHandler {
	return &ClipHandler{
		service:   svc,
		validator: v,
	}
}

// Get handles GET /api/clip/:clipId
func (h *ClipHandler) Get(c *fiber.Ctx) error {
	clipID := c.Params("clipId")
	if clipID == "" {
		return response.ValidationError(c, "Clip ID is required", nil)
	}

	handle, err := h.service.GetClip(c.Context(), clipID)
	if err != nil {
		if err.Error() == "clip not found" {
			return response.NotFound(c, "Clip not found")
		}
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, handle)
}

// Wait handles GET /api/clip/:clipId/wait
func (h *ClipHandler) Wait(c *fiber.Ctx) error {
	clipID := c.Params("clipId")
	if clipID == "" {
		return response.ValidationError(c, "Clip ID is required", nil)
	}

	download := c.QueryBool("download", true)
	req := &model.WaitAndSaveRequest{
		ClipID:     clipID,
		TimeoutSec: c.QueryInt("timeoutSec", 0),
		Download:   &download,
	}

	result, err := h.service.WaitAndSave(c.Context(), req, clipPollInterval)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}

// WaitAndSave handles POST /api/wait-and-save
func (h *ClipHandler) WaitAndSave(c *fiber.Ctx) error {
	var req model.WaitAndSaveRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.WaitAndSave(c.Context(), &req, clipPollInterval)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}
