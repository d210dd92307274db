package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/pkg/response"
)

type AnthemHandler struct {
	service   *service.AnthemService
	validator *validator.Validate
}

func NewAnthemHandler(svc *service.AnthemService, v *validator.Validate) *AnthemHandler {
	return &AnthemHandler{
		service:   svc,
		validator: v,
	}
}

// TeamAnthem handles POST /api/team-anthem
func (h *AnthemHandler) TeamAnthem(c *fiber.Ctx) error {
	var req model.TeamAnthemRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.TeamAnthem(c.Context(), &req)
	if err != nil {
		if errors.Is(err, service.ErrNoUsers) {
			return response.ValidationError(c, err.Error(), nil)
		}
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}

// HackJamOnce handles POST /api/hackjam-once
func (h *AnthemHandler) HackJamOnce(c *fiber.Ctx) error {
	var req model.HackJamOnceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.HackJamOnce(c.Context(), &req)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}

// Start handles POST /api/anthem/start
func (h *AnthemHandler) Start(c *fiber.Ctx) error {
	var req model.AnthemStartRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.StartAnthem(c.Context(), &req)
	if err != nil {
		return response.ServiceError(c, err.Error())
	}

	return response.Accepted(c, result)
}

// Status handles GET /api/anthem/status/:jobId
func (h *AnthemHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetStatus(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}

// Result handles GET /api/anthem/result/:jobId
func (h *AnthemHandler) Result(c *fiber.Ctx) error {
	jobID := c.Params("jobId")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required", nil)
	}

	result, err := h.service.GetResult(c.Context(), jobID)
	if err != nil {
		if err.Error() == "job not found" {
			return response.NotFound(c, "Job not found")
		}
		if err.Error() == "job not completed" {
			return response.ValidationError(c, "Job not completed yet", nil)
		}
		return response.ServiceError(c, err.Error())
	}

	return response.OK(c, result)
}
