package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/pkg/response"
)

type SongifyHandler struct {
	service   *service.SongifyService
	validator *validator.Validate
}

func NewSongifyHandler(svc *service.SongifyService, v *validator.Validate) *SongifyHandler {
	return &SongifyHandler{
		service:   svc,
		validator: v,
	}
}

// Songify handles POST /api/songify
func (h *SongifyHandler) Songify(c *fiber.Ctx) error {
	var req model.SongifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.Songify(c.Context(), &req)
	if err != nil {
		if errors.Is(err, client.ErrInvalidRepoURL) {
			return response.ValidationError(c, "Invalid GitHub repository URL", nil)
		}
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}

// RepoJamOnce handles POST /api/repojam-once
func (h *SongifyHandler) RepoJamOnce(c *fiber.Ctx) error {
	var req model.RepoJamOnceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	result, err := h.service.RepoJamOnce(c.Context(), &req, clipPollInterval)
	if err != nil {
		if errors.Is(err, client.ErrInvalidRepoURL) {
			return response.ValidationError(c, "Invalid GitHub repository URL", nil)
		}
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, result)
}
