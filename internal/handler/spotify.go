package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/hacktrack/api/internal/client"
	"github.com/hacktrack/api/internal/model"
	"github.com/hacktrack/api/internal/service"
	"github.com/hacktrack/api/pkg/response"
)

type SpotifyHandler struct {
	auth      *client.SpotifyAuth
	taste     *service.TasteService
	validator *validator.Validate
}

func NewSpotifyHandler(auth *client.SpotifyAuth, taste *service.TasteService, v *validator.Validate) *SpotifyHandler {
	return &SpotifyHandler{
		auth:      auth,
		taste:     taste,
		validator: v,
	}
}

// Authorize handles GET /api/spotify/authorize
func (h *SpotifyHandler) Authorize(c *fiber.Ctx) error {
	if !h.auth.IsConfigured() {
		return response.ServiceError(c, "Spotify credentials not configured")
	}

	state := c.Query("state")
	if state == "" {
		state = uuid.New().String()
	}

	url := h.auth.AuthorizeURL(state, c.Query("scopes"))
	return response.OK(c, fiber.Map{
		"authorize_url": url,
		"state":         state,
	})
}

// Callback handles GET /api/spotify/callback
func (h *SpotifyHandler) Callback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		return response.ValidationError(c, "Authorization denied: "+errParam, nil)
	}

	code := c.Query("code")
	if code == "" {
		return response.ValidationError(c, "Missing authorization code", nil)
	}

	token, err := h.auth.Exchange(c.Context(), code)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, fiber.Map{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
		"expires_at":    token.Expiry,
	})
}

// Refresh handles POST /api/spotify/refresh
func (h *SpotifyHandler) Refresh(c *fiber.Ctx) error {
	var req model.RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	token, err := h.auth.Refresh(c.Context(), req.RefreshToken)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, fiber.Map{
		"access_token": token.AccessToken,
		"expires_at":   token.Expiry,
	})
}

// Me handles POST /api/spotify/me
func (h *SpotifyHandler) Me(c *fiber.Ctx) error {
	var req model.TasteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	summary, err := h.taste.Summarize(c.Context(), req.AccessToken)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, summary)
}

// MeMin handles POST /api/spotify/me-min
func (h *SpotifyHandler) MeMin(c *fiber.Ctx) error {
	var req model.TasteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	summary, err := h.taste.SummarizeMin(c.Context(), req.AccessToken)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, summary)
}

// Recent handles POST /api/spotify/recent
func (h *SpotifyHandler) Recent(c *fiber.Ctx) error {
	var req model.TasteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	bundle, err := h.taste.Recent(c.Context(), req.AccessToken)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, bundle)
}

// Taste handles POST /api/spotify/taste
func (h *SpotifyHandler) Taste(c *fiber.Ctx) error {
	var req model.TasteRequest
	if err := c.BodyParser(&req); err != nil {
		return response.ValidationError(c, "Invalid request body", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		return response.ValidationError(c, "Validation failed", formatValidationErrors(err))
	}

	bundle, err := h.taste.FetchTaste(c.Context(), req.AccessToken)
	if err != nil {
		return response.UpstreamError(c, err.Error())
	}

	return response.OK(c, bundle)
}
