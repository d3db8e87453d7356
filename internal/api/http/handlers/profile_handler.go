package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lifebridge/internal/api/dto"
	"github.com/spec-kit/lifebridge/internal/auth"
	"github.com/spec-kit/lifebridge/internal/service"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// ProfileHandler serves the caller's own profile and request history.
type ProfileHandler struct {
	profiles *service.ProfileService
	requests *service.RequestService
}

// NewProfileHandler constructs handler.
func NewProfileHandler(profiles *service.ProfileService, requests *service.RequestService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, requests: requests}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.profiles.GetProfile(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.ProfileUpdateInput{
		Name:       req.Name,
		Age:        req.Age,
		BloodGroup: req.BloodGroup,
		Phone:      req.Phone,
		Hospital:   req.Hospital,
		EmailOptIn: req.EmailOptIn,
	}
	if req.Location != nil || req.Lat != nil || req.Lng != nil {
		location := principal.User.Location
		if req.Location != nil {
			location.Address = *req.Location
		}
		if req.Lat != nil {
			location.Lat = req.Lat
		}
		if req.Lng != nil {
			location.Lng = req.Lng
		}
		input.Location = &location
	}

	user, err := h.profiles.UpdateProfile(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// MyRequests handles GET /api/profile/requests.
func (h *ProfileHandler) MyRequests(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	requests, views, err := h.requests.ListRequestsByOwner(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	out := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		resp := dto.NewRequestResponse(&requests[i])
		if count, ok := views[requests[i].ID]; ok {
			resp.ViewCount = &count
		}
		out = append(out, resp)
	}
	return c.JSON(out)
}
