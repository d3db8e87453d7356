package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lifebridge/internal/api/dto"
	"github.com/spec-kit/lifebridge/internal/auth"
	"github.com/spec-kit/lifebridge/internal/service"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// PickupsHandler serves pickup scheduling and donation history.
type PickupsHandler struct {
	pickups *service.PickupService
}

// NewPickupsHandler constructs handler.
func NewPickupsHandler(pickups *service.PickupService) *PickupsHandler {
	return &PickupsHandler{pickups: pickups}
}

// Schedule handles POST /api/pickups.
func (h *PickupsHandler) Schedule(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SchedulePickupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.PickupScheduleInput{
		RequestID: req.RequestID,
		Date:      req.Date,
		Time:      req.Time,
		Location:  req.Location,
	}
	pickup, warnings, err := h.pickups.SchedulePickup(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}

	body := fiber.Map{
		"message": "Pickup scheduled successfully",
		"pickup":  dto.NewPickupResponse(pickup),
	}
	if len(warnings) > 0 {
		body["warnings"] = warnings
	}
	return c.Status(http.StatusCreated).JSON(body)
}

// History handles GET /api/pickups/user.
func (h *PickupsHandler) History(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	records, err := h.pickups.ListDonorPickups(c.Context(), principal.User.ID)
	if err != nil {
		return err
	}

	out := make([]dto.DonationResponse, 0, len(records))
	for i := range records {
		out = append(out, dto.NewDonationResponse(&records[i]))
	}
	return c.JSON(out)
}
