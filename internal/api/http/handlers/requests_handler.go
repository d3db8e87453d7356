package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/lifebridge/internal/api/dto"
	"github.com/spec-kit/lifebridge/internal/auth"
	"github.com/spec-kit/lifebridge/internal/domain"
	"github.com/spec-kit/lifebridge/internal/service"
	apperrors "github.com/spec-kit/lifebridge/pkg/util"
)

// RequestsHandler serves the blood request endpoints.
type RequestsHandler struct {
	requests *service.RequestService
}

// NewRequestsHandler constructs handler.
func NewRequestsHandler(requests *service.RequestService) *RequestsHandler {
	return &RequestsHandler{requests: requests}
}

// Create handles POST /api/requests.
func (h *RequestsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	var payload dto.CreateRequestPayload
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.RequestCreateInput{
		BloodGroup: payload.BloodGroup,
		Units:      payload.Units,
		Location: domain.Location{
			Address: payload.Location,
			Lat:     payload.Lat,
			Lng:     payload.Lng,
		},
		Urgency:      domain.RequestUrgency(payload.Urgency),
		PatientName:  payload.PatientName,
		HospitalName: payload.HospitalName,
		Notes:        payload.Notes,
		ContactPhone: payload.ContactPhone,
		ExpiresAt:    payload.ExpiresAt,
	}
	request, err := h.requests.CreateRequest(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Request submitted and donors notified!",
		"request": dto.NewRequestResponse(request),
	})
}

// List handles GET /api/requests. Only active requests are returned;
// an optional bloodGroup query narrows the result.
func (h *RequestsHandler) List(c *fiber.Ctx) error {
	var bloodGroup *string
	if v := c.Query("bloodGroup"); v != "" {
		bloodGroup = &v
	}

	requests, err := h.requests.ListActiveRequests(c.Context(), bloodGroup)
	if err != nil {
		return err
	}

	out := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, dto.NewRequestResponse(&requests[i]))
	}
	return c.JSON(out)
}

// Get handles GET /api/requests/:id.
func (h *RequestsHandler) Get(c *fiber.Ctx) error {
	request, views, err := h.requests.GetRequest(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	resp := dto.NewRequestResponse(request)
	resp.ViewCount = &views
	return c.JSON(resp)
}

// Donate handles POST /api/requests/:id/donate.
func (h *RequestsHandler) Donate(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	var payload dto.DonateRequest
	if err := c.BodyParser(&payload); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	offer, err := h.requests.RecordDonorOffer(c.Context(), principal.User, c.Params("id"), payload.DonationDate)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Thank you for offering to donate!",
		"donor": dto.DonorOfferResponse{
			ID:           offer.ID,
			DonorID:      offer.DonorID,
			Status:       offer.Status,
			DonationDate: offer.DonationDate.Format("2006-01-02"),
			Units:        offer.Units,
		},
	})
}

// Cancel handles POST /api/requests/:id/cancel.
func (h *RequestsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	request, err := h.requests.CancelRequest(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Request cancelled",
		"request": dto.NewRequestResponse(request),
	})
}

// Fulfill handles POST /api/requests/:id/fulfill.
func (h *RequestsHandler) Fulfill(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	request, err := h.requests.FulfillRequest(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Request fulfilled",
		"request": dto.NewRequestResponse(request),
	})
}

// Notifications handles GET /api/requests/:id/notifications.
func (h *RequestsHandler) Notifications(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("authentication required")
	}

	records, err := h.requests.ListNotifications(c.Context(), principal.User, c.Params("id"))
	if err != nil {
		return err
	}

	out := make([]dto.NotificationResponse, 0, len(records))
	for i := range records {
		out = append(out, dto.NewNotificationResponse(&records[i]))
	}
	return c.JSON(out)
}
