package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/api/dto"
	"github.com/brightpath/guidance-service/internal/service"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// TicketsHandler exposes the student-facing ticket surface: request
// intake, own-ticket listing and the message thread.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// CreateTutoringRequest handles POST /requests/tutoring.
func (h *TicketsHandler) CreateTutoringRequest(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TutoringRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, ticket, err := h.tickets.OpenTutoringRequest(c.UserContext(), viewer, req.Subject, req.Details)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"requestId": request.ID,
			"status":    request.Status,
			"ticket":    dto.NewTicketResponse(ticket),
		},
	})
}

// CreateSupportRequest handles POST /requests/support.
func (h *TicketsHandler) CreateSupportRequest(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.SupportRequestPayload
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	request, ticket, err := h.tickets.OpenSupportRequest(c.UserContext(), viewer, req.Topic, req.Details)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"requestId": request.ID,
			"status":    request.Status,
			"ticket":    dto.NewTicketResponse(ticket),
		},
	})
}

// List handles GET /tickets for the requester's own tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)
	tickets, err := h.tickets.ListTicketsForRequester(c.UserContext(), viewer, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := h.tickets.GetTicket(c.UserContext(), viewer, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListMessages handles GET /tickets/:id/messages.
func (h *TicketsHandler) ListMessages(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	messages, err := h.tickets.ListMessages(c.UserContext(), viewer, c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		out = append(out, dto.NewMessageResponse(&messages[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// AddMessage handles POST /tickets/:id/messages.
func (h *TicketsHandler) AddMessage(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AddMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	message, err := h.tickets.AddMessage(c.UserContext(), viewer, c.Params("id"), req.Body, req.Visibility)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewMessageResponse(message)})
}
