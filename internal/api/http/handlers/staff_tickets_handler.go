package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/api/dto"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/service"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// StaffTicketsHandler exposes the backoffice ticket surface.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	attachments *service.AttachmentService
}

// NewStaffTicketsHandler constructs the handler.
func NewStaffTicketsHandler(tickets *service.TicketService, attachments *service.AttachmentService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, attachments: attachments}
}

// Create handles POST /staff/tickets.
func (h *StaffTicketsHandler) Create(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateManualTicket(c.UserContext(), viewer, service.CreateTicketInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Sensitive:   req.Sensitive,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// List handles GET /staff/tickets.
func (h *StaffTicketsHandler) List(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := service.TicketListFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if raw := c.Query("statuses"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.TrimSpace(part))
			if !domain.ValidTicketStatus(status) {
				return apperrors.NewValidationError("invalid status filter", map[string]any{"status": status})
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := c.Query("team"); raw != "" {
		team := domain.Team(raw)
		if !domain.ValidTeam(team) {
			return apperrors.NewValidationError("invalid team filter", map[string]any{"team": team})
		}
		filter.Team = &team
	}

	tickets, err := h.tickets.ListTicketsForStaff(c.UserContext(), viewer, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketListResponse(tickets)})
}

// Get handles GET /staff/tickets/:id.
func (h *StaffTicketsHandler) Get(c *fiber.Ctx) error {
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

// Assign handles POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.AssignTicket(c.UserContext(), viewer, c.Params("id"), service.AssignTicketInput{
		AssigneeID: req.AssigneeID,
		Team:       req.Team,
		Note:       req.Note,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ChangeStatus handles PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.ChangeStatus(c.UserContext(), viewer, c.Params("id"), req.Status, req.Note)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTicketResponse(ticket)})
}

// ListMessages handles GET /staff/tickets/:id/messages.
func (h *StaffTicketsHandler) ListMessages(c *fiber.Ctx) error {
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

// AddMessage handles POST /staff/tickets/:id/messages.
func (h *StaffTicketsHandler) AddMessage(c *fiber.Ctx) error {
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

// AddNote handles POST /staff/tickets/:id/notes.
func (h *StaffTicketsHandler) AddNote(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.AddNoteRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	note, err := h.tickets.AddNote(c.UserContext(), viewer, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.NoteResponse{
		ID:        note.ID,
		TicketID:  note.TicketID,
		AuthorID:  note.AuthorID,
		Body:      note.Body,
		CreatedAt: note.CreatedAt,
	}})
}

// ListNotes handles GET /staff/tickets/:id/notes.
func (h *StaffTicketsHandler) ListNotes(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	notes, err := h.tickets.ListNotes(c.UserContext(), viewer, c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.NoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, dto.NoteResponse{
			ID:        note.ID,
			TicketID:  note.TicketID,
			AuthorID:  note.AuthorID,
			Body:      note.Body,
			CreatedAt: note.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// ListEvents handles GET /staff/tickets/:id/events.
func (h *StaffTicketsHandler) ListEvents(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	trail, err := h.tickets.ListEvents(c.UserContext(), viewer, c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.EventResponse, 0, len(trail))
	for _, event := range trail {
		out = append(out, dto.EventResponse{
			ID:          event.ID,
			TicketID:    event.TicketID,
			ActorID:     event.ActorID,
			Action:      event.Action,
			OldStatus:   event.OldStatus,
			NewStatus:   event.NewStatus,
			OldAssignee: event.OldAssignee,
			NewAssignee: event.NewAssignee,
			Metadata:    event.Metadata,
			CreatedAt:   event.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// CreateAttachment handles POST /staff/tickets/:id/attachments.
func (h *StaffTicketsHandler) CreateAttachment(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.CreateAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	upload, err := h.attachments.Create(c.UserContext(), viewer, c.Params("id"), service.CreateAttachmentInput{
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		SizeBytes: req.SizeBytes,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"attachment": dto.NewAttachmentResponse(upload.Attachment),
			"uploadUrl":  upload.UploadURL,
		},
	})
}

// ListAttachments handles GET /staff/tickets/:id/attachments.
func (h *StaffTicketsHandler) ListAttachments(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	attachments, err := h.attachments.List(c.UserContext(), viewer, c.Params("id"))
	if err != nil {
		return err
	}
	out := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		out = append(out, dto.NewAttachmentResponse(&attachments[i]))
	}
	return c.JSON(fiber.Map{"data": out})
}

// DownloadAttachment handles GET /staff/tickets/:id/attachments/:attachmentId/download.
func (h *StaffTicketsHandler) DownloadAttachment(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	url, err := h.attachments.Download(c.UserContext(), viewer, c.Params("id"), c.Params("attachmentId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"downloadUrl": url}})
}

// LinkAttachment handles POST /staff/tickets/:id/attachments/:attachmentId/link.
func (h *StaffTicketsHandler) LinkAttachment(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.LinkAttachmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MessageID == "" {
		return apperrors.NewValidationError("messageId is required", nil)
	}

	if err := h.attachments.Link(c.UserContext(), viewer, c.Params("id"), c.Params("attachmentId"), req.MessageID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
