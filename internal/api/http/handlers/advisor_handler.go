package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/advisor"
	"github.com/brightpath/guidance-service/internal/api/dto"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// AdvisorHandler exposes the LLM chat, course search and document
// ingestion endpoints.
type AdvisorHandler struct {
	advisor *advisor.Service
}

// NewAdvisorHandler constructs the handler.
func NewAdvisorHandler(service *advisor.Service) *AdvisorHandler {
	return &AdvisorHandler{advisor: service}
}

// Chat handles POST /advisor/chat.
func (h *AdvisorHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reply, err := h.advisor.Chat(c.UserContext(), req.Messages)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ChatResponse{Reply: reply}})
}

// SearchCourses handles POST /courses/search.
func (h *AdvisorHandler) SearchCourses(c *fiber.Ctx) error {
	var req dto.CourseSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Query == "" {
		return apperrors.NewValidationError("query is required", nil)
	}

	matches, err := h.advisor.SearchCourses(c.UserContext(), req.Query, req.Limit)
	if err != nil {
		return err
	}
	out := make([]dto.CourseMatchResponse, 0, len(matches))
	for _, match := range matches {
		out = append(out, dto.CourseMatchResponse{
			CourseID:   match.Course.ID,
			Code:       match.Course.Code,
			Title:      match.Course.Title,
			Similarity: match.Similarity,
		})
	}
	return c.JSON(fiber.Map{"data": out})
}

// IngestDocument handles POST /documents.
func (h *AdvisorHandler) IngestDocument(c *fiber.Ctx) error {
	viewer, ok := accesscontrol.ViewerFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.IngestDocumentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	document, err := h.advisor.IngestDocument(c.UserContext(), viewer.UserID, req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"data": dto.DocumentResponse{
		ID:        document.ID,
		Title:     document.Title,
		Status:    document.Status,
		CreatedAt: document.CreatedAt,
	}})
}
