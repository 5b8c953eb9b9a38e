package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/brightpath/guidance-service/internal/accesscontrol"
	"github.com/brightpath/guidance-service/internal/domain"
	"github.com/brightpath/guidance-service/internal/repository"
	"github.com/brightpath/guidance-service/internal/storage"
	apperrors "github.com/brightpath/guidance-service/pkg/util"
)

// downloadTTL is the fixed validity window for signed download URLs.
const downloadTTL = 10 * time.Minute

// AttachmentService manages ticket attachment metadata and signed URLs.
// The metadata row is written before the upload URL is issued so an
// orphaned storage object can never exist without a row pointing at it.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     *TicketService
	signer      storage.URLSigner
	logger      *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(attachments repository.AttachmentRepository, tickets *TicketService, signer storage.URLSigner, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		attachments: attachments,
		tickets:     tickets,
		signer:      signer,
		logger:      logger,
	}
}

// CreateAttachmentInput describes an upload request.
type CreateAttachmentInput struct {
	FileName  string
	MimeType  string
	SizeBytes int64
}

// AttachmentUpload is the created row plus its one-shot upload URL.
type AttachmentUpload struct {
	Attachment *domain.Attachment
	UploadURL  string
}

// Create records attachment metadata and signs an upload URL. A signer
// failure rolls the row back best-effort before the error surfaces.
func (s *AttachmentService) Create(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string, input CreateAttachmentInput) (*AttachmentUpload, error) {
	fileName := strings.TrimSpace(input.FileName)
	if fileName == "" {
		return nil, apperrors.NewValidationError("fileName is required", nil)
	}
	if input.SizeBytes < 0 {
		return nil, apperrors.NewValidationError("sizeBytes must not be negative", nil)
	}

	ticket, err := s.tickets.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}

	storagePath := path.Join("tickets", ticket.ID, uuid.NewString(), fileName)
	attachment := &domain.Attachment{
		TicketID:    ticket.ID,
		UploaderID:  viewer.UserID,
		StoragePath: storagePath,
		FileName:    fileName,
		MimeType:    input.MimeType,
		SizeBytes:   input.SizeBytes,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, apperrors.MapError(err)
	}

	uploadURL, err := s.signer.SignUpload(ctx, storagePath)
	if err != nil {
		if rollbackErr := s.attachments.Delete(ctx, attachment.ID); rollbackErr != nil {
			s.logger.Error("attachment rollback failed",
				zap.String("attachment_id", attachment.ID),
				zap.Error(rollbackErr))
		}
		if errors.Is(err, storage.ErrNotConfigured) {
			return nil, apperrors.NewNotConfigured("file storage")
		}
		return nil, apperrors.NewInternalError(fmt.Errorf("sign upload url: %w", err))
	}

	return &AttachmentUpload{Attachment: attachment, UploadURL: uploadURL}, nil
}

// Download returns a short-lived signed download URL for an attachment
// on a ticket the viewer may see.
func (s *AttachmentService) Download(ctx context.Context, viewer *accesscontrol.Viewer, ticketID, attachmentID string) (string, error) {
	attachment, err := s.getForTicket(ctx, viewer, ticketID, attachmentID)
	if err != nil {
		return "", err
	}

	url, err := s.signer.SignDownload(ctx, attachment.StoragePath, downloadTTL)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			return "", apperrors.NewNotConfigured("file storage")
		}
		return "", apperrors.NewInternalError(fmt.Errorf("sign download url: %w", err))
	}
	return url, nil
}

// Link attaches an uploaded file to a message. Only the uploader may
// link, and only within the owning ticket; anything else reads as 404.
func (s *AttachmentService) Link(ctx context.Context, viewer *accesscontrol.Viewer, ticketID, attachmentID, messageID string) error {
	ticket, err := s.tickets.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return err
	}
	err = s.attachments.LinkToMessage(ctx, attachmentID, messageID, viewer.UserID, ticket.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("attachment", nil)
		}
		return apperrors.MapError(err)
	}
	return nil
}

// List returns attachment metadata for a ticket the viewer may see.
func (s *AttachmentService) List(ctx context.Context, viewer *accesscontrol.Viewer, ticketID string) ([]domain.Attachment, error) {
	ticket, err := s.tickets.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return attachments, nil
}

func (s *AttachmentService) getForTicket(ctx context.Context, viewer *accesscontrol.Viewer, ticketID, attachmentID string) (*domain.Attachment, error) {
	ticket, err := s.tickets.GetTicket(ctx, viewer, ticketID)
	if err != nil {
		return nil, err
	}
	attachment, err := s.attachments.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("attachment", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if attachment.TicketID != ticket.ID {
		return nil, apperrors.NewNotFound("attachment", nil)
	}
	return attachment, nil
}
