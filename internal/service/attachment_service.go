package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/models"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/storage"
)

// attachmentStore is the metadata surface of attachments. Create persists
// the attachment row and its ledger entry atomically.
type attachmentStore interface {
	Create(ctx context.Context, attachment *models.Attachment, log *models.RequestLog) error
	ListByRequest(ctx context.Context, requestID string) ([]models.Attachment, error)
	GetByID(ctx context.Context, id string) (*models.Attachment, error)
}

// attachmentRequestStore is the slice of the request surface attachments need.
type attachmentRequestStore interface {
	GetByID(ctx context.Context, id string) (*models.Request, error)
}

// AttachmentConfig bounds what uploads are accepted.
type AttachmentConfig struct {
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// AttachmentService stores supporting files and serves them back through
// signed, expiring download links.
type AttachmentService struct {
	store    attachmentStore
	requests attachmentRequestStore
	files    *storage.LocalStorage
	signer   *storage.SignedURLSigner
	gate     requestGate
	cfg      AttachmentConfig
	logger   *zap.Logger
}

// NewAttachmentService constructs the service.
func NewAttachmentService(store attachmentStore, requests attachmentRequestStore, files *storage.LocalStorage, signer *storage.SignedURLSigner, cfg AttachmentConfig, logger *zap.Logger) *AttachmentService {
	if cfg.MaxFileSizeBytes <= 0 {
		cfg.MaxFileSizeBytes = 10 << 20
	}
	return &AttachmentService{
		store:    store,
		requests: requests,
		files:    files,
		signer:   signer,
		cfg:      cfg,
		logger:   logger,
	}
}

// Upload attaches a file to a request. Only the owning student may attach,
// and only while the request has not been acknowledged.
func (s *AttachmentService) Upload(ctx context.Context, actor *models.Actor, requestID, filename, mimeType string, size int64, reader io.Reader) (*models.Attachment, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "request not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load request")
	}
	if !s.gate.canEditContent(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	if !request.CanEdit() {
		return nil, apperrors.Clone(apperrors.ErrForbidden, "attachments can no longer be added")
	}
	if size > s.cfg.MaxFileSizeBytes {
		return nil, apperrors.Clone(apperrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	if !s.mimeAllowed(mimeType) {
		return nil, apperrors.Clone(apperrors.ErrValidation, "file type not allowed")
	}

	attachment := &models.Attachment{
		ID:         uuid.NewString(),
		RequestID:  requestID,
		UploadedBy: &actor.UserID,
		Filename:   filepath.Base(filename),
		MimeType:   mimeType,
	}
	attachment.FilePath = filepath.Join(requestID, attachment.ID+filepath.Ext(attachment.Filename))

	// cap the stream one byte past the limit to catch undeclared oversize
	written, err := s.files.SaveStream(attachment.FilePath, io.LimitReader(reader, s.cfg.MaxFileSizeBytes+1))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrStorage.Code, apperrors.ErrStorage.Status, apperrors.ErrStorage.Message)
	}
	if written > s.cfg.MaxFileSizeBytes {
		s.cleanup(attachment.FilePath)
		return nil, apperrors.Clone(apperrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSizeBytes))
	}
	attachment.Size = written

	status := request.Status
	log := &models.RequestLog{
		Action:     models.LogActionUploadAttachment,
		FromStatus: &status,
		ToStatus:   status,
		ActorID:    &actor.UserID,
		ActorName:  actor.FullName,
		Note:       attachment.Filename,
	}
	if err := s.store.Create(ctx, attachment, log); err != nil {
		s.cleanup(attachment.FilePath)
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to record attachment")
	}
	return attachment, nil
}

// List returns the attachments of a request, each carrying a signed link.
func (s *AttachmentService) List(ctx context.Context, actor *models.Actor, requestID string) ([]models.Attachment, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "request not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load request")
	}
	if !s.gate.canView(actor, request) {
		return nil, apperrors.ErrForbidden
	}

	attachments, err := s.store.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list attachments")
	}
	for i := range attachments {
		token, _, err := s.signer.Generate(attachments[i].ID, attachments[i].FilePath)
		if err != nil {
			s.logger.Warn("signing attachment link failed", zap.String("attachment_id", attachments[i].ID), zap.Error(err))
			continue
		}
		attachments[i].URL = "/attachments/download?token=" + token
	}
	return attachments, nil
}

// Download resolves a signed token to the stored file. The token itself is
// the authorization: whoever obtained it passed the view check at list time.
func (s *AttachmentService) Download(ctx context.Context, token string) (*models.Attachment, *os.File, error) {
	attachmentID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid or expired download link")
	}

	attachment, err := s.store.GetByID(ctx, attachmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, apperrors.Clone(apperrors.ErrNotFound, "attachment not found")
		}
		return nil, nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load attachment")
	}
	if attachment.FilePath != relPath {
		return nil, nil, apperrors.Clone(apperrors.ErrUnauthorized, "invalid or expired download link")
	}

	file, err := s.files.Open(attachment.FilePath)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrStorage.Code, apperrors.ErrStorage.Status, apperrors.ErrStorage.Message)
	}
	return attachment, file, nil
}

func (s *AttachmentService) mimeAllowed(mimeType string) bool {
	if len(s.cfg.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedMIMEs {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

func (s *AttachmentService) cleanup(relPath string) {
	if err := s.files.Delete(relPath); err != nil {
		s.logger.Warn("attachment cleanup failed", zap.String("path", relPath), zap.Error(err))
	}
}
