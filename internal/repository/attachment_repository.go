package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/grc-api/internal/models"
)

// AttachmentRepository persists metadata for files stored on disk.
type AttachmentRepository struct {
	db *sqlx.DB
}

// NewAttachmentRepository constructs the repository.
func NewAttachmentRepository(db *sqlx.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

// Create inserts attachment metadata after the file landed in storage. The
// upload's ledger entry commits in the same transaction, so a recorded
// attachment always has its audit trail.
func (r *AttachmentRepository) Create(ctx context.Context, attachment *models.Attachment, log *models.RequestLog) error {
	if attachment.ID == "" {
		attachment.ID = uuid.NewString()
	}
	if attachment.UploadedAt.IsZero() {
		attachment.UploadedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create attachment: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO attachments (id, request_id, uploaded_by, file_path, filename, mime_type, size, uploaded_at)
	VALUES (:id, :request_id, :uploaded_by, :file_path, :filename, :mime_type, :size, :uploaded_at)`
	if _, err := tx.NamedExecContext(ctx, query, attachment); err != nil {
		return fmt.Errorf("create attachment: %w", err)
	}

	log.RequestID = attachment.RequestID
	if err := insertLog(ctx, tx, log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create attachment: %w", err)
	}
	return nil
}

// ListByRequest returns attachments of a request in upload order.
func (r *AttachmentRepository) ListByRequest(ctx context.Context, requestID string) ([]models.Attachment, error) {
	const query = `SELECT id, request_id, uploaded_by, file_path, filename, mime_type, size, uploaded_at
	FROM attachments WHERE request_id = $1 ORDER BY uploaded_at ASC`
	var attachments []models.Attachment
	if err := r.db.SelectContext(ctx, &attachments, query, requestID); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return attachments, nil
}

// GetByID fetches a single attachment.
func (r *AttachmentRepository) GetByID(ctx context.Context, id string) (*models.Attachment, error) {
	const query = `SELECT id, request_id, uploaded_by, file_path, filename, mime_type, size, uploaded_at
	FROM attachments WHERE id = $1`
	var attachment models.Attachment
	if err := r.db.GetContext(ctx, &attachment, query, id); err != nil {
		return nil, err
	}
	return &attachment, nil
}
