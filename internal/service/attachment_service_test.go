package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/models"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/storage"
)

type memoryAttachmentStore struct {
	attachments map[string]*models.Attachment
	logs        []models.RequestLog
}

func (s *memoryAttachmentStore) Create(_ context.Context, attachment *models.Attachment, log *models.RequestLog) error {
	s.attachments[attachment.ID] = attachment
	entry := *log
	entry.RequestID = attachment.RequestID
	s.logs = append(s.logs, entry)
	return nil
}

func (s *memoryAttachmentStore) ListByRequest(_ context.Context, requestID string) ([]models.Attachment, error) {
	var out []models.Attachment
	for _, attachment := range s.attachments {
		if attachment.RequestID == requestID {
			out = append(out, *attachment)
		}
	}
	return out, nil
}

func (s *memoryAttachmentStore) GetByID(_ context.Context, id string) (*models.Attachment, error) {
	attachment, ok := s.attachments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return attachment, nil
}

type fixedRequestStore struct {
	request *models.Request
}

func (s *fixedRequestStore) GetByID(_ context.Context, id string) (*models.Request, error) {
	if s.request == nil || s.request.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.request
	return &copied, nil
}

func newAttachmentFixture(t *testing.T, status models.RequestStatus) (*AttachmentService, *memoryAttachmentStore) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test_secret", time.Minute)
	requests := &fixedRequestStore{request: &models.Request{
		ID:        "req-1",
		StudentID: studentProfile,
		Status:    status,
	}}
	store := &memoryAttachmentStore{attachments: make(map[string]*models.Attachment)}
	svc := NewAttachmentService(
		store, requests, files, signer,
		AttachmentConfig{MaxFileSizeBytes: 64, AllowedMIMEs: []string{"application/pdf"}},
		zap.NewNop(),
	)
	return svc, store
}

func TestUploadStoresFileAndLogsLedgerEntry(t *testing.T) {
	svc, store := newAttachmentFixture(t, models.StatusSent)
	content := "score sheet scan"

	attachment, err := svc.Upload(context.Background(), studentActor(), "req-1",
		"sheet.pdf", "application/pdf", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), attachment.Size)
	assert.Equal(t, "sheet.pdf", attachment.Filename)

	require.Len(t, store.logs, 1)
	entry := store.logs[0]
	assert.Equal(t, models.LogActionUploadAttachment, entry.Action)
	assert.Equal(t, "req-1", entry.RequestID)
	require.NotNil(t, entry.FromStatus)
	assert.Equal(t, models.StatusSent, *entry.FromStatus)
	assert.Equal(t, models.StatusSent, entry.ToStatus)
}

func TestUploadForbiddenAfterAcknowledgement(t *testing.T) {
	svc, _ := newAttachmentFixture(t, models.StatusReceived)

	_, err := svc.Upload(context.Background(), studentActor(), "req-1",
		"sheet.pdf", "application/pdf", 4, strings.NewReader("late"))
	requireAppError(t, err, apperrors.ErrForbidden.Code)
}

func TestUploadRejectsDisallowedMimeType(t *testing.T) {
	svc, _ := newAttachmentFixture(t, models.StatusSent)

	_, err := svc.Upload(context.Background(), studentActor(), "req-1",
		"run.exe", "application/octet-stream", 4, strings.NewReader("bin!"))
	requireAppError(t, err, apperrors.ErrValidation.Code)
}

func TestUploadRejectsOversizeStream(t *testing.T) {
	svc, _ := newAttachmentFixture(t, models.StatusSent)
	oversize := strings.Repeat("x", 100)

	// declared size lies below the limit, the stream does not
	_, err := svc.Upload(context.Background(), studentActor(), "req-1",
		"big.pdf", "application/pdf", 10, strings.NewReader(oversize))
	requireAppError(t, err, apperrors.ErrValidation.Code)
}

func TestSignedLinkRoundTrip(t *testing.T) {
	svc, _ := newAttachmentFixture(t, models.StatusSent)
	content := "evidence"

	_, err := svc.Upload(context.Background(), studentActor(), "req-1",
		"proof.pdf", "application/pdf", int64(len(content)), strings.NewReader(content))
	require.NoError(t, err)

	attachments, err := svc.List(context.Background(), studentActor(), "req-1")
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	require.NotEmpty(t, attachments[0].URL)

	token := strings.TrimPrefix(attachments[0].URL, "/attachments/download?token=")
	attachment, file, err := svc.Download(context.Background(), token)
	require.NoError(t, err)
	defer file.Close()

	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, content, string(payload))
	assert.Equal(t, "application/pdf", attachment.MimeType)
}

func TestDownloadRejectsTamperedToken(t *testing.T) {
	svc, _ := newAttachmentFixture(t, models.StatusSent)

	_, _, err := svc.Download(context.Background(), "not.a.valid.token")
	requireAppError(t, err, apperrors.ErrUnauthorized.Code)
}
