package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grc-api/internal/models"
)

func newMockAttachmentRepo(t *testing.T) (*AttachmentRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewAttachmentRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateAttachmentCommitsRowAndLogTogether(t *testing.T) {
	repo, mock := newMockAttachmentRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO attachments`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO request_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sent := models.StatusSent
	log := &models.RequestLog{
		Action:     models.LogActionUploadAttachment,
		FromStatus: &sent,
		ToStatus:   sent,
		Note:       "sheet.pdf",
	}
	err := repo.Create(context.Background(), &models.Attachment{
		RequestID: "req-1",
		Filename:  "sheet.pdf",
		MimeType:  "application/pdf",
		Size:      42,
	}, log)
	require.NoError(t, err)
	assert.Equal(t, "req-1", log.RequestID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAttachmentRollsBackWhenLogInsertFails(t *testing.T) {
	repo, mock := newMockAttachmentRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO attachments`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO request_logs`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Attachment{
		RequestID: "req-1",
		Filename:  "sheet.pdf",
	}, &models.RequestLog{Action: models.LogActionUploadAttachment})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
