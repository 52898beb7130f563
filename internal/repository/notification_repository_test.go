package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grc-api/internal/models"
)

func newMockNotificationRepo(t *testing.T) (*NotificationRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewNotificationRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateNotificationFillsDefaults(t *testing.T) {
	repo, mock := newMockNotificationRepo(t)

	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	notification := &models.Notification{UserID: "usr-1", Title: "Request received"}
	require.NoError(t, repo.Create(context.Background(), notification))
	assert.NotEmpty(t, notification.ID)
	assert.False(t, notification.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListUnreadOnlyAddsPredicate(t *testing.T) {
	repo, mock := newMockNotificationRepo(t)

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "read"}).
		AddRow("ntf-1", "usr-1", "Request received", false)
	mock.ExpectQuery(`SELECT .+ FROM notifications WHERE user_id = \$1 AND read = FALSE ORDER BY created_at DESC LIMIT 50 OFFSET 0`).
		WithArgs("usr-1").
		WillReturnRows(rows)

	notifications, err := repo.List(context.Background(), models.NotificationFilter{UserID: "usr-1", UnreadOnly: true})
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.False(t, notifications[0].Read)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadScopedToOwner(t *testing.T) {
	repo, mock := newMockNotificationRepo(t)

	mock.ExpectExec(`UPDATE notifications SET read = TRUE WHERE id = \$1 AND user_id = \$2`).
		WithArgs("ntf-1", "usr-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "ntf-1", "usr-2")
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
