package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/grc-api/internal/models"
)

func newMockRequestRepo(t *testing.T) (*RequestRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRequestRepository(sqlx.NewDb(db, "postgres")), mock
}

func TestTransitionCommitsUpdateAndLogTogether(t *testing.T) {
	repo, mock := newMockRequestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2 AND status IN \(\$3\)`).
		WithArgs(models.StatusReceived, "req-1", models.StatusSent).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO request_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Transition(context.Background(), TransitionParams{
		ID:   "req-1",
		From: []models.RequestStatus{models.StatusSent},
		To:   models.StatusReceived,
		Log:  models.RequestLog{Action: models.LogActionAcknowledge, ActorName: "Prof. Kamdem"},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionStaleStatusRollsBack(t *testing.T) {
	repo, mock := newMockRequestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE requests SET status = \$1 WHERE id = \$2 AND status IN \(\$3\)`).
		WithArgs(models.StatusReceived, "req-1", models.StatusSent).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Transition(context.Background(), TransitionParams{
		ID:   "req-1",
		From: []models.RequestStatus{models.StatusSent},
		To:   models.StatusReceived,
		Log:  models.RequestLog{Action: models.LogActionAcknowledge},
	})
	assert.ErrorIs(t, err, ErrStaleStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionWithResultInsertsAllThreeRows(t *testing.T) {
	repo, mock := newMockRequestRepo(t)
	closedAt := time.Now().UTC()
	reason := "duplicate submission"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE requests SET status = \$1, closed_at = \$2 WHERE id = \$3 AND status IN \(\$4,\$5\)`).
		WithArgs(models.StatusDone, closedAt, "req-9", models.StatusSent, models.StatusReceived).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO request_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO request_results`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Transition(context.Background(), TransitionParams{
		ID:       "req-9",
		From:     []models.RequestStatus{models.StatusSent, models.StatusReceived},
		To:       models.StatusDone,
		ClosedAt: &closedAt,
		Log:      models.RequestLog{Action: models.LogActionDecide, Note: reason},
		Result:   &models.RequestResult{Disposition: models.ResultRejected, Reason: &reason},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionRequiresSourceStatuses(t *testing.T) {
	repo, _ := newMockRequestRepo(t)
	err := repo.Transition(context.Background(), TransitionParams{ID: "req-1", To: models.StatusDone})
	assert.Error(t, err)
}

func TestCreateInsertsRequestWithInitialLog(t *testing.T) {
	repo, mock := newMockRequestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO requests`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO request_logs`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	request := &models.Request{
		StudentID:    "stu-1",
		Matricule:    "20G60123",
		StudentName:  "Ngono Marie",
		ClassLevelID: "lvl-3",
		FieldID:      "fld-gl",
		SubjectID:    "sub-1",
		Type:         models.RequestTypeCC,
		CurrentScore: 9.5,
	}
	err := repo.Create(context.Background(), request, &models.RequestLog{
		Action:    models.LogActionCreate,
		ActorName: "Ngono Marie",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, request.ID)
	assert.Equal(t, models.StatusSent, request.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateContentGuardedOnSentStatus(t *testing.T) {
	repo, mock := newMockRequestRepo(t)
	description := "score sheet shows 12, portal shows 9"

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE requests SET description = \$1 WHERE id = \$2 AND status = 'sent'`).
		WithArgs(description, "req-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.UpdateContent(context.Background(), UpdateContentParams{
		ID:          "req-1",
		Description: &description,
		Log:         models.RequestLog{Action: models.LogActionUpdate},
	})
	assert.ErrorIs(t, err, ErrStaleStatus)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteOnlyWhileSent(t *testing.T) {
	repo, mock := newMockRequestRepo(t)

	mock.ExpectExec(`DELETE FROM requests WHERE id = \$1 AND status = 'sent'`).
		WithArgs("req-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "req-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListBuildsFilterConditions(t *testing.T) {
	repo, mock := newMockRequestRepo(t)

	rows := sqlmock.NewRows([]string{"id", "status", "subject_name"}).
		AddRow("req-1", "received", "Algorithmique")
	mock.ExpectQuery(`SELECT .+ FROM requests r .+ WHERE r\.status IN \(\$1,\$2\) AND r\.assigned_to = \$3 ORDER BY r\.submitted_at DESC LIMIT 50 OFFSET 0`).
		WithArgs(models.StatusSent, models.StatusReceived, "usr-7").
		WillReturnRows(rows)

	requests, err := repo.List(context.Background(), models.RequestFilter{
		Status:     []models.RequestStatus{models.StatusSent, models.StatusReceived},
		AssignedTo: "usr-7",
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.StatusReceived, requests[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
