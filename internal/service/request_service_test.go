package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/dto"
	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/internal/repository"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
)

// stubRequestStore keeps requests in memory and honours the guarded
// transition contract of the real repository.
type stubRequestStore struct {
	mu       sync.Mutex
	requests map[string]*models.Request
	logs     []models.RequestLog
	results  map[string]*models.RequestResult
}

func newStubRequestStore() *stubRequestStore {
	return &stubRequestStore{
		requests: make(map[string]*models.Request),
		results:  make(map[string]*models.RequestResult),
	}
}

func (s *stubRequestStore) Create(_ context.Context, request *models.Request, log *models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	copied := *request
	s.requests[request.ID] = &copied
	log.RequestID = request.ID
	log.ToStatus = request.Status
	s.logs = append(s.logs, *log)
	return nil
}

func (s *stubRequestStore) GetByID(_ context.Context, id string) (*models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *request
	return &copied, nil
}

func (s *stubRequestStore) List(_ context.Context, filter models.RequestFilter) ([]models.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Request
	for _, request := range s.requests {
		if filter.StudentID != "" && request.StudentID != filter.StudentID {
			continue
		}
		if filter.FieldID != "" && request.FieldID != filter.FieldID {
			continue
		}
		if filter.AssignedTo != "" && (request.AssignedTo == nil || *request.AssignedTo != filter.AssignedTo) {
			continue
		}
		if len(filter.Status) > 0 {
			match := false
			for _, status := range filter.Status {
				if request.Status == status {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, *request)
	}
	return out, nil
}

func (s *stubRequestStore) Transition(_ context.Context, params repository.TransitionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[params.ID]
	if !ok {
		return sql.ErrNoRows
	}
	matched := false
	for _, from := range params.From {
		if request.Status == from {
			matched = true
			break
		}
	}
	if !matched {
		return repository.ErrStaleStatus
	}
	request.Status = params.To
	request.ClosedAt = params.ClosedAt
	log := params.Log
	log.RequestID = params.ID
	log.ToStatus = params.To
	s.logs = append(s.logs, log)
	if params.Result != nil {
		result := *params.Result
		result.RequestID = params.ID
		s.results[params.ID] = &result
	}
	return nil
}

func (s *stubRequestStore) UpdateContent(_ context.Context, params repository.UpdateContentParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[params.ID]
	if !ok || request.Status != models.StatusSent {
		return repository.ErrStaleStatus
	}
	if params.SubjectID != nil {
		request.SubjectID = *params.SubjectID
	}
	if params.Description != nil {
		request.Description = *params.Description
	}
	if params.CurrentScore != nil {
		request.CurrentScore = *params.CurrentScore
	}
	log := params.Log
	log.RequestID = params.ID
	s.logs = append(s.logs, log)
	return nil
}

func (s *stubRequestStore) UpdateScore(_ context.Context, id string, score float64, log models.RequestLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok || request.Status == models.StatusDone {
		return repository.ErrStaleStatus
	}
	request.CurrentScore = score
	log.RequestID = id
	s.logs = append(s.logs, log)
	return nil
}

func (s *stubRequestStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	request, ok := s.requests[id]
	if !ok || request.Status != models.StatusSent {
		return sql.ErrNoRows
	}
	delete(s.requests, id)
	return nil
}

func (s *stubRequestStore) ListLogs(_ context.Context, requestID string) ([]models.RequestLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.RequestLog
	for _, log := range s.logs {
		if log.RequestID == requestID {
			out = append(out, log)
		}
	}
	return out, nil
}

func (s *stubRequestStore) GetResult(_ context.Context, requestID string) (*models.RequestResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[requestID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *result
	return &copied, nil
}

// stubReferenceReader serves a small fixed academic universe.
type stubReferenceReader struct {
	subjects     map[string]*models.Subject
	bySubject    map[string][]models.Lecturer
	hods         map[string]*models.Lecturer
	cellule      []string
	students     map[string]*models.Student
	studentUsers map[string]string
}

func (s *stubReferenceReader) GetSubject(_ context.Context, id string) (*models.Subject, error) {
	subject, ok := s.subjects[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return subject, nil
}

func (s *stubReferenceReader) LecturersBySubject(_ context.Context, subjectID string) ([]models.Lecturer, error) {
	return s.bySubject[subjectID], nil
}

func (s *stubReferenceReader) HeadOfField(_ context.Context, fieldID string) (*models.Lecturer, error) {
	hod, ok := s.hods[fieldID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return hod, nil
}

func (s *stubReferenceReader) CelluleMemberIDs(_ context.Context) ([]string, error) {
	return s.cellule, nil
}

func (s *stubReferenceReader) GetStudentByUserID(_ context.Context, userID string) (*models.Student, error) {
	student, ok := s.students[userID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func (s *stubReferenceReader) StudentUserID(_ context.Context, studentID string) (string, error) {
	userID, ok := s.studentUsers[studentID]
	if !ok {
		return "", sql.ErrNoRows
	}
	return userID, nil
}

// recordingNotifier collects notifications synchronously.
type recordingNotifier struct {
	mu      sync.Mutex
	notices []struct{ UserID, Title string }
}

func (n *recordingNotifier) Notify(userID, title, _, _ string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, struct{ UserID, Title string }{userID, title})
}

func (n *recordingNotifier) recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.notices))
	for i, notice := range n.notices {
		out[i] = notice.UserID
	}
	return out
}

const (
	fieldGL        = "fld-gl"
	subjectAlgo    = "sub-algo"
	userStudent    = "usr-student"
	userLecturer   = "usr-lecturer"
	userHOD        = "usr-hod"
	userCellule    = "usr-cellule"
	studentProfile = "stu-1"
)

func newTestFixture() (*RequestService, *stubRequestStore, *recordingNotifier) {
	store := newStubRequestStore()
	refs := &stubReferenceReader{
		subjects: map[string]*models.Subject{
			subjectAlgo: {ID: subjectAlgo, Code: "ALG", Name: "Algorithmique", FieldID: fieldGL},
			"sub-other": {ID: "sub-other", Code: "OTH", Name: "Other", FieldID: "fld-gi"},
		},
		bySubject: map[string][]models.Lecturer{
			subjectAlgo: {{ID: "lec-1", UserID: userLecturer, FullName: "Dr. Fotso"}},
		},
		hods: map[string]*models.Lecturer{
			fieldGL: {ID: "lec-2", UserID: userHOD, FullName: "Prof. Kamga", IsHOD: true},
		},
		cellule: []string{userCellule},
		students: map[string]*models.Student{
			userStudent: {ID: studentProfile, UserID: userStudent, FullName: "Ngono Marie", Matricule: "20G60123", ClassLevelID: "lvl-3"},
		},
		studentUsers: map[string]string{studentProfile: userStudent},
	}
	notify := &recordingNotifier{}
	svc := NewRequestService(store, refs, notify, zap.NewNop())
	return svc, store, notify
}

func studentActor() *models.Actor {
	return &models.Actor{UserID: userStudent, FullName: "Ngono Marie", Role: models.RoleStudent, StudentID: studentProfile}
}

func lecturerActor() *models.Actor {
	return &models.Actor{UserID: userLecturer, FullName: "Dr. Fotso", Role: models.RoleLecturer}
}

func hodActor() *models.Actor {
	return &models.Actor{UserID: userHOD, FullName: "Prof. Kamga", Role: models.RoleLecturer, IsHOD: true, HODFieldID: fieldGL}
}

func celluleActor() *models.Actor {
	return &models.Actor{UserID: userCellule, FullName: "M. Tchoua", Role: models.RoleLecturer, CelluleMember: true}
}

func adminActor() *models.Actor {
	return &models.Actor{UserID: "usr-admin", FullName: "Admin", Role: models.RoleAdmin}
}

func submit(t *testing.T, svc *RequestService, reqType string) *models.Request {
	t.Helper()
	request, err := svc.Create(context.Background(), studentActor(), dto.CreateRequestRequest{
		ClassLevelID: "lvl-3",
		FieldID:      fieldGL,
		SubjectID:    subjectAlgo,
		Type:         reqType,
		Description:  "score sheet shows 12, portal shows 9",
		CurrentScore: 9,
	})
	require.NoError(t, err)
	return request
}

func TestCreateRoutesCCToFirstSubjectLecturer(t *testing.T) {
	svc, _, notify := newTestFixture()
	request := submit(t, svc, "cc")

	require.NotNil(t, request.AssignedTo)
	assert.Equal(t, userLecturer, *request.AssignedTo)
	assert.Equal(t, models.StatusSent, request.Status)
	assert.Equal(t, "20G60123", request.Matricule)
	assert.Contains(t, notify.recipients(), userLecturer)
}

func TestCreateRoutesExamToHeadOfDepartment(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "exam")

	require.NotNil(t, request.AssignedTo)
	assert.Equal(t, userHOD, *request.AssignedTo)
}

func TestCreateUnroutableRequestIsKeptUnassigned(t *testing.T) {
	svc, store, _ := newTestFixture()
	request, err := svc.Create(context.Background(), studentActor(), dto.CreateRequestRequest{
		ClassLevelID: "lvl-3",
		FieldID:      "fld-gi",
		SubjectID:    "sub-other",
		Type:         "exam",
		CurrentScore: 5,
	})
	require.NoError(t, err)
	assert.Nil(t, request.AssignedTo)

	stored, err := store.GetByID(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, stored.Status)
}

func TestCreateRejectsNonStudents(t *testing.T) {
	svc, _, _ := newTestFixture()
	_, err := svc.Create(context.Background(), lecturerActor(), dto.CreateRequestRequest{
		SubjectID: subjectAlgo, FieldID: fieldGL, Type: "cc",
	})
	requireAppError(t, err, apperrors.ErrForbidden.Code)
}

func TestCreateRejectsSubjectOutsideField(t *testing.T) {
	svc, _, _ := newTestFixture()
	_, err := svc.Create(context.Background(), studentActor(), dto.CreateRequestRequest{
		ClassLevelID: "lvl-3",
		FieldID:      fieldGL,
		SubjectID:    "sub-other",
		Type:         "cc",
	})
	requireAppError(t, err, apperrors.ErrValidation.Code)
}

func TestAcknowledgeMovesSentToReceived(t *testing.T) {
	svc, store, notify := newTestFixture()
	request := submit(t, svc, "cc")

	updated, err := svc.Acknowledge(context.Background(), lecturerActor(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, updated.Status)

	logs, err := store.ListLogs(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, models.LogActionAcknowledge, logs[1].Action)
	require.NotNil(t, logs[1].FromStatus)
	assert.Equal(t, models.StatusSent, *logs[1].FromStatus)
	assert.Contains(t, notify.recipients(), userStudent)
}

func TestAcknowledgeByUnrelatedLecturerIsForbidden(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")

	outsider := &models.Actor{UserID: "usr-other", Role: models.RoleLecturer}
	_, err := svc.Acknowledge(context.Background(), outsider, request.ID)
	requireAppError(t, err, apperrors.ErrForbidden.Code)
}

func TestHeadOfDepartmentMayActWithoutAssignment(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc") // assigned to the subject lecturer

	updated, err := svc.Acknowledge(context.Background(), hodActor(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReceived, updated.Status)
}

func TestDoubleAcknowledgeIsInvalidTransition(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")

	_, err := svc.Acknowledge(context.Background(), lecturerActor(), request.ID)
	require.NoError(t, err)
	_, err = svc.Acknowledge(context.Background(), lecturerActor(), request.ID)
	requireAppError(t, err, apperrors.ErrInvalidTransition.Code)
}

func TestRejectRequiresReason(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")

	_, err := svc.Decide(context.Background(), lecturerActor(), request.ID, dto.DecisionRequest{Outcome: "reject"})
	requireAppError(t, err, apperrors.ErrValidation.Code)
}

func TestRejectShortcutClosesWithResult(t *testing.T) {
	svc, store, _ := newTestFixture()
	request := submit(t, svc, "cc")

	updated, err := svc.Decide(context.Background(), lecturerActor(), request.ID, dto.DecisionRequest{
		Outcome: "reject", Reason: "duplicate submission",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
	assert.NotNil(t, updated.ClosedAt)

	result, err := store.GetResult(context.Background(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultRejected, result.Disposition)
	require.NotNil(t, result.Reason)
	assert.Equal(t, "duplicate submission", *result.Reason)
}

func TestSendToCelluleNotifiesEveryMember(t *testing.T) {
	svc, _, notify := newTestFixture()
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	ctx := context.Background()

	_, err := svc.Acknowledge(ctx, actor, request.ID)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
	require.NoError(t, err)
	updated, err := svc.SendToCellule(ctx, actor, request.ID)
	require.NoError(t, err)

	assert.Equal(t, models.StatusInCellule, updated.Status)
	assert.Contains(t, notify.recipients(), userCellule)
}

func TestReturnFromCelluleRequiresMembership(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	ctx := context.Background()

	_, err := svc.Acknowledge(ctx, actor, request.ID)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
	require.NoError(t, err)
	_, err = svc.SendToCellule(ctx, actor, request.ID)
	require.NoError(t, err)

	// the assignee may not return it
	_, err = svc.ReturnFromCellule(ctx, actor, request.ID, dto.ReturnRequest{})
	requireAppError(t, err, apperrors.ErrForbidden.Code)

	updated, err := svc.ReturnFromCellule(ctx, celluleActor(), request.ID, dto.ReturnRequest{Note: "score corrected"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReturned, updated.Status)
}

func TestCompleteFromReturnedRecordsAcceptedResult(t *testing.T) {
	svc, store, _ := newTestFixture()
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	ctx := context.Background()
	newScore := 12.5

	_, err := svc.Acknowledge(ctx, actor, request.ID)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
	require.NoError(t, err)
	_, err = svc.SendToCellule(ctx, actor, request.ID)
	require.NoError(t, err)
	_, err = svc.ReturnFromCellule(ctx, celluleActor(), request.ID, dto.ReturnRequest{})
	require.NoError(t, err)

	updated, err := svc.Complete(ctx, actor, request.ID, dto.CompleteRequest{
		Disposition: "accepted", NewScore: &newScore,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)

	result, err := store.GetResult(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ResultAccepted, result.Disposition)
	require.NotNil(t, result.NewScore)
	assert.Equal(t, 12.5, *result.NewScore)

	logs, err := store.ListLogs(ctx, request.ID)
	require.NoError(t, err)
	actions := make([]string, len(logs))
	for i, log := range logs {
		actions[i] = log.Action
	}
	assert.Equal(t, []string{
		models.LogActionCreate,
		models.LogActionAcknowledge,
		models.LogActionDecide,
		models.LogActionSendToCellule,
		models.LogActionReturnFromCellule,
		models.LogActionComplete,
	}, actions)
}

func TestCompleteDirectlyFromApprovedSkipsTheCell(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	ctx := context.Background()

	_, err := svc.Acknowledge(ctx, actor, request.ID)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
	require.NoError(t, err)

	updated, err := svc.Complete(ctx, actor, request.ID, dto.CompleteRequest{
		Disposition: "rejected", Reason: "no discrepancy found",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)
}

func TestCompleteBeforeApprovalIsInvalidTransition(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")

	_, err := svc.Complete(context.Background(), lecturerActor(), request.ID, dto.CompleteRequest{Disposition: "accepted"})
	requireAppError(t, err, apperrors.ErrInvalidTransition.Code)
}

func TestCompleteRejectedRequiresReason(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	ctx := context.Background()

	_, err := svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
	require.NoError(t, err)
	_, err = svc.Complete(ctx, actor, request.ID, dto.CompleteRequest{Disposition: "rejected"})
	requireAppError(t, err, apperrors.ErrValidation.Code)
}

func TestUpdateContentForbiddenAfterAcknowledgement(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")
	ctx := context.Background()

	description := "updated description"
	_, err := svc.UpdateContent(ctx, studentActor(), request.ID, dto.UpdateRequestRequest{Description: &description})
	require.NoError(t, err)

	_, err = svc.Acknowledge(ctx, lecturerActor(), request.ID)
	require.NoError(t, err)

	_, err = svc.UpdateContent(ctx, studentActor(), request.ID, dto.UpdateRequestRequest{Description: &description})
	requireAppError(t, err, apperrors.ErrForbidden.Code)
}

func TestDeleteOnlyWhileSent(t *testing.T) {
	svc, _, _ := newTestFixture()
	ctx := context.Background()

	request := submit(t, svc, "cc")
	require.NoError(t, svc.Delete(ctx, studentActor(), request.ID))

	request = submit(t, svc, "cc")
	_, err := svc.Acknowledge(ctx, lecturerActor(), request.ID)
	require.NoError(t, err)
	err = svc.Delete(ctx, studentActor(), request.ID)
	requireAppError(t, err, apperrors.ErrForbidden.Code)
}

func TestStudentsOnlySeeTheirOwnRequests(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")

	otherStudent := &models.Actor{UserID: "usr-x", Role: models.RoleStudent, StudentID: "stu-x"}
	_, err := svc.Get(context.Background(), otherStudent, request.ID)
	requireAppError(t, err, apperrors.ErrForbidden.Code)

	got, err := svc.Get(context.Background(), studentActor(), request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, got.ID)
}

func TestListScopesLecturerToAssignments(t *testing.T) {
	svc, _, _ := newTestFixture()
	submit(t, svc, "cc")   // assigned to lecturer
	submit(t, svc, "exam") // assigned to HOD

	requests, err := svc.List(context.Background(), lecturerActor(), models.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, userLecturer, *requests[0].AssignedTo)

	all, err := svc.List(context.Background(), adminActor(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListScopesCelluleMemberToCellQueue(t *testing.T) {
	svc, _, _ := newTestFixture()
	submit(t, svc, "cc")
	ctx := context.Background()

	// a fresh submission is outside the cell queue whatever the filter says
	leaked, err := svc.List(ctx, celluleActor(), models.RequestFilter{
		Status: []models.RequestStatus{models.StatusSent},
	})
	require.NoError(t, err)
	assert.Empty(t, leaked)

	queue, err := svc.List(ctx, celluleActor(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Empty(t, queue)

	// move a second request into the cell and list again
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	_, err = svc.Acknowledge(ctx, actor, request.ID)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
	require.NoError(t, err)
	_, err = svc.SendToCellule(ctx, actor, request.ID)
	require.NoError(t, err)

	queue, err = svc.List(ctx, celluleActor(), models.RequestFilter{})
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, models.StatusInCellule, queue[0].Status)

	// a mixed filter keeps only the cell statuses
	mixed, err := svc.List(ctx, celluleActor(), models.RequestFilter{
		Status: []models.RequestStatus{models.StatusSent, models.StatusInCellule},
	})
	require.NoError(t, err)
	require.Len(t, mixed, 1)
	assert.Equal(t, models.StatusInCellule, mixed[0].Status)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")
	actor := lecturerActor()
	ctx := context.Background()

	_, err := svc.Acknowledge(ctx, actor, request.ID)
	require.NoError(t, err)

	start := make(chan struct{})
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := svc.Decide(ctx, actor, request.ID, dto.DecisionRequest{Outcome: "approve"})
			errs <- err
		}()
	}
	close(start)
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperrors.ErrInvalidTransition.Code, apperrors.FromError(err).Code)
		conflicted++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	got, err := svc.Get(ctx, actor, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)
}

func TestUpdateContentRecordsSelfLoopLedgerEntry(t *testing.T) {
	svc, store, _ := newTestFixture()
	request := submit(t, svc, "cc")

	description := "portal shows 9, signed sheet shows 12"
	_, err := svc.UpdateContent(context.Background(), studentActor(), request.ID,
		dto.UpdateRequestRequest{Description: &description})
	require.NoError(t, err)

	logs, err := store.ListLogs(context.Background(), request.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	entry := logs[1]
	assert.Equal(t, models.LogActionUpdate, entry.Action)
	require.NotNil(t, entry.FromStatus)
	assert.Equal(t, models.StatusSent, *entry.FromStatus)
	assert.Equal(t, models.StatusSent, entry.ToStatus)
}

func TestExportCSVIsAdminOnly(t *testing.T) {
	svc, _, _ := newTestFixture()
	submit(t, svc, "cc")

	_, err := svc.ExportCSV(context.Background(), lecturerActor(), models.RequestFilter{})
	requireAppError(t, err, apperrors.ErrForbidden.Code)

	payload, err := svc.ExportCSV(context.Background(), adminActor(), models.RequestFilter{})
	require.NoError(t, err)
	assert.Contains(t, string(payload), "20G60123")
}

func TestPrintSummaryRendersPDF(t *testing.T) {
	svc, _, _ := newTestFixture()
	request := submit(t, svc, "cc")

	payload, err := svc.PrintSummary(context.Background(), studentActor(), request.ID)
	require.NoError(t, err)
	assert.True(t, len(payload) > 0)
	assert.Equal(t, "%PDF", string(payload[:4]))
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr := apperrors.FromError(err)
	assert.Equal(t, code, appErr.Code)
}
