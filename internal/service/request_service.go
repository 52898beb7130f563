package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/dto"
	"github.com/noah-isme/grc-api/internal/models"
	"github.com/noah-isme/grc-api/internal/repository"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/export"
)

// requestStore is the persistence surface the workflow needs.
type requestStore interface {
	Create(ctx context.Context, request *models.Request, log *models.RequestLog) error
	GetByID(ctx context.Context, id string) (*models.Request, error)
	List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error)
	Transition(ctx context.Context, params repository.TransitionParams) error
	UpdateContent(ctx context.Context, params repository.UpdateContentParams) error
	UpdateScore(ctx context.Context, id string, score float64, log models.RequestLog) error
	Delete(ctx context.Context, id string) error
	ListLogs(ctx context.Context, requestID string) ([]models.RequestLog, error)
	GetResult(ctx context.Context, requestID string) (*models.RequestResult, error)
}

// referenceReader resolves routing targets and snapshot data.
type referenceReader interface {
	GetSubject(ctx context.Context, id string) (*models.Subject, error)
	LecturersBySubject(ctx context.Context, subjectID string) ([]models.Lecturer, error)
	HeadOfField(ctx context.Context, fieldID string) (*models.Lecturer, error)
	CelluleMemberIDs(ctx context.Context) ([]string, error)
	GetStudentByUserID(ctx context.Context, userID string) (*models.Student, error)
	StudentUserID(ctx context.Context, studentID string) (string, error)
}

// notifier delivers best-effort in-app notifications. Implementations must
// never block or fail the calling workflow.
type notifier interface {
	Notify(userID, title, body, link string)
}

// transitionObserver counts applied workflow transitions.
type transitionObserver interface {
	ObserveTransition(action string)
}

// RequestService drives the grade contestation workflow: intake, routing,
// the status state machine, the audit ledger and the terminal result.
type RequestService struct {
	store   requestStore
	refs    referenceReader
	notify  notifier
	gate    requestGate
	metrics transitionObserver
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// RequestServiceOption customises service construction.
type RequestServiceOption func(*RequestService)

// WithTransitionObserver wires transition metrics.
func WithTransitionObserver(observer transitionObserver) RequestServiceOption {
	return func(s *RequestService) { s.metrics = observer }
}

// WithExporters wires the CSV and PDF renderers.
func WithExporters(csv *export.CSVExporter, pdf *export.PDFExporter) RequestServiceOption {
	return func(s *RequestService) {
		s.csv = csv
		s.pdf = pdf
	}
}

// NewRequestService constructs the workflow service.
func NewRequestService(store requestStore, refs referenceReader, notify notifier, logger *zap.Logger, opts ...RequestServiceOption) *RequestService {
	s := &RequestService{
		store:  store,
		refs:   refs,
		notify: notify,
		logger: logger,
		csv:    export.NewCSVExporter(),
		pdf:    export.NewPDFExporter(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create submits a new contestation. The student identity (matricule, name)
// and academic coordinates are snapshotted onto the request; routing picks
// the initial assignee by request type. A request no lecturer can be found
// for is still accepted and left unassigned for an admin to dispatch.
func (s *RequestService) Create(ctx context.Context, actor *models.Actor, input dto.CreateRequestRequest) (*models.Request, error) {
	if actor.Role != models.RoleStudent {
		return nil, apperrors.Clone(apperrors.ErrForbidden, "only students submit contestation requests")
	}

	student, err := s.refs.GetStudentByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrForbidden, "no student profile for this account")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load student profile")
	}

	subject, err := s.refs.GetSubject(ctx, input.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrValidation, "unknown subject")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load subject")
	}
	if subject.FieldID != input.FieldID {
		return nil, apperrors.Clone(apperrors.ErrValidation, "subject does not belong to the selected field")
	}

	request := &models.Request{
		StudentID:    student.ID,
		Matricule:    student.Matricule,
		StudentName:  student.FullName,
		ClassLevelID: input.ClassLevelID,
		FieldID:      input.FieldID,
		AxisID:       input.AxisID,
		SubjectID:    input.SubjectID,
		Type:         models.RequestType(input.Type),
		Description:  input.Description,
		CurrentScore: input.CurrentScore,
		Status:       models.StatusSent,
		SubmittedAt:  time.Now().UTC(),
	}

	assignee := s.route(ctx, request)
	request.AssignedTo = assignee

	log := &models.RequestLog{
		Action:    models.LogActionCreate,
		ActorID:   &actor.UserID,
		ActorName: student.FullName,
	}
	if err := s.store.Create(ctx, request, log); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to create request")
	}
	s.observe(models.LogActionCreate)

	if assignee != nil {
		s.notify.Notify(*assignee, "New contestation request",
			fmt.Sprintf("%s contests a %s score in %s", student.FullName, request.Type, subject.Name),
			"/requests/"+request.ID)
	}
	return s.reload(ctx, request)
}

// route resolves the initial assignee: CC requests go to the first lecturer
// of the subject, exam requests to the head of department of the field.
func (s *RequestService) route(ctx context.Context, request *models.Request) *string {
	switch request.Type {
	case models.RequestTypeCC:
		lecturers, err := s.refs.LecturersBySubject(ctx, request.SubjectID)
		if err != nil {
			s.logger.Warn("routing lookup failed", zap.String("subject_id", request.SubjectID), zap.Error(err))
			return nil
		}
		if len(lecturers) == 0 {
			s.logger.Warn("request unroutable, no lecturer for subject", zap.String("subject_id", request.SubjectID))
			return nil
		}
		return &lecturers[0].UserID
	case models.RequestTypeExam:
		hod, err := s.refs.HeadOfField(ctx, request.FieldID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("request unroutable, no head of department", zap.String("field_id", request.FieldID))
			} else {
				s.logger.Warn("routing lookup failed", zap.String("field_id", request.FieldID), zap.Error(err))
			}
			return nil
		}
		return &hod.UserID
	default:
		return nil
	}
}

// Acknowledge moves sent to received.
func (s *RequestService) Acknowledge(ctx context.Context, actor *models.Actor, id string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canHandle(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	if err := s.transition(ctx, actor, request, models.StatusReceived, models.LogActionAcknowledge, "", nil); err != nil {
		return nil, err
	}
	s.notifyStudent(ctx, request, "Request received", "Your contestation request was acknowledged.")
	return s.reload(ctx, request)
}

// Decide records approve or reject. Approval moves the request to approved;
// rejection is the shortcut straight to done, with a mandatory reason and a
// rejected result written in the same transaction.
func (s *RequestService) Decide(ctx context.Context, actor *models.Actor, id string, input dto.DecisionRequest) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canHandle(actor, request) {
		return nil, apperrors.ErrForbidden
	}

	switch input.Outcome {
	case "approve":
		if err := s.transition(ctx, actor, request, models.StatusApproved, models.LogActionDecide, input.Reason, nil); err != nil {
			return nil, err
		}
		s.notifyStudent(ctx, request, "Request approved", "Your contestation was approved and will be processed.")
	case "reject":
		if input.Reason == "" {
			return nil, apperrors.Clone(apperrors.ErrValidation, "a reason is required to reject a request")
		}
		reason := input.Reason
		result := &models.RequestResult{
			Disposition: models.ResultRejected,
			Reason:      &reason,
			CreatedBy:   &actor.UserID,
		}
		if err := s.transition(ctx, actor, request, models.StatusDone, models.LogActionDecide, input.Reason, result); err != nil {
			return nil, err
		}
		s.notifyStudent(ctx, request, "Request rejected", "Your contestation was rejected: "+reason)
	default:
		return nil, apperrors.Clone(apperrors.ErrValidation, "outcome must be approve or reject")
	}
	return s.reload(ctx, request)
}

// SendToCellule forwards an approved request to the IT cell for score
// processing and notifies every cell member.
func (s *RequestService) SendToCellule(ctx context.Context, actor *models.Actor, id string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canHandle(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	if err := s.transition(ctx, actor, request, models.StatusInCellule, models.LogActionSendToCellule, "", nil); err != nil {
		return nil, err
	}

	members, err := s.refs.CelluleMemberIDs(ctx)
	if err != nil {
		s.logger.Warn("cellule member lookup failed", zap.Error(err))
	}
	for _, userID := range members {
		s.notify.Notify(userID, "Request forwarded to the IT cell",
			fmt.Sprintf("Request of %s (%s) awaits processing", request.StudentName, request.Matricule),
			"/requests/"+request.ID)
	}
	s.notifyStudent(ctx, request, "Request in processing", "Your contestation was forwarded to the IT cell.")
	return s.reload(ctx, request)
}

// ReturnFromCellule hands a processed request back to its assignee.
func (s *RequestService) ReturnFromCellule(ctx context.Context, actor *models.Actor, id string, input dto.ReturnRequest) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canReturnFromCellule(actor) {
		return nil, apperrors.ErrForbidden
	}
	if err := s.transition(ctx, actor, request, models.StatusReturned, models.LogActionReturnFromCellule, input.Note, nil); err != nil {
		return nil, err
	}
	if request.AssignedTo != nil {
		s.notify.Notify(*request.AssignedTo, "Request returned by the IT cell",
			fmt.Sprintf("Request of %s (%s) is back for completion", request.StudentName, request.Matricule),
			"/requests/"+request.ID)
	}
	return s.reload(ctx, request)
}

// Complete closes the request with its final disposition. Allowed from
// returned, or directly from approved when no cell processing was needed.
func (s *RequestService) Complete(ctx context.Context, actor *models.Actor, id string, input dto.CompleteRequest) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canHandle(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	if request.Status != models.StatusReturned && request.Status != models.StatusApproved {
		return nil, apperrors.ErrInvalidTransition
	}

	disposition := models.ResultDisposition(input.Disposition)
	if disposition == models.ResultRejected && input.Reason == "" {
		return nil, apperrors.Clone(apperrors.ErrValidation, "a reason is required to close a request as rejected")
	}

	result := &models.RequestResult{
		Disposition: disposition,
		NewScore:    input.NewScore,
		CreatedBy:   &actor.UserID,
	}
	if input.Reason != "" {
		reason := input.Reason
		result.Reason = &reason
	}
	if err := s.transition(ctx, actor, request, models.StatusDone, models.LogActionComplete, input.Reason, result); err != nil {
		return nil, err
	}

	body := "Your contestation was closed: " + string(disposition) + "."
	if input.NewScore != nil {
		body = fmt.Sprintf("Your contestation was accepted. New score: %.2f/20.", *input.NewScore)
	}
	s.notifyStudent(ctx, request, "Request closed", body)
	return s.reload(ctx, request)
}

// Get returns a single request after a visibility check.
func (s *RequestService) Get(ctx context.Context, actor *models.Actor, id string) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canView(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	return request, nil
}

// Result returns the terminal result of a closed request.
func (s *RequestService) Result(ctx context.Context, actor *models.Actor, id string) (*models.RequestResult, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canView(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	result, err := s.store.GetResult(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "request has no result yet")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load result")
	}
	return result, nil
}

// List returns requests visible to the actor.
func (s *RequestService) List(ctx context.Context, actor *models.Actor, filter models.RequestFilter) ([]models.Request, error) {
	requests, err := s.store.List(ctx, s.gate.scope(actor, filter))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list requests")
	}
	return requests, nil
}

// Logs returns the audit ledger of a request.
func (s *RequestService) Logs(ctx context.Context, actor *models.Actor, id string) ([]models.RequestLog, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canView(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	logs, err := s.store.ListLogs(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list request logs")
	}
	return logs, nil
}

// UpdateContent edits an unacknowledged request.
func (s *RequestService) UpdateContent(ctx context.Context, actor *models.Actor, id string, input dto.UpdateRequestRequest) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canEditContent(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	if !request.CanEdit() {
		return nil, apperrors.Clone(apperrors.ErrForbidden, "request can no longer be edited")
	}

	if input.SubjectID != nil {
		subject, err := s.refs.GetSubject(ctx, *input.SubjectID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, apperrors.Clone(apperrors.ErrValidation, "unknown subject")
			}
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load subject")
		}
		if subject.FieldID != request.FieldID {
			return nil, apperrors.Clone(apperrors.ErrValidation, "subject does not belong to the request's field")
		}
	}

	from := request.Status
	err = s.store.UpdateContent(ctx, repository.UpdateContentParams{
		ID:           id,
		SubjectID:    input.SubjectID,
		Description:  input.Description,
		CurrentScore: input.CurrentScore,
		Log: models.RequestLog{
			Action:     models.LogActionUpdate,
			FromStatus: &from,
			ToStatus:   from,
			ActorID:    &actor.UserID,
			ActorName:  actor.FullName,
		},
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Clone(apperrors.ErrForbidden, "request can no longer be edited")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to update request")
	}
	s.observe(models.LogActionUpdate)
	return s.reload(ctx, request)
}

// UpdateScore corrects the recorded current score on a live request.
func (s *RequestService) UpdateScore(ctx context.Context, actor *models.Actor, id string, input dto.UpdateScoreRequest) (*models.Request, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canHandle(actor, request) {
		return nil, apperrors.ErrForbidden
	}

	from := request.Status
	err = s.store.UpdateScore(ctx, id, input.CurrentScore, models.RequestLog{
		Action:     models.LogActionUpdateScore,
		FromStatus: &from,
		ToStatus:   from,
		ActorID:    &actor.UserID,
		ActorName:  actor.FullName,
		Note:       fmt.Sprintf("current score set to %.2f", input.CurrentScore),
	})
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.Clone(apperrors.ErrInvalidTransition, "closed requests cannot be corrected")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to update score")
	}
	s.observe(models.LogActionUpdateScore)
	return s.reload(ctx, request)
}

// Delete removes an unacknowledged request.
func (s *RequestService) Delete(ctx context.Context, actor *models.Actor, id string) error {
	request, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !s.gate.canEditContent(actor, request) {
		return apperrors.ErrForbidden
	}
	if !request.CanEdit() {
		return apperrors.Clone(apperrors.ErrForbidden, "request can no longer be deleted")
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.Clone(apperrors.ErrForbidden, "request can no longer be deleted")
		}
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to delete request")
	}
	return nil
}

// ExportCSV renders the admin CSV export of requests matching the filter.
func (s *RequestService) ExportCSV(ctx context.Context, actor *models.Actor, filter models.RequestFilter) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	if filter.Limit <= 0 {
		filter.Limit = 200
	}
	requests, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list requests")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "Matricule", "Student", "Level", "Field", "Subject", "Type", "Score", "Status", "Assignee", "Submitted"},
	}
	for _, req := range requests {
		assignee := ""
		if req.AssignedToName != nil {
			assignee = *req.AssignedToName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":        req.ID,
			"Matricule": req.Matricule,
			"Student":   req.StudentName,
			"Level":     req.ClassLevelName,
			"Field":     req.FieldCode,
			"Subject":   req.SubjectName,
			"Type":      string(req.Type),
			"Score":     fmt.Sprintf("%.2f", req.CurrentScore),
			"Status":    req.Status.Label(),
			"Assignee":  assignee,
			"Submitted": req.SubmittedAt.Format(time.RFC3339),
		})
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to render export")
	}
	return payload, nil
}

// PrintSummary renders the printable PDF sheet of a request with its ledger.
func (s *RequestService) PrintSummary(ctx context.Context, actor *models.Actor, id string) ([]byte, error) {
	request, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.gate.canView(actor, request) {
		return nil, apperrors.ErrForbidden
	}
	logs, err := s.store.ListLogs(ctx, id)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list request logs")
	}

	assignee := "unassigned"
	if request.AssignedToName != nil {
		assignee = *request.AssignedToName
	}
	fields := []export.SummaryField{
		{Label: "Request", Value: request.ID},
		{Label: "Student", Value: fmt.Sprintf("%s (%s)", request.StudentName, request.Matricule)},
		{Label: "Level / Field", Value: fmt.Sprintf("%s / %s", request.ClassLevelName, request.FieldCode)},
		{Label: "Subject", Value: request.SubjectName},
		{Label: "Type", Value: string(request.Type)},
		{Label: "Contested score", Value: fmt.Sprintf("%.2f/20", request.CurrentScore)},
		{Label: "Status", Value: request.Status.Label()},
		{Label: "Assignee", Value: assignee},
		{Label: "Submitted", Value: request.SubmittedAt.Format("2006-01-02 15:04")},
		{Label: "Description", Value: request.Description},
	}

	history := export.Dataset{Headers: []string{"Date", "Action", "From", "To", "Actor", "Note"}}
	for _, entry := range logs {
		from := ""
		if entry.FromStatus != nil {
			from = entry.FromStatus.Label()
		}
		history.Rows = append(history.Rows, map[string]string{
			"Date":   entry.Timestamp.Format("2006-01-02 15:04"),
			"Action": entry.Action,
			"From":   from,
			"To":     entry.ToStatus.Label(),
			"Actor":  entry.ActorName,
			"Note":   entry.Note,
		})
	}

	payload, err := s.pdf.RenderSummary("Grade contestation request", fields, history)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to render summary")
	}
	return payload, nil
}

// transition applies one workflow edge: graph check, then the guarded update
// with its ledger entry and optional result. A concurrent status change
// surfaces as an invalid transition, same as a wrong starting status.
func (s *RequestService) transition(ctx context.Context, actor *models.Actor, request *models.Request, to models.RequestStatus, action, note string, result *models.RequestResult) error {
	if !models.CanTransition(request.Status, to) {
		return apperrors.ErrInvalidTransition
	}

	from := request.Status
	params := repository.TransitionParams{
		ID:   request.ID,
		From: []models.RequestStatus{from},
		To:   to,
		Log: models.RequestLog{
			Action:     action,
			FromStatus: &from,
			ActorID:    &actor.UserID,
			ActorName:  actor.FullName,
			Note:       note,
		},
		Result: result,
	}
	if to == models.StatusDone {
		now := time.Now().UTC()
		params.ClosedAt = &now
	}

	if err := s.store.Transition(ctx, params); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return apperrors.ErrInvalidTransition
		}
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to apply transition")
	}
	s.observe(action)
	return nil
}

// notifyStudent targets the owning student's user account.
func (s *RequestService) notifyStudent(ctx context.Context, request *models.Request, title, body string) {
	userID, err := s.refs.StudentUserID(ctx, request.StudentID)
	if err != nil {
		s.logger.Warn("student notification skipped", zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	s.notify.Notify(userID, title, body, "/requests/"+request.ID)
}

func (s *RequestService) load(ctx context.Context, id string) (*models.Request, error) {
	request, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Clone(apperrors.ErrNotFound, "request not found")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load request")
	}
	return request, nil
}

func (s *RequestService) reload(ctx context.Context, request *models.Request) (*models.Request, error) {
	fresh, err := s.store.GetByID(ctx, request.ID)
	if err != nil {
		// the mutation committed; return the stale copy rather than failing
		s.logger.Warn("request reload failed", zap.String("request_id", request.ID), zap.Error(err))
		return request, nil
	}
	return fresh, nil
}

func (s *RequestService) observe(action string) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(action)
	}
}
