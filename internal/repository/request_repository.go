package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/grc-api/internal/models"
)

// ErrStaleStatus is returned when a guarded transition matches no row because
// the request status changed underneath the caller.
var ErrStaleStatus = errors.New("request status changed concurrently")

const requestColumns = `r.id, r.student_id, r.matricule, r.student_name, r.class_level_id, r.field_id, r.axis_id,
       r.subject_id, r.type, r.description, r.current_score, r.assigned_to, r.status, r.submitted_at, r.closed_at,
       s.name AS subject_name, f.code AS field_code, cl.name AS class_level_name, u.full_name AS assigned_to_name`

const requestJoins = ` FROM requests r
	JOIN subjects s ON s.id = r.subject_id
	JOIN fields f ON f.id = r.field_id
	JOIN class_levels cl ON cl.id = r.class_level_id
	LEFT JOIN users u ON u.id = r.assigned_to`

// RequestRepository persists contestation requests, their audit ledger and
// their terminal results.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create inserts the request together with its initial audit entry in one
// transaction.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request, log *models.RequestLog) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.Status == "" {
		request.Status = models.StatusSent
	}
	if request.SubmittedAt.IsZero() {
		request.SubmittedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create request: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO requests
	(id, student_id, matricule, student_name, class_level_id, field_id, axis_id, subject_id, type, description, current_score, assigned_to, status, submitted_at, closed_at)
	VALUES (:id, :student_id, :matricule, :student_name, :class_level_id, :field_id, :axis_id, :subject_id, :type, :description, :current_score, :assigned_to, :status, :submitted_at, :closed_at)`
	if _, err := tx.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	log.RequestID = request.ID
	log.ToStatus = request.Status
	if err := insertLog(ctx, tx, log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier with its display joins.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := `SELECT ` + requestColumns + requestJoins + ` WHERE r.id = $1`
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests matching the filter (latest first).
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 8)
	builder.WriteString(`SELECT ` + requestColumns + requestJoins)

	conditions := make([]string, 0, 6)
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("r.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("r.type = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("r.subject_id = $%d", len(args)))
	}
	if filter.ClassLevelID != "" {
		args = append(args, filter.ClassLevelID)
		conditions = append(conditions, fmt.Sprintf("r.class_level_id = $%d", len(args)))
	}
	if filter.FieldID != "" {
		args = append(args, filter.FieldID)
		conditions = append(conditions, fmt.Sprintf("r.field_id = $%d", len(args)))
	}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("r.student_id = $%d", len(args)))
	}
	if filter.AssignedTo != "" {
		args = append(args, filter.AssignedTo)
		conditions = append(conditions, fmt.Sprintf("r.assigned_to = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY r.submitted_at DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// TransitionParams groups a guarded status change with its audit entry and
// optional terminal result.
type TransitionParams struct {
	ID       string
	From     []models.RequestStatus
	To       models.RequestStatus
	ClosedAt *time.Time
	Log      models.RequestLog
	Result   *models.RequestResult
}

// Transition applies a status change atomically: the UPDATE is guarded on the
// expected source statuses so concurrent callers racing from the same
// precondition produce exactly one winner; the audit entry and the optional
// result row commit in the same transaction or not at all.
func (r *RequestRepository) Transition(ctx context.Context, params TransitionParams) error {
	if len(params.From) == 0 {
		return fmt.Errorf("transition requires source statuses")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transition: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	args := make([]interface{}, 0, 4)
	args = append(args, params.To)
	set := "status = $1"
	if params.ClosedAt != nil {
		args = append(args, *params.ClosedAt)
		set += fmt.Sprintf(", closed_at = $%d", len(args))
	}
	args = append(args, params.ID)
	idPos := len(args)
	placeholders := make([]string, len(params.From))
	for i, status := range params.From {
		args = append(args, status)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf("UPDATE requests SET %s WHERE id = $%d AND status IN (%s)",
		set, idPos, strings.Join(placeholders, ","))

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check transition rows: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}

	log := params.Log
	log.RequestID = params.ID
	log.ToStatus = params.To
	if err := insertLog(ctx, tx, &log); err != nil {
		return err
	}

	if params.Result != nil {
		res := params.Result
		if res.ID == "" {
			res.ID = uuid.NewString()
		}
		res.RequestID = params.ID
		if res.CreatedAt.IsZero() {
			res.CreatedAt = time.Now().UTC()
		}
		const resultQuery = `INSERT INTO request_results
		(id, request_id, disposition, new_score, reason, created_by, created_at)
		VALUES (:id, :request_id, :disposition, :new_score, :reason, :created_by, :created_at)`
		if _, err := tx.NamedExecContext(ctx, resultQuery, res); err != nil {
			return fmt.Errorf("create request result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transition: %w", err)
	}
	return nil
}

// UpdateContentParams groups editable columns for pre-acknowledgement edits.
type UpdateContentParams struct {
	ID           string
	SubjectID    *string
	Description  *string
	CurrentScore *float64
	Log          models.RequestLog
}

// UpdateContent edits request content. Guarded on status = sent so an edit
// racing an acknowledgement cannot land after the workflow moved on.
func (r *RequestRepository) UpdateContent(ctx context.Context, params UpdateContentParams) error {
	setParts := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	if params.SubjectID != nil {
		args = append(args, *params.SubjectID)
		setParts = append(setParts, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if params.Description != nil {
		args = append(args, *params.Description)
		setParts = append(setParts, fmt.Sprintf("description = $%d", len(args)))
	}
	if params.CurrentScore != nil {
		args = append(args, *params.CurrentScore)
		setParts = append(setParts, fmt.Sprintf("current_score = $%d", len(args)))
	}
	if len(setParts) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update request: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	args = append(args, params.ID)
	query := fmt.Sprintf("UPDATE requests SET %s WHERE id = $%d AND status = '%s'",
		strings.Join(setParts, ", "), len(args), models.StatusSent)
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update request content: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check update rows: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}

	// content edits are not transitions; the entry records a sent self-loop
	sent := models.StatusSent
	log := params.Log
	log.RequestID = params.ID
	log.FromStatus = &sent
	log.ToStatus = sent
	if err := insertLog(ctx, tx, &log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update request: %w", err)
	}
	return nil
}

// UpdateScore corrects the recorded current score on a live request.
func (r *RequestRepository) UpdateScore(ctx context.Context, id string, score float64, log models.RequestLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update score: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	query := fmt.Sprintf("UPDATE requests SET current_score = $1 WHERE id = $2 AND status <> '%s'", models.StatusDone)
	result, err := tx.ExecContext(ctx, query, score, id)
	if err != nil {
		return fmt.Errorf("update request score: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check score rows: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}

	log.RequestID = id
	if err := insertLog(ctx, tx, &log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update score: %w", err)
	}
	return nil
}

// Delete removes a request while it is still editable. Cascades take the
// ledger and attachments with it.
func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM requests WHERE id = $1 AND status = '%s'", models.StatusSent)
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check delete rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListLogs returns the audit ledger of a request in chronological order.
func (r *RequestRepository) ListLogs(ctx context.Context, requestID string) ([]models.RequestLog, error) {
	const query = `SELECT id, request_id, action, from_status, to_status, actor_id, actor_name, timestamp, note
	FROM request_logs WHERE request_id = $1 ORDER BY timestamp ASC`
	var logs []models.RequestLog
	if err := r.db.SelectContext(ctx, &logs, query, requestID); err != nil {
		return nil, fmt.Errorf("list request logs: %w", err)
	}
	return logs, nil
}

// GetResult fetches the terminal result of a request, if any.
func (r *RequestRepository) GetResult(ctx context.Context, requestID string) (*models.RequestResult, error) {
	const query = `SELECT id, request_id, disposition, new_score, reason, created_by, created_at
	FROM request_results WHERE request_id = $1`
	var result models.RequestResult
	if err := r.db.GetContext(ctx, &result, query, requestID); err != nil {
		return nil, err
	}
	return &result, nil
}

func insertLog(ctx context.Context, ext sqlx.ExtContext, log *models.RequestLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now().UTC()
	}
	const query = `INSERT INTO request_logs
	(id, request_id, action, from_status, to_status, actor_id, actor_name, timestamp, note)
	VALUES (:id, :request_id, :action, :from_status, :to_status, :actor_id, :actor_name, :timestamp, :note)`
	if _, err := sqlx.NamedExecContext(ctx, ext, query, log); err != nil {
		return fmt.Errorf("append request log: %w", err)
	}
	return nil
}
