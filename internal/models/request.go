package models

import "time"

// RequestType enumerates the contested assessment kinds.
type RequestType string

const (
	RequestTypeCC   RequestType = "cc"
	RequestTypeExam RequestType = "exam"
)

// RequestStatus captures the workflow states of a contestation request.
type RequestStatus string

const (
	StatusSent       RequestStatus = "sent"
	StatusReceived   RequestStatus = "received"
	StatusApproved   RequestStatus = "approved"
	StatusInCellule  RequestStatus = "in_cellule"
	StatusReturned   RequestStatus = "returned"
	StatusDone       RequestStatus = "done"
)

// statusLabels maps internal states to user-facing labels. Kept apart from the
// enum so presentation wording can change without touching stored values.
var statusLabels = map[RequestStatus]string{
	StatusSent:      "Sent",
	StatusReceived:  "Received",
	StatusApproved:  "Approved",
	StatusInCellule: "In IT cell",
	StatusReturned:  "Returned",
	StatusDone:      "Done",
}

// Label returns the display label for a status.
func (s RequestStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Terminal reports whether no further transition may leave this status.
func (s RequestStatus) Terminal() bool {
	return s == StatusDone
}

// transitionGraph holds the fixed set of legal status edges. The rejection
// shortcut jumps straight to done from sent or received.
var transitionGraph = map[RequestStatus][]RequestStatus{
	StatusSent:      {StatusReceived, StatusApproved, StatusDone},
	StatusReceived:  {StatusApproved, StatusDone},
	StatusApproved:  {StatusInCellule, StatusDone},
	StatusInCellule: {StatusReturned},
	StatusReturned:  {StatusDone},
}

// CanTransition reports whether from→to is an edge of the workflow graph.
func CanTransition(from, to RequestStatus) bool {
	for _, next := range transitionGraph[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Request is a student's grade contestation tracked through its lifecycle.
// Matricule, student name and academic coordinates are snapshotted at
// submission time and never follow later profile edits.
type Request struct {
	ID           string        `db:"id" json:"id"`
	StudentID    string        `db:"student_id" json:"student_id"`
	Matricule    string        `db:"matricule" json:"matricule"`
	StudentName  string        `db:"student_name" json:"student_name"`
	ClassLevelID string        `db:"class_level_id" json:"class_level_id"`
	FieldID      string        `db:"field_id" json:"field_id"`
	AxisID       *string       `db:"axis_id" json:"axis_id,omitempty"`
	SubjectID    string        `db:"subject_id" json:"subject_id"`
	Type         RequestType   `db:"type" json:"type"`
	Description  string        `db:"description" json:"description"`
	CurrentScore float64       `db:"current_score" json:"current_score"`
	AssignedTo   *string       `db:"assigned_to" json:"assigned_to,omitempty"`
	Status       RequestStatus `db:"status" json:"status"`
	SubmittedAt  time.Time     `db:"submitted_at" json:"submitted_at"`
	ClosedAt     *time.Time    `db:"closed_at" json:"closed_at,omitempty"`

	// Joined read-only columns for list/detail responses.
	SubjectName    string  `db:"subject_name" json:"subject_name,omitempty"`
	FieldCode      string  `db:"field_code" json:"field_code,omitempty"`
	ClassLevelName string  `db:"class_level_name" json:"class_level_name,omitempty"`
	AssignedToName *string `db:"assigned_to_name" json:"assigned_to_name,omitempty"`
}

// CanEdit reports whether the requester may still change content, delete the
// request or add attachments.
func (r *Request) CanEdit() bool {
	return r != nil && r.Status == StatusSent
}

// StatusLabel exposes the presentation label of the current status.
func (r *Request) StatusLabel() string {
	return r.Status.Label()
}

// RequestFilter constrains listing queries.
type RequestFilter struct {
	Status       []RequestStatus
	Type         RequestType
	SubjectID    string
	ClassLevelID string
	FieldID      string
	StudentID    string
	AssignedTo   string
	Limit        int
	Offset       int
}
