package dto

// CreateRequestRequest is the intake payload submitted by a student.
type CreateRequestRequest struct {
	ClassLevelID string  `json:"class_level_id" binding:"required"`
	FieldID      string  `json:"field_id" binding:"required"`
	AxisID       *string `json:"axis_id,omitempty"`
	SubjectID    string  `json:"subject_id" binding:"required"`
	Type         string  `json:"type" binding:"required,oneof=cc exam"`
	Description  string  `json:"description"`
	CurrentScore float64 `json:"current_score" binding:"min=0,max=20"`
}

// UpdateRequestRequest edits content while the request is still editable.
type UpdateRequestRequest struct {
	SubjectID    *string  `json:"subject_id,omitempty"`
	Description  *string  `json:"description,omitempty"`
	CurrentScore *float64 `json:"current_score,omitempty" binding:"omitempty,min=0,max=20"`
}

// UpdateScoreRequest corrects the recorded current score (staff only).
type UpdateScoreRequest struct {
	CurrentScore float64 `json:"current_score" binding:"min=0,max=20"`
}

// DecisionRequest carries the approve/reject decision.
type DecisionRequest struct {
	Outcome string `json:"outcome" binding:"required,oneof=approve reject"`
	Reason  string `json:"reason"`
}

// ReturnRequest carries the optional note on return from the IT cell.
type ReturnRequest struct {
	Note string `json:"note"`
}

// CompleteRequest closes a request with its final disposition.
type CompleteRequest struct {
	Disposition string   `json:"disposition" binding:"required,oneof=accepted rejected"`
	NewScore    *float64 `json:"new_score,omitempty" binding:"omitempty,min=0,max=20"`
	Reason      string   `json:"reason"`
}
