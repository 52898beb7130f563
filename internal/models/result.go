package models

import "time"

// ResultDisposition is the terminal outcome recorded for a request.
type ResultDisposition string

const (
	ResultAccepted ResultDisposition = "accepted"
	ResultRejected ResultDisposition = "rejected"
)

// RequestResult is the one-to-one terminal record of a request. Created
// exactly once, at the transition that moves the request to done.
type RequestResult struct {
	ID          string            `db:"id" json:"id"`
	RequestID   string            `db:"request_id" json:"request_id"`
	Disposition ResultDisposition `db:"disposition" json:"disposition"`
	NewScore    *float64          `db:"new_score" json:"new_score,omitempty"`
	Reason      *string           `db:"reason" json:"reason,omitempty"`
	CreatedBy   *string           `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time         `db:"created_at" json:"created_at"`
}
