package models

import "time"

// Log action tags, one per state-changing operation.
const (
	LogActionCreate            = "create"
	LogActionAcknowledge       = "acknowledge"
	LogActionDecide            = "decide"
	LogActionSendToCellule     = "send_to_cellule"
	LogActionReturnFromCellule = "return_from_cellule"
	LogActionComplete          = "complete"
	LogActionUpdate            = "update"
	LogActionUpdateScore       = "update_score"
	LogActionUploadAttachment  = "upload_attachment"
)

// RequestLog is one entry of a request's append-only audit ledger. Entries are
// never updated or deleted; the ordered sequence of (from,to) pairs replays the
// request's walk through the workflow graph.
type RequestLog struct {
	ID         string         `db:"id" json:"id"`
	RequestID  string         `db:"request_id" json:"request_id"`
	Action     string         `db:"action" json:"action"`
	FromStatus *RequestStatus `db:"from_status" json:"from_status,omitempty"`
	ToStatus   RequestStatus  `db:"to_status" json:"to_status"`
	ActorID    *string        `db:"actor_id" json:"actor_id,omitempty"`
	ActorName  string         `db:"actor_name" json:"actor_name,omitempty"`
	Timestamp  time.Time      `db:"timestamp" json:"timestamp"`
	Note       string         `db:"note" json:"note,omitempty"`
}
