package models

import "time"

// Attachment references a stored file supporting a request.
type Attachment struct {
	ID         string    `db:"id" json:"id"`
	RequestID  string    `db:"request_id" json:"request_id"`
	UploadedBy *string   `db:"uploaded_by" json:"uploaded_by,omitempty"`
	FilePath   string    `db:"file_path" json:"-"`
	Filename   string    `db:"filename" json:"filename"`
	MimeType   string    `db:"mime_type" json:"mime_type"`
	Size       int64     `db:"size" json:"size"`
	UploadedAt time.Time `db:"uploaded_at" json:"uploaded_at"`

	// URL carries a signed, expiring download link; never persisted.
	URL string `db:"-" json:"url,omitempty"`
}
