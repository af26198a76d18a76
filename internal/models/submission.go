package models

import "time"

// SubmissionStatus captures the review state of a submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "pending"
	StatusApproved SubmissionStatus = "approved"
	StatusRejected SubmissionStatus = "rejected"
)

const (
	DefaultProcessedBy     = "admin"
	DefaultRejectionReason = "No reason provided"
)

// Valid reports whether s is one of the known statuses.
func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition is allowed from s.
func (s SubmissionStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Image references an ingested blob. The bytes live in the blob store.
type Image struct {
	Path      string `db:"image_path" json:"-"`
	MimeType  string `db:"image_mime_type" json:"imageMimeType"`
	SizeBytes int64  `db:"image_size_bytes" json:"imageSizeBytes"`
}

// Review holds the approval columns shared by every submission table.
type Review struct {
	Status          SubmissionStatus `db:"status" json:"status"`
	SubmittedAt     time.Time        `db:"submitted_at" json:"submittedAt"`
	ProcessedAt     *time.Time       `db:"processed_at" json:"processedAt,omitempty"`
	ProcessedBy     *string          `db:"processed_by" json:"processedBy,omitempty"`
	RejectionReason *string          `db:"rejection_reason" json:"rejectionReason,omitempty"`
}

// StatusView is the reduced projection served to polling clients.
type StatusView struct {
	ID              string           `db:"id" json:"id"`
	Status          SubmissionStatus `db:"status" json:"status"`
	SubmittedAt     time.Time        `db:"submitted_at" json:"submittedAt"`
	ProcessedAt     *time.Time       `db:"processed_at" json:"processedAt,omitempty"`
	RejectionReason *string          `db:"rejection_reason" json:"rejectionReason,omitempty"`
}

// SubmissionFilter constrains listing queries.
type SubmissionFilter struct {
	Status SubmissionStatus
	Limit  int
	Offset int
}

// TransitionParams is the patch applied by a conditional status update.
type TransitionParams struct {
	ID              string
	Status          SubmissionStatus
	ProcessedAt     time.Time
	ProcessedBy     string
	RejectionReason *string
}

// Pagination describes an offset/limit page.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}
