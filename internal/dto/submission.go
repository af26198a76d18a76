package dto

import "github.com/noah-isme/spot-review-api/internal/models"

// CreateLocationRequest contains the form fields submitted alongside a location image.
type CreateLocationRequest struct {
	Name        string `form:"name" json:"name" validate:"required,max=200"`
	Description string `form:"description" json:"description" validate:"required,max=5000"`
	Link        string `form:"link" json:"link" validate:"required,url,max=2048"`
}

// ApplicantRequest carries personal fields for profiles and join requests.
type ApplicantRequest struct {
	FullName string `form:"fullName" json:"fullName" validate:"required,max=200"`
	Age      int    `form:"age" json:"age" validate:"required,min=18,max=100"`
	Email    string `form:"email" json:"email" validate:"required,email,max=320"`
	Phone    string `form:"phone" json:"phone" validate:"required,max=40"`
	Address  string `form:"address" json:"address" validate:"required,max=500"`
}

// ApproveRequest is the optional body of an approve call.
type ApproveRequest struct {
	ProcessedBy string `json:"processedBy"`
}

// RejectRequest is the optional body of a reject call.
type RejectRequest struct {
	ProcessedBy string `json:"processedBy"`
	Reason      string `json:"reason"`
}

// SubmissionQuery mirrors supported listing filters.
type SubmissionQuery struct {
	Status models.SubmissionStatus
	Offset int
	Limit  int
}

// VerifySecretRequest is the payload of the shared-secret check.
type VerifySecretRequest struct {
	Token string `json:"token"`
}

// VerifySecretResponse reports the outcome of the shared-secret check.
type VerifySecretResponse struct {
	Valid bool `json:"valid"`
}

// RecordIntentRequest describes a notification the caller would like sent.
type RecordIntentRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Subject   string `json:"subject" validate:"required,max=200"`
	RecordID  string `json:"recordId" validate:"omitempty,uuid"`
}

// RecordIntentResponse acknowledges a recorded intent.
type RecordIntentResponse struct {
	Recorded bool `json:"recorded"`
}

// ExportQuery selects the records and format of an admin export.
type ExportQuery struct {
	Format string
	Status models.SubmissionStatus
}
