package models

// Applicant is the personal data carried by profiles and join requests.
type Applicant struct {
	FullName string `db:"full_name" json:"fullName"`
	Age      int    `db:"age" json:"age"`
	Email    string `db:"email" json:"email"`
	Phone    string `db:"phone" json:"phone"`
	Address  string `db:"address" json:"address"`
}

// Profile is the single-tier submission: a person applying for listing.
type Profile struct {
	ID string `db:"id" json:"id"`
	Applicant
	Image
	Review
	ImageURL string `db:"-" json:"imageUrl,omitempty"`
}

// StatusView projects the profile onto its status fields.
func (p *Profile) StatusView() *StatusView {
	return &StatusView{
		ID:              p.ID,
		Status:          p.Status,
		SubmittedAt:     p.SubmittedAt,
		ProcessedAt:     p.ProcessedAt,
		RejectionReason: p.RejectionReason,
	}
}
