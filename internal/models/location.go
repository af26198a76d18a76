package models

// Location is an applicant-submitted place awaiting or having received review.
type Location struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	Link        string `db:"link" json:"link"`
	Image
	Review
	ImageURL string `db:"-" json:"imageUrl,omitempty"`
}

// StatusView projects the location onto its status fields.
func (l *Location) StatusView() *StatusView {
	return &StatusView{
		ID:              l.ID,
		Status:          l.Status,
		SubmittedAt:     l.SubmittedAt,
		ProcessedAt:     l.ProcessedAt,
		RejectionReason: l.RejectionReason,
	}
}
