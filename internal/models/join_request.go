package models

import "time"

// JoinRequest is a secondary submission tied to an approved Location.
// LocationID is checked once at creation and never re-validated.
type JoinRequest struct {
	ID         string `db:"id" json:"id"`
	LocationID string `db:"location_id" json:"locationId"`
	Applicant
	Image
	JoinedAt time.Time `db:"joined_at" json:"joinedAt"`
	ImageURL string    `db:"-" json:"imageUrl,omitempty"`
}

// JoinRequestFilter constrains join request listing.
type JoinRequestFilter struct {
	LocationID string
	Limit      int
	Offset     int
}
