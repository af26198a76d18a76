package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/spot-review-api/internal/models"
)

const profileColumns = `id, full_name, age, email, phone, address, image_path, image_mime_type, image_size_bytes,
       status, submitted_at, processed_at, processed_by, rejection_reason`

// ProfileRepository persists personal profile submissions.
type ProfileRepository struct {
	db     *sqlx.DB
	review reviewTable
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db, review: reviewTable{db: db, table: "profiles"}}
}

// Create inserts a new profile in pending status.
func (r *ProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.Status == "" {
		profile.Status = models.StatusPending
	}
	if profile.SubmittedAt.IsZero() {
		profile.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO profiles
	(id, full_name, age, email, phone, address, image_path, image_mime_type, image_size_bytes, status, submitted_at, processed_at, processed_by, rejection_reason)
	VALUES (:id, :full_name, :age, :email, :phone, :address, :image_path, :image_mime_type, :image_size_bytes, :status, :submitted_at, :processed_at, :processed_by, :rejection_reason)`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("create profile: %w", err)
	}
	return nil
}

// GetByID fetches a profile by identifier.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, missingOnMalformedID(err)
	}
	return &profile, nil
}

// GetStatus fetches the status projection of a profile.
func (r *ProfileRepository) GetStatus(ctx context.Context, id string) (*models.StatusView, error) {
	return r.review.status(ctx, id)
}

// List returns one page of profiles and the total match count.
func (r *ProfileRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Profile, int, error) {
	query, countQuery, args := r.review.listQuery(profileColumns, filter)
	profiles := make([]models.Profile, 0)
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list profiles: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count profiles: %w", err)
	}
	return profiles, total, nil
}

// ListPending returns every pending profile, newest submission first.
func (r *ProfileRepository) ListPending(ctx context.Context) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE status = $1 ORDER BY submitted_at DESC, id DESC`, profileColumns)
	profiles := make([]models.Profile, 0)
	if err := r.db.SelectContext(ctx, &profiles, query, models.StatusPending); err != nil {
		return nil, fmt.Errorf("list pending profiles: %w", err)
	}
	return profiles, nil
}

// ListApproved returns every approved profile, most recently approved first.
func (r *ProfileRepository) ListApproved(ctx context.Context) ([]models.Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE status = $1 ORDER BY processed_at DESC, id DESC`, profileColumns)
	profiles := make([]models.Profile, 0)
	if err := r.db.SelectContext(ctx, &profiles, query, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("list approved profiles: %w", err)
	}
	return profiles, nil
}

// Transition atomically moves a pending profile to a terminal status.
func (r *ProfileRepository) Transition(ctx context.Context, params models.TransitionParams) error {
	return r.review.transition(ctx, params)
}
