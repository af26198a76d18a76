package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/spot-review-api/internal/models"
)

const locationColumns = `id, name, description, link, image_path, image_mime_type, image_size_bytes,
       status, submitted_at, processed_at, processed_by, rejection_reason`

// LocationRepository persists location submissions.
type LocationRepository struct {
	db     *sqlx.DB
	review reviewTable
}

// NewLocationRepository constructs the repository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{db: db, review: reviewTable{db: db, table: "locations"}}
}

// Create inserts a new location in pending status.
func (r *LocationRepository) Create(ctx context.Context, location *models.Location) error {
	if location.ID == "" {
		location.ID = uuid.NewString()
	}
	if location.Status == "" {
		location.Status = models.StatusPending
	}
	if location.SubmittedAt.IsZero() {
		location.SubmittedAt = time.Now().UTC()
	}
	const query = `INSERT INTO locations
	(id, name, description, link, image_path, image_mime_type, image_size_bytes, status, submitted_at, processed_at, processed_by, rejection_reason)
	VALUES (:id, :name, :description, :link, :image_path, :image_mime_type, :image_size_bytes, :status, :submitted_at, :processed_at, :processed_by, :rejection_reason)`
	if _, err := r.db.NamedExecContext(ctx, query, location); err != nil {
		return fmt.Errorf("create location: %w", err)
	}
	return nil
}

// GetByID fetches a location by identifier.
func (r *LocationRepository) GetByID(ctx context.Context, id string) (*models.Location, error) {
	query := fmt.Sprintf(`SELECT %s FROM locations WHERE id = $1`, locationColumns)
	var location models.Location
	if err := r.db.GetContext(ctx, &location, query, id); err != nil {
		return nil, missingOnMalformedID(err)
	}
	return &location, nil
}

// GetStatus fetches the status projection of a location.
func (r *LocationRepository) GetStatus(ctx context.Context, id string) (*models.StatusView, error) {
	return r.review.status(ctx, id)
}

// List returns one page of locations (newest submission first) and the total match count.
func (r *LocationRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Location, int, error) {
	query, countQuery, args := r.review.listQuery(locationColumns, filter)
	locations := make([]models.Location, 0)
	if err := r.db.SelectContext(ctx, &locations, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list locations: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}
	return locations, total, nil
}

// ListPending returns every pending location, newest submission first.
func (r *LocationRepository) ListPending(ctx context.Context) ([]models.Location, error) {
	query := fmt.Sprintf(`SELECT %s FROM locations WHERE status = $1 ORDER BY submitted_at DESC, id DESC`, locationColumns)
	locations := make([]models.Location, 0)
	if err := r.db.SelectContext(ctx, &locations, query, models.StatusPending); err != nil {
		return nil, fmt.Errorf("list pending locations: %w", err)
	}
	return locations, nil
}

// ListApproved returns every approved location, most recently approved first.
func (r *LocationRepository) ListApproved(ctx context.Context) ([]models.Location, error) {
	query := fmt.Sprintf(`SELECT %s FROM locations WHERE status = $1 ORDER BY processed_at DESC, id DESC`, locationColumns)
	locations := make([]models.Location, 0)
	if err := r.db.SelectContext(ctx, &locations, query, models.StatusApproved); err != nil {
		return nil, fmt.Errorf("list approved locations: %w", err)
	}
	return locations, nil
}

// Transition atomically moves a pending location to a terminal status.
func (r *LocationRepository) Transition(ctx context.Context, params models.TransitionParams) error {
	return r.review.transition(ctx, params)
}
