package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/spot-review-api/internal/models"
)

const joinRequestColumns = `id, location_id, full_name, age, email, phone, address,
       image_path, image_mime_type, image_size_bytes, joined_at`

// JoinRequestRepository persists join requests against approved locations.
type JoinRequestRepository struct {
	db *sqlx.DB
}

// NewJoinRequestRepository constructs the repository.
func NewJoinRequestRepository(db *sqlx.DB) *JoinRequestRepository {
	return &JoinRequestRepository{db: db}
}

// Create inserts a join request. The caller is responsible for the location check.
func (r *JoinRequestRepository) Create(ctx context.Context, req *models.JoinRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.JoinedAt.IsZero() {
		req.JoinedAt = time.Now().UTC()
	}
	const query = `INSERT INTO join_requests
	(id, location_id, full_name, age, email, phone, address, image_path, image_mime_type, image_size_bytes, joined_at)
	VALUES (:id, :location_id, :full_name, :age, :email, :phone, :address, :image_path, :image_mime_type, :image_size_bytes, :joined_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create join request: %w", err)
	}
	return nil
}

// GetByID fetches a join request by identifier.
func (r *JoinRequestRepository) GetByID(ctx context.Context, id string) (*models.JoinRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM join_requests WHERE id = $1`, joinRequestColumns)
	var req models.JoinRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, missingOnMalformedID(err)
	}
	return &req, nil
}

// ListByLocation returns join requests for a location, newest first, with the total count.
func (r *JoinRequestRepository) ListByLocation(ctx context.Context, filter models.JoinRequestFilter) ([]models.JoinRequest, int, error) {
	limit, offset := normalizePage(filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM join_requests WHERE location_id = $1 ORDER BY joined_at DESC, id DESC LIMIT %d OFFSET %d`,
		joinRequestColumns, limit, offset)
	requests := make([]models.JoinRequest, 0)
	if err := r.db.SelectContext(ctx, &requests, query, filter.LocationID); err != nil {
		return nil, 0, fmt.Errorf("list join requests: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM join_requests WHERE location_id = $1`, filter.LocationID); err != nil {
		return nil, 0, fmt.Errorf("count join requests: %w", err)
	}
	return requests, total, nil
}
