package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/spot-review-api/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// reviewTable implements the status columns shared by every submission table.
type reviewTable struct {
	db    *sqlx.DB
	table string
}

// transition applies params only while the row is still pending. It returns
// sql.ErrNoRows when the id is unknown, malformed or the row was already processed.
func (t reviewTable) transition(ctx context.Context, params models.TransitionParams) error {
	query := fmt.Sprintf(`UPDATE %s SET status = :status, processed_at = :processed_at, processed_by = :processed_by, rejection_reason = :rejection_reason
	WHERE id = :id AND status = '%s'`, t.table, models.StatusPending)
	result, err := t.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":               params.ID,
		"status":           params.Status,
		"processed_at":     params.ProcessedAt,
		"processed_by":     params.ProcessedBy,
		"rejection_reason": params.RejectionReason,
	})
	if err != nil {
		if err = missingOnMalformedID(err); errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update %s status: %w", t.table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s update rows: %w", t.table, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// status loads the status projection without the image columns.
func (t reviewTable) status(ctx context.Context, id string) (*models.StatusView, error) {
	query := fmt.Sprintf(`SELECT id, status, submitted_at, processed_at, rejection_reason FROM %s WHERE id = $1`, t.table)
	var view models.StatusView
	if err := t.db.GetContext(ctx, &view, query, id); err != nil {
		return nil, missingOnMalformedID(err)
	}
	return &view, nil
}

// listQuery builds the WHERE/ORDER/LIMIT tail for a filtered listing along
// with the matching count query.
func (t reviewTable) listQuery(columns string, filter models.SubmissionFilter) (string, string, []interface{}) {
	args := make([]interface{}, 0, 1)
	where := ""
	if filter.Status != "" {
		args = append(args, filter.Status)
		where = fmt.Sprintf(" WHERE status = $%d", len(args))
	}
	limit, offset := normalizePage(filter.Limit, filter.Offset)

	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("SELECT %s FROM %s", columns, t.table))
	builder.WriteString(where)
	builder.WriteString(" ORDER BY submitted_at DESC, id DESC")
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", t.table, where)
	return builder.String(), countQuery, args
}

// missingOnMalformedID reports an id Postgres cannot cast to the key column
// type (SQLSTATE class 22, data exception) as a missing row.
func missingOnMalformedID(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == "22" {
		return sql.ErrNoRows
	}
	return err
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
