package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spot-review-api/internal/models"
)

var joinRequestRowColumns = []string{"id", "location_id", "full_name", "age", "email", "phone", "address",
	"image_path", "image_mime_type", "image_size_bytes", "joined_at"}

func TestJoinRequestRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJoinRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO join_requests")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	req := &models.JoinRequest{
		LocationID: "loc-1",
		Applicant:  models.Applicant{FullName: "Budi", Age: 30, Email: "budi@example.com", Phone: "0813", Address: "Jl. Melati"},
		Image:      models.Image{Path: "ef/ef.png", MimeType: "image/png", SizeBytes: 12},
	}
	require.NoError(t, repo.Create(context.Background(), req))
	assert.NotEmpty(t, req.ID)
	assert.False(t, req.JoinedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRequestRepositoryListByLocation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJoinRequestRepository(db)
	rows := sqlmock.NewRows(joinRequestRowColumns).
		AddRow("jr-1", "loc-1", "Budi", 30, "budi@example.com", "0813", "Jl. Melati", "ef/ef.png", "image/png", 12, time.Now())
	mock.ExpectQuery(`FROM join_requests WHERE location_id = \$1 ORDER BY joined_at DESC, id DESC LIMIT 5 OFFSET 0`).
		WithArgs("loc-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM join_requests WHERE location_id = $1")).
		WithArgs("loc-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.ListByLocation(context.Background(), models.JoinRequestFilter{LocationID: "loc-1", Limit: 5})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "loc-1", items[0].LocationID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRequestRepositoryGetByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJoinRequestRepository(db)
	rows := sqlmock.NewRows(joinRequestRowColumns).
		AddRow("jr-1", "loc-1", "Budi", 30, "budi@example.com", "0813", "Jl. Melati", "ef/ef.png", "image/png", 12, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM join_requests WHERE id = $1")).
		WithArgs("jr-1").
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), "jr-1")
	require.NoError(t, err)
	assert.Equal(t, "Budi", found.FullName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRequestRepositoryMalformedIDIsMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewJoinRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM join_requests WHERE id = $1")).
		WithArgs("abc").
		WillReturnError(&pq.Error{Code: "22P02"})

	_, err := repo.GetByID(context.Background(), "abc")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
