package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spot-review-api/internal/models"
)

var profileRowColumns = []string{"id", "full_name", "age", "email", "phone", "address", "image_path", "image_mime_type", "image_size_bytes",
	"status", "submitted_at", "processed_at", "processed_by", "rejection_reason"}

func TestProfileRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO profiles")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	profile := &models.Profile{
		Applicant: models.Applicant{FullName: "Ana Putri", Age: 27, Email: "ana@example.com", Phone: "0812", Address: "Jl. Mawar 1"},
		Image:     models.Image{Path: "cd/cde.jpg", MimeType: "image/jpeg", SizeBytes: 2048},
	}
	require.NoError(t, repo.Create(context.Background(), profile))
	require.NotEmpty(t, profile.ID)

	rows := sqlmock.NewRows(profileRowColumns).
		AddRow(profile.ID, "Ana Putri", 27, "ana@example.com", "0812", "Jl. Mawar 1", "cd/cde.jpg", "image/jpeg", 2048, "pending", time.Now(), nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM profiles WHERE id = $1")).
		WithArgs(profile.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, 27, found.Age)
	assert.Equal(t, "image/jpeg", found.MimeType)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryListWithoutStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	rows := sqlmock.NewRows(profileRowColumns).
		AddRow("p-1", "A", 20, "a@example.com", "1", "x", "aa/a.gif", "image/gif", 1, "rejected", time.Now(), time.Now(), "admin", "No reason provided")
	mock.ExpectQuery(`FROM profiles ORDER BY submitted_at DESC, id DESC LIMIT 50 OFFSET 0`).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM profiles")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.SubmissionFilter{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, models.StatusRejected, items[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestProfileRepositoryTransitionReject(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewProfileRepository(db)
	reason := "blurry photo"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE profiles SET status")).
		WithArgs(models.StatusRejected, sqlmock.AnyArg(), "moderator", &reason, "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Transition(context.Background(), models.TransitionParams{
		ID: "p-1", Status: models.StatusRejected, ProcessedAt: time.Now(), ProcessedBy: "moderator", RejectionReason: &reason,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
