package service

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/spot-review-api/internal/dto"
	"github.com/noah-isme/spot-review-api/internal/repository"
	appErrors "github.com/noah-isme/spot-review-api/pkg/errors"
)

// invalidUUID is what Postgres answers when a non-uuid literal is compared
// with a uuid column.
var invalidUUID = &pq.Error{Code: "22P02", Message: `invalid input syntax for type uuid: "abc"`}

func newSQLServices(t *testing.T) (*LocationService, *JoinRequestService, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "sqlmock")

	images := NewImageService(newMemoryBlobStore(), nil, nil, ImageServiceConfig{})
	locations := NewLocationService(repository.NewLocationRepository(db), images, nil, nil, nil, nil, SubmissionServiceConfig{})
	joins := NewJoinRequestService(repository.NewJoinRequestRepository(db), locations, images, nil, nil, nil, SubmissionServiceConfig{})
	return locations, joins, mock
}

func TestLocationServiceMalformedIDIsNotFound(t *testing.T) {
	locations, _, mock := newSQLServices(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err := locations.Get(ctx, "abc")
	requireCode(t, err, appErrors.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err = locations.GetStatus(ctx, "abc")
	requireCode(t, err, appErrors.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err = locations.Image(ctx, "abc")
	requireCode(t, err, appErrors.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE locations SET status")).WillReturnError(invalidUUID)
	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err = locations.Approve(ctx, "abc", dto.ApproveRequest{})
	requireCode(t, err, appErrors.ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE locations SET status")).WillReturnError(invalidUUID)
	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err = locations.Reject(ctx, "abc", dto.RejectRequest{})
	requireCode(t, err, appErrors.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestJoinRequestServiceMalformedIDIsNotFound(t *testing.T) {
	_, joins, mock := newSQLServices(t)
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta("FROM locations WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err := joins.Create(ctx, "abc", validApplicant(), gifUpload())
	requireCode(t, err, appErrors.ErrNotFound)

	mock.ExpectQuery(regexp.QuoteMeta("FROM join_requests WHERE id = $1")).WithArgs("abc").WillReturnError(invalidUUID)
	_, err = joins.Get(ctx, "abc")
	requireCode(t, err, appErrors.ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
