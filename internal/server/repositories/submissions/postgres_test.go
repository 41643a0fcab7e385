package submissions

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/artvault/internal/common"
	"github.com/dmitrijs2005/artvault/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "owner", "status", "created_at", "updated_at",
	"asset_hash", "asset_media_type", "asset_size", "asset_chunks", "asset_key",
	"fee_paid", "fee_payment_ref",
	"verdict_approved", "originality", "visibility", "verdict_reason", "verdict_at",
	"reward_token_id", "reward_tx_id", "rewarded_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+submissions\b.*RETURNING\s+id$`).
		WithArgs("alice", "pending_upload", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	s, err := repo.Create(context.Background(), "alice", now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, "alice", s.Owner)
	assert.Equal(t, models.KindPendingUpload, s.Status.Kind())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+submissions`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice", time.Now())
	if err == nil || !regexp.MustCompile(`failed to create submission: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestGet_Verified(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := sqlmock.NewRows(columns).AddRow(
		int64(3), "bob", "verified", now, now,
		[]byte{0xaa}, "image/png", int64(10), int64(2), "submissions/3/asset",
		true, "ref-1",
		true, int64(80), int64(60), "", now,
		nil, nil, nil)

	mock.ExpectQuery(`(?s)SELECT .* FROM submissions WHERE id=\$1$`).
		WithArgs(int64(3)).
		WillReturnRows(rows)

	s, err := repo.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, models.Verified{Originality: 80, Visibility: 60}, s.Status)
	require.NotNil(t, s.Asset)
	assert.Equal(t, "image/png", s.Asset.MediaType)
	assert.Equal(t, 2, s.Asset.ChunkCount)
	assert.Equal(t, "ref-1", s.FeePaymentRef)
	assert.Nil(t, s.Reward)
	require.NoError(t, s.CheckConsistency())
}

func TestGet_PendingHasNoOptionalFields(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		int64(1), "bob", "pending_upload", now, now,
		nil, nil, nil, nil, nil,
		false, nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil)

	mock.ExpectQuery(`(?s)SELECT .* FROM submissions WHERE id=\$1$`).WithArgs(int64(1)).WillReturnRows(rows)

	s, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Nil(t, s.Asset)
	assert.Nil(t, s.Verdict)
	assert.Equal(t, models.PendingUpload{}, s.Status)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM submissions WHERE id=\$1`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), 9)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetForUpdate_UsesRowLock(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		int64(1), "bob", "rejected", now, now,
		[]byte{1}, "image/gif", int64(1), int64(1), "k",
		true, "r",
		false, int64(10), int64(10), "copy", now,
		nil, nil, nil)

	mock.ExpectQuery(`(?s)SELECT .* FROM submissions WHERE id=\$1 FOR UPDATE$`).WithArgs(int64(1)).WillReturnRows(rows)

	s, err := repo.GetForUpdate(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, models.Rejected{Reason: "copy"}, s.Status)
}

func TestGet_VerdictStatusWithoutVerdict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).AddRow(
		int64(1), "bob", "verified", now, now,
		nil, nil, nil, nil, nil,
		false, nil,
		nil, nil, nil, nil, nil,
		nil, nil, nil)
	mock.ExpectQuery(`SELECT`).WithArgs(int64(1)).WillReturnRows(rows)

	_, err := repo.Get(context.Background(), 1)
	assert.Error(t, err)
}

const updateQ = `(?s)^UPDATE\s+submissions\s+SET\b.*COALESCE.*WHERE\s+id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2$`

func anyArgs(n int) []driver.Value {
	out := make([]driver.Value, n)
	for i := range out {
		out[i] = sqlmock.AnyArg()
	}
	return out
}

func TestApplyTransition_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	args := append([]driver.Value{int64(5), "awaiting_fee", "verifying", now}, anyArgs(5)...)
	args = append(args, true, "pay-1")
	args = append(args, anyArgs(8)...)

	mock.ExpectExec(updateQ).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyTransition(context.Background(), 5, models.Transition{
		From:          models.KindAwaitingFee,
		To:            models.Verifying{},
		FeePaymentRef: "pay-1",
	}, now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyTransition_StatusMovedOn(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM submissions WHERE id=\$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("verifying"))

	err := repo.ApplyTransition(context.Background(), 5, models.Transition{
		From: models.KindAwaitingFee,
		To:   models.Verifying{},
	}, time.Now())
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
	assert.Contains(t, err.Error(), "verifying")
}

func TestApplyTransition_UnknownID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT status FROM submissions`).WillReturnError(sql.ErrNoRows)

	err := repo.ApplyTransition(context.Background(), 5, models.Transition{
		From: models.KindAwaitingFee,
		To:   models.Verifying{},
	}, time.Now())
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestApplyTransition_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnError(errors.New("db down"))

	err := repo.ApplyTransition(context.Background(), 5, models.Transition{
		From: models.KindVerified,
		To:   models.Rewarded{},
	}, time.Now())
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestApplyTransition_RowsAffectedErr(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(updateQ).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	err := repo.ApplyTransition(context.Background(), 5, models.Transition{
		From: models.KindVerified,
		To:   models.Rewarded{},
	}, time.Now())
	if err == nil || !regexp.MustCompile(`rows affected error: .*rows-err`).MatchString(err.Error()) {
		t.Fatalf("expected rows affected error, got %v", err)
	}
}

func TestReplace_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+submissions\s+SET\b.*WHERE\s+id\s*=\s*\$1$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Replace(context.Background(), &models.Submission{
		ID:     4,
		Status: models.PendingUpload{},
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplace_Missing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`UPDATE\s+submissions`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Replace(context.Background(), &models.Submission{ID: 4, Status: models.PendingUpload{}})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestInsertOverride(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+submission_overrides\b.*RETURNING\s+id$`).
		WithArgs(int64(2), "verified", "rejected", "plagiarism", "admin", now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))

	id, err := repo.InsertOverride(context.Background(), &models.Override{
		SubmissionID: 2,
		From:         models.KindVerified,
		To:           models.KindRejected,
		Reason:       "plagiarism",
		Actor:        "admin",
		CreatedAt:    now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
}

func TestListOverrides(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "submission_id", "from_status", "to_status", "reason", "actor", "created_at"}).
		AddRow(int64(1), int64(2), "verified", "rejected", "r1", "admin", now).
		AddRow(int64(2), int64(2), "rejected", "verifying", "r2", "admin", now)
	mock.ExpectQuery(`(?s)SELECT .* FROM submission_overrides WHERE submission_id=\$1 ORDER BY id`).
		WithArgs(int64(2)).
		WillReturnRows(rows)

	got, err := repo.ListOverrides(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.KindRejected, got[0].To)
	assert.Equal(t, models.KindVerifying, got[1].To)
}

func TestListOverrides_BadStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "submission_id", "from_status", "to_status", "reason", "actor", "created_at"}).
		AddRow(int64(1), int64(2), "bogus", "rejected", "r1", "admin", time.Now())
	mock.ExpectQuery(`FROM submission_overrides`).WillReturnRows(rows)

	_, err := repo.ListOverrides(context.Background(), 2)
	assert.Error(t, err)
}

func TestListApproved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(columns).
		AddRow(int64(3), "bob", "rewarded", now, now,
			[]byte{1}, "image/png", int64(10), int64(1), "k3",
			true, "p",
			true, int64(90), int64(90), "", now,
			int64(1), "tx-1", now).
		AddRow(int64(2), "eve", "verified", now, now,
			[]byte{2}, "image/webp", int64(10), int64(1), "k2",
			true, "p",
			true, int64(70), int64(70), "", now,
			nil, nil, nil)

	mock.ExpectQuery(`(?s)SELECT .* FROM submissions\s+WHERE status IN \('verified', 'rewarded'\).*LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	got, err := repo.ListApproved(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got[0].Reward)
	assert.Equal(t, "tx-1", got[0].Reward.TxID)
	assert.Equal(t, models.KindVerified, got[1].Status.Kind())
}

func TestCountApproved(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM submissions`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	n, err := repo.CountApproved(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
