package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func mockTokens(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    return NewTokenRepo(db), mock
}

func TestValidateRefreshActive(t *testing.T) {
    repo, mock := mockTokens(t)
    mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
        WithArgs("somehash").
        WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
            AddRow(42, time.Now().UTC().Add(time.Hour), nil))

    uid, err := repo.ValidateRefresh(context.Background(), "somehash")
    require.NoError(t, err)
    assert.Equal(t, uint64(42), uid)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateRefreshRevoked(t *testing.T) {
    repo, mock := mockTokens(t)
    mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
        WithArgs("somehash").
        WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
            AddRow(42, time.Now().UTC().Add(time.Hour), time.Now().UTC()))

    _, err := repo.ValidateRefresh(context.Background(), "somehash")
    assert.Error(t, err)
}

func TestValidateRefreshExpired(t *testing.T) {
    repo, mock := mockTokens(t)
    mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
        WithArgs("somehash").
        WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
            AddRow(42, time.Now().UTC().Add(-time.Minute), nil))

    _, err := repo.ValidateRefresh(context.Background(), "somehash")
    assert.Error(t, err)
}

func TestHasActiveForUser(t *testing.T) {
    repo, mock := mockTokens(t)

    mock.ExpectQuery("SELECT 1 FROM refresh_tokens WHERE user_id=\\? AND revoked_at IS NULL AND expires_at > NOW()").
        WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
    ok, err := repo.HasActiveForUser(context.Background(), 42)
    require.NoError(t, err)
    assert.True(t, ok)

    mock.ExpectQuery("SELECT 1 FROM refresh_tokens").
        WithArgs(uint64(43)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}))
    ok, err = repo.HasActiveForUser(context.Background(), 43)
    require.NoError(t, err)
    assert.False(t, ok)

    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeAllForUser(t *testing.T) {
    repo, mock := mockTokens(t)
    mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE user_id=\\? AND revoked_at IS NULL").
        WithArgs(uint64(42)).
        WillReturnResult(sqlmock.NewResult(0, 3))

    assert.NoError(t, repo.RevokeAllForUser(context.Background(), 42))
    assert.NoError(t, mock.ExpectationsWereMet())
}
