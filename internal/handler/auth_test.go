package handler

import (
    "encoding/json"
    "errors"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/rentaly/car-rental/internal/config"
    "github.com/rentaly/car-rental/internal/repository"
    "github.com/rentaly/car-rental/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { _ = db.Close() })
    cfg := config.Config{
        JWTSecret:      "auth-test-secret",
        AccessTTLMin:   15,
        RefreshTTLDays: 7,
        BcryptCost:     4,
    }
    return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func authContext(t *testing.T, path, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

var userCols = []string{"id", "username", "email", "password_hash", "role", "created_at", "updated_at"}

func expectLogin(t *testing.T, mock sqlmock.Sqlmock, passwordHash string) {
    t.Helper()
    now := time.Now().UTC()
    mock.ExpectQuery("SELECT (.+) FROM users WHERE username=?").
        WithArgs("alice").
        WillReturnRows(sqlmock.NewRows(userCols).
            AddRow(42, "alice", "alice@example.com", passwordHash, "user", now, now))
    // Every earlier session dies before the new pair is stored.
    mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE user_id=\\? AND revoked_at IS NULL").
        WithArgs(uint64(42)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectExec("INSERT INTO refresh_tokens").
        WillReturnResult(sqlmock.NewResult(1, 1))
}

func refreshTokenFrom(t *testing.T, rec *httptest.ResponseRecorder) string {
    t.Helper()
    var env BaseResponse
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
    data, ok := env.Data.(map[string]interface{})
    require.True(t, ok)
    refresh, ok := data["refresh"].(map[string]interface{})
    require.True(t, ok)
    token, ok := refresh["token"].(string)
    require.True(t, ok)
    return token
}

// Logging in twice revokes the first session's refresh tokens before a
// new pair is issued; the ordered expectations pin the revoke-then-
// insert sequence for each login.
func TestLoginTwiceRevokesEarlierSessions(t *testing.T) {
    h, mock := newAuthHandler(t)
    hash, err := utils.HashPassword("s3cret", 4)
    require.NoError(t, err)

    expectLogin(t, mock, hash)
    c, rec := authContext(t, "/v1/auth/login", `{"username":"alice","password":"s3cret"}`)
    require.NoError(t, h.Login(c))
    require.Equal(t, http.StatusOK, rec.Code)
    first := refreshTokenFrom(t, rec)

    expectLogin(t, mock, hash)
    c, rec = authContext(t, "/v1/auth/login", `{"username":"alice","password":"s3cret"}`)
    require.NoError(t, h.Login(c))
    require.Equal(t, http.StatusOK, rec.Code)
    second := refreshTokenFrom(t, rec)

    assert.NotEqual(t, first, second)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginWrongPassword(t *testing.T) {
    h, mock := newAuthHandler(t)
    hash, err := utils.HashPassword("s3cret", 4)
    require.NoError(t, err)
    now := time.Now().UTC()

    mock.ExpectQuery("SELECT (.+) FROM users WHERE username=?").
        WithArgs("alice").
        WillReturnRows(sqlmock.NewRows(userCols).
            AddRow(42, "alice", "alice@example.com", hash, "user", now, now))

    c, rec := authContext(t, "/v1/auth/login", `{"username":"alice","password":"wrong"}`)
    require.NoError(t, h.Login(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    // No revoke, no insert: the expectations end at the lookup.
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRotatesToken(t *testing.T) {
    h, mock := newAuthHandler(t)
    raw := "old-refresh-token"
    now := time.Now().UTC()

    mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
        WithArgs(utils.HashRefreshRaw(raw)).
        WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
            AddRow(42, now.Add(time.Hour), nil))
    mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE token_hash=\\? AND revoked_at IS NULL").
        WithArgs(utils.HashRefreshRaw(raw)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery("SELECT (.+) FROM users WHERE id=?").
        WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows(userCols).
            AddRow(42, "alice", "alice@example.com", "x", "user", now, now))
    mock.ExpectExec("INSERT INTO refresh_tokens").
        WillReturnResult(sqlmock.NewResult(2, 1))

    c, rec := authContext(t, "/v1/auth/refresh", `{"refresh_token":"old-refresh-token"}`)
    require.NoError(t, h.Refresh(c))
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.NotEqual(t, raw, refreshTokenFrom(t, rec))
    assert.NoError(t, mock.ExpectationsWereMet())
}

// A failed revocation aborts the rotation: no replacement token may be
// issued while the presented one could still be live.
func TestRefreshAbortsWhenRevokeFails(t *testing.T) {
    h, mock := newAuthHandler(t)
    raw := "old-refresh-token"
    now := time.Now().UTC()

    mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
        WithArgs(utils.HashRefreshRaw(raw)).
        WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
            AddRow(42, now.Add(time.Hour), nil))
    mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=NOW\\(\\) WHERE token_hash=\\? AND revoked_at IS NULL").
        WithArgs(utils.HashRefreshRaw(raw)).
        WillReturnError(errors.New("connection lost"))

    c, rec := authContext(t, "/v1/auth/refresh", `{"refresh_token":"old-refresh-token"}`)
    require.NoError(t, h.Refresh(c))
    assert.Equal(t, http.StatusInternalServerError, rec.Code)
    // No user load and no insert followed the failed revoke.
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
    h, mock := newAuthHandler(t)
    raw := "revoked-token"
    now := time.Now().UTC()

    mock.ExpectQuery("SELECT user_id, expires_at, revoked_at FROM refresh_tokens").
        WithArgs(utils.HashRefreshRaw(raw)).
        WillReturnRows(sqlmock.NewRows([]string{"user_id", "expires_at", "revoked_at"}).
            AddRow(42, now.Add(time.Hour), now))

    c, rec := authContext(t, "/v1/auth/refresh", `{"refresh_token":"revoked-token"}`)
    require.NoError(t, h.Refresh(c))
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}
