package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/rentaly/car-rental/internal/repository"
    "github.com/rentaly/car-rental/internal/utils"
)

const testSecret = "unit-test-secret"

func runJWT(t *testing.T, authHeader string, tokens *repository.TokenRepo) (*httptest.ResponseRecorder, bool) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    if authHeader != "" {
        req.Header.Set("Authorization", authHeader)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    called := false
    next := func(c echo.Context) error {
        called = true
        return c.NoContent(http.StatusOK)
    }
    err := JWTAuth(testSecret, tokens)(next)(c)
    require.NoError(t, err)
    return rec, called
}

func TestJWTAuthValidTokenWithActiveSession(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    mock.ExpectQuery("SELECT 1 FROM refresh_tokens").
        WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

    access, err := utils.NewAccessToken(testSecret, 42, "user", 15)
    require.NoError(t, err)

    rec, called := runJWT(t, "Bearer "+access.Token, repository.NewTokenRepo(db))
    assert.True(t, called)
    assert.Equal(t, http.StatusOK, rec.Code)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJWTAuthRevokedSession(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()
    // No live refresh tokens left: access token is refused even though
    // its signature and expiry are fine.
    mock.ExpectQuery("SELECT 1 FROM refresh_tokens").
        WithArgs(uint64(42)).
        WillReturnRows(sqlmock.NewRows([]string{"1"}))

    access, err := utils.NewAccessToken(testSecret, 42, "user", 15)
    require.NoError(t, err)

    rec, called := runJWT(t, "Bearer "+access.Token, repository.NewTokenRepo(db))
    assert.False(t, called)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthMissingHeader(t *testing.T) {
    rec, called := runJWT(t, "", nil)
    assert.False(t, called)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthWrongSecret(t *testing.T) {
    access, err := utils.NewAccessToken("other-secret", 42, "user", 15)
    require.NoError(t, err)

    rec, called := runJWT(t, "Bearer "+access.Token, nil)
    assert.False(t, called)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthGarbageToken(t *testing.T) {
    rec, called := runJWT(t, "Bearer not.a.jwt", nil)
    assert.False(t, called)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthSetsIdentity(t *testing.T) {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    access, err := utils.NewAccessToken(testSecret, 42, "admin", 15)
    require.NoError(t, err)
    req.Header.Set("Authorization", "Bearer "+access.Token)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)

    var gotUID interface{}
    var gotRole interface{}
    next := func(c echo.Context) error {
        gotUID = c.Get("user_id")
        gotRole = c.Get("role")
        return c.NoContent(http.StatusOK)
    }
    // nil TokenRepo skips the session check.
    require.NoError(t, JWTAuth(testSecret, nil)(next)(c))
    assert.Equal(t, uint64(42), gotUID)
    assert.Equal(t, "admin", gotRole)
}
