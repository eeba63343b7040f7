package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func runRole(t *testing.T, role interface{}, allowed ...string) (int, bool) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/", nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if role != nil {
        c.Set("role", role)
    }

    called := false
    next := func(c echo.Context) error {
        called = true
        return c.NoContent(http.StatusOK)
    }
    require.NoError(t, RequireRole(allowed...)(next)(c))
    return rec.Code, called
}

func TestRequireRoleAllows(t *testing.T) {
    code, called := runRole(t, "admin", "admin")
    assert.True(t, called)
    assert.Equal(t, http.StatusOK, code)
}

func TestRequireRoleRejectsOtherRole(t *testing.T) {
    code, called := runRole(t, "user", "admin")
    assert.False(t, called)
    assert.Equal(t, http.StatusForbidden, code)
}

func TestRequireRoleRejectsMissingRole(t *testing.T) {
    code, called := runRole(t, nil, "admin")
    assert.False(t, called)
    assert.Equal(t, http.StatusForbidden, code)
}

func TestRequireRoleRejectsNonString(t *testing.T) {
    code, called := runRole(t, 7, "admin")
    assert.False(t, called)
    assert.Equal(t, http.StatusForbidden, code)
}

func TestRequireRoleMultiple(t *testing.T) {
    code, called := runRole(t, "user", "admin", "user")
    assert.True(t, called)
    assert.Equal(t, http.StatusOK, code)
}
