package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/config"
    "github.com/rentaly/car-rental/internal/model"
    "github.com/rentaly/car-rental/internal/repository"
    "github.com/rentaly/car-rental/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
    Username string `json:"username"`
    Email    string `json:"email"`
    Password string `json:"password"`
}
type loginReq struct {
    Username string `json:"username"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID       uint64 `json:"id"`
    Username string `json:"username"`
    Email    string `json:"email"`
    Role     string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// Register creates a user with the non-privileged role. Tokens are not
// issued here; the client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Username == "" || req.Email == "" || req.Password == "" {
        return fail(c, http.StatusBadRequest, "username, email and password are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
    if err != nil {
        if err == repository.ErrUserExists {
            return fail(c, http.StatusConflict, "username or email already exists")
        }
        return fail(c, http.StatusInternalServerError, "create user failed")
    }

    return respond(c, http.StatusCreated, "User registered",
        userPart{ID: uid, Username: req.Username, Email: req.Email, Role: model.RoleUser})
}

// Login verifies credentials, revokes every prior refresh token for the
// user (single active session chain) and returns a fresh token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Username = strings.TrimSpace(req.Username)
    if req.Username == "" || req.Password == "" {
        return fail(c, http.StatusBadRequest, "username and password are required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    lookup := h.Users.GetByUsername
    if strings.Contains(req.Username, "@") {
        lookup = h.Users.GetByEmail
    }
    u, err := lookup(ctx, req.Username)
    if err != nil {
        if err == repository.ErrUserNotFound {
            return fail(c, http.StatusUnauthorized, "invalid credentials")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return fail(c, http.StatusUnauthorized, "invalid credentials")
    }

    // A new login invalidates every session issued before it.
    if err := h.Tokens.RevokeAllForUser(ctx, u.ID); err != nil {
        return fail(c, http.StatusInternalServerError, "login failed")
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "issue access failed")
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "issue refresh failed")
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return fail(c, http.StatusInternalServerError, "save refresh failed")
    }

    return respond(c, http.StatusOK, "Login successful", authResp{
        User:    userPart{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    })
}

// Refresh validates the presented refresh token by hash, revokes it and
// issues a new pair (rotation). Other sessions are untouched.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return fail(c, http.StatusBadRequest, "refresh_token required")
    }
    raw := strings.TrimSpace(req.RefreshToken)
    hash := utils.HashRefreshRaw(raw)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "invalid refresh")
    }
    // The presented token must be dead before a replacement exists,
    // otherwise a storage failure would leave two live chains.
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return fail(c, http.StatusInternalServerError, "refresh failed")
    }

    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "load user failed")
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "issue access failed")
    }
    newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "issue refresh failed")
    }
    if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
        return fail(c, http.StatusInternalServerError, "save refresh failed")
    }

    return respond(c, http.StatusOK, "Token refreshed", authResp{
        User:    userPart{ID: userID, Username: u.Username, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
    })
}

// Logout extracts the identity from the presented access token and
// revokes all of that user's refresh tokens, which also kills any
// outstanding access tokens via the session check in the middleware.
func (h *AuthHandler) Logout(c echo.Context) error {
    authHeader := c.Request().Header.Get("Authorization")
    if !strings.HasPrefix(authHeader, "Bearer ") {
        return fail(c, http.StatusBadRequest, "token not found")
    }
    rawToken := strings.TrimPrefix(authHeader, "Bearer ")

    tok, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(h.Cfg.JWTSecret), nil
    })
    if err != nil || !tok.Valid {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }
    sub, ok := claims["sub"].(float64)
    if !ok || sub <= 0 {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }
    uid := uint64(sub)

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if _, err := h.Users.GetByID(ctx, uid); err != nil {
        if err == repository.ErrUserNotFound {
            return fail(c, http.StatusNotFound, "user not found")
        }
        return fail(c, http.StatusInternalServerError, "logout failed")
    }
    if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
        return fail(c, http.StatusInternalServerError, "logout failed")
    }
    return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the authenticated caller's identity claims.
func (h *AuthHandler) Me(c echo.Context) error {
    return respond(c, http.StatusOK, "OK", echo.Map{
        "user_id": c.Get("user_id"),
        "role":    c.Get("role"),
    })
}
