package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/model"
    "github.com/rentaly/car-rental/internal/repository"
)

// UserHandler serves user profile reads. Password hashes never leave
// the repository layer.
type UserHandler struct {
    Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler {
    return &UserHandler{Users: u}
}

type profileDTO struct {
    ID        uint64    `json:"id"`
    Username  string    `json:"username"`
    Email     string    `json:"email"`
    Role      string    `json:"role"`
    CreatedAt time.Time `json:"created_at"`
}

// GetByID returns one user's profile. Callers may fetch themselves;
// only admins may fetch other users.
func (h *UserHandler) GetByID(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid user id")
    }
    callerID, err := getUserID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }
    if role, _ := c.Get("role").(string); role != model.RoleAdmin && callerID != id {
        return fail(c, http.StatusForbidden, "forbidden")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrUserNotFound {
            return fail(c, http.StatusNotFound, "user not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "User retrieved", profileDTO{
        ID:        u.ID,
        Username:  u.Username,
        Email:     u.Email,
        Role:      u.Role,
        CreatedAt: u.CreatedAt,
    })
}
