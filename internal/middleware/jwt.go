package middleware // middleware provides shared request processing for handlers

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/repository"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the token's subject and role claims into the
// request context under "user_id" and "role". The provided secret must
// match the one used when issuing tokens.
//
// Beyond signature and expiry, the middleware requires the subject to
// still own at least one active refresh token: logout revokes them all,
// which kills outstanding access tokens immediately instead of letting
// them coast to expiry. Every failure collapses to a generic 401 so
// callers learn nothing about signing or session internals.
func JWTAuth(secret string, tokens *repository.TokenRepo) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                // Reject tokens signed with anything but HMAC.
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }
            uid, ok := subjectID(claims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            if tokens != nil {
                ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
                active, err := tokens.HasActiveForUser(ctx, uid)
                cancel()
                if err != nil || !active {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
                }
            }

            c.Set("user_id", uid)
            c.Set("role", claims["role"])
            return next(c)
        }
    }
}

// subjectID extracts the numeric user ID from the sub claim. JWT
// numbers decode as float64; string subjects are not issued by this
// service and are rejected.
func subjectID(claims jwt.MapClaims) (uint64, bool) {
    switch v := claims["sub"].(type) {
    case float64:
        if v < 0 {
            return 0, false
        }
        return uint64(v), true
    case uint64:
        return v, true
    }
    return 0, false
}
