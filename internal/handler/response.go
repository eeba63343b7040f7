package handler

import (
    "time"

    "github.com/labstack/echo/v4"
)

// BaseResponse is the uniform envelope returned by every endpoint:
// {statusCode, message, data, timestamp}. Errors use the same shape
// with data omitted.
type BaseResponse struct {
    StatusCode int         `json:"statusCode"`
    Message    string      `json:"message"`
    Data       interface{} `json:"data,omitempty"`
    Timestamp  string      `json:"timestamp"`
}

// respond writes a success envelope with a payload.
func respond(c echo.Context, status int, message string, data interface{}) error {
    return c.JSON(status, BaseResponse{
        StatusCode: status,
        Message:    message,
        Data:       data,
        Timestamp:  time.Now().UTC().Format(time.RFC3339),
    })
}

// fail writes an error envelope. Messages must be user-safe; internal
// errors are logged by the caller and surfaced as a generic string.
func fail(c echo.Context, status int, message string) error {
    return c.JSON(status, BaseResponse{
        StatusCode: status,
        Message:    message,
        Timestamp:  time.Now().UTC().Format(time.RFC3339),
    })
}
