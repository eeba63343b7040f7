package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/model"
    "github.com/rentaly/car-rental/internal/repository"
)

// CarHandler serves the public catalog reads and the admin-only writes.
type CarHandler struct {
    Cars *repository.CarRepo
}

func NewCarHandler(cars *repository.CarRepo) *CarHandler {
    return &CarHandler{Cars: cars}
}

type carReq struct {
    Name        string `json:"name"`
    Description string `json:"description"`
    Price       *int64 `json:"price"`
    CarType     string `json:"car_type"`
    Stock       int64  `json:"stock"`
}

type carDTO struct {
    ID          uint64    `json:"id"`
    Name        string    `json:"name"`
    Description string    `json:"description"`
    Price       *int64    `json:"price"`
    CarType     string    `json:"car_type"`
    Stock       int64     `json:"stock"`
    ImageURL    *string   `json:"image_url,omitempty"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}

func toCarDTO(c model.Car) carDTO {
    return carDTO{
        ID:          c.ID,
        Name:        c.Name,
        Description: c.Description,
        Price:       c.Price,
        CarType:     c.CarType,
        Stock:       c.Stock,
        ImageURL:    c.ImageURL,
        CreatedAt:   c.CreatedAt,
        UpdatedAt:   c.UpdatedAt,
    }
}

func toCarDTOs(cars []model.Car) []carDTO {
    out := make([]carDTO, 0, len(cars))
    for _, c := range cars {
        out = append(out, toCarDTO(c))
    }
    return out
}

// List returns the whole catalog.
func (h *CarHandler) List(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cars, err := h.Cars.ListAll(ctx)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Cars retrieved", toCarDTOs(cars))
}

// GetByID returns one car by its numeric id.
func (h *CarHandler) GetByID(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid car id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    car, err := h.Cars.GetByID(ctx, id)
    if err != nil {
        if err == repository.ErrCarNotFound {
            return fail(c, http.StatusNotFound, "car not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Car retrieved", toCarDTO(car))
}

// GetByName returns the car with the exact given name.
func (h *CarHandler) GetByName(c echo.Context) error {
    name := strings.TrimSpace(c.Param("name"))
    if name == "" {
        return fail(c, http.StatusBadRequest, "name required")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    car, err := h.Cars.GetByName(ctx, name)
    if err != nil {
        if err == repository.ErrCarNotFound {
            return fail(c, http.StatusNotFound, "car not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Car retrieved", toCarDTO(car))
}

// ListByType returns cars of one type. Unknown types are rejected
// rather than returning an empty list, so typos surface to the client.
func (h *CarHandler) ListByType(c echo.Context) error {
    carType := strings.ToLower(strings.TrimSpace(c.Param("type")))
    if !model.ValidCarType(carType) {
        return fail(c, http.StatusBadRequest, "unknown car type")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    cars, err := h.Cars.ListByType(ctx, carType)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Cars retrieved", toCarDTOs(cars))
}

// Create adds a car to the catalog together with its inventory row.
func (h *CarHandler) Create(c echo.Context) error {
    var req carReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Name = strings.TrimSpace(req.Name)
    req.CarType = strings.ToLower(strings.TrimSpace(req.CarType))
    if req.Name == "" {
        return fail(c, http.StatusBadRequest, "name required")
    }
    if !model.ValidCarType(req.CarType) {
        return fail(c, http.StatusBadRequest, "unknown car type")
    }
    if req.Stock < 0 {
        return fail(c, http.StatusBadRequest, "stock must not be negative")
    }
    if req.Price != nil && *req.Price < 0 {
        return fail(c, http.StatusBadRequest, "price must not be negative")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    car := model.Car{
        Name:        req.Name,
        Description: req.Description,
        Price:       req.Price,
        CarType:     req.CarType,
        Stock:       req.Stock,
    }
    if err := h.Cars.Create(ctx, &car); err != nil {
        return fail(c, http.StatusInternalServerError, "create car failed")
    }
    return respond(c, http.StatusCreated, "Car created", toCarDTO(car))
}

// Update rewrites a car's catalog fields; stock changes are mirrored
// into the inventory by the repository.
func (h *CarHandler) Update(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid car id")
    }
    var req carReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Name = strings.TrimSpace(req.Name)
    req.CarType = strings.ToLower(strings.TrimSpace(req.CarType))
    if req.Name == "" {
        return fail(c, http.StatusBadRequest, "name required")
    }
    if !model.ValidCarType(req.CarType) {
        return fail(c, http.StatusBadRequest, "unknown car type")
    }
    if req.Stock < 0 {
        return fail(c, http.StatusBadRequest, "stock must not be negative")
    }
    if req.Price != nil && *req.Price < 0 {
        return fail(c, http.StatusBadRequest, "price must not be negative")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    car := model.Car{
        ID:          id,
        Name:        req.Name,
        Description: req.Description,
        Price:       req.Price,
        CarType:     req.CarType,
        Stock:       req.Stock,
    }
    if err := h.Cars.Update(ctx, &car); err != nil {
        if err == repository.ErrCarNotFound {
            return fail(c, http.StatusNotFound, "car not found")
        }
        return fail(c, http.StatusInternalServerError, "update car failed")
    }
    return respond(c, http.StatusOK, "Car updated", toCarDTO(car))
}

// Delete removes a car that has never been rented. Cars with invoices
// are kept so history stays intact.
func (h *CarHandler) Delete(c echo.Context) error {
    id, err := pathID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid car id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Cars.Delete(ctx, id); err != nil {
        switch err {
        case repository.ErrCarNotFound:
            return fail(c, http.StatusNotFound, "car not found")
        case repository.ErrConflict:
            return fail(c, http.StatusConflict, "car has rental history")
        }
        return fail(c, http.StatusInternalServerError, "delete car failed")
    }
    return respond(c, http.StatusOK, "Car deleted", nil)
}
