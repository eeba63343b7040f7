package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/rentaly/car-rental/internal/model"
    "github.com/rentaly/car-rental/internal/queue"
    "github.com/rentaly/car-rental/internal/repository"
    "github.com/rentaly/car-rental/internal/service"
)

const dateLayout = "2006-01-02"

// BookingHandler exposes the rental lifecycle over HTTP. The heavy
// lifting (transactional reserve + invoice, guarded transitions) lives
// in the BookingService; the handler parses, authorizes ownership and
// publishes lifecycle events after a successful commit.
type BookingHandler struct {
    Booking   *service.BookingService
    Invoices  *repository.InvoiceRepo
    Cars      *repository.CarRepo
    Inventory *repository.InventoryRepo
}

func NewBookingHandler(b *service.BookingService, inv *repository.InvoiceRepo, cars *repository.CarRepo, stock *repository.InventoryRepo) *BookingHandler {
    return &BookingHandler{Booking: b, Invoices: inv, Cars: cars, Inventory: stock}
}

type bookReq struct {
    StartDate string `json:"start_date"`
    EndDate   string `json:"end_date"`
}

type invoiceDTO struct {
    ID            uint64     `json:"id"`
    UserID        uint64     `json:"user_id"`
    CarID         uint64     `json:"car_id"`
    PaymentStatus string     `json:"payment_status"`
    RentStatus    string     `json:"rent_status"`
    StartDate     time.Time  `json:"start_date"`
    EndDate       time.Time  `json:"end_date"`
    TotalPrice    int64      `json:"total_price"`
    ReturnedAt    *time.Time `json:"returned_at,omitempty"`
    CreatedAt     time.Time  `json:"created_at"`
    UpdatedAt     time.Time  `json:"updated_at"`
}

func toInvoiceDTO(inv model.Invoice) invoiceDTO {
    return invoiceDTO{
        ID:            inv.ID,
        UserID:        inv.UserID,
        CarID:         inv.CarID,
        PaymentStatus: inv.PaymentStatus,
        RentStatus:    inv.RentStatus,
        StartDate:     inv.StartDate,
        EndDate:       inv.EndDate,
        TotalPrice:    inv.TotalPrice,
        ReturnedAt:    inv.ReturnedAt,
        CreatedAt:     inv.CreatedAt,
        UpdatedAt:     inv.UpdatedAt,
    }
}

func toInvoiceDTOs(invs []model.Invoice) []invoiceDTO {
    out := make([]invoiceDTO, 0, len(invs))
    for _, inv := range invs {
        out = append(out, toInvoiceDTO(inv))
    }
    return out
}

// Book rents one unit of the car in the path for the authenticated
// user. Overbooking is prevented by the conditional decrement inside
// the service transaction, not by any check here.
func (h *BookingHandler) Book(c echo.Context) error {
    carID, err := pathID(c, "carId")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid car id")
    }
    userID, err := getUserID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }

    var req bookReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    start, err := time.Parse(dateLayout, req.StartDate)
    if err != nil {
        return fail(c, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
    }
    end, err := time.Parse(dateLayout, req.EndDate)
    if err != nil {
        return fail(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    inv, err := h.Booking.Create(ctx, carID, userID, start, end)
    if err != nil {
        switch err {
        case service.ErrInvalidDateRange:
            return fail(c, http.StatusBadRequest, "start date cannot be after end date")
        case service.ErrPriceUnset:
            return fail(c, http.StatusBadRequest, "car has no price set")
        case repository.ErrCarNotFound, repository.ErrInventoryNotFound:
            return fail(c, http.StatusNotFound, "car not found")
        case repository.ErrOutOfStock:
            return fail(c, http.StatusBadRequest, "car is out of stock")
        }
        return fail(c, http.StatusInternalServerError, "booking failed")
    }

    carName := ""
    if car, cerr := h.Cars.GetByID(ctx, carID); cerr == nil {
        carName = car.Name
    }
    // Best effort: the booking already committed, a broker outage must
    // not turn it into a client-visible failure.
    _ = service.PublishInvoiceCreated(ctx, queue.InvoiceCreatedEvent{
        InvoiceID:  inv.ID,
        UserID:     inv.UserID,
        CarID:      inv.CarID,
        CarName:    carName,
        StartDate:  inv.StartDate.Format(time.RFC3339),
        EndDate:    inv.EndDate.Format(time.RFC3339),
        TotalPrice: inv.TotalPrice,
        CreatedAt:  inv.CreatedAt.UTC().Format(time.RFC3339),
    })

    return respond(c, http.StatusCreated, "Car booked", toInvoiceDTO(inv))
}

// Return closes a rental as returned. Non-admin callers may only close
// their own invoices.
func (h *BookingHandler) Return(c echo.Context) error {
    return h.closeRental(c, h.Booking.Return, "Car returned")
}

// Cancel closes a rental as cancelled, with the same ownership rule.
func (h *BookingHandler) Cancel(c echo.Context) error {
    return h.closeRental(c, h.Booking.Cancel, "Booking cancelled")
}

func (h *BookingHandler) closeRental(c echo.Context, closeFn func(context.Context, uint64) (model.Invoice, error), okMsg string) error {
    invoiceID, err := pathID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid invoice id")
    }
    userID, err := getUserID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    existing, err := h.Invoices.GetByID(ctx, invoiceID)
    if err != nil {
        if err == repository.ErrInvoiceNotFound {
            return fail(c, http.StatusNotFound, "invoice not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    if role, _ := c.Get("role").(string); role != model.RoleAdmin && existing.UserID != userID {
        return fail(c, http.StatusForbidden, "not your invoice")
    }

    inv, err := closeFn(ctx, invoiceID)
    if err != nil {
        switch err {
        case repository.ErrInvoiceNotFound:
            return fail(c, http.StatusNotFound, "invoice not found")
        case repository.ErrInvalidTransition:
            return fail(c, http.StatusBadRequest, "invoice is no longer rented")
        case repository.ErrInventoryNotFound:
            return fail(c, http.StatusInternalServerError, "inventory row missing")
        }
        return fail(c, http.StatusInternalServerError, "update failed")
    }

    closedAt := inv.UpdatedAt
    if inv.ReturnedAt != nil {
        closedAt = *inv.ReturnedAt
    }
    _ = service.PublishInvoiceClosed(ctx, queue.InvoiceClosedEvent{
        InvoiceID:  inv.ID,
        UserID:     inv.UserID,
        CarID:      inv.CarID,
        RentStatus: inv.RentStatus,
        ClosedAt:   closedAt.UTC().Format(time.RFC3339),
    })

    return respond(c, http.StatusOK, okMsg, toInvoiceDTO(inv))
}

// GetByID returns one invoice; non-admins only see their own.
func (h *BookingHandler) GetByID(c echo.Context) error {
    invoiceID, err := pathID(c, "id")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid invoice id")
    }
    userID, err := getUserID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    inv, err := h.Invoices.GetByID(ctx, invoiceID)
    if err != nil {
        if err == repository.ErrInvoiceNotFound {
            return fail(c, http.StatusNotFound, "invoice not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    if role, _ := c.Get("role").(string); role != model.RoleAdmin && inv.UserID != userID {
        return fail(c, http.StatusForbidden, "not your invoice")
    }
    return respond(c, http.StatusOK, "Invoice retrieved", toInvoiceDTO(inv))
}

// ListAll returns every invoice. Admin only, enforced by the router.
func (h *BookingHandler) ListAll(c echo.Context) error {
    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    invs, err := h.Invoices.ListAll(ctx)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Invoices retrieved", toInvoiceDTOs(invs))
}

// ListByUser returns one user's invoices, newest first. Callers may
// list their own; admins may list anyone's.
func (h *BookingHandler) ListByUser(c echo.Context) error {
    targetID, err := pathID(c, "userId")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid user id")
    }
    callerID, err := getUserID(c)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "unauthorized")
    }
    if role, _ := c.Get("role").(string); role != model.RoleAdmin && callerID != targetID {
        return fail(c, http.StatusForbidden, "forbidden")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    invs, err := h.Invoices.ListByUser(ctx, targetID)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Invoices retrieved", toInvoiceDTOs(invs))
}

// Availability reports whether at least one unit of a car is currently
// free. Advisory only: the booking transaction re-checks atomically.
func (h *BookingHandler) Availability(c echo.Context) error {
    carID, err := pathID(c, "carId")
    if err != nil {
        return fail(c, http.StatusBadRequest, "invalid car id")
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    inv, err := h.Inventory.Get(ctx, carID)
    if err != nil {
        if err == repository.ErrInventoryNotFound {
            return fail(c, http.StatusNotFound, "car not found")
        }
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    return respond(c, http.StatusOK, "Availability checked", echo.Map{
        "car_id":    carID,
        "available": inv.Quantity > 0,
        "quantity":  inv.Quantity,
    })
}
