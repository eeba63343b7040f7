// Package service holds the booking engine: the logic that turns a
// reservation request into a durable, non-oversold invoice and reverses
// that effect on return or cancel.
package service

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/rentaly/car-rental/internal/model"
    "github.com/rentaly/car-rental/internal/repository"
)

// ErrInvalidDateRange is returned when the booking start date falls
// after the end date. Checked before any write happens.
var ErrInvalidDateRange = errors.New("start date cannot be after end date")

// ErrPriceUnset is returned when the requested car has no price; such
// cars are visible in the catalog but cannot be booked.
var ErrPriceUnset = errors.New("car price is not set")

// BookingService coordinates the invoice write and the inventory
// adjustment so they always land in one transaction: a reserved unit
// never exists without its invoice, and vice versa. Status transitions
// and the quantity decrement themselves are guarded by conditional
// UPDATEs in the repositories; this service owns only the pairing.
type BookingService struct {
    db        *sql.DB
    cars      *repository.CarRepo
    invoices  *repository.InvoiceRepo
    inventory *repository.InventoryRepo
}

// NewBookingService constructs a BookingService. All dependencies must
// be non-nil.
func NewBookingService(db *sql.DB, cars *repository.CarRepo, invoices *repository.InvoiceRepo, inventory *repository.InventoryRepo) *BookingService {
    if db == nil || cars == nil || invoices == nil || inventory == nil {
        panic("nil dependency passed to NewBookingService")
    }
    return &BookingService{db: db, cars: cars, invoices: invoices, inventory: inventory}
}

// normalizeRange snaps the requested dates to day boundaries: the start
// to 00:00:00 and the end to 23:59:59, both UTC.
func normalizeRange(start, end time.Time) (time.Time, time.Time) {
    start = start.UTC()
    end = end.UTC()
    s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
    e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 0, time.UTC)
    return s, e
}

// Create books one unit of the car for the user across the given date
// range. Validation happens before any write and in a fixed order: the
// car must exist, carry a price, and the range must be ordered. The
// inventory decrement, the catalog stock adjustment and the invoice
// insert then commit or roll back together. TotalPrice is snapshotted
// from the car at this moment and never recomputed.
func (s *BookingService) Create(ctx context.Context, carID, userID uint64, start, end time.Time) (model.Invoice, error) {
    car, err := s.cars.GetByID(ctx, carID)
    if err != nil {
        return model.Invoice{}, err
    }
    if car.Price == nil {
        return model.Invoice{}, ErrPriceUnset
    }

    startDate, endDate := normalizeRange(start, end)
    if startDate.After(endDate) {
        return model.Invoice{}, ErrInvalidDateRange
    }

    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Invoice{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if err := s.inventory.ReserveTx(ctx, tx, carID); err != nil {
        return model.Invoice{}, err
    }
    if err := s.cars.AdjustStockTx(ctx, tx, carID, -1); err != nil {
        return model.Invoice{}, err
    }

    inv := model.Invoice{
        UserID:        userID,
        CarID:         carID,
        PaymentStatus: model.PaymentPending,
        RentStatus:    model.RentStatusRented,
        StartDate:     startDate,
        EndDate:       endDate,
        TotalPrice:    *car.Price,
    }
    if err := s.invoices.CreateTx(ctx, tx, &inv); err != nil {
        return model.Invoice{}, err
    }

    if err := tx.Commit(); err != nil {
        return model.Invoice{}, err
    }
    committed = true
    return inv, nil
}

// Return transitions an invoice from rented to returned and releases
// the reserved unit, atomically. A second Return on the same invoice
// fails with ErrInvalidTransition and leaves inventory untouched.
func (s *BookingService) Return(ctx context.Context, invoiceID uint64) (model.Invoice, error) {
    return s.close(ctx, invoiceID, s.invoices.MarkReturnedTx)
}

// Cancel transitions an invoice from rented to cancelled and releases
// the reserved unit. Cancelled invoices carry no returned_at.
func (s *BookingService) Cancel(ctx context.Context, invoiceID uint64) (model.Invoice, error) {
    return s.close(ctx, invoiceID, s.invoices.MarkCancelledTx)
}

func (s *BookingService) close(ctx context.Context, invoiceID uint64, mark func(context.Context, *sql.Tx, uint64) error) (model.Invoice, error) {
    tx, err := s.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Invoice{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    carID, err := s.invoices.CarIDTx(ctx, tx, invoiceID)
    if err != nil {
        return model.Invoice{}, err
    }
    // The conditional UPDATE inside mark is the idempotence guard: it
    // matches only while rent_status is still 'rented', so the release
    // below can run at most once per invoice.
    if err := mark(ctx, tx, invoiceID); err != nil {
        return model.Invoice{}, err
    }
    if err := s.inventory.ReleaseTx(ctx, tx, carID); err != nil {
        return model.Invoice{}, err
    }
    if err := s.cars.AdjustStockTx(ctx, tx, carID, 1); err != nil {
        return model.Invoice{}, err
    }
    inv, err := s.invoices.GetByIDTx(ctx, tx, invoiceID)
    if err != nil {
        return model.Invoice{}, err
    }
    if err := tx.Commit(); err != nil {
        return model.Invoice{}, err
    }
    committed = true
    return inv, nil
}
