package model

import "time"

// Payment status values for invoices.
const (
    PaymentPending = "pending"
    PaymentPaid    = "paid"
)

// Rent status values. An invoice starts as rented and moves exactly once
// to returned or cancelled; both are terminal.
const (
    RentStatusRented    = "rented"
    RentStatusReturned  = "returned"
    RentStatusCancelled = "cancelled"
)

// Invoice records a single rental: one user, one car, one date range.
// TotalPrice is a snapshot of the car price at booking time and is never
// recomputed afterwards. StartDate is normalized to the start of day and
// EndDate to 23:59:59 of its day.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – user who booked the car.
//  CarID         – car being rented.
//  PaymentStatus – pending or paid.
//  RentStatus    – rented, returned or cancelled.
//  StartDate     – first day of the rental (start of day, UTC).
//  EndDate       – last day of the rental (23:59:59, UTC).
//  TotalPrice    – price snapshot in minor units.
//  ReturnedAt    – when the car came back (null unless returned).
//  CreatedAt     – creation timestamp.
//  UpdatedAt     – last update timestamp.
type Invoice struct {
    ID            uint64     // invoices.id
    UserID        uint64     // invoices.user_id
    CarID         uint64     // invoices.car_id
    PaymentStatus string     // invoices.payment_status
    RentStatus    string     // invoices.rent_status
    StartDate     time.Time  // invoices.start_date
    EndDate       time.Time  // invoices.end_date
    TotalPrice    int64      // invoices.total_price
    ReturnedAt    *time.Time // invoices.returned_at (nullable)
    CreatedAt     time.Time  // invoices.created_at
    UpdatedAt     time.Time  // invoices.updated_at
}
