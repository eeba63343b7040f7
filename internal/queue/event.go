// Package queue defines message payloads exchanged over the message broker.
package queue

// InvoiceCreatedEvent is published when a booking commits. It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type InvoiceCreatedEvent struct {
    InvoiceID  uint64 `json:"invoice_id"`
    UserID     uint64 `json:"user_id"`
    CarID      uint64 `json:"car_id"`
    CarName    string `json:"car_name"`
    StartDate  string `json:"start_date"`
    EndDate    string `json:"end_date"`
    TotalPrice int64  `json:"total_price"`
    CreatedAt  string `json:"created_at"`
}

// InvoiceClosedEvent is published when a rental leaves the rented state,
// either by return or by cancellation.
type InvoiceClosedEvent struct {
    InvoiceID  uint64 `json:"invoice_id"`
    UserID     uint64 `json:"user_id"`
    CarID      uint64 `json:"car_id"`
    RentStatus string `json:"rent_status"`
    ClosedAt   string `json:"closed_at"`
}
