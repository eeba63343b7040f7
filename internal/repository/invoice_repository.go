package repository

import (
    "context"
    "database/sql"

    "github.com/rentaly/car-rental/internal/model"
)

// InvoiceRepo provides persistence for rental invoices. An invoice is
// created inside the same transaction as the inventory decrement and
// transitions out of 'rented' exactly once; the MarkReturnedTx and
// MarkCancelledTx guards are conditional UPDATEs so a terminal invoice
// can never release inventory a second time. All timestamps are UTC.
type InvoiceRepo struct {
    db *sql.DB
}

// NewInvoiceRepo returns a new InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, user_id, car_id, payment_status, rent_status,
 start_date, end_date, total_price, returned_at, created_at, updated_at`

func scanInvoice(row *sql.Row) (model.Invoice, error) {
    var inv model.Invoice
    var returnedAt sql.NullTime
    err := row.Scan(&inv.ID, &inv.UserID, &inv.CarID, &inv.PaymentStatus, &inv.RentStatus,
        &inv.StartDate, &inv.EndDate, &inv.TotalPrice, &returnedAt, &inv.CreatedAt, &inv.UpdatedAt)
    if err != nil {
        return model.Invoice{}, err
    }
    if returnedAt.Valid {
        t := returnedAt.Time
        inv.ReturnedAt = &t
    }
    return inv, nil
}

// CreateTx inserts a new invoice within the scope of an existing
// transaction and populates the generated ID and DB-side timestamps on
// the provided record. The caller must commit or rollback the
// transaction. PaymentStatus and RentStatus must be valid enum values.
func (r *InvoiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) error {
    const q = `INSERT INTO invoices
 (user_id, car_id, payment_status, rent_status, start_date, end_date, total_price)
 VALUES (?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        inv.UserID, inv.CarID, inv.PaymentStatus, inv.RentStatus,
        inv.StartDate, inv.EndDate, inv.TotalPrice)
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    inv.ID = uint64(id)
    // Query back the full row to populate timestamps and defaults.
    row := tx.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", inv.ID)
    full, err := scanInvoice(row)
    if err != nil {
        return err
    }
    *inv = full
    return nil
}

// GetByID returns a single invoice or ErrInvoiceNotFound.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uint64) (model.Invoice, error) {
    row := r.db.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
    inv, err := scanInvoice(row)
    if err == sql.ErrNoRows {
        return model.Invoice{}, ErrInvoiceNotFound
    }
    return inv, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *InvoiceRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Invoice, error) {
    row := tx.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = ?", id)
    inv, err := scanInvoice(row)
    if err == sql.ErrNoRows {
        return model.Invoice{}, ErrInvoiceNotFound
    }
    return inv, err
}

// CarIDTx returns the car referenced by an invoice, inside a transaction.
func (r *InvoiceRepo) CarIDTx(ctx context.Context, tx *sql.Tx, id uint64) (uint64, error) {
    var carID uint64
    err := tx.QueryRowContext(ctx, "SELECT car_id FROM invoices WHERE id = ?", id).Scan(&carID)
    if err == sql.ErrNoRows {
        return 0, ErrInvoiceNotFound
    }
    return carID, err
}

// MarkReturnedTx transitions an invoice from rented to returned and
// stamps returned_at. The status check lives in the WHERE clause so the
// transition happens at most once regardless of concurrent callers.
// When nothing matches, the invoice is either absent
// (ErrInvoiceNotFound) or already terminal (ErrInvalidTransition).
func (r *InvoiceRepo) MarkReturnedTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    return r.transitionTx(ctx, tx, id,
        "UPDATE invoices SET rent_status='returned', returned_at=NOW(), updated_at=NOW() WHERE id=? AND rent_status='rented'")
}

// MarkCancelledTx transitions an invoice from rented to cancelled. Same
// guard as MarkReturnedTx; cancelled invoices carry no returned_at.
func (r *InvoiceRepo) MarkCancelledTx(ctx context.Context, tx *sql.Tx, id uint64) error {
    return r.transitionTx(ctx, tx, id,
        "UPDATE invoices SET rent_status='cancelled', updated_at=NOW() WHERE id=? AND rent_status='rented'")
}

func (r *InvoiceRepo) transitionTx(ctx context.Context, tx *sql.Tx, id uint64, query string) error {
    res, err := tx.ExecContext(ctx, query, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    var status string
    err = tx.QueryRowContext(ctx, "SELECT rent_status FROM invoices WHERE id = ?", id).Scan(&status)
    if err == sql.ErrNoRows {
        return ErrInvoiceNotFound
    }
    if err != nil {
        return err
    }
    return ErrInvalidTransition
}

// ListAll returns every invoice ordered by creation time descending.
// Access control (admin only) is enforced at the router.
func (r *InvoiceRepo) ListAll(ctx context.Context) ([]model.Invoice, error) {
    return r.list(ctx, "SELECT "+invoiceColumns+" FROM invoices ORDER BY created_at DESC")
}

// ListByUser returns the given user's invoices, newest first.
func (r *InvoiceRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Invoice, error) {
    return r.list(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE user_id = ? ORDER BY created_at DESC", userID)
}

func (r *InvoiceRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Invoice, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Invoice, 0)
    for rows.Next() {
        var inv model.Invoice
        var returnedAt sql.NullTime
        if err := rows.Scan(&inv.ID, &inv.UserID, &inv.CarID, &inv.PaymentStatus, &inv.RentStatus,
            &inv.StartDate, &inv.EndDate, &inv.TotalPrice, &returnedAt, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
            return nil, err
        }
        if returnedAt.Valid {
            t := returnedAt.Time
            inv.ReturnedAt = &t
        }
        out = append(out, inv)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
