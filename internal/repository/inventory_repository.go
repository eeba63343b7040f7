package repository // repository for car inventory persistence

import (
    "context"
    "database/sql"

    "github.com/rentaly/car-rental/internal/model"
)

// InventoryRepo owns the per-car available-unit counter in the
// car_inventory table. Quantity only ever changes through ReserveTx and
// ReleaseTx, which are single conditional UPDATE statements so that
// concurrent bookings on the last unit cannot both succeed. Reading the
// quantity and writing it back from the application layer is forbidden.
type InventoryRepo struct {
    db *sql.DB
}

// NewInventoryRepo constructs an InventoryRepo given a DB handle.
func NewInventoryRepo(db *sql.DB) *InventoryRepo {
    return &InventoryRepo{db: db}
}

// ReserveTx atomically takes one unit for the car inside the given
// transaction. The WHERE quantity > 0 clause is the sole overbooking
// guard: when two callers race for the last unit, exactly one UPDATE
// matches. A zero row count is disambiguated with a follow-up read:
// missing row -> ErrInventoryNotFound, quantity 0 -> ErrOutOfStock.
func (r *InventoryRepo) ReserveTx(ctx context.Context, tx *sql.Tx, carID uint64) error {
    res, err := tx.ExecContext(ctx,
        "UPDATE car_inventory SET quantity = quantity - 1 WHERE car_id = ? AND quantity > 0",
        carID)
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
    var qty int64
    err = tx.QueryRowContext(ctx,
        "SELECT quantity FROM car_inventory WHERE car_id = ?", carID).Scan(&qty)
    if err == sql.ErrNoRows {
        return ErrInventoryNotFound
    }
    if err != nil {
        return err
    }
    return ErrOutOfStock
}

// ReleaseTx atomically puts one unit back for the car inside the given
// transaction. It is unconditional on quantity; callers guarantee at
// most one release per reservation via the invoice transition guard.
func (r *InventoryRepo) ReleaseTx(ctx context.Context, tx *sql.Tx, carID uint64) error {
    res, err := tx.ExecContext(ctx,
        "UPDATE car_inventory SET quantity = quantity + 1 WHERE car_id = ?", carID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrInventoryNotFound
    }
    return nil
}

// CheckAvailability is an advisory read-only pre-check. It reports
// ErrOutOfStock or ErrInventoryNotFound without reserving anything.
// Callers must not treat a nil result as a guarantee; ReserveTx remains
// the only safety boundary.
func (r *InventoryRepo) CheckAvailability(ctx context.Context, carID uint64) error {
    var qty int64
    err := r.db.QueryRowContext(ctx,
        "SELECT quantity FROM car_inventory WHERE car_id = ?", carID).Scan(&qty)
    if err == sql.ErrNoRows {
        return ErrInventoryNotFound
    }
    if err != nil {
        return err
    }
    if qty <= 0 {
        return ErrOutOfStock
    }
    return nil
}

// Get returns the full inventory row for a car.
func (r *InventoryRepo) Get(ctx context.Context, carID uint64) (model.Inventory, error) {
    var inv model.Inventory
    err := r.db.QueryRowContext(ctx,
        "SELECT id, car_id, quantity FROM car_inventory WHERE car_id = ?", carID).
        Scan(&inv.ID, &inv.CarID, &inv.Quantity)
    if err == sql.ErrNoRows {
        return model.Inventory{}, ErrInventoryNotFound
    }
    return inv, err
}
