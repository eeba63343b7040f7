package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/rentaly/car-rental/internal/model"
)

// CarRepo provides CRUD operations for the car catalog. Creating a car
// also creates its car_inventory row in the same transaction so the two
// tables can never disagree about which cars exist. Deleting a car with
// rental history is refused with ErrConflict; invoices are the audit
// trail and are never cascaded away.
type CarRepo struct {
    db *sql.DB
}

// NewCarRepo returns a new CarRepo bound to the given database.
func NewCarRepo(db *sql.DB) *CarRepo { return &CarRepo{db: db} }

const carColumns = `id, name, description, price, car_type, stock, image_url, created_at, updated_at`

func scanCar(row *sql.Row) (model.Car, error) {
    var c model.Car
    var price sql.NullInt64
    var imageURL sql.NullString
    err := row.Scan(&c.ID, &c.Name, &c.Description, &price, &c.CarType, &c.Stock,
        &imageURL, &c.CreatedAt, &c.UpdatedAt)
    if err != nil {
        return model.Car{}, err
    }
    if price.Valid {
        p := price.Int64
        c.Price = &p
    }
    if imageURL.Valid {
        u := imageURL.String
        c.ImageURL = &u
    }
    return c, nil
}

// Create inserts a car and its inventory row atomically and populates
// the generated ID and timestamps on the provided record.
func (r *CarRepo) Create(ctx context.Context, c *model.Car) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx,
        "INSERT INTO cars (name, description, price, car_type, stock) VALUES (?,?,?,?,?)",
        c.Name, c.Description, c.Price, c.CarType, c.Stock)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    c.ID = uint64(id)
    if _, err := tx.ExecContext(ctx,
        "INSERT INTO car_inventory (car_id, quantity) VALUES (?,?)", c.ID, c.Stock); err != nil {
        return err
    }
    row := tx.QueryRowContext(ctx, "SELECT "+carColumns+" FROM cars WHERE id = ?", c.ID)
    full, err := scanCar(row)
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    *c = full
    return nil
}

// GetByID returns a single car or ErrCarNotFound.
func (r *CarRepo) GetByID(ctx context.Context, id uint64) (model.Car, error) {
    row := r.db.QueryRowContext(ctx, "SELECT "+carColumns+" FROM cars WHERE id = ?", id)
    c, err := scanCar(row)
    if err == sql.ErrNoRows {
        return model.Car{}, ErrCarNotFound
    }
    return c, err
}

// GetByIDTx is GetByID inside an existing transaction.
func (r *CarRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Car, error) {
    row := tx.QueryRowContext(ctx, "SELECT "+carColumns+" FROM cars WHERE id = ?", id)
    c, err := scanCar(row)
    if err == sql.ErrNoRows {
        return model.Car{}, ErrCarNotFound
    }
    return c, err
}

// GetByName returns the first car matching the exact name.
func (r *CarRepo) GetByName(ctx context.Context, name string) (model.Car, error) {
    row := r.db.QueryRowContext(ctx, "SELECT "+carColumns+" FROM cars WHERE name = ? LIMIT 1",
        strings.TrimSpace(name))
    c, err := scanCar(row)
    if err == sql.ErrNoRows {
        return model.Car{}, ErrCarNotFound
    }
    return c, err
}

// ListAll returns the whole catalog ordered by id.
func (r *CarRepo) ListAll(ctx context.Context) ([]model.Car, error) {
    return r.list(ctx, "SELECT "+carColumns+" FROM cars ORDER BY id")
}

// ListByType returns cars of one car_type enum value.
func (r *CarRepo) ListByType(ctx context.Context, carType string) ([]model.Car, error) {
    return r.list(ctx, "SELECT "+carColumns+" FROM cars WHERE car_type = ? ORDER BY id", carType)
}

// Update rewrites the mutable catalog fields of a car. When the stock
// changes, the inventory quantity is adjusted by the same delta inside
// one transaction so displayed stock and bookable quantity move
// together. Price snapshots on existing invoices are untouched.
func (r *CarRepo) Update(ctx context.Context, c *model.Car) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    var oldStock int64
    err = tx.QueryRowContext(ctx, "SELECT stock FROM cars WHERE id = ?", c.ID).Scan(&oldStock)
    if err == sql.ErrNoRows {
        return ErrCarNotFound
    }
    if err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx,
        "UPDATE cars SET name=?, description=?, price=?, car_type=?, stock=?, updated_at=NOW() WHERE id=?",
        c.Name, c.Description, c.Price, c.CarType, c.Stock, c.ID); err != nil {
        return err
    }
    if delta := c.Stock - oldStock; delta != 0 {
        if _, err := tx.ExecContext(ctx,
            "UPDATE car_inventory SET quantity = GREATEST(quantity + ?, 0) WHERE car_id = ?",
            delta, c.ID); err != nil {
            return err
        }
    }
    row := tx.QueryRowContext(ctx, "SELECT "+carColumns+" FROM cars WHERE id = ?", c.ID)
    full, err := scanCar(row)
    if err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    *c = full
    return nil
}

// AdjustStockTx moves the displayed stock by delta inside an existing
// transaction. The booking engine calls this next to the inventory
// reserve/release so cars.stock never drifts from car_inventory.
func (r *CarRepo) AdjustStockTx(ctx context.Context, tx *sql.Tx, carID uint64, delta int64) error {
    res, err := tx.ExecContext(ctx,
        "UPDATE cars SET stock = stock + ?, updated_at=NOW() WHERE id = ?", delta, carID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrCarNotFound
    }
    return nil
}

// SetImageURL stores the path of the uploaded image on the car row.
func (r *CarRepo) SetImageURL(ctx context.Context, id uint64, url string) error {
    res, err := r.db.ExecContext(ctx,
        "UPDATE cars SET image_url=?, updated_at=NOW() WHERE id=?", url, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrCarNotFound
    }
    return nil
}

// Delete removes a car, its inventory row and its images. Cars with
// any invoices cannot be deleted (ErrConflict): rental history must
// survive the catalog entry.
func (r *CarRepo) Delete(ctx context.Context, id uint64) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    var invoices int64
    if err := tx.QueryRowContext(ctx,
        "SELECT COUNT(*) FROM invoices WHERE car_id = ?", id).Scan(&invoices); err != nil {
        return err
    }
    if invoices > 0 {
        return ErrConflict
    }
    if _, err := tx.ExecContext(ctx, "DELETE FROM car_images WHERE car_id = ?", id); err != nil {
        return err
    }
    if _, err := tx.ExecContext(ctx, "DELETE FROM car_inventory WHERE car_id = ?", id); err != nil {
        return err
    }
    res, err := tx.ExecContext(ctx, "DELETE FROM cars WHERE id = ?", id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrCarNotFound
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

func (r *CarRepo) list(ctx context.Context, query string, args ...interface{}) ([]model.Car, error) {
    rows, err := r.db.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Car, 0)
    for rows.Next() {
        var c model.Car
        var price sql.NullInt64
        var imageURL sql.NullString
        if err := rows.Scan(&c.ID, &c.Name, &c.Description, &price, &c.CarType, &c.Stock,
            &imageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
            return nil, err
        }
        if price.Valid {
            p := price.Int64
            c.Price = &p
        }
        if imageURL.Valid {
            u := imageURL.String
            c.ImageURL = &u
        }
        out = append(out, c)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
