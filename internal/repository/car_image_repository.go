package repository

import (
    "context"
    "database/sql"

    "github.com/rentaly/car-rental/internal/model"
)

// CarImageRepo records uploaded image files for cars.
type CarImageRepo struct {
    db *sql.DB
}

// NewCarImageRepo constructs a CarImageRepo given a DB handle.
func NewCarImageRepo(db *sql.DB) *CarImageRepo {
    return &CarImageRepo{db: db}
}

// Create inserts a car image row and returns its ID.
func (r *CarImageRepo) Create(ctx context.Context, carID uint64, imageURL string) (uint64, error) {
    res, err := r.db.ExecContext(ctx,
        "INSERT INTO car_images (car_id, image_url) VALUES (?,?)", carID, imageURL)
    if err != nil {
        return 0, err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return uint64(id), nil
}

// ListByCar returns all images recorded for a car, oldest first.
func (r *CarImageRepo) ListByCar(ctx context.Context, carID uint64) ([]model.CarImage, error) {
    rows, err := r.db.QueryContext(ctx,
        "SELECT id, car_id, image_url, created_at FROM car_images WHERE car_id = ? ORDER BY id", carID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.CarImage, 0)
    for rows.Next() {
        var img model.CarImage
        if err := rows.Scan(&img.ID, &img.CarID, &img.ImageURL, &img.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, img)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
