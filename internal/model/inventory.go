package model

// Inventory mirrors a row in the `car_inventory` table. Each car has
// exactly one inventory row; quantity is the number of units currently
// available for rent and never drops below zero. The quantity column
// is mutated only through the atomic reserve/release statements in the
// repository layer, never through read-modify-write.
type Inventory struct {
    ID       uint64 // car_inventory.id
    CarID    uint64 // car_inventory.car_id (unique)
    Quantity int64  // car_inventory.quantity (>= 0)
}
