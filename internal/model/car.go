package model

import "time"

// Car types accepted by the catalog. The car_type column is an ENUM
// with exactly these values.
const (
    CarTypeSedan = "sedan"
    CarTypeSUV   = "suv"
    CarTypeTruck = "truck"
)

// ValidCarType reports whether t is one of the known car type enum values.
func ValidCarType(t string) bool {
    switch t {
    case CarTypeSedan, CarTypeSUV, CarTypeTruck:
        return true
    }
    return false
}

// Car represents a row in the `cars` table. Price is stored in minor
// currency units and may be NULL when a car has been listed without
// pricing; such cars cannot be booked. Stock mirrors the quantity held
// in car_inventory; booking and release move both columns inside one
// transaction, and car_inventory stays the authoritative guard.
//
// Fields:
//  ID          – primary key identifier of the car.
//  Name        – display name.
//  Description – free-form description.
//  Price       – rental price in minor units (nullable).
//  CarType     – one of sedan, suv, truck.
//  Stock       – displayed unit count; bookings go through car_inventory.
//  ImageURL    – path of the uploaded image, if any.
//  CreatedAt   – timestamp of creation.
//  UpdatedAt   – timestamp of last update.
type Car struct {
    ID          uint64     // cars.id
    Name        string     // cars.name
    Description string     // cars.description
    Price       *int64     // cars.price (nullable, minor units)
    CarType     string     // cars.car_type
    Stock       int64      // cars.stock
    ImageURL    *string    // cars.image_url (nullable)
    CreatedAt   time.Time  // cars.created_at
    UpdatedAt   time.Time  // cars.updated_at
}
