package model

import "time"

// CarImage records an uploaded image for a car as stored in the
// `car_images` table. The file itself lives on disk under the
// configured upload directory; ImageURL holds its path.
type CarImage struct {
    ID        uint64    // car_images.id
    CarID     uint64    // car_images.car_id
    ImageURL  string    // car_images.image_url
    CreatedAt time.Time // car_images.created_at
}
